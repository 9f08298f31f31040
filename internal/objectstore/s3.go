package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"fyf-go/internal/fyf"
)

// S3Config holds the settings for an S3-compatible object store. Endpoint
// and the static credentials are optional: leave Endpoint empty for AWS
// proper, set it for MinIO/Localstack-style services.
type S3Config struct {
	Region          string
	Bucket          string
	KeyPrefix       string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3ObjectStore implements the ObjectStore interface against S3 or any
// S3-compatible service. The service never streams content itself; it
// stats objects (finalize), deletes them (purge) and issues presigned
// upload/download URLs for clients.
type S3ObjectStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
}

// NewS3ObjectStore builds the AWS client from cfg and returns the store.
func NewS3ObjectStore(ctx context.Context, cfg S3Config) (*S3ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 object store: bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3 object store: region is required")
	}

	var opts []func(*awsConfig.LoadOptions) error
	opts = append(opts, awsConfig.WithRegion(cfg.Region))

	// Custom endpoint for MinIO, Localstack, etc.
	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		opts = append(opts, awsConfig.WithEndpointResolverWithOptions(resolver))
	}

	// Static credentials if provided, otherwise the default chain.
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		provider := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		opts = append(opts, awsConfig.WithCredentialsProvider(provider))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Path-style addressing for compatibility with MinIO/Localstack.
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	return &S3ObjectStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		prefix:  cfg.KeyPrefix,
	}, nil
}

func (s *S3ObjectStore) key(id string) string {
	if s.prefix == "" {
		return id
	}
	return s.prefix + "/" + id
}

func (s *S3ObjectStore) StatObject(ctx context.Context, id string) (fyf.ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fyf.ObjectInfo{}, fmt.Errorf("head object %s: %w", id, err)
	}
	return fyf.ObjectInfo{Size: aws.ToInt64(out.ContentLength)}, nil
}

func (s *S3ObjectStore) DeleteObject(ctx context.Context, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", id, err)
	}
	return nil
}

func (s *S3ObjectStore) PresignPut(ctx context.Context, id string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", id, err)
	}
	return req.URL, nil
}

func (s *S3ObjectStore) PresignGet(ctx context.Context, id string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", id, err)
	}
	return req.URL, nil
}

// Compile-time check that S3ObjectStore implements fyf.ObjectStore
var _ fyf.ObjectStore = (*S3ObjectStore)(nil)
