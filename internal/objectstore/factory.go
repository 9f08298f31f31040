package objectstore

import (
	"context"
	"fmt"

	"fyf-go/internal/config"
	"fyf-go/internal/fyf"
)

// NewObjectStoreFromConfig creates an ObjectStore implementation based on
// the objects config type.
func NewObjectStoreFromConfig(ctx context.Context, cfg config.ObjectsConfig) (fyf.ObjectStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryObjectStore(cfg.Bucket), nil
	case "s3":
		return NewS3ObjectStore(ctx, S3Config{
			Region:          cfg.Region,
			Bucket:          cfg.Bucket,
			KeyPrefix:       cfg.KeyPrefix,
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown object store type: %s", cfg.Type)
	}
}
