package fyf

import (
	"context"
	"time"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Size int64
}

// ObjectStore is the object-storage collaborator. Entry content never
// flows through the service itself: clients move bytes directly via
// presigned URLs, and the service only stats and deletes objects.
type ObjectStore interface {
	// StatObject returns metadata for the object named id.
	// It returns an error if the object does not exist.
	StatObject(ctx context.Context, id string) (ObjectInfo, error)

	// DeleteObject removes the object named id.
	DeleteObject(ctx context.Context, id string) error

	// PresignPut returns a URL a client can use to upload the object
	// named id within expiry.
	PresignPut(ctx context.Context, id string, expiry time.Duration) (string, error)

	// PresignGet returns a URL a client can use to download the object
	// named id within expiry.
	PresignGet(ctx context.Context, id string, expiry time.Duration) (string, error)
}

// PasswordHasher is the credential-hashing collaborator.
type PasswordHasher interface {
	// Hash returns an opaque hash of plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches the stored hash.
	Verify(hash, plaintext string) bool
}
