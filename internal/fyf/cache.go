package fyf

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte-oriented TTL store in front of the Store. Implementations
// must be safe for concurrent use.
type Cache interface {
	// Get returns the cached value for key, or ok=false on a miss
	// (absent or expired).
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys immediately. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix. This is what
	// makes "all list keys for owner X" invalidation tractable without
	// enumerating every filter combination that was ever cached.
	DeletePrefix(ctx context.Context, prefix string) error

	// Close releases cache resources.
	Close() error
}

// CachedRead is the read-through discipline: return the cached value if
// present, otherwise run load, store its result with ttl, and return it.
// Load errors are returned unchanged and nothing is cached for them.
func CachedRead[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("cache get %q: %w", key, err)
	}
	if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return zero, fmt.Errorf("decoding cached value for %q: %w", key, err)
		}
		return v, nil
	}

	v, err := load(ctx)
	if err != nil {
		return zero, err
	}

	raw, err = json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("encoding value for %q: %w", key, err)
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		return zero, fmt.Errorf("cache set %q: %w", key, err)
	}
	return v, nil
}

// WriteThrough unconditionally (re)populates key with value. Used after a
// mutation to pre-warm the mutated entity's single-item key.
func WriteThrough[T any](ctx context.Context, c Cache, key string, value T, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for %q: %w", key, err)
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

// Cache keys. List keys are parameterized by the query's filters and share
// a per-owner prefix so one DeletePrefix covers every cached variant.

func entryKey(id string) string { return "entry:" + id }

func sessionKey(id string) string { return "session:" + id }

func ownerListPrefix(authorID string) string { return "entries:" + authorID + ":" }

func listKey(q ListQuery) string {
	return fmt.Sprintf("%s%t:%s", ownerListPrefix(q.AuthorID), q.IncludeDeleted, q.ParentID)
}
