package fyf

import (
	"context"
	"fmt"
	"time"

	"fyf-go/internal/model"
)

// CreateSession opens an authenticated session for userID lasting ttl.
// A ttl beyond the configured maximum fails with ErrSessionTooLong.
func (s *FYFService) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*model.Session, error) {
	if ttl > s.opts.MaxSessionTTL {
		return nil, fmt.Errorf("ttl %s exceeds %s: %w", ttl, s.opts.MaxSessionTTL, ErrSessionTooLong)
	}

	now := s.clock.Now()
	session := &model.Session{
		ID:         s.idgen.New(),
		UserID:     userID,
		ValidUntil: now.Add(ttl),
		CreatedAt:  now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	if err := WriteThrough(ctx, s.cache, sessionKey(session.ID), session, s.opts.CacheTTL); err != nil {
		s.logger.Warn("session cache write-through failed", "session", session.ID, "error", err)
	}
	s.logger.Info("session created", "id", session.ID, "user", userID)
	return session, nil
}

// GetSession returns the session with the given id via the cached read
// path. ValidUntil is not compared against the current time here: an
// expired session stays retrievable until explicitly deleted, and callers
// that need expiry enforcement add the check themselves.
func (s *FYFService) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return CachedRead(ctx, s.cache, sessionKey(id), s.opts.CacheTTL, func(ctx context.Context) (*model.Session, error) {
		session, err := s.store.FindSession(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("finding session: %w", err)
		}
		if session == nil {
			return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
		}
		return session, nil
	})
}

// DeleteSession removes the session.
func (s *FYFService) DeleteSession(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if err := s.cache.Delete(ctx, sessionKey(id)); err != nil {
		s.logger.Warn("session cache invalidation failed", "session", id, "error", err)
	}
	return nil
}
