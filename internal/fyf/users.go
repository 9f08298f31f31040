package fyf

import (
	"context"
	"fmt"

	"fyf-go/internal/model"
)

// CreateUser registers a new user. The password is hashed before storage;
// a taken username fails with ErrUsernameTaken.
func (s *FYFService) CreateUser(ctx context.Context, username, displayName, password string) (*model.User, error) {
	existing, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("checking for existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("username %q: %w", username, ErrUsernameTaken)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.clock.Now()
	user := &model.User{
		ID:          s.idgen.New(),
		Username:    username,
		DisplayName: displayName,
		Password:    hashed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created", "id", user.ID, "username", username)
	return user, nil
}

// GetUser returns the user with the given id.
func (s *FYFService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.FindUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrUserNotFound)
	}
	return user, nil
}

// ListUsers returns all users.
func (s *FYFService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// UserUpdate carries the fields UpdateUser replaces. All three are
// required; the password is re-hashed.
type UserUpdate struct {
	Username    string
	DisplayName string
	Password    string
}

// UpdateUser replaces the user's username, display name and password.
func (s *FYFService) UpdateUser(ctx context.Context, id string, update UserUpdate) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Username != user.Username {
		existing, err := s.store.FindUserByUsername(ctx, update.Username)
		if err != nil {
			return nil, fmt.Errorf("checking for existing user: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("username %q: %w", update.Username, ErrUsernameTaken)
		}
	}

	hashed, err := s.hasher.Hash(update.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user.Username = update.Username
	user.DisplayName = update.DisplayName
	user.Password = hashed
	user.UpdatedAt = s.clock.Now()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	s.logger.Info("user updated", "id", user.ID)
	return user, nil
}

// DeleteUser removes the user. The foreign-key cascade removes the user's
// entries, sessions and transactions with it; cached rows for those age
// out within the cache TTL.
func (s *FYFService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	if err := s.cache.DeletePrefix(ctx, ownerListPrefix(user.ID)); err != nil {
		s.logger.Warn("list cache invalidation failed", "author", user.ID, "error", err)
	}
	s.logger.Info("user deleted", "id", user.ID, "username", user.Username)
	return nil
}

// Login verifies the credentials for username. It returns ok=false on a
// wrong password and ErrUserNotFound when the username is unknown.
func (s *FYFService) Login(ctx context.Context, username, password string) (*model.User, bool, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, false, fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return nil, false, fmt.Errorf("user %q: %w", username, ErrUserNotFound)
	}

	if !s.hasher.Verify(user.Password, password) {
		s.logger.Warn("login failed", "username", username)
		return nil, false, nil
	}
	return user, true, nil
}
