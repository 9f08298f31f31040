package fyf_test

import (
	"context"
	"errors"
	"testing"

	"fyf-go/internal/fyf"
)

func TestFYFService_CreateUser(t *testing.T) {
	t.Run("hashes the password", func(t *testing.T) {
		f := newFixture(t)

		user, err := f.svc.CreateUser(context.Background(), "alice", "Alice", "s3cret")
		if err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		if user.Username != "alice" || user.DisplayName != "Alice" {
			t.Errorf("user = %+v", user)
		}

		// PlainHasher stores the password as-is, so the stored value
		// being the plaintext proves the hasher ran.
		stored, err := f.store.FindUser(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("FindUser() error = %v", err)
		}
		if stored.Password != "s3cret" {
			t.Errorf("stored password = %q, want hashed via hasher", stored.Password)
		}
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "alice")

		_, err := f.svc.CreateUser(context.Background(), "alice", "Other Alice", "pw")
		if !errors.Is(err, fyf.ErrUsernameTaken) {
			t.Errorf("CreateUser() error = %v, want ErrUsernameTaken", err)
		}
	})
}

func TestFYFService_UpdateUser(t *testing.T) {
	t.Run("replaces all fields", func(t *testing.T) {
		f := newFixture(t)
		user := f.addUser(t, "alice")

		got, err := f.svc.UpdateUser(context.Background(), user.ID, fyf.UserUpdate{
			Username:    "alice2",
			DisplayName: "Alice Two",
			Password:    "newpw",
		})
		if err != nil {
			t.Fatalf("UpdateUser() error = %v", err)
		}
		if got.Username != "alice2" || got.DisplayName != "Alice Two" {
			t.Errorf("user = %+v", got)
		}

		if _, ok, err := f.svc.Login(context.Background(), "alice2", "newpw"); err != nil || !ok {
			t.Errorf("Login(new credentials) = ok=%v, err=%v", ok, err)
		}
	})

	t.Run("rejects renaming onto a taken username", func(t *testing.T) {
		f := newFixture(t)
		user := f.addUser(t, "alice")
		f.addUser(t, "bob")

		_, err := f.svc.UpdateUser(context.Background(), user.ID, fyf.UserUpdate{
			Username:    "bob",
			DisplayName: "Alice",
			Password:    "pw",
		})
		if !errors.Is(err, fyf.ErrUsernameTaken) {
			t.Errorf("UpdateUser() error = %v, want ErrUsernameTaken", err)
		}
	})
}

func TestFYFService_DeleteUser(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice")

	ctx := context.Background()
	if err := f.svc.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	if _, err := f.svc.GetUser(ctx, user.ID); !errors.Is(err, fyf.ErrUserNotFound) {
		t.Errorf("GetUser(deleted) error = %v, want ErrUserNotFound", err)
	}

	if err := f.svc.DeleteUser(ctx, user.ID); !errors.Is(err, fyf.ErrUserNotFound) {
		t.Errorf("DeleteUser(deleted) error = %v, want ErrUserNotFound", err)
	}
}

func TestFYFService_Login(t *testing.T) {
	t.Run("unknown username", func(t *testing.T) {
		f := newFixture(t)

		_, _, err := f.svc.Login(context.Background(), "nobody", "pw")
		if !errors.Is(err, fyf.ErrUserNotFound) {
			t.Errorf("Login() error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "alice") // password "secret"

		user, ok, err := f.svc.Login(context.Background(), "alice", "wrong")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if ok || user != nil {
			t.Errorf("Login(wrong password) = (%v, %v), want (nil, false)", user, ok)
		}
	})

	t.Run("correct credentials", func(t *testing.T) {
		f := newFixture(t)
		created := f.addUser(t, "alice")

		user, ok, err := f.svc.Login(context.Background(), "alice", "secret")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if !ok || user == nil || user.ID != created.ID {
			t.Errorf("Login() = (%v, %v), want created user", user, ok)
		}
	})
}
