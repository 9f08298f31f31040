package fyf

import (
	"context"
	"time"

	"fyf-go/internal/model"
)

// ListQuery selects entries owned by one user.
type ListQuery struct {
	AuthorID       string
	IncludeDeleted bool   // include soft-deleted rows
	ParentID       string // filter by parent when non-empty
}

// Store provides durable storage for entries, transactions, users and
// sessions. Find methods return (nil, nil) when the row does not exist.
//
// Every mutating method that takes a *model.Transaction must persist the
// row mutation and the audit row as a single atomic unit: either both
// commit or neither does.
type Store interface {
	// Entry operations

	// FindEntry returns the entry with the given id.
	FindEntry(ctx context.Context, id string) (*model.Entry, error)

	// ListEntries returns the finalized entries matching q, ordered by
	// creation time.
	ListEntries(ctx context.Context, q ListQuery) ([]*model.Entry, error)

	// CreateEntry inserts a new entry together with its audit row.
	CreateEntry(ctx context.Context, entry *model.Entry, txn *model.Transaction) error

	// UpdateEntry persists all mutable fields of entry together with its
	// audit row.
	UpdateEntry(ctx context.Context, entry *model.Entry, txn *model.Transaction) error

	// MarkEntryTree sets the soft-delete mark on the closure of rootID
	// (rootID plus all transitive children via parent_id) as one bulk
	// update, appends a single audit row for the root, and returns the
	// ids of every affected entry. since must be non-nil iff deleted.
	MarkEntryTree(ctx context.Context, rootID string, deleted bool, since *time.Time, updatedAt time.Time, txn *model.Transaction) ([]string, error)

	// DescendantIDs returns the ids of all transitive children of id,
	// excluding id itself.
	DescendantIDs(ctx context.Context, id string) ([]string, error)

	// DeleteEntry hard-deletes the single entry row. The audit row is
	// written before the row removal in the same unit; the foreign-key
	// cascade then removes all of the entry's transactions with it.
	DeleteEntry(ctx context.Context, id string, txn *model.Transaction) error

	// EntryTransactions returns the audit rows for one entry, oldest first.
	EntryTransactions(ctx context.Context, entryID string) ([]*model.Transaction, error)

	// User operations

	CreateUser(ctx context.Context, user *model.User) error
	FindUser(ctx context.Context, id string) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error

	// DeleteUser removes the user row; the foreign-key cascade removes the
	// user's entries, sessions and transactions with it.
	DeleteUser(ctx context.Context, id string) error

	// Session operations

	CreateSession(ctx context.Context, session *model.Session) error
	FindSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// Close closes the store connection.
	Close() error
}
