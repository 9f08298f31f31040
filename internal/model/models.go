package model

import "time"

// EntryType classifies what an entry's metadata describes.
type EntryType string

const (
	EntryTypeFile      EntryType = "file"
	EntryTypeDirectory EntryType = "directory"
	EntryTypeOther     EntryType = "other"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeFile, EntryTypeDirectory, EntryTypeOther:
		return true
	}
	return false
}

// EntryStatus tracks whether the backing object upload has completed.
// Directories are created finalized; files stay pending until Finalize.
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "pending"
	EntryStatusFinalized EntryStatus = "finalized"
)

// EntryPermission selects which row of the view/modify decision tables
// applies to an entry for users other than its author.
type EntryPermission string

const (
	PermissionPrivate           EntryPermission = "private"
	PermissionPublic            EntryPermission = "public"
	PermissionPublicReadonly    EntryPermission = "public_readonly"
	PermissionInclusive         EntryPermission = "inclusive"
	PermissionInclusiveReadonly EntryPermission = "inclusive_readonly"
	PermissionOther             EntryPermission = "other"
)

// Valid reports whether p is one of the known permission modes.
func (p EntryPermission) Valid() bool {
	switch p {
	case PermissionPrivate, PermissionPublic, PermissionPublicReadonly,
		PermissionInclusive, PermissionInclusiveReadonly, PermissionOther:
		return true
	}
	return false
}

// RootParentID is the sentinel parent id for top-level entries.
const RootParentID = "root"

// Entry is a file or directory metadata record in the hierarchy.
type Entry struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Size   int64       `json:"size"` // bytes, 0 until finalized
	Type   EntryType   `json:"type"`
	Status EntryStatus `json:"status"`

	AuthorID string `json:"author_id"`
	ParentID string `json:"parent_id"` // another entry id, or RootParentID

	IsDeleted      bool       `json:"is_deleted"`
	IsDeletedSince *time.Time `json:"is_deleted_since,omitempty"` // non-nil iff IsDeleted

	Permission          EntryPermission `json:"permission"`
	PermissionInclusive []string        `json:"permission_inclusive"` // user ids granted access under inclusive modes

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransactionAction names the state transition an audit row records.
type TransactionAction string

const (
	ActionAdd      TransactionAction = "add"
	ActionFinalize TransactionAction = "finalize"
	ActionRemove   TransactionAction = "remove"  // soft delete, object stays in the bucket
	ActionRestore  TransactionAction = "restore" // clears the deleted mark
	ActionDelete   TransactionAction = "delete"  // hard delete
	ActionModify   TransactionAction = "modify"
	ActionOther    TransactionAction = "other"
)

// Transaction is one append-only audit record. Rows are removed only as
// a cascading side effect of hard-deleting their entry.
type Transaction struct {
	ID        string            `json:"id"`
	EntryID   string            `json:"entry_id"`
	ActorID   string            `json:"actor_id"`
	Action    TransactionAction `json:"action"`
	CreatedAt time.Time         `json:"created_at"`
}

// User owns entries and authenticates via username/password.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Password    string    `json:"-"` // opaque hashed credential, never serialized
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Session is an authenticated context created by login. It is referenced
// exclusively by the caller holding the session id.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ValidUntil time.Time `json:"valid_until"`
	CreatedAt  time.Time `json:"created_at"`
}
