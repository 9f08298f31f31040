package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fyf-go/internal/fyf"
	"fyf-go/internal/model"
	"fyf-go/internal/store/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the fyf.Store interface using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store connection.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenConnection opens and configures a SQLite connection with appropriate PRAGMAs.
// Exported for tools and tests that need a properly configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward
	// compatibility). The cascade semantics of users/entries/transactions
	// depend on this.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

const entryColumns = `id, name, size, type, status, author_id, parent_id,
	is_deleted, is_deleted_since, permission, permission_inclusive, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*model.Entry, error) {
	var (
		e         model.Entry
		since     sql.NullTime
		inclusive string
	)
	err := row.Scan(&e.ID, &e.Name, &e.Size, &e.Type, &e.Status, &e.AuthorID, &e.ParentID,
		&e.IsDeleted, &since, &e.Permission, &inclusive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if since.Valid {
		t := since.Time
		e.IsDeletedSince = &t
	}
	if err := json.Unmarshal([]byte(inclusive), &e.PermissionInclusive); err != nil {
		return nil, fmt.Errorf("decoding permission_inclusive: %w", err)
	}
	return &e, nil
}

func encodeInclusive(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encoding permission_inclusive: %w", err)
	}
	return string(raw), nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// placeholders returns "?,?,...,?" with n placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Entry operations

func (s *SQLiteStore) FindEntry(ctx context.Context, id string) (*model.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding entry: %w", err)
	}
	return entry, nil
}

func (s *SQLiteStore) ListEntries(ctx context.Context, q fyf.ListQuery) ([]*model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE author_id = ? AND status = ?`
	args := []any{q.AuthorID, model.EntryStatusFinalized}

	if !q.IncludeDeleted {
		query += ` AND is_deleted = 0`
	}
	if q.ParentID != "" {
		query += ` AND parent_id = ?`
		args = append(args, q.ParentID)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) CreateEntry(ctx context.Context, entry *model.Entry, txn *model.Transaction) error {
	inclusive, err := encodeInclusive(entry.PermissionInclusive)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Name, entry.Size, entry.Type, entry.Status, entry.AuthorID, entry.ParentID,
		entry.IsDeleted, nullTime(entry.IsDeletedSince), entry.Permission, inclusive,
		entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateEntry(ctx context.Context, entry *model.Entry, txn *model.Transaction) error {
	inclusive, err := encodeInclusive(entry.PermissionInclusive)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE entries
		SET name = ?, size = ?, type = ?, status = ?, parent_id = ?,
		    is_deleted = ?, is_deleted_since = ?, permission = ?, permission_inclusive = ?,
		    updated_at = ?
		WHERE id = ?`,
		entry.Name, entry.Size, entry.Type, entry.Status, entry.ParentID,
		entry.IsDeleted, nullTime(entry.IsDeletedSince), entry.Permission, inclusive,
		entry.UpdatedAt, entry.ID)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// MarkEntryTree sets the soft-delete mark across the closure of rootID as
// one bulk update inside one transaction, so concurrent readers never
// observe a partially-cascaded tree.
func (s *SQLiteStore) MarkEntryTree(ctx context.Context, rootID string, deleted bool, since *time.Time, updatedAt time.Time, txn *model.Transaction) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	closure, err := descendantClosure(ctx, tx, rootID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE entries
		SET is_deleted = ?, is_deleted_since = ?, updated_at = ?
		WHERE id IN (`+placeholders(len(closure))+`)`,
		append([]any{deleted, nullTime(since), updatedAt}, idArgs(closure)...)...)
	if err != nil {
		return nil, fmt.Errorf("marking entry tree: %w", err)
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return closure, nil
}

func (s *SQLiteStore) DescendantIDs(ctx context.Context, id string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	closure, err := descendantClosure(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return closure[1:], nil // drop the root itself
}

// descendantClosure expands the adjacency frontier of rootID until a fixed
// point and returns rootID plus every transitive child. Already-visited
// ids are skipped, which bounds the traversal even if the parent graph has
// been corrupted into a cycle.
func descendantClosure(ctx context.Context, tx *sql.Tx, rootID string) ([]string, error) {
	closure := []string{rootID}
	seen := map[string]bool{rootID: true}
	frontier := []string{rootID}

	for len(frontier) > 0 {
		rows, err := tx.QueryContext(ctx, `
			SELECT id FROM entries WHERE parent_id IN (`+placeholders(len(frontier))+`)`,
			idArgs(frontier)...)
		if err != nil {
			return nil, fmt.Errorf("expanding closure frontier: %w", err)
		}

		var next []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning child id: %w", err)
			}
			if !seen[id] {
				seen[id] = true
				next = append(next, id)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("expanding closure frontier: %w", err)
		}
		rows.Close()

		closure = append(closure, next...)
		frontier = next
	}
	return closure, nil
}

func idArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// DeleteEntry hard-deletes the single entry row. The audit row is written
// first in the same transaction; the entry_id cascade then removes it
// together with the rest of the entry's transactions when the row goes.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, id string, txn *model.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) EntryTransactions(ctx context.Context, entryID string) ([]*model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entry_id, actor_id, action, created_at
		FROM transactions WHERE entry_id = ? ORDER BY created_at, rowid`, entryID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txns []*model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.EntryID, &t.ActorID, &t.Action, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txns = append(txns, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txns, nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, txn *model.Transaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, entry_id, actor_id, action, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		txn.ID, txn.EntryID, txn.ActorID, txn.Action, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

// User operations

func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, display_name, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.DisplayName, user.Password, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindUser(ctx context.Context, id string) (*model.User, error) {
	return s.findUser(ctx, `SELECT id, username, display_name, password, created_at, updated_at
		FROM users WHERE id = ?`, id)
}

func (s *SQLiteStore) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findUser(ctx, `SELECT id, username, display_name, password, created_at, updated_at
		FROM users WHERE username = ?`, username)
}

func (s *SQLiteStore) findUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.DisplayName, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return &u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, display_name, password, created_at, updated_at
		FROM users ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *SQLiteStore) UpdateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET username = ?, display_name = ?, password = ?, updated_at = ?
		WHERE id = ?`,
		user.Username, user.DisplayName, user.Password, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// Session operations

func (s *SQLiteStore) CreateSession(ctx context.Context, session *model.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, valid_until, created_at)
		VALUES (?, ?, ?, ?)`,
		session.ID, session.UserID, session.ValidUntil, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindSession(ctx context.Context, id string) (*model.Session, error) {
	var sess model.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, valid_until, created_at FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.UserID, &sess.ValidUntil, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding session: %w", err)
	}
	return &sess, nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp brings the database schema to the latest version.
func (s *SQLiteStore) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteStore implements the fyf.Store interface
var _ fyf.Store = (*SQLiteStore)(nil)
