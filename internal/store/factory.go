package store

import (
	"fmt"
	"path/filepath"

	"fyf-go/internal/config"
)

// NewStoreFromConfig creates a Store implementation based on the database
// config type. The memory variant is an in-memory SQLite database with the
// schema already applied.
func NewStoreFromConfig(cfg config.DatabaseConfig) (*SQLiteStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "fyf.db"))
	case "memory":
		st, err := NewSQLiteStore(":memory:")
		if err != nil {
			return nil, err
		}
		if err := st.MigrateUp(); err != nil {
			st.Close()
			return nil, fmt.Errorf("migrating in-memory database: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
