package store_test

import (
	"context"
	"testing"

	"fyf-go/internal/config"
	"fyf-go/internal/store"
)

func TestNewStoreFromConfig(t *testing.T) {
	t.Run("memory store comes pre-migrated", func(t *testing.T) {
		st, err := store.NewStoreFromConfig(config.DatabaseConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		defer st.Close()

		if err := st.CheckMigrations(); err != nil {
			t.Errorf("CheckMigrations() error = %v", err)
		}
	})

	t.Run("sqlite requires a data dir", func(t *testing.T) {
		if _, err := store.NewStoreFromConfig(config.DatabaseConfig{Type: "sqlite"}); err == nil {
			t.Error("NewStoreFromConfig() error = nil without data_dir")
		}
	})

	t.Run("sqlite creates the database file", func(t *testing.T) {
		dir := t.TempDir()
		st, err := store.NewStoreFromConfig(config.DatabaseConfig{Type: "sqlite", DataDir: dir})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		defer st.Close()

		if err := st.MigrateUp(); err != nil {
			t.Fatalf("MigrateUp() error = %v", err)
		}

		got, err := st.FindEntry(context.Background(), "nothing")
		if err != nil {
			t.Errorf("FindEntry() error = %v", err)
		}
		if got != nil {
			t.Errorf("FindEntry() = %+v, want nil", got)
		}
	})

	t.Run("unknown type fails", func(t *testing.T) {
		if _, err := store.NewStoreFromConfig(config.DatabaseConfig{Type: "postgres"}); err == nil {
			t.Error("NewStoreFromConfig() error = nil for unknown type")
		}
	})
}
