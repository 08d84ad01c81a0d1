// Package testutil provides shared helpers for tests that need a migrated
// run history store.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/autoparts-catalog/internal/model"
	"github.com/Veraticus/autoparts-catalog/internal/storage"
)

// SetupTestStore creates a migrated in-memory store that is closed when
// the test ends.
func SetupTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SeedRun stores run with records or fails the test.
func SeedRun(t *testing.T, store *storage.SQLiteStorage, run *model.Run, records model.Table) {
	t.Helper()

	if err := store.SaveRun(context.Background(), run, records); err != nil {
		t.Fatalf("failed to seed run %q: %v", run.Source, err)
	}
}
