package profile

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "profiles.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return newTestSQLiteStore(t)
	})
}

func TestSQLiteStoreMigrationIsIdempotent(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	if err := store.Create(ctx, newTestProfile(testOwner)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	again, err := NewSQLiteStore(store.db)
	if err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
	if _, err := again.Get(ctx, testOwner); err != nil {
		t.Fatalf("profile lost after re-migration: %v", err)
	}
}

func TestSQLiteStoreWithRegistry(t *testing.T) {
	reg := NewRegistry(newTestSQLiteStore(t))
	ctx := context.Background()

	if _, err := reg.Create(ctx, testOwner, CreateParams{Title: "Hello", Description: "World"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 3 {
		if _, err := reg.AddLink(ctx, testOwner, testLinkParams("x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := reg.DeleteLink(ctx, testOwner, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := reg.AddLink(ctx, testOwner, testLinkParams("y"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last := p.Links[len(p.Links)-1]; last.ID != 4 {
		t.Fatalf("expected id 4 after deleting the last link, got %d", last.ID)
	}
}
