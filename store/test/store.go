package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/openclaw/assistant/internal/profile"
	"github.com/openclaw/assistant/store"
	"github.com/openclaw/assistant/store/db"
)

// NewTestingStore creates a migrated sqlite-backed store in a temp dir.
// The sqlite driver carries the full schema, so storage tests run without a
// postgres instance.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   dir,
		DSN:    filepath.Join(dir, "assistant_test.db"),
	}

	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	st := store.New(driver, p)
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Logf("failed to close test store: %v", err)
		}
	})

	return st
}
