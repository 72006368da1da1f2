package sqlite

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/rewiredtx/rewire/internal/storage"
	"github.com/rewiredtx/rewire/internal/storage/storagetest"
)

var _ storage.Provider = (*Store)(nil)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "rewire.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Provider(t *testing.T) {
	storagetest.Run(t, setupTestStore(t))
}

func TestLoadWithoutInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	if err == nil || !strings.Contains(err.Error(), "rewire init") {
		t.Errorf("expected not-initialized error, got %v", err)
	}
}

func TestReloadKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewire.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	storagetest.Run(t, store)
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	plans, err := reopened.GetPlans("")
	if err != nil || len(plans) != 1 {
		t.Errorf("expected plan to survive reopen, got %d, %v", len(plans), err)
	}
	st, err := reopened.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus failed: %v", err)
	}
	if st.Current != st.Latest || len(st.Pending) != 0 {
		t.Errorf("schema not current after reopen: %+v", st)
	}
	if reopened.GetConfigPath() != path {
		t.Errorf("GetConfigPath = %s", reopened.GetConfigPath())
	}
}
