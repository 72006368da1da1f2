package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rewiredtx/rewire/internal/storage/sqlite"
)

// setupTestDB creates an initialised rewire database with one sync recorded.
func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "rewire.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if _, err := store.GetDB().Exec(`INSERT INTO eeg_readings (seq, patient_id, session, faa, tbr) VALUES (0, 'RW-001', 1, -0.2, 0.7)`); err != nil {
		t.Fatalf("failed to seed database: %v", err)
	}
	store.Close()
	return dbPath
}

func countEEG(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM eeg_readings").Scan(&n); err != nil {
		t.Fatalf("failed to count rows in %s: %v", path, err)
	}
	return n
}

func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(time.Hour)
		return t
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Dir(backupPath) != mgr.GetBackupDir() {
		t.Errorf("backup written outside backup dir: %s", backupPath)
	}
	if n := countEEG(t, backupPath); n != 1 {
		t.Errorf("backup has %d EEG rows, want 1", n)
	}
}

func TestSameSecondBackupsGetCounter(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2025, 5, 13, 9, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	first, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("first backup failed: %v", err)
	}
	second, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("second backup failed: %v", err)
	}
	if first == second {
		t.Fatal("backups overwrote each other")
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected 2 backups, got %d", len(backups))
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.keep = 3
	mgr.now = fixedClock(time.Date(2025, 5, 1, 8, 0, 0, 0, time.Local))

	var last string
	for i := 0; i < 5; i++ {
		p, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("backup %d failed: %v", i, err)
		}
		last = p
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(backups))
	}
	if backups[0].Path != last {
		t.Errorf("newest backup should be first, got %s", backups[0].Path)
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "rewire-latest.db", "other-20250101-120000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %+v", backups)
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2025, 5, 1, 8, 0, 0, 0, time.Local))

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM eeg_readings"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	safety, err := mgr.RestoreBackup(mgr.ResolveBackup(filepath.Base(backupPath)))
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if n := countEEG(t, dbPath); n != 1 {
		t.Errorf("restored database has %d EEG rows, want 1", n)
	}
	if safety == "" || countEEG(t, safety) != 0 {
		t.Errorf("safety backup should hold the pre-restore state: %q", safety)
	}
}

func TestBackupWithNoDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error when database does not exist")
	}
}

func TestRestoreWithCorruptedBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	corrupt := filepath.Join(t.TempDir(), "rewire-20250101-120000.db")
	if err := os.WriteFile(corrupt, []byte("definitely not sqlite"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(corrupt); err == nil {
		t.Error("expected error restoring corrupted backup")
	}
	if n := countEEG(t, dbPath); n != 1 {
		t.Errorf("database changed after failed restore: %d rows", n)
	}
}
