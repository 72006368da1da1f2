package backups

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rewiredtx/rewire/internal/backup"
	"github.com/rewiredtx/rewire/internal/cli"
	"github.com/rewiredtx/rewire/internal/config"
	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/storage/sqlite"
	"github.com/rewiredtx/rewire/internal/storage/storagetest"
)

func setupSQLiteContext(t *testing.T) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(dir, "rewire.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings, err := config.Load(dir, "")
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	ctx := cli.NewContext(store, settings, dir)
	var out bytes.Buffer
	ctx.Out = &out
	return ctx, store, &out
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, _, out := setupSQLiteContext(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "1 total") {
		t.Errorf("expected one backup:\n%s", out.String())
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, store, _ := setupSQLiteContext(t)

	bio := []models.BiometricReading{{PatientID: "RW-001", RestingHR: 70, HRV: 60, Sleep: 8, Activity: 40}}
	if err := store.ReplaceReadings(bio, nil, models.SyncInfo{}); err != nil {
		t.Fatalf("ReplaceReadings failed: %v", err)
	}
	backupPath, err := backup.NewManager(store.GetConfigPath()).CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if err := store.ReplaceReadings(nil, nil, models.SyncInfo{}); err != nil {
		t.Fatalf("ReplaceReadings failed: %v", err)
	}

	cmd := &BackupRestoreCmd{BackupFile: filepath.Base(backupPath), Yes: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if err := store.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	rows, err := store.GetBiometrics("RW-001")
	if err != nil || len(rows) != 1 {
		t.Errorf("expected the backed-up reading, got %d rows, %v", len(rows), err)
	}
}

func TestBackupRestore_Missing(t *testing.T) {
	ctx, _, _ := setupSQLiteContext(t)
	if err := (&BackupRestoreCmd{BackupFile: "rewire-20990101-000000.db", Yes: true}).Run(ctx); err == nil {
		t.Error("expected an error for a missing backup")
	}
}

func TestBackup_NotSQLite(t *testing.T) {
	settings, err := config.Load(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	ctx := cli.NewContext(storagetest.NewFake(), settings, t.TempDir())
	if err := (&BackupCreateCmd{}).Run(ctx); !errors.Is(err, ErrNotSQLite) {
		t.Errorf("expected ErrNotSQLite, got %v", err)
	}
}
