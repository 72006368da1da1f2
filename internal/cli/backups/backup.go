package backups

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/rewiredtx/rewire/internal/backup"
	"github.com/rewiredtx/rewire/internal/cli"
	"github.com/rewiredtx/rewire/internal/constants"
	"github.com/rewiredtx/rewire/internal/tui/forms"
)

// ErrNotSQLite is returned when backups are requested for a PostgreSQL store.
var ErrNotSQLite = errors.New("backups are only available for SQLite storage; use pg_dump for PostgreSQL")

func manager(ctx *cli.Context) (*backup.Manager, error) {
	path, ok := ctx.SQLitePath()
	if !ok {
		return nil, ErrNotSQLite
	}
	return backup.NewManager(path), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	ctx.Printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		ctx.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), sizeKB)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.GetBackupDir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `help:"Restore without asking for confirmation." short:"y"`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}

	backupPath := mgr.ResolveBackup(c.BackupFile)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		// Fall back to a file relative to the working directory
		if _, err := os.Stat(c.BackupFile); err != nil {
			return fmt.Errorf("backup file not found: tried %s and the current directory", mgr.GetBackupDir())
		}
		backupPath = c.BackupFile
	}

	if !c.Yes {
		ctx.Println("⚠️  WARNING: This will replace your current database with the backup.")
		ctx.Println("⚠️  IMPORTANT: All rewire processes (including the TUI) must be stopped before restore.")
		ctx.Printf("\nRestore from: %s\n", backupPath)
		confirmed := false
		if err := forms.NewConfirmForm("Continue?", &confirmed).Run(); err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}
		if !confirmed {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	// Close the current store connection before restoring
	if err := ctx.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database connection: %v\n", err)
	}

	safety, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	ctx.Println("✓ Database restored successfully!")
	if safety != "" {
		ctx.Printf("  Previous database saved as %s\n", filepath.Base(safety))
	}
	return nil
}
