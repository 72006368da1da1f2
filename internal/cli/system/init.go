package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rewiredtx/rewire/internal/cli"
	"github.com/rewiredtx/rewire/internal/config"
	"github.com/rewiredtx/rewire/internal/storage"
	"github.com/rewiredtx/rewire/internal/storage/postgres"
	"github.com/rewiredtx/rewire/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized rewire storage at: %s\n", ctx.Store.GetConfigPath())

	if ctx.ConfigDir != "" {
		path := config.SettingsPath(ctx.ConfigDir)
		written, err := config.WriteDefault(path)
		if err != nil {
			return err
		}
		if written {
			ctx.Printf("Wrote default settings to: %s\n", path)
		}
	}

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}
	return nil
}

// reset deletes an existing SQLite database file.
func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath, ok := ctx.SQLitePath()
	if !ok {
		return errors.New("--force is only supported for SQLite storage")
	}
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		// Close first to release the file
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func openSource(source string) (storage.Provider, error) {
	if postgres.IsConnString(source) {
		if _, err := postgres.ValidateConnString(source); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(source), nil
	}
	return sqlite.NewStore(source), nil
}

func (c *InitCmd) copyData(ctx *cli.Context) error {
	src, err := openSource(c.Source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	return CopyData(ctx, src, ctx.Store)
}

// CopyData moves readings, assessments and sent plans from src to dst.
func CopyData(ctx *cli.Context, src, dst storage.Provider) error {
	ctx.Println("  Copying readings...")
	bio, err := src.GetBiometrics("")
	if err != nil {
		return fmt.Errorf("failed to get biometrics from source: %w", err)
	}
	eeg, err := src.GetEEG("")
	if err != nil {
		return fmt.Errorf("failed to get EEG sessions from source: %w", err)
	}
	info, err := src.GetLastSync()
	if err != nil && !errors.Is(err, storage.ErrNeverSynced) {
		return fmt.Errorf("failed to get sync info from source: %w", err)
	}
	if len(bio) > 0 || len(eeg) > 0 || err == nil {
		if err := dst.ReplaceReadings(bio, eeg, info); err != nil {
			return fmt.Errorf("failed to store readings: %w", err)
		}
	}
	ctx.Printf("    Copied %d biometric and %d EEG rows\n", len(bio), len(eeg))

	ctx.Println("  Copying assessments...")
	assessments, err := src.GetAssessments("", 0)
	if err != nil {
		return fmt.Errorf("failed to get assessments from source: %w", err)
	}
	for _, rec := range assessments {
		if err := dst.SaveAssessment(rec); err != nil {
			return fmt.Errorf("failed to save assessment %s: %w", rec.ID, err)
		}
	}
	ctx.Printf("    Copied %d assessments\n", len(assessments))

	ctx.Println("  Copying plans...")
	plans, err := src.GetPlans("")
	if err != nil {
		return fmt.Errorf("failed to get plans from source: %w", err)
	}
	for _, plan := range plans {
		if err := dst.SavePlan(plan); err != nil {
			return fmt.Errorf("failed to save plan %s: %w", plan.ID, err)
		}
	}
	ctx.Printf("    Copied %d plans\n", len(plans))
	return nil
}
