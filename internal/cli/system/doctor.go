package system

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rewiredtx/rewire/internal/backup"
	"github.com/rewiredtx/rewire/internal/cli"
	"github.com/rewiredtx/rewire/internal/keyring"
	"github.com/rewiredtx/rewire/internal/migration"
	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/storage"
	"github.com/rewiredtx/rewire/internal/storage/sqlite"
	"github.com/rewiredtx/rewire/internal/validation"
)

type DoctorCmd struct{}

// migrationStatuser is implemented by the SQL backends.
type migrationStatuser interface {
	MigrationStatus() (migration.Status, error)
}

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable
	needsDB bool
	// warnOnly checks never fail the run
	warnOnly bool
	run      func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Settings", run: checkSettings},
	{name: "Data sources", warnOnly: true, run: checkDataSources},
	{name: "Last sync", needsDB: true, warnOnly: true, run: checkLastSync},
	{name: "Data validation", needsDB: true, warnOnly: true, run: checkValidation},
	{name: "OS keyring", warnOnly: true, run: checkKeyring},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	// For SQLite, also try a simple query
	if sqliteStore, ok := ctx.Store.(*sqlite.Store); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func migrationStatus(ctx *cli.Context) (migration.Status, bool, error) {
	ms, ok := ctx.Store.(migrationStatuser)
	if !ok {
		return migration.Status{}, false, nil
	}
	st, err := ms.MigrationStatus()
	if err != nil {
		return migration.Status{}, true, fmt.Errorf("failed to get schema version: %w", err)
	}
	return st, true, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	st, ok, err := migrationStatus(ctx)
	if err != nil || !ok {
		return err
	}
	if st.Current > st.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", st.Current, st.Latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	st, ok, err := migrationStatus(ctx)
	if err != nil || !ok {
		return err
	}
	if len(st.Pending) > 0 {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", st.Current, st.Latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path, ok := ctx.SQLitePath()
	if !ok {
		return nil
	}
	backups, err := backup.NewManager(path).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'rewire backup create'")
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	if ctx.Settings == nil {
		return errors.New("settings not loaded")
	}
	return ctx.Settings.Settings().Validate()
}

func checkDataSources(ctx *cli.Context) error {
	if ctx.Settings == nil {
		return nil
	}
	data := ctx.Settings.Settings().Data
	var missing []string
	for _, path := range []string{data.BiometricCSV, data.EEGCSV} {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("auto-upload files not found: %v", missing)
	}
	return nil
}

func checkLastSync(ctx *cli.Context) error {
	info, err := ctx.Store.GetLastSync()
	if errors.Is(err, storage.ErrNeverSynced) {
		return fmt.Errorf("data has never been synced - run 'rewire sync'")
	}
	if err != nil {
		return err
	}
	if age := time.Since(info.SyncedAt); age > 7*24*time.Hour {
		return fmt.Errorf("data was last synced %s ago", age.Round(time.Hour))
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	bio, err := ctx.Store.GetBiometrics("")
	if err != nil {
		return fmt.Errorf("failed to get biometrics: %w", err)
	}
	eeg, err := ctx.Store.GetEEG("")
	if err != nil {
		return fmt.Errorf("failed to get EEG sessions: %w", err)
	}

	v := validation.New(models.Roster)
	bioResult := v.ValidateBiometrics(bio)
	eegResult := v.ValidateEEG(eeg)
	if n := len(bioResult.Issues) + len(eegResult.Issues); n > 0 {
		return fmt.Errorf("%d data issue(s) in stored readings", n)
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
