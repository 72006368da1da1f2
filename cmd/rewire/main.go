package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/rewiredtx/rewire/internal/cli"
	"github.com/rewiredtx/rewire/internal/cli/backups"
	"github.com/rewiredtx/rewire/internal/cli/plans"
	"github.com/rewiredtx/rewire/internal/cli/system"
	"github.com/rewiredtx/rewire/internal/cli/visits"
	"github.com/rewiredtx/rewire/internal/config"
	"github.com/rewiredtx/rewire/internal/constants"
	"github.com/rewiredtx/rewire/internal/errors"
	"github.com/rewiredtx/rewire/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Database path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use the environment or the OS keyring instead." type:"string" default:"${default_config}"`
	Settings string `help:"Settings file (defaults to config.yaml next to the database)." type:"path"`
	Debug    bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd     `cmd:"" help:"Initialize rewire storage and default settings."`
	Sync     visits.SyncCmd     `cmd:"" help:"Import the latest biometric and EEG exports."`
	Patients visits.PatientsCmd `cmd:"" help:"List the patient roster."`
	Assess   visits.AssessCmd   `cmd:"" help:"Score a patient's stress risk."`
	Progress visits.ProgressCmd `cmd:"" help:"Show a patient's EEG neuro-score progress."`
	Plan     plans.PlanCmd      `cmd:"" help:"Build, send and list homework plans."`
	Report   visits.ReportCmd   `cmd:"" help:"Write a patient's HTML progress report."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the therapist dashboard." default:"1"`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage the database connection string in the OS keyring."`
}

// skipsLoad reports whether a command opens (or never needs) the database
// itself.
func skipsLoad(command string) bool {
	return command == "init" || command == "doctor" || strings.HasPrefix(command, "keyring")
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("ReWire therapist dashboard: biometric risk, EEG progress and homework plans"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	configDir, err := cli.ConfigDir(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}

	settings, err := config.Load(configDir, CLI.Settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: configDir,
		Level:     settings.Settings().Log.Level,
	}); err != nil {
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(1)
	}
	defer logger.Close()

	store, err := cli.OpenStore(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	if !skipsLoad(ctx.Command()) {
		if err := store.Load(); err != nil {
			store.Close()
			errors.Fatal(err)
		}
	}

	appCtx := cli.NewContext(store, settings, configDir)
	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}
