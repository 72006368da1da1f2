package visits

import (
	"fmt"

	"github.com/rewiredtx/rewire/internal/cli"
)

type SyncCmd struct {
	Biometric string `help:"Biometric CSV export (defaults to data.biometric_csv)." type:"path"`
	EEG       string `help:"EEG CSV export (defaults to data.eeg_csv)." type:"path" name:"eeg"`
}

func (c *SyncCmd) Run(ctx *cli.Context) error {
	// Snapshot the database before the readings are replaced
	ctx.PerformAutomaticBackup()

	res, err := ctx.Dashboard.Sync(c.Biometric, c.EEG)
	if err != nil {
		return err
	}

	ctx.Printf("✓ Synced %d biometric rows from %s\n", res.Info.BiometricRows, res.Info.BiometricSource)
	ctx.Printf("✓ Synced %d EEG rows from %s\n", res.Info.EEGRows, res.Info.EEGSource)
	if res.HasIssues() {
		ctx.Println()
		if res.Skipped > 0 {
			ctx.Printf("⚠ Skipped %d row(s) with non-finite values; other issues were imported anyway:\n", res.Skipped)
		} else {
			ctx.Println("⚠ Data issues (rows were imported anyway):")
		}
		if res.Biometric.HasIssues() {
			ctx.Println(res.Biometric.FormatReport())
		}
		if res.EEG.HasIssues() {
			ctx.Println(res.EEG.FormatReport())
		}
	}
	return nil
}

// formatSyncAge describes when data was last synced.
func formatSyncAge(ctx *cli.Context) string {
	info, err := ctx.Store.GetLastSync()
	if err != nil {
		return "never synced"
	}
	return fmt.Sprintf("last synced %s", info.SyncedAt.Local().Format("2006-01-02 15:04"))
}
