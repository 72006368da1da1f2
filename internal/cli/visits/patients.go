package visits

import (
	"fmt"

	"github.com/rewiredtx/rewire/internal/cli"
	"github.com/rewiredtx/rewire/internal/models"
)

type PatientsCmd struct{}

func (c *PatientsCmd) Run(ctx *cli.Context) error {
	ctx.Printf("Patients (%s):\n", formatSyncAge(ctx))
	for _, p := range models.Roster {
		last := "not assessed"
		history, err := ctx.Store.GetAssessments(p.ID, 1)
		if err != nil {
			return fmt.Errorf("failed to get assessments: %w", err)
		}
		if len(history) > 0 {
			a := history[0]
			last = fmt.Sprintf("%s %s on %s", a.Level.Icon(), a.Level, a.AssessedAt.Local().Format("2006-01-02"))
		}
		ctx.Printf("  %s  %-14s %-5s %s\n", p.ID, p.Name, p.Diagnosis, last)
	}
	return nil
}
