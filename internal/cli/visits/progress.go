package visits

import (
	"errors"

	"github.com/rewiredtx/rewire/internal/cli"
	"github.com/rewiredtx/rewire/internal/neuro"
)

type ProgressCmd struct {
	Patient string `arg:"" help:"Patient ID or name."`
}

func (c *ProgressCmd) Run(ctx *cli.Context) error {
	p, err := cli.ResolvePatient(c.Patient)
	if err != nil {
		return err
	}

	summary, window, err := ctx.Dashboard.Progress(p.ID)
	if errors.Is(err, neuro.ErrEmptyWindow) {
		ctx.Printf("No EEG sessions for %s yet.\n", p)
		return nil
	}
	if err != nil {
		return err
	}

	ctx.Printf("%s · %s\n", p, p.Diagnosis)
	printProgress(ctx, summary, window)
	return nil
}
