package visits

import (
	"github.com/rewiredtx/rewire/internal/cli"
)

type ReportCmd struct {
	Patient string `arg:"" help:"Patient ID or name."`
	Out     string `help:"Output directory (defaults to report.output_dir)." type:"path"`
}

func (c *ReportCmd) Run(ctx *cli.Context) error {
	p, err := cli.ResolvePatient(c.Patient)
	if err != nil {
		return err
	}
	path, err := ctx.Dashboard.Report(p.ID, c.Out)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Report written: %s\n", path)
	return nil
}
