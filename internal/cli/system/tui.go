package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rewiredtx/rewire/internal/cli"
	"github.com/rewiredtx/rewire/internal/config"
	"github.com/rewiredtx/rewire/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// Back up on startup, before the visit changes anything
	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(ctx.Dashboard), tea.WithAltScreen())
	ctx.Settings.Watch(func(s config.Settings) {
		p.Send(tui.SettingsChangedMsg{Settings: s})
	})
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard exited with an error: %w", err)
	}
	return nil
}
