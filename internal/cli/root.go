package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rewiredtx/rewire/internal/backup"
	"github.com/rewiredtx/rewire/internal/config"
	"github.com/rewiredtx/rewire/internal/dashboard"
	"github.com/rewiredtx/rewire/internal/logger"
	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/session"
	"github.com/rewiredtx/rewire/internal/storage"
	"github.com/rewiredtx/rewire/internal/storage/sqlite"
)

type Context struct {
	Store     storage.Provider
	Settings  *config.Manager
	Dashboard *dashboard.Service
	// ConfigDir holds the database, settings file, logs and backups.
	ConfigDir string
	Out       io.Writer
}

func NewContext(store storage.Provider, settings *config.Manager, configDir string) *Context {
	return &Context{
		Store:     store,
		Settings:  settings,
		Dashboard: dashboard.New(store, settings),
		ConfigDir: configDir,
		Out:       os.Stdout,
	}
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// SQLitePath returns the database file when the store is SQLite. Backups
// only apply to SQLite.
func (c *Context) SQLitePath() (string, bool) {
	s, ok := c.Store.(*sqlite.Store)
	if !ok {
		return "", false
	}
	return s.GetConfigPath(), true
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	path, ok := c.SQLitePath()
	if !ok {
		return
	}
	if _, err := backup.NewManager(path).CreateBackup(); err != nil {
		// Log warning but don't interrupt the visit
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolvePatient looks up a roster patient by id or name.
func ResolvePatient(idOrName string) (models.Patient, error) {
	p, ok := models.FindPatient(idOrName)
	if !ok {
		return models.Patient{}, fmt.Errorf("%q: %w", idOrName, session.ErrUnknownPatient)
	}
	return p, nil
}

// FormatRisk renders a risk level with its icon and score.
func FormatRisk(a models.RiskAssessment) string {
	return fmt.Sprintf("%s %s risk · Score %d/100", a.Level.Icon(), a.Level, a.Score)
}
