package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rewiredtx/rewire/internal/constants"
	"github.com/rewiredtx/rewire/internal/keyring"
	"github.com/rewiredtx/rewire/internal/logger"
	"github.com/rewiredtx/rewire/internal/storage"
	"github.com/rewiredtx/rewire/internal/storage/postgres"
	"github.com/rewiredtx/rewire/internal/storage/sqlite"
)

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// OpenStore picks the storage backend for the --config value. A PostgreSQL
// URL given on the command line must not carry a password; the full
// connection string may instead come from REWIRE_DB_CONNECTION or the OS
// keyring, which also take over when --config is left at its default.
func OpenStore(configValue string) (storage.Provider, error) {
	if postgres.IsConnString(configValue) {
		if _, err := postgres.ValidateConnString(configValue); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; "+
					"use 'rewire keyring set' or %s instead", constants.EnvDBConnection)
			}
			return nil, err
		}
		connStr, source, err := keyring.ResolveConnectionString(configValue)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using PostgreSQL storage", "source", source)
		return postgres.New(connStr), nil
	}

	if configValue == constants.DefaultConfigPath {
		connStr, source, err := keyring.ResolveConnectionString("")
		if err == nil && connStr != "" {
			logger.Debug("Using PostgreSQL storage", "source", source)
			return postgres.New(connStr), nil
		}
	}

	path, err := ExpandPath(configValue)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// ConfigDir is the directory holding settings, logs and backups for a
// --config value. PostgreSQL users keep them in the default location.
func ConfigDir(configValue string) (string, error) {
	if postgres.IsConnString(configValue) {
		configValue = constants.DefaultConfigPath
	}
	path, err := ExpandPath(configValue)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}
