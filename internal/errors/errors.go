package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/rewiredtx/rewire/internal/loader"
	"github.com/rewiredtx/rewire/internal/logger"
	"github.com/rewiredtx/rewire/internal/validation"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n" + hint
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint returns a follow-up instruction for errors the user can fix by
// syncing data, or "" for anything else.
func Hint(err error) string {
	switch {
	case stderrors.Is(err, loader.ErrSourceMissing):
		return "Hint: export the biometric and EEG files, then run 'rewire sync'."
	case stderrors.Is(err, validation.ErrNoBiometrics):
		return "Hint: run 'rewire sync' to load the latest biometric data."
	case stderrors.Is(err, loader.ErrMissingColumn):
		return "Hint: check the export header row."
	}
	return ""
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
