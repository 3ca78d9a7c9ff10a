// Package constants is responsible for defining the constants used in the application.
// It also provides utility functions to get the default configuration path.
package constants

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// CmdName is the name of the command line tool.
	CmdName = "spot-validator"

	// DefaultAppFolder is the name of the default configuration folder.
	DefaultAppFolder = "spot-validator"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn

	// DefaultLogFileName is the base name of the log written after a validation run.
	DefaultLogFileName = "log.log"

	// PayloadExtension is the default extension of payload files.
	PayloadExtension = ".json"
)

// DefaultExcluded are the file names skipped during discovery, even with a matching extension.
func DefaultExcluded() []string {
	return []string{"package.json", "package-lock.json", "tsconfig.json", "node_modules"}
}

type options struct {
	userConfigDir func() (string, error)
}

type option func(*options)

// GetDefaultConfigPath is the user directory searched for a configuration file.
// It returns an empty string when the user configuration directory is unknown.
func GetDefaultConfigPath(opts ...option) string {
	o := options{userConfigDir: os.UserConfigDir}
	for _, opt := range opts {
		opt(&o)
	}

	dir, err := o.userConfigDir()
	if err != nil || dir == "" {
		return ""
	}
	return filepath.Join(dir, DefaultAppFolder)
}
