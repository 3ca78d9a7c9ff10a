// Main package for the spot-validator command line tool.
package main

import (
	"log/slog"
	"os"

	"github.com/spot-validator/spot-validator/cmd/spot-validator/commands"
	"github.com/spot-validator/spot-validator/internal/constants"
)

// Exit codes. Invalid payloads are reported, not signaled through the exit code.
const (
	exitOK = iota
	exitFailure
	exitUsage
)

func main() {
	slog.SetLogLoggerLevel(constants.DefaultLogLevel)

	a, err := commands.New()
	if err != nil {
		slog.Error("Could not create command", "error", err)
		os.Exit(exitFailure)
	}

	os.Exit(run(a))
}

type app interface {
	Run() error
	UsageError() bool
}

func run(a app) int {
	err := a.Run()
	if err == nil {
		return exitOK
	}

	slog.Error(err.Error())
	if a.UsageError() {
		return exitUsage
	}
	return exitFailure
}
