package commands

import (
	"io"
	"time"
)

// SetArgs sets the arguments for the command.
func (a *App) SetArgs(args []string) {
	a.cmd.SetArgs(args)
}

// SetOut sets the writer the reports are printed to.
func (a *App) SetOut(w io.Writer) {
	a.cmd.SetOut(w)
}

// WithClock overrides the clock of the app.
func WithClock(now func() time.Time) Options {
	return func(o *options) {
		o.now = now
	}
}
