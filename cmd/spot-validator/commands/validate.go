package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spot-validator/spot-validator/internal/catalog"
	"github.com/spot-validator/spot-validator/internal/metrics"
	"github.com/spot-validator/spot-validator/internal/processor"
	"github.com/spot-validator/spot-validator/internal/report"
	"github.com/spot-validator/spot-validator/internal/validator"
)

// validateRun validates or searches the payload files, depending on the selected mode.
func (a App) validateRun(out io.Writer, c *catalog.Catalog) error {
	p, err := processor.New(a.config.Dir, validator.New(c),
		processor.WithExtensions(a.config.Extensions...),
		processor.WithExcluded(a.config.Exclude...),
		processor.WithClock(a.now),
	)
	if err != nil {
		return fmt.Errorf("failed to create processor: %v", err)
	}

	process := p.Validate
	if a.config.searchFilters {
		process = p.Search
	}

	console := report.NewConsole(out)
	run, err := process()
	if errors.Is(err, processor.ErrNoFiles) {
		console.NoFiles(p.Dir())
		return nil
	}
	if err != nil {
		return err
	}

	if a.config.searchFilters {
		console.Search(run, c.RequiredSecondaryFilters())
	} else {
		console.Validation(run, c.RequiredSecondaryFilters())
		if len(run.Log.Errors()) > 0 {
			if err := report.WriteLogFile(a.config.LogFile, run, a.now()); err != nil {
				return err
			}
			console.LogWritten(a.config.LogFile)
		}
	}

	if a.config.MetricsFile == "" {
		return nil
	}
	rec := metrics.New(prometheus.NewRegistry())
	rec.Observe(run)
	return rec.WriteTextfile(a.config.MetricsFile)
}

// catalogRun prints the catalog in the configured format.
func (a App) catalogRun(out io.Writer, c *catalog.Catalog) error {
	slog.Debug("Printing catalog", "format", a.config.Format)

	if a.config.Format == catalog.FormatText {
		report.NewConsole(out).Catalog(c.Summary())
		return nil
	}
	return c.Export(out, a.config.Format)
}
