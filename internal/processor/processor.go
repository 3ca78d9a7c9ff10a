// Package processor discovers payload files in a directory and runs them through the validator.
//
// Files are processed one after the other in lexical order. A file which cannot be read or parsed is
// recorded in the run log and never stops the run.
package processor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spot-validator/spot-validator/internal/constants"
	"github.com/spot-validator/spot-validator/internal/fileutils"
	"github.com/spot-validator/spot-validator/internal/payload"
	"github.com/spot-validator/spot-validator/internal/report"
	"github.com/spot-validator/spot-validator/internal/validator"
)

// ErrNoFiles is returned when no payload file was discovered.
var ErrNoFiles = errors.New("no payload files found")

var errNotArray = errors.New("file must contain an array of objects")

// Processor validates the payload files of a directory.
type Processor struct {
	dir        string
	validator  *validator.Validator
	extensions []string
	excluded   []string

	now   func() time.Time
	newID func() string
}

type options struct {
	extensions []string
	excluded   []string
	now        func() time.Time
	newID      func() string
}

// Options represents an optional function to override Processor default values.
type Options func(*options)

// WithExtensions sets the accepted payload file extensions, including the leading dot.
func WithExtensions(extensions ...string) Options {
	return func(o *options) {
		o.extensions = extensions
	}
}

// WithExcluded sets the file names skipped during discovery.
func WithExcluded(names ...string) Options {
	return func(o *options) {
		o.excluded = names
	}
}

// WithClock overrides the clock used to stamp runs and errors.
func WithClock(now func() time.Time) Options {
	return func(o *options) {
		o.now = now
	}
}

// New creates a Processor for the payload files of dir. The working directory is used if dir is empty.
func New(dir string, v *validator.Validator, args ...Options) (*Processor, error) {
	if v == nil {
		return nil, errors.New("validator must be set")
	}
	if dir == "" {
		dir = "."
	}

	opts := options{
		extensions: []string{constants.PayloadExtension},
		excluded:   constants.DefaultExcluded(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range args {
		opt(&opts)
	}
	if len(opts.extensions) == 0 {
		return nil, errors.New("at least one payload file extension must be set")
	}

	return &Processor{
		dir:        dir,
		validator:  v,
		extensions: opts.extensions,
		excluded:   opts.excluded,
		now:        opts.now,
		newID:      opts.newID,
	}, nil
}

// Dir is the directory scanned for payload files.
func (p Processor) Dir() string {
	return p.dir
}

// Discover returns the payload files of the directory, sorted by name.
// Only regular files, or symlinks to regular files, with an accepted extension are kept, minus the excluded names.
func (p Processor) Discover() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("could not list payload directory: %v", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if !isRegular(p.dir, e) {
			slog.Debug("Skipping non regular entry", "name", name)
			continue
		}
		if !slices.Contains(p.extensions, filepath.Ext(name)) {
			continue
		}
		if slices.Contains(p.excluded, name) {
			slog.Debug("Skipping excluded file", "name", name)
			continue
		}
		files = append(files, filepath.Join(p.dir, name))
	}
	slices.Sort(files)

	return files, nil
}

// isRegular reports whether e is a regular file once symlinks are followed.
func isRegular(dir string, e os.DirEntry) bool {
	if e.Type()&os.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	fi, err := os.Stat(filepath.Join(dir, e.Name()))
	if err != nil {
		slog.Debug("Skipping broken symlink", "name", e.Name(), "error", err)
		return false
	}
	return fi.Mode().IsRegular()
}

// Validate runs every record of every payload file through full validation.
// It returns ErrNoFiles, along with an empty run, if the directory holds no payload file.
func (p Processor) Validate() (report.Run, error) {
	return p.process(report.ModeValidate, p.validateFile)
}

// Search only looks for the records carrying exactly the required secondary filters. No validation error is
// recorded.
func (p Processor) Search() (report.Run, error) {
	return p.process(report.ModeSearch, p.searchFile)
}

func (p Processor) process(mode report.Mode, processFile func(string, *report.Log) report.FileResult) (report.Run, error) {
	run := report.Run{
		ID:      p.newID(),
		Mode:    mode,
		Started: p.now(),
		Log:     report.NewLog(report.WithClock(p.now)),
	}

	files, err := p.Discover()
	if err != nil {
		return run, err
	}
	if len(files) == 0 {
		return run, ErrNoFiles
	}
	slog.Info("Discovered payload files", "dir", p.dir, "count", len(files))

	for _, file := range files {
		run.Files = append(run.Files, processFile(file, run.Log))
	}

	return run, nil
}

func (p Processor) validateFile(file string, log *report.Log) report.FileResult {
	res := report.FileResult{File: file}

	records, err := readRecords(file)
	if err != nil {
		kind, msg := report.KindFileError, fmt.Sprintf("could not process file: %v", err)
		if errors.Is(err, errNotArray) {
			kind, msg = report.KindInvalidFormat, err.Error()
		}
		slog.Warn("Failed to process file", "file", file, "err", err)

		log.AddError(file, report.NoItem, payload.NoName, kind, msg)
		res.Failed, res.Problem = true, msg
		return res
	}

	res.Items = len(records)
	for i, record := range records {
		if p.validator.ValidateItem(file, i, record, log) {
			res.ValidItems++
		}
	}

	slog.Info("Finished validating file", "file", file, "items", res.Items, "valid", res.ValidItems)
	return res
}

// searchFile counts the filter-compliant records as the valid items of the file.
func (p Processor) searchFile(file string, log *report.Log) report.FileResult {
	res := report.FileResult{File: file}

	records, err := readRecords(file)
	if err != nil {
		slog.Warn("Failed to process file", "file", file, "err", err)
		res.Failed, res.Problem = true, err.Error()
		return res
	}

	res.Items = len(records)
	for i, record := range records {
		if p.validator.ScanItem(file, i, record, log) {
			res.ValidItems++
		}
	}

	slog.Info("Finished searching file", "file", file, "items", res.Items, "found", res.ValidItems)
	return res
}

// readRecords reads a payload file and returns its top-level array.
func readRecords(file string) ([]any, error) {
	data, err := fileutils.ReadText(file)
	if err != nil {
		return nil, err
	}

	v, err := fileutils.ParseJSON(data)
	if err != nil {
		return nil, err
	}

	records, ok := v.([]any)
	if !ok {
		return nil, errNotArray
	}
	return records, nil
}
