// Package report accumulates the outcome of a validation run and renders it.
//
// A Log is created at the start of a run, passed by pointer through the validators, and read once the run
// is over. It only ever grows: no recorded error is discarded.
package report

import (
	"path/filepath"
	"strconv"
	"time"
)

// Kind classifies a validation error.
type Kind string

const (
	// KindMissingField is raised when a required top-level field is absent from a record.
	KindMissingField Kind = "MISSING_FIELD"
	// KindInvalidTitle is raised when spot_data.title is not a catalog title.
	KindInvalidTitle Kind = "INVALID_TITLE"
	// KindInvalidSpotName is raised when spot_name is not allowed for the record title.
	KindInvalidSpotName Kind = "INVALID_SPOT_NAME"
	// KindInvalidSpotType is raised when spot_type is not a catalog spot type.
	KindInvalidSpotType Kind = "INVALID_SPOT_TYPE"
	// KindInvalidSpotDataFormat is raised when spot_data does not match the schema of its spot type.
	KindInvalidSpotDataFormat Kind = "INVALID_SPOT_DATA_FORMAT"
	// KindInvalidField is raised when a filter field is not an array.
	KindInvalidField Kind = "INVALID_FIELD"
	// KindMissingRequiredSecondaryFilters is raised when secondary_filters is not exactly the required set.
	KindMissingRequiredSecondaryFilters Kind = "MISSING_REQUIRED_SECONDARY_FILTERS"
	// KindInvalidFormat is raised when a payload file does not hold a JSON array.
	KindInvalidFormat Kind = "INVALID_FORMAT"
	// KindFileError is raised when a payload file cannot be read or parsed.
	KindFileError Kind = "FILE_ERROR"
)

// NoItem is the item index of file-level errors.
const NoItem = -1

// ValidationError is a single rule failure.
type ValidationError struct {
	File      string
	ItemIndex int
	SpotName  string
	Kind      Kind
	Message   string
	Timestamp time.Time
}

// Item returns the item index for display, or "N/A" for file-level errors.
func (e ValidationError) Item() string {
	if e.ItemIndex < 0 {
		return "N/A"
	}
	return strconv.Itoa(e.ItemIndex)
}

// CompliantItem is a record whose secondary filters are exactly the required set.
type CompliantItem struct {
	File      string
	ItemIndex int
	SpotName  string
}

// FileResult is the outcome of processing one payload file.
type FileResult struct {
	File       string
	Items      int
	ValidItems int
	// Failed is set when the file could not be read, parsed, or was not an array.
	Failed bool
	// Problem describes why the file failed, when Failed is set.
	Problem string
}

// InvalidItems is the number of records which raised at least one error.
func (r FileResult) InvalidItems() int {
	return r.Items - r.ValidItems
}

// Valid reports whether the file was processed and all its records are valid.
func (r FileResult) Valid() bool {
	return !r.Failed && r.InvalidItems() == 0
}

// Name is the base name of the file.
func (r FileResult) Name() string {
	return filepath.Base(r.File)
}

// Mode is the kind of run that produced a Run.
type Mode string

const (
	// ModeValidate is a full validation run.
	ModeValidate Mode = "validate"
	// ModeSearch only looks for records carrying the required secondary filters.
	ModeSearch Mode = "search-filters"
)

// Run is the complete outcome of a run over a set of payload files.
type Run struct {
	ID      string
	Mode    Mode
	Started time.Time
	Files   []FileResult
	Log     *Log
}

// ValidFiles is the number of files without any error.
func (r Run) ValidFiles() int {
	var n int
	for _, f := range r.Files {
		if f.Valid() {
			n++
		}
	}
	return n
}

// InvalidFiles is the number of files with at least one error.
func (r Run) InvalidFiles() int {
	return len(r.Files) - r.ValidFiles()
}
