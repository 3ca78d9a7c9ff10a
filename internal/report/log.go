package report

import (
	"slices"
	"time"
)

// Log is the run-scoped accumulator of validation errors and filter-compliant records.
// Insertion order is preserved everywhere.
type Log struct {
	errors    []ValidationError
	compliant []CompliantItem

	now func() time.Time
}

type options struct {
	now func() time.Time
}

// Options represents an optional function to override Log default values.
type Options func(*options)

// WithClock overrides the clock used to timestamp errors.
func WithClock(now func() time.Time) Options {
	return func(o *options) {
		o.now = now
	}
}

// NewLog returns an empty Log.
func NewLog(args ...Options) *Log {
	opts := options{now: time.Now}
	for _, opt := range args {
		opt(&opts)
	}

	return &Log{now: opts.now}
}

// AddError records a validation error, timestamped now.
func (l *Log) AddError(file string, itemIndex int, spotName string, kind Kind, message string) {
	l.errors = append(l.errors, ValidationError{
		File:      file,
		ItemIndex: itemIndex,
		SpotName:  spotName,
		Kind:      kind,
		Message:   message,
		Timestamp: l.now(),
	})
}

// AddCompliant records a record carrying exactly the required secondary filters.
func (l *Log) AddCompliant(file string, itemIndex int, spotName string) {
	l.compliant = append(l.compliant, CompliantItem{File: file, ItemIndex: itemIndex, SpotName: spotName})
}

// Errors returns every recorded error in insertion order.
func (l *Log) Errors() []ValidationError {
	return slices.Clone(l.errors)
}

// Compliant returns every filter-compliant record in insertion order.
func (l *Log) Compliant() []CompliantItem {
	return slices.Clone(l.compliant)
}

// KindCount is the number of errors of a kind.
type KindCount struct {
	Kind  Kind
	Count int
}

// ErrorsByKind counts errors per kind, most frequent first. Ties keep first-occurrence order.
func (l *Log) ErrorsByKind() []KindCount {
	var counts []KindCount
	index := make(map[Kind]int)
	for _, e := range l.errors {
		i, ok := index[e.Kind]
		if !ok {
			i = len(counts)
			index[e.Kind] = i
			counts = append(counts, KindCount{Kind: e.Kind})
		}
		counts[i].Count++
	}

	slices.SortStableFunc(counts, func(a, b KindCount) int {
		return b.Count - a.Count
	})
	return counts
}

// FileErrors are the errors raised for one file.
type FileErrors struct {
	File   string
	Errors []ValidationError
}

// ErrorsByFile groups errors per file, in first-occurrence order.
func (l *Log) ErrorsByFile() []FileErrors {
	return GroupByFile(l.errors)
}

// GroupByFile groups errors per file, in first-occurrence order.
func GroupByFile(errs []ValidationError) []FileErrors {
	var groups []FileErrors
	index := make(map[string]int)
	for _, e := range errs {
		i, ok := index[e.File]
		if !ok {
			i = len(groups)
			index[e.File] = i
			groups = append(groups, FileErrors{File: e.File})
		}
		groups[i].Errors = append(groups[i].Errors, e)
	}
	return groups
}

// ErrorsByEntity returns the errors raised for records named spotName.
func (l *Log) ErrorsByEntity(spotName string) []ValidationError {
	var errs []ValidationError
	for _, e := range l.errors {
		if e.SpotName == spotName {
			errs = append(errs, e)
		}
	}
	return errs
}

// FileCompliant are the filter-compliant records of one file.
type FileCompliant struct {
	File  string
	Items []CompliantItem
}

// CompliantByFile groups filter-compliant records per file, in first-occurrence order.
func (l *Log) CompliantByFile() []FileCompliant {
	var groups []FileCompliant
	index := make(map[string]int)
	for _, c := range l.compliant {
		i, ok := index[c.File]
		if !ok {
			i = len(groups)
			index[c.File] = i
			groups = append(groups, FileCompliant{File: c.File})
		}
		groups[i].Items = append(groups[i].Items, c)
	}
	return groups
}

// HasCompliantDefault reports whether any record named spotName passed the secondary filter check.
func (l *Log) HasCompliantDefault(spotName string) bool {
	return slices.ContainsFunc(l.compliant, func(c CompliantItem) bool {
		return c.SpotName == spotName
	})
}

// Partition splits errs into secondary filter errors and all the others, keeping order.
func Partition(errs []ValidationError) (filterErrs, others []ValidationError) {
	for _, e := range errs {
		if e.Kind == KindMissingRequiredSecondaryFilters {
			filterErrs = append(filterErrs, e)
			continue
		}
		others = append(others, e)
	}
	return filterErrs, others
}

// EntityFilterStatus is the secondary filter compliance of one spot name.
type EntityFilterStatus struct {
	SpotName string
	// HasCompliantDefault is set when another record with the same spot name carries the required filters.
	HasCompliantDefault bool
	// Failures are the failing records, in insertion order.
	Failures []ValidationError
}

// FilterClassification groups the secondary filter errors of errs per spot name.
// Filter compliance is judged per spot name over the whole run: a spot name with at least one compliant
// record is reported as such instead of listing each failing record.
func (l *Log) FilterClassification(errs []ValidationError) []EntityFilterStatus {
	filterErrs, _ := Partition(errs)

	var statuses []EntityFilterStatus
	index := make(map[string]int)
	for _, e := range filterErrs {
		i, ok := index[e.SpotName]
		if !ok {
			i = len(statuses)
			index[e.SpotName] = i
			statuses = append(statuses, EntityFilterStatus{
				SpotName:            e.SpotName,
				HasCompliantDefault: l.HasCompliantDefault(e.SpotName),
			})
		}
		statuses[i].Failures = append(statuses[i].Failures, e)
	}
	return statuses
}
