package report_test

import (
	"testing"

	"github.com/spot-validator/spot-validator/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLog(t *testing.T) *report.Log {
	t.Helper()

	l := report.NewLog(report.WithClock(fixedClock))
	l.AddError("a.json", 0, "cmo", report.KindMissingRequiredSecondaryFilters, "filters a0")
	l.AddError("a.json", 1, "ena", report.KindInvalidTitle, "title a1")
	l.AddError("b.json", 0, "cmo", report.KindMissingRequiredSecondaryFilters, "filters b0")
	l.AddError("b.json", 1, "ear", report.KindMissingRequiredSecondaryFilters, "filters b1")
	l.AddError("c.json", report.NoItem, "N/A", report.KindFileError, "broken c")
	l.AddCompliant("d.json", 0, "ear")
	l.AddCompliant("d.json", 3, "ena")
	l.AddCompliant("a.json", 2, "ear")
	return l
}

func TestAddError(t *testing.T) {
	t.Parallel()

	l := report.NewLog(report.WithClock(fixedClock))
	l.AddError("a.json", 4, "cmo", report.KindInvalidField, "primary_filters must be an array")

	want := []report.ValidationError{{
		File:      "a.json",
		ItemIndex: 4,
		SpotName:  "cmo",
		Kind:      report.KindInvalidField,
		Message:   "primary_filters must be an array",
		Timestamp: fixedTime,
	}}
	assert.Equal(t, want, l.Errors(), "AddError should record a timestamped error")
}

func TestErrorsIsACopy(t *testing.T) {
	t.Parallel()

	l := newLog(t)
	errs := l.Errors()
	errs[0].SpotName = "changed"
	compliant := l.Compliant()
	compliant[0].SpotName = "changed"

	assert.Equal(t, "cmo", l.Errors()[0].SpotName, "Errors should not expose the log storage")
	assert.Equal(t, "ear", l.Compliant()[0].SpotName, "Compliant should not expose the log storage")
}

func TestErrorsByKind(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		kinds []report.Kind

		want []report.KindCount
	}{
		"Empty log": {},
		"Most frequent first": {
			kinds: []report.Kind{report.KindInvalidTitle, report.KindMissingField, report.KindMissingField},
			want:  []report.KindCount{{Kind: report.KindMissingField, Count: 2}, {Kind: report.KindInvalidTitle, Count: 1}},
		},
		"Ties keep first occurrence order": {
			kinds: []report.Kind{report.KindInvalidSpotType, report.KindFileError, report.KindInvalidField, report.KindFileError, report.KindInvalidSpotType},
			want: []report.KindCount{
				{Kind: report.KindInvalidSpotType, Count: 2},
				{Kind: report.KindFileError, Count: 2},
				{Kind: report.KindInvalidField, Count: 1},
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			l := report.NewLog()
			for i, k := range tc.kinds {
				l.AddError("a.json", i, "cmo", k, "message")
			}
			assert.Equal(t, tc.want, l.ErrorsByKind(), "ErrorsByKind should count errors per kind")
		})
	}
}

func TestErrorsByFile(t *testing.T) {
	t.Parallel()

	groups := newLog(t).ErrorsByFile()
	require.Len(t, groups, 3, "Errors should be grouped in 3 files")

	var files []string
	var counts []int
	for _, g := range groups {
		files = append(files, g.File)
		counts = append(counts, len(g.Errors))
	}
	assert.Equal(t, []string{"a.json", "b.json", "c.json"}, files, "Files should keep first occurrence order")
	assert.Equal(t, []int{2, 2, 1}, counts, "Every error should be kept in its file group")
	assert.Equal(t, "filters b1", groups[1].Errors[1].Message, "Errors should keep insertion order within a file")
}

func TestErrorsByEntity(t *testing.T) {
	t.Parallel()

	l := newLog(t)

	var got []string
	for _, e := range l.ErrorsByEntity("cmo") {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"filters a0", "filters b0"}, got, "ErrorsByEntity should return the errors of the spot name")
	assert.Empty(t, l.ErrorsByEntity("unknown"), "ErrorsByEntity should return nothing for an unknown spot name")
}

func TestCompliantByFile(t *testing.T) {
	t.Parallel()

	want := []report.FileCompliant{
		{File: "d.json", Items: []report.CompliantItem{{File: "d.json", ItemIndex: 0, SpotName: "ear"}, {File: "d.json", ItemIndex: 3, SpotName: "ena"}}},
		{File: "a.json", Items: []report.CompliantItem{{File: "a.json", ItemIndex: 2, SpotName: "ear"}}},
	}
	assert.Equal(t, want, newLog(t).CompliantByFile(), "CompliantByFile should group compliant records per file")
}

func TestPartition(t *testing.T) {
	t.Parallel()

	filterErrs, others := report.Partition(newLog(t).Errors())

	assert.Len(t, filterErrs, 3, "Partition should return every secondary filter error")
	for _, e := range filterErrs {
		assert.Equal(t, report.KindMissingRequiredSecondaryFilters, e.Kind, "Filter errors should only hold secondary filter errors")
	}
	require.Len(t, others, 2, "Partition should return every other error")
	assert.Equal(t, report.KindInvalidTitle, others[0].Kind, "Other errors should keep their order")
	assert.Equal(t, report.KindFileError, others[1].Kind, "Other errors should keep their order")
}

func TestFilterClassification(t *testing.T) {
	t.Parallel()

	l := newLog(t)
	got := l.FilterClassification(l.Errors())
	require.Len(t, got, 2, "Filter errors should be grouped per spot name")

	assert.Equal(t, "cmo", got[0].SpotName, "Spot names should keep first occurrence order")
	assert.False(t, got[0].HasCompliantDefault, "A spot name without compliant record should be reported as such")
	assert.Len(t, got[0].Failures, 2, "Every failing record should be listed")

	assert.Equal(t, "ear", got[1].SpotName, "Spot names should keep first occurrence order")
	assert.True(t, got[1].HasCompliantDefault, "A compliant record anywhere in the run marks the spot name as configured")

	assert.Empty(t, l.FilterClassification(nil), "No errors should give no classification")
	assert.Len(t, l.Errors(), 5, "Classifying should not consume the log")
}

func TestHasCompliantDefault(t *testing.T) {
	t.Parallel()

	l := newLog(t)
	assert.True(t, l.HasCompliantDefault("ena"), "ena has a compliant record")
	assert.False(t, l.HasCompliantDefault("cmo"), "cmo has no compliant record")
}
