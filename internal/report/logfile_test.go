package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spot-validator/spot-validator/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLog(t *testing.T) {
	t.Parallel()

	got := report.FormatLog(newRun(t), fixedTime.Add(time.Second))

	for _, w := range []string{
		"PAYLOAD VALIDATION LOG",
		"Run ID: run-id",
		"Date/Time: 2025-03-14T09:26:53.589Z",
		"Total errors: 5",
		"Files with errors: 3",
		"FILE: a.json",
		"Errors in this file: 2",
		`spot_name: "cmo" - total: 1 records`,
		"   Item 0 - 2025-03-14T09:26:53.589Z",
		"   Details: filters a0",
		"OTHER ERRORS:",
		"Error kind....: INVALID_TITLE",
		"Item..........: N/A",
		"FINAL VALIDATION SUMMARY",
		"Date/Time: 2025-03-14T09:26:54.589Z",
		"Files processed: 4",
		"   - b.json: 2 errors",
		"   - MISSING_REQUIRED_SECONDARY_FILTERS: 3 occurrences",
		`   - "cmo": 2 records without the default filters`,
		`   - "ear": default filters configured`,
	} {
		assert.Contains(t, got, w, "Log should contain %q", w)
	}

	kinds := strings.Index(got, "MISSING_REQUIRED_SECONDARY_FILTERS: 3 occurrences")
	title := strings.Index(got, "INVALID_TITLE: 1 occurrences")
	assert.Less(t, kinds, title, "Error kinds should be listed most frequent first")
}

func TestFormatLogWithoutErrors(t *testing.T) {
	t.Parallel()

	run := report.Run{ID: "run-id", Files: []report.FileResult{{File: "a.json", Items: 1, ValidItems: 1}}, Log: report.NewLog()}
	got := report.FormatLog(run, fixedTime)

	assert.Contains(t, got, "Total errors: 0", "Log should report the absence of errors")
	assert.NotContains(t, got, "FILE:", "Log should not hold any file section")
	assert.NotContains(t, got, "per spot_name", "Log should not hold any filter classification")
}

func TestWriteLogFile(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		invalidDir bool

		wantErr bool
	}{
		"Writes log file": {},

		"Error when directory does not exist": {invalidDir: true, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "log.log")
			if tc.invalidDir {
				path = filepath.Join(filepath.Dir(path), "missing", "log.log")
			}

			run := newRun(t)
			err := report.WriteLogFile(path, run, fixedTime)
			if tc.wantErr {
				require.Error(t, err, "WriteLogFile should return an error")
				return
			}
			require.NoError(t, err, "WriteLogFile should not return an error")

			data, err := os.ReadFile(path)
			require.NoError(t, err, "Log file should be readable")
			assert.Equal(t, report.FormatLog(run, fixedTime), string(data), "Log file should hold the formatted log")
		})
	}
}
