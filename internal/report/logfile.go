package report

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spot-validator/spot-validator/internal/fileutils"
	"github.com/ubuntu/decorate"
)

const (
	logRuleWidth    = 100
	logSectionWidth = 80

	// timestampLayout is ISO 8601 in UTC with millisecond precision.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// WriteLogFile atomically writes the log of a validation run to path. now stamps the final summary.
func WriteLogFile(path string, run Run, now time.Time) (err error) {
	defer decorate.OnError(&err, "could not write log file")

	if err := fileutils.AtomicWrite(path, []byte(FormatLog(run, now))); err != nil {
		return err
	}

	slog.Info("Wrote validation log", "file", path, "errors", len(run.Log.Errors()))
	return nil
}

// FormatLog renders the log of a validation run: a header, the errors of each file and a final summary.
func FormatLog(run Run, now time.Time) string {
	var sb strings.Builder
	l := run.Log
	errs := l.Errors()
	byFile := l.ErrorsByFile()

	fmt.Fprintf(&sb, "%s\n", strings.Repeat("=", logRuleWidth))
	fmt.Fprintf(&sb, "%s\n", center("PAYLOAD VALIDATION LOG", logRuleWidth))
	fmt.Fprintf(&sb, "%s\n\n", strings.Repeat("=", logRuleWidth))
	fmt.Fprintf(&sb, "Run ID: %s\n", run.ID)
	fmt.Fprintf(&sb, "Date/Time: %s\n", stamp(run.Started))
	fmt.Fprintf(&sb, "Total errors: %d\n", len(errs))
	fmt.Fprintf(&sb, "Files with errors: %d\n\n", len(byFile))

	for _, group := range byFile {
		name := filepath.Base(group.File)
		fmt.Fprintf(&sb, "%s\n", strings.Repeat("═", logRuleWidth))
		fmt.Fprintf(&sb, "FILE: %s\n", name)
		fmt.Fprintf(&sb, "%s\n", strings.Repeat("═", logRuleWidth))
		fmt.Fprintf(&sb, "Errors in this file: %d\n\n", len(group.Errors))

		filterErrs, others := Partition(group.Errors)
		if len(filterErrs) > 0 {
			fmt.Fprintf(&sb, "%s by spot_name:\n", KindMissingRequiredSecondaryFilters)
			fmt.Fprintf(&sb, "%s\n", strings.Repeat("─", logSectionWidth))
			for _, status := range l.FilterClassification(filterErrs) {
				if status.HasCompliantDefault {
					fmt.Fprintf(&sb, "spot_name: %q - default filters configured\n", status.SpotName)
					sb.WriteString("   At least one record of this spot carries the required filters\n")
				} else {
					fmt.Fprintf(&sb, "spot_name: %q - total: %d records\n", status.SpotName, len(status.Failures))
					sb.WriteString("   No record of this spot carries the required filters\n")
					for _, e := range status.Failures {
						fmt.Fprintf(&sb, "   Item %d - %s\n", e.ItemIndex, stamp(e.Timestamp))
						fmt.Fprintf(&sb, "   Details: %s\n", e.Message)
					}
				}
				sb.WriteString("\n")
			}
		}

		if len(others) == 0 {
			continue
		}
		if len(filterErrs) > 0 {
			sb.WriteString("\nOTHER ERRORS:\n")
			fmt.Fprintf(&sb, "%s\n", strings.Repeat("─", logSectionWidth))
		}
		for i, e := range others {
			fmt.Fprintf(&sb, "%s\n", strings.Repeat("─", logRuleWidth))
			fmt.Fprintf(&sb, "ERROR #%d\n", i+1)
			fmt.Fprintf(&sb, "%s\n", strings.Repeat("─", logRuleWidth))
			fmt.Fprintf(&sb, "File..........: %s\n", name)
			fmt.Fprintf(&sb, "Item..........: %s\n", e.Item())
			fmt.Fprintf(&sb, "Spot name.....: %s\n", e.SpotName)
			fmt.Fprintf(&sb, "Error kind....: %s\n", e.Kind)
			fmt.Fprintf(&sb, "Timestamp.....: %s\n\n", stamp(e.Timestamp))
			sb.WriteString("Message:\n")
			fmt.Fprintf(&sb, "   %s\n\n", e.Message)
		}
	}

	fmt.Fprintf(&sb, "\n%s\n", strings.Repeat("═", logRuleWidth))
	sb.WriteString("FINAL VALIDATION SUMMARY\n")
	fmt.Fprintf(&sb, "%s\n", strings.Repeat("═", logRuleWidth))
	fmt.Fprintf(&sb, "Date/Time: %s\n", stamp(now))
	fmt.Fprintf(&sb, "Files processed: %d\n", len(run.Files))
	fmt.Fprintf(&sb, "Valid files: %d\n", run.ValidFiles())
	fmt.Fprintf(&sb, "Total errors found: %d\n", len(errs))
	fmt.Fprintf(&sb, "Files with errors: %d\n\n", len(byFile))

	sb.WriteString("Errors per file:\n")
	for _, group := range byFile {
		fmt.Fprintf(&sb, "   - %s: %d errors\n", filepath.Base(group.File), len(group.Errors))
	}

	sb.WriteString("\nError kinds:\n")
	for _, kc := range l.ErrorsByKind() {
		fmt.Fprintf(&sb, "   - %s: %d occurrences\n", kc.Kind, kc.Count)
	}

	if statuses := l.FilterClassification(errs); len(statuses) > 0 {
		fmt.Fprintf(&sb, "\n%s per spot_name:\n", KindMissingRequiredSecondaryFilters)
		for _, status := range statuses {
			if status.HasCompliantDefault {
				fmt.Fprintf(&sb, "   - %q: default filters configured\n", status.SpotName)
				continue
			}
			fmt.Fprintf(&sb, "   - %q: %d records without the default filters\n", status.SpotName, len(status.Failures))
		}
	}

	fmt.Fprintf(&sb, "%s\n", strings.Repeat("═", logRuleWidth))
	return sb.String()
}

func stamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
