package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spot-validator/spot-validator/internal/catalog"
	"github.com/spot-validator/spot-validator/internal/payload"
)

const (
	consoleRuleWidth = 80
	sectionRuleWidth = 60
)

// Console renders runs for humans.
type Console struct {
	w  io.Writer
	st styles
}

// NewConsole returns a Console writing to w. Colors are only used when w is a terminal.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, st: newStyles(w)}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.w, format, args...)
}

func (c *Console) println(args ...any) {
	fmt.Fprintln(c.w, args...)
}

func (c *Console) banner(title string) {
	rule := strings.Repeat("═", consoleRuleWidth)
	c.println()
	c.println(c.st.subtitle.Render(rule))
	c.println(c.st.title.Render(title))
	c.println(c.st.subtitle.Render(rule))
}

func (c *Console) section(title string) {
	c.println()
	c.println(c.st.title.Render(title))
	c.println(c.st.subtitle.Render(strings.Repeat("─", sectionRuleWidth)))
}

// NoFiles tells that the directory holds no payload file.
func (c *Console) NoFiles(dir string) {
	c.println(c.st.warning.Render(fmt.Sprintf("No payload JSON file found in %s.", dir)))
}

func (c *Console) discovered(files []FileResult) {
	c.printf("Payload files found: %d\n", len(files))
	for _, f := range files {
		c.printf("   - %s\n", f.Name())
	}
}

// Validation renders a full validation run.
func (c *Console) Validation(run Run, required []payload.Filter) {
	c.println(c.st.title.Render("Starting payload validation..."))
	c.println()
	c.discovered(run.Files)

	for _, f := range run.Files {
		c.println()
		c.printf("Validating file: %s\n", c.st.highlight.Render(f.File))
		if f.Failed {
			c.println(c.st.failure.Render("✗ " + f.Problem))
			continue
		}
		c.println(c.st.success.Render(fmt.Sprintf("✓ Valid items: %d", f.ValidItems)))
		c.println(c.st.failure.Render(fmt.Sprintf("✗ Invalid items: %d", f.InvalidItems())))
		c.printf("  Total items: %d\n", f.Items)
	}

	errs := run.Log.Errors()
	c.banner("VALIDATION SUMMARY")
	c.println(c.st.success.Render(fmt.Sprintf("✓ Valid files: %d", run.ValidFiles())))
	c.println(c.st.failure.Render(fmt.Sprintf("✗ Files with errors: %d", run.InvalidFiles())))
	c.printf("  Total files: %d\n", len(run.Files))
	c.printf("  Total errors found: %d\n", len(errs))

	c.compliant(run.Log, required)

	if len(errs) == 0 {
		c.println()
		c.println(c.st.success.Render("All files are valid!"))
		return
	}
	c.errors(run.Log, errs)
}

// Search renders a search run.
func (c *Console) Search(run Run, required []payload.Filter) {
	c.println(c.st.title.Render("Searching for records with the required secondary filters..."))
	c.println()
	c.discovered(run.Files)

	for _, f := range run.Files {
		c.println()
		c.printf("Searching in: %s\n", c.st.highlight.Render(f.File))
		if f.Failed {
			c.println(c.st.failure.Render("✗ " + f.Problem))
			continue
		}
		c.println(c.st.success.Render(fmt.Sprintf("✓ Records found: %d", f.ValidItems)))
		c.printf("  Total records in file: %d\n", f.Items)
	}

	c.banner("SEARCH RESULTS")
	c.compliant(run.Log, required)
}

func (c *Console) compliant(log *Log, required []payload.Filter) {
	items := log.Compliant()
	if len(items) == 0 {
		c.println()
		c.println(c.st.warning.Render("No record found with the required secondary filters."))
		return
	}

	c.println()
	c.println(c.st.title.Render("RECORDS WITH THE REQUIRED SECONDARY FILTERS"))
	c.printf("Total records found: %d\n", len(items))

	for _, group := range log.CompliantByFile() {
		c.println()
		c.printf("%s (%d records):\n", c.st.label.Render(filepath.Base(group.File)), len(group.Items))
		for _, it := range group.Items {
			c.printf("   %s Item %d: %s\n", c.st.success.Render("✓"), it.ItemIndex, it.SpotName)
		}
	}

	c.println()
	c.println(c.st.label.Render("Required filters:"))
	for i, f := range required {
		c.printf("   %d. %s\n", i+1, f)
	}
}

func (c *Console) errors(log *Log, errs []ValidationError) {
	c.banner("ERRORS FOUND")

	filterErrs, others := Partition(errs)
	if len(filterErrs) > 0 {
		c.section(fmt.Sprintf("%s by spot_name:", KindMissingRequiredSecondaryFilters))
		for _, status := range log.FilterClassification(filterErrs) {
			if status.HasCompliantDefault {
				c.printf("spot_name: %q - default filters configured\n", status.SpotName)
				c.println(c.st.subtitle.Render("   At least one record of this spot carries the required filters"))
			} else {
				c.printf("spot_name: %q - total: %d records\n", status.SpotName, len(status.Failures))
				c.println(c.st.subtitle.Render("   No record of this spot carries the required filters"))
				for _, e := range status.Failures {
					c.printf("   Item %d (%s)\n", e.ItemIndex, filepath.Base(e.File))
				}
			}
			c.println()
		}
	}

	if len(others) == 0 {
		return
	}
	c.section("OTHER ERRORS:")
	for _, group := range GroupByFile(others) {
		c.println()
		c.printf("File: %s (%d errors)\n", c.st.label.Render(filepath.Base(group.File)), len(group.Errors))
		c.println(c.st.subtitle.Render(strings.Repeat("─", sectionRuleWidth)))

		for i, e := range group.Errors {
			c.println()
			c.printf("   %s\n", c.st.failure.Render(fmt.Sprintf("ERROR #%d", i+1)))
			c.printf("   Item: %s\n", e.Item())
			c.printf("   Spot: %s\n", e.SpotName)
			c.printf("   Kind: %s\n", c.st.warning.Render(string(e.Kind)))
			c.println("   Message:")
			c.printf("      %s\n", e.Message)
		}
	}
}

// LogWritten tells where the run log was saved.
func (c *Console) LogWritten(path string) {
	c.println()
	c.printf("Validation log saved to: %s\n", c.st.highlight.Render(path))
}

// Catalog renders the content of a catalog.
func (c *Console) Catalog(s catalog.Summary) {
	c.banner("VALIDATION CATALOG")

	c.println()
	c.println(c.st.title.Render("Valid spot types:"))
	for _, t := range s.SpotTypes {
		c.printf("   - %s\n", t)
	}

	c.println()
	c.println(c.st.title.Render("Valid titles and spot names:"))
	for _, t := range s.Titles {
		c.println()
		c.println(c.st.label.Render(t.Title))
		c.println(c.st.subtitle.Render("   valid spot_names:"))
		for _, name := range t.SpotNames {
			c.printf("      - %s\n", name)
		}
	}

	c.println()
	c.println(c.st.title.Render("Required secondary filters:"))
	for i, f := range s.RequiredSecondaryFilters {
		c.printf("   %d. %s\n", i+1, f)
	}
}
