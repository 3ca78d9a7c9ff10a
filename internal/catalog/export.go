package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spot-validator/spot-validator/internal/payload"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned when exporting to an unsupported format.
var ErrUnknownFormat = fmt.Errorf("unknown export format, expected one of %q", []string{FormatText, FormatYAML, FormatTOML, FormatJSON})

// Summary is the printable content of a catalog: schemas are left out.
type Summary struct {
	SpotTypes                []string         `json:"spot_types" yaml:"spot_types" toml:"spot_types"`
	Titles                   []TitleNames     `json:"titles" yaml:"titles" toml:"titles"`
	RequiredSecondaryFilters []payload.Filter `json:"required_secondary_filters" yaml:"required_secondary_filters" toml:"required_secondary_filters"`
}

// TitleNames is a title with its accepted spot names.
type TitleNames struct {
	Title     string   `json:"title" yaml:"title" toml:"title"`
	SpotNames []string `json:"spot_names" yaml:"spot_names" toml:"spot_names"`
}

// Summary returns the printable content of the catalog.
func (c *Catalog) Summary() Summary {
	s := Summary{
		SpotTypes:                c.SpotTypes(),
		RequiredSecondaryFilters: c.RequiredSecondaryFilters(),
	}
	for _, t := range c.titles {
		s.Titles = append(s.Titles, TitleNames{Title: t, SpotNames: c.AllowedSpotNames(t)})
	}
	return s
}

// Export writes the catalog summary to w in a machine-readable format.
// The text format is rendered by the report package and is not handled here.
func (c *Catalog) Export(w io.Writer, format string) error {
	s := c.Summary()

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("could not encode catalog as YAML: %v", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(s); err != nil {
			return fmt.Errorf("could not encode catalog as TOML: %v", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("could not encode catalog as JSON: %v", err)
		}
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
