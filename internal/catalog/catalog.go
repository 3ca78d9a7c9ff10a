// Package catalog holds the closed set of spot types, titles, spot names and required secondary filters
// that spot payloads are validated against.
//
// The default catalog is an embedded YAML document. A catalog is read-only once loaded.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/spot-validator/spot-validator/internal/payload"
	"github.com/spot-validator/spot-validator/internal/schema"
	"github.com/ubuntu/decorate"
	"gopkg.in/yaml.v3"
)

// RequiredFilterCount is the exact number of secondary filters a spot must carry.
const RequiredFilterCount = 5

var (
	// ErrInvalidCatalog is returned when a catalog document is malformed or inconsistent.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrUnknownSpotType is returned when no schema is registered for a spot type.
	ErrUnknownSpotType = errors.New("unknown spot type")
)

//go:embed catalog.yaml
var defaultDocument []byte

// Catalog is the validation reference data.
type Catalog struct {
	spotTypes  []string
	schemas    map[string]*schema.Schema
	validators map[string]*schema.Validator

	titles    []string
	spotNames map[string][]string

	requiredFilters []payload.Filter
}

// document is the on-disk form of a catalog.
type document struct {
	// Definitions holds YAML anchors shared between schemas; it is not read directly.
	Definitions yaml.Node `yaml:"definitions"`

	SpotTypes []struct {
		Name   string         `yaml:"name"`
		Schema *schema.Schema `yaml:"schema"`
	} `yaml:"spot_types"`

	Titles []struct {
		Title     string   `yaml:"title"`
		SpotNames []string `yaml:"spot_names"`
	} `yaml:"titles"`

	RequiredSecondaryFilters []payload.Filter `yaml:"required_secondary_filters"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Load(bytes.NewReader(defaultDocument))
})

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return defaultCatalog()
}

// LoadFile reads a catalog document from path.
func LoadFile(path string) (c *Catalog, err error) {
	defer decorate.OnError(&err, "could not load catalog %q", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

// Load decodes and checks a catalog document.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		schemas:         make(map[string]*schema.Schema, len(doc.SpotTypes)),
		validators:      make(map[string]*schema.Validator, len(doc.SpotTypes)),
		spotNames:       make(map[string][]string, len(doc.Titles)),
		requiredFilters: doc.RequiredSecondaryFilters,
	}

	for _, st := range doc.SpotTypes {
		if st.Name == "" {
			return nil, fmt.Errorf("%w: spot type without a name", ErrInvalidCatalog)
		}
		if _, dup := c.schemas[st.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate spot type %q", ErrInvalidCatalog, st.Name)
		}
		s := st.Schema
		if s == nil {
			s = &schema.Schema{Kind: schema.KindAny}
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%w: spot type %q: %v", ErrInvalidCatalog, st.Name, err)
		}
		v, err := schema.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("%w: spot type %q: %v", ErrInvalidCatalog, st.Name, err)
		}
		c.spotTypes = append(c.spotTypes, st.Name)
		c.schemas[st.Name] = s
		c.validators[st.Name] = v
	}

	for _, t := range doc.Titles {
		if t.Title == "" {
			return nil, fmt.Errorf("%w: title entry without a title", ErrInvalidCatalog)
		}
		if _, dup := c.spotNames[t.Title]; dup {
			return nil, fmt.Errorf("%w: duplicate title %q", ErrInvalidCatalog, t.Title)
		}
		c.titles = append(c.titles, t.Title)
		c.spotNames[t.Title] = t.SpotNames
	}

	if len(c.spotTypes) == 0 {
		return nil, fmt.Errorf("%w: no spot types", ErrInvalidCatalog)
	}
	if len(c.titles) == 0 {
		return nil, fmt.Errorf("%w: no titles", ErrInvalidCatalog)
	}
	if len(c.requiredFilters) != RequiredFilterCount {
		return nil, fmt.Errorf("%w: expected %d required secondary filters, got %d", ErrInvalidCatalog, RequiredFilterCount, len(c.requiredFilters))
	}
	tokens := make(map[string]bool, len(c.requiredFilters))
	for _, f := range c.requiredFilters {
		if tokens[f.Token()] {
			return nil, fmt.Errorf("%w: duplicate required secondary filter %q", ErrInvalidCatalog, f)
		}
		tokens[f.Token()] = true
	}

	slog.Debug("Loaded catalog", "spot_types", len(c.spotTypes), "titles", len(c.titles))
	return c, nil
}

// IsValidSpotType reports whether t is an accepted spot type.
func (c *Catalog) IsValidSpotType(t string) bool {
	_, ok := c.schemas[t]
	return ok
}

// IsValidTitle reports whether title is a catalog title.
func (c *Catalog) IsValidTitle(title string) bool {
	_, ok := c.spotNames[title]
	return ok
}

// AllowedSpotNames returns the spot names accepted for title, or nil if the title is unknown.
func (c *Catalog) AllowedSpotNames(title string) []string {
	return slices.Clone(c.spotNames[title])
}

// IsAllowedSpotName reports whether spotName is accepted for title.
func (c *Catalog) IsAllowedSpotName(title, spotName string) bool {
	return slices.Contains(c.spotNames[title], spotName)
}

// SchemaFor returns the structural schema of a spot type.
func (c *Catalog) SchemaFor(spotType string) (*schema.Schema, bool) {
	s, ok := c.schemas[spotType]
	return s, ok
}

// RequiredSecondaryFilters returns the exact secondary filter set every spot must carry, in catalog order.
func (c *Catalog) RequiredSecondaryFilters() []payload.Filter {
	return slices.Clone(c.requiredFilters)
}

// SpotTypes returns the accepted spot types in catalog order.
func (c *Catalog) SpotTypes() []string {
	return slices.Clone(c.spotTypes)
}

// Titles returns the catalog titles in catalog order.
func (c *Catalog) Titles() []string {
	return slices.Clone(c.titles)
}

// ValidateSpotData checks spot data against the schema of spotType.
// It returns ErrUnknownSpotType if the type has no schema.
func (c *Catalog) ValidateSpotData(spotType string, data any) (schema.Result, error) {
	v, ok := c.validators[spotType]
	if !ok {
		return schema.Result{}, fmt.Errorf("%w: %q", ErrUnknownSpotType, spotType)
	}
	return v.Check(data), nil
}
