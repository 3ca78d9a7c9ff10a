// Package schema describes the structural shape of spot payloads and checks decoded JSON values against it.
//
// A Schema is plain data: a tagged union over a handful of kinds (primitive, enum, array, open keyed map,
// object). It is meant to be written by hand in the catalog document and read back with yaml.v3.
package schema

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownKind is returned when a schema declares a kind that is not supported.
	ErrUnknownKind = errors.New("unknown schema kind")

	// ErrInvalidSchema is returned when a schema is structurally inconsistent.
	ErrInvalidSchema = errors.New("invalid schema")
)

// Kind is the tag of a Schema.
type Kind string

const (
	// KindAny accepts every value, including an absent one.
	KindAny Kind = "any"
	// KindString accepts JSON strings.
	KindString Kind = "string"
	// KindNumber accepts any finite JSON number.
	KindNumber Kind = "number"
	// KindBoolean accepts JSON booleans.
	KindBoolean Kind = "boolean"
	// KindEnum accepts a string out of a closed set.
	KindEnum Kind = "enum"
	// KindArray accepts JSON arrays whose every element matches Items.
	KindArray Kind = "array"
	// KindMap accepts JSON objects with arbitrary keys whose every value matches Values.
	KindMap Kind = "map"
	// KindObject accepts JSON objects with named Properties.
	KindObject Kind = "object"
)

// FormatDate marks a string as a calendar date (YYYY-MM-DD).
const FormatDate = "date"

// Property is a named property of an object schema.
type Property struct {
	Name   string
	Schema *Schema
}

// Schema is a declarative description of the shape of a JSON value.
type Schema struct {
	Kind     Kind
	Nullable bool     // Nullable accepts JSON null in addition to Kind.
	Format   string   // Format only applies to KindString.
	Enum     []string // Enum only applies to KindEnum.

	Items  *Schema // Items only applies to KindArray.
	Values *Schema // Values only applies to KindMap.

	Properties []Property // Properties only applies to KindObject, in declaration order.
	Required   []string   // Required only applies to KindObject.
	Closed     bool       // Closed rejects properties that are not declared.
}

// Property returns the schema of the named property, if declared.
func (s *Schema) Property(name string) (*Schema, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// IsEmpty reports whether the schema accepts anything.
func (s *Schema) IsEmpty() bool {
	return s == nil || s.Kind == KindAny || s.Kind == ""
}

// Validate checks the schema is consistent, recursively.
func (s *Schema) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil schema", ErrInvalidSchema)
	}

	switch s.Kind {
	case "", KindAny, KindNumber, KindBoolean:
	case KindString:
		if s.Format != "" && s.Format != FormatDate {
			return fmt.Errorf("%w: unsupported string format %q", ErrInvalidSchema, s.Format)
		}
	case KindEnum:
		if len(s.Enum) == 0 {
			return fmt.Errorf("%w: enum without values", ErrInvalidSchema)
		}
	case KindArray:
		if s.Items == nil {
			return fmt.Errorf("%w: array without items", ErrInvalidSchema)
		}
		return s.Items.Validate()
	case KindMap:
		if s.Values == nil {
			return fmt.Errorf("%w: map without values", ErrInvalidSchema)
		}
		return s.Values.Validate()
	case KindObject:
		for _, name := range s.Required {
			if _, ok := s.Property(name); !ok {
				return fmt.Errorf("%w: required property %q is not declared", ErrInvalidSchema, name)
			}
		}
		seen := make(map[string]bool, len(s.Properties))
		for _, p := range s.Properties {
			if seen[p.Name] {
				return fmt.Errorf("%w: duplicate property %q", ErrInvalidSchema, p.Name)
			}
			seen[p.Name] = true
			if err := p.Schema.Validate(); err != nil {
				return fmt.Errorf("property %q: %w", p.Name, err)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}

	return nil
}

// rawSchema is the YAML form of a Schema. Properties stay a node so that declaration order survives decoding.
type rawSchema struct {
	Kind       Kind      `yaml:"kind"`
	Nullable   bool      `yaml:"nullable"`
	Format     string    `yaml:"format"`
	Enum       []string  `yaml:"enum"`
	Items      *Schema   `yaml:"items"`
	Values     *Schema   `yaml:"values"`
	Properties yaml.Node `yaml:"properties"`
	Required   []string  `yaml:"required"`
	Closed     bool      `yaml:"closed"`
}

// schemaKeys are the keys a schema mapping may hold. "<<" is the YAML merge key.
var schemaKeys = []string{"kind", "nullable", "format", "enum", "items", "values", "properties", "required", "closed", "<<"}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Schema) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		for i := 0; i < len(value.Content); i += 2 {
			key := value.Content[i]
			if !slices.Contains(schemaKeys, key.Value) {
				return fmt.Errorf("line %d: %w: unknown key %q", key.Line, ErrInvalidSchema, key.Value)
			}
		}
	}

	var raw rawSchema
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*s = Schema{
		Kind:     raw.Kind,
		Nullable: raw.Nullable,
		Format:   raw.Format,
		Enum:     raw.Enum,
		Items:    raw.Items,
		Values:   raw.Values,
		Required: raw.Required,
		Closed:   raw.Closed,
	}
	if s.Kind == "" {
		s.Kind = KindAny
	}

	props := &raw.Properties
	if props.Kind == yaml.AliasNode {
		props = props.Alias
	}
	if props.Kind == 0 {
		return nil
	}
	if props.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: %w: properties must be a mapping", props.Line, ErrInvalidSchema)
	}
	for i := 0; i+1 < len(props.Content); i += 2 {
		key, node := props.Content[i], props.Content[i+1]
		var p Schema
		if err := node.Decode(&p); err != nil {
			return fmt.Errorf("property %q: %w", key.Value, err)
		}
		s.Properties = append(s.Properties, Property{Name: key.Value, Schema: &p})
	}

	return nil
}

// Describe returns a short human-readable form of the schema, for diagnostics.
func (s *Schema) Describe() string {
	if s.IsEmpty() {
		return string(KindAny)
	}

	var d string
	switch s.Kind {
	case KindEnum:
		d = fmt.Sprintf("one of %q", s.Enum)
	case KindArray:
		d = "array of " + s.Items.Describe()
	case KindMap:
		d = "map of " + s.Values.Describe()
	case KindString:
		d = string(s.Kind)
		if s.Format != "" {
			d += " (" + s.Format + ")"
		}
	case KindObject:
		names := make([]string, 0, len(s.Properties))
		for _, p := range s.Properties {
			names = append(names, p.Name)
		}
		d = fmt.Sprintf("object %v", names)
	default:
		d = string(s.Kind)
	}

	if s.Nullable {
		d += " or null"
	}
	return d
}
