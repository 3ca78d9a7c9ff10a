package schema

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Violation is a single field-level mismatch between a value and its schema.
type Violation struct {
	Path    string `json:"instancePath"` // Path is a JSON pointer to the offending value, "" for the root.
	Keyword string `json:"keyword"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s: %s", path, v.Message)
}

// Result is the outcome of checking a value against a schema.
type Result struct {
	Violations []Violation
}

// Valid reports whether the value matched the schema.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// JSON returns the violations as indented JSON.
func (r Result) JSON() string {
	if r.Valid() {
		return ""
	}
	data, err := json.MarshalIndent(r.Violations, "", "  ")
	if err != nil {
		// Violations only hold strings.
		panic(fmt.Sprintf("could not marshal violations: %v", err))
	}
	return string(data)
}

// Document returns s as a JSON Schema document.
func (s *Schema) Document() map[string]any {
	doc := make(map[string]any)
	if s.IsEmpty() {
		return doc
	}

	switch s.Kind {
	case KindString:
		doc["type"] = jsonType("string", s.Nullable)
		if s.Format != "" {
			doc["format"] = s.Format
		}
	case KindNumber, KindBoolean:
		doc["type"] = jsonType(string(s.Kind), s.Nullable)
	case KindEnum:
		values := make([]any, 0, len(s.Enum)+1)
		for _, e := range s.Enum {
			values = append(values, e)
		}
		if s.Nullable {
			values = append(values, nil)
		}
		doc["enum"] = values
	case KindArray:
		doc["type"] = jsonType("array", s.Nullable)
		doc["items"] = s.Items.Document()
	case KindMap:
		doc["type"] = jsonType("object", s.Nullable)
		doc["additionalProperties"] = s.Values.Document()
	case KindObject:
		doc["type"] = jsonType("object", s.Nullable)
		props := make(map[string]any, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.Document()
		}
		doc["properties"] = props
		if len(s.Required) > 0 {
			doc["required"] = slices.Clone(s.Required)
		}
		if s.Closed {
			doc["additionalProperties"] = false
		}
	}
	return doc
}

func jsonType(name string, nullable bool) any {
	if nullable {
		return []string{name, "null"}
	}
	return name
}

// Validator checks values against a compiled schema.
type Validator struct {
	compiled *gojsonschema.Schema // nil accepts anything
}

// Compile prepares s for checking values.
func Compile(s *Schema) (*Validator, error) {
	if s.IsEmpty() {
		return &Validator{}, nil
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s.Document()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return &Validator{compiled: compiled}, nil
}

// Check matches data, a value as decoded by encoding/json, against the schema.
// Every mismatch is collected: the check never stops at the first one.
func (v *Validator) Check(data any) Result {
	if v.compiled == nil {
		return Result{}
	}

	res, err := v.compiled.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return Result{Violations: []Violation{{Keyword: "document", Message: err.Error()}}}
	}

	violations := make([]Violation, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		violations = append(violations, Violation{
			Path:    pointer(e.Context()),
			Keyword: e.Type(),
			Message: e.Description(),
		})
	}
	sortViolations(violations)
	return Result{Violations: violations}
}

// Check compiles s and matches data against it.
func Check(s *Schema, data any) (Result, error) {
	v, err := Compile(s)
	if err != nil {
		return Result{}, err
	}
	return v.Check(data), nil
}

// sortViolations orders violations by path. Missing required properties keep their declaration
// order, the other violations of a same path are sorted by message.
func sortViolations(violations []Violation) {
	rank := func(v Violation) int {
		if v.Keyword == "required" {
			return 0
		}
		return 1
	}
	slices.SortStableFunc(violations, func(a, b Violation) int {
		if c := cmp.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		if c := cmp.Compare(rank(a), rank(b)); c != 0 {
			return c
		}
		if rank(a) == 0 {
			return 0
		}
		return cmp.Compare(a.Message, b.Message)
	})
}

// contextSep splits a validation context back into its keys. Keys holding a NUL byte are not supported.
const contextSep = "\x00"

// pointer turns a validation context into a JSON pointer (RFC 6901).
func pointer(ctx *gojsonschema.JsonContext) string {
	if ctx == nil {
		return ""
	}
	// The first token is the root context.
	tokens := strings.Split(ctx.String(contextSep), contextSep)[1:]

	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString("/")
		sb.WriteString(escape(t))
	}
	return sb.String()
}

func escape(key string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(key)
}
