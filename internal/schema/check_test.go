package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/spot-validator/spot-validator/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode returns a JSON document as decoded by encoding/json.
func decode(t *testing.T, doc string) any {
	t.Helper()

	var v any
	require.NoError(t, json.Unmarshal([]byte(doc), &v), "Setup: invalid JSON document")
	return v
}

func TestCheck(t *testing.T) {
	t.Parallel()

	str := &schema.Schema{Kind: schema.KindString}
	num := &schema.Schema{Kind: schema.KindNumber}
	series := &schema.Schema{Kind: schema.KindMap, Values: &schema.Schema{Kind: schema.KindArray, Items: num}}
	day := &schema.Schema{
		Kind:       schema.KindObject,
		Closed:     true,
		Required:   []string{"date"},
		Properties: []schema.Property{{Name: "date", Schema: str}, {Name: "skill_level", Schema: num}},
	}
	chart := &schema.Schema{
		Kind:     schema.KindObject,
		Required: []string{"title", "y_type", "x", "y"},
		Properties: []schema.Property{
			{Name: "title", Schema: str},
			{Name: "y_type", Schema: &schema.Schema{Kind: schema.KindEnum, Enum: []string{"integer", "%"}}},
			{Name: "show_legend", Schema: &schema.Schema{Kind: schema.KindBoolean}},
			{Name: "x", Schema: &schema.Schema{Kind: schema.KindMap, Values: &schema.Schema{Kind: schema.KindArray, Items: &schema.Schema{Kind: schema.KindString, Format: schema.FormatDate}}}},
			{Name: "y", Schema: series},
			{Name: "skill", Schema: &schema.Schema{Kind: schema.KindNumber, Nullable: true}},
			{Name: "day", Schema: day},
		},
	}

	tests := map[string]struct {
		schema *schema.Schema
		data   string

		want []schema.Violation
	}{
		"Empty schema accepts an object": {schema: &schema.Schema{Kind: schema.KindAny}, data: `{"a": [1, "b"]}`},
		"Empty schema accepts a scalar":  {schema: &schema.Schema{Kind: schema.KindAny}, data: `"anything"`},
		"Nil schema accepts anything":    {data: `null`},
		"Valid chart": {
			schema: chart,
			data:   `{"title": "t", "y_type": "%", "show_legend": true, "x": {"a": ["2024-02-29"]}, "y": {"a": [1, 2.5, -3]}, "skill": null, "extra": 1}`,
		},
		"Valid closed object": {schema: day, data: `{"date": "2024-01-01", "skill_level": 0.7}`},

		"Missing required properties are all reported": {
			schema: chart,
			data:   `{"title": "t"}`,
			want: []schema.Violation{
				{Path: "", Keyword: "required", Message: "y_type is required"},
				{Path: "", Keyword: "required", Message: "x is required"},
				{Path: "", Keyword: "required", Message: "y is required"},
			},
		},
		"Type mismatches are reported with their path": {
			schema: chart,
			data:   `{"title": 3, "y_type": "%", "show_legend": "yes", "x": {}, "y": {"b": [1, "2"], "a": "x"}}`,
			want: []schema.Violation{
				{Path: "/show_legend", Keyword: "invalid_type", Message: "Invalid type. Expected: boolean, given: string"},
				{Path: "/title", Keyword: "invalid_type", Message: "Invalid type. Expected: string, given: integer"},
				{Path: "/y/a", Keyword: "invalid_type", Message: "Invalid type. Expected: array, given: string"},
				{Path: "/y/b/1", Keyword: "invalid_type", Message: "Invalid type. Expected: number, given: string"},
			},
		},
		"Invalid dates": {
			schema: chart,
			data:   `{"title": "t", "y_type": "integer", "x": {"a": ["2024-02-30", "01/02/2024", "2024-01-01"]}, "y": {}}`,
			want: []schema.Violation{
				{Path: "/x/a/0", Keyword: "format", Message: "Does not match format 'date'"},
				{Path: "/x/a/1", Keyword: "format", Message: "Does not match format 'date'"},
			},
		},
		"Null is only accepted by nullable schemas": {
			schema: chart,
			data:   `{"title": null, "y_type": "%", "x": {}, "y": {}, "skill": null}`,
			want: []schema.Violation{
				{Path: "/title", Keyword: "invalid_type", Message: "Invalid type. Expected: string, given: null"},
			},
		},
		"Closed object rejects additional properties": {
			schema: day,
			data:   `{"skill_level": 1, "total": 2, "analytics": []}`,
			want: []schema.Violation{
				{Path: "", Keyword: "required", Message: "date is required"},
				{Path: "", Keyword: "additional_property_not_allowed", Message: "Additional property analytics is not allowed"},
				{Path: "", Keyword: "additional_property_not_allowed", Message: "Additional property total is not allowed"},
			},
		},
		"Object is required": {
			schema: chart,
			data:   `[]`,
			want:   []schema.Violation{{Path: "", Keyword: "invalid_type", Message: "Invalid type. Expected: object, given: array"}},
		},
		"Map keys are escaped in paths": {
			schema: series,
			data:   `{"Sudeste/Centro-oeste": [true], "a~b": [1]}`,
			want:   []schema.Violation{{Path: "/Sudeste~1Centro-oeste/0", Keyword: "invalid_type", Message: "Invalid type. Expected: number, given: boolean"}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := schema.Check(tc.schema, decode(t, tc.data))
			require.NoError(t, err, "Check should compile the schema")
			assert.Equal(t, tc.want, got.Violations, "Check should report the expected violations")
			assert.Equal(t, len(tc.want) == 0, got.Valid(), "Valid should match the absence of violations")
		})
	}
}

func TestCheckEnum(t *testing.T) {
	t.Parallel()

	axis := &schema.Schema{Kind: schema.KindEnum, Enum: []string{"integer", "%"}}
	nullable := &schema.Schema{Kind: schema.KindEnum, Enum: []string{"integer", "%"}, Nullable: true}

	got, err := schema.Check(axis, "float")
	require.NoError(t, err, "Check should compile the schema")
	require.Len(t, got.Violations, 1, "Check should report the enum mismatch")
	assert.Equal(t, "enum", got.Violations[0].Keyword, "The violation should name the enum keyword")
	assert.Contains(t, got.Violations[0].Message, `"integer"`, "The message should list the allowed values")

	got, err = schema.Check(axis, 3)
	require.NoError(t, err, "Check should compile the schema")
	assert.False(t, got.Valid(), "Only strings of the enum should be accepted")

	got, err = schema.Check(nullable, nil)
	require.NoError(t, err, "Check should compile the schema")
	assert.True(t, got.Valid(), "A nullable enum should accept null")
}

func TestDocument(t *testing.T) {
	t.Parallel()

	num := &schema.Schema{Kind: schema.KindNumber}

	tests := map[string]struct {
		schema *schema.Schema

		want map[string]any
	}{
		"Any":             {schema: &schema.Schema{Kind: schema.KindAny}, want: map[string]any{}},
		"Nullable number": {schema: &schema.Schema{Kind: schema.KindNumber, Nullable: true}, want: map[string]any{"type": []string{"number", "null"}}},
		"Date":            {schema: &schema.Schema{Kind: schema.KindString, Format: schema.FormatDate}, want: map[string]any{"type": "string", "format": "date"}},
		"Nullable enum": {
			schema: &schema.Schema{Kind: schema.KindEnum, Enum: []string{"a"}, Nullable: true},
			want:   map[string]any{"enum": []any{"a", nil}},
		},
		"Map of arrays": {
			schema: &schema.Schema{Kind: schema.KindMap, Values: &schema.Schema{Kind: schema.KindArray, Items: num}},
			want: map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
			},
		},
		"Closed object": {
			schema: &schema.Schema{Kind: schema.KindObject, Closed: true, Required: []string{"a"}, Properties: []schema.Property{{Name: "a", Schema: num}}},
			want: map[string]any{
				"type":                 "object",
				"properties":           map[string]any{"a": map[string]any{"type": "number"}},
				"required":             []string{"a"},
				"additionalProperties": false,
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.schema.Document(), "Document should return the JSON Schema form")
		})
	}
}

func TestCompile(t *testing.T) {
	t.Parallel()

	v, err := schema.Compile(nil)
	require.NoError(t, err, "Compile should accept a nil schema")
	assert.True(t, v.Check(map[string]any{"a": 1}).Valid(), "A nil schema should accept anything")

	_, err = schema.Compile(&schema.Schema{Kind: schema.KindEnum, Enum: []string{"a", "a"}})
	require.ErrorIs(t, err, schema.ErrInvalidSchema, "Compile should reject duplicated enum values")
}

func TestCheckNumbers(t *testing.T) {
	t.Parallel()

	num := &schema.Schema{Kind: schema.KindNumber}

	tests := map[string]struct {
		value any

		want bool
	}{
		"float64":     {value: 1.5, want: true},
		"int":         {value: 3, want: true},
		"int64":       {value: int64(3), want: true},
		"json.Number": {value: json.Number("12e3"), want: true},
		"Huge number": {value: json.Number("1e400"), want: true},
		"string":      {value: "1", want: false},
		"bool":        {value: false, want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := schema.Check(num, tc.value)
			require.NoError(t, err, "Check should compile the schema")
			assert.Equal(t, tc.want, got.Valid(), "Check should accept numbers only")
		})
	}
}

func TestResultJSON(t *testing.T) {
	t.Parallel()

	assert.Empty(t, schema.Result{}.JSON(), "A valid result should have no JSON form")

	r := schema.Result{Violations: []schema.Violation{{Path: "", Keyword: "required", Message: "src is required"}}}
	want := `[
  {
    "instancePath": "",
    "keyword": "required",
    "message": "src is required"
  }
]`
	assert.Equal(t, want, r.JSON(), "JSON should return the indented violations")
	assert.Equal(t, "/: src is required", r.Violations[0].String(), "String should default the path to the root")
}
