// Package payload models spot payload records as decoded from JSON payload files.
//
// Records are kept as the generic values produced by encoding/json: presence and type checks are part
// of the validation itself and cannot happen while decoding into a fixed struct.
package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Record field names.
const (
	FieldSpotName         = "spot_name"
	FieldSpotType         = "spot_type"
	FieldSpotData         = "spot_data"
	FieldTitle            = "title"
	FieldPrimaryFilters   = "primary_filters"
	FieldSecondaryFilters = "secondary_filters"
	FieldSpecificFilters  = "specific_filters"
)

// NoName is used in place of a spot name when a record does not carry a usable one.
const NoName = "N/A"

// Filter is a classification tag attached to a spot.
type Filter struct {
	Name  string `json:"name" yaml:"name" toml:"name" mapstructure:"name"`
	Value string `json:"value" yaml:"value" toml:"value" mapstructure:"value"`
}

// Token is the normalized form of the filter used for set comparisons.
func (f Filter) Token() string {
	return f.Name + ":" + f.Value
}

// String is the display form of the filter.
func (f Filter) String() string {
	return f.Name + ": " + f.Value
}

// TokenString turns a normalized token back into its display form.
func TokenString(token string) string {
	return strings.Replace(token, ":", ": ", 1)
}

// Item is a single spot record.
type Item struct {
	fields map[string]any
}

// NewItem wraps a decoded record. A record that is not a JSON object has no fields.
func NewItem(record any) Item {
	fields, _ := record.(map[string]any)
	return Item{fields: fields}
}

// Has reports whether the field carries a usable value.
// Missing fields, null, false, 0 and "" are all considered absent.
func (it Item) Has(field string) bool {
	return present(it.fields[field])
}

// Text returns the field as a string. Non-string values are formatted; absent values yield "".
func (it Item) Text(field string) string {
	return text(it.fields[field])
}

// SpotName returns the spot name, or NoName if the record has none.
func (it Item) SpotName() string {
	if !it.Has(FieldSpotName) {
		return NoName
	}
	return it.Text(FieldSpotName)
}

// SpotData returns the raw spot_data value.
func (it Item) SpotData() any {
	return it.fields[FieldSpotData]
}

// Title returns spot_data.title, and whether it is present.
func (it Item) Title() (string, bool) {
	data, ok := it.fields[FieldSpotData].(map[string]any)
	if !ok || !present(data[FieldTitle]) {
		return "", false
	}
	return text(data[FieldTitle]), true
}

// IsArray reports whether the field holds a JSON array.
func (it Item) IsArray(field string) bool {
	_, ok := it.fields[field].([]any)
	return ok
}

// Filters decodes the filter list held by field. It returns false if the field is not an array.
// Entries that are not objects decode to an empty Filter.
func (it Item) Filters(field string) ([]Filter, bool) {
	entries, ok := it.fields[field].([]any)
	if !ok {
		return nil, false
	}

	filters := make([]Filter, 0, len(entries))
	for _, e := range entries {
		filters = append(filters, decodeFilter(e))
	}
	return filters, true
}

func decodeFilter(entry any) Filter {
	var f Filter
	if _, ok := entry.(map[string]any); !ok {
		return f
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &f,
	})
	if err != nil {
		return f
	}
	// Partially decoded filters are kept.
	_ = decoder.Decode(entry)
	return f
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	}
	return true
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	return fmt.Sprint(v)
}
