package fileutils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrTrailingData is returned when a JSON document is followed by more data.
var ErrTrailingData = errors.New("unexpected data after top-level JSON value")

// ParseJSON decodes a single JSON document into generic values (objects as map[string]any,
// arrays as []any, numbers as json.Number).
func ParseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("couldn't parse JSON: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("couldn't parse JSON: %w", ErrTrailingData)
	}
	return v, nil
}
