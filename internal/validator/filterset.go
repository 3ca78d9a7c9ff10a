package validator

import (
	"fmt"
	"strings"

	"github.com/spot-validator/spot-validator/internal/payload"
)

// FilterSetResult is the outcome of comparing secondary filters to the required set.
type FilterSetResult struct {
	Valid bool
	// Count is the number of filters received, duplicates included.
	Count int
	// Missing are the required tokens absent from the input, in required order.
	Missing []string
	// Extra are the input tokens which are not required, in first-occurrence order.
	Extra []string

	required []payload.Filter
}

// CheckFilterSet checks that input is exactly the required filter set.
//
// Both lists are compared as sets of name:value tokens, so duplicated input filters count once. The input
// must still hold exactly as many entries as the required set: an input of the right length with a
// duplicated pair has a smaller set and is rejected.
func CheckFilterSet(required, input []payload.Filter) FilterSetResult {
	requiredSet := tokenSet(required)
	inputSet := tokenSet(input)

	r := FilterSetResult{Count: len(input), required: required}
	for _, t := range requiredSet.order {
		if !inputSet.has(t) {
			r.Missing = append(r.Missing, t)
		}
	}
	for _, t := range inputSet.order {
		if !requiredSet.has(t) {
			r.Extra = append(r.Extra, t)
		}
	}

	r.Valid = len(input) == len(required) &&
		len(inputSet.order) == len(requiredSet.order) &&
		len(r.Missing) == 0
	return r
}

// Message describes the difference between the input and the required set.
func (r FilterSetResult) Message() string {
	var sb strings.Builder
	sb.WriteString("Required secondary filters do not match. ")

	if r.Count != len(r.required) {
		fmt.Fprintf(&sb, "Expected %d filters, found %d. ", len(r.required), r.Count)
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(&sb, "Missing: [%s]. ", displayTokens(r.Missing))
	}
	if len(r.Extra) > 0 {
		fmt.Fprintf(&sb, "Extra: [%s]. ", displayTokens(r.Extra))
	}

	required := make([]string, 0, len(r.required))
	for _, f := range r.required {
		required = append(required, f.String())
	}
	fmt.Fprintf(&sb, "Required: %s", strings.Join(required, ", "))

	return sb.String()
}

func displayTokens(tokens []string) string {
	display := make([]string, 0, len(tokens))
	for _, t := range tokens {
		display = append(display, payload.TokenString(t))
	}
	return strings.Join(display, ", ")
}

// orderedSet is a set of tokens remembering insertion order.
type orderedSet struct {
	order []string
	index map[string]struct{}
}

func tokenSet(filters []payload.Filter) orderedSet {
	s := orderedSet{index: make(map[string]struct{}, len(filters))}
	for _, f := range filters {
		t := f.Token()
		if s.has(t) {
			continue
		}
		s.index[t] = struct{}{}
		s.order = append(s.order, t)
	}
	return s
}

func (s orderedSet) has(token string) bool {
	_, ok := s.index[token]
	return ok
}
