// Package validator checks spot payload records against the catalog.
//
// Every failed rule is recorded in the run report.Log; validating a record never stops at its first
// failure, except when the record lacks the data the remaining rules need.
package validator

import (
	"fmt"
	"log/slog"

	"github.com/spot-validator/spot-validator/internal/catalog"
	"github.com/spot-validator/spot-validator/internal/payload"
	"github.com/spot-validator/spot-validator/internal/report"
)

// Validator validates records against a catalog.
type Validator struct {
	catalog *catalog.Catalog
}

// New returns a Validator for c.
func New(c *catalog.Catalog) *Validator {
	return &Validator{catalog: c}
}

// Catalog returns the catalog records are validated against.
func (v *Validator) Catalog() *catalog.Catalog {
	return v.catalog
}

// CrossRefResult holds the three independent catalog membership verdicts of a record.
type CrossRefResult struct {
	TitleValid bool
	NameValid  bool
	TypeValid  bool

	TitleReason string
	NameReason  string
	TypeReason  string
}

// CrossReference checks title, spot name and spot type membership independently.
// An unknown title has no allowed names, so the name is then reported invalid as well.
func (v *Validator) CrossReference(title, spotName, spotType string) CrossRefResult {
	r := CrossRefResult{
		TitleValid: v.catalog.IsValidTitle(title),
		NameValid:  v.catalog.IsAllowedSpotName(title, spotName),
		TypeValid:  v.catalog.IsValidSpotType(spotType),
	}

	if !r.TitleValid {
		r.TitleReason = fmt.Sprintf("invalid spot_data.title: %q", title)
	}
	if !r.NameValid {
		r.NameReason = fmt.Sprintf("spot_name %q is not valid for title %q", spotName, title)
	}
	if !r.TypeValid {
		r.TypeReason = fmt.Sprintf("invalid spot_type: %q", spotType)
	}
	return r
}

// ValidateItem validates one record and records every failure in log.
// It returns true if the record is valid.
func (v *Validator) ValidateItem(file string, index int, record any, log *report.Log) bool {
	item := payload.NewItem(record)
	valid := true
	fail := func(kind report.Kind, format string, args ...any) {
		log.AddError(file, index, item.SpotName(), kind, fmt.Sprintf(format, args...))
		valid = false
	}

	for _, field := range []string{payload.FieldSpotName, payload.FieldSpotType, payload.FieldSpotData} {
		if !item.Has(field) {
			fail(report.KindMissingField, "field %s is missing", field)
		}
	}
	if !item.Has(payload.FieldSpotData) {
		return false
	}

	title, ok := item.Title()
	if !ok {
		fail(report.KindMissingField, "field %s.%s is missing", payload.FieldSpotData, payload.FieldTitle)
		return false
	}

	spotName, spotType := item.Text(payload.FieldSpotName), item.Text(payload.FieldSpotType)
	xref := v.CrossReference(title, spotName, spotType)

	if !xref.TitleValid {
		fail(report.KindInvalidTitle, "%s", xref.TitleReason)
	} else if !xref.NameValid {
		fail(report.KindInvalidSpotName, "%s", xref.NameReason)
	}

	if !xref.TypeValid {
		fail(report.KindInvalidSpotType, "%s", xref.TypeReason)
	} else {
		res, err := v.catalog.ValidateSpotData(spotType, item.SpotData())
		switch {
		case err != nil:
			fail(report.KindInvalidSpotDataFormat, "invalid spot_data format for spot_type %q. Errors: %v", spotType, err)
		case !res.Valid():
			fail(report.KindInvalidSpotDataFormat, "invalid spot_data format for spot_type %q. Errors: %s", spotType, res.JSON())
		}
	}

	for _, field := range []string{payload.FieldPrimaryFilters, payload.FieldSecondaryFilters, payload.FieldSpecificFilters} {
		if !item.IsArray(field) {
			fail(report.KindInvalidField, "%s must be an array", field)
		}
	}

	// A non-array secondary_filters field is compared as an empty list.
	filters, _ := item.Filters(payload.FieldSecondaryFilters)
	fs := CheckFilterSet(v.catalog.RequiredSecondaryFilters(), filters)
	if !fs.Valid {
		fail(report.KindMissingRequiredSecondaryFilters, "%s", fs.Message())
	} else {
		log.AddCompliant(file, index, item.SpotName())
	}

	slog.Debug("Validated item", "file", file, "index", index, "spot_name", item.SpotName(), "valid", valid)
	return valid
}

// ScanItem only checks whether a record carries exactly the required secondary filters, recording it in log
// if so. No error is ever recorded.
func (v *Validator) ScanItem(file string, index int, record any, log *report.Log) bool {
	item := payload.NewItem(record)
	filters, ok := item.Filters(payload.FieldSecondaryFilters)
	if !ok {
		return false
	}

	if !CheckFilterSet(v.catalog.RequiredSecondaryFilters(), filters).Valid {
		return false
	}

	log.AddCompliant(file, index, item.SpotName())
	return true
}
