package catalog

import (
	"sort"
	"strings"

	"github.com/Veraticus/autoparts-catalog/internal/model"
)

// DefaultRequired are the fields a record needs to be exported.
var DefaultRequired = []string{FieldBrand, FieldModel, FieldPart, FieldPrice}

// Report summarizes a validation pass. Rejected always equals the sum of
// Reasons and Total equals Valid plus Rejected.
type Report struct {
	Reasons  map[string]int
	Total    int
	Valid    int
	Rejected int
}

// Rejection is a row that failed validation and why.
type Rejection struct {
	Row    model.Row
	Reason string
}

// Validator partitions rows into valid records and rejections.
type Validator struct {
	Required []string
	// PriceColumns lists fields where AllowZeroPrice applies.
	PriceColumns []string
	// AllowZeroPrice counts a zero price as present.
	AllowZeroPrice bool
}

// Validate returns the valid rows as a table with t's columns, the
// rejected rows with their reason, and the report. An input with no
// valid rows yields an empty table, not an error.
func (v Validator) Validate(t model.Table) (model.Table, []Rejection, Report) {
	required := v.Required
	if len(required) == 0 {
		required = DefaultRequired
	}

	valid := model.Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]model.Row, 0, len(t.Rows)),
	}
	report := Report{Reasons: make(map[string]int), Total: len(t.Rows)}
	var rejections []Rejection

	for _, row := range t.Rows {
		missing := v.missing(row, required)
		if len(missing) == 0 {
			valid.Rows = append(valid.Rows, row)
			report.Valid++
			continue
		}

		sort.Strings(missing)
		reason := strings.Join(missing, ", ")
		report.Rejected++
		report.Reasons[reason]++
		rejections = append(rejections, Rejection{Row: row, Reason: reason})
	}

	return valid, rejections, report
}

func (v Validator) missing(row model.Row, required []string) []string {
	var out []string
	for _, field := range required {
		if v.isMissing(field, row.Get(field)) {
			out = append(out, field)
		}
	}
	return out
}

func (v Validator) isMissing(field string, val model.Value) bool {
	switch val.Kind() {
	case model.KindString:
		return val.Str() == ""
	case model.KindNumber:
		if val.Num() != 0 {
			return false
		}
		return !v.AllowZeroPrice || !v.isPriceColumn(field)
	default:
		return true
	}
}

func (v Validator) isPriceColumn(field string) bool {
	cols := v.PriceColumns
	if len(cols) == 0 {
		cols = []string{FieldPrice}
	}
	for _, c := range cols {
		if c == field {
			return true
		}
	}
	return false
}
