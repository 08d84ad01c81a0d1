package catalog

import (
	"regexp"
	"strings"

	"github.com/Veraticus/autoparts-catalog/internal/model"
)

// RowKind tags what a row announces.
type RowKind int

const (
	// RowData is a product row.
	RowData RowKind = iota
	// RowBrand is a brand banner.
	RowBrand
	// RowModel is a model banner.
	RowModel
)

func (k RowKind) String() string {
	switch k {
	case RowBrand:
		return "brand"
	case RowModel:
		return "model"
	default:
		return "data"
	}
}

var (
	// Uppercase Latin letters, accented ones included, and spaces only.
	brandPattern = regexp.MustCompile(`^[A-ZÀ-ÖØ-Þ\s]+$`)
	// Years are four digits not touching a letter, digit or underscore.
	modelPattern = regexp.MustCompile(`(MOD\.|MOD |(^|[^\p{L}\p{N}_])\d{4}([^\p{L}\p{N}_]|$)|/|')`)
	digitPattern = regexp.MustCompile(`\d`)
)

// referenceCandidates are checked in order; the first table column is
// appended as the last candidate.
var referenceCandidates = []string{FieldPart, FieldDescription, FieldDetail}

// priceLikeColumns hold values that only product rows carry.
var priceLikeColumns = []string{FieldPrice, FieldCode}

// Classify decides whether reference text announces a brand, a model or
// is plain data. The brand test runs first so a model line following a
// brand line is never read as a second brand.
func Classify(reference string, priceLike bool) RowKind {
	if reference == "" || priceLike {
		return RowData
	}
	if brandPattern.MatchString(reference) {
		return RowBrand
	}
	if modelPattern.MatchString(reference) {
		return RowModel
	}
	return RowData
}

// ReferenceColumns returns the columns of t used to build reference text.
func ReferenceColumns(t model.Table) []string {
	var cols []string
	add := func(c string) {
		if !t.HasColumn(c) {
			return
		}
		for _, existing := range cols {
			if existing == c {
				return
			}
		}
		cols = append(cols, c)
	}
	for _, c := range referenceCandidates {
		add(c)
	}
	if len(t.Columns) > 0 {
		add(t.Columns[0])
	}
	return cols
}

// ReferenceText joins the string cells of columns with single spaces.
func ReferenceText(row model.Row, columns []string) string {
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		if v := row.Get(c); v.IsString() && v.Str() != "" {
			parts = append(parts, v.Str())
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// IsPriceLike reports whether the price or code cell holds a number or a
// string with at least one digit.
func IsPriceLike(row model.Row) bool {
	for _, c := range priceLikeColumns {
		v := row.Get(c)
		if v.IsNumber() {
			return true
		}
		if v.IsString() && digitPattern.MatchString(v.Str()) {
			return true
		}
	}
	return false
}
