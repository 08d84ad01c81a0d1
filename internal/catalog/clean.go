package catalog

import (
	"strings"

	"github.com/Veraticus/autoparts-catalog/internal/model"
)

// CleanText trims, collapses whitespace runs and uppercases s. Blank
// results and the literal "NAN" become Absent.
func CleanText(s string) model.Value {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if cleaned == "" || strings.EqualFold(cleaned, "NAN") {
		return model.Absent()
	}
	return model.String(cleaned)
}

// CleanValue applies CleanText to strings and returns every other kind as is.
func CleanValue(v model.Value) model.Value {
	if !v.IsString() {
		return v
	}
	return CleanText(v.Str())
}

// TextColumns lists the columns holding at least one string cell.
func TextColumns(t model.Table) []string {
	var cols []string
	for _, c := range t.Columns {
		for _, r := range t.Rows {
			if r.Get(c).IsString() {
				cols = append(cols, c)
				break
			}
		}
	}
	return cols
}

// CleanTable cleans every textual column of t in place.
func CleanTable(t *model.Table) {
	for _, c := range TextColumns(*t) {
		for _, r := range t.Rows {
			if v, ok := r[c]; ok {
				r[c] = CleanValue(v)
			}
		}
	}
}
