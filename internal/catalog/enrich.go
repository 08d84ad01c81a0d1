package catalog

import (
	"github.com/Veraticus/autoparts-catalog/internal/model"
)

// HierarchyState is the brand and model currently in effect during a
// scan. Empty strings mean absent.
type HierarchyState struct {
	Brand string
	Model string
}

// Step advances the state for one classified row and reports whether
// the row is a banner to drop.
func (s *HierarchyState) Step(kind RowKind, reference string) bool {
	switch kind {
	case RowBrand:
		s.Brand = reference
		s.Model = ""
		return true
	case RowModel:
		s.Model = reference
		return true
	default:
		return false
	}
}

// Stamp writes the current brand and model onto a data row. Fields not
// yet known are left untouched.
func (s HierarchyState) Stamp(row model.Row) {
	if s.Brand != "" {
		row[FieldBrand] = model.String(s.Brand)
	}
	if s.Model != "" {
		row[FieldModel] = model.String(s.Model)
	}
}

// EnrichStats counts what an enrichment scan saw.
type EnrichStats struct {
	Brands int
	Models int
	Data   int
}

// Enrich scans t in row order, removes brand and model banners and stamps
// the hierarchy onto the remaining rows. A fresh state is used for every
// call; rows before the first banner stay unstamped.
func Enrich(t *model.Table) EnrichStats {
	var (
		state HierarchyState
		stats EnrichStats
	)

	t.EnsureColumns(FieldBrand, FieldModel)
	refCols := ReferenceColumns(*t)

	kept := make([]model.Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		ref := ReferenceText(row, refCols)
		kind := Classify(ref, IsPriceLike(row))

		if state.Step(kind, ref) {
			if kind == RowBrand {
				stats.Brands++
			} else {
				stats.Models++
			}
			continue
		}

		state.Stamp(row)
		kept = append(kept, row)
		stats.Data++
	}

	t.Rows = kept
	return stats
}
