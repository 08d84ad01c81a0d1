package catalog

import (
	"regexp"

	"github.com/Veraticus/autoparts-catalog/internal/model"
)

var (
	windshieldPattern = regexp.MustCompile(`PARABRISAS`)
	rearGlassPattern  = regexp.MustCompile(`LUNETA`)
	leftPattern       = regexp.MustCompile(`\bIZQ`)
	rightPattern      = regexp.MustCompile(`\bDER`)
)

// Placement values written by InferPlacement.
const (
	PositionFront = "DELANTERO"
	PositionRear  = "TRASERO"
	SideLeft      = "IZQUIERDA"
	SideRight     = "DERECHA"
)

var placementSources = []string{FieldGlass, FieldPart, FieldDescription}

// InferPlacement fills absent posicion and lado cells from the glass
// description. Existing values are kept.
func InferPlacement(t *model.Table) {
	t.EnsureColumns(FieldPosition, FieldSide)

	for _, row := range t.Rows {
		desc := ReferenceText(row, placementSources)

		if row.Get(FieldPosition).IsAbsent() {
			switch {
			case windshieldPattern.MatchString(desc):
				row[FieldPosition] = model.String(PositionFront)
			case rearGlassPattern.MatchString(desc):
				row[FieldPosition] = model.String(PositionRear)
			default:
				row[FieldPosition] = model.Absent()
			}
		}

		if row.Get(FieldSide).IsAbsent() {
			switch {
			case leftPattern.MatchString(desc):
				row[FieldSide] = model.String(SideLeft)
			case rightPattern.MatchString(desc):
				row[FieldSide] = model.String(SideRight)
			default:
				row[FieldSide] = model.Absent()
			}
		}
	}
}
