package catalog

import (
	"strings"

	"github.com/Veraticus/autoparts-catalog/internal/model"
)

// DropEmptyAndDuplicates removes rows with every value absent and keeps
// only the first of any identical rows. It returns how many rows were
// removed. A blank row stamped with a brand or model is not empty.
func DropEmptyAndDuplicates(t *model.Table) int {
	seen := make(map[string]bool, len(t.Rows))
	kept := make([]model.Row, 0, len(t.Rows))

	for _, row := range t.Rows {
		if rowEmpty(row, t.Columns) {
			continue
		}
		key := rowKey(row, t.Columns)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}

	removed := len(t.Rows) - len(kept)
	t.Rows = kept
	return removed
}

// DropUnnamedColumns removes the placeholder columns sources create for
// blank headers.
func DropUnnamedColumns(t *model.Table) {
	t.DropColumns(func(name string) bool {
		return strings.HasPrefix(name, "unnamed")
	})
}

func rowEmpty(row model.Row, columns []string) bool {
	for _, c := range columns {
		if !row.Get(c).IsAbsent() {
			return false
		}
	}
	return true
}

func rowKey(row model.Row, columns []string) string {
	var b strings.Builder
	for _, c := range columns {
		v := row.Get(c)
		b.WriteString(v.Kind().String())
		b.WriteByte(':')
		b.WriteString(v.Text())
		b.WriteByte(0x1f)
	}
	return b.String()
}
