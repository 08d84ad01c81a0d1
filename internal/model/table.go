package model

// Row maps a column name to its cell. A missing key reads as Absent.
type Row map[string]Value

// Get returns the cell for column, Absent when missing.
func (r Row) Get(column string) Value {
	return r[column]
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered sequence of rows sharing a declared column order.
// Row order is significant: hierarchy enrichment depends on it.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable builds a table from a header and positional cells.
// Short rows are padded with Absent; extra cells are ignored.
func NewTable(header []string, cells [][]Value) Table {
	t := Table{
		Columns: append([]string(nil), header...),
		Rows:    make([]Row, 0, len(cells)),
	}
	for _, line := range cells {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(line) {
				row[col] = line[i]
			} else {
				row[col] = Absent()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the column is declared.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone deep-copies the column list and every row.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// EnsureColumns appends any missing columns; existing rows read them as Absent.
func (t *Table) EnsureColumns(names ...string) {
	for _, n := range names {
		if !t.HasColumn(n) {
			t.Columns = append(t.Columns, n)
		}
	}
}

// DropColumns removes every column for which drop returns true.
func (t *Table) DropColumns(drop func(name string) bool) {
	kept := t.Columns[:0:0]
	for _, c := range t.Columns {
		if drop(c) {
			for _, r := range t.Rows {
				delete(r, c)
			}
			continue
		}
		kept = append(kept, c)
	}
	t.Columns = kept
}

// Concat combines tables into one. Columns are the union in first-seen
// order and rows keep their relative order.
func Concat(tables ...Table) Table {
	var out Table
	seen := make(map[string]bool)
	total := 0
	for _, t := range tables {
		total += len(t.Rows)
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				out.Columns = append(out.Columns, c)
			}
		}
	}
	out.Rows = make([]Row, 0, total)
	for _, t := range tables {
		for _, r := range t.Rows {
			out.Rows = append(out.Rows, r.Clone())
		}
	}
	return out
}
