package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/autoparts-catalog/internal/common"
	"github.com/Veraticus/autoparts-catalog/internal/model"
	"github.com/xuri/excelize/v2"
)

// ExcelSource reads worksheets of an xlsx workbook, one table per sheet.
type ExcelSource struct {
	path string
	opts Options
}

// NewExcelSource creates a source for the workbook at path.
func NewExcelSource(path string, opts Options) *ExcelSource {
	return &ExcelSource{path: path, opts: opts}
}

// Name returns the file base name.
func (s *ExcelSource) Name() string { return filepath.Base(s.path) }

// Extract reads the selected sheets. A sheet that cannot be read counts
// as failed and is skipped.
func (s *ExcelSource) Extract(ctx context.Context) (Extraction, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: open excel: %w", common.ErrSourceUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	sheets, err := s.sheets(f)
	if err != nil {
		return Extraction{}, err
	}

	var ext Extraction
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return Extraction{}, err
		}

		t, err := readSheet(f, sheet, s.opts.headerRow())
		if err != nil {
			slog.Warn("Failed to read sheet", "file", s.Name(), "sheet", sheet, "error", err)
			ext.Failed++
			continue
		}
		ext.Processed++
		if len(t.Columns) == 0 {
			continue
		}
		ext.Tables = append(ext.Tables, t)
	}
	return ext, nil
}

func (s *ExcelSource) sheets(f *excelize.File) ([]string, error) {
	all := f.GetSheetList()
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", common.ErrSourceUnavailable, s.Name())
	}

	switch s.opts.Sheet {
	case "":
		return all[:1], nil
	case AllSheets:
		return all, nil
	}

	for _, name := range all {
		if strings.EqualFold(name, s.opts.Sheet) {
			return []string{name}, nil
		}
	}
	return nil, fmt.Errorf("%w: sheet %q not found in %s", common.ErrSourceUnavailable, s.opts.Sheet, s.Name())
}

func readSheet(f *excelize.File, sheet string, headerRow int) (model.Table, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return model.Table{}, err
	}
	if len(rows) < headerRow {
		return model.Table{}, nil
	}

	header := uniqueHeader(rows[headerRow-1])
	width := len(header)
	for _, r := range rows[headerRow:] {
		if len(r) > width {
			width = len(r)
		}
	}
	for len(header) < width {
		header = append(header, "unnamed: "+strconv.Itoa(len(header)))
	}

	cells := make([][]model.Value, 0, len(rows)-headerRow)
	for i, r := range rows[headerRow:] {
		rowNum := headerRow + i + 1
		line := make([]model.Value, len(r))
		for c, raw := range r {
			line[c] = excelCell(f, sheet, c+1, rowNum, raw)
		}
		cells = append(cells, line)
	}
	return model.NewTable(header, cells), nil
}

// excelCell keeps numeric cells as numbers; everything else is text.
func excelCell(f *excelize.File, sheet string, col, row int, raw string) model.Value {
	if strings.TrimSpace(raw) == "" {
		return model.Absent()
	}

	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return model.String(raw)
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return model.String(raw)
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return model.Number(n)
		}
	}
	return model.String(raw)
}
