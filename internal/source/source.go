// Package source extracts raw tables from catalog documents.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/autoparts-catalog/internal/common"
	"github.com/Veraticus/autoparts-catalog/internal/model"
)

// AllSheets selects every worksheet of a workbook.
const AllSheets = "*"

// Source yields the raw tables of one document in extraction order.
type Source interface {
	Name() string
	Extract(ctx context.Context) (Extraction, error)
}

// Extraction is what a source produced. Processed and Failed count the
// source's own units (pages, sheets, files).
type Extraction struct {
	Tables    []model.Table
	Processed int
	Failed    int
}

// Rows returns the number of rows across all tables.
func (e Extraction) Rows() int {
	n := 0
	for _, t := range e.Tables {
		n += t.Len()
	}
	return n
}

// Options configures every source kind. Zero values fall back to defaults.
type Options struct {
	PDF       PDFOptions
	Sheet     string
	Encoding  string
	HeaderRow int
	Delimiter rune
}

// PDFOptions describes the page geometry of PDF catalogs.
type PDFOptions struct {
	Columns    map[string][]float64
	YTolerance float64
	HeaderBand float64
	GlyphGap   float64
}

func (o Options) headerRow() int {
	if o.HeaderRow < 1 {
		return 1
	}
	return o.HeaderRow
}

// Open picks a source implementation from the file extension.
func Open(path string, opts Options) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", common.ErrSourceUnavailable, path)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", common.ErrSourceUnavailable, path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		return NewCSVSource(path, opts), nil
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return NewExcelSource(path, opts), nil
	case ".pdf":
		return NewPDFSource(path, opts)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedSource, ext)
	}
}

// memorySource serves tables that are already in memory.
type memorySource struct {
	name   string
	tables []model.Table
}

// FromTables wraps ready-made tables as a Source.
func FromTables(name string, tables ...model.Table) Source {
	return &memorySource{name: name, tables: tables}
}

func (m *memorySource) Name() string { return m.name }

func (m *memorySource) Extract(ctx context.Context) (Extraction, error) {
	if err := ctx.Err(); err != nil {
		return Extraction{}, err
	}
	out := make([]model.Table, len(m.tables))
	for i, t := range m.tables {
		out[i] = t.Clone()
	}
	return Extraction{Tables: out, Processed: len(out)}, nil
}

// uniqueHeader names blank headers "unnamed: N" and suffixes repeated
// headers with ".1", ".2" so every raw column stays addressable.
func uniqueHeader(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[h]; dup {
			base := h
			for {
				n++
				h = base + "." + strconv.Itoa(n)
				if _, taken := seen[h]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[h] = 0
		out[i] = h
	}
	return out
}

// stringCell turns raw text into a cell; blank text is absent.
func stringCell(s string) model.Value {
	if strings.TrimSpace(s) == "" {
		return model.Absent()
	}
	return model.String(s)
}
