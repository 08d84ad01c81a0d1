package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Veraticus/autoparts-catalog/internal/common"
	"github.com/Veraticus/autoparts-catalog/internal/model"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVSource reads a delimited text export as a single table.
type CSVSource struct {
	path string
	opts Options
}

// NewCSVSource creates a source for the file at path.
func NewCSVSource(path string, opts Options) *CSVSource {
	return &CSVSource{path: path, opts: opts}
}

// Name returns the file base name.
func (s *CSVSource) Name() string { return filepath.Base(s.path) }

// Extract reads the file.
func (s *CSVSource) Extract(ctx context.Context) (Extraction, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: %w", common.ErrSourceUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	t, err := ReadCSV(ctx, f, s.opts)
	if err != nil {
		return Extraction{Failed: 1}, err
	}
	if t.Len() == 0 && len(t.Columns) == 0 {
		return Extraction{Processed: 1}, nil
	}
	return Extraction{Tables: []model.Table{t}, Processed: 1}, nil
}

// ReadCSV decodes r with the configured encoding and returns its table.
// Lines above the header row are skipped.
func ReadCSV(ctx context.Context, r io.Reader, opts Options) (model.Table, error) {
	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return model.Table{}, err
	}

	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}

	var (
		header []string
		cells  [][]model.Value
		line   int
	)
	for {
		if err := ctx.Err(); err != nil {
			return model.Table{}, err
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Table{}, fmt.Errorf("%w: csv: %w", common.ErrSourceUnavailable, err)
		}
		line++

		if line < opts.headerRow() {
			continue
		}
		if header == nil {
			header = uniqueHeader(record)
			continue
		}

		row := make([]model.Value, len(record))
		for i, c := range record {
			row[i] = stringCell(c)
		}
		cells = append(cells, row)
	}

	if header == nil {
		return model.Table{}, nil
	}
	return model.NewTable(header, cells), nil
}

func decoderFor(name string) (*encoding.Decoder, error) {
	switch name {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported encoding %q", common.ErrInvalidConfig, name)
	}
}
