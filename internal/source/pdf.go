package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Veraticus/autoparts-catalog/internal/common"
	"github.com/ledongthuc/pdf"
)

// PDFSource reads text-based PDF catalogs, one table per page.
type PDFSource struct {
	path   string
	layout Layout
}

// NewPDFSource creates a source for the PDF at path.
func NewPDFSource(path string, opts Options) (*PDFSource, error) {
	layout, err := NewLayout(opts.PDF)
	if err != nil {
		return nil, err
	}
	return &PDFSource{path: path, layout: layout}, nil
}

// Name returns the file base name.
func (s *PDFSource) Name() string { return filepath.Base(s.path) }

// Extract lays out every page. Pages that cannot be decoded count as
// failed; the document itself failing to open is fatal.
func (s *PDFSource) Extract(ctx context.Context) (Extraction, error) {
	f, r, err := pdf.Open(s.path)
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: open pdf: %w", common.ErrSourceUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	var ext Extraction
	for n := 1; n <= r.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return Extraction{}, err
		}

		tokens, err := pageTokens(r, n)
		if err != nil {
			slog.Warn("Failed to read page", "file", s.Name(), "page", n, "error", err)
			ext.Failed++
			continue
		}
		ext.Processed++

		t := s.layout.Table(tokens)
		if t.Len() == 0 {
			continue
		}
		ext.Tables = append(ext.Tables, t)
	}
	return ext, nil
}

// pageTokens returns the glyphs of page n with a top-origin Y axis.
// The PDF reader panics on some malformed content streams.
func pageTokens(r *pdf.Reader, n int) (tokens []Token, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: %v", n, rec)
		}
	}()

	p := r.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing page object", n)
	}

	height := pageHeight(p)
	for _, t := range p.Content().Text {
		y := t.Y
		if height > 0 {
			y = height - t.Y
		}
		tokens = append(tokens, Token{Page: n, X: t.X, Y: y, W: t.W, Text: t.S})
	}
	return tokens, nil
}

func pageHeight(p pdf.Page) float64 {
	box := p.V.Key("MediaBox")
	for parent := p.V.Key("Parent"); box.IsNull() && !parent.IsNull(); parent = parent.Key("Parent") {
		box = parent.Key("MediaBox")
	}
	if box.Len() != 4 {
		return 0
	}
	return box.Index(3).Float64() - box.Index(1).Float64()
}

var (
	_ Source = (*CSVSource)(nil)
	_ Source = (*ExcelSource)(nil)
	_ Source = (*PDFSource)(nil)
)
