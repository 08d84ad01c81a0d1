package source

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/autoparts-catalog/internal/common"
	"github.com/Veraticus/autoparts-catalog/internal/model"
)

// Layout defaults.
const (
	DefaultYTolerance = 8.0
	DefaultHeaderBand = 50.0
	DefaultGlyphGap   = 1.5

	// FallbackColumn holds whole lines when no column geometry is configured.
	FallbackColumn = "descripcion"
)

var (
	pageCounterPattern = regexp.MustCompile(`^\d+/\d+$`)
	furniturePattern   = regexp.MustCompile(`(?i)^(p[áa]gina|cat[áa]logo)`)
)

// Token is a piece of text placed on a page. Y grows downward from the
// top edge.
type Token struct {
	Text string
	Page int
	X    float64
	Y    float64
	W    float64
}

// ColumnSpan is a named horizontal range, both ends inclusive.
type ColumnSpan struct {
	Name string
	Min  float64
	Max  float64
}

// ColumnMapper assigns x coordinates to column names.
type ColumnMapper struct {
	spans []ColumnSpan
}

// NewColumnMapper validates the configured spans and orders them left to right.
func NewColumnMapper(columns map[string][]float64) (*ColumnMapper, error) {
	spans := make([]ColumnSpan, 0, len(columns))
	for name, r := range columns {
		if len(r) != 2 || r[0] >= r[1] {
			return nil, fmt.Errorf("%w: column %q needs [xmin, xmax] with xmin < xmax", common.ErrInvalidConfig, name)
		}
		spans = append(spans, ColumnSpan{Name: name, Min: r[0], Max: r[1]})
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Min != spans[j].Min {
			return spans[i].Min < spans[j].Min
		}
		return spans[i].Name < spans[j].Name
	})
	return &ColumnMapper{spans: spans}, nil
}

// Column returns the leftmost span containing x.
func (m *ColumnMapper) Column(x float64) (string, bool) {
	for _, s := range m.spans {
		if x >= s.Min && x <= s.Max {
			return s.Name, true
		}
	}
	return "", false
}

// Names lists the columns left to right.
func (m *ColumnMapper) Names() []string {
	out := make([]string, len(m.spans))
	for i, s := range m.spans {
		out[i] = s.Name
	}
	return out
}

// Layout rebuilds table rows from positioned tokens.
type Layout struct {
	Columns    *ColumnMapper
	YTolerance float64
	HeaderBand float64
	GlyphGap   float64
}

// NewLayout builds a layout from options, applying defaults.
func NewLayout(opts PDFOptions) (Layout, error) {
	l := Layout{
		YTolerance: opts.YTolerance,
		HeaderBand: opts.HeaderBand,
		GlyphGap:   opts.GlyphGap,
	}
	if l.YTolerance <= 0 {
		l.YTolerance = DefaultYTolerance
	}
	if l.HeaderBand == 0 {
		l.HeaderBand = DefaultHeaderBand
	}
	if l.GlyphGap == 0 {
		l.GlyphGap = DefaultGlyphGap
	}
	if len(opts.Columns) > 0 {
		m, err := NewColumnMapper(opts.Columns)
		if err != nil {
			return Layout{}, err
		}
		l.Columns = m
	}
	return l, nil
}

// Lines groups tokens below the header band into lines, top to bottom,
// each sorted left to right.
func (l Layout) Lines(tokens []Token) [][]Token {
	body := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Y < l.HeaderBand {
			continue
		}
		body = append(body, t)
	}
	sort.SliceStable(body, func(i, j int) bool {
		if body[i].Y != body[j].Y {
			return body[i].Y < body[j].Y
		}
		return body[i].X < body[j].X
	})

	var (
		lines [][]Token
		lineY float64
	)
	for _, t := range body {
		if len(lines) > 0 && math.Abs(t.Y-lineY) <= l.YTolerance {
			lines[len(lines)-1] = append(lines[len(lines)-1], t)
			continue
		}
		lines = append(lines, []Token{t})
		lineY = t.Y
	}

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	}
	return lines
}

// Words merges adjacent glyphs of one line into words. Whitespace glyphs
// and horizontal gaps wider than GlyphGap end a word.
func (l Layout) Words(line []Token) []Token {
	var (
		words []Token
		cur   *Token
		b     strings.Builder
	)
	flush := func() {
		if cur != nil && b.Len() > 0 {
			cur.Text = b.String()
			words = append(words, *cur)
		}
		cur = nil
		b.Reset()
	}

	for _, t := range line {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			flush()
			continue
		}
		if cur != nil && t.X-(cur.X+cur.W) > l.GlyphGap {
			flush()
		}
		if cur == nil {
			word := t
			cur = &word
			cur.W = 0
		}
		b.WriteString(text)
		cur.W = math.Max(cur.W, t.X+t.W-cur.X)
	}
	flush()
	return words
}

// Table rebuilds one page as a table. Lines carrying page furniture are
// skipped, as are page counters and lines that map to no column.
func (l Layout) Table(tokens []Token) model.Table {
	header := []string{FallbackColumn}
	if l.Columns != nil {
		header = l.Columns.Names()
	}

	var cells [][]model.Value
	for _, line := range l.Lines(tokens) {
		words := l.Words(line)
		if isFurniture(words) {
			continue
		}

		parts := make(map[string][]string, len(header))
		for _, w := range words {
			if pageCounterPattern.MatchString(w.Text) {
				continue
			}
			col := FallbackColumn
			if l.Columns != nil {
				var ok bool
				if col, ok = l.Columns.Column(w.X); !ok {
					continue
				}
			}
			parts[col] = append(parts[col], w.Text)
		}
		if len(parts) == 0 {
			continue
		}

		row := make([]model.Value, len(header))
		for i, col := range header {
			row[i] = stringCell(strings.Join(parts[col], " "))
		}
		cells = append(cells, row)
	}
	return model.NewTable(header, cells)
}

// isFurniture reports whether a line is a running page header or footer.
// Only the leading word decides, so product text mentioning a catalog
// is kept.
func isFurniture(words []Token) bool {
	return len(words) > 0 && furniturePattern.MatchString(words[0].Text)
}
