package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/autoparts-catalog/internal/model"
)

// noPriceTokens are placeholders vendors print instead of a price.
var noPriceTokens = map[string]bool{
	"":          true,
	"-":         true,
	"–":         true,
	"—":         true,
	"CONSULTAR": true,
	"N/A":       true,
	"NONE":      true,
	"SIN DATO":  true,
	"S/D":       true,
}

// PriceParser turns locale-ambiguous price cells into numbers.
// Anything it cannot read becomes Absent; it never fails.
type PriceParser struct {
	// KeepZero keeps zero prices instead of folding them into Absent.
	KeepZero bool
}

// ParsePrice parses v with the default zero-means-absent convention.
func ParsePrice(v model.Value) model.Value {
	return PriceParser{}.Parse(v)
}

// Parse converts a single cell.
func (p PriceParser) Parse(v model.Value) model.Value {
	switch v.Kind() {
	case model.KindNumber:
		return p.number(v.Num())
	case model.KindString:
		return p.parseString(v.Str())
	default:
		return model.Absent()
	}
}

// Apply parses every listed column of t in place. Missing columns are skipped.
func (p PriceParser) Apply(t *model.Table, columns []string) {
	for _, c := range columns {
		if !t.HasColumn(c) {
			continue
		}
		for _, r := range t.Rows {
			r[c] = p.Parse(r.Get(c))
		}
	}
}

func (p PriceParser) number(f float64) model.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return model.Absent()
	}
	if f == 0 && !p.KeepZero {
		return model.Absent()
	}
	return model.Number(f)
}

func (p PriceParser) parseString(s string) model.Value {
	s = strings.ToUpper(strings.TrimSpace(s))
	if noPriceTokens[s] {
		return model.Absent()
	}

	s = stripNonNumeric(s)
	if s == "" {
		return model.Absent()
	}
	switch s {
	case "0", "0.0", "0,0":
		if p.KeepZero {
			return model.Number(0)
		}
		return model.Absent()
	}

	f, err := strconv.ParseFloat(normalizeSeparators(s), 64)
	if err != nil {
		return model.Absent()
	}
	return p.number(f)
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeSeparators rewrites s so that '.' is the only decimal mark and
// no grouping marks remain.
//
// With both marks present the last one is the decimal mark. With one kind
// repeated it is a grouping mark. A single comma is a decimal comma and a
// single period a decimal point.
func normalizeSeparators(s string) string {
	commas := strings.Count(s, ",")
	periods := strings.Count(s, ".")

	switch {
	case commas > 0 && periods > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			return europeanStyle(s)
		}
		return strings.ReplaceAll(s, ",", "")
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	case periods > 1:
		return strings.ReplaceAll(s, ".", "")
	case commas > periods:
		return europeanStyle(s)
	default:
		return s
	}
}

func europeanStyle(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
}
