package catalog

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/Veraticus/autoparts-catalog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name   string
		in     model.Value
		want   float64
		absent bool
	}{
		{name: "international thousands", in: model.String("321,694.32"), want: 321694.32},
		{name: "currency symbol", in: model.String("$48,293.94"), want: 48293.94},
		{name: "european", in: model.String("1.234,56"), want: 1234.56},
		{name: "single decimal comma", in: model.String("12,5"), want: 12.5},
		{name: "plain decimal", in: model.String("99.90"), want: 99.9},
		{name: "millions international", in: model.String("1,234,567.89"), want: 1234567.89},
		{name: "millions european", in: model.String("1.234.567,89"), want: 1234567.89},
		{name: "grouping commas only", in: model.String("1,234,567"), want: 1234567},
		{name: "grouping periods only", in: model.String("1.234.567"), want: 1234567},
		{name: "lowercase token", in: model.String(" consultar "), absent: true},
		{name: "surrounding text", in: model.String("USD 1,500.00 c/u"), want: 1500},
		{name: "negative", in: model.String("-15.25"), want: -15.25},
		{name: "number passthrough", in: model.Number(42.5), want: 42.5},
		{name: "empty", in: model.String(""), absent: true},
		{name: "dash", in: model.String("-"), absent: true},
		{name: "en dash", in: model.String("–"), absent: true},
		{name: "em dash", in: model.String("—"), absent: true},
		{name: "consultar", in: model.String("CONSULTAR"), absent: true},
		{name: "n/a", in: model.String("n/a"), absent: true},
		{name: "sin dato", in: model.String("Sin Dato"), absent: true},
		{name: "s/d", in: model.String("S/D"), absent: true},
		{name: "literal zero", in: model.String("0"), absent: true},
		{name: "zero with comma", in: model.String("0,0"), absent: true},
		{name: "zero after parse", in: model.String("$0.00"), absent: true},
		{name: "no digits", in: model.String("PRECIO"), absent: true},
		{name: "garbage", in: model.String("12-34"), absent: true},
		{name: "absent", in: model.Absent(), absent: true},
		{name: "numeric zero", in: model.Number(0), absent: true},
		{name: "numeric infinity", in: model.Number(math.Inf(1)), absent: true},
		{name: "numeric nan", in: model.Number(math.NaN()), absent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.in)
			if tt.absent {
				assert.True(t, got.IsAbsent(), "got %#v", got)
				return
			}
			require.True(t, got.IsNumber(), "got %#v", got)
			assert.InDelta(t, tt.want, got.Num(), 1e-9)
		})
	}
}

func TestPriceParser_KeepZero(t *testing.T) {
	p := PriceParser{KeepZero: true}

	for _, in := range []model.Value{model.String("0"), model.String("0,0"), model.String("$0.00"), model.Number(0)} {
		got := p.Parse(in)
		require.True(t, got.IsNumber(), "input %#v", in)
		assert.Zero(t, got.Num())
	}

	assert.True(t, p.Parse(model.String("-")).IsAbsent())
	assert.True(t, p.Parse(model.String("CONSULTAR")).IsAbsent())
}

func TestParsePrice_RoundTrip(t *testing.T) {
	values := []float64{0.5, 1, 12.34, 999.99, 1000, 48293.94, 321694.32, 1234567.89, 98765432.1, -2500.75}

	for _, v := range values {
		t.Run(fmt.Sprintf("%v", v), func(t *testing.T) {
			formatted := formatThousands(v)
			got := ParsePrice(model.String(formatted))
			require.True(t, got.IsNumber(), "formatted %q", formatted)
			assert.InDelta(t, v, got.Num(), 0.005)
		})
	}
}

func TestPriceParser_Apply(t *testing.T) {
	tbl := model.NewTable(
		[]string{"pieza", "precio"},
		[][]model.Value{
			{model.String("PARABRISAS"), model.String("1.234,56")},
			{model.String("LUNETA"), model.String("CONSULTAR")},
			{model.String("PUERTA"), model.Number(10)},
		},
	)

	PriceParser{}.Apply(&tbl, []string{"precio", "missing"})

	assert.InDelta(t, 1234.56, tbl.Rows[0].Get("precio").Num(), 1e-9)
	assert.True(t, tbl.Rows[1].Get("precio").IsAbsent())
	assert.InDelta(t, 10.0, tbl.Rows[2].Get("precio").Num(), 1e-9)
	assert.Equal(t, "PARABRISAS", tbl.Rows[0].Get("pieza").Str())
	assert.False(t, tbl.HasColumn("missing"))
}

// formatThousands renders v with comma grouping and two decimals.
func formatThousands(v float64) string {
	s := fmt.Sprintf("%.2f", math.Abs(v))
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
