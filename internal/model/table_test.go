package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_PadsShortRows(t *testing.T) {
	tbl := NewTable([]string{"pieza", "precio"}, [][]Value{
		{String("LUNETA")},
		{String("PARABRISAS"), Number(10), String("extra")},
	})

	require.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.Rows[0].Get("precio").IsAbsent())
	assert.Equal(t, 10.0, tbl.Rows[1].Get("precio").Num())
	assert.Len(t, tbl.Rows[1], 2)
}

func TestRow_GetMissing(t *testing.T) {
	assert.True(t, Row{}.Get("marca").IsAbsent())
	assert.True(t, Row(nil).Get("marca").IsAbsent())
}

func TestTable_CloneIsDeep(t *testing.T) {
	tbl := NewTable([]string{"pieza"}, [][]Value{{String("LUNETA")}})
	c := tbl.Clone()

	c.Rows[0]["pieza"] = String("OTRA")
	c.Columns[0] = "x"

	assert.Equal(t, "LUNETA", tbl.Rows[0].Get("pieza").Str())
	assert.Equal(t, []string{"pieza"}, tbl.Columns)
}

func TestTable_EnsureColumns(t *testing.T) {
	tbl := NewTable([]string{"pieza"}, [][]Value{{String("LUNETA")}})
	tbl.EnsureColumns("marca", "pieza", "modelo")

	assert.Equal(t, []string{"pieza", "marca", "modelo"}, tbl.Columns)
	assert.True(t, tbl.Rows[0].Get("marca").IsAbsent())
}

func TestTable_DropColumns(t *testing.T) {
	tbl := NewTable([]string{"pieza", "unnamed: 1", "precio"}, [][]Value{
		{String("LUNETA"), String("x"), Number(5)},
	})
	tbl.DropColumns(func(name string) bool { return strings.HasPrefix(name, "unnamed") })

	assert.Equal(t, []string{"pieza", "precio"}, tbl.Columns)
	_, ok := tbl.Rows[0]["unnamed: 1"]
	assert.False(t, ok)
}

func TestConcat(t *testing.T) {
	a := NewTable([]string{"pieza", "precio"}, [][]Value{{String("A"), Number(1)}})
	b := NewTable([]string{"codigo", "pieza"}, [][]Value{{String("C1"), String("B")}, {String("C2"), String("C")}})

	out := Concat(a, b)

	assert.Equal(t, []string{"pieza", "precio", "codigo"}, out.Columns)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, "A", out.Rows[0].Get("pieza").Str())
	assert.True(t, out.Rows[0].Get("codigo").IsAbsent())
	assert.Equal(t, "C", out.Rows[2].Get("pieza").Str())

	out.Rows[0]["pieza"] = String("Z")
	assert.Equal(t, "A", a.Rows[0].Get("pieza").Str(), "concat must not alias input rows")

	assert.Equal(t, 0, Concat().Len())
}

func TestSortReasons(t *testing.T) {
	got := SortReasons(map[string]int{"precio": 2, "marca": 2, "pieza": 5})
	assert.Equal(t, []ReasonCount{
		{Reason: "pieza", Count: 5},
		{Reason: "marca", Count: 2},
		{Reason: "precio", Count: 2},
	}, got)

	assert.Empty(t, Run{}.SortedReasons())
}
