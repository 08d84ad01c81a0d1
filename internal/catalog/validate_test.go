package catalog

import (
	"testing"

	"github.com/Veraticus/autoparts-catalog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRow() model.Row {
	return model.Row{
		"marca":  model.String("TOYOTA"),
		"modelo": model.String("COROLLA 2020"),
		"pieza":  model.String("PARABRISAS"),
		"precio": model.Number(100),
	}
}

func TestValidator_Validate(t *testing.T) {
	missingModel := validRow()
	delete(missingModel, "modelo")

	emptyPart := validRow()
	emptyPart["pieza"] = model.String("")

	zeroPrice := validRow()
	zeroPrice["precio"] = model.Number(0)

	missingTwo := validRow()
	missingTwo["precio"] = model.Absent()
	missingTwo["marca"] = model.Absent()

	missingTwoAgain := missingTwo.Clone()
	missingTwoAgain["pieza"] = model.String("LUNETA")

	tbl := model.Table{
		Columns: []string{"marca", "modelo", "pieza", "precio", "color"},
		Rows:    []model.Row{validRow(), missingModel, emptyPart, zeroPrice, missingTwo, missingTwoAgain},
	}

	valid, rejections, report := Validator{}.Validate(tbl)

	assert.Equal(t, tbl.Columns, valid.Columns)
	require.Len(t, valid.Rows, 1)
	assert.Equal(t, 6, report.Total)
	assert.Equal(t, 1, report.Valid)
	assert.Equal(t, 5, report.Rejected)
	assert.Equal(t, map[string]int{
		"modelo":        1,
		"pieza":         1,
		"precio":        1,
		"marca, precio": 2,
	}, report.Reasons)

	require.Len(t, rejections, 5)
	assert.Equal(t, "modelo", rejections[0].Reason)
	assert.Equal(t, "marca, precio", rejections[3].Reason)
}

func TestValidator_AllowZeroPrice(t *testing.T) {
	zeroPrice := validRow()
	zeroPrice["precio"] = model.Number(0)

	tbl := model.Table{Columns: []string{"marca", "modelo", "pieza", "precio"}, Rows: []model.Row{zeroPrice}}

	valid, _, report := Validator{AllowZeroPrice: true}.Validate(tbl)
	assert.Len(t, valid.Rows, 1)
	assert.Equal(t, 0, report.Rejected)

	_, _, report = Validator{}.Validate(tbl)
	assert.Equal(t, 1, report.Rejected)
}

func TestValidator_EmptyInput(t *testing.T) {
	tbl := model.Table{Columns: []string{"marca", "pieza"}}

	valid, rejections, report := Validator{}.Validate(tbl)

	assert.Equal(t, []string{"marca", "pieza"}, valid.Columns)
	assert.NotNil(t, valid.Rows)
	assert.Empty(t, valid.Rows)
	assert.Empty(t, rejections)
	assert.Equal(t, Report{Reasons: map[string]int{}}, report)
}

func TestValidator_HistogramInvariant(t *testing.T) {
	var rows []model.Row
	for i := 0; i < 40; i++ {
		r := validRow()
		if i%2 == 0 {
			r["marca"] = model.Absent()
		}
		if i%3 == 0 {
			r["precio"] = model.String("")
		}
		if i%5 == 0 {
			r["modelo"] = model.Number(0)
		}
		rows = append(rows, r)
	}
	tbl := model.Table{Columns: []string{"marca", "modelo", "pieza", "precio"}, Rows: rows}

	valid, rejections, report := Validator{}.Validate(tbl)

	sum := 0
	for _, n := range report.Reasons {
		sum += n
	}
	assert.Equal(t, report.Rejected, sum)
	assert.Equal(t, report.Total, report.Valid+report.Rejected)
	assert.Len(t, valid.Rows, report.Valid)
	assert.Len(t, rejections, report.Rejected)

	for _, r := range valid.Rows {
		for _, f := range DefaultRequired {
			v := r.Get(f)
			assert.False(t, v.IsAbsent())
			assert.NotEqual(t, "", v.Str()+v.Text())
		}
	}
}
