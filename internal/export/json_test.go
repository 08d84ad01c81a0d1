package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/autoparts-catalog/internal/catalog"
	"github.com/Veraticus/autoparts-catalog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() model.Table {
	return model.NewTable(
		[]string{"pieza", "marca", "precio", "color"},
		[][]model.Value{
			{model.String("PARABRISAS <3+3> & CO"), model.String("CITROËN"), model.Number(1234.56), model.Absent()},
		},
	)
}

func TestWriteRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, sampleTable()))

	want := `[
  {
    "pieza": "PARABRISAS <3+3> & CO",
    "marca": "CITROËN",
    "precio": 1234.56,
    "color": null
  }
]
`
	assert.Equal(t, want, buf.String())
}

func TestWriteRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, model.Table{Columns: []string{"pieza"}}))
	assert.Equal(t, "[]\n", buf.String())

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Empty(t, decoded)
}

func TestWriteRejects(t *testing.T) {
	rejections := []catalog.Rejection{
		{Row: model.Row{"pieza": model.String("LUNETA")}, Reason: "marca, precio"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRejects(&buf, []string{"pieza", "precio"}, rejections))

	want := `[
  {
    "motivo": "marca, precio",
    "pieza": "LUNETA",
    "precio": null
  }
]
`
	assert.Equal(t, want, buf.String())
}

func TestWriteFile_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "catalogo.json")

	require.NoError(t, WriteFile(path, sampleTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Nil(t, decoded[0]["color"])
	assert.InDelta(t, 1234.56, decoded[0]["precio"], 1e-9)
}
