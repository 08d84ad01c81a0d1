package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/autoparts-catalog/internal/common"
	"github.com/Veraticus/autoparts-catalog/internal/config"
	"github.com/Veraticus/autoparts-catalog/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toyotaCSV = `DESCRIPCION,COD,PRECIO
TOYOTA,,
COROLLA 2015,,
PARABRISAS,A1,"1.500,00"
LUNETA,A2,
`

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(t.TempDir(), "catalog.db")
	return cfg
}

func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func TestProcessor_SingleInput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "lista.csv", toyotaCSV)

	cfg := testConfig(t)
	cfg.Output = filepath.Join(dir, "out", "catalogo.json")
	cfg.RejectsOutput = filepath.Join(dir, "out", "rechazos.json")

	store := testutil.SetupTestStore(t)
	var out bytes.Buffer
	p := &processor{cfg: cfg, store: store, out: &out, progress: &bytes.Buffer{}}

	require.NoError(t, p.processAll(context.Background(), []string{input}))

	records := readRecords(t, cfg.Output)
	require.Len(t, records, 1)
	assert.Equal(t, "TOYOTA", records[0]["marca"])
	assert.Equal(t, "COROLLA 2015", records[0]["modelo"])
	assert.Equal(t, "PARABRISAS", records[0]["pieza"])
	assert.InDelta(t, 1500.0, records[0]["precio"], 1e-9)

	rejects := readRecords(t, cfg.RejectsOutput)
	require.Len(t, rejects, 1)
	assert.Equal(t, "precio", rejects[0]["motivo"])
	assert.Equal(t, "LUNETA", rejects[0]["pieza"])

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, input, runs[0].Source)
	assert.Equal(t, cfg.Output, runs[0].Output)
	assert.Equal(t, 2, runs[0].Total)
	assert.Equal(t, 1, runs[0].Valid)
	assert.Equal(t, map[string]int{"precio": 1}, runs[0].Reasons)

	stored, err := store.GetRunRecords(context.Background(), runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Len())

	assert.Contains(t, out.String(), "Rejected: 1")
}

func TestProcessor_MultipleInputs(t *testing.T) {
	dir := t.TempDir()
	first := writeInput(t, dir, "enero.csv", toyotaCSV)
	second := writeInput(t, dir, "febrero.csv", toyotaCSV)

	cfg := testConfig(t)
	cfg.Output = filepath.Join(dir, "out")

	store := testutil.SetupTestStore(t)
	p := &processor{cfg: cfg, store: store, out: &bytes.Buffer{}, progress: &bytes.Buffer{}}

	require.NoError(t, p.processAll(context.Background(), []string{first, second}))

	assert.FileExists(t, filepath.Join(dir, "out", "enero.json"))
	assert.FileExists(t, filepath.Join(dir, "out", "febrero.json"))

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestProcessor_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "lista.csv", toyotaCSV)

	cfg := testConfig(t)
	cfg.DryRun = true
	cfg.Output = filepath.Join(dir, "catalogo.json")

	var out bytes.Buffer
	p := &processor{cfg: cfg, out: &out, progress: &bytes.Buffer{}}

	require.NoError(t, p.processAll(context.Background(), []string{input}))

	assert.NoFileExists(t, cfg.Output)
	assert.NoFileExists(t, cfg.Database.Path)
	assert.Contains(t, out.String(), "Valid: 1")
}

func TestProcessor_MissingInputIsFatal(t *testing.T) {
	dir := t.TempDir()
	good := writeInput(t, dir, "lista.csv", toyotaCSV)

	cfg := testConfig(t)
	cfg.Output = filepath.Join(dir, "out")

	store := testutil.SetupTestStore(t)
	p := &processor{cfg: cfg, store: store, out: &bytes.Buffer{}, progress: &bytes.Buffer{}}

	err := p.processAll(context.Background(), []string{filepath.Join(dir, "falta.pdf"), good})
	require.ErrorIs(t, err, common.ErrSourceUnavailable)

	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
	assert.NoFileExists(t, filepath.Join(dir, "out", "lista.json"))
}

func TestProcessor_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "lista.docx", "x")

	cfg := testConfig(t)
	cfg.DryRun = true
	p := &processor{cfg: cfg, out: &bytes.Buffer{}, progress: &bytes.Buffer{}}

	err := p.processAll(context.Background(), []string{input})
	assert.ErrorIs(t, err, common.ErrUnsupportedSource)
}

func TestProcessor_MappingFile(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "lista.csv", `ARTICULO,REF,IMPORTE
HONDA,,
CIVIC 2019,,
PARABRISAS,B7,"99,90"
`)
	mapping := writeInput(t, dir, "mapping.json", `{"pieza": ["ARTICULO"], "codigo": ["REF"], "precio": ["IMPORTE"]}`)

	cfg := testConfig(t)
	cfg.DryRun = false
	cfg.Mapping = mapping
	cfg.Output = filepath.Join(dir, "catalogo.json")

	p := &processor{cfg: cfg, store: testutil.SetupTestStore(t), out: &bytes.Buffer{}, progress: &bytes.Buffer{}}
	require.NoError(t, p.processAll(context.Background(), []string{input}))

	records := readRecords(t, cfg.Output)
	require.Len(t, records, 1)
	assert.Equal(t, "HONDA", records[0]["marca"])
	assert.Equal(t, "CIVIC 2019", records[0]["modelo"])
	assert.InDelta(t, 99.9, records[0]["precio"], 1e-9)
}

func TestProcessor_BadMappingFile(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "lista.csv", toyotaCSV)

	cfg := testConfig(t)
	cfg.DryRun = true
	cfg.Mapping = writeInput(t, dir, "mapping.json", `["not", "a", "map"]`)

	p := &processor{cfg: cfg, out: &bytes.Buffer{}, progress: &bytes.Buffer{}}
	err := p.processAll(context.Background(), []string{input})
	assert.ErrorIs(t, err, common.ErrMappingMalformed)
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.csv", "X\n")
	b := writeInput(t, dir, "b.csv", "X\n")
	writeInput(t, dir, "c.pdf", "")

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr error
	}{
		{
			name: "plain paths pass through",
			args: []string{a, filepath.Join(dir, "missing.csv")},
			want: []string{a, filepath.Join(dir, "missing.csv")},
		},
		{
			name: "glob expands in order",
			args: []string{filepath.Join(dir, "*.csv")},
			want: []string{a, b},
		},
		{
			name: "repeated paths collapse",
			args: []string{a, filepath.Join(dir, "*.csv")},
			want: []string{a, b},
		},
		{
			name:    "glob without matches",
			args:    []string{filepath.Join(dir, "*.xlsx")},
			wantErr: common.ErrSourceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandInputs(tt.args)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		target string
		input  string
		suffix string
		want   string
		multi  bool
	}{
		{
			name:   "next to input",
			input:  "/data/lista.pdf",
			suffix: ".json",
			want:   "/data/lista.json",
		},
		{
			name:   "single file target",
			target: "/out/catalogo.json",
			input:  "/data/lista.pdf",
			suffix: ".json",
			want:   "/out/catalogo.json",
		},
		{
			name:   "existing directory target",
			target: dir,
			input:  "/data/lista.xlsx",
			suffix: ".json",
			want:   filepath.Join(dir, "lista.json"),
		},
		{
			name:   "several inputs use a directory",
			target: "/out",
			input:  "/data/lista.xlsx",
			suffix: ".rejects.json",
			multi:  true,
			want:   "/out/lista.rejects.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outputPath(tt.target, tt.input, tt.multi, tt.suffix))
		})
	}
}
