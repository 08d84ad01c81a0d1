package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	slog.New(h).Info("Extraction finished", "tables", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Extraction finished", entry["msg"])
	assert.InDelta(t, 3, entry["tables"], 0)

	_, err = NewHandler(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "validacion.log")

	logger, closeFn, err := NewFileLogger(path, slog.LevelInfo, "console")
	require.NoError(t, err)

	LogInfo(logger, "Validation finished", Fields{"valid": 7, "rejected": 3})
	LogError(logger, errors.New("boom"), "Processing failed", Fields{"source": "lista.pdf"})
	logger.Debug("hidden")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "Validation finished")
	assert.Contains(t, out, "valid=7")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "source=lista.pdf")
	assert.NotContains(t, out, "hidden")
}

func TestNewFileLogger_EmptyPath(t *testing.T) {
	logger, closeFn, err := NewFileLogger("", slog.LevelInfo, "json")
	require.NoError(t, err)
	assert.Same(t, slog.Default(), logger)
	assert.NoError(t, closeFn())
}

func TestUserError(t *testing.T) {
	err := NewUserError("cannot read lista.pdf", ErrSourceUnavailable)

	assert.Equal(t, "cannot read lista.pdf: source unavailable", err.Error())
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "cannot read lista.pdf", userErr.UserMessage)

	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(ErrExtractionEmpty))
	assert.True(t, IsFatal(ErrSourceUnavailable))
	assert.True(t, IsFatal(NewUserError("bad mapping", ErrMappingMalformed)))
}
