// Package export writes validated catalog records as JSON.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Veraticus/autoparts-catalog/internal/catalog"
	"github.com/Veraticus/autoparts-catalog/internal/model"
)

// ReasonField is the key rejected rows carry their reason under.
const ReasonField = "motivo"

const indent = "  "

// WriteRecords writes t as a JSON array of objects keyed in column order.
// Absent cells are written as null.
func WriteRecords(w io.Writer, t model.Table) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeObject(&buf, t.Columns, row, nil); err != nil {
			return err
		}
	}
	buf.WriteByte(']')

	return writeIndented(w, buf.Bytes())
}

// WriteRejects writes rejected rows like WriteRecords, with the reason
// as the leading field.
func WriteRejects(w io.Writer, columns []string, rejections []catalog.Rejection) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range rejections {
		if i > 0 {
			buf.WriteByte(',')
		}
		reason := r.Reason
		if err := writeObject(&buf, columns, r.Row, &reason); err != nil {
			return err
		}
	}
	buf.WriteByte(']')

	return writeIndented(w, buf.Bytes())
}

// WriteFile writes the records of t to path, creating parent directories.
func WriteFile(path string, t model.Table) error {
	return writeFile(path, func(w io.Writer) error { return WriteRecords(w, t) })
}

// WriteRejectsFile writes rejected rows to path, creating parent directories.
func WriteRejectsFile(path string, columns []string, rejections []catalog.Rejection) error {
	return writeFile(path, func(w io.Writer) error { return WriteRejects(w, columns, rejections) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // output path is user supplied
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func writeObject(buf *bytes.Buffer, columns []string, row model.Row, reason *string) error {
	buf.WriteByte('{')
	first := true
	field := func(key string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := encode(buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')
		return encode(buf, v)
	}

	if reason != nil {
		if err := field(ReasonField, *reason); err != nil {
			return err
		}
	}
	for _, c := range columns {
		if err := field(c, row.Get(c).Interface()); err != nil {
			return fmt.Errorf("column %q: %w", c, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func encode(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

func writeIndented(w io.Writer, compact []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", indent); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return err
}
