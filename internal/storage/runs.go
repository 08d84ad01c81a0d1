package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/autoparts-catalog/internal/common"
	"github.com/Veraticus/autoparts-catalog/internal/model"
	"github.com/google/uuid"
)

// NewRun starts a run summary for source with a fresh id.
func NewRun(source string) *model.Run {
	return &model.Run{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: time.Now().UTC(),
		Reasons:   make(map[string]int),
	}
}

// SaveRun stores a run summary, its reject histogram and its validated
// records in one transaction. The record column order is taken from records.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.Run, records model.Table) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.Columns = append([]string(nil), records.Columns...)

	columns, err := json.Marshal(run.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, source, output, started_at, finished_at, tables_found,
				processed, failed, total_rows, valid_rows, rejected_rows, record_columns)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.Source, nullString(run.Output), run.StartedAt, nullTime(run.FinishedAt),
			run.Tables, run.Processed, run.Failed, run.Total, run.Valid, run.Rejected, string(columns),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for reason, n := range run.Reasons {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_reasons (run_id, reason, row_count) VALUES (?, ?, ?)`,
				run.ID, reason, n,
			); err != nil {
				return fmt.Errorf("failed to insert reason %q: %w", reason, err)
			}
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_records (run_id, position, data) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare record insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, row := range records.Rows {
			data, err := encodeRow(records.Columns, row)
			if err != nil {
				return fmt.Errorf("failed to encode record %d: %w", i, err)
			}
			if _, err := stmt.ExecContext(ctx, run.ID, i, data); err != nil {
				return fmt.Errorf("failed to insert record %d: %w", i, err)
			}
		}
		return nil
	})
}

const runColumns = `id, source, output, started_at, finished_at, tables_found,
	processed, failed, total_rows, valid_rows, rejected_rows, record_columns`

// GetRun loads one run with its histogram.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := s.loadReasons(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A non-positive limit
// returns every run.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	for i := range runs {
		if err := s.loadReasons(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// GetRunRecords returns the validated records of a run in export order.
func (s *SQLiteStorage) GetRunRecords(ctx context.Context, id string) (model.Table, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return model.Table{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM run_records WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	t := model.Table{Columns: run.Columns, Rows: []model.Row{}}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return model.Table{}, fmt.Errorf("failed to scan record: %w", err)
		}
		row, err := decodeRow(data)
		if err != nil {
			return model.Table{}, fmt.Errorf("failed to decode record: %w", err)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return model.Table{}, fmt.Errorf("failed to iterate records: %w", err)
	}
	return t, nil
}

// DeleteRun removes a run and everything stored with it.
func (s *SQLiteStorage) DeleteRun(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) loadReasons(ctx context.Context, run *model.Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT reason, row_count FROM run_reasons WHERE run_id = ?`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to query reasons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	run.Reasons = make(map[string]int)
	for rows.Next() {
		var (
			reason string
			n      int
		)
		if err := rows.Scan(&reason, &n); err != nil {
			return fmt.Errorf("failed to scan reason: %w", err)
		}
		run.Reasons[reason] = n
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*model.Run, error) {
	var (
		run      model.Run
		output   sql.NullString
		finished sql.NullTime
		columns  string
	)
	err := sc.Scan(&run.ID, &run.Source, &output, &run.StartedAt, &finished,
		&run.Tables, &run.Processed, &run.Failed, &run.Total, &run.Valid, &run.Rejected, &columns)
	if err != nil {
		return nil, err
	}

	run.Output = output.String
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	if err := json.Unmarshal([]byte(columns), &run.Columns); err != nil {
		return nil, fmt.Errorf("failed to decode columns: %w", err)
	}
	return &run, nil
}

func encodeRow(columns []string, row model.Row) (string, error) {
	obj := make(map[string]any, len(columns))
	for _, c := range columns {
		obj[c] = row.Get(c).Interface()
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeRow(data string) (model.Row, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, err
	}

	row := make(model.Row, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			row[k] = model.String(val)
		case float64:
			row[k] = model.Number(val)
		case nil:
			row[k] = model.Absent()
		default:
			return nil, fmt.Errorf("unexpected value %T for %q", v, k)
		}
	}
	return row, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
