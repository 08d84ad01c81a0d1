// Package storage provides the run history persistence layer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/autoparts-catalog/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidRun   = errors.New("invalid run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRun checks the counters of a run summary are consistent.
func validateRun(run *model.Run) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if strings.TrimSpace(run.Source) == "" {
		return fmt.Errorf("%w: source is required", ErrInvalidRun)
	}
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidRun)
	}
	if !run.FinishedAt.IsZero() && run.FinishedAt.Before(run.StartedAt) {
		return fmt.Errorf("%w: finished before it started", ErrInvalidRun)
	}
	if run.Total != run.Valid+run.Rejected {
		return fmt.Errorf("%w: total %d != valid %d + rejected %d", ErrInvalidRun, run.Total, run.Valid, run.Rejected)
	}

	sum := 0
	for reason, n := range run.Reasons {
		if strings.TrimSpace(reason) == "" || n <= 0 {
			return fmt.Errorf("%w: bad histogram entry %q=%d", ErrInvalidRun, reason, n)
		}
		sum += n
	}
	if sum != run.Rejected {
		return fmt.Errorf("%w: histogram sums to %d, rejected is %d", ErrInvalidRun, sum, run.Rejected)
	}
	return nil
}
