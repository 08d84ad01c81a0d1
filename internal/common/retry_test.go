package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBusy = errors.New("database is locked")

func TestWithRetry(t *testing.T) {
	fast := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantIs    error
		wantErr   bool
	}{
		{name: "first try", failures: 0, wantCalls: 1},
		{name: "recovers", failures: 2, err: errBusy, wantCalls: 3},
		{name: "gives up", failures: 5, err: errBusy, wantCalls: 3, wantErr: true, wantIs: ErrMaxRetries},
		{name: "permanent stops at once", failures: 5, err: Permanent(ErrNotFound), wantCalls: 1, wantErr: true, wantIs: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			}, fast)

			assert.Equal(t, tt.wantCalls, calls)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}
}

func TestWithRetry_GivesUpKeepsCause(t *testing.T) {
	err := WithRetry(context.Background(), func() error { return errBusy },
		RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond})
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, errBusy)
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error { return errBusy },
		RetryOptions{MaxAttempts: 3, InitialDelay: time.Hour})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
