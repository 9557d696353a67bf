/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errDenied = errors.New("denied")

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name        string
		policy      Policy
		isRetryable IsRetryable
		failures    int
		wantCalls   int
		wantRetries int
		wantErr     error
	}{
		{
			name:        "succeeds after retries",
			policy:      NewConstantBackoffPolicy(time.Millisecond, 5),
			failures:    2,
			wantCalls:   3,
			wantRetries: 2,
		},
		{
			name:        "gives up after max retries",
			policy:      NewExponentialBackoffPolicy(time.Millisecond, 3),
			failures:    10,
			wantCalls:   4,
			wantRetries: 3,
			wantErr:     errDenied,
		},
		{
			name:        "permanent error is not retried",
			policy:      NewConstantBackoffPolicy(time.Millisecond, 5),
			isRetryable: func(err error) bool { return !errors.Is(err, errDenied) },
			failures:    10,
			wantCalls:   1,
			wantErr:     errDenied,
		},
		{
			name:      "no retry policy",
			policy:    NoRetryPolicy,
			failures:  10,
			wantCalls: 1,
			wantErr:   errDenied,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			retries := 0
			var notified []time.Duration
			err := DoWithRetry(context.Background(), tt.policy, tt.isRetryable,
				CountRetries(&retries, func(_ error, delay time.Duration) { notified = append(notified, delay) }),
				func(ctx context.Context) error {
					calls++
					if calls <= tt.failures {
						return errDenied
					}
					return nil
				})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantCalls, calls)
			require.Equal(t, tt.wantRetries, retries)
			require.Len(t, notified, tt.wantRetries)
		})
	}
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := DoWithRetry(ctx, NewConstantBackoffPolicy(time.Hour, 0), nil, nil, func(ctx context.Context) error {
		calls++
		cancel()
		return errDenied
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
