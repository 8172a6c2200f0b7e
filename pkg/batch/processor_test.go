package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func newTestProcessor(config Config, opts ...Option) (*Processor, *[]time.Duration) {
	p := NewProcessor(config, opts...)
	var slept []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return p, &slept
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		err    error
	}{
		{"default", DefaultConfig(), nil},
		{"zero chunk", Config{ChunkSize: 0}, ErrInvalidChunkSize},
		{"negative retries", Config{ChunkSize: 1, RetryAttempts: -1}, ErrInvalidRetryAttempts},
		{"negative backoff", Config{ChunkSize: 1, RetryBackoff: -time.Second}, ErrInvalidRetryBackoff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateConfig(tt.config), tt.err)
		})
	}
}

func TestNewProcessor_InvalidConfigFallsBack(t *testing.T) {
	p := NewProcessor(Config{ChunkSize: -1})
	assert.Equal(t, DefaultConfig(), p.config)
}

func TestRun_ProcessesInOrderAcrossChunks(t *testing.T) {
	p, _ := newTestProcessor(Config{ChunkSize: 2})
	var seen []int

	res := p.Run(context.Background(), 5, func(_ context.Context, i int) error {
		seen = append(seen, i)
		return nil
	})

	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
	assert.Equal(t, 5, res.Succeeded)
	assert.Zero(t, res.Failed)
	require.Len(t, res.Outcomes, 5)
	assert.Equal(t, 1, res.Outcomes[4].Attempts)
}

func TestRun_RetriesWithExponentialBackoff(t *testing.T) {
	p, slept := newTestProcessor(Config{ChunkSize: 10, RetryAttempts: 3, RetryBackoff: 10 * time.Millisecond})
	calls := 0

	res := p.Run(context.Background(), 1, func(context.Context, int) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 3, res.Outcomes[0].Attempts)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *slept)
	assert.EqualValues(t, 2, p.GetStats().Retries)
}

func TestRun_FailureDoesNotAbortBatch(t *testing.T) {
	p, _ := newTestProcessor(Config{ChunkSize: 10, RetryAttempts: 1})

	res := p.Run(context.Background(), 3, func(_ context.Context, i int) error {
		if i == 1 {
			return errTransient
		}
		return nil
	})

	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.ErrorIs(t, res.Outcomes[1].Err, errTransient)
	assert.Equal(t, 2, res.Outcomes[1].Attempts)

	stats := p.GetStats()
	assert.EqualValues(t, 1, stats.BatchesProcessed)
	assert.EqualValues(t, 3, stats.ItemsProcessed)
	assert.EqualValues(t, 1, stats.FailedItems)
}

func TestRun_NonRetryableErrorStopsImmediately(t *testing.T) {
	permanent := errors.New("duplicate")
	p, slept := newTestProcessor(Config{ChunkSize: 10, RetryAttempts: 5},
		WithRetryable(func(err error) bool { return !errors.Is(err, permanent) }))

	res := p.Run(context.Background(), 1, func(context.Context, int) error { return permanent })

	assert.Equal(t, 1, res.Outcomes[0].Attempts)
	assert.Empty(t, *slept)
}

func TestRun_CancelledContextSkipsRemainingItems(t *testing.T) {
	p, _ := newTestProcessor(Config{ChunkSize: 10})
	ctx, cancel := context.WithCancel(context.Background())

	res := p.Run(ctx, 3, func(_ context.Context, i int) error {
		if i == 0 {
			cancel()
		}
		return nil
	})

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	assert.ErrorIs(t, res.Outcomes[2].Err, context.Canceled)
	assert.Zero(t, res.Outcomes[2].Attempts)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), 0))
}
