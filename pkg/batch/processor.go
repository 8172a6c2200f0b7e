package batch

import (
	"context"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ItemFunc processes item i of a batch.
type ItemFunc func(ctx context.Context, i int) error

// Outcome is the final state of one item.
type Outcome struct {
	Index    int
	Attempts int
	Err      error
}

// Result summarises one Run.
type Result struct {
	Succeeded int
	Failed    int
	Outcomes  []Outcome
	Duration  time.Duration
}

// Stats accumulate over every Run of a Processor.
type Stats struct {
	BatchesProcessed int64         `json:"batchesProcessed"`
	ItemsProcessed   int64         `json:"itemsProcessed"`
	FailedItems      int64         `json:"failedItems"`
	Retries          int64         `json:"retries"`
	ProcessingTime   time.Duration `json:"processingTime"`
	LastProcessedAt  time.Time     `json:"lastProcessedAt"`
}

// Processor runs independent items in order. A failing item never aborts the
// batch; it is retried with exponential backoff while the retry predicate
// allows it and then recorded as failed.
type Processor struct {
	config    Config
	retryable func(error) bool
	sleep     func(ctx context.Context, d time.Duration) error

	statsMux sync.RWMutex
	stats    Stats
}

type Option func(*Processor)

// WithRetryable limits retries to errors for which fn returns true. By
// default every error is retried.
func WithRetryable(fn func(error) bool) Option {
	return func(p *Processor) { p.retryable = fn }
}

// NewProcessor builds a processor. Invalid configuration falls back to
// DefaultConfig.
func NewProcessor(config Config, opts ...Option) *Processor {
	if err := ValidateConfig(config); err != nil {
		log.WithError(err).Warn("Invalid batch configuration, using defaults")
		config = DefaultConfig()
	}
	p := &Processor{
		config:    config,
		retryable: func(error) bool { return true },
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run calls fn for items 0..n-1 in ascending order. Once ctx is done the
// remaining items fail with the context error without being attempted.
func (p *Processor) Run(ctx context.Context, n int, fn ItemFunc) Result {
	start := time.Now()
	result := Result{Outcomes: make([]Outcome, 0, n)}
	var retries int64
	chunks := 0

	for lo := 0; lo < n; lo += p.config.ChunkSize {
		hi := min(lo+p.config.ChunkSize, n)
		chunks++
		for i := lo; i < hi; i++ {
			outcome := p.runItem(ctx, i, fn)
			if outcome.Attempts > 1 {
				retries += int64(outcome.Attempts - 1)
			}
			if outcome.Err != nil {
				result.Failed++
			} else {
				result.Succeeded++
			}
			result.Outcomes = append(result.Outcomes, outcome)
		}
		log.WithFields(log.Fields{"chunk": chunks, "from": lo, "to": hi}).Debug("Batch chunk processed")
	}

	result.Duration = time.Since(start)
	p.updateStats(int64(n), int64(result.Failed), retries, result.Duration)
	return result
}

func (p *Processor) runItem(ctx context.Context, i int, fn ItemFunc) Outcome {
	outcome := Outcome{Index: i}
	for attempt := 0; attempt <= p.config.RetryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			outcome.Err = err
			return outcome
		}
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * p.config.RetryBackoff
			log.WithFields(log.Fields{"item": i, "attempt": attempt, "backoff": backoff}).Debug("Retrying batch item")
			if err := p.sleep(ctx, backoff); err != nil {
				outcome.Err = err
				return outcome
			}
		}

		outcome.Attempts++
		outcome.Err = fn(ctx, i)
		if outcome.Err == nil || !p.retryable(outcome.Err) {
			return outcome
		}
	}
	return outcome
}

// GetStats returns the accumulated statistics
func (p *Processor) GetStats() Stats {
	p.statsMux.RLock()
	defer p.statsMux.RUnlock()
	return p.stats
}

func (p *Processor) updateStats(items, failed, retries int64, elapsed time.Duration) {
	p.statsMux.Lock()
	defer p.statsMux.Unlock()

	p.stats.BatchesProcessed++
	p.stats.ItemsProcessed += items
	p.stats.FailedItems += failed
	p.stats.Retries += retries
	p.stats.ProcessingTime += elapsed
	p.stats.LastProcessedAt = time.Now()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
