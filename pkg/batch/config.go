package batch

import (
	"fmt"
	"time"
)

// Config controls how a batch is chunked and how failing items are retried.
type Config struct {
	ChunkSize     int           `json:"chunkSize"`     // items per logged chunk
	RetryAttempts int           `json:"retryAttempts"` // extra attempts after the first
	RetryBackoff  time.Duration `json:"retryBackoff"`  // doubled on every retry
}

var (
	ErrInvalidChunkSize     = fmt.Errorf("invalid chunk size: must be greater than 0")
	ErrInvalidRetryAttempts = fmt.Errorf("invalid retry attempts: must be greater than or equal to 0")
	ErrInvalidRetryBackoff  = fmt.Errorf("invalid retry backoff: must be greater than or equal to 0")
)

// DefaultConfig returns the default configuration for batch processing
func DefaultConfig() Config {
	return Config{
		ChunkSize:     50,
		RetryAttempts: 2,
		RetryBackoff:  100 * time.Millisecond,
	}
}

// ValidateConfig validates the batch configuration
func ValidateConfig(config Config) error {
	if config.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if config.RetryAttempts < 0 {
		return ErrInvalidRetryAttempts
	}
	if config.RetryBackoff < 0 {
		return ErrInvalidRetryBackoff
	}
	return nil
}
