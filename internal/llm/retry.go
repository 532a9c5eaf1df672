package llm

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"
)

// RetryConfig configures the LLM Client's exponential backoff, generalized
// from driftlessaf's agents/executor/retry package.
type RetryConfig struct {
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	MaxJitter   time.Duration
}

// DefaultRetryConfig mirrors driftlessaf's quota-aware defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  5,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  60 * time.Second,
		MaxJitter:   500 * time.Millisecond,
	}
}

// isRetryableTransportError classifies rate-limit and transient server
// errors as retryable, generalized from claudeexecutor's
// isRetryableClaudeError.
func isRetryableTransportError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 503, 504, 529:
			return true
		}
	}
	return false
}

// retryWithBackoff executes fn, retrying on transient transport errors with
// exponential backoff plus jitter. It exhausts into the last error, which
// the caller maps to LLM_UNAVAILABLE.
func retryWithBackoff[T any](ctx context.Context, cfg RetryConfig, logger *zap.Logger, operation string, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}

		if !isRetryableTransportError(lastErr) {
			return result, lastErr
		}

		if attempt >= cfg.MaxRetries {
			break
		}

		backoff := cfg.BaseBackoff << attempt
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}

		var jitter time.Duration
		if cfg.MaxJitter > 0 {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(cfg.MaxJitter)))
			if err == nil {
				jitter = time.Duration(n.Int64())
			}
		}

		logger.Warn("llm transport error, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", cfg.MaxRetries),
			zap.Duration("backoff", backoff+jitter),
			zap.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}

	return result, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, lastErr)
}
