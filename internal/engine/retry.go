package engine

import (
	"context"
	"errors"
	"time"

	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second
	DefaultMaxDelay    = 20 * time.Second
)

// RetryPolicy retries a call on rate-limit errors only. Anything else
// propagates immediately: remote OCR failures that are not throttles are
// deterministic and waiting will not fix them.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	logger      logger.Logger
}

func NewRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration, log logger.Logger) *RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	return &RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		logger:      log,
	}
}

// Do runs fn up to MaxAttempts times. It returns the result of the first
// non-rate-limited call together with the number of attempts made.
func (p *RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, int, error) {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		text, err := fn(ctx)
		if err == nil {
			return text, attempt, nil
		}

		var rle *RateLimitError
		if !errors.As(err, &rle) {
			return "", attempt, err
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}

		wait := p.backoff(attempt, rle.RetryAfter)
		p.logger.Warn("Rate limited, backing off",
			logger.Int("attempt", attempt),
			logger.Duration("wait", wait),
		)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", attempt, ctx.Err()
		}
	}
	return "", p.MaxAttempts, lastErr
}

// backoff prefers the provider-supplied delay, else doubles the base delay
// per attempt, capped.
func (p *RetryPolicy) backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		if retryAfter > p.MaxDelay {
			return p.MaxDelay
		}
		return retryAfter
	}
	wait := p.BaseDelay << (attempt - 1)
	if wait > p.MaxDelay {
		wait = p.MaxDelay
	}
	return wait
}
