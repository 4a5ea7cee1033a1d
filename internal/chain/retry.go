package chain

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// Sentinel errors for retry logic.
var (
	ErrRetryable = &presaleerr.PresaleError{
		Code:     "RETRYABLE_ERROR",
		Message:  "retryable error",
		ExitCode: presaleerr.ExitGeneral,
	}

	ErrRateLimited = &presaleerr.PresaleError{
		Code:     "RATE_LIMITED",
		Message:  "rate limited",
		ExitCode: presaleerr.ExitGeneral,
	}
)

// JSON-RPC error codes that indicate a transient node condition.
const (
	rpcCodeLimitExceeded = -32005
	rpcCodeServerBusy    = -32603
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts int           // Maximum number of attempts (including initial)
	BaseDelay   time.Duration // Initial delay between retries
	MaxDelay    time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns the retry configuration for contract reads.
// 3 attempts total with delays of roughly 250ms and 500ms; refreshes are
// periodic, so a read that keeps failing waits for the next tick instead.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    time.Second,
	}
}

// Retry executes the operation with the default configuration.
func Retry[T any](ctx context.Context, operation func() (T, error)) (T, error) {
	return RetryWithConfig(ctx, DefaultRetryConfig(), operation)
}

// RetryWithConfig executes the operation with exponential backoff, retrying only
// errors IsRetryable accepts.
func RetryWithConfig[T any](ctx context.Context, cfg RetryConfig, operation func() (T, error)) (T, error) {
	var result T
	var err error

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		result, err = operation()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return result, err
		}

		if attempt < attempts-1 {
			timer := time.NewTimer(calculateDelay(attempt, cfg.BaseDelay, cfg.MaxDelay))
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return result, fmt.Errorf("operation failed after %d attempts: %w", attempts, err)
}

// calculateDelay doubles base per attempt up to maxDelay and draws the final
// wait from [delay/2, delay).
func calculateDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := min(baseDelay<<attempt, maxDelay)
	if half := delay / 2; half > 0 {
		return half + rand.N(half) //nolint:gosec // G404: jitter only
	}
	return delay
}

// IsRetryable reports whether a read error is transient: explicit markers,
// deadline hits on a single attempt, node rate limits and 429/5xx HTTP answers.
// Reverts and decoding errors are never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrRetryable) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case rpcCodeLimitExceeded:
			return true
		case rpcCodeServerBusy:
			return strings.Contains(strings.ToLower(rpcErr.Error()), "busy")
		}
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= http.StatusInternalServerError
	}

	return false
}

// WrapRetryable wraps an error to mark it as retryable.
func WrapRetryable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRetryable, err)
}
