package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppLimitThresholdSeconds separates a transient burst limit from the hourly
// application limit: the service answers the latter with a Retry-After that
// points at the top of the hour.
const AppLimitThresholdSeconds = 60

// RateLimitError is returned when the API answered 429 and, ultimately, when
// all retries were exhausted.
type RateLimitError struct {
	// RetryAfter is the server-requested wait in seconds, or -1 when the
	// response carried no usable Retry-After header.
	RetryAfter float64
	// AppLimit is true when the unclamped Retry-After pointed past the
	// transient window (hourly 500 requests/hour limit).
	AppLimit bool
}

func (e *RateLimitError) Error() string {
	if e.AppLimit {
		return "drchrono application rate limit reached (500 requests/hour); wait until the top of the hour and try again"
	}
	return "drchrono API rate limit exceeded (HTTP 429); all retries exhausted"
}

// IsRateLimit unwraps err looking for a RateLimitError.
func IsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
