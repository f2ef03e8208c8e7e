package chrono

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
	"github.com/narora21/chrono-patient-uploader/internal/infrastructure/resilience"
)

// classifyChronoError implements the retry contract: only HTTP 429 is
// retried, carrying the server's Retry-After as the wait hint. Everything
// else returns to the caller on the first attempt. The circuit breaker
// records transport-level failures only; rate limits and client errors are
// expected traffic.
func classifyChronoError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}

	if rl, ok := domain.IsRateLimit(err); ok {
		class := resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: false,
		}
		if rl.RetryAfter > 0 {
			class.RetryAfter = time.Duration(rl.RetryAfter * float64(time.Second))
		}
		return class
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: statusErr.StatusCode >= 500,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: true,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}
