package resilience

import "time"

type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	JitterMax   time.Duration

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		BackoffBase: 2 * time.Second,
		BackoffMax:  30 * time.Second,
		JitterMax:   1 * time.Second,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.MaxRetries <= 0 {
		out.MaxRetries = def.MaxRetries
	}
	if out.BackoffBase <= 0 {
		out.BackoffBase = def.BackoffBase
	}
	if out.BackoffMax <= 0 {
		out.BackoffMax = def.BackoffMax
	}
	if out.BackoffMax < out.BackoffBase {
		out.BackoffMax = out.BackoffBase
	}
	if out.JitterMax <= 0 {
		out.JitterMax = def.JitterMax
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}

	return out
}
