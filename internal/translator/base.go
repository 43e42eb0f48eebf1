package translator

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// retryPolicy controls how an adapter retries failed attempts. Delays are
// fields so tests can shrink them.
type retryPolicy struct {
	MaxAttempts    int
	RetryDelay     time.Duration
	RateLimitDelay time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		MaxAttempts:    2,
		RetryDelay:     300 * time.Millisecond,
		RateLimitDelay: 2 * time.Second,
	}
}

// BaseAdapter provides the shared retry loop for provider adapters.
type BaseAdapter struct {
	name   string
	policy retryPolicy
}

// Name returns the provider name.
func (b *BaseAdapter) Name() string {
	return b.name
}

// translateWithRetry runs an attempt function under the retry policy.
// A rate-limited attempt waits longer before the retry. The outcome of the
// last attempt is returned.
func (b *BaseAdapter) translateWithRetry(ctx context.Context, attempt func(context.Context) (string, Outcome)) (string, Outcome) {
	var (
		result  string
		outcome Outcome
	)

	for i := 0; i < b.policy.MaxAttempts; i++ {
		result, outcome = attempt(ctx)
		if outcome == OutcomeSuccess {
			return result, outcome
		}
		// Outcomes that a retry cannot fix
		if outcome == OutcomeUnsupportedLanguage || outcome == OutcomeNoAPIKey {
			return "", outcome
		}
		if i == b.policy.MaxAttempts-1 {
			break
		}

		delay := b.policy.RetryDelay
		if outcome == OutcomeRateLimited {
			delay = b.policy.RateLimitDelay
		}

		logrus.WithFields(logrus.Fields{
			"provider": b.name,
			"outcome":  outcome,
			"attempt":  i + 1,
			"delay":    delay,
		}).Debug("Translation attempt failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", OutcomeTimeout
		}
	}

	return "", outcome
}

// classifyTransportError maps a transport-level error to an outcome.
func classifyTransportError(err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return OutcomeTimeout
	}
	return OutcomeNetworkError
}
