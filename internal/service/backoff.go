package service

import (
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	defaultRetryBase = 5 * time.Second
	defaultRetryMax  = 10 * time.Minute
	retryJitterPct   = 10
	maxBackoffSteps  = 64
)

// backoffPolicy computes the delay before the next replay of a failed write.
// The delay doubles per attempt from base and is capped at max. Writes are
// never dropped.
type backoffPolicy struct {
	base time.Duration
	max  time.Duration
}

func newBackoffPolicy(base, maxDelay time.Duration) backoffPolicy {
	if base <= 0 {
		base = defaultRetryBase
	}
	if maxDelay < base {
		maxDelay = max(defaultRetryMax, base)
	}
	return backoffPolicy{base: base, max: maxDelay}
}

// delay returns the wait after the given number of failed attempts.
func (p backoffPolicy) delay(attempts int) time.Duration {
	b := retry.WithCappedDuration(p.max, retry.WithJitterPercent(retryJitterPct, retry.NewExponential(p.base)))

	steps := min(max(attempts, 1), maxBackoffSteps)
	var d time.Duration
	for range steps {
		d, _ = b.Next()
	}
	return d
}
