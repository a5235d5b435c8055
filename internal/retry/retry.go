package retry

import (
	"time"

	"github.com/cenkalti/backoff"
)

// Config tunes the exponential backoff retry loop.
type Config struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultConfig mirrors the tuning used for flaky serial/USB instrument
// reconnects: start fast, cap the interval, give up after a few seconds
// so the caller's own supervisory loop decides what happens next rather
// than retrying forever inside Do.
var DefaultConfig = Config{
	InitialInterval: 25 * time.Millisecond,
	MaxInterval:     1 * time.Second,
	MaxElapsedTime:  3 * time.Second,
}

// Do retries op with exponential backoff per cfg, returning op's last
// error once the elapsed-time budget is exhausted.
func Do(cfg Config, op func() error) error {
	return backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     cfg.InitialInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         cfg.MaxInterval,
		MaxElapsedTime:      cfg.MaxElapsedTime,
		Clock:               backoff.SystemClock,
	})
}

// Forever retries op with a constant backoff, never giving up on its
// own: it takes no context, so it returns only once op succeeds or
// returns a backoff.Permanent error.
func Forever(interval time.Duration, op func() error) error {
	return backoff.Retry(op, backoff.NewConstantBackOff(interval))
}
