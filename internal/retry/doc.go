// Package retry wraps cenkalti/backoff's exponential retry loop with a
// fixed, tuned default so callers reconnecting flaky hardware (a GPIO
// line request, a growing capture file, a broker connection) don't each
// reinvent backoff tuning.
package retry
