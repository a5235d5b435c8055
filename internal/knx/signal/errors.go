package signal

import "errors"

// ErrConfig is returned when Options is missing or contains conflicting
// settings (no sample rate, unknown profile) — this aborts Decode
// before any samples are consumed.
var ErrConfig = errors.New("signal: config error")

// ErrParity marks a Span as a parity-mismatch annotation. The byte is
// still delivered; only the enclosing telegram is marked invalid.
var ErrParity = errors.New("signal: parity error")

// ErrTiming is the sentinel for an inter-frame timing violation. Decode
// does not check inter-frame spacing and never reports one.
var ErrTiming = errors.New("signal: timing error")
