package eventpub

import "errors"

// ErrRateLimited is returned when a span is dropped because the
// publish rate limiter has no tokens available. Dropping rather than
// blocking keeps the decoder loop from stalling behind a slow broker.
var ErrRateLimited = errors.New("eventpub: rate limited, span dropped")
