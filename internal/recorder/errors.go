package recorder

import "errors"

// ErrMissingFrame is returned when a KindTelegramLabel span is recorded
// without its decoded Frame populated — the decoder always sets it, so
// this indicates a caller constructed the span by hand.
var ErrMissingFrame = errors.New("recorder: telegram span missing decoded frame")
