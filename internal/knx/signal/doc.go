// Package signal decodes a stream of logic-level samples into framed
// bytes, short acknowledgement frames, and telegrams.
//
// The decoder is a pure, single-threaded state machine driven by a
// SampleSource: it never blocks and holds at most one in-flight
// telegram buffer. It reports byte/telegram annotations as Span values
// rather than aborting on recoverable conditions (parity mismatch,
// checksum mismatch) — only a malformed configuration returns an error.
// Inter-frame spacing is not checked: the decoder produces no
// timing_error or warning spans.
package signal
