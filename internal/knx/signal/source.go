package signal

// SampleSource is the externally supplied stream Decode consumes: one
// call per transition on the bus, in ascending sample order. ok is
// false once the stream is exhausted; Next must not be called again
// afterward.
type SampleSource interface {
	Next() (sample int64, level bool, ok bool)
}

// edge is one transition pulled from a SampleSource.
type edge struct {
	sample int64
	level  bool
}

// edgeCursor buffers a single lookahead edge so Decode can peek the
// next transition before deciding whether it belongs to the window
// currently being evaluated.
type edgeCursor struct {
	src       SampleSource
	lookahead *edge
	exhausted bool
}

func newEdgeCursor(src SampleSource) *edgeCursor {
	return &edgeCursor{src: src}
}

// peek returns the next unconsumed edge without advancing, or
// ok=false if the stream is exhausted.
func (c *edgeCursor) peek() (edge, bool) {
	if c.lookahead != nil {
		return *c.lookahead, true
	}
	if c.exhausted {
		return edge{}, false
	}
	sample, level, ok := c.src.Next()
	if !ok {
		c.exhausted = true
		return edge{}, false
	}
	c.lookahead = &edge{sample: sample, level: level}
	return *c.lookahead, true
}

// advance discards the peeked edge so the next peek pulls a fresh one.
func (c *edgeCursor) advance() {
	c.lookahead = nil
}

// nextFalling discards edges until it finds one matching fallingLevel,
// then returns it without consuming it (spike rejection: any other
// edge encountered along the way is silently dropped).
func (c *edgeCursor) nextFalling(fallingLevel bool) (edge, bool) {
	for {
		e, ok := c.peek()
		if !ok {
			return edge{}, false
		}
		if e.level == fallingLevel {
			return e, true
		}
		c.advance()
	}
}

// findEdgeInWindow reports whether an edge of the given direction
// exists within [lo, hi] (inclusive), consuming it if so, and returns
// its sample index. Edges seen before lo are dropped (spike rejection
// via the next_min guard); edges after hi are left for the next
// window. A matching falling edge's immediate return-to-idle
// transition (the short low pulse a "0" bit is physically signalled
// by) is also swallowed here so it doesn't leak into the next bit's
// window.
func (c *edgeCursor) findEdgeInWindow(lo, hi float64, fallingLevel bool) (int64, bool) {
	for {
		e, ok := c.peek()
		if !ok {
			return 0, false
		}
		s := float64(e.sample)
		switch {
		case s < lo:
			c.advance() // spike: predates this window, discard
		case s <= hi:
			if e.level == fallingLevel {
				c.advance()
				c.swallowImmediateReturn(fallingLevel, hi)
				return e.sample, true
			}
			c.advance() // wrong direction inside the window: noise, discard
		default:
			return 0, false // belongs to a later window; leave it
		}
	}
}

// hasEdgeInWindow is findEdgeInWindow without the caller needing the
// matched edge's exact sample.
func (c *edgeCursor) hasEdgeInWindow(lo, hi float64, fallingLevel bool) bool {
	_, ok := c.findEdgeInWindow(lo, hi, fallingLevel)
	return ok
}

// swallowImmediateReturn consumes a single edge back to the opposite
// level, if it occurs no later than hi, on the assumption it is the
// same physical pulse's return-to-idle rather than a new bit's edge.
func (c *edgeCursor) swallowImmediateReturn(fallingLevel bool, hi float64) {
	e, ok := c.peek()
	if !ok {
		return
	}
	if e.level != fallingLevel && float64(e.sample) <= hi {
		c.advance()
	}
}
