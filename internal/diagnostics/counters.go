package diagnostics

import "github.com/knxcore/knxcore/internal/knx/signal"

// Counters tallies one decode session's observations. The zero value
// is ready to use.
type Counters struct {
	BytesSeen          int64
	TelegramsAssembled int64
	ParityErrors       int64
	ChecksumErrors     int64
	TimingWarnings     int64
}

// Observe updates c from a single span. Every KindDataByte span counts
// one byte seen; a KindTelegramLabel span counts one assembled
// telegram; the three warning kinds increment their own counter. Short
// frames (ack/nack/busy) aren't counted here — eventpub and recorder
// already track those as their own event class.
func (c *Counters) Observe(span signal.Span) {
	switch span.Kind {
	case signal.KindDataByte:
		c.BytesSeen++
	case signal.KindTelegramLabel:
		c.TelegramsAssembled++
	case signal.KindParityError:
		c.ParityErrors++
	case signal.KindChecksumError:
		c.ChecksumErrors++
	case signal.KindTimingError:
		c.TimingWarnings++
	}
}

// fields renders c as the field set for an InfluxDB point.
func (c Counters) fields() map[string]interface{} {
	return map[string]interface{}{
		"bytes_seen":          c.BytesSeen,
		"telegrams_assembled": c.TelegramsAssembled,
		"parity_errors":       c.ParityErrors,
		"checksum_errors":     c.ChecksumErrors,
		"timing_warnings":     c.TimingWarnings,
	}
}
