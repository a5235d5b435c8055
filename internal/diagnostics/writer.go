package diagnostics

import (
	"github.com/knxcore/knxcore/internal/knx/signal"
)

// pointWriter is the subset of *influxdb.Client diagnostics depends
// on, narrowed so tests use a recording double instead of a live
// server connection.
type pointWriter interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]interface{})
}

const measurement = "decode_session"

// Session accumulates one decode session's Counters and writes them to
// InfluxDB as a single point per Flush call.
type Session struct {
	writer    pointWriter
	sessionID string
	counters  Counters
}

// NewSession returns a Session that tags every point with sessionID.
func NewSession(writer pointWriter, sessionID string) *Session {
	return &Session{writer: writer, sessionID: sessionID}
}

// Observe folds span into the session's running counters.
func (s *Session) Observe(span signal.Span) {
	s.counters.Observe(span)
}

// Counters returns a snapshot of the session's current counters.
func (s *Session) Counters() Counters {
	return s.counters
}

// Flush writes the current counters as one InfluxDB point, tagged by
// session id.
func (s *Session) Flush() {
	s.writer.WritePoint(measurement, map[string]string{"session_id": s.sessionID}, s.counters.fields())
}
