package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/knxcore/knxcore/internal/knx/signal"
	"github.com/knxcore/knxcore/internal/knx/telegram"
)

// shortFrameKinds are the signal.Kind values recorded as a short frame
// row rather than a telegram or a warning.
var shortFrameKinds = map[signal.Kind]bool{
	signal.KindACK:      true,
	signal.KindNACK:     true,
	signal.KindBusy:     true,
	signal.KindBusyNack: true,
}

// warningKinds are the signal.Kind values recorded as a decode_warnings
// row.
var warningKinds = map[signal.Kind]bool{
	signal.KindParityError:   true,
	signal.KindChecksumError: true,
	signal.KindTimingError:   true,
}

// Recorder inserts decode sessions and the events within them
// into SQLite, using prepared statements created once and reused for
// the life of the Recorder, matching the bus monitor's own pattern.
type Recorder struct {
	db *sql.DB

	sessionStmt    *sql.Stmt
	telegramStmt   *sql.Stmt
	shortFrameStmt *sql.Stmt
	warningStmt    *sql.Stmt
}

// New prepares a Recorder against db, which must already have the
// bus_capture migration applied.
func New(db *sql.DB) (*Recorder, error) {
	r := &Recorder{db: db}

	var err error
	r.sessionStmt, err = db.Prepare(`
		INSERT INTO decode_sessions (id, started_at, profile, sample_rate)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("recorder: prepare session insert: %w", err)
	}

	r.telegramStmt, err = db.Prepare(`
		INSERT INTO telegrams (session_id, observed_at, source, destination, apci, priority, data, valid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("recorder: prepare telegram insert: %w", err)
	}

	r.shortFrameStmt, err = db.Prepare(`
		INSERT INTO short_frames (session_id, observed_at, kind)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("recorder: prepare short frame insert: %w", err)
	}

	r.warningStmt, err = db.Prepare(`
		INSERT INTO decode_warnings (session_id, observed_at, kind, detail)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("recorder: prepare warning insert: %w", err)
	}

	return r, nil
}

// StartSession records a new decode session's parameters.
func (r *Recorder) StartSession(ctx context.Context, sessionID, profile string, sampleRate int64) error {
	_, err := r.sessionStmt.ExecContext(ctx, sessionID, time.Now().Unix(), profile, sampleRate)
	if err != nil {
		return fmt.Errorf("recorder: start session: %w", err)
	}
	return nil
}

// RecordSpan inserts span into the table matching its kind. Spans that
// aren't a telegram label, short frame, or warning (plain databyte, a
// clean checksum) are silently ignored, mirroring eventpub's own
// "not every span is an event" filtering.
func (r *Recorder) RecordSpan(ctx context.Context, sessionID string, span signal.Span, observedAt time.Time) error {
	switch {
	case span.Kind == signal.KindTelegramLabel:
		return r.recordTelegram(ctx, sessionID, span, observedAt)
	case shortFrameKinds[span.Kind]:
		_, err := r.shortFrameStmt.ExecContext(ctx, sessionID, observedAt.Unix(), span.Kind.String())
		if err != nil {
			return fmt.Errorf("recorder: record short frame: %w", err)
		}
		return nil
	case warningKinds[span.Kind]:
		_, err := r.warningStmt.ExecContext(ctx, sessionID, observedAt.Unix(), span.Kind.String(), span.Text)
		if err != nil {
			return fmt.Errorf("recorder: record warning: %w", err)
		}
		return nil
	default:
		return nil
	}
}

func (r *Recorder) recordTelegram(ctx context.Context, sessionID string, span signal.Span, observedAt time.Time) error {
	if span.Frame == nil {
		return ErrMissingFrame
	}
	f := span.Frame

	valid := 0
	if span.Valid {
		valid = 1
	}

	_, err := r.telegramStmt.ExecContext(ctx,
		sessionID, observedAt.Unix(),
		f.Source.String(), f.Destination.String(),
		apciName(f), f.Priority.String(),
		frameData(f), valid,
	)
	if err != nil {
		return fmt.Errorf("recorder: record telegram: %w", err)
	}
	return nil
}

// apciName names the service carried by f, matching the label the
// decoder itself renders for the same frame.
func apciName(f *telegram.Frame) string {
	switch {
	case f.Group != nil:
		return f.Group.Service.String()
	case f.Control != nil:
		return fmt.Sprintf("control-%d", f.Control.Code)
	case f.Memory != nil:
		return f.Memory.Service.String()
	case f.Management != nil:
		return f.Management.Name()
	default:
		return "raw"
	}
}

// frameData returns the payload bytes worth persisting for f.
func frameData(f *telegram.Frame) []byte {
	switch {
	case f.Group != nil:
		return f.Group.Value
	case f.Memory != nil:
		return f.Memory.Data
	default:
		return f.Raw
	}
}

// Close releases the prepared statements. It does not close db, since
// the caller owns its lifecycle.
func (r *Recorder) Close() error {
	for _, stmt := range []*sql.Stmt{r.sessionStmt, r.telegramStmt, r.shortFrameStmt, r.warningStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
