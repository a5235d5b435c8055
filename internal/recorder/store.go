package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/knxcore/knxcore/internal/knx/image"
)

// ErrBuildNotFound is returned by Store.GetBuild when no build result has
// been recorded for a program id.
var ErrBuildNotFound = errors.New("recorder: build result not found")

// BuildRecord is a persisted image.Summary, as surfaced through
// GET /v1/build/{programID}.
type BuildRecord struct {
	ProgramID         string
	BaseAddress       uint32
	ImageSize         int
	GroupAddressCount int
	AssociationCount  int
	ComObjectCount    int
	ContentHash       string
	BuiltAt           time.Time
}

// SessionRecord is a row of decode_sessions, as surfaced through
// GET /v1/decode/sessions.
type SessionRecord struct {
	ID         string
	StartedAt  time.Time
	Profile    string
	SampleRate int64
}

// Store answers the read-mostly status queries the API makes against
// build and session history. Unlike Recorder it has no telegram-rate
// hot path, so it runs ad hoc statements against the shared *sql.DB
// rather than preparing them in a constructor.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store backed by db. db is expected to already have
// the build_results/decode_sessions migrations applied.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordBuild upserts the build result for programID, so a rebuild
// overwrites the previous summary rather than accumulating history.
func (s *Store) RecordBuild(ctx context.Context, programID string, sum image.Summary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO build_results (program_id, base_address, image_size, group_address_count, association_count, com_object_count, content_hash, built_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(program_id) DO UPDATE SET
			base_address = excluded.base_address,
			image_size = excluded.image_size,
			group_address_count = excluded.group_address_count,
			association_count = excluded.association_count,
			com_object_count = excluded.com_object_count,
			content_hash = excluded.content_hash,
			built_at = excluded.built_at
	`, programID, sum.BaseAddress, sum.ImageSize, sum.GroupAddressCount, sum.AssociationCount, sum.ComObjectCount, sum.ContentHash, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("recorder: recording build result: %w", err)
	}
	return nil
}

// GetBuild returns the last recorded build result for programID, or
// ErrBuildNotFound if none exists.
func (s *Store) GetBuild(ctx context.Context, programID string) (BuildRecord, error) {
	var (
		rec         BuildRecord
		baseAddress int64
		builtAt     int64
	)

	row := s.db.QueryRowContext(ctx, `
		SELECT program_id, base_address, image_size, group_address_count, association_count, com_object_count, content_hash, built_at
		FROM build_results WHERE program_id = ?
	`, programID)

	if err := row.Scan(&rec.ProgramID, &baseAddress, &rec.ImageSize, &rec.GroupAddressCount, &rec.AssociationCount, &rec.ComObjectCount, &rec.ContentHash, &builtAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BuildRecord{}, ErrBuildNotFound
		}
		return BuildRecord{}, fmt.Errorf("recorder: querying build result: %w", err)
	}

	rec.BaseAddress = uint32(baseAddress)
	rec.BuiltAt = time.Unix(builtAt, 0).UTC()
	return rec, nil
}

// ListSessions returns the most recent decode sessions, newest first,
// capped at limit rows.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, profile, sample_rate FROM decode_sessions
		ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recorder: querying decode sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var startedAt int64
		if err := rows.Scan(&rec.ID, &startedAt, &rec.Profile, &rec.SampleRate); err != nil {
			return nil, fmt.Errorf("recorder: scanning decode session: %w", err)
		}
		rec.StartedAt = time.Unix(startedAt, 0).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recorder: iterating decode sessions: %w", err)
	}
	return out, nil
}
