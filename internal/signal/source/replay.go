package source

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/knxcore/knxcore/internal/knx/signal"
	"github.com/knxcore/knxcore/internal/retry"
)

var _ signal.SampleSource = (*ReplaySource)(nil)

// Sample is one recorded transition: a sample index and the bus level
// immediately after it.
type Sample struct {
	Index int64
	Level bool
}

// ReplaySource replays a fixed, in-memory list of edges. It satisfies
// signal.SampleSource directly, so a fixed edge list drives the decoder
// identically to a live GPIO capture.
type ReplaySource struct {
	samples []Sample
	i       int
}

// NewReplaySource returns a ReplaySource over samples, which must
// already be in ascending Index order per the SampleSource contract.
func NewReplaySource(samples []Sample) *ReplaySource {
	return &ReplaySource{samples: samples}
}

func (r *ReplaySource) Next() (int64, bool, bool) {
	if r.i >= len(r.samples) {
		return 0, false, false
	}
	s := r.samples[r.i]
	r.i++
	return s.Index, s.Level, true
}

var _ signal.SampleSource = (*FileReplaySource)(nil)

// recordSize is the on-disk width of one recorded edge: an 8-byte
// big-endian sample index followed by a 1-byte level (0 or 1).
const recordSize = 9

// FileReplaySource streams a binary capture file one edge at a time.
// A short read (the file is still being written to by a live capture)
// is retried with internal/retry rather than treated as end of stream,
// so a growing capture file can be tailed.
type FileReplaySource struct {
	f   *os.File
	r   *bufio.Reader
	cfg retry.Config
	err error
}

// OpenFileReplaySource opens path for reading and returns a source
// positioned at its start.
func OpenFileReplaySource(path string) (*FileReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("signal/source: open replay file: %w", err)
	}
	return &FileReplaySource{f: f, r: bufio.NewReader(f), cfg: retry.DefaultConfig}, nil
}

func (f *FileReplaySource) Next() (int64, bool, bool) {
	var rec [recordSize]byte
	n := 0
	err := retry.Do(f.cfg, func() error {
		m, err := io.ReadFull(f.r, rec[n:])
		n += m
		return err
	})
	if err == io.EOF && n > 0 {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		f.err = err
		return 0, false, false
	}
	sample := int64(binary.BigEndian.Uint64(rec[:8]))
	level := rec[8] != 0
	return sample, level, true
}

// Err returns the reason Next last returned ok=false: nil when the file
// ended on a record boundary and no more data arrived within the retry
// budget, or the last read error (io.ErrUnexpectedEOF for a trailing
// partial record) once the retry budget is exhausted.
func (f *FileReplaySource) Err() error {
	if f.err == io.EOF {
		return nil
	}
	return f.err
}

func (f *FileReplaySource) Close() error {
	return f.f.Close()
}

// WriteReplayFile serialises samples to path in FileReplaySource's
// on-disk format, for recording a capture that can later be replayed.
func WriteReplayFile(path string, samples []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("signal/source: create replay file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var rec [recordSize]byte
	for _, s := range samples {
		binary.BigEndian.PutUint64(rec[:8], uint64(s.Index))
		if s.Level {
			rec[8] = 1
		} else {
			rec[8] = 0
		}
		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("signal/source: write replay file: %w", err)
		}
	}
	return w.Flush()
}
