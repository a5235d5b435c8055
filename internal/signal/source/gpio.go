package source

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/knxcore/knxcore/internal/knx/signal"
	"github.com/knxcore/knxcore/internal/retry"
)

var _ signal.SampleSource = (*GPIOSource)(nil)

// gpioLine is the subset of *gpiocdev.Line GPIOSource depends on,
// narrowed to a test seam so unit tests can exercise the edge-to-sample
// conversion without GPIO hardware or the gpio-sim kernel module.
type gpioLine interface {
	Close() error
}

// requestLine is swapped out in tests; in production it is
// gpiocdev.RequestLine.
var requestLine = func(chip string, offset int, opts ...gpiocdev.ReqOption) (gpioLine, error) {
	return gpiocdev.RequestLine(chip, offset, opts...)
}

// GPIOSource samples a single GPIO line via go-gpiocdev's edge-event
// watcher, converting each edge's timestamp into the (sample_index,
// bus_level) pairs signal.SampleSource expects at the configured
// sample rate.
type GPIOSource struct {
	chip       string
	offset     int
	sampleRate int64

	line    gpioLine
	events  chan gpiocdev.LineEvent
	start   time.Duration
	started bool
	closed  bool
}

// NewGPIOSource describes (but does not yet open) a GPIO line reader on
// the named chip/offset, reporting sample indices at sampleRate Hz.
func NewGPIOSource(chip string, offset int, sampleRate int64) *GPIOSource {
	return &GPIOSource{chip: chip, offset: offset, sampleRate: sampleRate, events: make(chan gpiocdev.LineEvent, 256)}
}

// Open requests the GPIO line, retrying transient failures (the line
// busy behind another process, a momentarily unavailable chip) with
// internal/retry's default backoff.
func (g *GPIOSource) Open() error {
	return retry.Do(retry.DefaultConfig, func() error {
		line, err := requestLine(g.chip, g.offset,
			gpiocdev.WithBothEdges,
			gpiocdev.WithEventHandler(g.onEvent))
		if err != nil {
			return fmt.Errorf("signal/source: request line %s:%d: %w", g.chip, g.offset, err)
		}
		g.line = line
		return nil
	})
}

func (g *GPIOSource) onEvent(evt gpiocdev.LineEvent) {
	select {
	case g.events <- evt:
	default:
		// events channel full: the decoder isn't keeping up. The edge
		// is dropped here rather than blocking the gpiocdev watcher
		// goroutine.
	}
}

// Next implements signal.SampleSource, converting the edge timestamp
// (relative to the line's first observed edge) into a sample index.
func (g *GPIOSource) Next() (int64, bool, bool) {
	evt, ok := <-g.events
	if !ok {
		return 0, false, false
	}
	if !g.started {
		g.start = evt.Timestamp
		g.started = true
	}
	elapsed := evt.Timestamp - g.start
	sample := elapsed.Nanoseconds() * g.sampleRate / int64(time.Second)
	level := evt.Type == gpiocdev.FallingEdge
	return sample, level, true
}

// Close releases the GPIO line and stops delivering further events.
func (g *GPIOSource) Close() error {
	if g.closed {
		return ErrClosed
	}
	g.closed = true
	close(g.events)
	if g.line != nil {
		return g.line.Close()
	}
	return nil
}
