// Package source provides concrete, swappable implementations of
// signal.SampleSource: a live GPIO line reader for bus-probe hardware,
// and a replay source (in-memory or file-backed) for tests and for
// re-feeding a previously captured waveform.
package source
