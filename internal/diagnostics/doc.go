// Package diagnostics accumulates per-decode-session counters (bytes
// seen, telegrams assembled, parity/checksum errors, timing warnings)
// and writes them to InfluxDB, repurposing the teacher's InfluxDB
// client/write wrapper from per-device telemetry to per-session decode
// health.
package diagnostics
