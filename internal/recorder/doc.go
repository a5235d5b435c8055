// Package recorder persists decoded telegrams, short frames, and
// decode warnings to SQLite, keyed by decode session. It is the bus
// monitor's own address-upserting pattern (observed traffic ->
// database row) repurposed from "discover devices and group addresses"
// to "record every decoded event for later inspection".
//
// Store answers the read side of that same database for internal/api:
// build results and decode session listings.
package recorder
