package dpt

import "errors"

// Domain errors for the dpt package.
var (
	// ErrInvalidID is returned when a DPT id string doesn't match
	// "DPT-n" or "DPST-n-m".
	ErrInvalidID = errors.New("dpt: invalid type id")

	// ErrDuplicateID is returned by Registry.Register when the id is
	// already registered.
	ErrDuplicateID = errors.New("dpt: duplicate type id")

	// ErrUnknownID is returned by Registry.Lookup for an unregistered id.
	ErrUnknownID = errors.New("dpt: unknown type id")

	// ErrUnknownRef is returned when a RefType field names a format that
	// is not present in the registry used to resolve it.
	ErrUnknownRef = errors.New("dpt: unresolved RefType")

	// ErrEncodingFailed is returned when encoding a value to KNX wire
	// format fails (out of range, wrong shape).
	ErrEncodingFailed = errors.New("dpt: encoding failed")

	// ErrDecodingFailed is returned when decoding KNX wire data to a
	// value fails (too short, sentinel/invalid value).
	ErrDecodingFailed = errors.New("dpt: decoding failed")
)
