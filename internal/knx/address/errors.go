package address

import "errors"

// Domain errors for the address package.
var (
	// ErrInvalidFormat is returned when an address string has the wrong
	// number of parts or an unrecognised separator.
	ErrInvalidFormat = errors.New("address: invalid format")

	// ErrOutOfRange is returned when a parsed level value exceeds its
	// field width for the address kind.
	ErrOutOfRange = errors.New("address: level out of range")

	// ErrWrongKind is returned when a kind-specific accessor is called
	// on an address of the other kind.
	ErrWrongKind = errors.New("address: wrong kind for accessor")
)
