package image

import "errors"

// Domain errors for the image package. LayoutError (spec §7) aborts the
// build; every sentinel below is wrapped alongside ErrLayout so callers
// can match on either the general category or the specific cause.
var (
	// ErrLayout is the general layout-error category: image-builder
	// failures abort the current build, unlike the codec/decoder's
	// recoverable error kinds.
	ErrLayout = errors.New("image: layout error")

	// ErrTableOverflow is returned when a table would need more entries
	// than its descriptor's MaxEntries allows, and when a communication
	// object's size has no type code in the communication-object table.
	ErrTableOverflow = errors.New("image: table overflow")

	// ErrMisalignedSegment is returned when a table's base address does
	// not satisfy its entries' natural alignment.
	ErrMisalignedSegment = errors.New("image: misaligned segment")

	// ErrUnknownMaskVersion is returned when a program names a mask
	// version this builder has no address-size mapping for.
	ErrUnknownMaskVersion = errors.New("image: unknown mask version")
)
