package telegram

import "errors"

// Domain errors for the telegram package, named per the error-kind
// scheme used throughout this module's protocol packages.
var (
	// ErrUnknownSubtype is returned when no entry in the discrimination
	// tree matches the bits read at the current depth.
	ErrUnknownSubtype = errors.New("telegram: unknown subtype")

	// ErrChecksum is returned when the trailing checksum byte does not
	// XOR the frame to zero. Decode still returns the parsed Frame
	// alongside this error for analyzer use-cases.
	ErrChecksum = errors.New("telegram: checksum mismatch")

	// ErrTruncated is returned when fewer bytes are present than the
	// frame's declared fields require.
	ErrTruncated = errors.New("telegram: truncated frame")

	// ErrFieldOutOfRange is returned when a field's raw bits do not
	// correspond to any entry in an enumerated mapping.
	ErrFieldOutOfRange = errors.New("telegram: field out of range")

	// ErrOverlongPayload is returned when Encode is asked to carry a
	// payload too large for its length encoding.
	ErrOverlongPayload = errors.New("telegram: overlong payload")
)
