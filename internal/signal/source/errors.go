package source

import "errors"

// ErrClosed is returned by GPIOSource.Close when the source has already
// been closed. Next on a closed source reports ok=false.
var ErrClosed = errors.New("source: closed")
