package program

import "errors"

// Domain errors for the program package.
var (
	// ErrDuplicateID is returned when registering a record under an id
	// already present in the ProgramContext.
	ErrDuplicateID = errors.New("program: duplicate id")

	// ErrUnknownID is returned when looking up an id not present in the
	// ProgramContext.
	ErrUnknownID = errors.New("program: unknown id")

	// ErrUnknownRef names the case of a dynamic-tree node or a
	// CommunicationObjectRef that refers to a parameter or CO id not in
	// the owning ProgramContext. No function in this package returns it;
	// the ProgramContext lookups report a missing id with ErrUnknownID.
	ErrUnknownRef = errors.New("program: unresolved reference")
)
