package image

import (
	"github.com/knxcore/knxcore/internal/knx/address"
	"github.com/knxcore/knxcore/internal/knx/program"
)

// TableDescriptor locates a table within a memory segment and bounds
// how many entries it may hold.
type TableDescriptor struct {
	Segment    program.SegmentID
	Offset     int
	MaxEntries int
}

// ApplicationProgram is the device-independent half of a build: the
// memory segments and table layouts a mask version expects, and the
// dynamic parameter tree every device instance of this program shares.
type ApplicationProgram struct {
	Context *program.ProgramContext
	Tree    []program.Node

	AddressTable     TableDescriptor
	AssociationTable TableDescriptor
	ComObjectTable   TableDescriptor

	// RAMSegment is where communication-object RAM pointers are
	// allocated from; the image builder never writes data there, only
	// computes pointers into it.
	RAMSegment program.SegmentID

	// MaskVersion selects the communication-object table's RAM-pointer
	// byte width: {MV-0010..MV-0025} = 1 byte, {MV-0700..MV-0705} = 2.
	MaskVersion string

	// LeadBytes is the fixed prefix length before the image's logical
	// offset 0, used by the BIM112 post-patch quirk.
	LeadBytes int
}

// Connector is whether a communication-object binding sends to or
// listens on a group address.
type Connector uint8

const (
	Send Connector = iota
	Listen
)

// GroupBinding attaches a communication object to a group address via a
// connector kind. Only Send connectors populate the association table;
// a device may still be said to "use" a group address it only listens
// on, so both kinds count toward the address table.
type GroupBinding struct {
	Address   address.Address
	Connector Connector
}

// COBinding is one communication-object instance on a device: its
// number (resolved against the program's CommunicationObject registry)
// and the group addresses it is bound to.
type COBinding struct {
	Number   int
	Bindings []GroupBinding
}

// DeviceInstance is the device-specific half of a build.
type DeviceInstance struct {
	IndividualAddress address.Address
	ParameterOverrides map[program.ParameterID]int64
	Objects            []COBinding
}
