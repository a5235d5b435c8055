package telegram

import (
	"fmt"

	"github.com/knxcore/knxcore/internal/knx/address"
)

// Priority is the 2-bit access-priority field carried by byte0 bits2-3.
type Priority uint8

const (
	PriorityLow    Priority = 0b11
	PriorityHigh   Priority = 0b01
	PriorityAlert  Priority = 0b10
	PrioritySystem Priority = 0b00
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	case PriorityAlert:
		return "alert"
	case PrioritySystem:
		return "system"
	default:
		return "unknown"
	}
}

// FrameClass is the root discriminant read from byte0 bits6-7.
type FrameClass uint8

const (
	ClassData         FrameClass = 0b10
	ClassExtendedData FrameClass = 0b00
	ClassPoll         FrameClass = 0b11
)

func (c FrameClass) String() string {
	switch c {
	case ClassData:
		return "data"
	case ClassExtendedData:
		return "extended-data"
	case ClassPoll:
		return "poll"
	default:
		return "unknown"
	}
}

// TransportKind is the depth-2 discriminant under a Data frame, read
// from byte6 bits0-1.
type TransportKind uint8

const (
	TransportUnnumberedData    TransportKind = 0b00
	TransportNumberedData      TransportKind = 0b01
	TransportUnnumberedControl TransportKind = 0b10
	TransportNumberedControl   TransportKind = 0b11
)

func (t TransportKind) String() string {
	switch t {
	case TransportUnnumberedData:
		return "unnumbered-data"
	case TransportNumberedData:
		return "numbered-data"
	case TransportUnnumberedControl:
		return "unnumbered-control"
	case TransportNumberedControl:
		return "numbered-control"
	default:
		return "unknown"
	}
}

// ControlCode is byte6 bits6-7, meaningful only for Unnumbered/Numbered
// control frames. Its two values mean Connect/Disconnect for an
// unnumbered control frame and Ack/Nack for a numbered one.
type ControlCode uint8

const (
	ControlConnect    ControlCode = 0b00
	ControlDisconnect ControlCode = 0b01
	ControlAck        ControlCode = 0b10
	ControlNack       ControlCode = 0b11
)

// GroupService is byte7 bits6-7 for Unnumbered/Numbered data frames
// carrying group-value traffic.
type GroupService uint8

const (
	ServiceGetValue            GroupService = 0b00
	ServiceGetValueResponse    GroupService = 0b01
	ServiceSendValue           GroupService = 0b10
	ServicePhysicalAddressSet GroupService = 0b11
)

func (s GroupService) String() string {
	switch s {
	case ServiceGetValue:
		return "get-value"
	case ServiceGetValueResponse:
		return "get-value-response"
	case ServiceSendValue:
		return "send-value"
	case ServicePhysicalAddressSet:
		return "physical-address-set"
	default:
		return "unknown"
	}
}

// MemorySubService selects among Read/Response/Write for a NumberedData
// memory-service frame, carried in byte7 bits4-5.
type MemorySubService uint8

const (
	MemoryRead     MemorySubService = 0b00
	MemoryResponse MemorySubService = 0b01
	MemoryWrite    MemorySubService = 0b10
)

func (s MemorySubService) String() string {
	switch s {
	case MemoryRead:
		return "memory-read"
	case MemoryResponse:
		return "memory-response"
	case MemoryWrite:
		return "memory-write"
	default:
		return "unknown"
	}
}

// managementServiceNames gives diagnostic labels for the subset of
// extended-APCI management services this core names explicitly; any
// other code is still decoded, just rendered as its raw hex value.
var managementServiceNames = map[byte]string{
	0xF0: "authorize-request",
	0xF1: "authorize-response",
	0xF4: "key-write",
	0xF5: "key-response",
	0xEC: "property-value-read",
	0xED: "property-value-response",
	0xEE: "property-value-write",
	0xE8: "memory-bit-write",
	0xE0: "domain-address-write",
	0xE1: "domain-address-read",
	0xE2: "domain-address-response",
	0xE3: "system-id-read",
	0xE4: "system-id-response",
}

// ManagementFrame carries an opaque extended-APCI management service
// code, for codes this core does not decompose further.
type ManagementFrame struct {
	Code byte
}

// Name returns a diagnostic label for the management service code, or
// its raw hex value if this core does not name it.
func (m ManagementFrame) Name() string {
	if name, ok := managementServiceNames[m.Code]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", m.Code)
}

// ControlFrame is the payload of an Unnumbered/NumberedControl frame:
// no data payload, just the control code.
type ControlFrame struct {
	Code ControlCode
}

// GroupFrame is the payload of a group-value service (Unnumbered or
// Numbered data, service code in {GetValue,GetValueResponse,SendValue,
// PhysicalAddressSet}).
type GroupFrame struct {
	Service GroupService

	// Length is the raw length field: a bit-width in [1,6] selecting
	// how many low bits of the service byte hold Value directly, or (>=7)
	// a bit width whose (Length+7)/8 bytes of Value follow.
	Length uint8

	// Value holds the payload: for Length<7 this is the single short
	// value; for Length>=7 it is the multi-byte big-endian value.
	Value []byte
}

// MemoryFrame is the payload of a NumberedData memory service.
type MemoryFrame struct {
	Service MemorySubService
	Address uint16
	Data    []byte
}

// Header carries the fields common to every Data-class frame.
type Header struct {
	Priority    Priority
	Repeat      bool // true = no repeat (per wire convention: 1 = no)
	Class       FrameClass
	Source      address.Address
	Destination address.Address
	Route       uint8 // 3-bit routing counter, default 0b110
	Length      uint8 // raw 4-bit length field
	Transport   TransportKind
	PNO         uint8 // 4-bit numbered-packet sequence, numbered frames only
}

// Frame is a decoded or constructed telegram. Exactly one of Control,
// Group, Memory, Management is non-nil for a Data-class frame whose
// Transport selects that variant; Raw carries the undecomposed payload
// for ExtendedData/Poll frames and is nil otherwise.
type Frame struct {
	Header

	Control    *ControlFrame
	Group      *GroupFrame
	Memory     *MemoryFrame
	Management *ManagementFrame
	Raw        []byte
}

// IsGroupWrite reports whether this frame is a group-value write
// (SendValue) addressed to a group destination — the common case for
// bus monitor rendering and the event publisher.
func (f Frame) IsGroupWrite() bool {
	return f.Group != nil && f.Group.Service == ServiceSendValue &&
		f.Destination.Kind() == address.Group
}
