package program

import (
	"fmt"
	"sort"

	"github.com/knxcore/knxcore/internal/knx/dpt"
	"github.com/knxcore/knxcore/internal/knx/telegram"
)

// ParameterID identifies a Parameter within a ProgramContext.
type ParameterID string

// SegmentID identifies a memory Segment within a ProgramContext.
type SegmentID string

// Datapoint names a datapoint type usable by a communication object,
// linking its program-local id to the dpt package's wire format.
type Datapoint struct {
	ID   dpt.ID
	Name string
}

// Parameter is a single configurable value stored in device memory.
type Parameter struct {
	ID ParameterID
	// Segment is the memory segment the parameter's value is written
	// into.
	Segment SegmentID
	// Offset is the byte offset within Segment.
	Offset int
	// BitOffset is the bit offset within the byte at Offset (0 = least
	// significant bit),
	// for sub-byte parameters. Zero for byte-aligned parameters.
	BitOffset int
	// Size is the parameter's width in bits.
	Size int
	// Default is the parameter's value absent any Assign override or
	// device-instance override.
	Default int64
}

// Mask returns the bitmask this parameter occupies within its byte(s),
// shifted into position at BitOffset.
func (p Parameter) Mask() uint64 {
	return ((uint64(1) << p.Size) - 1) << p.BitOffset
}

// Segment is a contiguous region of device memory (e.g. the RAM segment
// communication objects point into, or the EEPROM segment a parameter
// table lives in).
type Segment struct {
	ID          SegmentID
	BaseAddress uint32
	MaxEntries  int // table capacity, where Segment backs a table
}

// Priority mirrors telegram.Priority for the low two bits of a
// communication object's flags byte.
type Priority = telegram.Priority

// Flags are the per-communication-object bus behaviour bits (spec
// §4.3's flags byte: bit2=communication, bit3=read, bit4=write,
// bit6=transmit, bit7=update, low two bits=priority).
type Flags struct {
	Communication bool
	Read          bool
	Write         bool
	Transmit      bool
	Update        bool
	Priority      Priority
}

// Byte packs Flags into the wire layout used by the communication-object
// table.
func (f Flags) Byte() byte {
	var b byte
	if f.Communication {
		b |= 1 << 2
	}
	if f.Read {
		b |= 1 << 3
	}
	if f.Write {
		b |= 1 << 4
	}
	if f.Transmit {
		b |= 1 << 6
	}
	if f.Update {
		b |= 1 << 7
	}
	b |= byte(f.Priority) & 0b11
	return b
}

// CommunicationObject is a single numbered CO known to the program.
type CommunicationObject struct {
	Number      int
	Name        string
	Size        int // bits; one of {1..8,16,24,32,48,64,80,112,120}
	Flags       Flags
	DatapointID dpt.ID
}

// CommunicationObjectRef overlays a CommunicationObject's flags
// without copying it, mirroring the source language's `__getattr__`
// fallthrough: Flags() reads the overlay when set, else falls through
// to the base CO; Size(), Number() and Name() always read the base CO.
type CommunicationObjectRef struct {
	Base         *CommunicationObject
	FlagsOverlay *Flags
}

// Flags returns the overlay flags if set, else the base CO's flags.
func (r CommunicationObjectRef) Flags() Flags {
	if r.FlagsOverlay != nil {
		return *r.FlagsOverlay
	}
	return r.Base.Flags
}

// Size returns the base CO's size; ref overlays never change width.
func (r CommunicationObjectRef) Size() int { return r.Base.Size }

// Number returns the base CO's number.
func (r CommunicationObjectRef) Number() int { return r.Base.Number }

// Name returns the base CO's name.
func (r CommunicationObjectRef) Name() string { return r.Base.Name }

// ProgramContext owns every id→record map for one loaded application
// program. It is built once and read-only thereafter.
type ProgramContext struct {
	datapoints map[dpt.ID]Datapoint
	parameters map[ParameterID]Parameter
	segments   map[SegmentID]Segment
	comObjects map[int]CommunicationObject
}

// NewContext returns an empty ProgramContext.
func NewContext() *ProgramContext {
	return &ProgramContext{
		datapoints: make(map[dpt.ID]Datapoint),
		parameters: make(map[ParameterID]Parameter),
		segments:   make(map[SegmentID]Segment),
		comObjects: make(map[int]CommunicationObject),
	}
}

// RegisterDatapoint adds d to the context.
func (c *ProgramContext) RegisterDatapoint(d Datapoint) error {
	if _, exists := c.datapoints[d.ID]; exists {
		return fmt.Errorf("%w: datapoint %q", ErrDuplicateID, d.ID)
	}
	c.datapoints[d.ID] = d
	return nil
}

// Datapoint looks up a registered datapoint by id.
func (c *ProgramContext) Datapoint(id dpt.ID) (Datapoint, error) {
	d, ok := c.datapoints[id]
	if !ok {
		return Datapoint{}, fmt.Errorf("%w: datapoint %q", ErrUnknownID, id)
	}
	return d, nil
}

// RegisterParameter adds p to the context.
func (c *ProgramContext) RegisterParameter(p Parameter) error {
	if _, exists := c.parameters[p.ID]; exists {
		return fmt.Errorf("%w: parameter %q", ErrDuplicateID, p.ID)
	}
	c.parameters[p.ID] = p
	return nil
}

// Parameter looks up a registered parameter by id.
func (c *ProgramContext) Parameter(id ParameterID) (Parameter, error) {
	p, ok := c.parameters[id]
	if !ok {
		return Parameter{}, fmt.Errorf("%w: parameter %q", ErrUnknownID, id)
	}
	return p, nil
}

// Parameters returns every registered parameter, for callers that need
// to walk the full set (e.g. building a default Environment).
func (c *ProgramContext) Parameters() map[ParameterID]Parameter {
	return c.parameters
}

// RegisterSegment adds s to the context.
func (c *ProgramContext) RegisterSegment(s Segment) error {
	if _, exists := c.segments[s.ID]; exists {
		return fmt.Errorf("%w: segment %q", ErrDuplicateID, s.ID)
	}
	c.segments[s.ID] = s
	return nil
}

// Segment looks up a registered segment by id.
func (c *ProgramContext) Segment(id SegmentID) (Segment, error) {
	s, ok := c.segments[id]
	if !ok {
		return Segment{}, fmt.Errorf("%w: segment %q", ErrUnknownID, id)
	}
	return s, nil
}

// RegisterCommunicationObject adds co to the context.
func (c *ProgramContext) RegisterCommunicationObject(co CommunicationObject) error {
	if _, exists := c.comObjects[co.Number]; exists {
		return fmt.Errorf("%w: communication object %d", ErrDuplicateID, co.Number)
	}
	c.comObjects[co.Number] = co
	return nil
}

// CommunicationObject looks up a registered CO by number.
func (c *ProgramContext) CommunicationObject(number int) (CommunicationObject, error) {
	co, ok := c.comObjects[number]
	if !ok {
		return CommunicationObject{}, fmt.Errorf("%w: communication object %d", ErrUnknownID, number)
	}
	return co, nil
}

// CommunicationObjectNumbers returns every registered CO number in
// ascending order, the order the communication-object table is built in.
func (c *ProgramContext) CommunicationObjectNumbers() []int {
	numbers := make([]int, 0, len(c.comObjects))
	for n := range c.comObjects {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}
