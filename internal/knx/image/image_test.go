package image

import (
	"errors"
	"testing"

	"github.com/knxcore/knxcore/internal/knx/address"
	"github.com/knxcore/knxcore/internal/knx/dpt"
	"github.com/knxcore/knxcore/internal/knx/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBaseContext(t *testing.T) *program.ProgramContext {
	t.Helper()
	ctx := program.NewContext()
	require.NoError(t, ctx.RegisterDatapoint(program.Datapoint{ID: dpt.Switch, Name: "switch"}))
	require.NoError(t, ctx.RegisterSegment(program.Segment{ID: "addr", BaseAddress: 0x4000, MaxEntries: 16}))
	require.NoError(t, ctx.RegisterSegment(program.Segment{ID: "assoc", BaseAddress: 0x4100, MaxEntries: 16}))
	require.NoError(t, ctx.RegisterSegment(program.Segment{ID: "comobj", BaseAddress: 0x4200, MaxEntries: 16}))
	require.NoError(t, ctx.RegisterSegment(program.Segment{ID: "ram", BaseAddress: 0x0100, MaxEntries: 1024}))
	require.NoError(t, ctx.RegisterSegment(program.Segment{ID: "params", BaseAddress: 0x0800, MaxEntries: 256}))
	return ctx
}

func baseProgram(ctx *program.ProgramContext) ApplicationProgram {
	return ApplicationProgram{
		Context:          ctx,
		AddressTable:     TableDescriptor{Segment: "addr", MaxEntries: 16},
		AssociationTable: TableDescriptor{Segment: "assoc", MaxEntries: 16},
		ComObjectTable:   TableDescriptor{Segment: "comobj", MaxEntries: 16},
		RAMSegment:       "ram",
		MaskVersion:      "MV-0701",
		LeadBytes:        0,
	}
}

func mustIndividual(t *testing.T, s string) address.Address {
	t.Helper()
	a, err := address.ParseIndividual(s)
	require.NoError(t, err)
	return a
}

func mustGroup(t *testing.T, s string) address.Address {
	t.Helper()
	a, err := address.ParseGroup(s)
	require.NoError(t, err)
	return a
}

// TestBuild_AddressTableScenario matches spec §8 scenario 3: an
// individual address of 1.1.1 bound to group addresses 0/0/1 and
// 0/0/2 via a single communication object.
func TestBuild_AddressTableScenario(t *testing.T) {
	ctx := newBaseContext(t)
	require.NoError(t, ctx.RegisterCommunicationObject(program.CommunicationObject{
		Number: 0, Name: "switch", Size: 1, DatapointID: dpt.Switch,
		Flags: program.Flags{Communication: true, Read: true, Transmit: true, Priority: program.Priority(0b11)},
	}))

	prog := baseProgram(ctx)
	device := DeviceInstance{
		IndividualAddress: mustIndividual(t, "1.1.1"),
		Objects: []COBinding{
			{
				Number: 0,
				Bindings: []GroupBinding{
					{Address: mustGroup(t, "0/0/1"), Connector: Send},
					{Address: mustGroup(t, "0/0/2"), Connector: Send},
				},
			},
		},
	}

	bytes, base, err := Build(prog, device)
	require.NoError(t, err)

	off := uint32(0x4000) - base
	addrTable := bytes[off : off+7]
	assert.Equal(t, byte(0x03), addrTable[0])
	assert.Equal(t, []byte{0x11, 0x01}, addrTable[1:3])
	assert.Equal(t, []byte{0x00, 0x01}, addrTable[3:5])
	assert.Equal(t, []byte{0x00, 0x02}, addrTable[5:7])
}

func TestBuild_AssociationTable_ReadFirstOrdering(t *testing.T) {
	ctx := newBaseContext(t)
	require.NoError(t, ctx.RegisterCommunicationObject(program.CommunicationObject{
		Number: 0, Size: 1, Flags: program.Flags{Transmit: true},
	}))
	require.NoError(t, ctx.RegisterCommunicationObject(program.CommunicationObject{
		Number: 1, Size: 1, Flags: program.Flags{Read: true, Transmit: true},
	}))

	prog := baseProgram(ctx)
	ga := mustGroup(t, "1/1/1")
	device := DeviceInstance{
		IndividualAddress: mustIndividual(t, "1.1.1"),
		Objects: []COBinding{
			{Number: 0, Bindings: []GroupBinding{{Address: ga, Connector: Send}}},
			{Number: 1, Bindings: []GroupBinding{{Address: ga, Connector: Send}}},
		},
	}

	bytes, base, err := Build(prog, device)
	require.NoError(t, err)

	assocBase := uint32(0x4100)
	off := assocBase - base
	assert.Equal(t, byte(2), bytes[off], "two association entries for the one group address")
	// CO 1 is read-flagged so it must precede CO 0 despite insertion order.
	assert.Equal(t, byte(1), bytes[off+2], "co number at first association slot")
}

func TestBuild_AssociationTable_ListenOnlyExcluded(t *testing.T) {
	ctx := newBaseContext(t)
	require.NoError(t, ctx.RegisterCommunicationObject(program.CommunicationObject{
		Number: 0, Size: 1, Flags: program.Flags{Transmit: true},
	}))

	prog := baseProgram(ctx)
	device := DeviceInstance{
		IndividualAddress: mustIndividual(t, "1.1.1"),
		Objects: []COBinding{
			{Number: 0, Bindings: []GroupBinding{{Address: mustGroup(t, "1/1/1"), Connector: Listen}}},
		},
	}

	bytes, base, err := Build(prog, device)
	require.NoError(t, err)
	assocBase := uint32(0x4100)
	assert.Equal(t, byte(0), bytes[assocBase-base], "listen-only bindings contribute no association entries")
}

func TestBuild_ComObjectTable_NaturalAlignment(t *testing.T) {
	ctx := newBaseContext(t)
	require.NoError(t, ctx.RegisterCommunicationObject(program.CommunicationObject{Number: 0, Size: 1}))
	require.NoError(t, ctx.RegisterCommunicationObject(program.CommunicationObject{Number: 1, Size: 16}))

	prog := baseProgram(ctx)
	device := DeviceInstance{IndividualAddress: mustIndividual(t, "1.1.1")}

	bytes, base, err := Build(prog, device)
	require.NoError(t, err)

	comTableBase := uint32(0x4200) - base
	// record layout: flags(1) | type code(1) | RAM pointer (2, MV-0701)
	ptr0 := uint16(bytes[comTableBase+2])<<8 | uint16(bytes[comTableBase+3])
	ptr1 := uint16(bytes[comTableBase+4+2])<<8 | uint16(bytes[comTableBase+4+3])

	assert.Equal(t, uint16(0x0100), ptr0, "1-bit CO starts at RAM base")
	assert.Equal(t, uint16(0x0102), ptr1, "16-bit CO realigned to its own natural boundary")
}

func TestBuild_TableOverflow(t *testing.T) {
	ctx := newBaseContext(t)
	prog := baseProgram(ctx)
	prog.AddressTable.MaxEntries = 1

	device := DeviceInstance{
		IndividualAddress: mustIndividual(t, "1.1.1"),
		Objects: []COBinding{
			{Bindings: []GroupBinding{
				{Address: mustGroup(t, "1/1/1"), Connector: Listen},
				{Address: mustGroup(t, "1/1/2"), Connector: Listen},
			}},
		},
	}

	_, _, err := Build(prog, device)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLayout))
	assert.True(t, errors.Is(err, ErrTableOverflow))
}

func TestBuild_UnknownMaskVersion(t *testing.T) {
	ctx := newBaseContext(t)
	prog := baseProgram(ctx)
	prog.MaskVersion = "MV-9999"
	device := DeviceInstance{IndividualAddress: mustIndividual(t, "1.1.1")}

	_, _, err := Build(prog, device)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMaskVersion))
}

func TestBuild_PostPatchOffsets(t *testing.T) {
	ctx := newBaseContext(t)
	prog := baseProgram(ctx)
	prog.LeadBytes = 0x100
	device := DeviceInstance{IndividualAddress: mustIndividual(t, "1.1.1")}

	bytes, base, err := Build(prog, device)
	require.NoError(t, err)

	read16LE := func(addr uint32) uint16 {
		off := addr - base
		return uint16(bytes[off]) | uint16(bytes[off+1])<<8
	}
	assert.Equal(t, uint16(0x4000), read16LE(0x100+0x278))
	assert.Equal(t, uint16(0x4100), read16LE(0x100+0x27A))
	assert.Equal(t, uint16(0x4200), read16LE(0x100+0x27C))
}

func TestBuild_ParameterDefaultPreservedInNonTakenBranch(t *testing.T) {
	ctx := newBaseContext(t)
	require.NoError(t, ctx.RegisterParameter(program.Parameter{
		ID: "mode", Segment: "params", Offset: 0, Size: 8, Default: 0,
	}))
	require.NoError(t, ctx.RegisterParameter(program.Parameter{
		ID: "timeout", Segment: "params", Offset: 1, Size: 8, Default: 30,
	}))

	tree := []program.Node{
		{ParameterBlock: &program.ParameterBlockNode{Children: []program.Node{
			{ParameterRefRef: &program.ParameterRefRefNode{Ref: "mode"}},
			{ParameterRefRef: &program.ParameterRefRefNode{Ref: "timeout"}},
			{Choose: &program.ChooseNode{
				Ref: "mode",
				Branches: []program.WhenBranch{
					{Test: 1, Body: []program.Node{
						{Assign: &program.AssignNode{Target: "timeout", Literal: 99}},
					}},
				},
			}},
		}}},
	}

	prog := baseProgram(ctx)
	prog.Tree = tree
	device := DeviceInstance{IndividualAddress: mustIndividual(t, "1.1.1")}

	bytes, base, err := Build(prog, device)
	require.NoError(t, err)

	paramsBase := uint32(0x0800)
	assert.Equal(t, byte(30), bytes[paramsBase-base+1], "mode=0 branch never taken, default preserved")
}

func TestBuild_ParameterOverrideTakesEffect(t *testing.T) {
	ctx := newBaseContext(t)
	require.NoError(t, ctx.RegisterParameter(program.Parameter{
		ID: "mode", Segment: "params", Offset: 0, Size: 8, Default: 0,
	}))
	require.NoError(t, ctx.RegisterParameter(program.Parameter{
		ID: "timeout", Segment: "params", Offset: 1, Size: 8, Default: 30,
	}))

	tree := []program.Node{
		{ParameterRefRef: &program.ParameterRefRefNode{Ref: "mode"}},
		{ParameterRefRef: &program.ParameterRefRefNode{Ref: "timeout"}},
		{Choose: &program.ChooseNode{
			Ref: "mode",
			Branches: []program.WhenBranch{
				{Test: 1, Body: []program.Node{
					{Assign: &program.AssignNode{Target: "timeout", Literal: 99}},
				}},
			},
		}},
	}

	prog := baseProgram(ctx)
	prog.Tree = tree
	device := DeviceInstance{
		IndividualAddress:  mustIndividual(t, "1.1.1"),
		ParameterOverrides: map[program.ParameterID]int64{"mode": 1},
	}

	bytes, base, err := Build(prog, device)
	require.NoError(t, err)

	paramsBase := uint32(0x0800)
	assert.Equal(t, byte(1), bytes[paramsBase-base], "mode overridden to 1")
	assert.Equal(t, byte(99), bytes[paramsBase-base+1], "mode=1 branch taken, assign applied")
}

func TestTypeCode_KnownAndUnknownSizes(t *testing.T) {
	code, err := typeCode(1)
	require.NoError(t, err)
	assert.Equal(t, byte(0), code)

	code, err = typeCode(120)
	require.NoError(t, err)
	assert.Equal(t, byte(15), code)

	_, err = typeCode(9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableOverflow))
}

func TestRamPointerSize_ByMaskVersion(t *testing.T) {
	size, err := ramPointerSize("MV-0010")
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	size, err = ramPointerSize("MV-0700")
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	_, err = ramPointerSize("MV-0500")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMaskVersion))
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint32(0x0100), alignUp(0x0100, 2))
	assert.Equal(t, uint32(0x0102), alignUp(0x0101, 2))
	assert.Equal(t, uint32(0x0104), alignUp(0x0101, 4))
}
