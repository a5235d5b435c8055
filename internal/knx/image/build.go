package image

import (
	"fmt"
	"sort"

	"github.com/knxcore/knxcore/internal/knx/address"
	"github.com/knxcore/knxcore/internal/knx/program"
)

// comObjectSizes lists the widths (in bits) a communication object may
// declare, in the order the type-code field enumerates them (index =
// type code).
var comObjectSizes = []int{1, 2, 3, 4, 5, 6, 7, 8, 16, 24, 32, 48, 64, 80, 112, 120}

func typeCode(sizeBits int) (byte, error) {
	for code, size := range comObjectSizes {
		if size == sizeBits {
			return byte(code), nil //nolint:gosec // len(comObjectSizes) is 16
		}
	}
	return 0, fmt.Errorf("%w: %w: communication object size %d bits has no type code",
		ErrLayout, ErrTableOverflow, sizeBits)
}

func ramPointerSize(maskVersion string) (int, error) {
	var minor int
	if n, err := fmt.Sscanf(maskVersion, "MV-%04d", &minor); n != 1 || err != nil {
		return 0, fmt.Errorf("%w: %w: %q", ErrLayout, ErrUnknownMaskVersion, maskVersion)
	}
	switch {
	case minor >= 10 && minor <= 25:
		return 1, nil
	case minor >= 700 && minor <= 705:
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: %w: %q", ErrLayout, ErrUnknownMaskVersion, maskVersion)
	}
}

func ceilBytes(bits int) int {
	return (bits + 7) / 8
}

func alignUp(addr uint32, multiple int) uint32 {
	if multiple <= 1 {
		return addr
	}
	m := uint32(multiple) //nolint:gosec // multiple is a small byte-size
	if addr%m == 0 {
		return addr
	}
	return addr + (m - addr%m)
}

// Build assembles prog's tables and active parameters for device into a
// binary image, returning the flattened bytes and their base address:
// the lowest address any table, parameter or post-patch write touched.
// The image is not extended back to the start of the segment holding
// that address.
func Build(prog ApplicationProgram, device DeviceInstance) ([]byte, uint32, error) {
	w := newMemWriter()

	groupAddrs := collectGroupAddresses(device)

	addrTableBase, err := writeAddressTable(w, prog, device, groupAddrs)
	if err != nil {
		return nil, 0, err
	}

	assocTableBase, err := writeAssociationTable(w, prog, device, groupAddrs)
	if err != nil {
		return nil, 0, err
	}

	comTableBase, err := writeComObjectTable(w, prog)
	if err != nil {
		return nil, 0, err
	}

	if err := writeParameters(w, prog, device); err != nil {
		return nil, 0, err
	}

	postPatch(w, prog, addrTableBase, assocTableBase, comTableBase)

	bytes, base := w.Bytes()
	return bytes, base, nil
}

func collectGroupAddresses(device DeviceInstance) []address.Address {
	seen := make(map[uint16]address.Address)
	for _, obj := range device.Objects {
		for _, b := range obj.Bindings {
			seen[b.Address.Uint16()] = b.Address
		}
	}
	out := make([]address.Address, 0, len(seen))
	for _, a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return address.Compare(out[i], out[j]) < 0 })
	return out
}

func segmentBase(ctx *program.ProgramContext, id program.SegmentID) (uint32, error) {
	seg, err := ctx.Segment(id)
	if err != nil {
		return 0, err
	}
	return seg.BaseAddress, nil
}

// writeAddressTable writes entry 0 (device address) plus one entry per
// distinct group address, and returns the table's absolute base.
func writeAddressTable(w *memWriter, prog ApplicationProgram, device DeviceInstance, groupAddrs []address.Address) (uint32, error) {
	segBase, err := segmentBase(prog.Context, prog.AddressTable.Segment)
	if err != nil {
		return 0, err
	}
	base := segBase + uint32(prog.AddressTable.Offset) //nolint:gosec // offsets are small

	entries := len(groupAddrs) + 1
	if entries > prog.AddressTable.MaxEntries {
		return 0, fmt.Errorf("%w: %w: address table needs %d entries, max is %d",
			ErrLayout, ErrTableOverflow, entries, prog.AddressTable.MaxEntries)
	}
	if base%2 != 0 {
		return 0, fmt.Errorf("%w: %w: address table base %#x is not 2-byte aligned",
			ErrLayout, ErrMisalignedSegment, base)
	}

	w.WriteByte(base, byte(entries)) //nolint:gosec // bounded by MaxEntries check above
	w.WriteUint16BE(base+1, device.IndividualAddress.Uint16())
	for i, ga := range groupAddrs {
		w.WriteUint16BE(base+1+uint32(2*(i+1)), ga.Uint16()) //nolint:gosec // table sizes are small
	}
	return base, nil
}

type assocCandidate struct {
	coNumber int
	read     bool
}

// writeAssociationTable writes, for each group address in address-table
// order, the communication objects with a Send connector to it — read
// flagged objects first, then by the order they appear in
// device.Objects.
func writeAssociationTable(w *memWriter, prog ApplicationProgram, device DeviceInstance, groupAddrs []address.Address) (uint32, error) {
	segBase, err := segmentBase(prog.Context, prog.AssociationTable.Segment)
	if err != nil {
		return 0, err
	}
	base := segBase + uint32(prog.AssociationTable.Offset) //nolint:gosec // offsets are small

	type entry struct {
		gaIndex  int
		coNumber int
	}
	var entries []entry

	for gaIndex, ga := range groupAddrs {
		var candidates []assocCandidate
		for _, obj := range device.Objects {
			for _, b := range obj.Bindings {
				if b.Connector != Send || !b.Address.Equal(ga) {
					continue
				}
				co, err := prog.Context.CommunicationObject(obj.Number)
				if err != nil {
					return 0, err
				}
				candidates = append(candidates, assocCandidate{coNumber: obj.Number, read: co.Flags.Read})
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].read && !candidates[j].read
		})
		for _, c := range candidates {
			entries = append(entries, entry{gaIndex: gaIndex + 1, coNumber: c.coNumber})
		}
	}

	if len(entries) > prog.AssociationTable.MaxEntries {
		return 0, fmt.Errorf("%w: %w: association table needs %d entries, max is %d",
			ErrLayout, ErrTableOverflow, len(entries), prog.AssociationTable.MaxEntries)
	}

	w.WriteByte(base, byte(len(entries))) //nolint:gosec // bounded by MaxEntries check above
	for i, e := range entries {
		off := base + 1 + uint32(2*i) //nolint:gosec // table sizes are small
		w.WriteByte(off, byte(e.gaIndex))    //nolint:gosec // address-table index fits a byte
		w.WriteByte(off+1, byte(e.coNumber)) //nolint:gosec // communication-object numbers fit a byte
	}
	return base, nil
}

// writeComObjectTable writes one record per registered communication
// object, in ascending number order, allocating each a naturally
// aligned RAM pointer.
func writeComObjectTable(w *memWriter, prog ApplicationProgram) (uint32, error) {
	segBase, err := segmentBase(prog.Context, prog.ComObjectTable.Segment)
	if err != nil {
		return 0, err
	}
	base := segBase + uint32(prog.ComObjectTable.Offset) //nolint:gosec // offsets are small

	numbers := prog.Context.CommunicationObjectNumbers()
	if len(numbers) > prog.ComObjectTable.MaxEntries {
		return 0, fmt.Errorf("%w: %w: communication-object table needs %d entries, max is %d",
			ErrLayout, ErrTableOverflow, len(numbers), prog.ComObjectTable.MaxEntries)
	}

	ptrSize, err := ramPointerSize(prog.MaskVersion)
	if err != nil {
		return 0, err
	}

	ramBase, err := segmentBase(prog.Context, prog.RAMSegment)
	if err != nil {
		return 0, err
	}

	cursor := ramBase
	recordSize := uint32(2 + ptrSize) //nolint:gosec // small, fixed constant

	for i, number := range numbers {
		co, err := prog.Context.CommunicationObject(number)
		if err != nil {
			return 0, err
		}
		code, err := typeCode(co.Size)
		if err != nil {
			return 0, err
		}

		byteSize := ceilBytes(co.Size)
		cursor = alignUp(cursor, byteSize)

		recordAddr := base + uint32(i)*recordSize //nolint:gosec // table sizes are small
		w.WriteByte(recordAddr, co.Flags.Byte())
		w.WriteByte(recordAddr+1, code)
		writePointer(w, recordAddr+2, cursor, ptrSize)

		cursor += uint32(byteSize) //nolint:gosec // per-object size is small
	}

	return base, nil
}

func writePointer(w *memWriter, addr uint32, value uint32, size int) {
	if size == 1 {
		w.WriteByte(addr, byte(value)) //nolint:gosec // 1-byte pointer width was selected by mask version
		return
	}
	w.WriteUint16BE(addr, uint16(value)) //nolint:gosec // 2-byte pointer width was selected by mask version
}

func writeParameters(w *memWriter, prog ApplicationProgram, device DeviceInstance) error {
	env := program.NewEnvironment(prog.Context)
	for id, v := range device.ParameterOverrides {
		env.Set(id, v)
	}

	active := program.Traverse(prog.Tree, env)
	for _, ref := range active {
		p, err := prog.Context.Parameter(ref)
		if err != nil {
			return err
		}
		segBase, err := segmentBase(prog.Context, p.Segment)
		if err != nil {
			return err
		}
		addr := segBase + uint32(p.Offset) //nolint:gosec // offsets are small
		writeParameterValue(w, addr, p.BitOffset, p.Size, env.Get(ref))
	}
	return nil
}

func writeParameterValue(w *memWriter, addr uint32, bitOffset, size int, value int64) {
	if size < 8 {
		mask := byte(((1 << uint(size)) - 1) << uint(bitOffset)) //nolint:gosec // size<8 bounded
		cur := w.ReadByte(addr)
		shifted := byte(value<<uint(bitOffset)) & mask //nolint:gosec // sub-byte value
		w.WriteByte(addr, (cur &^ mask) | shifted)
		return
	}
	nbytes := size / 8
	for i := 0; i < nbytes; i++ {
		shift := uint((nbytes - 1 - i) * 8)
		w.WriteByte(addr+uint32(i), byte(value>>shift)) //nolint:gosec // per-byte slice of value
	}
}

func postPatch(w *memWriter, prog ApplicationProgram, addrTableBase, assocTableBase, comTableBase uint32) {
	lead := uint32(prog.LeadBytes) //nolint:gosec // small configured constant
	w.WriteUint16LE(lead+0x278, uint16(addrTableBase)) //nolint:gosec // device addresses fit 16 bits
	w.WriteUint16LE(lead+0x27A, uint16(assocTableBase)) //nolint:gosec // device addresses fit 16 bits
	w.WriteUint16LE(lead+0x27C, uint16(comTableBase))   //nolint:gosec // device addresses fit 16 bits
}
