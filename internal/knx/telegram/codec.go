package telegram

import (
	"encoding/binary"
	"fmt"

	"github.com/knxcore/knxcore/internal/knx/address"
)

const (
	headerSize  = 7 // bytes 0..6, common to every Data-class frame
	maxWireSize = 23
)

func checksum(buf []byte) byte {
	var x byte = 0xFF
	for _, b := range buf {
		x ^= b
	}
	return x
}

// Encode renders f to wire bytes, including the trailing checksum byte.
func Encode(f Frame) ([]byte, error) {
	if f.Class != ClassData {
		return encodeOpaque(f), nil
	}

	buf := make([]byte, maxWireSize)

	var b0 byte
	b0 |= uint8(f.Priority&0b11) << 2
	b0 |= 1 << 4 // reserved_0
	if f.Repeat {
		b0 |= 1 << 5
	}
	b0 |= uint8(f.Class&0b11) << 6
	buf[0] = b0

	binary.BigEndian.PutUint16(buf[1:3], f.Source.Uint16())
	binary.BigEndian.PutUint16(buf[3:5], f.Destination.Uint16())

	var b5 byte
	if f.Destination.Kind() == address.Group {
		b5 |= 1 << 7
	}
	b5 |= (f.Route & 0b111) << 4
	b5 |= f.Length & 0b1111
	buf[5] = b5

	var b6 byte
	b6 |= uint8(f.Transport & 0b11)
	b6 |= (f.PNO & 0b1111) << 2

	payloadLen, err := encodePayload(&f, buf, &b6)
	if err != nil {
		return nil, err
	}
	buf[6] = b6

	total := headerSize + payloadLen
	if total > maxWireSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds frame capacity", ErrOverlongPayload, total)
	}
	buf = buf[:total]
	return append(buf, checksum(buf)), nil
}

func encodeOpaque(f Frame) []byte {
	buf := make([]byte, 1+len(f.Raw))
	buf[0] = uint8(f.Class&0b11) << 6
	copy(buf[1:], f.Raw)
	return append(buf, checksum(buf))
}

// encodePayload writes the payload starting at buf[7] and returns its
// length in bytes. b6 receives the control-code bits (6-7) when f is a
// control frame.
func encodePayload(f *Frame, buf []byte, b6 *byte) (int, error) {
	switch f.Transport {
	case TransportUnnumberedControl, TransportNumberedControl:
		if f.Control == nil {
			return 0, fmt.Errorf("%w: control transport requires a Control payload", ErrFieldOutOfRange)
		}
		*b6 |= uint8(f.Control.Code&0b11) << 6
		return 0, nil

	case TransportUnnumberedData, TransportNumberedData:
		switch {
		case f.Group != nil:
			return encodeGroup(f.Group, buf)
		case f.Memory != nil:
			if f.Transport != TransportNumberedData {
				return 0, fmt.Errorf("%w: memory service requires numbered-data transport", ErrFieldOutOfRange)
			}
			return encodeMemory(f.Memory, buf)
		case f.Management != nil:
			if f.Transport != TransportNumberedData {
				return 0, fmt.Errorf("%w: management service requires numbered-data transport", ErrFieldOutOfRange)
			}
			if f.Management.Code&0xC0 != 0xC0 {
				return 0, fmt.Errorf("%w: management code %#02x must have bits6-7 set", ErrFieldOutOfRange, f.Management.Code)
			}
			buf[7] = f.Management.Code
			return 1, nil
		default:
			return 0, fmt.Errorf("%w: data transport requires a Group, Memory, or Management payload", ErrFieldOutOfRange)
		}

	default:
		return 0, fmt.Errorf("%w: transport kind %v", ErrUnknownSubtype, f.Transport)
	}
}

func encodeGroup(g *GroupFrame, buf []byte) (int, error) {
	b7 := uint8(g.Service&0b11) << 6

	if g.Length <= 6 {
		var v byte
		if len(g.Value) > 0 {
			v = g.Value[0] & 0x3F
		}
		buf[7] = b7 | v
		return 1, nil
	}

	nbytes := int((g.Length + 7) / 8)
	if len(g.Value) != nbytes {
		return 0, fmt.Errorf("%w: length %d bits requires %d value bytes, got %d",
			ErrOverlongPayload, g.Length, nbytes, len(g.Value))
	}
	buf[7] = b7
	copy(buf[8:8+nbytes], g.Value)
	return 1 + nbytes, nil
}

func encodeMemory(m *MemoryFrame, buf []byte) (int, error) {
	count := len(m.Data)
	if count > 0x0F {
		return 0, fmt.Errorf("%w: memory payload of %d bytes exceeds 15-byte count field", ErrOverlongPayload, count)
	}
	buf[7] = 0b10<<6 | uint8(m.Service&0b11)<<4 | uint8(count&0x0F)
	binary.BigEndian.PutUint16(buf[8:10], m.Address)
	copy(buf[10:10+count], m.Data)
	return 3 + count, nil
}

// Decode parses raw wire bytes (including the trailing checksum) into a
// Frame. If the checksum does not verify, the parsed Frame is still
// returned alongside ErrChecksum so analyzer callers can use best-effort
// output; all other failures return a zero Frame.
func Decode(data []byte) (Frame, error) {
	if len(data) < 2 {
		return Frame{}, fmt.Errorf("%w: %d bytes, need at least 2", ErrTruncated, len(data))
	}

	class := FrameClass((data[0] >> 6) & 0b11)
	body := data[:len(data)-1]
	sum := data[len(data)-1]

	var frame Frame
	var err error
	if class == ClassData {
		frame, err = decodeDataFrame(body)
	} else {
		frame, err = decodeOpaque(class, body)
	}
	if err != nil {
		return Frame{}, err
	}

	if checksum(body) != sum {
		return frame, fmt.Errorf("%w", ErrChecksum)
	}
	return frame, nil
}

func decodeOpaque(class FrameClass, body []byte) (Frame, error) {
	if len(body) < 1 {
		return Frame{}, fmt.Errorf("%w: empty opaque frame", ErrTruncated)
	}
	raw := make([]byte, len(body)-1)
	copy(raw, body[1:])
	return Frame{Header: Header{Class: class}, Raw: raw}, nil
}

func decodeDataFrame(body []byte) (Frame, error) {
	if len(body) < headerSize {
		return Frame{}, fmt.Errorf("%w: %d bytes, need at least %d", ErrTruncated, len(body), headerSize)
	}

	h := Header{
		Priority:    Priority((body[0] >> 2) & 0b11),
		Repeat:      body[0]&(1<<5) != 0,
		Class:       ClassData,
		Source:      address.FromUint16(address.Individual, binary.BigEndian.Uint16(body[1:3])),
		Route:       (body[5] >> 4) & 0b111,
		Length:      body[5] & 0b1111,
		Transport:   TransportKind(body[6] & 0b11),
		PNO:         (body[6] >> 2) & 0b1111,
	}
	destKind := address.Individual
	if body[5]&(1<<7) != 0 {
		destKind = address.Group
	}
	h.Destination = address.FromUint16(destKind, binary.BigEndian.Uint16(body[3:5]))

	frame := Frame{Header: h}

	switch h.Transport {
	case TransportUnnumberedControl, TransportNumberedControl:
		frame.Control = &ControlFrame{Code: ControlCode((body[6] >> 6) & 0b11)}
		return frame, nil

	case TransportUnnumberedData, TransportNumberedData:
		return decodeDataPayload(frame, body)

	default:
		return Frame{}, fmt.Errorf("%w: transport bits %02b", ErrUnknownSubtype, h.Transport)
	}
}

func decodeDataPayload(frame Frame, body []byte) (Frame, error) {
	if len(body) < headerSize+1 {
		return Frame{}, fmt.Errorf("%w: no payload byte present", ErrTruncated)
	}
	b7 := body[7]
	classBits := (b7 >> 6) & 0b11

	if frame.Transport == TransportNumberedData && classBits == 0b10 {
		return decodeMemoryPayload(frame, body, b7)
	}
	if frame.Transport == TransportNumberedData && classBits == 0b11 {
		frame.Management = &ManagementFrame{Code: b7}
		return frame, nil
	}

	return decodeGroupPayload(frame, body, b7, classBits)
}

func decodeGroupPayload(frame Frame, body []byte, b7 byte, classBits byte) (Frame, error) {
	g := &GroupFrame{Service: GroupService(classBits), Length: frame.Length}

	if frame.Length <= 6 {
		g.Value = []byte{b7 & 0x3F}
		frame.Group = g
		return frame, nil
	}

	nbytes := int((frame.Length + 7) / 8)
	if len(body) < headerSize+1+nbytes {
		return Frame{}, fmt.Errorf("%w: need %d value bytes", ErrTruncated, nbytes)
	}
	g.Value = append([]byte(nil), body[headerSize+1:headerSize+1+nbytes]...)
	frame.Group = g
	return frame, nil
}

func decodeMemoryPayload(frame Frame, body []byte, b7 byte) (Frame, error) {
	count := int(b7 & 0x0F)
	if len(body) < headerSize+3+count {
		return Frame{}, fmt.Errorf("%w: memory frame needs %d more bytes", ErrTruncated, 3+count)
	}
	m := &MemoryFrame{
		Service: MemorySubService((b7 >> 4) & 0b11),
		Address: binary.BigEndian.Uint16(body[headerSize+1 : headerSize+3]),
		Data:    append([]byte(nil), body[headerSize+3:headerSize+3+count]...),
	}
	frame.Memory = m
	return frame, nil
}

// PayloadLength returns the number of payload bytes (from offset 7
// onward) this frame would encode to — the `payload_length` of §4.1's
// encoding contract.
func (f Frame) PayloadLength() int {
	switch {
	case f.Control != nil:
		return 0
	case f.Group != nil:
		if f.Group.Length <= 6 {
			return 1
		}
		return 1 + int((f.Group.Length+7)/8)
	case f.Memory != nil:
		return 3 + len(f.Memory.Data)
	case f.Management != nil:
		return 1
	default:
		return len(f.Raw)
	}
}

// EncodedLength returns the total wire size Encode would produce,
// including the trailing checksum byte.
func (f Frame) EncodedLength() int {
	if f.Class != ClassData {
		return 1 + len(f.Raw) + 1
	}
	return headerSize + f.PayloadLength() + 1
}
