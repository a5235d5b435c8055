package signal

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/bits"

	"github.com/knxcore/knxcore/internal/knx/telegram"
)

// minTelegramBytesForLabel is the byte count at or above which the
// assembled telegram is long enough to render through §4.1's codec.
const minTelegramBytesForLabel = 8

// Decode consumes src to completion, emitting Spans for each observed
// byte, short frame and telegram. It does not check inter-frame
// spacing, so it never emits a KindTimingError or KindWarning span.
// It returns only on a
// configuration error (ErrConfig); every other condition is reported
// as a Span rather than an error, per the error-kind taxonomy's
// recoverable classes.
func Decode(src SampleSource, opts Options) ([]Span, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	// The bus idles at logical 1; a non-inverted falling edge (1->0)
	// is reported with level=false. Inverting the signal swaps which
	// physical transition counts as "falling".
	fallingLevel := opts.Inverted
	win := profiles[opts.Profile]
	cursor := newEdgeCursor(src)

	var spans []Span
	for {
		startSample, ok := cursor.nextFalling(fallingLevel)
		if !ok {
			break
		}
		cursor.advance()
		spans = append(spans, decodeTelegram(cursor, startSample.sample, opts, win, fallingLevel)...)
	}
	return spans, nil
}

// decodeTelegram decodes one telegram (or short frame) starting at the
// falling edge that begins its first byte.
func decodeTelegram(cursor *edgeCursor, firstByteStart int64, opts Options, win timingWindow, fallingLevel bool) []Span {
	var bytes []byte
	var byteSpans []Span
	valid := true

	byteStart := firstByteStart
	for {
		value, parityOK, end := decodeByte(cursor, byteStart, opts, win, fallingLevel)
		bytes = append(bytes, value)
		byteSpans = append(byteSpans, Span{Start: byteStart, End: end, Kind: KindDataByte, Text: fmt.Sprintf("%02x", value)})
		if !parityOK {
			valid = false
			byteSpans = append(byteSpans, Span{
				Start: byteStart, End: end, Kind: KindParityError,
				Text: fmt.Sprintf("%02x", value), Err: ErrParity,
			})
		}

		nextStart, more := nextByteEdge(cursor, byteStart, opts, win, fallingLevel)
		if !more {
			byteStart = end
			break
		}
		byteStart = nextStart
	}

	return classifyTelegram(bytes, byteSpans, valid, firstByteStart, byteStart)
}

// decodeByte decodes the 8 data bits and parity bit of one byte cell
// starting at startSample (the falling edge of its start bit), and
// reports whether the transmitted parity bit matches the 8 data bits.
func decodeByte(cursor *edgeCursor, startSample int64, opts Options, win timingWindow, fallingLevel bool) (value byte, parityOK bool, end int64) {
	bitSamples := opts.bitSamples()
	samplesPerUs := opts.samplesPerUs()

	bitAt := func(cellIndex int) bool {
		center := float64(startSample) + float64(cellIndex)*bitSamples
		lo := center + win.windowLowUs*samplesPerUs
		hi := center + win.windowHighUs*samplesPerUs
		return !cursor.hasEdgeInWindow(lo, hi, fallingLevel) // no edge = bit 1
	}

	for i := 0; i < 8; i++ {
		if bitAt(i + 1) {
			value |= 1 << uint(i)
		}
	}
	parityBit := bitAt(9)

	ones := bits.OnesCount8(value)
	if parityBit {
		ones++
	}
	parityOK = ones%2 == 0

	end = startSample + int64(opts.byteSamples())
	return value, parityOK, end
}

// nextByteEdge checks the BYTE_END window (one byte-cell after
// byteStart) for a falling edge marking the start of the next byte in
// the same telegram.
func nextByteEdge(cursor *edgeCursor, byteStart int64, opts Options, win timingWindow, fallingLevel bool) (int64, bool) {
	center := float64(byteStart) + opts.byteSamples()
	samplesPerUs := opts.samplesPerUs()
	lo := center - win.byteLowToleranceUs*samplesPerUs
	hi := center + win.byteHighToleranceUs*samplesPerUs

	return cursor.findEdgeInWindow(lo, hi, fallingLevel)
}

// classifyTelegram applies the end-of-telegram rules: short-frame
// classification for a single byte, checksum verification and label
// rendering for two or more.
func classifyTelegram(telegramBytes []byte, byteSpans []Span, valid bool, start, end int64) []Span {
	if len(telegramBytes) == 1 {
		return classifySingleByte(telegramBytes[0], byteSpans, start, end)
	}

	spans := append([]Span{}, byteSpans...)

	checksumByte := telegramBytes[len(telegramBytes)-1]
	body := telegramBytes[:len(telegramBytes)-1]
	expected := checksum(body)
	if expected == checksumByte {
		spans = append(spans, Span{Start: start, End: end, Kind: KindChecksum, Text: fmt.Sprintf("%02x", checksumByte)})
	} else {
		spans = append(spans, Span{
			Start: start, End: end, Kind: KindChecksumError,
			Text: fmt.Sprintf("want %02x got %02x", expected, checksumByte), Err: telegram.ErrChecksum,
		})
		valid = false
	}

	if len(telegramBytes) >= minTelegramBytesForLabel {
		frame, err := telegram.Decode(telegramBytes)
		if err == nil || errors.Is(err, telegram.ErrChecksum) {
			spans = append(spans, Span{Start: start, End: end, Kind: KindTelegramLabel, Text: renderLabel(frame, valid), Frame: &frame, Valid: valid})
		}
	}

	return spans
}

// classifySingleByte handles the one-byte-total case: a recognised
// short-frame code replaces the plain databyte span, a parity failure
// demotes it to a random/ignored byte, and anything else (a clean byte
// that just isn't a short-frame code) keeps its plain databyte span.
func classifySingleByte(value byte, byteSpans []Span, start, end int64) []Span {
	hadParityError := len(byteSpans) > 1

	if hadParityError {
		spans := append([]Span{}, byteSpans...)
		spans[0] = Span{Start: start, End: end, Kind: KindRandomByte, Text: fmt.Sprintf("%02x", value)}
		return spans
	}

	if kind, ok := shortFrameKind[value]; ok {
		return []Span{{Start: start, End: end, Kind: kind, Text: fmt.Sprintf("%02x", value)}}
	}

	return byteSpans
}

// checksum mirrors the telegram package's wire checksum: 0xFF XOR the
// running XOR of every byte in buf.
func checksum(buf []byte) byte {
	x := byte(0xFF)
	for _, b := range buf {
		x ^= b
	}
	return x
}

func renderLabel(f telegram.Frame, valid bool) string {
	var apci string
	var data []byte

	switch {
	case f.Group != nil:
		apci = f.Group.Service.String()
		data = f.Group.Value
	case f.Control != nil:
		apci = fmt.Sprintf("control-%d", f.Control.Code)
	case f.Memory != nil:
		apci = f.Memory.Service.String()
		data = f.Memory.Data
	case f.Management != nil:
		apci = f.Management.Name()
	default:
		apci = "raw"
		data = f.Raw
	}

	seq := ""
	if f.Transport == telegram.TransportNumberedData || f.Transport == telegram.TransportNumberedControl {
		seq = fmt.Sprintf(" (S=%d)", f.PNO)
	}

	validity := ""
	if !valid {
		validity = " invalid"
	}

	return fmt.Sprintf("%s -> %s %s%s%s %s", f.Source, f.Destination, apci, seq, validity, hex.EncodeToString(data))
}
