package dpt

import (
	"fmt"
	"math"
)

// Common datapoint type identifiers used in building automation,
// expressed in "DPST-n-m" form (n = major, m = subtype).
const (
	Switch    ID = "DPST-1-1" // 1.001: 0=Off, 1=On
	Bool      ID = "DPST-1-2" // 1.002: 0=False, 1=True
	Step      ID = "DPST-1-7" // 1.007: 0=Decrease, 1=Increase
	UpDown    ID = "DPST-1-8" // 1.008: 0=Up, 1=Down
	OpenClose ID = "DPST-1-9" // 1.009: 0=Open, 1=Close

	DimmingControl ID = "DPST-3-7" // 3.007: direction + steps
	BlindControl   ID = "DPST-3-8" // 3.008: direction + steps

	Percentage ID = "DPST-5-1" // 5.001: 0-100%
	Angle      ID = "DPST-5-3" // 5.003: 0-360 degrees
	PercentU8  ID = "DPST-5-4" // 5.004: 0-255 raw

	Temperature ID = "DPST-9-1" // 9.001
	Lux         ID = "DPST-9-4" // 9.004
	Speed       ID = "DPST-9-5" // 9.005
	Humidity    ID = "DPST-9-7" // 9.007

	SceneNumber  ID = "DPST-17-1" // 17.001: 0-63
	SceneControl ID = "DPST-18-1" // 18.001: scene + learn bit

	ColourRGB ID = "DPST-232-600" // 232.600: R,G,B
)

// BuiltinTypes returns the Type definitions for every ID constant this
// package understands, ready to Register into a Registry.
func BuiltinTypes() []Type {
	return []Type{
		{ID: Switch, Size: 1, Fields: []Field{{Name: "value", Kind: Bit, BitStart: 0, Size: 1}}},
		{ID: Bool, Size: 1, Fields: []Field{{Name: "value", Kind: Bit, BitStart: 0, Size: 1}}},
		{ID: Step, Size: 1, Fields: []Field{{Name: "value", Kind: Bit, BitStart: 0, Size: 1}}},
		{ID: UpDown, Size: 1, Fields: []Field{{Name: "value", Kind: Bit, BitStart: 0, Size: 1}}},
		{ID: OpenClose, Size: 1, Fields: []Field{{Name: "value", Kind: Bit, BitStart: 0, Size: 1}}},
		{ID: DimmingControl, Size: 4, Fields: []Field{
			{Name: "direction", Kind: Bit, BitStart: 0, Size: 1},
			{Name: "steps", Kind: UnsignedInteger, BitStart: 1, Size: 3},
		}},
		{ID: BlindControl, Size: 4, Fields: []Field{
			{Name: "direction", Kind: Bit, BitStart: 0, Size: 1},
			{Name: "steps", Kind: UnsignedInteger, BitStart: 1, Size: 3},
		}},
		{ID: Percentage, Size: 8, Fields: []Field{{Name: "value", Kind: UnsignedInteger, BitStart: 0, Size: 8}}},
		{ID: Angle, Size: 8, Fields: []Field{{Name: "value", Kind: UnsignedInteger, BitStart: 0, Size: 8}}},
		{ID: PercentU8, Size: 8, Fields: []Field{{Name: "value", Kind: UnsignedInteger, BitStart: 0, Size: 8}}},
		{ID: Temperature, Size: 16, Fields: []Field{{Name: "value", Kind: Float, BitStart: 0, Size: 16}}},
		{ID: Lux, Size: 16, Fields: []Field{{Name: "value", Kind: Float, BitStart: 0, Size: 16}}},
		{ID: Speed, Size: 16, Fields: []Field{{Name: "value", Kind: Float, BitStart: 0, Size: 16}}},
		{ID: Humidity, Size: 16, Fields: []Field{{Name: "value", Kind: Float, BitStart: 0, Size: 16}}},
		{ID: SceneNumber, Size: 8, Fields: []Field{{Name: "scene", Kind: UnsignedInteger, BitStart: 2, Size: 6}}},
		{ID: SceneControl, Size: 8, Fields: []Field{
			{Name: "learn", Kind: Bit, BitStart: 0, Size: 1},
			{Name: "scene", Kind: UnsignedInteger, BitStart: 2, Size: 6},
		}},
		{ID: ColourRGB, Size: 24, Fields: []Field{
			{Name: "red", Kind: UnsignedInteger, BitStart: 0, Size: 8},
			{Name: "green", Kind: UnsignedInteger, BitStart: 8, Size: 8},
			{Name: "blue", Kind: UnsignedInteger, BitStart: 16, Size: 8},
		}},
	}
}

// NewRegistryWithBuiltins returns a Registry pre-loaded with BuiltinTypes.
func NewRegistryWithBuiltins() (*Registry, error) {
	reg := NewRegistry()
	for _, t := range BuiltinTypes() {
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Encoding constants for the common DPT helpers below.
const (
	u8Max          = 255
	angleMaxDeg    = 360
	maxExponent    = 15
	mantissaMask   = 0x07FF
	maxScene       = 63
	sceneMask      = 0x3F
	rgbBytes       = 3
	byteShiftWidth = 8
	invalidFloat16 = 0x7FFF
)

// EncodeBit encodes a boolean to 1-bit KNX format (DPT 1.xxx family).
func EncodeBit(value bool) []byte {
	if value {
		return []byte{0x01}
	}
	return []byte{0x00}
}

// DecodeBit decodes a 1-bit KNX value to boolean.
func DecodeBit(data []byte) (bool, error) {
	if len(data) < 1 {
		return false, fmt.Errorf("%w: requires 1 byte, got %d", ErrDecodingFailed, len(data))
	}
	return data[0]&0x01 != 0, nil
}

// EncodeControl encodes a 4-bit dimming/blind control value (DPT 3.xxx).
func EncodeControl(increase bool, steps uint8) []byte {
	var value byte
	if increase {
		value = 0x08
	}
	value |= steps & 0x07
	return []byte{value}
}

// DecodeControl decodes a 4-bit dimming/blind control value.
func DecodeControl(data []byte) (increase bool, steps uint8, err error) {
	if len(data) < 1 {
		return false, 0, fmt.Errorf("%w: requires 1 byte, got %d", ErrDecodingFailed, len(data))
	}
	return data[0]&0x08 != 0, data[0] & 0x07, nil
}

// EncodePercent encodes 0-100 to 1-byte KNX format (DPT 5.001).
func EncodePercent(percent float64) []byte {
	percent = clamp(percent, 0, 100)
	return []byte{uint8(math.Round(percent * u8Max / 100))}
}

// DecodePercent decodes 1-byte KNX format to a 0-100 percentage.
func DecodePercent(data []byte) (float64, error) {
	if len(data) < 1 {
		return 0, fmt.Errorf("%w: requires 1 byte, got %d", ErrDecodingFailed, len(data))
	}
	return float64(data[0]) * 100 / u8Max, nil
}

// EncodeAngle encodes 0-360 degrees to 1-byte KNX format (DPT 5.003).
func EncodeAngle(angle float64) []byte {
	angle = clamp(angle, 0, angleMaxDeg)
	return []byte{uint8(math.Round(angle * u8Max / angleMaxDeg))}
}

// DecodeAngle decodes 1-byte KNX format to a 0-360 degree angle.
func DecodeAngle(data []byte) (float64, error) {
	if len(data) < 1 {
		return 0, fmt.Errorf("%w: requires 1 byte, got %d", ErrDecodingFailed, len(data))
	}
	return float64(data[0]) * angleMaxDeg / u8Max, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EncodeFloat16 encodes a value to the KNX 2-byte floating point format
// (DPT 9.xxx): byte0 = SEEEMMMM, byte1 = MMMMMMMM, value = 0.01*M*2^E.
func EncodeFloat16(value float64) ([]byte, error) {
	if value < -671088.64 || value > 670760.96 {
		return nil, fmt.Errorf("%w: value out of range: %.2f", ErrEncodingFailed, value)
	}

	var sign uint16
	if value < 0 {
		sign = 0x8000
		value = -value
	}

	// The 11-bit two's-complement mantissa spans -2048..2047.
	maxMantissa := 2047.0
	if sign != 0 {
		maxMantissa = 2048
	}
	exp := 0
	mantissa := value * 100
	for mantissa > maxMantissa {
		mantissa /= 2
		exp++
	}
	if exp > maxExponent {
		return nil, fmt.Errorf("%w: exponent overflow for value %.2f", ErrEncodingFailed, value)
	}

	m := int16(mantissa)
	if sign != 0 {
		m = -m
	}
	encoded := sign | (uint16(exp) << 11) | (uint16(m) & mantissaMask) //nolint:gosec // exp bounded above
	return []byte{byte(encoded >> byteShiftWidth), byte(encoded)}, nil
}

// DecodeFloat16 decodes a KNX 2-byte floating point value.
func DecodeFloat16(data []byte) (float64, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("%w: requires 2 bytes, got %d", ErrDecodingFailed, len(data))
	}
	raw := uint16(data[0])<<8 | uint16(data[1])
	if raw == invalidFloat16 {
		return 0, fmt.Errorf("%w: 0x7FFF invalid/not-available sentinel", ErrDecodingFailed)
	}
	sign := raw&0x8000 != 0
	exp := (raw >> 11) & 0x0F
	mantissa := int16(raw & mantissaMask) //nolint:gosec // 11-bit value fits in int16
	if sign {
		mantissa |= -0x800
	}
	return float64(mantissa) * 0.01 * math.Pow(2, float64(exp)), nil
}

// EncodeScene encodes a scene number (0-63) to 1-byte format (DPT 17.001).
func EncodeScene(scene uint8) ([]byte, error) {
	if scene > maxScene {
		return nil, fmt.Errorf("%w: scene must be 0-%d, got %d", ErrEncodingFailed, maxScene, scene)
	}
	return []byte{scene & sceneMask}, nil
}

// DecodeScene decodes a scene number from 1-byte format.
func DecodeScene(data []byte) (uint8, error) {
	if len(data) < 1 {
		return 0, fmt.Errorf("%w: requires 1 byte, got %d", ErrDecodingFailed, len(data))
	}
	return data[0] & sceneMask, nil
}

// EncodeSceneControl encodes a scene control value (DPT 18.001).
func EncodeSceneControl(scene uint8, learn bool) ([]byte, error) {
	if scene > maxScene {
		return nil, fmt.Errorf("%w: scene must be 0-%d, got %d", ErrEncodingFailed, maxScene, scene)
	}
	value := scene & sceneMask
	if learn {
		value |= 0x80
	}
	return []byte{value}, nil
}

// DecodeSceneControl decodes a scene control value.
func DecodeSceneControl(data []byte) (scene uint8, learn bool, err error) {
	if len(data) < 1 {
		return 0, false, fmt.Errorf("%w: requires 1 byte, got %d", ErrDecodingFailed, len(data))
	}
	return data[0] & sceneMask, data[0]&0x80 != 0, nil
}

// RGB is a 3-byte colour value (DPT 232.600).
type RGB struct {
	R, G, B uint8
}

// EncodeRGB encodes an RGB colour to 3-byte format.
func EncodeRGB(rgb RGB) []byte {
	return []byte{rgb.R, rgb.G, rgb.B}
}

// DecodeRGB decodes a 3-byte RGB colour value.
func DecodeRGB(data []byte) (RGB, error) {
	if len(data) < rgbBytes {
		return RGB{}, fmt.Errorf("%w: requires %d bytes, got %d", ErrDecodingFailed, rgbBytes, len(data))
	}
	return RGB{R: data[0], G: data[1], B: data[2]}, nil
}
