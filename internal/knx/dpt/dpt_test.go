package dpt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Major(t *testing.T) {
	tests := []struct {
		name      string
		id        ID
		wantMajor int
		wantMinor int
		wantHas   bool
		wantErr   bool
	}{
		{"generic", "DPT-1", 1, 0, false, false},
		{"specific", "DPST-9-1", 9, 1, true, false},
		{"specific large", "DPST-232-600", 232, 600, true, false},
		{"malformed prefix", "XPT-1-1", 0, 0, false, true},
		{"malformed specific", "DPST-1", 0, 0, false, true},
		{"non-numeric", "DPST-a-b", 0, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			major, minor, has, err := tt.id.Major()
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvalidID))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMajor, major)
			assert.Equal(t, tt.wantMinor, minor)
			assert.Equal(t, tt.wantHas, has)
		})
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	typ := Type{ID: Switch, Size: 1, Fields: []Field{{Name: "value", Kind: Bit, Size: 1}}}

	require.NoError(t, reg.Register(typ))
	assert.Equal(t, 1, reg.Len())

	got, err := reg.Lookup(Switch)
	require.NoError(t, err)
	assert.Equal(t, typ, got)

	err = reg.Register(typ)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateID))

	_, err = reg.Lookup("DPST-9-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownID))
}

func TestRegistry_RegisterInvalidID(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(Type{ID: "garbage"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidID))
}

func TestType_Resolve(t *testing.T) {
	reg := NewRegistry()
	base := Type{ID: "DPST-1-1", Size: 1, Fields: []Field{{Name: "value", Kind: Bit, BitStart: 0, Size: 1}}}
	require.NoError(t, reg.Register(base))

	aliasing := Type{
		ID:   "DPST-3-7",
		Size: 4,
		Fields: []Field{
			{Name: "aliased", Kind: RefType, BitStart: 0, RefName: "DPST-1-1"},
			{Name: "steps", Kind: UnsignedInteger, BitStart: 1, Size: 3},
		},
	}

	resolved, err := aliasing.Resolve(reg)
	require.NoError(t, err)
	require.Len(t, resolved.Fields, 2)
	assert.Equal(t, "value", resolved.Fields[0].Name)
	assert.Equal(t, Bit, resolved.Fields[0].Kind)
	assert.Equal(t, 0, resolved.Fields[0].BitStart)
	assert.Equal(t, "steps", resolved.Fields[1].Name)
}

func TestType_Resolve_UnknownRef(t *testing.T) {
	reg := NewRegistry()
	typ := Type{ID: "DPST-3-7", Fields: []Field{{Name: "x", Kind: RefType, RefName: "does-not-exist"}}}
	_, err := typ.Resolve(reg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRef))
}

func TestNewRegistryWithBuiltins(t *testing.T) {
	reg, err := NewRegistryWithBuiltins()
	require.NoError(t, err)
	assert.Equal(t, len(BuiltinTypes()), reg.Len())

	for _, id := range []ID{Switch, Percentage, Temperature, ColourRGB} {
		_, err := reg.Lookup(id)
		require.NoErrorf(t, err, "expected %s to be registered", id)
	}
}

func TestEncodeDecodeBit(t *testing.T) {
	for _, v := range []bool{true, false} {
		data := EncodeBit(v)
		got, err := DecodeBit(data)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := DecodeBit(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecodingFailed))
}

func TestEncodeDecodeControl(t *testing.T) {
	data := EncodeControl(true, 5)
	inc, steps, err := DecodeControl(data)
	require.NoError(t, err)
	assert.True(t, inc)
	assert.Equal(t, uint8(5), steps)

	data = EncodeControl(false, 2)
	inc, steps, err = DecodeControl(data)
	require.NoError(t, err)
	assert.False(t, inc)
	assert.Equal(t, uint8(2), steps)
}

func TestEncodeDecodePercent(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{100, 100},
		{50, 50},
		{150, 100}, // clamped
		{-10, 0},   // clamped
	}
	for _, tt := range tests {
		data := EncodePercent(tt.in)
		require.Len(t, data, 1)
		got, err := DecodePercent(data)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 0.5)
	}
}

func TestEncodeDecodeAngle(t *testing.T) {
	data := EncodeAngle(180)
	got, err := DecodeAngle(data)
	require.NoError(t, err)
	assert.InDelta(t, 180, got, 2)

	_, err = DecodeAngle(nil)
	require.Error(t, err)
}

func TestEncodeDecodeFloat16(t *testing.T) {
	tests := []float64{0, 1, -1, 21.5, -20.0, 670760.96, -671088.64, 0.01, 100.5}
	for _, v := range tests {
		data, err := EncodeFloat16(v)
		require.NoError(t, err)
		require.Len(t, data, 2)
		got, err := DecodeFloat16(data)
		require.NoError(t, err)
		assert.InDelta(t, v, got, 0.3, "round trip for %v", v)
	}
}

func TestEncodeFloat16_OutOfRange(t *testing.T) {
	_, err := EncodeFloat16(1e9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEncodingFailed))

	_, err = EncodeFloat16(-1e9)
	require.Error(t, err)
}

func TestDecodeFloat16_InvalidSentinel(t *testing.T) {
	_, err := DecodeFloat16([]byte{0x7F, 0xFF})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecodingFailed))
}

func TestDecodeFloat16_Truncated(t *testing.T) {
	_, err := DecodeFloat16([]byte{0x00})
	require.Error(t, err)
}

func TestEncodeDecodeScene(t *testing.T) {
	data, err := EncodeScene(42)
	require.NoError(t, err)
	got, err := DecodeScene(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(42), got)

	_, err = EncodeScene(64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEncodingFailed))
}

func TestEncodeDecodeSceneControl(t *testing.T) {
	data, err := EncodeSceneControl(10, true)
	require.NoError(t, err)
	scene, learn, err := DecodeSceneControl(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(10), scene)
	assert.True(t, learn)

	data, err = EncodeSceneControl(63, false)
	require.NoError(t, err)
	scene, learn, err = DecodeSceneControl(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(63), scene)
	assert.False(t, learn)
}

func TestEncodeDecodeRGB(t *testing.T) {
	rgb := RGB{R: 255, G: 128, B: 0}
	data := EncodeRGB(rgb)
	require.Len(t, data, 3)
	got, err := DecodeRGB(data)
	require.NoError(t, err)
	assert.Equal(t, rgb, got)

	_, err = DecodeRGB([]byte{1, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecodingFailed))
}

func TestFloat16_Monotonic(t *testing.T) {
	// Encoding should preserve ordering over a representative sample,
	// guarding against exponent/mantissa sign regressions.
	values := []float64{-100, -10, -1, 0, 1, 10, 100, 1000}
	var prev float64
	var havePrev bool
	for _, v := range values {
		data, err := EncodeFloat16(v)
		require.NoError(t, err)
		got, err := DecodeFloat16(data)
		require.NoError(t, err)
		if havePrev {
			assert.True(t, got >= prev-1, "expected monotonic non-decrease at %v", v)
		}
		prev, havePrev = got, true
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-5, 0, 100))
	assert.Equal(t, 100.0, clamp(150, 0, 100))
	assert.Equal(t, 50.0, clamp(50, 0, 100))
}
