package msc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func softBits(bits []byte) []float32 {
	soft := make([]float32, len(bits))
	for i, b := range bits {
		soft[i] = SoftBit(b)
	}
	return soft
}

func TestSymbolTable(t *testing.T) {
	r := float32(1 / math.Sqrt2)
	assert.Equal(t, [4]float32{r, r, r, r}, SymbolTable[0])
	assert.Equal(t, [4]float32{-r, -r, -r, -r}, SymbolTable[15])
	assert.Equal(t, [4]float32{r, -r, r, -r}, SymbolTable[0b0101])
}

func TestConvolutionalEncodeImpulse(t *testing.T) {
	out := ConvolutionalEncode([]byte{1})
	require.Len(t, out, 4*7)
	lane := func(j int) []byte {
		var l []byte
		for k := range 7 {
			l = append(l, out[4*k+j])
		}
		return l
	}
	// generator taps, most recent input first
	assert.Equal(t, []byte{1, 0, 1, 1, 0, 1, 1}, lane(0), "0133")
	assert.Equal(t, []byte{1, 1, 1, 1, 0, 0, 1}, lane(1), "0171")
	assert.Equal(t, []byte{1, 1, 0, 0, 1, 0, 1}, lane(2), "0145")
	assert.Equal(t, lane(0), lane(3))
}

func TestViterbiAllZero(t *testing.T) {
	const n = 192
	in := make([]byte, n)
	soft := softBits(ConvolutionalEncode(in))
	v := NewViterbiDecoder(n + TailBits)
	got, metric, err := v.Decode(soft)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, n+TailBits), got)
	assert.Zero(t, metric)
}

func TestViterbiCorrectsErrors(t *testing.T) {
	const n = 96
	in := make([]byte, n)
	for i := range in {
		in[i] = byte(i*7/3) & 1
	}
	soft := softBits(ConvolutionalEncode(in))
	// one hard error and one erasure, well apart
	soft[40] = -soft[40]
	soft[200] = 0

	v := NewViterbiDecoder(n + TailBits)
	got, metric, err := v.Decode(soft)
	require.NoError(t, err)
	info, err := PruneTail(got, n)
	require.NoError(t, err)
	assert.Equal(t, in, info)
	assert.InDelta(t, 2.0+0.5, metric, 1e-6)
}

func TestViterbiRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.SliceOfN(rapid.IntRange(0, 1), 1, 300).Draw(t, "in")
		bits := make([]byte, len(in))
		for i, b := range in {
			bits[i] = byte(b)
		}
		v := NewViterbiDecoder(len(bits) + TailBits)
		got, metric, err := v.Decode(softBits(ConvolutionalEncode(bits)))
		require.NoError(t, err)
		assert.Equal(t, bits, got[:len(bits)])
		assert.Equal(t, make([]byte, TailBits), got[len(bits):])
		assert.Zero(t, metric)
	})
}

func TestViterbiDecodeSizeMismatch(t *testing.T) {
	v := NewViterbiDecoder(10)
	_, _, err := v.Decode(make([]float32, 39))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestPruneTail(t *testing.T) {
	got, err := PruneTail([]byte{1, 0, 1, 0, 0, 0, 0, 0, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 1}, got)

	_, err = PruneTail([]byte{1, 0, 1}, 3)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}
