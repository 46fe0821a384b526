package msc

import (
	"math/rand/v2"
	"testing"

	"github.com/icza/gog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBlocks(rng *rand.Rand, count, size int) [][]byte {
	blocks := make([][]byte, count)
	for i := range blocks {
		blocks[i] = make([]byte, size)
		for j := range blocks[i] {
			blocks[i][j] = byte(rng.UintN(256))
		}
	}
	return blocks
}

// encodeFrames encodes data in frames of geo.CIFs blocks.
func encodeFrames(t *testing.T, e *Encoder, geo FrameGeometry, data [][]byte) []Symbol {
	t.Helper()
	require.Zero(t, len(data)%geo.CIFs)
	var syms []Symbol
	for i := 0; i < len(data); i += geo.CIFs {
		f, err := e.EncodeFrame(data[i : i+geo.CIFs])
		require.NoError(t, err)
		syms = append(syms, f...)
	}
	return syms
}

func decodeAll(t *testing.T, d *Decoder, syms []Symbol) []Block {
	t.Helper()
	var blocks []Block
	for _, s := range syms {
		b, err := d.Push(s)
		require.NoError(t, err)
		blocks = append(blocks, b...)
	}
	return blocks
}

func TestDecoderRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		geo  FrameGeometry
		cfg  SubchannelConfig
	}{
		{"mode I 2-A exception", ModeI, SubchannelConfig{Address: 0, Size: 8, Protection: 1}},
		{"mode I 3-A 112 kbit/s", ModeI, SubchannelConfig{Address: 300, Size: 84, Protection: 2}},
		{"mode I 1-B", ModeI, SubchannelConfig{Address: 836, Size: 27, Protection: 0, OptionB: true}},
		{"mode II 4-A", ModeII, SubchannelConfig{Address: 5, Size: 12, Protection: 3}},
		{"mode IV 3-B", ModeIV, SubchannelConfig{Address: 18, Size: 36, Protection: 2, OptionB: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(1, 2))
			e := gog.Must(NewEncoder(tt.geo, tt.cfg))
			d := gog.Must(NewDecoder(tt.geo, tt.cfg))
			assert.Equal(t, e.Params(), d.Params())

			count := 20 * tt.geo.CIFs
			data := randomBlocks(rng, count, d.Params().OutputBytes())
			blocks := decodeAll(t, d, encodeFrames(t, e, tt.geo, data))

			require.Len(t, blocks, count-15)
			for i, b := range blocks {
				assert.Equal(t, uint64(i), b.Seq)
				assert.Equal(t, data[i], b.Data, "block %d", i)
				assert.InDelta(t, 0, b.Metric, 1e-3, "block %d", i)
			}
		})
	}
}

func TestDecoderNoise(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	cfg := SubchannelConfig{Address: 40, Size: 8, Protection: 1}
	e := gog.Must(NewEncoder(ModeI, cfg))
	d := gog.Must(NewDecoder(ModeI, cfg))

	data := randomBlocks(rng, 24, d.Params().OutputBytes())
	syms := encodeFrames(t, e, ModeI, data)
	for _, s := range syms {
		for i := range s.Soft {
			s.Soft[i] += float32(0.25 * rng.NormFloat64())
		}
	}
	blocks := decodeAll(t, d, syms)
	require.Len(t, blocks, 24-15)
	for i, b := range blocks {
		assert.Equal(t, data[i], b.Data, "block %d", i)
		assert.Greater(t, b.Metric, 0.0)
	}
}

func TestDecoderAcquisitionAndSharedFrame(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	cfgA := SubchannelConfig{Address: 0, Size: 12, Protection: 0}
	cfgB := SubchannelConfig{Address: 12, Size: 6, Protection: 2}
	eA := gog.Must(NewEncoder(ModeI, cfgA))
	eB := gog.Must(NewEncoder(ModeI, cfgB))
	dA := gog.Must(NewDecoder(ModeI, cfgA))
	dB := gog.Must(NewDecoder(ModeI, cfgB))

	dataA := randomBlocks(rng, 20, eA.Params().OutputBytes())
	dataB := randomBlocks(rng, 20, eB.Params().OutputBytes())
	symsA := encodeFrames(t, eA, ModeI, dataA)
	symsB := encodeFrames(t, eB, ModeI, dataB)
	for i := range symsA {
		for j, v := range symsB[i].Soft {
			symsA[i].Soft[j] += v
		}
	}
	// half a frame of noise before the first frame start
	var junk []Symbol
	for range 40 {
		junk = append(junk, Symbol{Soft: make([]float32, ModeI.SymbolLen()), Flag: 0})
	}
	syms := append(junk, symsA...)

	blocksA := decodeAll(t, dA, syms)
	blocksB := decodeAll(t, dB, syms)
	require.Len(t, blocksA, 5)
	require.Len(t, blocksB, 5)
	for i := range blocksA {
		assert.Equal(t, dataA[i], blocksA[i].Data)
		assert.Equal(t, dataB[i], blocksB[i].Data)
	}
}

func TestDecoderStaysFailed(t *testing.T) {
	d := gog.Must(NewDecoder(ModeI, SubchannelConfig{Size: 8, Protection: 1}))
	_, err := d.Push(Symbol{Soft: make([]float32, 10), Flag: FrameStartFlag})
	require.ErrorIs(t, err, ErrSizeMismatch)
	_, err = d.Push(Symbol{Soft: make([]float32, ModeI.SymbolLen()), Flag: FrameStartFlag})
	assert.ErrorIs(t, err, ErrSizeMismatch)
	assert.ErrorIs(t, d.Err(), ErrSizeMismatch)
}

func TestNewDecoderInvalid(t *testing.T) {
	tests := []struct {
		name string
		geo  FrameGeometry
		cfg  SubchannelConfig
	}{
		{"past CIF end", ModeI, SubchannelConfig{Address: 860, Size: 8, Protection: 1}},
		{"bad size", ModeI, SubchannelConfig{Size: 9, Protection: 1}},
		{"bad geometry", FrameGeometry{Carriers: 1}, SubchannelConfig{Size: 8, Protection: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(tt.geo, tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}
