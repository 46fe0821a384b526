package msc

import (
	"testing"

	"github.com/icza/gog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderFrameLayout(t *testing.T) {
	cfg := SubchannelConfig{Address: 2, Size: 8, Protection: 1}
	e := gog.Must(NewEncoder(ModeII, cfg))
	syms, err := e.EncodeFrame([][]byte{make([]byte, e.Params().OutputBytes())})
	require.NoError(t, err)
	require.Len(t, syms, ModeII.SymbolsPerFrame())

	assert.Equal(t, FrameStartFlag, syms[0].Flag)
	for i, s := range syms {
		assert.Len(t, s.Soft, ModeII.SymbolLen())
		if i > 0 {
			assert.Zero(t, s.Flag)
		}
		if i < ModeII.FICSymbols {
			assert.Equal(t, make([]float32, ModeII.SymbolLen()), s.Soft)
		}
	}
	// sub-channel lies within the first MSC symbol of 768 values
	msc := syms[ModeII.FICSymbols].Soft
	assert.Equal(t, make([]float32, 128), msc[:128])
	assert.Equal(t, make([]float32, 768-128-512), msc[128+512:])
}

func TestEncoderErrors(t *testing.T) {
	_, err := NewEncoder(ModeI, SubchannelConfig{Address: 860, Size: 8, Protection: 1})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	e := gog.Must(NewEncoder(ModeI, SubchannelConfig{Size: 8, Protection: 1}))
	_, err = e.EncodeBlock(make([]byte, 23))
	assert.ErrorIs(t, err, ErrSizeMismatch)
	_, err = e.EncodeFrame(make([][]byte, 3))
	assert.ErrorIs(t, err, ErrSizeMismatch)
	_, err = e.Frame([][]float32{nil, nil, nil, nil})
	assert.ErrorIs(t, err, ErrSizeMismatch)
}
