package msc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeDeinterleaverLatency(t *testing.T) {
	const length = 64
	d, err := NewTimeDeinterleaver(length, InterleaveSequence())
	require.NoError(t, err)
	assert.Equal(t, 15, d.Latency())

	// frame k holds the value k everywhere
	for k := range InterleaveDepth + 4 {
		frame := make([]float32, length)
		for i := range frame {
			frame[i] = float32(k)
		}
		out, ok, err := d.Push(frame)
		require.NoError(t, err)
		if k < InterleaveDepth-1 {
			assert.False(t, ok, "frame %d", k)
			continue
		}
		require.True(t, ok, "frame %d", k)
		for i, v := range out {
			want := float32(k - (15 - interleaveSequence[i%16]))
			if v != want {
				t.Fatalf("frame %d bit %d: got %v, want %v", k, i, v, want)
			}
		}
	}
}

func TestTimeInterleaveRoundTrip(t *testing.T) {
	const length = 48
	il, err := NewTimeInterleaver[float32](length, InterleaveSequence())
	require.NoError(t, err)
	dl, err := NewTimeDeinterleaver(length, InterleaveSequence())
	require.NoError(t, err)

	var sent, got [][]float32
	for k := range 40 {
		frame := ramp(length, float32(1000*k))
		sent = append(sent, frame)
		tx, err := il.Push(frame)
		require.NoError(t, err)
		out, ok, err := dl.Push(tx)
		require.NoError(t, err)
		if ok {
			got = append(got, out)
		}
	}
	require.Len(t, got, 40-15)
	assert.Equal(t, sent[:len(got)], got)
}

func TestTimeDeinterleaverErrors(t *testing.T) {
	_, err := NewTimeDeinterleaver(64, []int{0, 1, 1, 3})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	_, err = NewTimeDeinterleaver(64, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	_, err = NewTimeDeinterleaver(0, InterleaveSequence())
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	d, err := NewTimeDeinterleaver(64, InterleaveSequence())
	require.NoError(t, err)
	_, _, err = d.Push(make([]float32, 63))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}
