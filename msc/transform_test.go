package msc

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/icza/gog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScale(t *testing.T) {
	f := []float32{1, -0.5, 0}
	Scale(f, 2)
	assert.Equal(t, []float32{2, -1, 0}, f)
	n := []int{3, -4}
	Scale(n, -1)
	assert.Equal(t, []int{-3, 4}, n)
}

func TestScaler(t *testing.T) {
	tests := []struct {
		name   string
		factor float32
		in     []Symbol
		want   []Symbol
	}{
		{"double", 2,
			[]Symbol{{Soft: []float32{1, -1}, Flag: 1}, {Soft: []float32{0.5}}},
			[]Symbol{{Soft: []float32{2, -2}, Flag: 1}, {Soft: []float32{1}}}},
		{"empty", 3, []Symbol{}, []Symbol{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := make(chan Symbol)
			s := NewScaler(sink, tt.factor)
			go func() {
				for _, v := range tt.in {
					sink <- v
				}
				close(sink)
			}()
			got := []Symbol{}
			for r := range s.Source() {
				got = append(got, r)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Scaler got %v, want %v", got, tt.want)
			}
			assert.NoError(t, s.Err())
		})
	}
}

func TestTransformStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	sink := make(chan int)
	tr := NewTransform(sink, func(i int) ([]int, error) {
		if i == 3 {
			return nil, boom
		}
		return []int{i, i}, nil
	}, 0)
	go func() {
		for i := range 10 {
			sink <- i
		}
		close(sink)
	}()
	var got []int
	for v := range tr.Source() {
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 0, 1, 1, 2, 2}, got)
	assert.ErrorIs(t, tr.Err(), boom)
}

func TestDecoderStream(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	cfg := SubchannelConfig{Address: 3, Size: 8, Protection: 1}
	e := gog.Must(NewEncoder(ModeII, cfg))
	d := gog.Must(NewDecoder(ModeII, cfg))
	data := randomBlocks(rng, 20, d.Params().OutputBytes())
	syms := encodeFrames(t, e, ModeII, data)

	in := make(chan Symbol)
	stream := d.Stream(in, 4)
	go func() {
		for _, s := range syms {
			in <- s
		}
		close(in)
	}()
	var got [][]byte
	for b := range stream.Source() {
		got = append(got, b.Data)
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, data[:5], got)
}
