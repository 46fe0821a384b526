package msc

import (
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// Generic streaming transformation. The transform runs in its own goroutine;
// the first error it returns stops it, drains the sink and closes the source.
type Transform[I any, O any] struct {
	sink      chan I
	source    chan O
	transform func(I) ([]O, error)
	done      chan struct{}
	err       error
}

func NewTransform[I any, O any](sink chan I, transform func(I) ([]O, error), sourceSize int) *Transform[I, O] {
	ret := &Transform[I, O]{
		sink:      sink,
		source:    make(chan O, sourceSize),
		transform: transform,
		done:      make(chan struct{}),
	}
	go ret.handle()
	return ret
}

func (t *Transform[I, O]) Source() chan O {
	return t.source
}

// Err waits for the source to be closed and returns the error that closed
// it, or nil if the sink was closed.
func (t *Transform[I, O]) Err() error {
	<-t.done
	return t.err
}

func (t *Transform[I, O]) handle() {
	defer close(t.done)
	defer close(t.source)
	for in := range t.sink {
		out, err := t.transform(in)
		if err != nil {
			t.err = err
			// keep the producer from blocking
			go func() {
				for range t.sink {
				}
			}()
			return
		}
		for _, o := range out {
			t.source <- o
		}
	}
}

// Scale multiplies every value of v by factor in place.
func Scale[T Number](v []T, factor T) {
	for i := range v {
		v[i] *= factor
	}
}

// Scaler multiplies the soft values of every symbol by a factor, e.g. to
// bring demodulator output to the +-1/sqrt(2) range the decoder expects.
type Scaler struct {
	*Transform[Symbol, Symbol]
	factor float32
}

func NewScaler(sink chan Symbol, factor float32) Scaler {
	ret := Scaler{
		factor: factor,
	}
	ret.Transform = NewTransform(sink, ret.scale, 0)
	return ret
}

func (t Scaler) scale(sym Symbol) ([]Symbol, error) {
	Scale(sym.Soft, t.factor)
	return []Symbol{sym}, nil
}

// Stream runs the decoder on a channel of symbols. Blocks are delivered on
// Source() in order; Err() reports what stopped the stream.
func (d *Decoder) Stream(symbols chan Symbol, sourceSize int) *Transform[Symbol, Block] {
	return NewTransform(symbols, d.Push, sourceSize)
}
