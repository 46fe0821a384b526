package msc

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Soft is the type of a soft bit value.
type Soft interface {
	constraints.Float
}

// PuncturePattern holds one keep (true) or drop (false) decision per full
// rate codeword bit.
type PuncturePattern []bool

// Kept returns the number of bits that survive puncturing.
func (pp PuncturePattern) Kept() int {
	n := 0
	for _, k := range pp {
		if k {
			n++
		}
	}
	return n
}

// Depuncturer re-inserts the bits dropped by the transmitter.
type Depuncturer struct {
	pattern PuncturePattern
	kept    int
}

func NewDepuncturer(pattern PuncturePattern) *Depuncturer {
	return &Depuncturer{
		pattern: pattern,
		kept:    pattern.Kept(),
	}
}

// Depuncture expands a punctured codeword to full rate, filling dropped
// positions with the neutral value 0.
func (d *Depuncturer) Depuncture(punctured []float32) ([]float32, error) {
	return Depuncture(punctured, d.pattern, d.kept)
}

// Depuncture expands punctured to len(pattern) values. kept must be the
// number of true entries in pattern.
func Depuncture[T Soft](punctured []T, pattern PuncturePattern, kept int) ([]T, error) {
	if len(punctured) != kept {
		return nil, fmt.Errorf("%w: punctured codeword has %d bits, want %d", ErrSizeMismatch, len(punctured), kept)
	}
	out := make([]T, len(pattern))
	u := 0
	for i, keep := range pattern {
		if keep {
			out[i] = punctured[u]
			u++
		}
	}
	return out, nil
}

// Puncture drops the bits of a full rate codeword that pattern marks false.
func Puncture[T any](full []T, pattern PuncturePattern) ([]T, error) {
	if len(full) != len(pattern) {
		return nil, fmt.Errorf("%w: codeword has %d bits, puncturing sequence %d", ErrSizeMismatch, len(full), len(pattern))
	}
	out := make([]T, 0, len(full))
	for i, keep := range pattern {
		if keep {
			out = append(out, full[i])
		}
	}
	return out, nil
}
