package msc

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// PackBits packs unpacked bits (one per element, low bit used), MSB first.
func PackBits[T constraints.Integer](bits []T) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits do not pack into whole bytes", ErrSizeMismatch, len(bits))
	}
	out := make([]byte, len(bits)/8)
	for i, b := range bits {
		out[i/8] |= byte(b&1) << (7 - i%8)
	}
	return out, nil
}

// UnpackBits expands bytes into one bit per element, MSB first.
func UnpackBits[T constraints.Integer](data []byte) []T {
	out := make([]T, 8*len(data))
	for i := range out {
		out[i] = T((data[i/8] >> (7 - i%8)) & 1)
	}
	return out
}
