package msc

import (
	"fmt"
	"slices"
)

// frameHistory is a ring of the last depth frames.
type frameHistory[T any] struct {
	frames [][]T
	head   int // slot the next frame is written to
	filled int
}

func newFrameHistory[T any](depth, length int) frameHistory[T] {
	h := frameHistory[T]{frames: make([][]T, depth)}
	for i := range h.frames {
		h.frames[i] = make([]T, length)
	}
	return h
}

func (h *frameHistory[T]) push(frame []T) {
	copy(h.frames[h.head], frame)
	h.head = (h.head + 1) % len(h.frames)
	if h.filled < len(h.frames) {
		h.filled++
	}
}

// ago returns the frame pushed d frames before the newest one.
func (h *frameHistory[T]) ago(d int) []T {
	n := len(h.frames)
	return h.frames[((h.head-1-d)%n+n)%n]
}

func validateScrambling(scrambling []int) error {
	if len(scrambling) == 0 {
		return fmt.Errorf("%w: empty interleaving vector", ErrInvalidConfiguration)
	}
	sorted := slices.Sorted(slices.Values(scrambling))
	for i, v := range sorted {
		if v != i {
			return fmt.Errorf("%w: interleaving vector %v is not a permutation", ErrInvalidConfiguration, scrambling)
		}
	}
	return nil
}

// TimeDeinterleaver reverses time interleaving over len(scrambling) frames.
// Bit i of the output comes from the frame received
// depth-1-scrambling[i%depth] frames earlier, so the first output appears
// once depth frames have been pushed.
type TimeDeinterleaver struct {
	length     int
	scrambling []int
	history    frameHistory[float32]
}

func NewTimeDeinterleaver(length int, scrambling []int) (*TimeDeinterleaver, error) {
	if err := validateScrambling(scrambling); err != nil {
		return nil, err
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: frame length %d", ErrInvalidConfiguration, length)
	}
	return &TimeDeinterleaver{
		length:     length,
		scrambling: slices.Clone(scrambling),
		history:    newFrameHistory[float32](len(scrambling), length),
	}, nil
}

// Latency is the number of frames pushed before the first output.
func (t *TimeDeinterleaver) Latency() int {
	return len(t.scrambling) - 1
}

// Push stores frame and returns the next deinterleaved frame. ok is false
// while the history is still filling.
func (t *TimeDeinterleaver) Push(frame []float32) ([]float32, bool, error) {
	if len(frame) != t.length {
		return nil, false, fmt.Errorf("%w: frame has %d soft bits, want %d", ErrSizeMismatch, len(frame), t.length)
	}
	t.history.push(frame)
	depth := len(t.scrambling)
	if t.history.filled < depth {
		return nil, false, nil
	}
	out := make([]float32, t.length)
	for i := range out {
		out[i] = t.history.ago(depth - 1 - t.scrambling[i%depth])[i]
	}
	return out, true, nil
}

// TimeInterleaver is the transmit side: bit i is delayed by
// scrambling[i%depth] frames. The history starts out as zeros.
type TimeInterleaver[T any] struct {
	length     int
	scrambling []int
	history    frameHistory[T]
}

func NewTimeInterleaver[T any](length int, scrambling []int) (*TimeInterleaver[T], error) {
	if err := validateScrambling(scrambling); err != nil {
		return nil, err
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: frame length %d", ErrInvalidConfiguration, length)
	}
	return &TimeInterleaver[T]{
		length:     length,
		scrambling: slices.Clone(scrambling),
		history:    newFrameHistory[T](len(scrambling), length),
	}, nil
}

func (t *TimeInterleaver[T]) Push(frame []T) ([]T, error) {
	if len(frame) != t.length {
		return nil, fmt.Errorf("%w: frame has %d bits, want %d", ErrSizeMismatch, len(frame), t.length)
	}
	t.history.push(frame)
	depth := len(t.scrambling)
	out := make([]T, t.length)
	for i := range out {
		out[i] = t.history.ago(t.scrambling[i%depth])[i]
	}
	return out, nil
}
