package msc

import "fmt"

// PRBS returns the first n bits of the energy dispersal sequence, generated
// by x^9 + x^5 + 1 from an all ones register. One bit per byte.
func PRBS(n int) []byte {
	out := make([]byte, n)
	reg := uint16(0x1FF)
	for i := range out {
		b := byte((reg>>4)^(reg>>8)) & 1
		out[i] = b
		reg = (reg<<1 | uint16(b)) & 0x1FF
	}
	return out
}

// EnergyDescrambler undoes energy dispersal on blocks of a fixed size. The
// sequence restarts with every block.
type EnergyDescrambler struct {
	prbs []byte
}

func NewEnergyDescrambler(infoBits int) *EnergyDescrambler {
	return &EnergyDescrambler{prbs: PRBS(infoBits)}
}

// Descramble XORs bits in place with the sequence and returns them.
func (e *EnergyDescrambler) Descramble(bits []byte) ([]byte, error) {
	if len(bits) != len(e.prbs) {
		return nil, fmt.Errorf("%w: block has %d bits, want %d", ErrSizeMismatch, len(bits), len(e.prbs))
	}
	for i := range bits {
		bits[i] ^= e.prbs[i]
	}
	return bits, nil
}
