package msc

import "fmt"

// CIF is one Common Interleaved Frame of soft bits and its position within
// the transmission frame.
type CIF struct {
	Soft  []float32
	Index int
}

// FrameRepartitioner reshapes the MSC symbols of a frame into CIFs.
type FrameRepartitioner struct {
	geo  FrameGeometry
	next int // expected MSC symbol index
	cif  int // index of the CIF being filled
	buf  []float32
}

func NewFrameRepartitioner(geo FrameGeometry) (*FrameRepartitioner, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	return &FrameRepartitioner{
		geo: geo,
		buf: make([]float32, 0, geo.CIFBits),
	}, nil
}

// Push appends one MSC symbol and returns the CIFs it completed.
func (r *FrameRepartitioner) Push(sym MSCSymbol) ([]CIF, error) {
	if sym.Index != r.next {
		return nil, fmt.Errorf("%w: MSC symbol %d out of order, want %d", ErrSizeMismatch, sym.Index, r.next)
	}
	if len(sym.Soft) != r.geo.SymbolLen() {
		return nil, fmt.Errorf("%w: MSC symbol has %d soft values, want %d", ErrSizeMismatch, len(sym.Soft), r.geo.SymbolLen())
	}
	var out []CIF
	in := sym.Soft
	for len(in) > 0 {
		n := min(len(in), r.geo.CIFBits-len(r.buf))
		r.buf = append(r.buf, in[:n]...)
		in = in[n:]
		if len(r.buf) == r.geo.CIFBits {
			out = append(out, CIF{Soft: r.buf, Index: r.cif})
			r.buf = make([]float32, 0, r.geo.CIFBits)
			r.cif++
		}
	}
	r.next++
	if r.next == r.geo.MSCSymbols {
		r.next, r.cif = 0, 0
	}
	return out, nil
}
