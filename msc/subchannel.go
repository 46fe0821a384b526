package msc

import "fmt"

// SubchannelSelector cuts the capacity units of one sub-channel out of a CIF.
type SubchannelSelector struct {
	cifBits int
	start   int
	end     int
}

func NewSubchannelSelector(geo FrameGeometry, address, size int) (*SubchannelSelector, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	if address < 0 || size <= 0 || address+size > geo.CapacityUnits() {
		return nil, fmt.Errorf("%w: sub-channel at CU %d size %d does not fit %d CUs",
			ErrInvalidConfiguration, address, size, geo.CapacityUnits())
	}
	return &SubchannelSelector{
		cifBits: geo.CIFBits,
		start:   address * CUBits,
		end:     (address + size) * CUBits,
	}, nil
}

// Select returns a copy of the sub-channel's soft bits.
func (s *SubchannelSelector) Select(cif CIF) ([]float32, error) {
	if len(cif.Soft) != s.cifBits {
		return nil, fmt.Errorf("%w: CIF %d has %d soft bits, want %d", ErrSizeMismatch, cif.Index, len(cif.Soft), s.cifBits)
	}
	return append([]float32(nil), cif.Soft[s.start:s.end]...), nil
}
