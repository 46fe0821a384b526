package msc

import (
	"fmt"
)

// SubchannelConfig selects one sub-channel of the MSC. It is fixed for the
// lifetime of a decoder.
type SubchannelConfig struct {
	Address    int  // start address in CUs
	Size       int  // size in CUs
	Protection int  // EEP protection level index, 0..3 for 1-x..4-x
	OptionB    bool // use the EEP-B profiles instead of EEP-A
}

func (c SubchannelConfig) String() string {
	opt := "A"
	if c.OptionB {
		opt = "B"
	}
	return fmt.Sprintf("address=%d size=%d protection=%d-%s", c.Address, c.Size, c.Protection+1, opt)
}

// Parameters holds everything derived from a SubchannelConfig that the
// decoding stages need.
type Parameters struct {
	N            int // bit rate multiple
	L1, L2       int // number of 128 bit blocks punctured with PI1 and PI2
	PI1, PI2     int // puncturing vector numbers
	InfoBits     int // information bits per CIF (msc_I)
	PuncturedLen int // soft bits of the sub-channel per CIF
	ConvLen      int // full rate codeword length, 4*InfoBits + 24
	TailBits     int
	Puncturing   PuncturePattern // keep/drop decision for each full rate bit
}

// OutputBytes is the size of one decoded output block.
func (p Parameters) OutputBytes() int {
	return p.InfoBits / 8
}

// BitRate is the sub-channel bit rate in kbit/s.
func (p Parameters) BitRate() int {
	return p.InfoBits / 24
}

// DeriveParameters computes the sizing and puncturing of a sub-channel from
// the equal error protection tables.
func DeriveParameters(cfg SubchannelConfig) (Parameters, error) {
	var p Parameters
	if cfg.Protection < 0 || cfg.Protection > 3 {
		return p, fmt.Errorf("%w: protection level index %d not in 0..3", ErrInvalidConfiguration, cfg.Protection)
	}
	profile := eepA[cfg.Protection]
	if cfg.OptionB {
		profile = eepB[cfg.Protection]
	}
	if cfg.Size <= 0 || cfg.Size%profile.multiple != 0 {
		return p, fmt.Errorf("%w: size %d CUs is not a positive multiple of %d (%s)",
			ErrInvalidConfiguration, cfg.Size, profile.multiple, cfg)
	}
	p.N = cfg.Size / profile.multiple

	if !cfg.OptionB && p.N == 1 && cfg.Protection == 1 {
		p.L1, p.PI1 = exceptionL1, exceptionPI1
		p.L2, p.PI2 = exceptionL2, exceptionPI2
	} else {
		p.L1, p.PI1 = profile.l1(p.N), profile.pi1
		p.L2, p.PI2 = profile.l2(p.N), profile.pi2
	}
	if p.L1 < 0 || p.L2 < 0 || p.L1+p.L2 == 0 {
		return p, fmt.Errorf("%w: no puncturing blocks for %s", ErrInvalidConfiguration, cfg)
	}

	p.InfoBits = BitsPerBlock * (p.L1 + p.L2)
	p.TailBits = TailBits
	p.ConvLen = ConvolutionOutputs*p.InfoBits + ConvolutionOutputs*TailBits
	p.PuncturedLen = p.L1*SubBlocksPerBlock*PuncturingVectorOnes(p.PI1) +
		p.L2*SubBlocksPerBlock*PuncturingVectorOnes(p.PI2) + tailVectorBits/2

	p.Puncturing = AssemblePuncturing(p.L1, p.PI1, p.L2, p.PI2)
	if len(p.Puncturing) != p.ConvLen {
		return p, fmt.Errorf("%w: puncturing sequence of %d bits, codeword is %d", ErrInvalidConfiguration, len(p.Puncturing), p.ConvLen)
	}
	if kept := p.Puncturing.Kept(); kept != p.PuncturedLen {
		return p, fmt.Errorf("%w: puncturing keeps %d bits, table gives %d", ErrInvalidConfiguration, kept, p.PuncturedLen)
	}
	if p.PuncturedLen != cfg.Size*CUBits {
		return p, fmt.Errorf("%w: punctured codeword of %d bits does not fill %d CUs", ErrInvalidConfiguration, p.PuncturedLen, cfg.Size)
	}
	return p, nil
}

// AssemblePuncturing builds the full puncturing sequence: l1 blocks of four
// PI1 vectors, l2 blocks of four PI2 vectors and the tail vector.
func AssemblePuncturing(l1, pi1, l2, pi2 int) PuncturePattern {
	pp := make(PuncturePattern, 0, (l1+l2)*SubBlocksPerBlock*32+tailVectorBits)
	for range l1 * SubBlocksPerBlock {
		pp = appendVector(pp, puncturingVectors[pi1], 32)
	}
	for range l2 * SubBlocksPerBlock {
		pp = appendVector(pp, puncturingVectors[pi2], 32)
	}
	return appendVector(pp, puncturingTailVector, tailVectorBits)
}

func appendVector(pp PuncturePattern, v uint32, n int) PuncturePattern {
	for i := n - 1; i >= 0; i-- {
		pp = append(pp, (v>>i)&1 != 0)
	}
	return pp
}
