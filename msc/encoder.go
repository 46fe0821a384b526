package msc

import (
	"fmt"
)

// Encoder is a reference transmitter for one sub-channel. It produces the
// symbol stream a Decoder with the same configuration expects, with FIC
// symbols and unused capacity units left at the neutral value.
type Encoder struct {
	geo         FrameGeometry
	cfg         SubchannelConfig
	params      Parameters
	prbs        []byte
	interleaver *TimeInterleaver[float32]
}

func NewEncoder(geo FrameGeometry, cfg SubchannelConfig) (*Encoder, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	params, err := DeriveParameters(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Address < 0 || cfg.Address+cfg.Size > geo.CapacityUnits() {
		return nil, fmt.Errorf("%w: sub-channel at CU %d size %d does not fit %d CUs",
			ErrInvalidConfiguration, cfg.Address, cfg.Size, geo.CapacityUnits())
	}
	il, err := NewTimeInterleaver[float32](params.PuncturedLen, interleaveSequence)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		geo:         geo,
		cfg:         cfg,
		params:      params,
		prbs:        PRBS(params.InfoBits),
		interleaver: il,
	}, nil
}

func (e *Encoder) Params() Parameters {
	return e.params
}

// EncodeBlock scrambles, encodes, punctures, maps and time interleaves one
// block of OutputBytes bytes, returning PuncturedLen soft bits.
func (e *Encoder) EncodeBlock(data []byte) ([]float32, error) {
	if len(data) != e.params.OutputBytes() {
		return nil, fmt.Errorf("%w: block has %d bytes, want %d", ErrSizeMismatch, len(data), e.params.OutputBytes())
	}
	bits := UnpackBits[byte](data)
	for i := range bits {
		bits[i] ^= e.prbs[i]
	}
	punctured, err := Puncture(ConvolutionalEncode(bits), e.params.Puncturing)
	if err != nil {
		return nil, err
	}
	soft := make([]float32, len(punctured))
	for i, b := range punctured {
		soft[i] = SoftBit(b)
	}
	return e.interleaver.Push(soft)
}

// Frame builds one transmission frame from CIFs encoded blocks.
func (e *Encoder) Frame(blocks [][]float32) ([]Symbol, error) {
	if len(blocks) != e.geo.CIFs {
		return nil, fmt.Errorf("%w: %d blocks for a frame of %d CIFs", ErrSizeMismatch, len(blocks), e.geo.CIFs)
	}
	msc := make([]float32, e.geo.CIFs*e.geo.CIFBits)
	for i, b := range blocks {
		if len(b) != e.params.PuncturedLen {
			return nil, fmt.Errorf("%w: encoded block has %d soft bits, want %d", ErrSizeMismatch, len(b), e.params.PuncturedLen)
		}
		copy(msc[i*e.geo.CIFBits+e.cfg.Address*CUBits:], b)
	}

	n := e.geo.SymbolLen()
	syms := make([]Symbol, 0, e.geo.SymbolsPerFrame())
	for range e.geo.FICSymbols {
		syms = append(syms, Symbol{Soft: make([]float32, n)})
	}
	for i := range e.geo.MSCSymbols {
		syms = append(syms, Symbol{Soft: msc[i*n : (i+1)*n]})
	}
	syms[0].Flag = FrameStartFlag
	return syms, nil
}

// EncodeFrame encodes CIFs blocks of data into one transmission frame.
func (e *Encoder) EncodeFrame(data [][]byte) ([]Symbol, error) {
	if len(data) != e.geo.CIFs {
		return nil, fmt.Errorf("%w: %d blocks for a frame of %d CIFs", ErrSizeMismatch, len(data), e.geo.CIFs)
	}
	blocks := make([][]float32, len(data))
	for i, d := range data {
		b, err := e.EncodeBlock(d)
		if err != nil {
			return nil, err
		}
		blocks[i] = b
	}
	return e.Frame(blocks)
}
