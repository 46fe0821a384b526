package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"

	"github.com/jancona/dabmsc/msc"
)

// Emulator turns a byte stream into the symbol lanes a demodulator would
// produce for one sub-channel, optionally with additive white Gaussian noise.
type Emulator struct {
	geo     msc.FrameGeometry
	encoder *msc.Encoder
	writer  *msc.SymbolWriter
	rng     *rand.Rand
	sigma   float64

	Blocks  int // data blocks encoded
	Symbols int // symbols written
}

func NewEmulator(geo msc.FrameGeometry, sub msc.SubchannelConfig, w *msc.SymbolWriter, sigma float64, seed uint64) (*Emulator, error) {
	e, err := msc.NewEncoder(geo, sub)
	if err != nil {
		return nil, err
	}
	return &Emulator{
		geo:     geo,
		encoder: e,
		writer:  w,
		rng:     rand.New(rand.NewPCG(seed, seed^0x5DEECE66D)),
		sigma:   sigma,
	}, nil
}

// LeadIn writes n unflagged noise symbols, as seen before frame
// synchronization.
func (e *Emulator) LeadIn(n int) error {
	for range n {
		if err := e.write(msc.Symbol{Soft: make([]float32, e.geo.SymbolLen())}); err != nil {
			return err
		}
	}
	return nil
}

// Run encodes all of in, padding the last block with zeros, and then enough
// empty blocks to flush the time interleaver.
func (e *Emulator) Run(in io.Reader) error {
	size := e.encoder.Params().OutputBytes()
	var pending [][]byte
	flush := msc.InterleaveDepth - 1
	for eof := false; !eof || flush > 0; {
		block := make([]byte, size)
		if !eof {
			n, err := io.ReadFull(in, block)
			switch {
			case errors.Is(err, io.EOF):
				eof = true
				continue
			case errors.Is(err, io.ErrUnexpectedEOF):
				eof = true
			case err != nil:
				return fmt.Errorf("reading input: %w", err)
			}
			if n > 0 {
				e.Blocks++
			}
		} else {
			flush--
		}
		pending = append(pending, block)
		if len(pending) == e.geo.CIFs {
			if err := e.frame(pending); err != nil {
				return err
			}
			pending = pending[:0]
		}
	}
	if len(pending) > 0 {
		for len(pending) < e.geo.CIFs {
			pending = append(pending, make([]byte, size))
		}
		if err := e.frame(pending); err != nil {
			return err
		}
	}
	log.Printf("[INFO] Encoded %d blocks into %d symbols", e.Blocks, e.Symbols)
	return nil
}

func (e *Emulator) frame(blocks [][]byte) error {
	syms, err := e.encoder.EncodeFrame(blocks)
	if err != nil {
		return err
	}
	for _, s := range syms {
		if err := e.write(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emulator) write(s msc.Symbol) error {
	if e.sigma > 0 {
		for i := range s.Soft {
			s.Soft[i] += float32(e.sigma * e.rng.NormFloat64())
		}
	}
	e.Symbols++
	return e.writer.Write(s)
}
