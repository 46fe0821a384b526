package msc

import (
	"fmt"
	"log"
)

// FrameStartFlag in the flag lane marks the first symbol of a transmission
// frame.
const FrameStartFlag byte = 1

// Symbol is one demodulated OFDM symbol: 2*Carriers soft values from lane 0
// and the matching flag byte from lane 1.
type Symbol struct {
	Soft []float32
	Flag byte
}

// FrameStart reports whether the symbol opens a transmission frame.
func (s Symbol) FrameStart() bool {
	return s.Flag&FrameStartFlag != 0
}

type SymbolClass int

const (
	ClassUnsynced SymbolClass = iota // before the first frame start
	ClassFIC
	ClassMSC
)

func (c SymbolClass) String() string {
	switch c {
	case ClassFIC:
		return "FIC"
	case ClassMSC:
		return "MSC"
	}
	return "unsynced"
}

// MSCSymbol is a symbol tagged with its position among the MSC symbols of
// its frame.
type MSCSymbol struct {
	Soft  []float32
	Index int
}

// SymbolSelector follows the frame schedule and passes on MSC symbols only.
type SymbolSelector struct {
	geo FrameGeometry
	pos int // position in the frame of the last symbol, -1 until acquired
}

func NewSymbolSelector(geo FrameGeometry) (*SymbolSelector, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	return &SymbolSelector{geo: geo, pos: -1}, nil
}

// Classify advances the schedule by one symbol and returns its class and its
// index within that class.
func (s *SymbolSelector) Classify(sym Symbol) (SymbolClass, int, error) {
	if len(sym.Soft) != s.geo.SymbolLen() {
		return ClassUnsynced, 0, fmt.Errorf("%w: symbol has %d soft values, want %d", ErrSizeMismatch, len(sym.Soft), s.geo.SymbolLen())
	}
	switch {
	case s.pos < 0:
		if !sym.FrameStart() {
			return ClassUnsynced, 0, nil
		}
		log.Printf("[DEBUG] Acquired frame start (%s)", s.geo)
		s.pos = 0
	default:
		s.pos = (s.pos + 1) % s.geo.SymbolsPerFrame()
		if s.pos == 0 && !sym.FrameStart() {
			return ClassUnsynced, 0, fmt.Errorf("%w: missing frame start after %d symbols", ErrSizeMismatch, s.geo.SymbolsPerFrame())
		}
		if s.pos != 0 && sym.FrameStart() {
			return ClassUnsynced, 0, fmt.Errorf("%w: early frame start at symbol %d", ErrSizeMismatch, s.pos)
		}
	}
	if s.pos < s.geo.FICSymbols {
		return ClassFIC, s.pos, nil
	}
	return ClassMSC, s.pos - s.geo.FICSymbols, nil
}

// Select returns the symbol as an MSCSymbol when it carries MSC data; ok is
// false for FIC symbols and for everything before acquisition.
func (s *SymbolSelector) Select(sym Symbol) (MSCSymbol, bool, error) {
	class, idx, err := s.Classify(sym)
	if err != nil || class != ClassMSC {
		return MSCSymbol{}, false, err
	}
	return MSCSymbol{Soft: sym.Soft, Index: idx}, true, nil
}
