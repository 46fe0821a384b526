package msc

import "fmt"

// FrameGeometry describes the layout of one transmission frame after
// differential demodulation. It is shared read-only between decoders.
type FrameGeometry struct {
	Carriers   int // active carriers K; each symbol carries 2*K soft bits
	FICSymbols int // symbols carrying the Fast Information Channel
	MSCSymbols int // symbols carrying the Main Service Channel
	CIFBits    int // soft bits per Common Interleaved Frame
	CIFs       int // CIFs per transmission frame
}

// Standard transmission modes.
var (
	ModeI   = FrameGeometry{Carriers: 1536, FICSymbols: 3, MSCSymbols: 72, CIFBits: 55296, CIFs: 4}
	ModeII  = FrameGeometry{Carriers: 384, FICSymbols: 3, MSCSymbols: 72, CIFBits: 55296, CIFs: 1}
	ModeIII = FrameGeometry{Carriers: 192, FICSymbols: 8, MSCSymbols: 144, CIFBits: 55296, CIFs: 1}
	ModeIV  = FrameGeometry{Carriers: 768, FICSymbols: 3, MSCSymbols: 72, CIFBits: 55296, CIFs: 2}
)

// GeometryForMode returns the frame geometry of transmission mode 1..4.
func GeometryForMode(mode int) (FrameGeometry, error) {
	switch mode {
	case 1:
		return ModeI, nil
	case 2:
		return ModeII, nil
	case 3:
		return ModeIII, nil
	case 4:
		return ModeIV, nil
	}
	return FrameGeometry{}, fmt.Errorf("%w: transmission mode %d", ErrInvalidConfiguration, mode)
}

// SymbolLen is the number of soft values in one symbol vector.
func (g FrameGeometry) SymbolLen() int {
	return 2 * g.Carriers
}

// SymbolsPerFrame is the period of the symbol schedule.
func (g FrameGeometry) SymbolsPerFrame() int {
	return g.FICSymbols + g.MSCSymbols
}

// CapacityUnits is the number of CUs in one CIF.
func (g FrameGeometry) CapacityUnits() int {
	return g.CIFBits / CUBits
}

// Validate checks that the MSC symbols of a frame reshape exactly into CIFs of
// whole capacity units.
func (g FrameGeometry) Validate() error {
	if g.Carriers <= 0 || g.FICSymbols < 0 || g.MSCSymbols <= 0 || g.CIFBits <= 0 || g.CIFs <= 0 {
		return fmt.Errorf("%w: non-positive frame geometry %+v", ErrInvalidConfiguration, g)
	}
	if g.CIFBits%CUBits != 0 {
		return fmt.Errorf("%w: CIF of %d bits is not a whole number of %d bit CUs", ErrInvalidConfiguration, g.CIFBits, CUBits)
	}
	if g.MSCSymbols*g.SymbolLen() != g.CIFs*g.CIFBits {
		return fmt.Errorf("%w: %d MSC symbols of %d soft bits do not fill %d CIFs of %d bits",
			ErrInvalidConfiguration, g.MSCSymbols, g.SymbolLen(), g.CIFs, g.CIFBits)
	}
	return nil
}

func (g FrameGeometry) String() string {
	return fmt.Sprintf("K=%d FIC=%d MSC=%d CIF=%dx%d", g.Carriers, g.FICSymbols, g.MSCSymbols, g.CIFs, g.CIFBits)
}
