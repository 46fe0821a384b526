package msc

import (
	"fmt"
	"log"

	"github.com/sigurn/crc16"
)

// DAB+ superframe fire code, x^16+x^14+x^13+x^12+x^11+x^5+x^3+x^2+x+1
var firecodeParams = crc16.Params{
	Poly: 0x782F,
	Init: 0x0000,
	Name: "DAB+ fire code",
}

var firecodeTable = crc16.MakeTable(firecodeParams)

// LogicalFramesPerSuperframe is the number of logical frames in a DAB+
// audio superframe.
const LogicalFramesPerSuperframe = 5

// code and the bytes it covers
const firecodeLen = 11

// Firecode returns the fire code of the 9 bytes following the 2 byte code
// at the start of a logical frame.
func Firecode(frame []byte) (uint16, error) {
	if len(frame) < firecodeLen {
		return 0, fmt.Errorf("%w: fire code needs %d bytes, got %d", ErrSizeMismatch, firecodeLen, len(frame))
	}
	return crc16.Checksum(frame[2:firecodeLen], firecodeTable), nil
}

// CheckFirecode reports whether frame starts a DAB+ superframe.
func CheckFirecode(frame []byte) bool {
	fc, err := Firecode(frame)
	if err != nil {
		return false
	}
	return fc == uint16(frame[0])<<8|uint16(frame[1])
}

// FirecodeChecker checks the fire code of every logical frame of a DAB+
// sub-channel. The data itself passes through unchanged.
type FirecodeChecker struct {
	frameSize int
	frame     uint64
	Passed    uint64
	Failed    uint64
}

// NewFirecodeChecker returns a checker for a sub-channel of n*8 kbit/s.
func NewFirecodeChecker(n int) (*FirecodeChecker, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: bit rate multiple %d", ErrInvalidConfiguration, n)
	}
	return &FirecodeChecker{frameSize: 24 * n}, nil
}

// NewFirecodeCheckerFor sizes a checker from derived sub-channel parameters.
func NewFirecodeCheckerFor(p Parameters) (*FirecodeChecker, error) {
	return NewFirecodeChecker(p.InfoBits / 192)
}

func (f *FirecodeChecker) FrameSize() int {
	return f.frameSize
}

// Check checks every logical frame in data and returns the number that
// carried a valid fire code.
func (f *FirecodeChecker) Check(data []byte) (int, error) {
	if len(data)%f.frameSize != 0 {
		return 0, fmt.Errorf("%w: %d bytes are not whole %d byte logical frames", ErrSizeMismatch, len(data), f.frameSize)
	}
	ok := 0
	for i := 0; i < len(data); i += f.frameSize {
		if CheckFirecode(data[i : i+f.frameSize]) {
			log.Printf("[DEBUG] fire code OK at frame %d", f.frame)
			f.Passed++
			ok++
		} else {
			log.Printf("[DEBUG] fire code failed at frame %d", f.frame)
			f.Failed++
		}
		f.frame++
	}
	return ok, nil
}
