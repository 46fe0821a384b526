package msc

import "math/bits"

const (
	CUBits            = 64 // soft bits per capacity unit
	BitsPerBlock      = 32 // information bits covered by one 128 bit puncturing block
	SubBlocksPerBlock = 4  // puncturing vector applications per block
	TailBits          = 6  // zero bits appended to flush the encoder
	tailVectorBits    = 24 // coded tail bits, 4 * TailBits
)

const (
	ConvolutionK       = 7                       //constraint length K=7
	ConvolutionStates  = 1 << (ConvolutionK - 1) //number of states of the convolutional encoder
	ConvolutionOutputs = 4                       //rate 1/4
	ConvolutionSymbols = 1 << ConvolutionOutputs //distinct 4-bit output symbols
	stateMask          = ConvolutionStates - 1
)

// Generator polynomials, octal, x0..x3.
var ConvolutionGenerators = [ConvolutionOutputs]uint8{0133, 0171, 0145, 0133}

// Puncturing vectors PI_1..PI_24, 32 bits each, MSB first. Index 0 is unused so
// the table can be indexed by the vector number used in the protection tables.
var puncturingVectors = [25]uint32{
	0,
	0xC8888888, 0xC888C888, 0xC8C8C888, 0xC8C8C8C8,
	0xCCC8C8C8, 0xCCC8CCC8, 0xCCCCCCC8, 0xCCCCCCCC,
	0xECCCCCCC, 0xECCCECCC, 0xECECECCC, 0xECECECEC,
	0xEEECECEC, 0xEEECEEEC, 0xEEEEEEEC, 0xEEEEEEEE,
	0xFEEEEEEE, 0xFEEEFEEE, 0xFEFEFEEE, 0xFEFEFEFE,
	0xFFFEFEFE, 0xFFFEFFFE, 0xFFFFFFFE, 0xFFFFFFFF,
}

// Puncturing of the 24 coded tail bits.
const puncturingTailVector = uint32(0xCCCCCC)

// PuncturingVectorOnes returns the number of bits kept by puncturing vector PI_i.
func PuncturingVectorOnes(i int) int {
	if i < 1 || i >= len(puncturingVectors) {
		return 0
	}
	return bits.OnesCount32(puncturingVectors[i])
}

// Equal error protection profiles, indexed by protection level 0..3 (1-x..4-x).
type eepProfile struct {
	multiple int // sub-channel size in CUs per n
	l1       func(n int) int
	l2       func(n int) int
	pi1      int
	pi2      int
}

var eepA = [4]eepProfile{
	{12, func(n int) int { return 6*n - 3 }, func(n int) int { return 3 }, 24, 23},
	{8, func(n int) int { return 2*n - 3 }, func(n int) int { return 4*n + 3 }, 14, 13},
	{6, func(n int) int { return 6*n - 3 }, func(n int) int { return 3 }, 8, 7},
	{4, func(n int) int { return 4*n - 3 }, func(n int) int { return 2*n + 3 }, 3, 2},
}

var eepB = [4]eepProfile{
	{27, func(n int) int { return 24*n - 3 }, func(n int) int { return 3 }, 10, 9},
	{21, func(n int) int { return 24*n - 3 }, func(n int) int { return 3 }, 6, 5},
	{18, func(n int) int { return 24*n - 3 }, func(n int) int { return 3 }, 4, 3},
	{15, func(n int) int { return 24*n - 3 }, func(n int) int { return 3 }, 2, 1},
}

// 2-A at n=1 is tabulated separately; 2n-3 would be negative.
const (
	exceptionL1  = 5
	exceptionPI1 = 13
	exceptionL2  = 1
	exceptionPI2 = 12
)

// Time interleaving depth in CIFs and the per-position frame offsets.
const InterleaveDepth = 16

var interleaveSequence = []int{0, 8, 4, 12, 2, 10, 6, 14, 1, 9, 5, 13, 3, 11, 7, 15}

// InterleaveSequence returns a copy of the standard time interleaving vector.
func InterleaveSequence() []int {
	return append([]int(nil), interleaveSequence...)
}
