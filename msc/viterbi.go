package msc

import (
	"fmt"
	"math"
	"math/bits"
)

// SymbolTable maps each 4-bit output symbol to its BPSK reference point,
// (1-2*bit)/sqrt(2) per codeword bit, x0 first.
var SymbolTable = func() [ConvolutionSymbols][ConvolutionOutputs]float32 {
	var t [ConvolutionSymbols][ConvolutionOutputs]float32
	for o := range ConvolutionSymbols {
		for j := range ConvolutionOutputs {
			b := (o >> (ConvolutionOutputs - 1 - j)) & 1
			t[o][j] = float32((1 - 2*float64(b)) / math.Sqrt2)
		}
	}
	return t
}()

// SoftBit maps a hard bit to its BPSK soft value.
func SoftBit(b byte) float32 {
	if b&1 != 0 {
		return SymbolTable[ConvolutionSymbols-1][0]
	}
	return SymbolTable[0][0]
}

// erasureCost is the distance a neutral (depunctured) value adds to every
// branch, independent of the path.
var erasureCost = float64(SymbolTable[0][0]) * float64(SymbolTable[0][0])

// trellis holds next state and output symbol for every state/input pair.
type trellis struct {
	next   [ConvolutionStates][2]uint8
	output [ConvolutionStates][2]uint8
}

// The state holds the last six input bits, the most recent in bit 5.
func newTrellis() *trellis {
	var t trellis
	for s := range ConvolutionStates {
		for b := range 2 {
			reg := uint8(b<<(ConvolutionK-1) | s)
			var o uint8
			for _, g := range ConvolutionGenerators {
				o = o<<1 | uint8(bits.OnesCount8(reg&g)&1)
			}
			t.next[s][b] = reg >> 1
			t.output[s][b] = o
		}
	}
	return &t
}

// ConvolutionalEncode encodes unpacked bits (one bit per byte) and appends
// TailBits zero bits, returning 4*(len(in)+TailBits) unpacked codeword bits.
func ConvolutionalEncode(in []byte) []byte {
	t := newTrellis()
	out := make([]byte, 0, ConvolutionOutputs*(len(in)+TailBits))
	state := uint8(0)
	emit := func(b byte) {
		o := t.output[state][b&1]
		for j := ConvolutionOutputs - 1; j >= 0; j-- {
			out = append(out, (o>>j)&1)
		}
		state = t.next[state][b&1]
	}
	for _, b := range in {
		emit(b)
	}
	for range TailBits {
		emit(0)
	}
	return out
}

// ViterbiDecoder is a soft decision decoder for the rate 1/4, K=7 code using
// squared Euclidean branch metrics. The trellis is built once; a decoder may
// be reused for any number of blocks but not concurrently.
type ViterbiDecoder struct {
	trellis *trellis
	steps   int

	history     []uint64 // one survivor decision bit per state per step
	prevMetrics []float64
	currMetrics []float64
	branch      [ConvolutionSymbols]float64
}

// NewViterbiDecoder returns a decoder for blocks of steps trellis steps, that
// is steps-TailBits information bits.
func NewViterbiDecoder(steps int) *ViterbiDecoder {
	return &ViterbiDecoder{
		trellis:     newTrellis(),
		steps:       steps,
		history:     make([]uint64, steps),
		prevMetrics: make([]float64, ConvolutionStates),
		currMetrics: make([]float64, ConvolutionStates),
	}
}

// Decode returns the unpacked input bits (steps of them, tail included) of
// the path ending in state 0 with the smallest accumulated distance, and
// that distance.
func (v *ViterbiDecoder) Decode(softBits []float32) ([]byte, float64, error) {
	if len(softBits) != ConvolutionOutputs*v.steps {
		return nil, 0, fmt.Errorf("%w: full rate codeword has %d bits, want %d", ErrSizeMismatch, len(softBits), ConvolutionOutputs*v.steps)
	}
	for i := range v.prevMetrics {
		v.prevMetrics[i] = math.Inf(1)
	}
	v.prevMetrics[0] = 0

	for pos := range v.steps {
		v.decodeStep(softBits[pos*ConvolutionOutputs:(pos+1)*ConvolutionOutputs], pos)
	}
	return v.chainback(), v.prevMetrics[0], nil
}

func (v *ViterbiDecoder) decodeStep(sb []float32, pos int) {
	for o := range ConvolutionSymbols {
		var d float64
		for j, ref := range SymbolTable[o] {
			e := float64(sb[j] - ref)
			d += e * e
		}
		v.branch[o] = d
	}

	var hist uint64
	for ns := range ConvolutionStates {
		b := ns >> (ConvolutionK - 2)
		s0 := (ns << 1) & stateMask
		s1 := s0 | 1
		m0 := v.prevMetrics[s0] + v.branch[v.trellis.output[s0][b]]
		m1 := v.prevMetrics[s1] + v.branch[v.trellis.output[s1][b]]
		if m1 < m0 {
			hist |= 1 << ns
			v.currMetrics[ns] = m1
		} else {
			v.currMetrics[ns] = m0
		}
	}
	v.history[pos] = hist

	//swap
	v.prevMetrics, v.currMetrics = v.currMetrics, v.prevMetrics
}

func (v *ViterbiDecoder) chainback() []byte {
	out := make([]byte, v.steps)
	state := 0
	for pos := v.steps - 1; pos >= 0; pos-- {
		out[pos] = byte(state >> (ConvolutionK - 2))
		d := int(v.history[pos]>>state) & 1
		state = (state<<1)&stateMask | d
	}
	return out
}

// PruneTail drops the flush bits from a decoded block.
func PruneTail(decoded []byte, infoBits int) ([]byte, error) {
	if len(decoded) != infoBits+TailBits {
		return nil, fmt.Errorf("%w: decoded block has %d bits, want %d", ErrSizeMismatch, len(decoded), infoBits+TailBits)
	}
	return decoded[:infoBits], nil
}
