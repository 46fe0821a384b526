package msc

import (
	"fmt"
	"log"
)

// Block is one decoded CIF worth of sub-channel data.
type Block struct {
	Data   []byte  // InfoBits/8 bytes
	Metric float64 // Viterbi path distance, 0 for a clean signal
	Seq    uint64  // counts blocks from 0
}

// Decoder runs the whole receive chain for one sub-channel: symbol
// selection, CIF repartitioning, sub-channel selection, time deinterleaving,
// depuncturing, Viterbi decoding, tail pruning and energy descrambling.
//
// A Decoder is not safe for concurrent use. Decoders for different
// sub-channels of the same signal share nothing but the FrameGeometry.
type Decoder struct {
	geo    FrameGeometry
	cfg    SubchannelConfig
	params Parameters

	selector      *SymbolSelector
	repartitioner *FrameRepartitioner
	subchannel    *SubchannelSelector
	deinterleaver *TimeDeinterleaver
	depuncturer   *Depuncturer
	viterbi       *ViterbiDecoder
	descrambler   *EnergyDescrambler

	// distance contributed by depunctured positions on every path
	erasureMetric float64

	seq    uint64
	failed error
}

func NewDecoder(geo FrameGeometry, cfg SubchannelConfig) (*Decoder, error) {
	params, err := DeriveParameters(cfg)
	if err != nil {
		return nil, err
	}
	d := &Decoder{
		geo:           geo,
		cfg:           cfg,
		params:        params,
		depuncturer:   NewDepuncturer(params.Puncturing),
		viterbi:       NewViterbiDecoder(params.InfoBits + params.TailBits),
		descrambler:   NewEnergyDescrambler(params.InfoBits),
		erasureMetric: erasureCost * float64(params.ConvLen-params.PuncturedLen),
	}
	if d.selector, err = NewSymbolSelector(geo); err != nil {
		return nil, err
	}
	if d.repartitioner, err = NewFrameRepartitioner(geo); err != nil {
		return nil, err
	}
	if d.subchannel, err = NewSubchannelSelector(geo, cfg.Address, cfg.Size); err != nil {
		return nil, err
	}
	if d.deinterleaver, err = NewTimeDeinterleaver(params.PuncturedLen, interleaveSequence); err != nil {
		return nil, err
	}
	log.Printf("[DEBUG] MSC decoder %s: n=%d L1=%d PI1=%d L2=%d PI2=%d, %d kbit/s, %d byte blocks",
		cfg, params.N, params.L1, params.PI1, params.L2, params.PI2, params.BitRate(), params.OutputBytes())
	return d, nil
}

func (d *Decoder) Params() Parameters {
	return d.params
}

func (d *Decoder) Geometry() FrameGeometry {
	return d.geo
}

// Push feeds one symbol through the chain and returns the blocks it
// completed, in order. After an error the decoder stays failed and returns
// that error from every later call.
func (d *Decoder) Push(sym Symbol) ([]Block, error) {
	if d.failed != nil {
		return nil, d.failed
	}
	blocks, err := d.push(sym)
	if err != nil {
		log.Printf("[ERROR] MSC decoder %s stopped: %v", d.cfg, err)
		d.failed = err
		return nil, err
	}
	return blocks, nil
}

func (d *Decoder) push(sym Symbol) ([]Block, error) {
	msym, ok, err := d.selector.Select(sym)
	if err != nil || !ok {
		return nil, err
	}
	cifs, err := d.repartitioner.Push(msym)
	if err != nil {
		return nil, err
	}
	var blocks []Block
	for _, cif := range cifs {
		frame, err := d.subchannel.Select(cif)
		if err != nil {
			return nil, err
		}
		frame, ok, err := d.deinterleaver.Push(frame)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		b, err := d.DecodeFrame(frame)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// DecodeFrame decodes one deinterleaved, punctured codeword of PuncturedLen
// soft bits into a block.
func (d *Decoder) DecodeFrame(punctured []float32) (Block, error) {
	full, err := d.depuncturer.Depuncture(punctured)
	if err != nil {
		return Block{}, err
	}
	decoded, metric, err := d.viterbi.Decode(full)
	if err != nil {
		return Block{}, err
	}
	info, err := PruneTail(decoded, d.params.InfoBits)
	if err != nil {
		return Block{}, err
	}
	info, err = d.descrambler.Descramble(info)
	if err != nil {
		return Block{}, err
	}
	data, err := PackBits(info)
	if err != nil {
		return Block{}, err
	}
	b := Block{
		Data:   data,
		Metric: max(metric-d.erasureMetric, 0),
		Seq:    d.seq,
	}
	d.seq++
	if b.Seq%250 == 0 {
		log.Printf("[DEBUG] Block %d path metric: %1.1f", b.Seq, b.Metric)
	}
	return b, nil
}

// Err returns the error that stopped the decoder, if any.
func (d *Decoder) Err() error {
	return d.failed
}

func (d *Decoder) String() string {
	return fmt.Sprintf("MSC decoder %s on %s", d.cfg, d.geo)
}
