package msc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// SymbolReader reads symbols from the two input lanes: little endian float32
// soft values (lane 0) and one flag byte per symbol (lane 1). Without a flag
// lane every SymbolsPerFrame'th symbol is flagged, starting with the first.
type SymbolReader struct {
	geo   FrameGeometry
	soft  *bufio.Reader
	flags *bufio.Reader
	buf   []byte
	count int
}

// NewSymbolReader returns a reader for geo. flags may be nil.
func NewSymbolReader(geo FrameGeometry, soft io.Reader, flags io.Reader) *SymbolReader {
	r := &SymbolReader{
		geo:  geo,
		soft: bufio.NewReaderSize(soft, 4*geo.SymbolLen()),
		buf:  make([]byte, 4*geo.SymbolLen()),
	}
	if flags != nil {
		r.flags = bufio.NewReader(flags)
	}
	return r
}

// Read returns the next symbol. It returns io.EOF at a clean end of lane 0
// and io.ErrUnexpectedEOF when a lane ends inside a symbol.
func (r *SymbolReader) Read() (Symbol, error) {
	var sym Symbol
	if _, err := io.ReadFull(r.soft, r.buf); err != nil {
		return sym, err
	}
	sym.Soft = make([]float32, r.geo.SymbolLen())
	if _, err := binary.Decode(r.buf, binary.LittleEndian, sym.Soft); err != nil {
		return sym, err
	}
	if r.flags != nil {
		f, err := r.flags.ReadByte()
		if errors.Is(err, io.EOF) {
			return sym, fmt.Errorf("flag lane ended at symbol %d: %w", r.count, io.ErrUnexpectedEOF)
		} else if err != nil {
			return sym, err
		}
		sym.Flag = f
	} else if r.count%r.geo.SymbolsPerFrame() == 0 {
		sym.Flag = FrameStartFlag
	}
	r.count++
	return sym, nil
}

// ReadAll sends symbols to out until a lane ends, then closes out. A clean
// end of input returns nil.
func (r *SymbolReader) ReadAll(out chan<- Symbol) error {
	defer close(out)
	for {
		sym, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
		out <- sym
	}
}

// SymbolWriter writes symbols in the lane format SymbolReader reads. flags
// may be nil to write lane 0 only.
type SymbolWriter struct {
	soft  io.Writer
	flags io.Writer
	buf   []byte
}

func NewSymbolWriter(soft io.Writer, flags io.Writer) *SymbolWriter {
	return &SymbolWriter{soft: soft, flags: flags}
}

func (w *SymbolWriter) Write(sym Symbol) error {
	var err error
	w.buf, err = binary.Append(w.buf[:0], binary.LittleEndian, sym.Soft)
	if err != nil {
		return err
	}
	if _, err := w.soft.Write(w.buf); err != nil {
		return err
	}
	if w.flags != nil {
		if _, err := w.flags.Write([]byte{sym.Flag}); err != nil {
			return err
		}
	}
	return nil
}
