package dialog

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"
	"log"
	"math"
)

// Encoder writes containers loaded at Base.
type Encoder struct {
	Base   uint32
	logger *log.Logger
}

// NewEncoder returns an Encoder for a container loaded at base. Warnings are
// written to logger, which may be nil.
func NewEncoder(base uint32, logger *log.Logger) *Encoder {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Encoder{
		Base:   base,
		logger: logger,
	}
}

// Encode writes text and records to w followed by a freshly computed pointer
// table. The returned Layout holds both the address of the pointer table,
// which the index file must be patched with, and the total length written.
func (e *Encoder) Encode(w io.Writer, text []uint16, records []Record) (Layout, error) {
	l := NewLayout(e.Base, len(text), len(records))
	if l.PointerTable > math.MaxUint32 {
		e.logger.Printf("warning: pointer table at %#x, addresses past %#x wrap to 32 bits", l.PointerTable, uint32(math.MaxUint32))
	}

	b := new(bytes.Buffer)
	b.Grow(l.Length)

	// Write out text
	if err := binary.Write(b, binary.BigEndian, text); err != nil {
		return Layout{}, err
	}
	// Pad to the next 4 byte boundary with 0xff's
	if _, err := b.Write(bytes.Repeat([]byte{filler}, l.Padding)); err != nil {
		return Layout{}, err
	}

	// Write out records, noting where each one starts
	pointers := make([]uint32, len(records))
	for i, r := range records {
		pointers[i] = uint32(l.Record(i))
		if err := binary.Write(b, binary.BigEndian, r); err != nil {
			return Layout{}, err
		}
	}

	// Write out the pointer table
	if err := binary.Write(b, binary.BigEndian, pointers); err != nil {
		return Layout{}, err
	}

	if _, err := w.Write(b.Bytes()); err != nil {
		return Layout{}, err
	}

	return l, nil
}

// Encode writes c to w for a container loaded at base. The pointers in c are
// ignored and replaced with the recomputed ones.
func Encode(w io.Writer, c *Container, base uint32) (Layout, error) {
	l, err := NewEncoder(base, nil).Encode(w, c.Text, c.Records)
	if err != nil {
		return Layout{}, err
	}
	c.Pointers = make([]uint32, len(c.Records))
	for i := range c.Pointers {
		c.Pointers[i] = uint32(l.Record(i))
	}
	return l, nil
}
