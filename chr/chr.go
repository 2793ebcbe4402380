/*
Package chr decodes the talk portrait image data file (TALKCHR.BIN).

The file is the concatenation of raw indexed pixel blocks, one per entry in
the index file's descriptor table, in the same order and with no headers or
padding. The block size follows from the descriptor's dimensions so the
offset of each image is the sum of the sizes of the images before it.
*/
package chr

import (
	"fmt"
	"io"

	"github.com/bodgit/ssbomberman/errs"
	"github.com/bodgit/ssbomberman/index"
	"github.com/bodgit/ssbomberman/palette"
	"github.com/bodgit/ssbomberman/pixel"
)

// DefaultBPP is the pixel depth of the talk portraits.
const DefaultBPP = 4

// Image is one decoded portrait.
type Image struct {
	Entry      int
	Offset     int64
	Size       int
	Descriptor index.Descriptor
	Palette    uint16
	*pixel.RGB
}

// Decoder turns raw pixel blocks into images using the index tables and
// palette bank.
type Decoder struct {
	Table *index.Table
	Bank  palette.Bank
	BPP   int
}

// NewDecoder returns a Decoder for 4bpp images.
func NewDecoder(table *index.Table, bank palette.Bank) *Decoder {
	return &Decoder{
		Table: table,
		Bank:  bank,
		BPP:   DefaultBPP,
	}
}

func readFull(r io.Reader, b []byte) (int, error) {
	n, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

func (d *Decoder) check() error {
	if len(d.Table.Descriptors) != len(d.Table.Palettes) {
		return &errs.SizeMismatchError{Source: "chr: palette table", Want: len(d.Table.Descriptors), Got: len(d.Table.Palettes)}
	}
	return nil
}

// Sizes returns the size in bytes of each image's pixel block.
func (d *Decoder) Sizes() ([]int, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	sizes := make([]int, len(d.Table.Descriptors))
	for i, desc := range d.Table.Descriptors {
		n, err := pixel.Size(int(desc.Width), int(desc.Height), d.BPP)
		if err != nil {
			return nil, fmt.Errorf("chr: entry %03d: %w", i, err)
		}
		sizes[i] = n
	}
	return sizes, nil
}

// Offsets returns the offset of each image's pixel block along with the total
// size of all blocks.
func (d *Decoder) Offsets() ([]int64, int64, error) {
	sizes, err := d.Sizes()
	if err != nil {
		return nil, 0, err
	}
	offsets := make([]int64, len(sizes))
	var total int64
	for i, n := range sizes {
		offsets[i] = total
		total += int64(n)
	}
	return offsets, total, nil
}

func (d *Decoder) expand(i int, offset int64, b []byte) (*Image, error) {
	desc := d.Table.Descriptors[i]

	lut, err := d.Bank.LUT(d.Table.Palettes[i], d.BPP)
	if err != nil {
		return nil, fmt.Errorf("chr: entry %03d: %w", i, err)
	}

	pix, err := pixel.Expand(b, lut, int(desc.Width), int(desc.Height), d.BPP)
	if err != nil {
		return nil, fmt.Errorf("chr: entry %03d: %w", i, err)
	}

	m, err := pixel.NewRGB(pix, int(desc.Width), int(desc.Height))
	if err != nil {
		return nil, err
	}

	return &Image{
		Entry:      i,
		Offset:     offset,
		Size:       len(b),
		Descriptor: desc,
		Palette:    d.Table.Palettes[i],
		RGB:        m,
	}, nil
}

// Decode reads every image from r in order, passing each one to fn. The
// number of images passed to fn is returned; if r runs out of data the batch
// stops at the first incomplete image with a TruncatedDataError.
func (d *Decoder) Decode(r io.Reader, fn func(*Image) error) (int, error) {
	sizes, err := d.Sizes()
	if err != nil {
		return 0, err
	}

	var offset int64
	for i, size := range sizes {
		b := make([]byte, size)
		if n, err := readFull(r, b); err != nil {
			if err != io.ErrUnexpectedEOF {
				return i, err
			}
			return i, fmt.Errorf("chr: entry %03d: %w", i, &errs.TruncatedDataError{Source: "chr", Offset: offset, Want: size, Got: n})
		}

		m, err := d.expand(i, offset, b)
		if err != nil {
			return i, err
		}
		if err := fn(m); err != nil {
			return i, err
		}
		offset += int64(size)
	}

	return len(sizes), nil
}

// DecodeAt decodes image i whose pixel block starts at offset in r. Offsets
// come from Offsets so images can be decoded in any order.
func (d *Decoder) DecodeAt(r io.ReaderAt, i int, offset int64) (*Image, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(d.Table.Descriptors) {
		return nil, &errs.OutOfRangeError{Source: "chr: entry", Value: int64(i), Limit: int64(len(d.Table.Descriptors))}
	}

	desc := d.Table.Descriptors[i]
	size, err := pixel.Size(int(desc.Width), int(desc.Height), d.BPP)
	if err != nil {
		return nil, fmt.Errorf("chr: entry %03d: %w", i, err)
	}

	b := make([]byte, size)
	if n, err := r.ReadAt(b, offset); n != size {
		if err == nil || err == io.EOF {
			return nil, fmt.Errorf("chr: entry %03d: %w", i, &errs.TruncatedDataError{Source: "chr", Offset: offset, Want: size, Got: n})
		}
		return nil, err
	}

	return d.expand(i, offset, b)
}
