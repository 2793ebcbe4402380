/*
Package index reads the talk portrait tables held in the index file (VS.BIN).

Two parallel tables are stored at fixed offsets. The descriptor table holds an
8 byte record per image:

	offset size
	0      2    x scale
	2      2    y scale
	4      2    address
	6      1    width in units of 8 pixels
	7      1    height in pixels

The palette table holds a 4 byte record per image, the palette index being the
upper 12 bits of the first big-endian 16-bit word. Entry i of one table
describes the same image as entry i of the other.
*/
package index

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bodgit/ssbomberman/errs"
)

const (
	// DescriptorOffset is the offset of the descriptor table.
	DescriptorOffset = 0x1aab0
	// PaletteOffset is the offset of the palette index table.
	PaletteOffset = 0x1c410
	// DefaultEntries is the number of images described.
	DefaultEntries = 812

	descriptorSize = 8
	paletteSize    = 4
	widthUnit      = 8
)

// PointerOffsets are the offsets of the references to the dialog container's
// pointer table.
var PointerOffsets = []int64{0x22598, 0x2259c}

// Descriptor describes one image.
type Descriptor struct {
	ScaleX  uint16
	ScaleY  uint16
	Address uint16
	Width   uint32
	Height  uint32
}

// Table is the pair of parallel tables, aligned by entry.
type Table struct {
	Descriptors []Descriptor
	Palettes    []uint16
}

func readTable(r io.ReaderAt, source string, offset int64, entries, size int) ([]byte, error) {
	if entries < 0 {
		return nil, fmt.Errorf("%s: invalid entry count %d", source, entries)
	}

	b := make([]byte, entries*size)
	n, err := r.ReadAt(b, offset)
	if n == len(b) {
		return b, nil
	}
	if err == nil || err == io.EOF {
		return nil, &errs.TruncatedDataError{Source: source, Offset: offset + int64(n), Want: len(b), Got: n}
	}
	return nil, err
}

// ReadDescriptors reads entries image descriptors starting at offset.
func ReadDescriptors(r io.ReaderAt, offset int64, entries int) ([]Descriptor, error) {
	b, err := readTable(r, "index: descriptor table", offset, entries, descriptorSize)
	if err != nil {
		return nil, err
	}

	d := make([]Descriptor, entries)
	for i := range d {
		rec := b[i*descriptorSize:]
		d[i] = Descriptor{
			ScaleX:  binary.BigEndian.Uint16(rec[0:]),
			ScaleY:  binary.BigEndian.Uint16(rec[2:]),
			Address: binary.BigEndian.Uint16(rec[4:]),
			Width:   uint32(rec[6]) * widthUnit,
			Height:  uint32(rec[7]),
		}
	}
	return d, nil
}

// ReadPaletteIndices reads entries palette indices starting at offset.
func ReadPaletteIndices(r io.ReaderAt, offset int64, entries int) ([]uint16, error) {
	b, err := readTable(r, "index: palette table", offset, entries, paletteSize)
	if err != nil {
		return nil, err
	}

	p := make([]uint16, entries)
	for i := range p {
		p[i] = binary.BigEndian.Uint16(b[i*paletteSize:]) >> 4
	}
	return p, nil
}

// Read reads both tables.
func Read(r io.ReaderAt, descriptorOffset, paletteOffset int64, entries int) (*Table, error) {
	d, err := ReadDescriptors(r, descriptorOffset, entries)
	if err != nil {
		return nil, err
	}

	p, err := ReadPaletteIndices(r, paletteOffset, entries)
	if err != nil {
		return nil, err
	}

	return &Table{
		Descriptors: d,
		Palettes:    p,
	}, nil
}

// PatchPointer writes the big-endian address at each of offsets in w. The
// index file keeps two references to the dialog container's pointer table
// which must follow it whenever the container changes size.
func PatchPointer(w io.WriterAt, offsets []int64, address uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], address)
	for _, offset := range offsets {
		if _, err := w.WriteAt(b[:], offset); err != nil {
			return err
		}
	}
	return nil
}
