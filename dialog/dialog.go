/*
Package dialog implements the talk dialog container (TALKANM.BIN) decoder and
encoder.

The container is laid out as a stream of big-endian 16-bit glyph indices and
control codes, 0xff padding up to the next 4 byte boundary, an array of
opaque 12 byte records and finally a table holding the absolute address of
each record:

	[text: n * u16][padding][records: m * 3 * u32][pointers: m * u32]

Addresses are relative to where the container is loaded in memory rather
than to the start of the file, so the alignment is computed from the load
address too. Changing the length of the text moves every record and the
pointer table, which the encoder accounts for.
*/
package dialog

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/bodgit/ssbomberman/errs"
)

const (
	// DefaultBase is the load address of the container.
	DefaultBase = 0x2c0000
	// DefaultTextLen is the number of text entries in the shipped file.
	DefaultTextLen = 33634
	// DefaultRecords is the number of records in the shipped file.
	DefaultRecords = 778

	textSize    = 2
	recordSize  = 12
	pointerSize = 4
	alignment   = 4
	filler      = 0xff
)

// Record is one of the fixed-size records following the text. Its meaning
// isn't known so it is kept as is.
type Record [3]uint32

// Container is a decoded dialog container.
type Container struct {
	Text     []uint16
	Records  []Record
	Pointers []uint32
}

// Layout describes where each section of an encoded container lives.
// Addresses include the base load address, sizes don't.
type Layout struct {
	Base         int64
	TextSize     int
	Padding      int
	Records      int64
	PointerTable int64
	End          int64
	Length       int
}

// NewLayout computes the layout of a container loaded at base holding
// textLen text entries and n records.
func NewLayout(base uint32, textLen, n int) Layout {
	l := Layout{
		Base:     int64(base),
		TextSize: textLen * textSize,
	}
	if mod := (l.Base + int64(l.TextSize)) % alignment; mod > 0 {
		l.Padding = alignment - int(mod)
	}
	l.Records = l.Base + int64(l.TextSize+l.Padding)
	l.PointerTable = l.Records + int64(n*recordSize)
	l.End = l.PointerTable + int64(n*pointerSize)
	l.Length = int(l.End - l.Base)
	return l
}

// Record returns the address of record i.
func (l Layout) Record(i int) int64 {
	return l.Records + int64(i*recordSize)
}

func readFull(r io.Reader, b []byte) (int, error) {
	n, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// Decode reads a container loaded at base holding textLen text entries and n
// records from r.
func Decode(r io.Reader, base uint32, textLen, n int) (*Container, error) {
	if textLen < 0 || n < 0 {
		return nil, fmt.Errorf("dialog: invalid counts %d, %d", textLen, n)
	}

	l := NewLayout(base, textLen, n)
	b := make([]byte, l.Length)
	if got, err := readFull(r, b); err != nil {
		if err != io.ErrUnexpectedEOF {
			return nil, err
		}
		return nil, &errs.TruncatedDataError{Source: "dialog", Offset: int64(got), Want: l.Length, Got: got}
	}

	c := &Container{
		Text:     make([]uint16, textLen),
		Records:  make([]Record, n),
		Pointers: make([]uint32, n),
	}

	for i := range c.Text {
		c.Text[i] = binary.BigEndian.Uint16(b[i*textSize:])
	}

	records := b[l.TextSize+l.Padding:]
	for i := range c.Records {
		for j := range c.Records[i] {
			c.Records[i][j] = binary.BigEndian.Uint32(records[i*recordSize+j*4:])
		}
	}

	pointers := b[l.PointerTable-l.Base:]
	for i := range c.Pointers {
		c.Pointers[i] = binary.BigEndian.Uint32(pointers[i*pointerSize:])
	}

	return c, nil
}

// Check reports the first pointer that doesn't hold the address of its
// record for a container loaded at base.
func (c *Container) Check(base uint32) error {
	if len(c.Pointers) != len(c.Records) {
		return &errs.SizeMismatchError{Source: "dialog: pointer table", Want: len(c.Records), Got: len(c.Pointers)}
	}
	l := NewLayout(base, len(c.Text), len(c.Records))
	for i, p := range c.Pointers {
		if want := uint32(l.Record(i)); p != want {
			return fmt.Errorf("dialog: record %d: pointer %#x, want %#x", i, p, want)
		}
	}
	return nil
}

// Splice replaces the text entries in [start, end) with text.
func (c *Container) Splice(start, end int, text []uint16) error {
	if start < 0 || end < start || end > len(c.Text) {
		return &errs.OutOfRangeError{Source: "dialog: splice", Offset: int64(start), Value: int64(end), Limit: int64(len(c.Text) + 1)}
	}
	out := make([]uint16, 0, len(c.Text)-(end-start)+len(text))
	out = append(out, c.Text[:start]...)
	out = append(out, text...)
	out = append(out, c.Text[end:]...)
	c.Text = out
	return nil
}

// ASCII converts s to glyph indices; the glyph table matches ASCII for the
// printable range.
func ASCII(s string) ([]uint16, error) {
	text := make([]uint16, 0, len(s))
	for i, r := range s {
		if r >= utf8.RuneSelf {
			return nil, fmt.Errorf("dialog: non-ASCII character %q at byte %d", r, i)
		}
		text = append(text, uint16(r))
	}
	return text, nil
}
