/*
Package palette implements the TALKCOL palette decoder and the palette bank
built from the palette indices in the index file.

A palette is stored as 2^bpp big-endian 16-bit words, each packing three
5-bit channels as 0BBBBBGGGGGRRRRR. The 0x20 byte records used by 4bpp images
therefore hold 16 colors.
*/
package palette

import (
	"errors"
	"image/color"

	"github.com/bodgit/ssbomberman/errs"
)

// RecordSize is the size in bytes of a 4bpp palette record.
const RecordSize = 0x20

var errUnsupportedBPP = errors.New("palette: unsupported bits per pixel")

// LUT is an ordered color lookup table.
type LUT []color.RGBA

// Palette returns the LUT as a color.Palette.
func (l LUT) Palette() color.Palette {
	p := make(color.Palette, len(l))
	for i, c := range l {
		p[i] = c
	}
	return p
}

// Colors returns the number of colors in a palette for the given bits per
// pixel.
func Colors(bpp int) (int, error) {
	switch bpp {
	case 4, 8:
		return 1 << bpp, nil
	default:
		return 0, errUnsupportedBPP
	}
}

// Decode converts the raw palette record b into a LUT of 2^bpp colors. Each
// 5-bit channel is scaled to 0-248 by multiplying by 8.
func Decode(b []byte, bpp int) (LUT, error) {
	n, err := Colors(bpp)
	if err != nil {
		return nil, err
	}
	if len(b) != n<<1 {
		return nil, &errs.SizeMismatchError{Source: "palette", Want: n << 1, Got: len(b)}
	}

	lut := make(LUT, n)
	for i := range lut {
		hi, lo := b[i<<1], b[i<<1+1]
		lut[i] = color.RGBA{
			lo & 0x1f << 3,
			(hi&0x03<<3 | lo>>5) << 3,
			hi >> 2 & 0x1f << 3,
			0xff,
		}
	}
	return lut, nil
}
