/*
Package pixel expands indexed-color pixel data into true-color RGB.

At 8 bits per pixel each byte is one palette index. At 4 bits per pixel each
byte packs two pixels, the high nibble being the leftmost.
*/
package pixel

import (
	"errors"
	"image"
	"image/color"

	"github.com/bodgit/ssbomberman/errs"
	"github.com/bodgit/ssbomberman/palette"
)

var errUnsupportedBPP = errors.New("pixel: unsupported bits per pixel")

func upperNibble(b byte) byte {
	return b >> 4
}

func lowerNibble(b byte) byte {
	return b & 0x0f
}

// Size returns the number of bytes of indexed data holding a width by height
// image.
func Size(width, height, bpp int) (int, error) {
	if bpp != 4 && bpp != 8 {
		return 0, errUnsupportedBPP
	}
	bits := width * height * bpp
	if bits%8 != 0 {
		return 0, &errs.SizeMismatchError{Source: "pixel", Want: bits + 8 - bits%8, Got: bits}
	}
	return bits >> 3, nil
}

// Expand converts src into width*height*3 bytes of row-major RGB using lut.
func Expand(src []byte, lut palette.LUT, width, height, bpp int) ([]byte, error) {
	n, err := Size(width, height, bpp)
	if err != nil {
		return nil, err
	}
	if len(src) < n {
		return nil, &errs.TruncatedDataError{Source: "pixel", Want: n, Got: len(src)}
	}

	limit := 1 << bpp
	if len(lut) < limit {
		limit = len(lut)
	}

	dst := make([]byte, 0, width*height*3)
	put := func(i int, index byte) error {
		if int(index) >= limit {
			return &errs.OutOfRangeError{Source: "pixel: corrupt palette", Offset: int64(i), Value: int64(index), Limit: int64(limit)}
		}
		c := lut[index]
		dst = append(dst, c.R, c.G, c.B)
		return nil
	}

	for i, b := range src[:n] {
		if bpp == 8 {
			if err := put(i, b); err != nil {
				return nil, err
			}
			continue
		}
		if err := put(i, upperNibble(b)); err != nil {
			return nil, err
		}
		if err := put(i, lowerNibble(b)); err != nil {
			return nil, err
		}
	}

	return dst, nil
}

// RGB is an in-memory image of packed 8-bit RGB pixels with no alpha, as
// returned by Expand.
type RGB struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

// NewRGB wraps pix, which must hold width*height*3 bytes.
func NewRGB(pix []byte, width, height int) (*RGB, error) {
	if len(pix) != width*height*3 {
		return nil, &errs.SizeMismatchError{Source: "pixel", Want: width * height * 3, Got: len(pix)}
	}
	return &RGB{
		Pix:    pix,
		Stride: width * 3,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// ColorModel implements image.Image.
func (p *RGB) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (p *RGB) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *RGB) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
	return color.RGBA{p.Pix[i], p.Pix[i+1], p.Pix[i+2], 0xff}
}
