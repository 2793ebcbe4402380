package pixel

import (
	"errors"
	"image/color"
	"testing"

	"github.com/bodgit/ssbomberman/errs"
	"github.com/bodgit/ssbomberman/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLUT(n int) palette.LUT {
	lut := make(palette.LUT, n)
	for i := range lut {
		lut[i] = color.RGBA{byte(i), byte(i + 1), byte(i + 2), 0xff}
	}
	return lut
}

func TestSize(t *testing.T) {
	tables := []struct {
		width, height, bpp int
		size               int
	}{
		{8, 2, 4, 8},
		{8, 2, 8, 16},
		{64, 40, 4, 1280},
	}

	for _, table := range tables {
		size, err := Size(table.width, table.height, table.bpp)
		require.Nil(t, err)
		assert.Equal(t, table.size, size)
	}

	_, err := Size(3, 1, 4)
	var sizeErr *errs.SizeMismatchError
	assert.True(t, errors.As(err, &sizeErr))

	_, err = Size(8, 8, 2)
	assert.Equal(t, errUnsupportedBPP, err)
}

func TestExpand4BPP(t *testing.T) {
	lut := testLUT(16)

	pix, err := Expand([]byte{0x1f}, lut, 2, 1, 4)
	require.Nil(t, err)
	assert.Equal(t, []byte{1, 2, 3, 15, 16, 17}, pix)
}

func TestExpand8BPP(t *testing.T) {
	lut := testLUT(256)

	pix, err := Expand([]byte{0x00, 0xff, 0x10, 0x01}, lut, 2, 2, 8)
	require.Nil(t, err)
	assert.Equal(t, []byte{0, 1, 2, 255, 0, 1, 16, 17, 18, 1, 2, 3}, pix)
}

func TestExpandErrors(t *testing.T) {
	_, err := Expand([]byte{0x12}, testLUT(16), 4, 1, 4)
	var truncErr *errs.TruncatedDataError
	require.True(t, errors.As(err, &truncErr))
	assert.Equal(t, 2, truncErr.Want)
	assert.Equal(t, 1, truncErr.Got)

	// A short LUT leaves index 15 without a color
	_, err = Expand([]byte{0x0f}, testLUT(8), 2, 1, 4)
	var rangeErr *errs.OutOfRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, int64(15), rangeErr.Value)

	// Index 16 can't appear at 4bpp but can at 8bpp
	_, err = Expand([]byte{0x10}, testLUT(16), 1, 1, 8)
	assert.True(t, errors.As(err, &rangeErr))
}

func TestRGB(t *testing.T) {
	pix, err := Expand([]byte{0x01, 0x23}, testLUT(16), 2, 2, 4)
	require.Nil(t, err)

	m, err := NewRGB(pix, 2, 2)
	require.Nil(t, err)
	assert.Equal(t, 2, m.Bounds().Dx())
	assert.Equal(t, 2, m.Bounds().Dy())
	assert.Equal(t, color.RGBA{0, 1, 2, 0xff}, m.At(0, 0))
	assert.Equal(t, color.RGBA{1, 2, 3, 0xff}, m.At(1, 0))
	assert.Equal(t, color.RGBA{2, 3, 4, 0xff}, m.At(0, 1))
	assert.Equal(t, color.RGBA{3, 4, 5, 0xff}, m.At(1, 1))
	assert.Equal(t, color.RGBA{}, m.At(2, 2))

	_, err = NewRGB(pix[1:], 2, 2)
	var sizeErr *errs.SizeMismatchError
	assert.True(t, errors.As(err, &sizeErr))
}
