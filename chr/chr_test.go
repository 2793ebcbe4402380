package chr

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"github.com/bodgit/ssbomberman/errs"
	"github.com/bodgit/ssbomberman/index"
	"github.com/bodgit/ssbomberman/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDecoder() *Decoder {
	// Palette 0x10 is all red, palette 0x11 ramps blue with the index
	red := make([]byte, palette.RecordSize)
	ramp := make([]byte, palette.RecordSize)
	for i := 0; i < 16; i++ {
		red[i<<1+1] = 0x1f
		ramp[i<<1] = byte(i << 2)
	}

	return NewDecoder(&index.Table{
		Descriptors: []index.Descriptor{
			{Width: 8, Height: 8},
			{Width: 16, Height: 8},
			{Width: 8, Height: 4},
		},
		Palettes: []uint16{0x10, 0x11, 0x10},
	}, palette.Bank{
		0x10: red,
		0x11: ramp,
	})
}

func TestOffsets(t *testing.T) {
	d := testDecoder()

	sizes, err := d.Sizes()
	require.Nil(t, err)
	assert.Equal(t, []int{32, 64, 16}, sizes)

	offsets, total, err := d.Offsets()
	require.Nil(t, err)
	assert.Equal(t, []int64{0, 32, 96}, offsets)
	assert.Equal(t, int64(112), total)
}

func TestDecode(t *testing.T) {
	d := testDecoder()

	raw := make([]byte, 112)
	for i := range raw {
		raw[i] = byte(i)
	}
	r := bytes.NewReader(raw)

	var images []*Image
	n, err := d.Decode(r, func(m *Image) error {
		images = append(images, m)
		return nil
	})
	require.Nil(t, err)
	assert.Equal(t, 3, n)
	assert.Zero(t, r.Len())

	require.Len(t, images, 3)
	for i, want := range []struct {
		offset int64
		size   int
		width  int
		height int
	}{
		{0, 32, 8, 8},
		{32, 64, 16, 8},
		{96, 16, 8, 4},
	} {
		assert.Equal(t, i, images[i].Entry)
		assert.Equal(t, want.offset, images[i].Offset)
		assert.Equal(t, want.size, images[i].Size)
		assert.Equal(t, want.width, images[i].Bounds().Dx())
		assert.Equal(t, want.height, images[i].Bounds().Dy())
	}

	assert.Equal(t, color.RGBA{248, 0, 0, 0xff}, images[0].At(0, 0))
	// Byte 32 is 0x20 so the first two pixels are ramp[2] and ramp[0]
	assert.Equal(t, color.RGBA{0, 0, 16, 0xff}, images[1].At(0, 0))
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, images[1].At(1, 0))
	assert.Equal(t, uint16(0x11), images[1].Palette)
}

func TestDecodeTruncated(t *testing.T) {
	d := testDecoder()

	var seen int
	n, err := d.Decode(bytes.NewReader(make([]byte, 100)), func(*Image) error {
		seen++
		return nil
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, seen)

	var truncErr *errs.TruncatedDataError
	require.True(t, errors.As(err, &truncErr))
	assert.Equal(t, int64(96), truncErr.Offset)
	assert.Equal(t, 16, truncErr.Want)
	assert.Equal(t, 4, truncErr.Got)
}

func TestDecodeErrors(t *testing.T) {
	d := testDecoder()
	d.Table.Palettes = d.Table.Palettes[:2]

	_, err := d.Decode(bytes.NewReader(make([]byte, 112)), func(*Image) error { return nil })
	var sizeErr *errs.SizeMismatchError
	assert.True(t, errors.As(err, &sizeErr))

	d = testDecoder()
	d.Table.Palettes[1] = 0x20

	n, err := d.Decode(bytes.NewReader(make([]byte, 112)), func(*Image) error { return nil })
	assert.Equal(t, 1, n)
	var rangeErr *errs.OutOfRangeError
	assert.True(t, errors.As(err, &rangeErr))

	d = testDecoder()
	stop := errors.New("stop")
	n, err = d.Decode(bytes.NewReader(make([]byte, 112)), func(*Image) error { return stop })
	assert.Equal(t, 0, n)
	assert.Equal(t, stop, err)
}

func TestDecodeAt(t *testing.T) {
	d := testDecoder()

	raw := make([]byte, 112)
	for i := range raw {
		raw[i] = byte(i)
	}

	offsets, _, err := d.Offsets()
	require.Nil(t, err)

	// Decode out of order and compare against the sequential pass
	var sequential []*Image
	_, err = d.Decode(bytes.NewReader(raw), func(m *Image) error {
		sequential = append(sequential, m)
		return nil
	})
	require.Nil(t, err)

	for _, i := range []int{2, 0, 1} {
		m, err := d.DecodeAt(bytes.NewReader(raw), i, offsets[i])
		require.Nil(t, err)
		assert.Equal(t, sequential[i], m)
	}

	_, err = d.DecodeAt(bytes.NewReader(raw[:100]), 2, offsets[2])
	var truncErr *errs.TruncatedDataError
	assert.True(t, errors.As(err, &truncErr))

	_, err = d.DecodeAt(bytes.NewReader(raw), 3, 0)
	var rangeErr *errs.OutOfRangeError
	assert.True(t, errors.As(err, &rangeErr))
}
