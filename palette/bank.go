package palette

import (
	"io"

	"github.com/bodgit/ssbomberman/errs"
)

// DefaultBase is the amount subtracted from the scaled index to find a 4bpp
// record in the color file; the first 0x10 palette slots are not stored.
const DefaultBase = 0x200

// Bank maps a palette index to its raw record.
type Bank map[uint16][]byte

// ReadBank reads the palette record for each distinct index in indices from
// r, which holds size bytes. Records hold 2^bpp colors and index i starts at
// i*recordSize-base. Each index is read once, on first reference.
func ReadBank(r io.ReaderAt, size int64, indices []uint16, base int64, bpp int) (Bank, error) {
	colors, err := Colors(bpp)
	if err != nil {
		return nil, err
	}
	recordSize := colors << 1

	bank := make(Bank)
	for _, i := range indices {
		if _, ok := bank[i]; ok {
			continue
		}

		offset := int64(i)*int64(recordSize) - base
		if offset < 0 || offset+int64(recordSize) > size {
			return nil, &errs.OutOfRangeError{Source: "palette bank", Offset: offset, Value: int64(i), Limit: (size + base) / int64(recordSize)}
		}

		b := make([]byte, recordSize)
		if n, err := r.ReadAt(b, offset); n != recordSize {
			if err == nil || err == io.EOF {
				return nil, &errs.TruncatedDataError{Source: "palette bank", Offset: offset, Want: recordSize, Got: n}
			}
			return nil, err
		}
		bank[i] = b
	}
	return bank, nil
}

// LUT decodes the palette stored for index i.
func (b Bank) LUT(i uint16, bpp int) (LUT, error) {
	raw, ok := b[i]
	if !ok {
		return nil, &errs.OutOfRangeError{Source: "palette bank", Value: int64(i), Limit: int64(len(b))}
	}
	return Decode(raw, bpp)
}
