/*
Package errs defines the error types shared by the asset codecs.

Each type records which source and offset triggered it so a caller can report
exactly which file, record or entry was at fault. Use errors.As to match them
through any wrapping.
*/
package errs

import "fmt"

// TruncatedDataError is returned when a source holds fewer bytes than a
// declared structure needs.
type TruncatedDataError struct {
	Source string
	Offset int64
	Want   int
	Got    int
}

func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf("%s: truncated data at offset %#x: want %d bytes, got %d", e.Source, e.Offset, e.Want, e.Got)
}

// OutOfRangeError is returned when a computed file offset or palette index
// falls outside its valid bounds.
type OutOfRangeError struct {
	Source string
	Offset int64
	Value  int64
	Limit  int64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: value %#x at offset %#x out of range [0, %#x)", e.Source, e.Value, e.Offset, e.Limit)
}

// SizeMismatchError is returned when a buffer length doesn't match the
// declared dimensions.
type SizeMismatchError struct {
	Source string
	Want   int
	Got    int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%s: size mismatch: want %d, got %d", e.Source, e.Want, e.Got)
}
