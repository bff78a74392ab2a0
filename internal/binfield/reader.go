// Package binfield reads and writes big-endian fixed-width fields in flat byte buffers.
//
// It knows nothing about the containers built on top of it: callers supply the
// offsets, and every access is bounds-checked so a malformed offset table surfaces
// as an error instead of a panic.
package binfield

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a field does not fit inside the buffer.
var ErrOutOfRange = errors.New("field out of range")

// RangeError describes a field access that fell outside the buffer.
type RangeError struct {
	Offset int
	Length int
	Size   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: [%d, %d) exceeds buffer of %d bytes", ErrOutOfRange, e.Offset, e.Offset+e.Length, e.Size)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// Reader provides big-endian field access over an immutable byte slice.
type Reader struct {
	buf []byte
}

// NewReader wraps buf. The buffer is never modified.
func NewReader(buf []byte) Reader {
	return Reader{buf: buf}
}

// Len returns the size of the underlying buffer.
func (r Reader) Len() int {
	return len(r.buf)
}

func (r Reader) window(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off > len(r.buf) || n > len(r.buf)-off {
		return nil, &RangeError{Offset: off, Length: n, Size: len(r.buf)}
	}
	return r.buf[off : off+n], nil
}

// Uint8 reads one byte at off.
func (r Reader) Uint8(off int) (uint8, error) {
	b, err := r.window(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads a big-endian uint16 at off.
func (r Reader) Uint16(off int) (uint16, error) {
	b, err := r.window(off, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Int16 reads a big-endian two's-complement int16 at off.
func (r Reader) Int16(off int) (int16, error) {
	v, err := r.Uint16(off)
	return int16(v), err
}

// Uint32 reads a big-endian uint32 at off.
func (r Reader) Uint32(off int) (uint32, error) {
	b, err := r.window(off, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Int32 reads a big-endian two's-complement int32 at off.
func (r Reader) Int32(off int) (int32, error) {
	v, err := r.Uint32(off)
	return int32(v), err
}

// Bytes returns a copy of the n bytes starting at off.
func (r Reader) Bytes(off, n int) ([]byte, error) {
	b, err := r.window(off, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Slice returns a copy of the half-open range [start, end).
// An inverted range is reported as out of range.
func (r Reader) Slice(start, end int) ([]byte, error) {
	if end < start {
		return nil, &RangeError{Offset: start, Length: end - start, Size: len(r.buf)}
	}
	return r.Bytes(start, end-start)
}
