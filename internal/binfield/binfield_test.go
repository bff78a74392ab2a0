package binfield

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderBigEndianFields(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0x12, 0x34, 0x56, 0x78, 0xFF, 0xFE, 0x80, 0x00, 0x00, 0x01})

	u16, err := r.Uint16(0)
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), u16)

	u32, err := r.Uint32(0)
	require.NoError(t, err)
	require.Equal(t, uint32(0x12345678), u32)

	i16, err := r.Int16(4)
	require.NoError(t, err)
	require.Equal(t, int16(-2), i16)

	i32, err := r.Int32(6)
	require.NoError(t, err)
	require.Equal(t, int32(-2147483647), i32)

	b, err := r.Uint8(9)
	require.NoError(t, err)
	require.Equal(t, uint8(1), b)
}

func TestReaderOutOfRange(t *testing.T) {
	t.Parallel()

	r := NewReader(make([]byte, 6))

	tests := []struct {
		name string
		fn   func() error
	}{
		{"uint32 past end", func() error { _, err := r.Uint32(4); return err }},
		{"uint16 negative offset", func() error { _, err := r.Uint16(-1); return err }},
		{"uint8 at len", func() error { _, err := r.Uint8(6); return err }},
		{"bytes overflow", func() error { _, err := r.Bytes(2, 5); return err }},
		{"inverted slice", func() error { _, err := r.Slice(4, 2); return err }},
		{"slice past end", func() error { _, err := r.Slice(0, 7); return err }},
	}
	for _, tc := range tests {
		err := tc.fn()
		require.Error(t, err, tc.name)
		require.True(t, errors.Is(err, ErrOutOfRange), tc.name)

		var re *RangeError
		require.ErrorAs(t, err, &re, tc.name)
		require.Equal(t, 6, re.Size, tc.name)
	}
}

func TestReaderBytesAreCopies(t *testing.T) {
	t.Parallel()

	src := []byte{1, 2, 3, 4}
	r := NewReader(src)

	got, err := r.Slice(1, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3}, got)

	got[0] = 9
	require.Equal(t, byte(2), src[1])

	empty, err := r.Slice(4, 4)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestWriterAppendsBigEndian(t *testing.T) {
	t.Parallel()

	w := NewWriter(16)
	w.PutUint16(0xBEEF)
	w.PutUint32(0x01020304)
	w.PutUint8(0x7F)
	w.PutBytes([]byte("ab"))
	w.PutZeros(2)

	require.Equal(t, []byte{0xBE, 0xEF, 1, 2, 3, 4, 0x7F, 'a', 'b', 0, 0}, w.Bytes())
	require.Equal(t, 11, w.Len())
}

func TestWriterPutFixed(t *testing.T) {
	t.Parallel()

	w := NewWriter(0)
	require.True(t, w.PutFixed([]byte("hi"), 4))
	require.Equal(t, []byte{'h', 'i', 0, 0}, w.Bytes())

	require.False(t, w.PutFixed([]byte("toolong"), 4))
	require.Equal(t, 4, w.Len())
}
