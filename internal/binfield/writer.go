package binfield

import "encoding/binary"

// Writer appends big-endian fields to a growable buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with capacity for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the written bytes. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) PutUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) PutUint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *Writer) PutUint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

// PutBytes appends p verbatim.
func (w *Writer) PutBytes(p []byte) {
	w.buf = append(w.buf, p...)
}

// PutZeros appends n zero bytes.
func (w *Writer) PutZeros(n int) {
	for ; n > 0; n-- {
		w.buf = append(w.buf, 0)
	}
}

// PutFixed appends p into a window of exactly n bytes, zero-padding the tail.
// It returns false without writing anything if p does not fit.
func (w *Writer) PutFixed(p []byte, n int) bool {
	if len(p) > n {
		return false
	}
	w.buf = append(w.buf, p...)
	w.PutZeros(n - len(p))
	return true
}
