package records

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Bound returns s cut to fit a text field of width bytes. One byte of the
// width is reserved for the NUL terminator, and the cut never splits a UTF-8
// sequence, so Bound(s, w) always round-trips through a field of width w.
func Bound(s string, width int) string {
	limit := width - 1
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Writer lays out fixed-width fields into a record buffer in order.
type Writer struct {
	buf []byte
	off int
}

func NewWriter(buf []byte) *Writer {
	clear(buf)
	return &Writer{buf: buf}
}

// Text writes s as a NUL-padded field of width bytes, truncated with Bound.
func (w *Writer) Text(s string, width int) {
	copy(w.buf[w.off:w.off+width], Bound(s, width))
	w.off += width
}

func (w *Writer) Byte(b byte) {
	w.buf[w.off] = b
	w.off++
}

func (w *Writer) Bool(v bool) {
	if v {
		w.Byte(1)
		return
	}
	w.Byte(0)
}

func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

func (w *Writer) Int32(v int32) { w.Uint32(uint32(v)) }

func (w *Writer) Int64(v int64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:], uint64(v))
	w.off += 8
}

func (w *Writer) Float64(v float64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:], math.Float64bits(v))
	w.off += 8
}

// Reader is the decoding counterpart of Writer.
type Reader struct {
	buf []byte
	off int
}

func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Text reads a field of width bytes up to its first NUL.
func (r *Reader) Text(width int) string {
	field := r.buf[r.off : r.off+width]
	r.off += width
	for i, b := range field {
		if b == 0 {
			return string(field[:i])
		}
	}
	return string(field)
}

func (r *Reader) Byte() byte {
	b := r.buf[r.off]
	r.off++
	return b
}

func (r *Reader) Bool() bool { return r.Byte() != 0 }

func (r *Reader) Uint32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *Reader) Int32() int32 { return int32(r.Uint32()) }

func (r *Reader) Int64() int64 {
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return int64(v)
}

func (r *Reader) Float64() float64 {
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return math.Float64frombits(v)
}
