// Package stream provides endian-aware cursors for walking the binary
// layout of asset containers. The Reader and Writer move strictly
// forward; the Writer additionally supports patching previously written
// fields, which the container header requires for its size fields.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrTruncatedInput is returned when a read would run past the end of
// the underlying buffer.
var ErrTruncatedInput = errors.New("stream: truncated input")

// maxStringLength bounds null-terminated string reads so a missing
// terminator in corrupt input cannot consume the whole buffer.
const maxStringLength = 1<<15 - 1

// Reader reads primitive values sequentially from a byte buffer.
type Reader struct {
	data  []byte
	pos   int
	order binary.ByteOrder
}

// NewReader creates a Reader over data. Containers store their leading
// header fields big-endian, so that is the initial byte order.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, order: binary.BigEndian}
}

// Order returns the current byte order.
func (r *Reader) Order() binary.ByteOrder {
	return r.order
}

// SetOrder switches the byte order for subsequent reads. The container
// header declares its own byte order partway through, so the order can
// change mid-stream.
func (r *Reader) SetOrder(order binary.ByteOrder) {
	r.order = order
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the total size of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.data)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// take returns the next n bytes and advances the cursor.
func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedInput, n, r.pos, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Bytes reads n raw bytes. The returned slice is a copy.
func (r *Reader) Bytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Skip advances the cursor by n bytes without interpreting them.
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

// SeekTo moves the cursor to an absolute position. The codec only ever
// seeks forward during a read pass.
func (r *Reader) SeekTo(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return fmt.Errorf("%w: seek to %d in %d byte buffer", ErrTruncatedInput, pos, len(r.data))
	}
	r.pos = pos
	return nil
}

// Uint8 reads one unsigned byte.
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads an unsigned 2 byte integer.
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// Uint32 reads an unsigned 4 byte integer.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// Uint64 reads an unsigned 8 byte integer.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

// Int16 reads a signed 2 byte integer.
func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

// Int32 reads a signed 4 byte integer.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// Int64 reads a signed 8 byte integer.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

// String reads a null-terminated UTF-8 string.
func (r *Reader) String() (string, error) {
	start := r.pos
	for i := 0; i < maxStringLength; i++ {
		b, err := r.take(1)
		if err != nil {
			return "", err
		}
		if b[0] == 0 {
			return string(r.data[start : r.pos-1]), nil
		}
	}
	return "", fmt.Errorf("unterminated string at offset %d", start)
}

// LenString reads a string prefixed with its 4 byte length.
func (r *Reader) LenString() (string, error) {
	n, err := r.Uint32()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("invalid utf-8 in string at offset %d", r.pos-len(b))
	}
	return string(b), nil
}

// Align advances the cursor to the next multiple of to. The skipped
// bytes are padding and are not inspected.
func (r *Reader) Align(to int) error {
	rem := r.pos % to
	if rem == 0 {
		return nil
	}
	return r.Skip(to - rem)
}

// Writer writes primitive values sequentially into a growing buffer.
// Previously written positions can be patched in place, which is how
// the header's size fields get their final values.
type Writer struct {
	data  []byte
	order binary.ByteOrder
}

// NewWriter creates an empty Writer. Like the Reader it starts out
// big-endian for the leading header fields.
func NewWriter() *Writer {
	return &Writer{order: binary.BigEndian}
}

// Order returns the current byte order.
func (w *Writer) Order() binary.ByteOrder {
	return w.order
}

// SetOrder switches the byte order for subsequent writes.
func (w *Writer) SetOrder(order binary.ByteOrder) {
	w.order = order
}

// Pos returns the current write position (the buffer length).
func (w *Writer) Pos() int {
	return len(w.data)
}

// Bytes returns the accumulated buffer. The slice aliases the Writer's
// storage and is only valid until the next write.
func (w *Writer) Bytes() []byte {
	return w.data
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.data = append(w.data, b...)
}

// WriteUint8 appends one unsigned byte.
func (w *Writer) WriteUint8(v uint8) {
	w.data = append(w.data, v)
}

// WriteUint16 appends an unsigned 2 byte integer.
func (w *Writer) WriteUint16(v uint16) {
	var buf [2]byte
	w.order.PutUint16(buf[:], v)
	w.data = append(w.data, buf[:]...)
}

// WriteUint32 appends an unsigned 4 byte integer.
func (w *Writer) WriteUint32(v uint32) {
	var buf [4]byte
	w.order.PutUint32(buf[:], v)
	w.data = append(w.data, buf[:]...)
}

// WriteUint64 appends an unsigned 8 byte integer.
func (w *Writer) WriteUint64(v uint64) {
	var buf [8]byte
	w.order.PutUint64(buf[:], v)
	w.data = append(w.data, buf[:]...)
}

// WriteInt16 appends a signed 2 byte integer.
func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

// WriteInt32 appends a signed 4 byte integer.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteInt64 appends a signed 8 byte integer.
func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// WriteString appends a null-terminated UTF-8 string.
func (w *Writer) WriteString(s string) {
	w.data = append(w.data, s...)
	w.data = append(w.data, 0)
}

// WriteLenString appends a string prefixed with its 4 byte length.
func (w *Writer) WriteLenString(s string) {
	w.WriteUint32(uint32(len(s)))
	w.data = append(w.data, s...)
}

// Align pads the buffer with zero bytes up to the next multiple of to.
func (w *Writer) Align(to int) {
	rem := len(w.data) % to
	if rem == 0 {
		return
	}
	w.data = append(w.data, make([]byte, to-rem)...)
}

// PatchUint32 overwrites a previously written 4 byte integer at pos
// using the Writer's current byte order.
func (w *Writer) PatchUint32(pos int, v uint32) error {
	if pos < 0 || pos+4 > len(w.data) {
		return fmt.Errorf("patch at %d outside %d byte buffer", pos, len(w.data))
	}
	w.order.PutUint32(w.data[pos:pos+4], v)
	return nil
}
