// Package stream implements the sequential binary encoding used for save
// games, replays and command records. Every value is little-endian.
//
// Writer and Reader keep the first error they hit and turn every later call
// into a no-op, so callers can encode a whole structure and check Err once.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrCorrupt is returned when a stream ends early or holds impossible values.
var ErrCorrupt = errors.New("stream: corrupt data")

// maxLen bounds strings and lists read from untrusted input.
const maxLen = 1 << 24

// Writer encodes primitive values to an io.Writer.
type Writer struct {
	w   io.Writer
	buf [8]byte
	err error
}

// NewWriter creates a Writer on top of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	if _, err := w.w.Write(b); err != nil {
		w.err = fmt.Errorf("stream: write: %w", err)
	}
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

func (w *Writer) WriteUint16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

func (w *Writer) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

func (w *Writer) WriteUint64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	w.write(w.buf[:8])
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteString writes a uint32 length prefix followed by the bytes.
func (w *Writer) WriteString(s string) {
	w.WriteUint32(uint32(len(s)))
	w.write([]byte(s))
}

// WriteUint32Slice writes a length-prefixed list.
func (w *Writer) WriteUint32Slice(vs []uint32) {
	w.WriteUint32(uint32(len(vs)))
	for _, v := range vs {
		w.WriteUint32(v)
	}
}

// Reader decodes values written by Writer.
type Reader struct {
	r   io.Reader
	buf [8]byte
	err error
}

// NewReader creates a Reader on top of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

// Fail records err unless an earlier error is already set. Decoders use it
// to reject semantically invalid values.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) read(b []byte) bool {
	if r.err != nil {
		return false
	}
	if _, err := io.ReadFull(r.r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			r.err = fmt.Errorf("%w: unexpected end of stream", ErrCorrupt)
		} else {
			r.err = fmt.Errorf("stream: read: %w", err)
		}
		return false
	}
	return true
}

func (r *Reader) ReadUint8() uint8 {
	if !r.read(r.buf[:1]) {
		return 0
	}
	return r.buf[0]
}

func (r *Reader) ReadUint16() uint16 {
	if !r.read(r.buf[:2]) {
		return 0
	}
	return binary.LittleEndian.Uint16(r.buf[:2])
}

func (r *Reader) ReadUint32() uint32 {
	if !r.read(r.buf[:4]) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.buf[:4])
}

func (r *Reader) ReadUint64() uint64 {
	if !r.read(r.buf[:8]) {
		return 0
	}
	return binary.LittleEndian.Uint64(r.buf[:8])
}

func (r *Reader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}

func (r *Reader) ReadInt64() int64 {
	return int64(r.ReadUint64())
}

func (r *Reader) ReadBool() bool {
	switch r.ReadUint8() {
	case 0:
		return false
	case 1:
		return true
	default:
		r.Fail(fmt.Errorf("%w: invalid bool", ErrCorrupt))
		return false
	}
}

// ReadLen reads a uint32 length prefix and rejects implausible values.
func (r *Reader) ReadLen() int {
	n := r.ReadUint32()
	if n > maxLen {
		r.Fail(fmt.Errorf("%w: length %d too large", ErrCorrupt, n))
		return 0
	}
	return int(n)
}

func (r *Reader) ReadString() string {
	n := r.ReadLen()
	if n == 0 {
		return ""
	}
	b := make([]byte, n)
	if !r.read(b) {
		return ""
	}
	return string(b)
}

func (r *Reader) ReadUint32Slice() []uint32 {
	n := r.ReadLen()
	if r.err != nil {
		return nil
	}
	vs := make([]uint32, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		vs = append(vs, r.ReadUint32())
	}
	return vs
}
