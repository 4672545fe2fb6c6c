package wire

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// Writer encodes fixed-width primitives and length-prefixed strings onto a
// buffered sink. The first failure is kept and turns every later call into
// a no-op, so a whole record can be written before checking Err once.
type Writer struct {
	w     sink
	order binary.ByteOrder
	count int64
	err   error
}

// NewWriterSize wraps w. A *bytes.Buffer is written directly; anything else
// goes through a bufio.Writer of the given size.
func NewWriterSize(w io.Writer, size int) (*Writer, error) {
	var s sink
	switch dst := w.(type) {
	case nil:
		return nil, ErrNilIO
	case *bytes.Buffer:
		s = &bytesBufferWriterAdapter{dst}
	default:
		s = bufio.NewWriterSize(w, size)
	}
	return &Writer{w: s, order: Order}, nil
}

// NewWriter wraps w with the default buffer size.
func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterSize(w, 0)
}

// WithByteOrder switches the order of multi-byte integers and returns w.
func (w *Writer) WithByteOrder(order binary.ByteOrder) *Writer {
	w.order = order
	return w
}

func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Write implements io.Writer on top of the latched error.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil || len(p) == 0 {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// Flush pushes buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	if w.err == nil {
		w.setError(w.w.Flush())
	}
	return w.err
}

// Result flushes and reports how many bytes were produced.
func (w *Writer) Result() (int64, error) {
	err := w.Flush()
	return w.count, err
}

func (w *Writer) WriteUint8(v uint8) {
	if w.err != nil {
		return
	}
	if err := w.w.WriteByte(v); err != nil {
		w.err = err
		return
	}
	w.count++
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	var b uint8
	if v {
		b = 1
	}
	w.WriteUint8(b)
}

func (w *Writer) WriteUint32(v uint32) {
	var buf [4]byte
	w.order.PutUint32(buf[:], v)
	w.Write(buf[:])
}

func (w *Writer) WriteUint64(v uint64) {
	var buf [8]byte
	w.order.PutUint64(buf[:], v)
	w.Write(buf[:])
}

// WriteFloat64 writes the IEEE 754 bits of v.
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteString writes a uint32 byte count followed by the bytes of s.
func (w *Writer) WriteString(s string) {
	if w.err != nil {
		return
	}
	if uint64(len(s)) > math.MaxUint32 {
		w.err = ErrStringTooLong
		return
	}
	w.WriteUint32(uint32(len(s)))
	if len(s) == 0 || w.err != nil {
		return
	}
	n, err := w.w.WriteString(s)
	w.count += int64(n)
	w.setError(err)
}
