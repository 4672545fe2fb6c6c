package wire

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Reader decodes what Writer encodes. Like Writer it keeps the first error
// and stops touching the source afterwards; destinations are left unchanged
// by a failed read.
type Reader struct {
	r         source
	order     binary.ByteOrder
	maxString uint32
	count     int64
	err       error
}

// NewReaderSize wraps r. In-memory sources and readers that already buffer
// are read directly; anything else gets a bufio.Reader of the given size,
// which bufio requires to be at least 16 bytes when set.
func NewReaderSize(r io.Reader, size int) (*Reader, error) {
	rd := &Reader{order: Order, maxString: DefaultMaxStringLen}
	switch src := r.(type) {
	case nil:
		return nil, ErrNilIO
	case *BytesReader:
		rd.r = src
	case *bytes.Reader:
		rd.r = src
	case *bytes.Buffer:
		rd.r = src
	case *bufio.Reader:
		rd.r = src
	default:
		if size != 0 && size < 16 {
			return nil, ErrSizeTooSmall
		}
		rd.r = bufio.NewReaderSize(r, size)
	}
	return rd, nil
}

// NewReader wraps r with the default buffer size.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderSize(r, 0)
}

// WithByteOrder switches the order of multi-byte integers and returns r.
func (r *Reader) WithByteOrder(order binary.ByteOrder) *Reader {
	r.order = order
	return r
}

// WithMaxStringLen caps the length prefix ReadString accepts and returns r.
func (r *Reader) WithMaxStringLen(n uint32) *Reader {
	r.maxString = n
	return r
}

func (r *Reader) Count() int64 { return r.count }
func (r *Reader) Err() error   { return r.err }

func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// truncated converts the EOF of a primitive cut short into
// io.ErrUnexpectedEOF.
func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// ReadBytes returns the next n bytes in a fresh slice, or nil on failure.
func (r *Reader) ReadBytes(n int) []byte {
	if r.err != nil || n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	got, err := io.ReadFull(r.r, buf)
	r.count += int64(got)
	if err != nil {
		r.err = truncated(err)
		return nil
	}
	return buf
}

// ExpectEOF fails with ErrTrailingData if the source has more bytes.
func (r *Reader) ExpectEOF() error {
	if r.err != nil {
		return r.err
	}
	switch _, err := r.r.ReadByte(); {
	case err == nil:
		r.err = ErrTrailingData
	case err != io.EOF:
		r.err = err
	}
	return r.err
}

func (r *Reader) ReadUint8(dest *uint8) {
	if r.err != nil {
		return
	}
	b, err := r.r.ReadByte()
	if err != nil {
		r.err = truncated(err)
		return
	}
	r.count++
	*dest = b
}

// ReadBool treats any non-zero byte as true.
func (r *Reader) ReadBool(dest *bool) {
	var b uint8
	r.ReadUint8(&b)
	if r.err == nil {
		*dest = b != 0
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	if buf := r.ReadBytes(4); buf != nil {
		*dest = r.order.Uint32(buf)
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	if buf := r.ReadBytes(8); buf != nil {
		*dest = r.order.Uint64(buf)
	}
}

func (r *Reader) ReadFloat64(dest *float64) {
	var bits uint64
	r.ReadUint64(&bits)
	if r.err == nil {
		*dest = math.Float64frombits(bits)
	}
}

// ReadString reads a uint32 byte count and then that many bytes.
func (r *Reader) ReadString(dest *string) {
	var n uint32
	r.ReadUint32(&n)
	switch {
	case r.err != nil:
		return
	case n > r.maxString:
		r.err = fmt.Errorf("%w: %d > %d", ErrStringTooLong, n, r.maxString)
	case n == 0:
		*dest = ""
	default:
		if buf := r.ReadBytes(int(n)); buf != nil {
			*dest = string(buf)
		}
	}
}
