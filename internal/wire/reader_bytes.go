package wire

import "io"

// BytesReader reads from a byte slice that is already in memory, such as a
// whole container file. Unlike bytes.Reader it can report what is left
// after a decoder has stopped.
type BytesReader struct {
	buf []byte
	off int
}

func NewBytesReader(b []byte) *BytesReader { return &BytesReader{buf: b} }

func (r *BytesReader) Read(p []byte) (int, error) {
	if r.off >= len(r.buf) {
		return 0, io.EOF
	}
	n := copy(p, r.buf[r.off:])
	r.off += n
	return n, nil
}

func (r *BytesReader) ReadByte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, io.EOF
	}
	r.off++
	return r.buf[r.off-1], nil
}

// Available returns the number of unread bytes.
func (r *BytesReader) Available() int { return len(r.buf) - r.off }
