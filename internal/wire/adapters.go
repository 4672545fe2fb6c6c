package wire

import (
	"bytes"
	"io"
)

// source is what a Reader reads through. bufio.Reader, bytes.Reader,
// bytes.Buffer and BytesReader all qualify without wrapping.
type source interface {
	io.Reader
	io.ByteReader
}

// sink is what a Writer writes through.
type sink interface {
	io.Writer
	io.ByteWriter
	io.StringWriter
	Flush() error
}

type bytesBufferWriterAdapter struct{ *bytes.Buffer }

func (w *bytesBufferWriterAdapter) Flush() error { return nil }
