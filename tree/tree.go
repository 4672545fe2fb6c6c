package tree

import (
	"io"

	"github.com/oy3o/archive"
)

// Encode archives v under name into a fresh document.
func Encode(name string, v any, opts ...archive.Option) (*Node, error) {
	w := NewWriter()
	a := archive.NewWriting(w, opts...)
	if err := a.Field(name, v); err != nil {
		return nil, err
	}
	return w.Finish()
}

// Decode fills v from the member name of root.
func Decode(root *Node, name string, v any, opts ...archive.Option) error {
	r, err := NewReader(root)
	if err != nil {
		return err
	}
	return archive.NewReading(r, opts...).Field(name, v)
}

// Format converts between a document tree and bytes. Each text format
// package provides one; Codec lifts it to an archive.Codec.
type Format interface {
	Name() string
	Parse(data []byte) (*Node, error)
	Print(root *Node) ([]byte, error)
}

type codec struct{ f Format }

// Codec returns an archive.Codec that encodes through a document tree.
func Codec(f Format) archive.Codec { return codec{f: f} }

func (c codec) Name() string { return c.f.Name() }

func (c codec) Marshal(name string, v any, opts ...archive.Option) ([]byte, error) {
	root, err := Encode(name, v, opts...)
	if err != nil {
		return nil, err
	}
	return c.f.Print(root)
}

func (c codec) Unmarshal(data []byte, name string, v any, opts ...archive.Option) error {
	root, err := c.f.Parse(data)
	if err != nil {
		return err
	}
	return Decode(root, name, v, opts...)
}

// StreamWriter is a Writer that prints its document to an io.Writer on Close.
type StreamWriter struct {
	*Writer
	out    io.Writer
	f      Format
	closed bool
}

func NewStreamWriter(out io.Writer, f Format) *StreamWriter {
	return &StreamWriter{Writer: NewWriter(), out: out, f: f}
}

// Close prints the document. Only the first call writes.
func (w *StreamWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	root, err := w.Finish()
	if err != nil {
		return err
	}
	data, err := w.f.Print(root)
	if err != nil {
		return err
	}
	_, err = w.out.Write(data)
	return err
}

// NewStreamReader reads all of in, parses it with f and returns a Reader
// over the document.
func NewStreamReader(in io.Reader, f Format) (*Reader, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	root, err := f.Parse(data)
	if err != nil {
		return nil, err
	}
	return NewReader(root)
}
