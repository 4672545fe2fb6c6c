// Package jsonarchive is the JSON text format. Input may contain comments
// and trailing commas; output is indented and honours layout hints.
package jsonarchive

import (
	"io"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/tree"
)

type config struct {
	indent string
}

// Option configures printing.
type Option func(*config)

// WithIndent sets the indentation unit. An empty string prints the whole
// document on one line.
func WithIndent(indent string) Option {
	return func(c *config) { c.indent = indent }
}

func buildConfig(opts []Option) config {
	c := config{indent: "  "}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Format is the JSON tree.Format.
type Format struct{ opts []Option }

func NewFormat(opts ...Option) Format { return Format{opts: opts} }

func (Format) Name() string                            { return "json" }
func (Format) Parse(data []byte) (*tree.Node, error)   { return Parse(data) }
func (f Format) Print(root *tree.Node) ([]byte, error) { return Print(root, f.opts...), nil }

// New returns the JSON Codec.
func New(opts ...Option) archive.Codec { return tree.Codec(NewFormat(opts...)) }

// NewWriter returns a Writer that prints the document to w on Close.
func NewWriter(w io.Writer, opts ...Option) *tree.StreamWriter {
	return tree.NewStreamWriter(w, NewFormat(opts...))
}

// NewReader parses all of r.
func NewReader(r io.Reader) (*tree.Reader, error) {
	return tree.NewStreamReader(r, NewFormat())
}

// Marshal encodes v as the single member name of a JSON document.
func Marshal(name string, v any, opts ...archive.Option) ([]byte, error) {
	return New().Marshal(name, v, opts...)
}

// Unmarshal decodes the member name of a JSON document into v.
func Unmarshal(data []byte, name string, v any, opts ...archive.Option) error {
	return New().Unmarshal(data, name, v, opts...)
}
