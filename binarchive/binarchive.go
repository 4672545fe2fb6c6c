// Package binarchive is the compact binary format. It carries no field
// names: entries are written in traversal order, every element of a Range or
// Vector is preceded by a continuation byte 1 and the sequence ends with a 0.
// Numbers are 8-byte IEEE-754 doubles and strings carry a uint32 length.
//
// Because names are not stored, a reader cannot tell that a field is
// missing; defaults only apply to formats with names.
package binarchive

import (
	"bytes"
	"encoding/binary"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/wire"
)

type config struct {
	maxString uint32
	order     binary.ByteOrder
}

// Option configures a binary Reader or Writer.
type Option func(*config)

// WithMaxStringLen rejects strings whose length prefix exceeds n bytes.
func WithMaxStringLen(n uint32) Option {
	return func(c *config) { c.maxString = n }
}

// WithByteOrder overrides the little-endian default. Both sides must agree.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(c *config) { c.order = order }
}

func buildConfig(opts []Option) config {
	c := config{maxString: wire.DefaultMaxStringLen, order: wire.LE}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

type codec struct{ opts []Option }

// New returns the binary Codec.
func New(opts ...Option) archive.Codec { return codec{opts: opts} }

func (codec) Name() string { return "binary" }

func (c codec) Marshal(name string, v any, opts ...archive.Option) ([]byte, error) {
	buf := wire.GetBuffer()
	defer wire.PutBuffer(buf)

	w, err := NewWriter(buf, c.opts...)
	if err != nil {
		return nil, err
	}
	a := archive.NewWriting(w, opts...)
	if err := a.Field(name, v); err != nil {
		return nil, err
	}
	if err := a.Close(); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func (c codec) Unmarshal(data []byte, name string, v any, opts ...archive.Option) error {
	r, err := NewReader(wire.NewBytesReader(data), c.opts...)
	if err != nil {
		return err
	}
	a := archive.NewReading(r, opts...)
	if err := a.Field(name, v); err != nil {
		return err
	}
	return a.Close()
}

// Marshal encodes v as a single top-level field.
func Marshal(name string, v any, opts ...archive.Option) ([]byte, error) {
	return New().Marshal(name, v, opts...)
}

// Unmarshal decodes a single top-level field into v. Trailing bytes are an error.
func Unmarshal(data []byte, name string, v any, opts ...archive.Option) error {
	return New().Unmarshal(data, name, v, opts...)
}
