// Package msgpackarchive stores archive documents as MessagePack. Map keys
// are written in sorted order so output is deterministic. Layout hints are
// ignored.
package msgpackarchive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/wire"
	"github.com/oy3o/archive/tree"
)

// Format is the MessagePack tree.Format.
type Format struct{}

func (Format) Name() string { return "msgpack" }

func (Format) Parse(data []byte) (*tree.Node, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", archive.ErrMalformed, err)
	}
	root, err := tree.FromAny(v)
	if err != nil {
		return nil, err
	}
	if root.Kind != tree.Object {
		return nil, fmt.Errorf("%w: document root must be a map, got %s", archive.ErrMalformed, root.Kind)
	}
	return root, nil
}

func (Format) Print(root *tree.Node) ([]byte, error) {
	buf := wire.GetBuffer()
	defer wire.PutBuffer(buf)

	enc := msgpack.NewEncoder(buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(root.ToAny()); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// New returns the MessagePack Codec.
func New() archive.Codec { return tree.Codec(Format{}) }

// NewWriter returns a Writer that encodes the document to w on Close.
func NewWriter(w io.Writer) *tree.StreamWriter { return tree.NewStreamWriter(w, Format{}) }

// NewReader decodes all of r.
func NewReader(r io.Reader) (*tree.Reader, error) { return tree.NewStreamReader(r, Format{}) }
