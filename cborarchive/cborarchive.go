// Package cborarchive stores archive documents as CBOR maps and arrays.
// Encoding is Core Deterministic (RFC 8949 section 4.2), so the same value
// always produces the same bytes. Layout hints are ignored.
package cborarchive

import (
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/tree"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cborarchive: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Documents only have string keys; decode generic maps as
		// map[string]any rather than map[any]any.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("cborarchive: CBOR decoder initialization failed: " + err.Error())
	}
}

// Format is the CBOR tree.Format.
type Format struct{}

func (Format) Name() string { return "cbor" }

func (Format) Parse(data []byte) (*tree.Node, error) {
	var v any
	if err := decMode.Unmarshal(data, &v); err != nil {
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
	return encMode.Marshal(root.ToAny())
}

// New returns the CBOR Codec.
func New() archive.Codec { return tree.Codec(Format{}) }

// NewWriter returns a Writer that encodes the document to w on Close.
func NewWriter(w io.Writer) *tree.StreamWriter { return tree.NewStreamWriter(w, Format{}) }

// NewReader decodes all of r.
func NewReader(r io.Reader) (*tree.Reader, error) { return tree.NewStreamReader(r, Format{}) }
