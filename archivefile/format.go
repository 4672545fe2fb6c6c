package archivefile

import (
	"fmt"
	"io"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/binarchive"
	"github.com/oy3o/archive/cborarchive"
	"github.com/oy3o/archive/jsonarchive"
	"github.com/oy3o/archive/msgpackarchive"
	"github.com/oy3o/archive/yamlarchive"
)

// Format identifies the encoding of the payload. Values are stored in the
// container header and must not change.
type Format uint8

const (
	FormatBinary  Format = 1
	FormatJSON    Format = 2
	FormatYAML    Format = 3
	FormatCBOR    Format = 4
	FormatMsgPack Format = 5
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatCBOR:
		return "cbor"
	case FormatMsgPack:
		return "msgpack"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(f))
	}
}

// ParseFormat parses the String form of a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "binary":
		return FormatBinary, nil
	case "json":
		return FormatJSON, nil
	case "yaml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	case "msgpack":
		return FormatMsgPack, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Codec returns the archive.Codec of f.
func (f Format) Codec() (archive.Codec, error) {
	switch f {
	case FormatBinary:
		return binarchive.New(), nil
	case FormatJSON:
		return jsonarchive.New(), nil
	case FormatYAML:
		return yamlarchive.New(), nil
	case FormatCBOR:
		return cborarchive.New(), nil
	case FormatMsgPack:
		return msgpackarchive.New(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}

// Writer is an archive.Writer that must be closed to complete its output.
type Writer interface {
	archive.Writer
	io.Closer
}

// NewWriter returns a Writer for f that emits to w.
func (f Format) NewWriter(w io.Writer) (Writer, error) {
	switch f {
	case FormatBinary:
		return binarchive.NewWriter(w)
	case FormatJSON:
		return jsonarchive.NewWriter(w), nil
	case FormatYAML:
		return yamlarchive.NewWriter(w), nil
	case FormatCBOR:
		return cborarchive.NewWriter(w), nil
	case FormatMsgPack:
		return msgpackarchive.NewWriter(w), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}

// NewReader returns an archive.Reader for f over r.
func (f Format) NewReader(r io.Reader) (archive.Reader, error) {
	switch f {
	case FormatBinary:
		return binarchive.NewReader(r)
	case FormatJSON:
		return jsonarchive.NewReader(r)
	case FormatYAML:
		return yamlarchive.NewReader(r)
	case FormatCBOR:
		return cborarchive.NewReader(r)
	case FormatMsgPack:
		return msgpackarchive.NewReader(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}
