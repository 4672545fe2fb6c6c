// Package archivefile wraps an archive payload in a self-describing
// container: a fixed header naming the format and compression, the stored
// payload, and a BLAKE3-256 digest of the uncompressed payload.
//
//	magic "ARCF" | version u8 | format u8 | compression u8 | reserved u8 |
//	payload length u64 | stored length u64 | stored payload | digest [32]byte
//
// Integers are little-endian.
package archivefile

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/wire"
)

const (
	magic = "ARCF"
	// ContainerVersion is the only layout version this package writes and reads.
	ContainerVersion = 1
	digestSize       = 32
)

var (
	ErrBadMagic           = fmt.Errorf("%w: archivefile: not an archive container", archive.ErrMalformed)
	ErrUnsupportedVersion = fmt.Errorf("%w: archivefile: unsupported container version", archive.ErrMalformed)
	ErrUnknownFormat      = fmt.Errorf("%w: archivefile: unknown payload format", archive.ErrMalformed)
	ErrUnknownCompression = fmt.Errorf("%w: archivefile: unknown compression", archive.ErrMalformed)
	ErrChecksum           = fmt.Errorf("%w: archivefile: payload corrupted", archive.ErrMalformed)
	ErrTooLarge           = fmt.Errorf("%w: archivefile: payload exceeds limit", archive.ErrMalformed)
)

// Header describes a container.
type Header struct {
	Version     uint8
	Format      Format
	Compression Compression
	PayloadLen  uint64
	StoredLen   uint64
	Digest      [digestSize]byte
}

type config struct {
	format      Format
	compression Compression
	archiveOpts []archive.Option
	logger      *slog.Logger
	maxPayload  uint64
}

// Option configures encoding and decoding.
type Option func(*config)

// WithFormat selects the payload format written by Encode. Decoding always
// uses the format named in the header. The default is binary.
func WithFormat(f Format) Option { return func(c *config) { c.format = f } }

// WithCompression selects the payload compression. The default is none.
func WithCompression(comp Compression) Option { return func(c *config) { c.compression = comp } }

// WithArchiveOptions passes options to the archive session.
func WithArchiveOptions(opts ...archive.Option) Option {
	return func(c *config) { c.archiveOpts = append(c.archiveOpts, opts...) }
}

// WithLogger logs container reads and writes at debug level.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

// WithMaxPayload rejects containers whose declared sizes exceed n bytes.
func WithMaxPayload(n uint64) Option { return func(c *config) { c.maxPayload = n } }

func buildConfig(opts []Option) config {
	c := config{
		format:     FormatBinary,
		logger:     slog.New(slog.DiscardHandler),
		maxPayload: 1 << 30,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Seal frames payload, which must be encoded in format f.
func Seal(w io.Writer, f Format, payload []byte, opts ...Option) (Header, error) {
	c := buildConfig(opts)
	stored, comp, err := compress(payload, c.compression)
	if err != nil {
		return Header{}, err
	}
	h := Header{
		Version:     ContainerVersion,
		Format:      f,
		Compression: comp,
		PayloadLen:  uint64(len(payload)),
		StoredLen:   uint64(len(stored)),
		Digest:      blake3.Sum256(payload),
	}

	ww, err := wire.NewWriter(w)
	if err != nil {
		return Header{}, err
	}
	ww.WithByteOrder(wire.LE)
	ww.Write([]byte(magic))
	ww.WriteUint8(h.Version)
	ww.WriteUint8(uint8(h.Format))
	ww.WriteUint8(uint8(h.Compression))
	ww.WriteUint8(0)
	ww.WriteUint64(h.PayloadLen)
	ww.WriteUint64(h.StoredLen)
	ww.Write(stored)
	ww.Write(h.Digest[:])
	if _, err := ww.Result(); err != nil {
		return Header{}, err
	}

	c.logger.Debug("container written",
		"format", h.Format.String(),
		"compression", h.Compression.String(),
		"payload", h.PayloadLen,
		"stored", h.StoredLen)
	return h, nil
}

// Open reads one container from r, verifies it and returns its header and
// uncompressed payload.
func Open(r io.Reader, opts ...Option) (Header, []byte, error) {
	c := buildConfig(opts)
	rr, err := wire.NewReader(r)
	if err != nil {
		return Header{}, nil, err
	}
	rr.WithByteOrder(wire.LE)
	h, payload, err := open(rr, c)
	if err != nil {
		return Header{}, nil, err
	}
	c.logger.Debug("container read",
		"format", h.Format.String(),
		"compression", h.Compression.String(),
		"payload", h.PayloadLen,
		"stored", h.StoredLen)
	return h, payload, nil
}

func open(rr *wire.Reader, c config) (Header, []byte, error) {
	var h Header
	head := rr.ReadBytes(4)
	if err := rr.Err(); err != nil {
		return h, nil, fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if string(head) != magic {
		return h, nil, ErrBadMagic
	}

	var format, comp, reserved uint8
	rr.ReadUint8(&h.Version)
	rr.ReadUint8(&format)
	rr.ReadUint8(&comp)
	rr.ReadUint8(&reserved)
	rr.ReadUint64(&h.PayloadLen)
	rr.ReadUint64(&h.StoredLen)
	if err := rr.Err(); err != nil {
		return h, nil, fmt.Errorf("%w: truncated header: %v", archive.ErrMalformed, err)
	}
	h.Format, h.Compression = Format(format), Compression(comp)

	if h.Version != ContainerVersion {
		return h, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if _, err := h.Format.Codec(); err != nil {
		return h, nil, err
	}
	if h.Compression > CompressionZstd {
		return h, nil, fmt.Errorf("%w: %s", ErrUnknownCompression, h.Compression)
	}
	if h.PayloadLen > c.maxPayload || h.StoredLen > c.maxPayload {
		return h, nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, max(h.PayloadLen, h.StoredLen))
	}

	stored := rr.ReadBytes(int(h.StoredLen))
	digest := rr.ReadBytes(digestSize)
	if err := rr.Err(); err != nil {
		return h, nil, fmt.Errorf("%w: truncated payload: %v", archive.ErrMalformed, err)
	}
	copy(h.Digest[:], digest)

	payload, err := decompress(stored, h.Compression, int(h.PayloadLen))
	if err != nil {
		return h, nil, err
	}
	if blake3.Sum256(payload) != h.Digest {
		return h, nil, fmt.Errorf("%w: digest mismatch", ErrChecksum)
	}
	return h, payload, nil
}

// Write runs fn against a writing archive and frames the result in the
// configured format and compression.
func Write(w io.Writer, fn func(a *archive.Archive) error, opts ...Option) (Header, error) {
	c := buildConfig(opts)
	buf := wire.GetBuffer()
	defer wire.PutBuffer(buf)

	fw, err := c.format.NewWriter(buf)
	if err != nil {
		return Header{}, err
	}
	a := archive.NewWriting(fw, c.archiveOpts...)
	if err := fn(a); err != nil {
		return Header{}, err
	}
	if err := a.Close(); err != nil {
		return Header{}, err
	}
	return Seal(w, c.format, buf.Bytes(), opts...)
}

// Read opens a container from r and runs fn against a reading archive over
// its payload, whatever format the header names.
func Read(r io.Reader, fn func(a *archive.Archive) error, opts ...Option) (Header, error) {
	c := buildConfig(opts)
	h, payload, err := Open(r, opts...)
	if err != nil {
		return h, err
	}
	fr, err := h.Format.NewReader(bytes.NewReader(payload))
	if err != nil {
		return h, err
	}
	a := archive.NewReading(fr, c.archiveOpts...)
	if err := fn(a); err != nil {
		return h, err
	}
	return h, a.Close()
}

// Encode writes v as the single top-level field name.
func Encode(w io.Writer, name string, v any, opts ...Option) (Header, error) {
	return Write(w, func(a *archive.Archive) error { return a.Field(name, v) }, opts...)
}

// Decode reads the top-level field name into v.
func Decode(r io.Reader, name string, v any, opts ...Option) (Header, error) {
	return Read(r, func(a *archive.Archive) error { return a.Field(name, v) }, opts...)
}

// WriteFile writes a container to path atomically: the data goes to a
// temporary file in the same directory, which is then renamed over path.
func WriteFile(path string, fn func(a *archive.Archive) error, opts ...Option) (h Header, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return Header{}, err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if h, err = Write(tmp, fn, opts...); err != nil {
		return Header{}, err
	}
	if err = tmp.Sync(); err != nil {
		return Header{}, err
	}
	if err = tmp.Close(); err != nil {
		return Header{}, err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return Header{}, err
	}
	return h, nil
}

// ReadFile reads the container at path. Bytes after the digest are an error.
func ReadFile(path string, fn func(a *archive.Archive) error, opts ...Option) (Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Header{}, err
	}
	rd := wire.NewBytesReader(data)
	h, err := Read(rd, fn, opts...)
	if err != nil {
		return h, err
	}
	if rd.Available() != 0 {
		return h, fmt.Errorf("%w: %d bytes after the digest", archive.ErrMalformed, rd.Available())
	}
	return h, nil
}

// IsContainer reports whether data starts with the container magic.
func IsContainer(data []byte) bool { return bytes.HasPrefix(data, []byte(magic)) }
