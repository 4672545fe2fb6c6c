package archivefile

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/archivetest"
)

var (
	allFormats      = []Format{FormatBinary, FormatJSON, FormatYAML, FormatCBOR, FormatMsgPack}
	allCompressions = []Compression{CompressionNone, CompressionLZ4, CompressionZstd}
)

// repetitive returns a value whose encoding compresses well in every format.
func repetitive() []string {
	out := make([]string, 200)
	for i := range out {
		out[i] = "the same words over and over again"
	}
	return out
}

type ContainerTestSuite struct {
	suite.Suite
	reg *archive.Registry
}

func (s *ContainerTestSuite) SetupTest() {
	s.reg = archivetest.NewRegistry()
}

func (s *ContainerTestSuite) opts(extra ...Option) []Option {
	return append([]Option{WithArchiveOptions(archive.WithRegistry(s.reg))}, extra...)
}

func (s *ContainerTestSuite) TestRoundTripMatrix() {
	for _, f := range allFormats {
		for _, c := range allCompressions {
			s.Run(fmt.Sprintf("%s/%s", f, c), func() {
				in := archivetest.NewEverything()
				var buf bytes.Buffer
				h, err := Encode(&buf, "e", in, s.opts(WithFormat(f), WithCompression(c))...)
				s.Require().NoError(err)
				s.Equal(f, h.Format)
				s.True(IsContainer(buf.Bytes()))

				out := &archivetest.Everything{}
				rh, err := Decode(bytes.NewReader(buf.Bytes()), "e", out, s.opts()...)
				s.Require().NoError(err)
				s.Equal(h, rh)

				s.True(in.When.Equal(out.When))
				out.When = in.When
				s.Equal(in, out)
			})
		}
	}
}

func (s *ContainerTestSuite) TestCompressionApplied() {
	for _, c := range []Compression{CompressionLZ4, CompressionZstd} {
		var buf bytes.Buffer
		h, err := Encode(&buf, "words", repetitive(), WithCompression(c))
		s.Require().NoError(err)
		s.Equal(c, h.Compression)
		s.Less(h.StoredLen, h.PayloadLen)

		var out []string
		_, err = Decode(&buf, "words", &out)
		s.Require().NoError(err)
		s.Equal(repetitive(), out)
	}
}

func (s *ContainerTestSuite) TestIncompressibleStoredRaw() {
	var buf bytes.Buffer
	h, err := Encode(&buf, "n", 1, WithCompression(CompressionZstd))
	s.Require().NoError(err)
	s.Equal(CompressionNone, h.Compression)
	s.Equal(h.PayloadLen, h.StoredLen)
}

func (s *ContainerTestSuite) TestMultiFieldSession() {
	in := archivetest.Scenario{
		SampleArray: archivetest.Pair{First: 100, Second: 101},
		Objects: []archivetest.BaseClass{
			&archivetest.ClassA{Value: "hello"},
			&archivetest.ClassB{Data: archivetest.Pair{First: 102, Second: 103}},
		},
	}
	var buf bytes.Buffer
	_, err := Write(&buf, in.Archive, s.opts(WithFormat(FormatJSON))...)
	s.Require().NoError(err)

	_, payload, err := Open(bytes.NewReader(buf.Bytes()))
	s.Require().NoError(err)
	s.Contains(string(payload), `"@type": "ClassB"`)

	var out archivetest.Scenario
	h, err := Read(&buf, out.Archive, s.opts()...)
	s.Require().NoError(err)
	s.Equal(FormatJSON, h.Format)
	s.Equal(in, out)
}

func (s *ContainerTestSuite) sealed() []byte {
	var buf bytes.Buffer
	_, err := Encode(&buf, "words", []string{"a", "b"})
	s.Require().NoError(err)
	return buf.Bytes()
}

func (s *ContainerTestSuite) TestCorruption() {
	const headerLen = 24

	cases := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"payload bit flip", func(b []byte) []byte { b[headerLen] ^= 0x01; return b }, ErrChecksum},
		{"digest bit flip", func(b []byte) []byte { b[len(b)-1] ^= 0x80; return b }, ErrChecksum},
		{"bad magic", func(b []byte) []byte { b[0] = 'X'; return b }, ErrBadMagic},
		{"future version", func(b []byte) []byte { b[4] = 9; return b }, ErrUnsupportedVersion},
		{"unknown format", func(b []byte) []byte { b[5] = 99; return b }, ErrUnknownFormat},
		{"unknown compression", func(b []byte) []byte { b[6] = 7; return b }, ErrUnknownCompression},
		{"truncated", func(b []byte) []byte { return b[:len(b)-5] }, archive.ErrMalformed},
		{"empty", func([]byte) []byte { return nil }, ErrBadMagic},
	}
	for _, c := range cases {
		s.Run(c.name, func() {
			data := c.mutate(bytes.Clone(s.sealed()))
			var out []string
			_, err := Decode(bytes.NewReader(data), "words", &out)
			s.ErrorIs(err, c.want)
			s.ErrorIs(err, archive.ErrMalformed)
		})
	}
}

func (s *ContainerTestSuite) TestMaxPayload() {
	_, _, err := Open(bytes.NewReader(s.sealed()), WithMaxPayload(4))
	s.ErrorIs(err, ErrTooLarge)
}

func (s *ContainerTestSuite) TestFiles() {
	dir := s.T().TempDir()
	path := filepath.Join(dir, "words.arc")

	write := func(a *archive.Archive) error { return a.Field("words", repetitive()) }
	_, err := WriteFile(path, write, WithFormat(FormatCBOR), WithCompression(CompressionLZ4))
	s.Require().NoError(err)

	entries, err := os.ReadDir(dir)
	s.Require().NoError(err)
	s.Len(entries, 1, "the temporary file is renamed into place")

	var out []string
	h, err := ReadFile(path, func(a *archive.Archive) error { return a.Field("words", &out) })
	s.Require().NoError(err)
	s.Equal(FormatCBOR, h.Format)
	s.Equal(CompressionLZ4, h.Compression)
	s.Equal(repetitive(), out)

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Require().NoError(os.WriteFile(path, append(data, 0), 0o644))
	_, err = ReadFile(path, func(a *archive.Archive) error { return a.Field("words", &out) })
	s.ErrorIs(err, archive.ErrMalformed)

	_, err = ReadFile(filepath.Join(dir, "missing.arc"), write)
	s.ErrorIs(err, os.ErrNotExist)
}

func (s *ContainerTestSuite) TestFailedWriteLeavesNoFile() {
	dir := s.T().TempDir()
	path := filepath.Join(dir, "broken.arc")
	_, err := WriteFile(path, func(a *archive.Archive) error { return a.Field("c", make(chan int)) })
	s.ErrorIs(err, archive.ErrUnsupportedType)

	entries, err := os.ReadDir(dir)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ContainerTestSuite) TestLogger() {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var buf bytes.Buffer
	_, err := Encode(&buf, "n", 1, WithLogger(logger), WithFormat(FormatYAML))
	s.Require().NoError(err)
	var n int
	_, err = Decode(&buf, "n", &n, WithLogger(logger))
	s.Require().NoError(err)

	s.Contains(logs.String(), "container written")
	s.Contains(logs.String(), "container read")
	s.Contains(logs.String(), "format=yaml")
}

func TestContainerSuite(t *testing.T) {
	suite.Run(t, new(ContainerTestSuite))
}

func TestNames(t *testing.T) {
	for _, f := range allFormats {
		parsed, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
		_, err = f.Codec()
		assert.NoError(t, err)
	}
	for _, c := range allCompressions {
		parsed, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = ParseCompression("gzip")
	assert.ErrorIs(t, err, ErrUnknownCompression)
	assert.True(t, strings.HasPrefix(Format(42).String(), "unknown"))

	_, err = Format(0).NewWriter(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = Format(0).NewReader(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
