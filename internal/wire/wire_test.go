package wire

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Mocks and Helpers ---

// failingWriter accepts limit bytes and then fails every write.
type failingWriter struct {
	limit int
	buf   bytes.Buffer
}

func (f *failingWriter) Write(p []byte) (int, error) {
	room := f.limit - f.buf.Len()
	if room <= 0 {
		return 0, io.ErrShortWrite
	}
	if len(p) > room {
		f.buf.Write(p[:room])
		return room, io.ErrShortWrite
	}
	return f.buf.Write(p)
}

// --- Writer Test Suite ---

type WriterTestSuite struct {
	suite.Suite
	buf    *bytes.Buffer
	writer *Writer
}

// SetupTest runs before each test in the suite, ensuring a clean state.
func (s *WriterTestSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	s.writer, _ = NewWriter(s.buf)
}

func (s *WriterTestSuite) TestConstructors() {
	s.T().Run("NilWriter", func(t *testing.T) {
		_, err := NewWriter(nil)
		assert.ErrorIs(t, err, ErrNilIO)
	})
}

func (s *WriterTestSuite) TestBasicWrites() {
	s.writer.WriteBool(true)
	s.writer.WriteUint8(0xAA)
	s.writer.WriteUint32(0xDDEEFF00)
	s.writer.WriteUint64(0x0102030405060708)
	s.writer.WriteString("hi")

	n, err := s.writer.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(1+1+4+8+4+2, n)
	s.Assert().EqualValues(s.buf.Len(), s.writer.Count())

	expected := []byte{
		0x01,                   // WriteBool
		0xAA,                   // WriteUint8
		0x00, 0xFF, 0xEE, 0xDD, // WriteUint32 (Little Endian)
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // WriteUint64 (Little Endian)
		0x02, 0x00, 0x00, 0x00, 'h', 'i', // WriteString
	}
	s.Assert().Equal(expected, s.buf.Bytes())
}

func (s *WriterTestSuite) TestByteOrder() {
	s.writer.WithByteOrder(BE).WriteUint32(0x01020304)
	s.Require().NoError(s.writer.Flush())
	s.Assert().Equal([]byte{1, 2, 3, 4}, s.buf.Bytes())
}

func (s *WriterTestSuite) TestFloat() {
	s.writer.WriteFloat64(1.5)
	s.Require().NoError(s.writer.Flush())
	s.Assert().Equal(math.Float64bits(1.5), LE.Uint64(s.buf.Bytes()))
}

func (s *WriterTestSuite) TestErrorHandling() {
	s.T().Run("ShortWriteError", func(t *testing.T) {
		fw := &failingWriter{limit: 5}
		writer, _ := NewWriter(fw)

		writer.WriteUint32(0x11223344)
		writer.WriteUint32(0xAABBCCDD)

		// Result() will flush the buffer, triggering the underlying write and the error.
		_, err := writer.Result()
		require.Error(t, err, "Error should be present after flush")
		assert.ErrorIs(t, err, io.ErrShortWrite)
	})

	s.T().Run("WriteAfterErrorIsNoOp", func(t *testing.T) {
		fw := &failingWriter{limit: 5}
		writer, _ := NewWriter(fw)

		writer.WriteUint32(0x11223344)
		writer.WriteUint32(0xAABBCCDD)
		writer.Flush()

		firstErr := writer.Err()
		require.ErrorIs(t, firstErr, io.ErrShortWrite)

		writer.WriteUint8(0xFF)
		writer.Flush()
		assert.Equal(t, firstErr, writer.Err(), "The latched error should not change")
		assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11, 0xDD}, fw.buf.Bytes())
	})
}

// TestWriter runs the WriterTestSuite.
func TestWriter(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

// --- Reader Test Suite ---

type ReaderTestSuite struct {
	suite.Suite
}

func (s *ReaderTestSuite) TestConstructors() {
	s.T().Run("NilReader", func(t *testing.T) {
		_, err := NewReader(nil)
		assert.ErrorIs(t, err, ErrNilIO)
	})

	s.T().Run("TinyBuffer", func(t *testing.T) {
		_, err := NewReaderSize(io.LimitReader(nil, 0), 8)
		assert.ErrorIs(t, err, ErrSizeTooSmall)
	})
}

func (s *ReaderTestSuite) TestSuccessfulReads() {
	data := []byte{
		0x01,                   // bool
		0xAA,                   // uint8
		0x00, 0xFF, 0xEE, 0xDD, // uint32
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // uint64
		0x03, 0x00, 0x00, 0x00, 'a', 'b', 'c', // string
	}
	r, _ := NewReader(bytes.NewReader(data))

	var b bool
	var v8 uint8
	var v32 uint32
	var v64 uint64
	var str string
	r.ReadBool(&b)
	r.ReadUint8(&v8)
	r.ReadUint32(&v32)
	r.ReadUint64(&v64)
	r.ReadString(&str)

	s.Require().NoError(r.Err())
	s.Assert().True(b)
	s.Assert().Equal(uint8(0xAA), v8)
	s.Assert().Equal(uint32(0xDDEEFF00), v32)
	s.Assert().Equal(uint64(0x0102030405060708), v64)
	s.Assert().Equal("abc", str)
	s.Assert().EqualValues(len(data), r.Count())
	s.Assert().NoError(r.ExpectEOF())
}

func (s *ReaderTestSuite) TestErrorHandling() {
	s.T().Run("ReadPastEOF", func(t *testing.T) {
		r, _ := NewReader(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
		var v32 uint32
		r.ReadUint32(&v32)

		assert.ErrorIs(t, r.Err(), io.ErrUnexpectedEOF, "a truncated primitive is not a clean end of stream")
	})

	s.T().Run("ReadAfterErrorIsNoOp", func(t *testing.T) {
		r, _ := NewReader(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
		var v32 uint32
		var v8 uint8

		r.ReadUint32(&v32)
		firstErr := r.Err()
		require.Error(t, firstErr)

		r.ReadUint8(&v8)
		assert.Equal(t, firstErr, r.Err(), "The latched error should not change")
		assert.Equal(t, uint8(0), v8, "Destination variable should be unchanged after an error")
	})

	s.T().Run("StringTooLong", func(t *testing.T) {
		r, _ := NewReader(NewBytesReader([]byte{0x05, 0x00, 0x00, 0x00, 'a'}))
		r.WithMaxStringLen(4)
		var str string
		r.ReadString(&str)
		assert.ErrorIs(t, r.Err(), ErrStringTooLong)
	})

	s.T().Run("TrailingData", func(t *testing.T) {
		r, _ := NewReader(NewBytesReader([]byte{0x01, 0x02}))
		var v8 uint8
		r.ReadUint8(&v8)
		assert.ErrorIs(t, r.ExpectEOF(), ErrTrailingData)
	})
}

func (s *ReaderTestSuite) TestBufferedSource() {
	data := []byte{0x02, 0x00, 0x00, 0x00, 'o', 'k'}
	r, err := NewReaderSize(io.MultiReader(bytes.NewReader(data[:3]), bytes.NewReader(data[3:])), 64)
	s.Require().NoError(err)
	var str string
	r.ReadString(&str)
	s.Require().NoError(r.Err())
	s.Assert().Equal("ok", str)
}

// TestReader runs the ReaderTestSuite.
func TestReader(t *testing.T) {
	suite.Run(t, new(ReaderTestSuite))
}

func TestBytesReader(t *testing.T) {
	br := NewBytesReader([]byte{0x03, 0x00, 0x00, 0x00, 'x', 'y', 'z', 0xFF})
	r, err := NewReader(br)
	require.NoError(t, err)

	var str string
	r.ReadString(&str)
	require.NoError(t, r.Err())
	assert.Equal(t, "xyz", str)
	assert.Equal(t, 1, br.Available(), "the reader reads through without buffering ahead")
}

func TestBufferPool(t *testing.T) {
	b := GetBuffer()
	b.WriteString("scratch")
	PutBuffer(b)

	again := GetBuffer()
	assert.Zero(t, again.Len())
	PutBuffer(again)
}
