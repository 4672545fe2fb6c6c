package msgpackarchive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/archivetest"
)

func TestMsgPackRoundTrip(t *testing.T) {
	suite.Run(t, &archivetest.RoundTripSuite{Codec: New(), Named: true})
}

func TestSortedKeys(t *testing.T) {
	var s archivetest.Scenario
	s.SampleArray = archivetest.Pair{First: 1, Second: 2}
	s.Objects = []archivetest.BaseClass{&archivetest.ClassA{Value: "v"}}

	encode := func() []byte {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		a := archive.NewWriting(w, archive.WithRegistry(archivetest.NewRegistry()))
		require.NoError(t, s.Archive(a))
		require.NoError(t, a.Close())
		return buf.Bytes()
	}
	first := encode()
	for range 5 {
		assert.Equal(t, first, encode())
	}
}

func TestInteroperable(t *testing.T) {
	data, err := New().Marshal("tags", []string{"a", "b"})
	require.NoError(t, err)

	var generic map[string][]string
	require.NoError(t, msgpack.Unmarshal(data, &generic))
	assert.Equal(t, map[string][]string{"tags": {"a", "b"}}, generic)
}

func TestParseErrors(t *testing.T) {
	arr, err := msgpack.Marshal([]int{1})
	require.NoError(t, err)
	_, err = Format{}.Parse(arr)
	assert.ErrorIs(t, err, archive.ErrMalformed)

	_, err = Format{}.Parse([]byte{0xde})
	assert.ErrorIs(t, err, archive.ErrMalformed)
}
