package cborarchive

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/archivetest"
)

func TestCBORRoundTrip(t *testing.T) {
	suite.Run(t, &archivetest.RoundTripSuite{Codec: New(), Named: true})
}

func TestDeterministic(t *testing.T) {
	in := map[string]int{"b": 2, "a": 1, "c": 3}
	first, err := New().Marshal("m", in)
	require.NoError(t, err)
	for range 5 {
		again, err := New().Marshal("m", in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestInteroperable(t *testing.T) {
	data, err := New().Marshal("p", &archivetest.Pair{First: 1, Second: -2})
	require.NoError(t, err)

	var generic map[string]map[string]int
	require.NoError(t, cbor.Unmarshal(data, &generic))
	assert.Equal(t, map[string]map[string]int{"p": {"0": 1, "1": -2}}, generic)
}

func TestParseErrors(t *testing.T) {
	arr, err := cbor.Marshal([]int{1})
	require.NoError(t, err)
	_, err = Format{}.Parse(arr)
	assert.ErrorIs(t, err, archive.ErrMalformed)

	_, err = Format{}.Parse([]byte{0xbf})
	assert.ErrorIs(t, err, archive.ErrMalformed)

	intKeys, err := cbor.Marshal(map[int]string{1: "x"})
	require.NoError(t, err)
	_, err = Format{}.Parse(intKeys)
	assert.ErrorIs(t, err, archive.ErrMalformed)
}

func TestStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	a := archive.NewWriting(w)
	require.NoError(t, a.Field("n", 7))
	require.NoError(t, a.Close())

	r, err := NewReader(&buf)
	require.NoError(t, err)
	var n int
	require.NoError(t, archive.NewReading(r).Field("n", &n))
	assert.Equal(t, 7, n)
}
