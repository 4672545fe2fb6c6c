package yamlarchive

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/archivetest"
	"github.com/oy3o/archive/tree"
)

func TestYAMLRoundTrip(t *testing.T) {
	suite.Run(t, &archivetest.RoundTripSuite{Codec: New(), Named: true})
}

const scenarioYAML = `
sampleArray: {"0": 100, "1": 101}
objects:
  - "@type": ClassA
    value: hello
  - "@type": ClassB
    data:
      "0": 102
      "1": 103
`

func TestScenario(t *testing.T) {
	reg := archivetest.NewRegistry()
	r, err := NewReader(strings.NewReader(scenarioYAML))
	require.NoError(t, err)

	var s archivetest.Scenario
	a := archive.NewReading(r, archive.WithRegistry(reg))
	require.NoError(t, s.Archive(a))
	require.NoError(t, a.Close())

	assert.Equal(t, archivetest.Pair{First: 100, Second: 101}, s.SampleArray)
	require.Len(t, s.Objects, 2)
	assert.Equal(t, "ClassA(hello)", s.Objects[0].Describe())
	assert.Equal(t, &archivetest.ClassB{Data: archivetest.Pair{First: 102, Second: 103}}, s.Objects[1])
}

func TestScalarTags(t *testing.T) {
	root, err := Parse([]byte("i: 12\nf: 1.5\nb: true\nn: ~\ns: \"12\"\nword: yes please\n"))
	require.NoError(t, err)
	assert.Equal(t, tree.Number, root.Get("i").Kind)
	assert.Equal(t, tree.Number, root.Get("f").Kind)
	assert.Equal(t, tree.Bool, root.Get("b").Kind)
	assert.True(t, root.Get("n").IsNull())
	assert.Equal(t, tree.String, root.Get("s").Kind)
	assert.Equal(t, "yes please", root.Get("word").Text)
}

func TestAliases(t *testing.T) {
	root, err := Parse([]byte("base: &b {x: 1}\ncopy: *b\n"))
	require.NoError(t, err)
	assert.True(t, root.Get("base").Equal(root.Get("copy")))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	assert.ErrorIs(t, err, archive.ErrMalformed)

	_, err = Parse([]byte("a: [1, 2\n"))
	assert.ErrorIs(t, err, archive.ErrMalformed)

	_, err = Parse([]byte("f: .nan\n"))
	assert.ErrorIs(t, err, archive.ErrMalformed)
}

func TestPrintFlowStyle(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)
	a := archive.NewWriting(w)
	require.NoError(t, a.FieldHint("point", []int{1, 2}, archive.HintOneLine))
	require.NoError(t, a.Field("list", []string{"x", "true"}))
	require.NoError(t, a.Close())

	assert.Contains(t, out.String(), "point: [1, 2]\n")
	assert.Contains(t, out.String(), `- "true"`)

	back, err := Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, tree.String, back.Get("list").Items[1].Kind)
}
