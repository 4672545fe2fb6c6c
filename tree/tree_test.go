package tree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/archivetest"
)

func obj(members ...any) *Node {
	n := NewObject()
	for i := 0; i < len(members); i += 2 {
		n.Set(members[i].(string), members[i+1].(*Node))
	}
	return n
}

// --- Node ---

func TestNodeEqual(t *testing.T) {
	a := obj("x", NewInt(1), "y", NewArray(NewString("s"), NewNull()))
	b := obj("y", NewArray(NewString("s"), NewNull()), "x", NewNumber("1.0"))
	assert.True(t, a.Equal(b), "member order and number spelling are ignored")

	b.Hint = archive.HintOneLine
	assert.True(t, a.Equal(b), "hints are ignored")

	assert.False(t, a.Equal(obj("x", NewInt(1))))
	assert.False(t, NewString("1").Equal(NewInt(1)))
	assert.True(t, (*Node)(nil).Equal(NewNull()))
}

func TestConvert(t *testing.T) {
	n, err := FromAny(map[string]any{
		"b":   []any{int64(1), uint64(math.MaxUint64), 1.5, nil},
		"a":   "text",
		"raw": []byte("bytes"),
		"ok":  true,
	})
	require.NoError(t, err)
	require.Equal(t, Object, n.Kind)
	assert.Equal(t, []string{"a", "b", "ok", "raw"}, []string{
		n.Members[0].Name, n.Members[1].Name, n.Members[2].Name, n.Members[3].Name,
	})
	assert.Equal(t, "18446744073709551615", n.Get("b").Items[1].Text)
	assert.Equal(t, "bytes", n.Get("raw").Text)

	back := n.ToAny().(map[string]any)
	assert.Equal(t, []any{int64(1), uint64(math.MaxUint64), 1.5, nil}, back["b"])

	_, err = FromAny(map[any]any{1: "x"})
	assert.ErrorIs(t, err, archive.ErrMalformed)
	_, err = FromAny(math.Inf(1))
	assert.ErrorIs(t, err, archive.ErrMalformed)
	_, err = FromAny(struct{}{})
	assert.ErrorIs(t, err, archive.ErrMalformed)
}

// --- Writer and Reader ---

type TreeTestSuite struct {
	suite.Suite
	registry *archive.Registry
}

func (s *TreeTestSuite) SetupTest() {
	s.registry = archivetest.NewRegistry()
}

func (s *TreeTestSuite) encode(name string, v any) *Node {
	root, err := Encode(name, v, archive.WithRegistry(s.registry))
	s.Require().NoError(err)
	return root
}

func (s *TreeTestSuite) TestLayout() {
	var shape archivetest.Shape = &archivetest.Square{Rect: archivetest.Rect{W: 1, H: 2}, Label: "l"}
	root := s.encode("shape", &shape)

	want := obj("shape", obj(
		TypeMember, NewString("Square"),
		"rect", obj("w", NewInt(1), "h", NewInt(2)),
		"label", NewString("l"),
	))
	s.True(want.Equal(root))
}

func (s *TreeTestSuite) TestMapLayout() {
	root := s.encode("m", map[string]int{"b": 2, "a": 1})
	m := root.Get("m")
	s.Require().Equal(Array, m.Kind)
	s.Require().Len(m.Items, 2)
	s.Equal("a", m.Items[0].Get("key").Text)
	s.Equal("1", m.Items[0].Get("value").Text)
	s.Equal("b", m.Items[1].Get("key").Text)
}

func (s *TreeTestSuite) TestVersionMember() {
	root := s.encode("v", &archivetest.Versioned{N: 2})
	s.Equal("1.2.3", root.Get("v").Get(TypeVersionMember).Text)
}

func (s *TreeTestSuite) TestNonameMembers() {
	w := NewWriter()
	a := archive.NewWriting(w)
	s.Require().NoError(a.Field("", 1))
	s.Require().NoError(a.Field("", "two"))
	root, err := w.Finish()
	s.Require().NoError(err)
	s.Equal("1", root.Get("@noname0").Text)
	s.Equal("two", root.Get("@noname1").Text)

	r, err := NewReader(root)
	s.Require().NoError(err)
	ra := archive.NewReading(r)
	var n int
	var str string
	s.Require().NoError(ra.Field("", &n))
	s.Require().NoError(ra.Field("", &str))
	s.Equal(1, n)
	s.Equal("two", str)
}

func (s *TreeTestSuite) TestPresence() {
	root := s.encode("o", []archive.Optional[int]{archive.None[int](), archive.Some(2)})
	items := root.Get("o").Items
	s.Require().Len(items, 2)
	s.True(items[0].IsNull())
	s.Equal("2", items[1].Text)

	absent := s.encode("o", archive.None[int]())
	s.Nil(absent.Get("o"))

	var explicitNull archive.Optional[int]
	explicitNull.Set(9)
	s.Require().NoError(Decode(obj("o", NewNull()), "o", &explicitNull))
	s.False(explicitNull.IsSome())
}

func (s *TreeTestSuite) TestHints() {
	root := s.encode("e", archivetest.NewEverything())
	e := root.Get("e")
	s.Equal(archive.HintOneLine, e.Get("tags").Hint)
	s.Equal(archive.HintNone, e.Get("nested").Hint)

	w := NewWriter()
	a := archive.NewWriting(w)
	s.Require().NoError(a.FieldHint("grid", [][]int{{1}, {2}}, archive.HintChildrenOneLine))
	grid := w.Root().Get("grid")
	s.Equal(archive.HintChildrenOneLine, grid.Hint)
	s.Equal(archive.HintOneLine, grid.Items[0].Hint)
}

func (s *TreeTestSuite) TestIntegersStayExact() {
	big := int64(math.MaxInt64)
	root := s.encode("n", big)
	s.Equal("9223372036854775807", root.Get("n").Text)

	var out int64
	s.Require().NoError(Decode(root, "n", &out))
	s.Equal(big, out)

	var small int8
	err := Decode(obj("n", NewInt(300)), "n", &small)
	s.ErrorIs(err, archive.ErrMalformed)
}

func (s *TreeTestSuite) TestKindMismatch() {
	var out []int
	err := Decode(obj("v", NewString("not an array")), "v", &out)
	s.ErrorIs(err, archive.ErrMalformed)

	var p archivetest.Pair
	err = Decode(obj("v", NewArray()), "v", &p)
	s.ErrorIs(err, archive.ErrMalformed)
}

func (s *TreeTestSuite) TestMissingField() {
	var p archivetest.Pair
	err := Decode(obj("p", obj("0", NewInt(1))), "p", &p)
	s.ErrorIs(err, archive.ErrFieldNotFound)
	s.Contains(err.Error(), "p.1")

	err = Decode(NewObject(), "absent", &p)
	s.ErrorIs(err, archive.ErrFieldNotFound)
}

func (s *TreeTestSuite) TestElementPath() {
	doc := obj("objects", NewArray(
		obj(TypeMember, NewString("ClassA"), "value", NewString("ok")),
		obj(TypeMember, NewString("ClassB"), "data", obj("0", NewInt(1))),
	))
	var out []archivetest.BaseClass
	err := Decode(doc, "objects", &out, archive.WithRegistry(s.registry))
	var pe *archive.PathError
	s.Require().ErrorAs(err, &pe)
	s.Equal("objects[1].data.1", pe.Path)
}

func (s *TreeTestSuite) TestUnbalanced() {
	w := NewWriter()
	_, err := w.BeginEntry("s", archive.Struct, archive.HintNone)
	s.Require().NoError(err)
	_, err = w.Finish()
	s.ErrorIs(err, archive.ErrUnbalancedEntry)
	s.ErrorIs(w.EndEntry("s", archive.Vector), archive.ErrUnbalancedEntry)

	_, err = NewReader(NewArray())
	s.ErrorIs(err, archive.ErrMalformed)
}

func (s *TreeTestSuite) TestNonFiniteRejected() {
	_, err := Encode("f", math.NaN())
	s.ErrorIs(err, archive.ErrUnsupportedType)
}

func TestTreeSuite(t *testing.T) {
	suite.Run(t, new(TreeTestSuite))
}
