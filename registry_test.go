package archive_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/archivetest"
	"github.com/oy3o/archive/tree"
)

type plain struct{ X int }

type RegistryTestSuite struct {
	suite.Suite
	reg *archive.Registry
}

func (s *RegistryTestSuite) SetupTest() {
	s.reg = archivetest.NewRegistry()
}

func (s *RegistryTestSuite) get(name string) *archive.Type {
	t, err := s.reg.Get(name)
	s.Require().NoError(err)
	return t
}

func (s *RegistryTestSuite) TestTransitiveBase() {
	shape := archive.TypeOf[archivetest.Shape]()
	square := s.get("Square")

	s.True(square.HasBaseClass(archive.TypeOf[archivetest.Rect]()))
	s.True(square.HasBaseClass(shape), "Shape is reached through Rect")
	s.False(square.HasBaseClass(square.ID()), "a type is not its own base")
	s.True(square.DerivesFrom(square.ID()))
	s.False(s.get("Circle").HasBaseClass(shape))
	s.False(square.HasBaseClass(archive.TypeOf[archivetest.BaseClass]()))
}

func (s *RegistryTestSuite) TestLookup() {
	t := s.get("ClassA")
	s.Equal("ClassA", t.Name())
	s.Equal(archive.TypeOf[archivetest.ClassA](), t.ID())
	s.False(t.IsAbstract())
	s.True(t.HasSerializer())

	byID, err := s.reg.GetByID(archive.TypeOf[archivetest.ClassA]())
	s.Require().NoError(err)
	s.Same(t, byID)

	poly, err := s.reg.GetPolymorphic(&archivetest.ClassA{})
	s.Require().NoError(err)
	s.Same(t, poly)

	var nilObj archivetest.BaseClass
	_, err = s.reg.GetPolymorphic(nilObj)
	s.ErrorIs(err, archive.ErrFactory)

	_, err = s.reg.Get("Nope")
	s.ErrorIs(err, archive.ErrUnregistered)
	s.ErrorIs(err, archive.ErrFactory)
	_, ok := s.reg.Lookup("Nope")
	s.False(ok)

	var names []string
	for _, t := range s.reg.Types() {
		names = append(names, t.Name())
	}
	s.Equal([]string{"BaseClass", "Circle", "ClassA", "ClassB", "Rect", "Shape", "Square"}, names)
}

func (s *RegistryTestSuite) TestAbstract() {
	shape := s.get("Shape")
	s.True(shape.IsAbstract())
	s.False(shape.HasSerializer())

	_, err := shape.New()
	s.ErrorIs(err, archive.ErrAbstract)
	_, err = archive.Make[archivetest.Shape](shape)
	s.ErrorIs(err, archive.ErrAbstract)
	s.ErrorIs(err, archive.ErrType)
	s.ErrorIs(shape.Serialize(nil, nil), archive.ErrNoSerializer)
}

func (s *RegistryTestSuite) TestMake() {
	square := s.get("Square")

	asShape, err := archive.Make[archivetest.Shape](square)
	s.Require().NoError(err)
	s.IsType(&archivetest.Square{}, asShape)

	asRect, err := archive.Make[*archivetest.Rect](square)
	s.Require().NoError(err)
	s.NotNil(asRect)

	asSquare, err := archive.Make[*archivetest.Square](square)
	s.Require().NoError(err)
	s.NotNil(asSquare)

	_, err = archive.Make[archivetest.BaseClass](square)
	s.ErrorIs(err, archive.ErrNotBase)

	_, err = archive.Make[archivetest.Shape](s.get("Circle"))
	s.ErrorIs(err, archive.ErrNotBase, "Circle implements Shape but was not registered as one")

	_, err = archive.Make[archivetest.Rect](square)
	s.ErrorIs(err, archive.ErrType)
}

func (s *RegistryTestSuite) TestSerializeAs() {
	square := s.get("Square")
	obj := &archivetest.Square{Rect: archivetest.Rect{W: 1, H: 1}, Label: "x"}

	w := tree.NewWriter()
	a := archive.NewWriting(w)
	s.Require().NoError(archive.SerializeAs[archivetest.Shape](square, a, obj))
	s.Equal("x", w.Root().Get("label").Text)

	err := archive.SerializeAs[archivetest.BaseClass](square, a, &archivetest.ClassA{})
	s.ErrorIs(err, archive.ErrNotBase)

	err = archive.SerializeAs[archivetest.Shape](s.get("Rect"), a, &archivetest.Circle{R: 1})
	s.ErrorIs(err, archive.ErrNotBase, "the object must be an instance of the type")
	s.Nil(w.Root().Get("r"))
}

func (s *RegistryTestSuite) TestRegistrationErrors() {
	shape := archive.TypeOf[archivetest.Shape]()

	_, err := archive.Register[archivetest.Unversioned](s.reg, "Rect")
	s.ErrorIs(err, archive.ErrDuplicateType)

	_, err = archive.Register[archivetest.Rect](s.reg, "Rect2", shape)
	s.ErrorIs(err, archive.ErrDuplicateType)

	_, err = archive.Register[archivetest.Rect](archive.NewRegistry(), "Rect", shape)
	s.ErrorIs(err, archive.ErrBaseNotRegistered)

	_, err = archive.Register[archivetest.Pair](s.reg, "Pair", shape)
	s.ErrorIs(err, archive.ErrNotBase)

	_, err = archive.Register[*archivetest.Pair](s.reg, "PairPtr")
	s.ErrorIs(err, archive.ErrType)

	_, err = archive.Register[plain](s.reg, "plain")
	s.ErrorIs(err, archive.ErrType)

	_, err = archive.Register[archivetest.Pair](s.reg, "")
	s.ErrorIs(err, archive.ErrFactory)

	s.Panics(func() { archive.MustRegister[archivetest.ClassA](s.reg, "ClassA") })

	_, ok := s.reg.Lookup("Pair")
	s.False(ok, "failed registrations leave no trace")
}

func (s *RegistryTestSuite) TestLogger() {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg := archive.NewRegistry(archive.WithRegistryLogger(logger))
	archivetest.RegisterScenario(reg)
	s.Contains(buf.String(), "registered type")
	s.Contains(buf.String(), "name=ClassB")

	buf.Reset()
	root, err := tree.Encode("o", []archivetest.BaseClass{&archivetest.ClassA{Value: "v"}}, archive.WithRegistry(reg))
	s.Require().NoError(err)
	var out []archivetest.BaseClass
	s.Require().NoError(tree.Decode(root, "o", &out, archive.WithRegistry(reg), archive.WithLogger(logger)))
	s.Contains(buf.String(), "created instance")
	s.Contains(buf.String(), "type=ClassA")
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func TestDefaultRegistry(t *testing.T) {
	require.NotNil(t, archive.Default())
	assert.Same(t, archive.Default(), archive.Default())
}
