package archivetest

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/oy3o/archive"
)

// RoundTripSuite checks that a Codec reproduces every fixture. Run it from
// a format package with suite.Run.
type RoundTripSuite struct {
	suite.Suite

	Codec archive.Codec
	// Named is set for formats that store member names. Only those can
	// resolve absent fields to defaults or detect missing version stamps.
	Named bool

	registry *archive.Registry
}

func (s *RoundTripSuite) SetupTest() {
	s.registry = NewRegistry()
}

func (s *RoundTripSuite) marshal(name string, v any) []byte {
	data, err := s.Codec.Marshal(name, v, archive.WithRegistry(s.registry))
	s.Require().NoError(err)
	s.Require().NotEmpty(data)
	return data
}

func (s *RoundTripSuite) unmarshal(data []byte, name string, v any) error {
	return s.Codec.Unmarshal(data, name, v, archive.WithRegistry(s.registry))
}

func (s *RoundTripSuite) roundTrip(in, out any) {
	data := s.marshal("value", in)
	s.Require().NoError(s.unmarshal(data, "value", out))
}

func (s *RoundTripSuite) TestScalars() {
	s.T().Run("int", func(t *testing.T) {
		in, out := int64(-123456789), int64(0)
		s.roundTrip(&in, &out)
		s.Equal(in, out)
	})
	s.T().Run("uint8", func(t *testing.T) {
		in, out := uint8(255), uint8(0)
		s.roundTrip(&in, &out)
		s.Equal(in, out)
	})
	s.T().Run("float", func(t *testing.T) {
		in, out := 3.25, 0.0
		s.roundTrip(&in, &out)
		s.Equal(in, out)
	})
	s.T().Run("bool", func(t *testing.T) {
		in, out := true, false
		s.roundTrip(&in, &out)
		s.True(out)
	})
	s.T().Run("string", func(t *testing.T) {
		in, out := "tab\there é \"q\"", ""
		s.roundTrip(&in, &out)
		s.Equal(in, out)
	})
	s.T().Run("plain value", func(t *testing.T) {
		data := s.marshal("value", 42)
		var out int
		s.Require().NoError(s.unmarshal(data, "value", &out))
		s.Equal(42, out)
	})
}

func (s *RoundTripSuite) TestStructAndRange() {
	in := Pair{First: 100, Second: 101}
	var out Pair
	s.roundTrip(&in, &out)
	s.Equal(in, out)

	fixed := [4]string{"a", "b", "c", "d"}
	var got [4]string
	s.roundTrip(&fixed, &got)
	s.Equal(fixed, got)
}

func (s *RoundTripSuite) TestVectorsAndMaps() {
	nested := [][]int{{1, 2}, {}, {3}}
	var gotNested [][]int
	s.roundTrip(&nested, &gotNested)
	s.Require().Len(gotNested, 3)
	s.Equal([]int{1, 2}, gotNested[0])
	s.Empty(gotNested[1])
	s.Equal([]int{3}, gotNested[2])

	m := map[string][]int{"b": {2}, "a": {1, 1}}
	var gotMap map[string][]int
	s.roundTrip(&m, &gotMap)
	s.Equal(m, gotMap)

	set := map[string]struct{}{"x": {}, "y": {}}
	var gotSet map[string]struct{}
	s.roundTrip(&set, &gotSet)
	s.Equal(set, gotSet)

	var empty []Pair
	var gotEmpty []Pair
	s.roundTrip(&empty, &gotEmpty)
	s.Empty(gotEmpty)
}

func (s *RoundTripSuite) TestOptional() {
	present := archive.Some(Pair{First: 1, Second: 2})
	var got archive.Optional[Pair]
	s.roundTrip(&present, &got)
	v, ok := got.Get()
	s.True(ok)
	s.Equal(Pair{First: 1, Second: 2}, v)

	absent := archive.None[string]()
	stale := archive.Some("stale")
	s.roundTrip(&absent, &stale)
	s.False(stale.IsSome())

	list := []archive.Optional[string]{archive.None[string](), archive.Some("b"), archive.None[string]()}
	var gotList []archive.Optional[string]
	s.roundTrip(&list, &gotList)
	s.Equal(list, gotList)
}

func (s *RoundTripSuite) TestVariant() {
	s.T().Run("monostate", func(t *testing.T) {
		var in, out archive.Variant2[archive.Monostate, int]
		out.SetSecond(5)
		s.roundTrip(&in, &out)
		s.Equal(0, out.Index())
	})
	s.T().Run("each alternative", func(t *testing.T) {
		var a, b, c archive.Variant3[int, string, Pair]
		a.SetFirst(7)
		b.SetSecond("seven")
		c.SetThird(Pair{First: 7, Second: 8})
		for _, in := range []*archive.Variant3[int, string, Pair]{&a, &b, &c} {
			var out archive.Variant3[int, string, Pair]
			s.roundTrip(in, &out)
			s.Equal(*in, out)
		}
	})
}

func (s *RoundTripSuite) TestPolymorphic() {
	in := []Shape{
		&Rect{W: 2, H: 3},
		&Square{Rect: Rect{W: 4, H: 4}, Label: "four"},
	}
	var out []Shape
	s.roundTrip(&in, &out)
	s.Require().Len(out, 2)
	s.IsType(&Rect{}, out[0])
	s.IsType(&Square{}, out[1])
	s.Equal(in, out)
	s.Equal(16.0, out[1].Area())
}

func (s *RoundTripSuite) TestUnrelatedTypeRejected() {
	in := []Shape{&Circle{R: 1}}
	data := s.marshal("value", &in)

	var out []Shape
	err := s.unmarshal(data, "value", &out)
	s.ErrorIs(err, archive.ErrNotBase)
	s.ErrorIs(err, archive.ErrType)
}

func (s *RoundTripSuite) TestScenarioObjects() {
	in := []BaseClass{&ClassA{Value: "hello"}, &ClassB{Data: Pair{First: 102, Second: 103}}}
	var out []BaseClass
	s.roundTrip(&in, &out)
	s.Require().Len(out, 2)
	s.Equal("ClassA(hello)", out[0].Describe())
	s.Equal(in, out)
}

func (s *RoundTripSuite) TestUnregisteredOnRead() {
	in := []BaseClass{&ClassA{Value: "x"}}
	data := s.marshal("value", &in)

	var out []BaseClass
	err := s.Codec.Unmarshal(data, "value", &out, archive.WithRegistry(archive.NewRegistry()))
	s.ErrorIs(err, archive.ErrUnregistered)
}

func (s *RoundTripSuite) TestEverything() {
	in := NewEverything()
	out := &Everything{}
	s.roundTrip(in, out)

	s.True(in.When.Equal(out.When))
	out.When = in.When
	s.Equal(in, out)
}

func (s *RoundTripSuite) TestTypeVersion() {
	in := Versioned{N: 9}
	var out Versioned
	s.roundTrip(&in, &out)
	s.Equal(LatestVersion, in.Version)
	s.Equal(LatestVersion, out.Version)
	s.Equal(9, out.N)

	if !s.Named {
		return
	}
	old := Unversioned{N: 4}
	var upgraded Versioned
	s.roundTrip(&old, &upgraded)
	s.True(upgraded.Version.IsZero())
	s.Equal(4, upgraded.N)
}

func (s *RoundTripSuite) TestFieldDefault() {
	if !s.Named {
		s.T().Skip("format does not store member names")
	}
	old := ConfigV1{Name: "svc"}
	var cfg ConfigV2
	s.roundTrip(&old, &cfg)
	s.Equal(ConfigV2{Name: "svc", Retries: DefaultRetries}, cfg)

	data := s.marshal("value", &old)
	var pair Pair
	err := s.unmarshal(data, "value", &pair)
	s.ErrorIs(err, archive.ErrFieldNotFound)
	var pe *archive.PathError
	s.Require().ErrorAs(err, &pe)
	s.Equal("value.0", pe.Path)
}
