// Package archivetest holds the types and the conformance suite shared by
// the format packages' tests.
package archivetest

import (
	"time"

	"github.com/oy3o/archive"
)

// --- The polymorphic scenario ---

// BaseClass is the abstract root of the scenario hierarchy.
type BaseClass interface {
	archive.Serializer
	Describe() string
}

type ClassA struct {
	Value string
}

func (c *ClassA) Describe() string { return "ClassA(" + c.Value + ")" }

func (c *ClassA) Serialize(a *archive.Archive) error {
	return a.Field("value", &c.Value)
}

// Pair is archived as a struct with members "0" and "1".
type Pair struct {
	First, Second int
}

func (p *Pair) Serialize(a *archive.Archive) error {
	a.Field("0", &p.First)
	a.Field("1", &p.Second)
	return a.Err()
}

type ClassB struct {
	Data Pair
}

func (c *ClassB) Describe() string { return "ClassB" }

func (c *ClassB) Serialize(a *archive.Archive) error {
	return a.Field("data", &c.Data)
}

// Scenario is the top level of ScenarioJSON.
type Scenario struct {
	SampleArray Pair
	Objects     []BaseClass
}

// Archive archives both top-level fields of the document.
func (s *Scenario) Archive(a *archive.Archive) error {
	a.Field("sampleArray", &s.SampleArray)
	a.Field("objects", &s.Objects)
	return a.Err()
}

const ScenarioJSON = `{
  "sampleArray": {"0": 100, "1": 101},
  "objects": [
    {"@type": "ClassA", "value": "hello"},
    {"@type": "ClassB", "data": {"0": 102, "1": 103}}
  ]
}`

// RegisterScenario adds BaseClass, ClassA and ClassB to r.
func RegisterScenario(r *archive.Registry) {
	archive.MustRegisterAbstract[BaseClass](r, "BaseClass")
	archive.MustRegister[ClassA](r, "ClassA", archive.TypeOf[BaseClass]())
	archive.MustRegister[ClassB](r, "ClassB", archive.TypeOf[BaseClass]())
}

// --- A three-level hierarchy: Square -> Rect -> Shape ---

type Shape interface {
	archive.Serializer
	Area() float64
}

type Rect struct {
	W, H float64
}

func (r Rect) Area() float64 { return r.W * r.H }

func (r *Rect) Serialize(a *archive.Archive) error {
	a.Field("w", &r.W)
	a.Field("h", &r.H)
	return a.Err()
}

type Square struct {
	Rect
	Label string
}

func (s *Square) Serialize(a *archive.Archive) error {
	a.Field("rect", &s.Rect)
	a.Field("label", &s.Label)
	return a.Err()
}

// Circle satisfies Shape in Go but is registered without bases.
type Circle struct {
	R float64
}

func (c Circle) Area() float64 { return 3 * c.R * c.R }

func (c *Circle) Serialize(a *archive.Archive) error { return a.Field("r", &c.R) }

func RegisterShapes(r *archive.Registry) {
	archive.MustRegisterAbstract[Shape](r, "Shape")
	archive.MustRegister[Rect](r, "Rect", archive.TypeOf[Shape]())
	archive.MustRegister[Square](r, "Square", archive.TypeOf[Rect]())
	archive.MustRegister[Circle](r, "Circle")
}

// NewRegistry returns a registry holding every fixture type.
func NewRegistry() *archive.Registry {
	r := archive.NewRegistry()
	RegisterScenario(r)
	RegisterShapes(r)
	return r
}

// --- Enums, unpacking and the kitchen sink ---

type Color int

const (
	Red Color = iota
	Green
	Blue
)

var colorNames = archive.NewEnumTable(map[Color]string{
	Red:   "red",
	Green: "green",
	Blue:  "blue",
})

func (c Color) ForwardValue() (any, error)     { return colorNames.Forward(c) }
func (c *Color) SetForwardedValue(v any) error { return colorNames.SetForwarded(c, v) }
func (*Color) NewForwardedValue() any          { return colorNames.NewForwarded() }

// Point flattens into an enclosing Polyline.
type Point [2]int32

func (Point) CanBeUnpacked() bool { return true }

// Polyline is archived as x0, y0, x1, y1, ...
type Polyline []Point

func (Polyline) WantsToUnpack() bool { return true }

// Everything has a field of every kind the engine knows.
type Everything struct {
	Count   int64
	Ratio   float64
	Name    string
	Flag    bool
	Small   uint8
	Tags    []string
	Fixed   [3]int
	Nested  Pair
	Color   Color
	Scores  map[string]int
	Seen    map[int]struct{}
	Maybe   archive.Optional[string]
	Missing archive.Optional[int]
	Sparse  []archive.Optional[int]
	Choice  archive.Variant3[int, string, Pair]
	Shape   Shape
	Line    Polyline
	When    time.Time
	Ptr     *int
}

func (e *Everything) Serialize(a *archive.Archive) error {
	a.Field("count", &e.Count)
	a.Field("ratio", &e.Ratio)
	a.Field("name", &e.Name)
	a.Field("flag", &e.Flag)
	a.Field("small", &e.Small)
	a.FieldHint("tags", &e.Tags, archive.HintOneLine)
	a.FieldHint("fixed", &e.Fixed, archive.HintOneLine)
	a.Field("nested", &e.Nested)
	a.Field("color", &e.Color)
	a.Field("scores", &e.Scores)
	a.Field("seen", &e.Seen)
	a.Field("maybe", &e.Maybe)
	a.Field("missing", &e.Missing)
	a.Field("sparse", &e.Sparse)
	a.Field("choice", &e.Choice)
	a.Field("shape", &e.Shape)
	a.FieldHint("line", &e.Line, archive.HintOneLine)
	a.Field("when", &e.When)
	a.Field("ptr", &e.Ptr)
	return a.Err()
}

// NewEverything returns a fully populated Everything.
func NewEverything() *Everything {
	seven := 7
	e := &Everything{
		Count:   1 << 40,
		Ratio:   0.625,
		Name:    "everything \"quoted\"\n",
		Flag:    true,
		Small:   200,
		Tags:    []string{"a", "b", ""},
		Fixed:   [3]int{-1, 0, 1},
		Nested:  Pair{First: 3, Second: 4},
		Color:   Blue,
		Scores:  map[string]int{"x": 1, "y": 2},
		Seen:    map[int]struct{}{5: {}, 8: {}},
		Maybe:   archive.Some("here"),
		Missing: archive.None[int](),
		Sparse:  []archive.Optional[int]{archive.Some(1), archive.None[int](), archive.Some(3)},
		Shape:   &Square{Rect: Rect{W: 2, H: 2}, Label: "sq"},
		Line:    Polyline{{1, 2}, {3, 4}},
		When:    time.Date(2024, 2, 29, 12, 30, 0, 0, time.UTC),
		Ptr:     &seven,
	}
	e.Choice.SetThird(Pair{First: 9, Second: 10})
	return e
}

// Versioned stamps its schema version.
type Versioned struct {
	Version archive.Version
	N       int
}

var LatestVersion = archive.V(1, 2, 3)

func (v *Versioned) Serialize(a *archive.Archive) error {
	ver, err := a.TypeVersion(LatestVersion)
	if err != nil {
		return err
	}
	v.Version = ver
	return a.Field("n", &v.N)
}

// Unversioned has the layout of Versioned before it was stamped.
type Unversioned struct {
	N int
}

func (u *Unversioned) Serialize(a *archive.Archive) error { return a.Field("n", &u.N) }

// ConfigV1 and ConfigV2 model a field added in a later schema.
type ConfigV1 struct {
	Name string
}

func (c *ConfigV1) Serialize(a *archive.Archive) error { return a.Field("name", &c.Name) }

type ConfigV2 struct {
	Name    string
	Retries int
}

const DefaultRetries = 3

func (c *ConfigV2) Serialize(a *archive.Archive) error {
	a.Field("name", &c.Name)
	archive.FieldDefault(a, "retries", &c.Retries, DefaultRetries)
	return a.Err()
}
