package archive

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// EnumTable maps the values of an integer enum to stable names. Enums that
// should be archived by name implement ValueForwarder through a table:
//
//	func (c Color) ForwardValue() (any, error)     { return colorNames.Forward(c) }
//	func (c *Color) SetForwardedValue(v any) error { return colorNames.SetForwarded(c, v) }
//	func (*Color) NewForwardedValue() any          { return colorNames.NewForwarded() }
//
// Enums archived by number need nothing; integer kinds are Values.
type EnumTable[E constraints.Integer] struct {
	names  map[E]string
	values map[string]E
}

// NewEnumTable builds a table from value/name pairs. Names must be unique.
func NewEnumTable[E constraints.Integer](names map[E]string) *EnumTable[E] {
	t := &EnumTable[E]{
		names:  make(map[E]string, len(names)),
		values: make(map[string]E, len(names)),
	}
	for e, name := range names {
		if prev, dup := t.values[name]; dup {
			panic(fmt.Sprintf("archive: enum name %q used for both %d and %d", name, prev, e))
		}
		t.names[e] = name
		t.values[name] = e
	}
	return t
}

func (t *EnumTable[E]) Name(e E) (string, error) {
	if name, ok := t.names[e]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: no name for enum value %d", ErrUnsupportedType, e)
}

func (t *EnumTable[E]) Parse(name string) (E, error) {
	if e, ok := t.values[name]; ok {
		return e, nil
	}
	return 0, fmt.Errorf("%w: unknown enum name %q", ErrMalformed, name)
}

// Forward is a ValueForwarder.ForwardValue body.
func (t *EnumTable[E]) Forward(e E) (any, error) { return t.Name(e) }

// NewForwarded is a ForwardedValueMaker.NewForwardedValue body.
func (t *EnumTable[E]) NewForwarded() any { return "" }

// SetForwarded is a ValueForwarder.SetForwardedValue body.
func (t *EnumTable[E]) SetForwarded(e *E, v any) error {
	name, ok := v.(string)
	if !ok {
		return fmt.Errorf("%w: enum expects a name, got %T", ErrMalformed, v)
	}
	parsed, err := t.Parse(name)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
