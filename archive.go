package archive

import (
	"errors"
	"fmt"
	"io"
	"reflect"
)

// Archive drives one traversal over a Reader or a Writer. The same
// Serialize methods are used in both directions; IsReading and IsWriting
// let them branch where the two sides differ.
//
// An Archive keeps the first error it encounters. Once set, every further
// Field call returns it without touching the stream, so a Serialize method
// may archive all of its fields and return a.Err() at the end.
type Archive struct {
	r    Reader
	w    Writer
	opts options
	err  error
}

// errAbsent reports that a reader did not find an entry. It is resolved
// into a default, an empty optional or ErrFieldNotFound before it leaves
// the package.
var errAbsent = errors.New("archive: entry absent")

// NewReading returns an Archive that fills values from r.
func NewReading(r Reader, opts ...Option) *Archive {
	return &Archive{r: r, opts: buildOptions(opts)}
}

// NewWriting returns an Archive that emits values to w.
func NewWriting(w Writer, opts ...Option) *Archive {
	return &Archive{w: w, opts: buildOptions(opts)}
}

func (a *Archive) IsReading() bool     { return a.r != nil }
func (a *Archive) IsWriting() bool     { return a.w != nil }
func (a *Archive) Registry() *Registry { return a.opts.registry }
func (a *Archive) Err() error          { return a.err }

// setError keeps the first error, but lets a wrapper of it replace it so
// that Err reports the longest known field path.
func (a *Archive) setError(err error) {
	if err == nil {
		return
	}
	if a.err == nil || errors.Is(err, a.err) {
		a.err = err
	}
}

// Field archives the value v points to under name. When writing, v may
// also be a plain value.
func (a *Archive) Field(name string, v any) error {
	return a.archiveField(name, v, HintNone, false)
}

// FieldHint is Field with an explicit layout hint that overrides the
// value type's own.
func (a *Archive) FieldHint(name string, v any, hint Hint) error {
	return a.archiveField(name, v, hint, true)
}

func (a *Archive) archiveField(name string, v any, hint Hint, explicit bool) error {
	if a.err != nil {
		return a.err
	}
	rv, err := a.target(v)
	if err == nil {
		err = a.field(name, rv, hint, explicit)
		if err == errAbsent {
			err = fmt.Errorf("%w: %q", ErrFieldNotFound, name)
		}
	}
	err = wrapPath(name, err)
	a.setError(err)
	return err
}

// FieldDefault archives *v under name. When reading and the entry is
// absent, *v is set to def instead of failing.
func FieldDefault[T any](a *Archive, name string, v *T, def T) error {
	if a.err != nil {
		return a.err
	}
	if v == nil {
		a.setError(fmt.Errorf("%w: nil %T", ErrNotPointer, v))
		return a.err
	}
	err := a.field(name, reflect.ValueOf(v).Elem(), HintNone, false)
	if err == errAbsent {
		*v = def
		return nil
	}
	err = wrapPath(name, err)
	a.setError(err)
	return err
}

// TypeVersion negotiates the schema version of the enclosing struct. When
// writing it stamps latest and returns it; when reading it returns the
// stamped version, or 0.0.0 if the data carries none.
func (a *Archive) TypeVersion(latest Version) (Version, error) {
	if a.err != nil {
		return Version{}, a.err
	}
	if a.IsWriting() {
		err := a.w.WriteTypeVersion(latest)
		a.setError(err)
		return latest, err
	}
	v, err := a.r.TypeVersion()
	a.setError(err)
	return v, err
}

// Close releases the bound Reader or Writer if it implements io.Closer and
// returns the first error of the session.
func (a *Archive) Close() error {
	var c io.Closer
	if a.w != nil {
		c, _ = a.w.(io.Closer)
	} else {
		c, _ = a.r.(io.Closer)
	}
	if c != nil {
		if err := c.Close(); err != nil && a.err == nil {
			return err
		}
	}
	return a.err
}

func (a *Archive) target(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem(), nil
	}
	if a.IsReading() || !rv.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: got %T", ErrNotPointer, v)
	}
	return addressable(rv), nil
}

func addressable(v reflect.Value) reflect.Value {
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

// field is the recursive step: classify, open the entry, archive the
// content, close the entry. rv must be addressable.
func (a *Archive) field(name string, rv reflect.Value, hint Hint, explicit bool) error {
	tr := traitsOf(rv.Type())
	if !explicit {
		hint = tr.hint
	}
	forwardExplicit := explicit || hint != HintNone

	switch tr.strategy {
	case stratUnsupported:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, rv.Type())
	case stratOptional:
		return a.optional(name, rv, hint, forwardExplicit)
	case stratForwardValue:
		return a.forwardValue(name, rv, hint, forwardExplicit)
	case stratForwardRef:
		return a.forwardRef(name, rv, hint, forwardExplicit)
	case stratText:
		return a.text(name, rv, hint, forwardExplicit)
	case stratPointer:
		return a.pointer(name, rv, hint, forwardExplicit)
	}

	if a.IsWriting() {
		ok, err := a.w.BeginEntry(name, tr.entry, hint)
		if err != nil || !ok {
			return err
		}
	} else {
		found, err := a.r.BeginEntry(name, tr.entry)
		if err != nil {
			return err
		}
		if !found {
			return errAbsent
		}
	}

	if err := a.content(rv, tr); err != nil {
		return err
	}

	if a.IsWriting() {
		return a.w.EndEntry(name, tr.entry)
	}
	return a.r.EndEntry(name, tr.entry)
}

func (a *Archive) content(rv reflect.Value, tr traits) error {
	switch tr.strategy {
	case stratValue:
		return a.value(rv)
	case stratSerializer:
		return rv.Addr().Interface().(Serializer).Serialize(a)
	case stratNoMethod:
		return fmt.Errorf("%w for %s", ErrNoSerializeMethod, rv.Type())
	case stratOwning:
		return a.owning(rv)
	case stratArray:
		return a.fixedRange(rv.Len(), rv.Index)
	case stratCustomRange:
		c := rv.Addr().Interface().(RangeContainer)
		return a.fixedRange(c.Len(), func(i int) reflect.Value { return reflect.ValueOf(c.At(i)).Elem() })
	case stratSlice:
		return a.slice(rv, tr)
	case stratCustomVector:
		return a.customVector(rv, tr)
	case stratMap:
		return a.mapPairs(rv)
	case stratSet:
		return a.setKeys(rv)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedType, rv.Type())
}
