package archive

import (
	"fmt"
	"reflect"
	"slices"
)

// Type describes a registered type: its stable name, its Go identity, the
// registered bases it derives from directly, and how to construct and
// serialize it. A nil factory marks an abstract type.
type Type struct {
	name       string
	id         reflect.Type
	bases      []reflect.Type
	factory    func() any
	serializer func(*Archive, any) error
	registry   *Registry
}

func (t *Type) Name() string { return t.name }

// ID is the identity the type was registered under: the struct type for
// concrete types, the interface type for abstract roots.
func (t *Type) ID() reflect.Type { return t.id }

func (t *Type) Bases() []reflect.Type { return slices.Clone(t.bases) }

func (t *Type) IsAbstract() bool    { return t.factory == nil }
func (t *Type) HasSerializer() bool { return t.serializer != nil }

func (t *Type) String() string { return t.name }

// HasBaseClass reports whether base is a direct base of t or, recursively, a
// base of one of its bases. The walk is depth-first in registration order
// and stops at the first match; diamond hierarchies are not checked for
// ambiguity.
func (t *Type) HasBaseClass(base reflect.Type) bool {
	for _, b := range t.bases {
		if b == base {
			return true
		}
		if bt, ok := t.registry.LookupID(b); ok && bt.HasBaseClass(base) {
			return true
		}
	}
	return false
}

// DerivesFrom is HasBaseClass extended to match t itself.
func (t *Type) DerivesFrom(base reflect.Type) bool {
	return t.id == base || t.HasBaseClass(base)
}

// New returns a pointer to a fresh instance of t.
func (t *Type) New() (any, error) {
	if t.factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrAbstract, t.name)
	}
	return t.factory(), nil
}

// Serialize runs t's serializer on obj.
func (t *Type) Serialize(a *Archive, obj any) error {
	if t.serializer == nil {
		return fmt.Errorf("%w: %s", ErrNoSerializer, t.name)
	}
	return t.serializer(a, obj)
}

// instantiate constructs t and converts it to target, which must be an
// interface type or a pointer type. The base relation is verified through
// the registry before any conversion is attempted. It returns the full
// object, which t's serializer expects, alongside the value to store in a
// target slot; the two differ when target is an embedded base struct.
func (t *Type) instantiate(target reflect.Type) (obj, slot reflect.Value, err error) {
	baseID, err := identityOf(target)
	if err != nil {
		return obj, slot, err
	}
	if !t.DerivesFrom(baseID) {
		return obj, slot, fmt.Errorf("%w: %s is not a %s", ErrNotBase, t.name, baseID)
	}
	fresh, err := t.New()
	if err != nil {
		return obj, slot, err
	}
	obj = reflect.ValueOf(fresh)
	slot, ok := convertTo(obj, target)
	if !ok {
		return obj, slot, fmt.Errorf("%w: %s cannot be held as %s", ErrNotBase, t.name, target)
	}
	return obj, slot, nil
}

// holds reports whether obj is an instance of t.
func (t *Type) holds(obj any) bool {
	id, ok := dynamicIdentity(reflect.ValueOf(obj))
	if !ok {
		return false
	}
	if t.id.Kind() == reflect.Interface {
		return reflect.TypeOf(obj).Implements(t.id)
	}
	return id == t.id
}

// Make constructs a registered type and returns it as Base, the equivalent
// of make_raw, make_shared and make_unique. Base must be an interface type
// or a pointer to a struct; the type must be Base itself or derive from it
// through registered bases. Struct bases resolve to the embedded field of
// the constructed object.
func Make[Base any](t *Type) (Base, error) {
	var zero Base
	_, v, err := t.instantiate(reflect.TypeFor[Base]())
	if err != nil {
		return zero, err
	}
	return v.Interface().(Base), nil
}

// SerializeAs verifies that t derives from Base and that obj is a t, then
// runs t's serializer on obj.
func SerializeAs[Base any](t *Type, a *Archive, obj Base) error {
	baseID, err := identityOf(reflect.TypeFor[Base]())
	if err != nil {
		return err
	}
	if !t.DerivesFrom(baseID) {
		return fmt.Errorf("%w: %s is not a %s", ErrNotBase, t.name, baseID)
	}
	if !t.holds(obj) {
		return fmt.Errorf("%w: %T is not a %s", ErrNotBase, obj, t.name)
	}
	return t.Serialize(a, obj)
}

// identityOf maps a slot type to the registry identity it refers to.
func identityOf(target reflect.Type) (reflect.Type, error) {
	switch target.Kind() {
	case reflect.Interface:
		return target, nil
	case reflect.Pointer:
		return target.Elem(), nil
	default:
		return nil, fmt.Errorf("%w: %s is neither an interface nor a pointer", ErrType, target)
	}
}

// convertTo converts a freshly constructed *T to target: directly when
// assignable, otherwise by taking the address of an embedded base struct.
func convertTo(v reflect.Value, target reflect.Type) (reflect.Value, bool) {
	if v.Type().AssignableTo(target) {
		return v, true
	}
	if target.Kind() != reflect.Pointer || v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	f, ok := embeddedField(v.Elem(), target.Elem())
	if !ok {
		return reflect.Value{}, false
	}
	return f.Addr(), true
}

func embeddedField(sv reflect.Value, want reflect.Type) (reflect.Value, bool) {
	st := sv.Type()
	for i := range st.NumField() {
		f := st.Field(i)
		if !f.Anonymous || !f.IsExported() {
			continue
		}
		fv := sv.Field(i)
		if f.Type.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		if fv.Type() == want {
			return fv, true
		}
		if fv.Kind() == reflect.Struct {
			if found, ok := embeddedField(fv, want); ok {
				return found, true
			}
		}
	}
	return reflect.Value{}, false
}

func embedsType(st, want reflect.Type) bool {
	if st.Kind() != reflect.Struct {
		return false
	}
	for i := range st.NumField() {
		f := st.Field(i)
		if !f.Anonymous || !f.IsExported() {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft == want || embedsType(ft, want) {
			return true
		}
	}
	return false
}
