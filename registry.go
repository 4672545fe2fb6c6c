package archive

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// Registry maps type names and Go identities to registered Types.
//
// Lookups are safe for concurrent use. Registration is serialized
// internally, but a registry is meant to be populated once at start-up and
// only read afterwards.
type Registry struct {
	mu     sync.Mutex
	byName *xsync.Map[string, *Type]
	byID   *xsync.Map[reflect.Type, *Type]
	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger logs registrations at debug level.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry returns an empty registry, independent of Default().
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byName: xsync.NewMap[string, *Type](),
		byID:   xsync.NewMap[reflect.Type, *Type](),
		logger: discardLogger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// TypeOf returns the identity of T, for naming bases at registration.
func TypeOf[T any]() reflect.Type { return reflect.TypeFor[T]() }

// Register adds T under name with the given bases, all of which must already
// be registered. Interface types are registered abstract; concrete types get
// a factory and must implement Serializer on their pointer.
func Register[T any](r *Registry, name string, bases ...reflect.Type) (*Type, error) {
	return r.add(name, reflect.TypeFor[T](), bases, true)
}

// RegisterAbstract adds T without factory or serializer, for roots of a
// hierarchy that are only referenced as bases.
func RegisterAbstract[T any](r *Registry, name string, bases ...reflect.Type) (*Type, error) {
	return r.add(name, reflect.TypeFor[T](), bases, false)
}

// MustRegister is Register for init-time use; it panics on error.
func MustRegister[T any](r *Registry, name string, bases ...reflect.Type) *Type {
	t, err := Register[T](r, name, bases...)
	if err != nil {
		panic(err)
	}
	return t
}

// MustRegisterAbstract is RegisterAbstract for init-time use; it panics on error.
func MustRegisterAbstract[T any](r *Registry, name string, bases ...reflect.Type) *Type {
	t, err := RegisterAbstract[T](r, name, bases...)
	if err != nil {
		panic(err)
	}
	return t
}

func (r *Registry) add(name string, id reflect.Type, bases []reflect.Type, withSerialize bool) (*Type, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty type name for %s", ErrFactory, id)
	}
	if id.Kind() == reflect.Pointer {
		return nil, fmt.Errorf("%w: register %s instead of the pointer type", ErrType, id.Elem())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName.Load(name); ok {
		return nil, fmt.Errorf("%w: name %q", ErrDuplicateType, name)
	}
	if prev, ok := r.byID.Load(id); ok {
		return nil, fmt.Errorf("%w: %s already registered as %q", ErrDuplicateType, id, prev.name)
	}
	for _, b := range bases {
		if _, ok := r.byID.Load(b); !ok {
			return nil, fmt.Errorf("%w: %s (base of %q)", ErrBaseNotRegistered, b, name)
		}
		if !satisfiesBase(id, b) {
			return nil, fmt.Errorf("%w: %s neither implements nor embeds %s", ErrNotBase, id, b)
		}
	}

	t := &Type{
		name:     name,
		id:       id,
		bases:    slices.Clone(bases),
		registry: r,
	}
	if withSerialize {
		if id.Kind() != reflect.Interface {
			if !reflect.PointerTo(id).Implements(serializerType) {
				return nil, fmt.Errorf("%w: %s has no Serialize method", ErrType, id)
			}
			t.factory = func() any { return reflect.New(id).Interface() }
		}
		t.serializer = callSerialize
	}

	r.byName.Store(name, t)
	r.byID.Store(id, t)
	r.logger.Debug("registered type", "name", name, "type", id.String(), "abstract", t.factory == nil, "bases", len(bases))
	return t, nil
}

func satisfiesBase(id, base reflect.Type) bool {
	switch base.Kind() {
	case reflect.Interface:
		if id.Kind() == reflect.Interface {
			return id.Implements(base)
		}
		return reflect.PointerTo(id).Implements(base)
	case reflect.Struct:
		return embedsType(id, base)
	default:
		return false
	}
}

func callSerialize(a *Archive, obj any) error {
	s, ok := obj.(Serializer)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNoSerializeMethod, obj)
	}
	return s.Serialize(a)
}

// Get returns the type registered under name.
func (r *Registry) Get(name string) (*Type, error) {
	if t, ok := r.byName.Load(name); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnregistered, name)
}

// GetByID returns the type registered for the Go identity id.
func (r *Registry) GetByID(id reflect.Type) (*Type, error) {
	if t, ok := r.byID.Load(id); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnregistered, id)
}

// Lookup is Get without an error.
func (r *Registry) Lookup(name string) (*Type, bool) { return r.byName.Load(name) }

// LookupID is GetByID without an error.
func (r *Registry) LookupID(id reflect.Type) (*Type, bool) { return r.byID.Load(id) }

// GetPolymorphic returns the registered type of obj's dynamic type. Pointers
// resolve to the type they point to.
func (r *Registry) GetPolymorphic(obj any) (*Type, error) {
	id, ok := dynamicIdentity(reflect.ValueOf(obj))
	if !ok {
		return nil, fmt.Errorf("%w: cannot resolve type of nil object", ErrFactory)
	}
	return r.GetByID(id)
}

func dynamicIdentity(v reflect.Value) (reflect.Type, bool) {
	if !v.IsValid() {
		return nil, false
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		return v.Type().Elem(), true
	}
	return v.Type(), true
}

// Types returns all registered types ordered by name.
func (r *Registry) Types() []*Type {
	types := make([]*Type, 0, r.byName.Size())
	r.byName.Range(func(_ string, t *Type) bool {
		types = append(types, t)
		return true
	})
	slices.SortFunc(types, func(a, b *Type) int { return strings.Compare(a.name, b.name) })
	return types
}
