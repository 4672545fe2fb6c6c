package archive

import (
	"encoding"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// Serializer is implemented by struct-like types that archive their members
// one field at a time. The same method serves reading and writing.
type Serializer interface {
	Serialize(a *Archive) error
}

// ValueForwarder is implemented by types that are archived as a different
// representation, for example an enum archived as its name. ForwardValue
// returns a copy of the representation; SetForwardedValue receives a value
// of the same dynamic type after reading.
type ValueForwarder interface {
	ForwardValue() (any, error)
	SetForwardedValue(v any) error
}

// ForwardedValueMaker lets a ValueForwarder name its representation type for
// reading without ForwardValue being called on the value about to be
// overwritten. Forwarders whose ForwardValue can fail on a zero value, such
// as enums with no name for zero, need it.
type ForwardedValueMaker interface {
	NewForwardedValue() any
}

// ReferenceForwarder is implemented by types that are archived through a
// pointer to another serializable value they hold.
type ReferenceForwarder interface {
	ForwardReference() any
}

// RangeContainer is a fixed-cardinality sequence. Len must not depend on
// the data; At returns a pointer to element i.
type RangeContainer interface {
	Len() int
	At(i int) any
}

// VectorContainer is a dynamic sequence. NewElem returns a pointer to a
// fresh element, which is read and then handed to PushBack.
type VectorContainer interface {
	RangeContainer
	Clear()
	NewElem() any
	PushBack(elem any)
}

// Unpackable is implemented by ranges whose elements may be flattened into
// an enclosing vector.
type Unpackable interface {
	CanBeUnpacked() bool
}

// UnpackWanter is implemented by vectors that flatten Unpackable elements.
type UnpackWanter interface {
	WantsToUnpack() bool
}

// Hinter supplies a default layout hint for every field of its type.
type Hinter interface {
	ArchiveHint() Hint
}

type strategy uint8

const (
	stratUnsupported strategy = iota
	stratValue
	stratSerializer
	stratNoMethod
	stratOwning
	stratForwardValue
	stratForwardRef
	stratText
	stratArray
	stratSlice
	stratMap
	stratSet
	stratCustomRange
	stratCustomVector
	stratOptional
	stratPointer
)

// traits is the static description of how a Go type is archived.
type traits struct {
	strategy strategy
	entry    EntryType
	hint     Hint
	// unpack is set on vectors whose elements are flattened ranges of
	// width elements each.
	unpack bool
	width  int
}

var (
	serializerType     = reflect.TypeFor[Serializer]()
	valueForwarderType = reflect.TypeFor[ValueForwarder]()
	refForwarderType   = reflect.TypeFor[ReferenceForwarder]()
	rangeType          = reflect.TypeFor[RangeContainer]()
	vectorType         = reflect.TypeFor[VectorContainer]()
	unpackableType     = reflect.TypeFor[Unpackable]()
	unpackWanterType   = reflect.TypeFor[UnpackWanter]()
	hinterType         = reflect.TypeFor[Hinter]()
	optionalType       = reflect.TypeFor[optionalValue]()
	textMarshalerType  = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalType  = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// traitsCache avoids re-deriving traits through reflection on every field.
var traitsCache = xsync.NewMap[reflect.Type, traits]()

// EntryTypeOf returns the entry type values of t are archived as.
func EntryTypeOf(t reflect.Type) EntryType { return traitsOf(t).entry }

// EntryTypeFor is EntryTypeOf for a static type.
func EntryTypeFor[T any]() EntryType { return EntryTypeOf(reflect.TypeFor[T]()) }

func traitsOf(t reflect.Type) traits {
	if tr, ok := traitsCache.Load(t); ok {
		return tr
	}
	tr := classify(t)
	traitsCache.Store(t, tr)
	return tr
}

func classify(t reflect.Type) traits {
	pt := reflect.PointerTo(t)
	tr := traits{hint: HintNone}
	if pt.Implements(hinterType) {
		tr.hint = reflect.New(t).Interface().(Hinter).ArchiveHint()
	}

	switch {
	case pt.Implements(optionalType):
		inner := traitsOf(reflect.New(t).Interface().(optionalValue).optionalElem())
		tr.strategy, tr.entry = stratOptional, inner.entry
		return tr
	case pt.Implements(serializerType):
		tr.strategy, tr.entry = stratSerializer, Struct
		return tr
	case pt.Implements(refForwarderType):
		tr.strategy, tr.entry = stratForwardRef, ForwardReference
		return tr
	case pt.Implements(valueForwarderType):
		tr.strategy, tr.entry = stratForwardValue, ForwardValue
		return tr
	case t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer &&
		pt.Implements(textMarshalerType) && pt.Implements(textUnmarshalType):
		tr.strategy, tr.entry = stratText, ForwardValue
		return tr
	case pt.Implements(vectorType):
		tr.strategy, tr.entry = stratCustomVector, Vector
		elem := reflect.TypeOf(reflect.New(t).Interface().(VectorContainer).NewElem())
		if elem != nil && elem.Kind() == reflect.Pointer {
			tr.unpack, tr.width = unpackTraits(pt, elem.Elem())
		}
		return tr
	case pt.Implements(rangeType):
		tr.strategy, tr.entry = stratCustomRange, Range
		return tr
	}

	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		tr.strategy, tr.entry = stratValue, Value
	case reflect.Array:
		tr.strategy, tr.entry = stratArray, Range
	case reflect.Slice:
		tr.strategy, tr.entry = stratSlice, Vector
		tr.unpack, tr.width = unpackTraits(pt, t.Elem())
	case reflect.Map:
		tr.strategy, tr.entry = stratMap, Vector
		if e := t.Elem(); e.Kind() == reflect.Struct && e.NumField() == 0 {
			tr.strategy = stratSet
		}
	case reflect.Interface:
		tr.strategy, tr.entry = stratOwning, Struct
	case reflect.Pointer:
		// Pointers to struct-like types are owning references and may be
		// polymorphic. Pointers to anything else archive their pointee.
		switch et := traitsOf(t.Elem()); et.strategy {
		case stratSerializer, stratNoMethod, stratOwning:
			tr.strategy, tr.entry = stratOwning, Struct
		default:
			tr.strategy, tr.entry = stratPointer, et.entry
		}
	case reflect.Struct:
		tr.strategy, tr.entry = stratNoMethod, Struct
	default:
		tr.strategy, tr.entry = stratUnsupported, Value
	}
	return tr
}

// unpackTraits reports whether a vector (whose pointer type is pt) with
// element type elem flattens its elements, and how many values each element
// contributes. Both sides must opt in and the element must be a fixed range.
func unpackTraits(pt, elem reflect.Type) (bool, int) {
	if !pt.Implements(unpackWanterType) || !reflect.New(pt.Elem()).Interface().(UnpackWanter).WantsToUnpack() {
		return false, 0
	}
	ept := reflect.PointerTo(elem)
	if !ept.Implements(unpackableType) || !reflect.New(elem).Interface().(Unpackable).CanBeUnpacked() {
		return false, 0
	}
	et := traitsOf(elem)
	switch et.strategy {
	case stratArray:
		return true, elem.Len()
	case stratCustomRange:
		return true, reflect.New(elem).Interface().(RangeContainer).Len()
	default:
		return false, 0
	}
}
