package archive

import "reflect"

// Optional holds a T or nothing. An empty Optional opens no entry when
// written, and a missing entry reads back as empty instead of failing.
type Optional[T any] struct {
	value T
	valid bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{value: v, valid: true} }
func None[T any]() Optional[T]    { return Optional[T]{} }

func (o Optional[T]) Get() (T, bool) { return o.value, o.valid }
func (o Optional[T]) IsSome() bool   { return o.valid }

// ValueOr returns the held value, or def when empty.
func (o Optional[T]) ValueOr(def T) T {
	if o.valid {
		return o.value
	}
	return def
}

func (o *Optional[T]) Set(v T) { o.value, o.valid = v, true }
func (o *Optional[T]) Reset()  { *o = Optional[T]{} }

type optionalValue interface {
	optionalElem() reflect.Type
	optionalPresent() bool
	optionalPtr() any
	optionalEmplace() any
	optionalReset()
}

func (o *Optional[T]) optionalElem() reflect.Type { return reflect.TypeFor[T]() }
func (o *Optional[T]) optionalPresent() bool      { return o.valid }
func (o *Optional[T]) optionalPtr() any           { return &o.value }
func (o *Optional[T]) optionalReset()             { o.Reset() }

func (o *Optional[T]) optionalEmplace() any {
	*o = Optional[T]{valid: true}
	return &o.value
}
