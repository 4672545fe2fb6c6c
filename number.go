package archive

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Number is the set of built-in numeric types archived as Value entries.
type Number interface {
	constraints.Integer | constraints.Float
}

type numberKind uint8

const (
	kindFloat numberKind = iota
	kindSigned
	kindUnsigned
)

func numberKindOf[T Number]() numberKind {
	half := 0.5
	if T(half) != 0 {
		return kindFloat
	}
	var m T
	m--
	if m < 0 {
		return kindSigned
	}
	return kindUnsigned
}

// WriteNumber writes v through w's exact integer setters when w implements
// IntWriter, and through WriteFloat64 otherwise.
func WriteNumber[T Number](w Writer, name string, v T) error {
	if iw, ok := w.(IntWriter); ok {
		switch numberKindOf[T]() {
		case kindSigned:
			return iw.WriteInt64(name, int64(v))
		case kindUnsigned:
			return iw.WriteUint64(name, uint64(v))
		}
	}
	return w.WriteFloat64(name, float64(v))
}

// ReadNumber reads a T through r's exact integer getters when r implements
// IntReader, failing if the value does not fit T. Otherwise the value is
// read as a double and converted, which truncates fractions and does not
// check the range of T.
func ReadNumber[T Number](r Reader, name string) (T, error) {
	if ir, ok := r.(IntReader); ok {
		switch numberKindOf[T]() {
		case kindSigned:
			v, err := ir.ReadInt64(name)
			if err == nil && int64(T(v)) != v {
				return 0, fmt.Errorf("%w: %d overflows %T", ErrMalformed, v, T(0))
			}
			return T(v), err
		case kindUnsigned:
			v, err := ir.ReadUint64(name)
			if err == nil && uint64(T(v)) != v {
				return 0, fmt.Errorf("%w: %d overflows %T", ErrMalformed, v, T(0))
			}
			return T(v), err
		}
	}
	f, err := r.ReadFloat64(name)
	return T(f), err
}

func archiveNumber[T Number](a *Archive, name string, p *T) error {
	if a.IsWriting() {
		return WriteNumber(a.w, name, *p)
	}
	v, err := ReadNumber[T](a.r, name)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
