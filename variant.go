package archive

import "fmt"

// Tagged unions are archived as a Struct entry holding the ordinal of the
// active alternative under "index" and the alternative itself under "value".
// The zero value of a variant holds the zero value of its first alternative.

type taggedUnion interface {
	variantLen() int
	variantIndex() int
	variantPtr() any
	variantEmplace(i int) any
}

func archiveVariant(a *Archive, u taggedUnion) error {
	idx := u.variantIndex()
	if err := a.Field("index", &idx); err != nil {
		return err
	}
	if a.IsWriting() {
		return a.Field("value", u.variantPtr())
	}
	n := u.variantLen()
	if idx < 0 || idx >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidVariantIndex, idx, n)
	}
	return a.Field("value", u.variantEmplace(idx))
}

// Monostate is an empty alternative, for variants that may hold nothing.
type Monostate struct{}

func (*Monostate) Serialize(*Archive) error { return nil }

// Variant2 holds exactly one of A or B.
type Variant2[A, B any] struct {
	index int
	a     A
	b     B
}

func (v *Variant2[A, B]) Index() int { return v.index }

// Value returns a copy of the active alternative.
func (v *Variant2[A, B]) Value() any {
	if v.index == 1 {
		return v.b
	}
	return v.a
}

func (v *Variant2[A, B]) SetFirst(x A)  { *v = Variant2[A, B]{index: 0, a: x} }
func (v *Variant2[A, B]) SetSecond(x B) { *v = Variant2[A, B]{index: 1, b: x} }

func (v Variant2[A, B]) First() (A, bool)  { return v.a, v.index == 0 }
func (v Variant2[A, B]) Second() (B, bool) { return v.b, v.index == 1 }

func (v *Variant2[A, B]) Serialize(a *Archive) error { return archiveVariant(a, v) }

func (v *Variant2[A, B]) variantLen() int   { return 2 }
func (v *Variant2[A, B]) variantIndex() int { return v.index }

func (v *Variant2[A, B]) variantPtr() any {
	if v.index == 1 {
		return &v.b
	}
	return &v.a
}

func (v *Variant2[A, B]) variantEmplace(i int) any {
	*v = Variant2[A, B]{index: i}
	return v.variantPtr()
}

// Variant3 holds exactly one of A, B or C.
type Variant3[A, B, C any] struct {
	index int
	a     A
	b     B
	c     C
}

func (v *Variant3[A, B, C]) Index() int { return v.index }

func (v *Variant3[A, B, C]) Value() any {
	switch v.index {
	case 1:
		return v.b
	case 2:
		return v.c
	}
	return v.a
}

func (v *Variant3[A, B, C]) SetFirst(x A)  { *v = Variant3[A, B, C]{index: 0, a: x} }
func (v *Variant3[A, B, C]) SetSecond(x B) { *v = Variant3[A, B, C]{index: 1, b: x} }
func (v *Variant3[A, B, C]) SetThird(x C)  { *v = Variant3[A, B, C]{index: 2, c: x} }

func (v Variant3[A, B, C]) First() (A, bool)  { return v.a, v.index == 0 }
func (v Variant3[A, B, C]) Second() (B, bool) { return v.b, v.index == 1 }
func (v Variant3[A, B, C]) Third() (C, bool)  { return v.c, v.index == 2 }

func (v *Variant3[A, B, C]) Serialize(a *Archive) error { return archiveVariant(a, v) }

func (v *Variant3[A, B, C]) variantLen() int   { return 3 }
func (v *Variant3[A, B, C]) variantIndex() int { return v.index }

func (v *Variant3[A, B, C]) variantPtr() any {
	switch v.index {
	case 1:
		return &v.b
	case 2:
		return &v.c
	}
	return &v.a
}

func (v *Variant3[A, B, C]) variantEmplace(i int) any {
	*v = Variant3[A, B, C]{index: i}
	return v.variantPtr()
}

// Variant4 holds exactly one of A, B, C or D.
type Variant4[A, B, C, D any] struct {
	index int
	a     A
	b     B
	c     C
	d     D
}

func (v *Variant4[A, B, C, D]) Index() int { return v.index }

func (v *Variant4[A, B, C, D]) Value() any {
	switch v.index {
	case 1:
		return v.b
	case 2:
		return v.c
	case 3:
		return v.d
	}
	return v.a
}

func (v *Variant4[A, B, C, D]) SetFirst(x A)  { *v = Variant4[A, B, C, D]{index: 0, a: x} }
func (v *Variant4[A, B, C, D]) SetSecond(x B) { *v = Variant4[A, B, C, D]{index: 1, b: x} }
func (v *Variant4[A, B, C, D]) SetThird(x C)  { *v = Variant4[A, B, C, D]{index: 2, c: x} }
func (v *Variant4[A, B, C, D]) SetFourth(x D) { *v = Variant4[A, B, C, D]{index: 3, d: x} }

func (v Variant4[A, B, C, D]) First() (A, bool)  { return v.a, v.index == 0 }
func (v Variant4[A, B, C, D]) Second() (B, bool) { return v.b, v.index == 1 }
func (v Variant4[A, B, C, D]) Third() (C, bool)  { return v.c, v.index == 2 }
func (v Variant4[A, B, C, D]) Fourth() (D, bool) { return v.d, v.index == 3 }

func (v *Variant4[A, B, C, D]) Serialize(a *Archive) error { return archiveVariant(a, v) }

func (v *Variant4[A, B, C, D]) variantLen() int   { return 4 }
func (v *Variant4[A, B, C, D]) variantIndex() int { return v.index }

func (v *Variant4[A, B, C, D]) variantPtr() any {
	switch v.index {
	case 1:
		return &v.b
	case 2:
		return &v.c
	case 3:
		return &v.d
	}
	return &v.a
}

func (v *Variant4[A, B, C, D]) variantEmplace(i int) any {
	*v = Variant4[A, B, C, D]{index: i}
	return v.variantPtr()
}
