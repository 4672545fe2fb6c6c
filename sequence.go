package archive

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

// member archives one named child of an already open entry and attaches
// name to any error it returns.
func (a *Archive) member(name string, rv reflect.Value) error {
	err := a.field(name, rv, HintNone, false)
	if err == errAbsent {
		err = fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	return wrapPath(name, err)
}

// element archives the i-th unnamed element of an open Range or Vector.
func (a *Archive) element(i int, rv reflect.Value) error {
	err := a.field("", rv, HintNone, false)
	if err == errAbsent {
		err = fmt.Errorf("%w: element %d", ErrFieldNotFound, i)
	}
	return wrapPath("["+strconv.Itoa(i)+"]", err)
}

func (a *Archive) hasNext() (bool, error) { return a.r.ArrayHasNext("") }

// fixedRange archives exactly n elements. Reading fails when the stream holds
// fewer or more.
func (a *Archive) fixedRange(n int, at func(int) reflect.Value) error {
	for i := range n {
		if a.IsReading() {
			ok, err := a.hasNext()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: expected %d elements, got %d", ErrRangeLength, n, i)
			}
		}
		if err := a.element(i, at(i)); err != nil {
			return err
		}
	}
	if a.IsReading() {
		ok, err := a.hasNext()
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("%w: more than %d elements", ErrRangeLength, n)
		}
	}
	return nil
}

// rangeElem returns a function addressing the sub-elements of a fixed range
// value, for flattening it into an enclosing vector.
func rangeElem(ev reflect.Value) func(int) reflect.Value {
	if ev.Kind() == reflect.Array {
		return ev.Index
	}
	c := ev.Addr().Interface().(RangeContainer)
	return func(j int) reflect.Value { return reflect.ValueOf(c.At(j)).Elem() }
}

// vectorElem archives element i of a vector, flattening it when the vector
// unpacks its elements.
func (a *Archive) vectorElem(i int, ev reflect.Value, tr traits) error {
	if !tr.unpack {
		return a.element(i, ev)
	}
	at := rangeElem(ev)
	for j := range tr.width {
		if j > 0 && a.IsReading() {
			ok, err := a.hasNext()
			if err != nil {
				return err
			}
			if !ok {
				return wrapPath("["+strconv.Itoa(i)+"]",
					fmt.Errorf("%w: unpacked element has %d of %d values", ErrRangeLength, j, tr.width))
			}
		}
		if err := a.element(i*tr.width+j, at(j)); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archive) slice(rv reflect.Value, tr traits) error {
	if a.IsWriting() {
		for i := range rv.Len() {
			if err := a.vectorElem(i, rv.Index(i), tr); err != nil {
				return err
			}
		}
		return nil
	}

	if !rv.IsNil() {
		rv.SetLen(0)
	}
	et := rv.Type().Elem()
	for i := 0; ; i++ {
		ok, err := a.hasNext()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		ev := reflect.New(et).Elem()
		if err := a.vectorElem(i, ev, tr); err != nil {
			return err
		}
		rv.Set(reflect.Append(rv, ev))
	}
}

func (a *Archive) customVector(rv reflect.Value, tr traits) error {
	c := rv.Addr().Interface().(VectorContainer)
	if a.IsWriting() {
		for i := range c.Len() {
			if err := a.vectorElem(i, reflect.ValueOf(c.At(i)).Elem(), tr); err != nil {
				return err
			}
		}
		return nil
	}

	c.Clear()
	for i := 0; ; i++ {
		ok, err := a.hasNext()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		p := c.NewElem()
		if err := a.vectorElem(i, reflect.ValueOf(p).Elem(), tr); err != nil {
			return err
		}
		c.PushBack(p)
	}
}

// mapPairs archives a map as a vector of {"key", "value"} structs, in key
// order when writing.
func (a *Archive) mapPairs(rv reflect.Value) error {
	pair := func(i int, k, v reflect.Value) error {
		err := a.pairEntry(k, v)
		return wrapPath("["+strconv.Itoa(i)+"]", err)
	}

	if a.IsWriting() {
		for i, k := range sortedKeys(rv) {
			if err := pair(i, addressable(k), addressable(rv.MapIndex(k))); err != nil {
				return err
			}
		}
		return nil
	}

	if !rv.IsNil() {
		rv.Clear()
	}
	mt := rv.Type()
	for i := 0; ; i++ {
		ok, err := a.hasNext()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		k, v := reflect.New(mt.Key()).Elem(), reflect.New(mt.Elem()).Elem()
		if err := pair(i, k, v); err != nil {
			return err
		}
		if rv.IsNil() {
			rv.Set(reflect.MakeMap(mt))
		}
		rv.SetMapIndex(k, v)
	}
}

func (a *Archive) pairEntry(k, v reflect.Value) error {
	if a.IsWriting() {
		ok, err := a.w.BeginEntry("", Struct, HintNone)
		if err != nil || !ok {
			return err
		}
	} else {
		found, err := a.r.BeginEntry("", Struct)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: map entry", ErrFieldNotFound)
		}
	}
	if err := a.member("key", k); err != nil {
		return err
	}
	if err := a.member("value", v); err != nil {
		return err
	}
	if a.IsWriting() {
		return a.w.EndEntry("", Struct)
	}
	return a.r.EndEntry("", Struct)
}

// setKeys archives a map[K]struct{} as a vector of its keys.
func (a *Archive) setKeys(rv reflect.Value) error {
	if a.IsWriting() {
		for i, k := range sortedKeys(rv) {
			if err := a.element(i, addressable(k)); err != nil {
				return err
			}
		}
		return nil
	}

	if !rv.IsNil() {
		rv.Clear()
	}
	mt := rv.Type()
	present := reflect.New(mt.Elem()).Elem()
	for i := 0; ; i++ {
		ok, err := a.hasNext()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		k := reflect.New(mt.Key()).Elem()
		if err := a.element(i, k); err != nil {
			return err
		}
		if rv.IsNil() {
			rv.Set(reflect.MakeMap(mt))
		}
		rv.SetMapIndex(k, present)
	}
}

// sortedKeys returns the keys of a map in a deterministic order: by value for
// the ordered kinds, by their printed form otherwise.
func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	slices.SortFunc(keys, compareValues)
	return keys
}

func compareValues(x, y reflect.Value) int {
	switch x.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(x.Int(), y.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(x.Uint(), y.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(x.Float(), y.Float())
	case reflect.String:
		return cmp.Compare(x.String(), y.String())
	case reflect.Bool:
		switch {
		case x.Bool() == y.Bool():
			return 0
		case !x.Bool():
			return -1
		}
		return 1
	}
	return cmp.Compare(fmt.Sprint(x.Interface()), fmt.Sprint(y.Interface()))
}
