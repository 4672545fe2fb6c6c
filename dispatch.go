package archive

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
)

func (a *Archive) value(rv reflect.Value) error {
	switch p := rv.Addr().Interface().(type) {
	case *bool:
		return a.boolValue(p)
	case *string:
		return a.stringValue(p)
	case *int:
		return archiveNumber(a, "", p)
	case *int8:
		return archiveNumber(a, "", p)
	case *int16:
		return archiveNumber(a, "", p)
	case *int32:
		return archiveNumber(a, "", p)
	case *int64:
		return archiveNumber(a, "", p)
	case *uint:
		return archiveNumber(a, "", p)
	case *uint8:
		return archiveNumber(a, "", p)
	case *uint16:
		return archiveNumber(a, "", p)
	case *uint32:
		return archiveNumber(a, "", p)
	case *uint64:
		return archiveNumber(a, "", p)
	case *float32:
		return archiveNumber(a, "", p)
	case *float64:
		return archiveNumber(a, "", p)
	}

	// Named types over the scalar kinds.
	switch rv.Kind() {
	case reflect.Bool:
		b := rv.Bool()
		if err := a.boolValue(&b); err != nil {
			return err
		}
		rv.SetBool(b)
	case reflect.String:
		s := rv.String()
		if err := a.stringValue(&s); err != nil {
			return err
		}
		rv.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if err := archiveNumber(a, "", &n); err != nil {
			return err
		}
		if rv.OverflowInt(n) {
			return fmt.Errorf("%w: %d overflows %s", ErrMalformed, n, rv.Type())
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if err := archiveNumber(a, "", &n); err != nil {
			return err
		}
		if rv.OverflowUint(n) {
			return fmt.Errorf("%w: %d overflows %s", ErrMalformed, n, rv.Type())
		}
		rv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if err := archiveNumber(a, "", &f); err != nil {
			return err
		}
		rv.SetFloat(f)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, rv.Type())
	}
	return nil
}

func (a *Archive) boolValue(p *bool) error {
	if a.IsWriting() {
		return a.w.WriteBool("", *p)
	}
	v, err := a.r.ReadBool("")
	if err == nil {
		*p = v
	}
	return err
}

func (a *Archive) stringValue(p *string) error {
	if a.IsWriting() {
		return a.w.WriteString("", *p)
	}
	v, err := a.r.ReadString("")
	if err == nil {
		*p = v
	}
	return err
}

func (a *Archive) optional(name string, rv reflect.Value, hint Hint, explicit bool) error {
	o := rv.Addr().Interface().(optionalValue)
	if a.IsWriting() {
		present := o.optionalPresent()
		if pw, ok := a.w.(PresenceWriter); ok {
			if err := pw.WritePresence(name, present); err != nil {
				return err
			}
		}
		if !present {
			return nil
		}
		return a.field(name, reflect.ValueOf(o.optionalPtr()).Elem(), hint, explicit)
	}

	if pr, ok := a.r.(PresenceReader); ok {
		present, err := pr.ReadPresence(name)
		if err != nil {
			return err
		}
		if !present {
			o.optionalReset()
			return nil
		}
	}
	err := a.field(name, reflect.ValueOf(o.optionalEmplace()).Elem(), hint, explicit)
	if err == errAbsent {
		o.optionalReset()
		return nil
	}
	return err
}

func (a *Archive) forwardValue(name string, rv reflect.Value, hint Hint, explicit bool) error {
	f := rv.Addr().Interface().(ValueForwarder)
	var cur any
	if z, ok := f.(ForwardedValueMaker); ok && a.IsReading() {
		cur = z.NewForwardedValue()
	} else {
		var err error
		if cur, err = f.ForwardValue(); err != nil {
			return err
		}
	}
	if cur == nil {
		return fmt.Errorf("%w: %s forwards to nil", ErrUnsupportedType, rv.Type())
	}
	tmp := addressable(reflect.ValueOf(cur))
	if err := a.field(name, tmp, hint, explicit); err != nil {
		return err
	}
	if a.IsReading() {
		return f.SetForwardedValue(tmp.Interface())
	}
	return nil
}

func (a *Archive) forwardRef(name string, rv reflect.Value, hint Hint, explicit bool) error {
	p := reflect.ValueOf(rv.Addr().Interface().(ReferenceForwarder).ForwardReference())
	if p.Kind() != reflect.Pointer || p.IsNil() {
		return fmt.Errorf("%w: %s must forward to a non-nil pointer", ErrUnsupportedType, rv.Type())
	}
	return a.field(name, p.Elem(), hint, explicit)
}

func (a *Archive) text(name string, rv reflect.Value, hint Hint, explicit bool) error {
	var s string
	if a.IsWriting() {
		b, err := rv.Addr().Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return err
		}
		s = string(b)
	}
	if err := a.field(name, reflect.ValueOf(&s).Elem(), hint, explicit); err != nil {
		return err
	}
	if a.IsReading() {
		if err := rv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, rv.Type(), err)
		}
	}
	return nil
}

// pointer archives the pointee of a non-owning pointer, allocating it
// when reading into nil.
func (a *Archive) pointer(name string, rv reflect.Value, hint Hint, explicit bool) error {
	if rv.IsNil() {
		if a.IsWriting() {
			return fmt.Errorf("%w: %s", ErrNilReference, rv.Type())
		}
		fresh := reflect.New(rv.Type().Elem())
		if err := a.field(name, fresh.Elem(), hint, explicit); err != nil {
			return err
		}
		rv.Set(fresh)
		return nil
	}
	return a.field(name, rv.Elem(), hint, explicit)
}

// owning archives the content of an owning-reference Struct entry. The
// entry itself is already open.
func (a *Archive) owning(rv reflect.Value) error {
	slot := rv.Type()
	reg := a.opts.registry

	if a.IsWriting() {
		if rv.IsNil() {
			return fmt.Errorf("%w: %s", ErrNilReference, slot)
		}
		obj := rv.Interface()
		t, err := reg.GetPolymorphic(obj)
		if err != nil {
			if slot.Kind() == reflect.Pointer && errors.Is(err, ErrUnregistered) {
				if err := a.w.WriteTypeName(""); err != nil {
					return err
				}
				return callSerialize(a, obj)
			}
			return err
		}
		if err := a.w.WriteTypeName(t.Name()); err != nil {
			return err
		}
		return t.Serialize(a, obj)
	}

	typeName, err := a.r.TypeName()
	if err != nil {
		return err
	}
	if typeName == "" {
		if slot.Kind() == reflect.Pointer {
			if rv.IsNil() {
				rv.Set(reflect.New(slot.Elem()))
			}
			return callSerialize(a, rv.Interface())
		}
		if rv.IsNil() {
			return fmt.Errorf("%w: missing type name for %s", ErrFactory, slot)
		}
		t, err := reg.GetPolymorphic(rv.Interface())
		if err != nil {
			return err
		}
		return t.Serialize(a, rv.Interface())
	}

	t, err := reg.Get(typeName)
	if err != nil {
		return err
	}
	if !rv.IsNil() {
		if !t.holds(rv.Interface()) {
			return fmt.Errorf("%w: data holds %s but the slot holds %T", ErrNotBase, typeName, rv.Interface())
		}
		return t.Serialize(a, rv.Interface())
	}
	obj, held, err := t.instantiate(slot)
	if err != nil {
		return err
	}
	a.opts.logger.Debug("created instance", "type", typeName, "slot", slot.String())
	if err := t.Serialize(a, obj.Interface()); err != nil {
		return err
	}
	rv.Set(held)
	return nil
}
