package tree

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/oy3o/archive"
)

// ToAny converts n into plain Go values: map[string]any, []any, string,
// bool, nil, and int64, uint64 or float64 depending on the number literal.
// Member order and hints are dropped.
func (n *Node) ToAny() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case Bool:
		return n.Bool
	case String:
		return n.Text
	case Number:
		return numberValue(n.Text)
	case Array:
		items := make([]any, len(n.Items))
		for i, it := range n.Items {
			items[i] = it.ToAny()
		}
		return items
	case Object:
		m := make(map[string]any, len(n.Members))
		for _, mb := range n.Members {
			m[mb.Name] = mb.Value.ToAny()
		}
		return m
	}
	return nil
}

func numberValue(lit string) any {
	if v, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseUint(lit, 10, 64); err == nil {
		return v
	}
	f, _ := strconv.ParseFloat(lit, 64)
	return f
}

// FromAny converts plain Go values, as produced by generic decoders, into a
// tree. Map members are sorted by name so the result is deterministic.
func FromAny(v any) (*Node, error) {
	switch x := v.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(x), nil
	case string:
		return NewString(x), nil
	case []byte:
		return NewString(string(x)), nil
	case int:
		return NewInt(int64(x)), nil
	case int8:
		return NewInt(int64(x)), nil
	case int16:
		return NewInt(int64(x)), nil
	case int32:
		return NewInt(int64(x)), nil
	case int64:
		return NewInt(x), nil
	case uint:
		return NewUint(uint64(x)), nil
	case uint8:
		return NewUint(uint64(x)), nil
	case uint16:
		return NewUint(uint64(x)), nil
	case uint32:
		return NewUint(uint64(x)), nil
	case uint64:
		return NewUint(x), nil
	case float32:
		return floatNode(float64(x))
	case float64:
		return floatNode(x)
	case []any:
		arr := NewArray()
		for i, it := range x {
			n, err := FromAny(it)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr.Append(n)
		}
		return arr, nil
	case map[string]any:
		return objectFrom(x, func(k string) (string, error) { return k, nil })
	case map[any]any:
		return objectFrom(x, func(k any) (string, error) {
			s, ok := k.(string)
			if !ok {
				return "", fmt.Errorf("%w: non-string map key %v (%T)", archive.ErrMalformed, k, k)
			}
			return s, nil
		})
	}
	return nil, fmt.Errorf("%w: cannot represent %T", archive.ErrMalformed, v)
}

func floatNode(f float64) (*Node, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: non-finite number %v", archive.ErrMalformed, f)
	}
	return NewFloat(f), nil
}

func objectFrom[K comparable](m map[K]any, key func(K) (string, error)) (*Node, error) {
	names := make([]string, 0, len(m))
	values := make(map[string]any, len(m))
	for k, v := range m {
		name, err := key(k)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		values[name] = v
	}
	slices.Sort(names)

	obj := NewObject()
	for _, name := range names {
		n, err := FromAny(values[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		obj.Members = append(obj.Members, Member{Name: name, Value: n})
	}
	return obj, nil
}
