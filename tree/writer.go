package tree

import (
	"fmt"
	"math"
	"strconv"

	"github.com/oy3o/archive"
)

type wframe struct {
	node   *Node
	entry  archive.EntryType
	hint   archive.Hint
	noname int
}

// Writer builds a document tree from an archive traversal. The tree is
// complete once every entry has been closed; Root returns it.
type Writer struct {
	root  *Node
	stack []*wframe
}

var (
	_ archive.Writer         = (*Writer)(nil)
	_ archive.IntWriter      = (*Writer)(nil)
	_ archive.PresenceWriter = (*Writer)(nil)
)

func NewWriter() *Writer {
	root := NewObject()
	return &Writer{root: root, stack: []*wframe{{node: root, entry: archive.Struct}}}
}

// Root returns the document. It is meaningful after the last EndEntry.
func (w *Writer) Root() *Node { return w.root }

// Depth is the number of open entries below the document root.
func (w *Writer) Depth() int { return len(w.stack) - 1 }

func (w *Writer) top() *wframe { return w.stack[len(w.stack)-1] }

// attach places v into the innermost open container under name.
func (w *Writer) attach(name string, v *Node) error {
	parent := w.top()
	switch parent.node.Kind {
	case Array:
		parent.node.Append(v)
	case Object:
		if name == "" {
			name = NonamePrefix + strconv.Itoa(parent.noname)
			parent.noname++
		}
		parent.node.Set(name, v)
	default:
		return fmt.Errorf("%w: cannot add %q to a %s", archive.ErrUnbalancedEntry, name, parent.node.Kind)
	}
	return nil
}

func (w *Writer) BeginEntry(name string, t archive.EntryType, hint archive.Hint) (bool, error) {
	var n *Node
	switch t {
	case archive.Struct:
		n = NewObject()
	case archive.Range, archive.Vector:
		n = NewArray()
	default:
		n = NewNull()
	}
	if hint == archive.HintNone && w.top().hint == archive.HintChildrenOneLine {
		hint = archive.HintOneLine
	}
	n.Hint = hint
	if err := w.attach(name, n); err != nil {
		return false, err
	}
	w.stack = append(w.stack, &wframe{node: n, entry: t, hint: hint})
	return true, nil
}

func (w *Writer) EndEntry(name string, t archive.EntryType) error {
	if len(w.stack) < 2 || w.top().entry != t {
		return fmt.Errorf("%w: end of %s %q", archive.ErrUnbalancedEntry, t, name)
	}
	w.stack = w.stack[:len(w.stack)-1]
	return nil
}

// WritePresence keeps vectors of optionals aligned: an absent element of an
// array is written as null. Absent members of an object are simply omitted.
func (w *Writer) WritePresence(name string, present bool) error {
	if present || w.top().node.Kind != Array {
		return nil
	}
	return w.attach(name, NewNull())
}

func (w *Writer) WriteTypeName(name string) error {
	if name == "" {
		return nil
	}
	return w.member(TypeMember, NewString(name))
}

func (w *Writer) WriteTypeVersion(v archive.Version) error {
	return w.member(TypeVersionMember, NewString(v.String()))
}

func (w *Writer) member(name string, v *Node) error {
	f := w.top()
	if f.node.Kind != Object {
		return fmt.Errorf("%w: %s outside of a struct", archive.ErrUnbalancedEntry, name)
	}
	f.node.Set(name, v)
	return nil
}

// scalar fills the placeholder of the open Value entry, or attaches v
// directly when no Value entry is open.
func (w *Writer) scalar(name string, v *Node) error {
	f := w.top()
	if f.entry == archive.Value && len(w.stack) > 1 {
		v.Hint = f.node.Hint
		*f.node = *v
		return nil
	}
	return w.attach(name, v)
}

func (w *Writer) WriteBool(name string, v bool) error { return w.scalar(name, NewBool(v)) }

func (w *Writer) WriteFloat64(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v has no text form", archive.ErrUnsupportedType, v)
	}
	return w.scalar(name, NewFloat(v))
}

func (w *Writer) WriteString(name string, v string) error { return w.scalar(name, NewString(v)) }
func (w *Writer) WriteInt64(name string, v int64) error   { return w.scalar(name, NewInt(v)) }
func (w *Writer) WriteUint64(name string, v uint64) error { return w.scalar(name, NewUint(v)) }

// Finish checks that every entry was closed and returns the document.
func (w *Writer) Finish() (*Node, error) {
	if len(w.stack) != 1 {
		return nil, fmt.Errorf("%w: %d entries still open", archive.ErrUnbalancedEntry, len(w.stack)-1)
	}
	return w.root, nil
}
