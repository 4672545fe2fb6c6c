package tree

import (
	"fmt"
	"strconv"

	"github.com/oy3o/archive"
)

type rframe struct {
	node   *Node
	entry  archive.EntryType
	noname int
	pos    int // next item of an array
}

// Reader walks a document tree for an archive traversal. Members are looked
// up by name, so their order in the document does not matter.
type Reader struct {
	stack []*rframe
}

var (
	_ archive.Reader         = (*Reader)(nil)
	_ archive.IntReader      = (*Reader)(nil)
	_ archive.PresenceReader = (*Reader)(nil)
)

// NewReader returns a Reader over root, which must be an object.
func NewReader(root *Node) (*Reader, error) {
	if root == nil || root.Kind != Object {
		kind := Null
		if root != nil {
			kind = root.Kind
		}
		return nil, fmt.Errorf("%w: document root must be an object, got %s", archive.ErrMalformed, kind)
	}
	return &Reader{stack: []*rframe{{node: root, entry: archive.Struct}}}, nil
}

func (r *Reader) top() *rframe { return r.stack[len(r.stack)-1] }

func nonameOf(i int) string { return NonamePrefix + strconv.Itoa(i) }

// child resolves the next entry of the innermost container without
// consuming it.
func (r *Reader) child(name string) (*Node, error) {
	f := r.top()
	switch f.node.Kind {
	case Object:
		if name == "" {
			name = nonameOf(f.noname)
		}
		return f.node.Get(name), nil
	case Array:
		if f.pos >= len(f.node.Items) {
			return nil, nil
		}
		return f.node.Items[f.pos], nil
	}
	return nil, fmt.Errorf("%w: %s %q has no children", archive.ErrUnbalancedEntry, f.node.Kind, name)
}

// consume advances past the entry child just returned.
func (r *Reader) consume(name string) {
	f := r.top()
	switch f.node.Kind {
	case Object:
		if name == "" {
			f.noname++
		}
	case Array:
		f.pos++
	}
}

func (r *Reader) BeginEntry(name string, t archive.EntryType) (bool, error) {
	n, err := r.child(name)
	if err != nil {
		return false, err
	}
	r.consume(name)
	if n.IsNull() {
		return false, nil
	}
	if err := checkKind(n, t); err != nil {
		return false, fmt.Errorf("%w: entry %q", err, name)
	}
	r.stack = append(r.stack, &rframe{node: n, entry: t})
	return true, nil
}

func checkKind(n *Node, t archive.EntryType) error {
	want := ""
	switch t {
	case archive.Struct:
		if n.Kind != Object {
			want = "an object"
		}
	case archive.Range, archive.Vector:
		if n.Kind != Array {
			want = "an array"
		}
	default:
		if n.Kind == Object || n.Kind == Array {
			want = "a scalar"
		}
	}
	if want != "" {
		return fmt.Errorf("%w: %s expects %s, found %s", archive.ErrMalformed, t, want, n.Kind)
	}
	return nil
}

func (r *Reader) EndEntry(name string, t archive.EntryType) error {
	if len(r.stack) < 2 || r.top().entry != t {
		return fmt.Errorf("%w: end of %s %q", archive.ErrUnbalancedEntry, t, name)
	}
	r.stack = r.stack[:len(r.stack)-1]
	return nil
}

func (r *Reader) ArrayHasNext(string) (bool, error) {
	f := r.top()
	if f.node.Kind != Array {
		return false, fmt.Errorf("%w: has-next outside of an array", archive.ErrUnbalancedEntry)
	}
	return f.pos < len(f.node.Items), nil
}

// ReadPresence reports whether the next entry holds a value. A null element
// of an array is consumed here, since no entry will be opened for it.
func (r *Reader) ReadPresence(name string) (bool, error) {
	n, err := r.child(name)
	if err != nil {
		return false, err
	}
	if n.IsNull() {
		if r.top().node.Kind == Array && n != nil {
			r.consume(name)
		}
		return false, nil
	}
	return true, nil
}

func (r *Reader) TypeName() (string, error) {
	n := r.top().node.Get(TypeMember)
	if n.IsNull() {
		return "", nil
	}
	if n.Kind != String {
		return "", fmt.Errorf("%w: %s must be a string", archive.ErrMalformed, TypeMember)
	}
	return n.Text, nil
}

func (r *Reader) TypeVersion() (archive.Version, error) {
	n := r.top().node.Get(TypeVersionMember)
	if n.IsNull() {
		return archive.Version{}, nil
	}
	if n.Kind != String {
		return archive.Version{}, fmt.Errorf("%w: %s must be a string", archive.ErrMalformed, TypeVersionMember)
	}
	return archive.ParseVersion(n.Text)
}

// scalar returns the value of the open Value entry, or the named child when
// no Value entry is open.
func (r *Reader) scalar(name string, want Kind) (*Node, error) {
	var n *Node
	if f := r.top(); f.entry == archive.Value && len(r.stack) > 1 {
		n = f.node
	} else {
		c, err := r.child(name)
		if err != nil {
			return nil, err
		}
		if c.IsNull() {
			return nil, fmt.Errorf("%w: %q", archive.ErrFieldNotFound, name)
		}
		r.consume(name)
		n = c
	}
	if n.Kind != want {
		return nil, fmt.Errorf("%w: expected %s, found %s", archive.ErrMalformed, want, n.Kind)
	}
	return n, nil
}

func (r *Reader) ReadBool(name string) (bool, error) {
	n, err := r.scalar(name, Bool)
	if err != nil {
		return false, err
	}
	return n.Bool, nil
}

func (r *Reader) ReadString(name string) (string, error) {
	n, err := r.scalar(name, String)
	if err != nil {
		return "", err
	}
	return n.Text, nil
}

func (r *Reader) ReadFloat64(name string) (float64, error) {
	n, err := r.scalar(name, Number)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(n.Text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: number %q: %v", archive.ErrMalformed, n.Text, err)
	}
	return f, nil
}

// ReadInt64 parses the literal exactly. Literals with a fraction or exponent
// are read as doubles and truncated.
func (r *Reader) ReadInt64(name string) (int64, error) {
	n, err := r.scalar(name, Number)
	if err != nil {
		return 0, err
	}
	if v, err := strconv.ParseInt(n.Text, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(n.Text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: number %q: %v", archive.ErrMalformed, n.Text, err)
	}
	return int64(f), nil
}

func (r *Reader) ReadUint64(name string) (uint64, error) {
	n, err := r.scalar(name, Number)
	if err != nil {
		return 0, err
	}
	if v, err := strconv.ParseUint(n.Text, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(n.Text, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("%w: unsigned number %q", archive.ErrMalformed, n.Text)
	}
	return uint64(f), nil
}
