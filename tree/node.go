// Package tree is the document model shared by the text formats. A Node is
// an ordered JSON-like tree; Reader and Writer implement the archive
// contract over it, and the format packages only parse and print Nodes.
//
// Layout conventions:
//   - the document root is an object whose members are the top-level fields
//   - a Struct entry is an object; its polymorphic type name is stored in the
//     reserved member "@type" and its schema version in "@type_version"
//   - Range and Vector entries are arrays
//   - unnamed entries inside an object are named "@noname0", "@noname1", ...
//     in the order they occur
//   - null stands for an absent value
package tree

import (
	"fmt"
	"strconv"

	"github.com/oy3o/archive"
)

// Reserved member names.
const (
	TypeMember        = "@type"
	TypeVersionMember = "@type_version"
	NonamePrefix      = "@noname"
)

type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Member is one named child of an object.
type Member struct {
	Name  string
	Value *Node
}

// Node is one value of a document. Numbers keep their literal text so that
// 64-bit integers survive a round trip.
type Node struct {
	Kind    Kind
	Bool    bool
	Text    string // literal of a Number, content of a String
	Items   []*Node
	Members []Member
	// Hint is the layout requested by the writer. Printers may honour it;
	// parsers leave it unset.
	Hint archive.Hint
}

func NewNull() *Node                 { return &Node{Kind: Null} }
func NewBool(b bool) *Node           { return &Node{Kind: Bool, Bool: b} }
func NewString(s string) *Node       { return &Node{Kind: String, Text: s} }
func NewNumber(literal string) *Node { return &Node{Kind: Number, Text: literal} }
func NewArray(items ...*Node) *Node  { return &Node{Kind: Array, Items: items} }
func NewObject() *Node               { return &Node{Kind: Object} }

func NewInt(v int64) *Node    { return NewNumber(strconv.FormatInt(v, 10)) }
func NewUint(v uint64) *Node  { return NewNumber(strconv.FormatUint(v, 10)) }
func NewFloat(v float64) *Node { return NewNumber(FormatFloat(v)) }

// FormatFloat renders v in the shortest form that parses back to v.
func FormatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func (n *Node) IsNull() bool { return n == nil || n.Kind == Null }

// Get returns the member called name, or nil.
func (n *Node) Get(name string) *Node {
	if n == nil || n.Kind != Object {
		return nil
	}
	for i := range n.Members {
		if n.Members[i].Name == name {
			return n.Members[i].Value
		}
	}
	return nil
}

// Set replaces the member called name or appends it.
func (n *Node) Set(name string, v *Node) {
	for i := range n.Members {
		if n.Members[i].Name == name {
			n.Members[i].Value = v
			return
		}
	}
	n.Members = append(n.Members, Member{Name: name, Value: v})
}

func (n *Node) Append(v *Node) { n.Items = append(n.Items, v) }

// Len is the number of items of an array or members of an object.
func (n *Node) Len() int {
	switch n.Kind {
	case Array:
		return len(n.Items)
	case Object:
		return len(n.Members)
	}
	return 0
}

// Equal compares two trees by content. Member order and hints are ignored.
func (n *Node) Equal(o *Node) bool {
	if n.IsNull() || o.IsNull() {
		return n.IsNull() && o.IsNull()
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case Bool:
		return n.Bool == o.Bool
	case String:
		return n.Text == o.Text
	case Number:
		if n.Text == o.Text {
			return true
		}
		a, errA := strconv.ParseFloat(n.Text, 64)
		b, errB := strconv.ParseFloat(o.Text, 64)
		return errA == nil && errB == nil && a == b
	case Array:
		if len(n.Items) != len(o.Items) {
			return false
		}
		for i := range n.Items {
			if !n.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(n.Members) != len(o.Members) {
			return false
		}
		for _, m := range n.Members {
			if !m.Value.Equal(o.Get(m.Name)) {
				return false
			}
		}
		return true
	}
	return false
}
