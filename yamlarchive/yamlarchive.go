// Package yamlarchive is the YAML text format. Nodes hinted OneLine are
// printed in flow style.
package yamlarchive

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/wire"
	"github.com/oy3o/archive/tree"
)

// Format is the YAML tree.Format.
type Format struct{}

func (Format) Name() string                            { return "yaml" }
func (Format) Parse(data []byte) (*tree.Node, error)   { return Parse(data) }
func (Format) Print(root *tree.Node) ([]byte, error)   { return Print(root) }

// New returns the YAML Codec.
func New() archive.Codec { return tree.Codec(Format{}) }

// NewWriter returns a Writer that prints the document to w on Close.
func NewWriter(w io.Writer) *tree.StreamWriter { return tree.NewStreamWriter(w, Format{}) }

// NewReader parses all of r.
func NewReader(r io.Reader) (*tree.Reader, error) { return tree.NewStreamReader(r, Format{}) }

// Parse reads a YAML document whose root is a mapping.
func Parse(data []byte) (*tree.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", archive.ErrMalformed, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document root must be a mapping", archive.ErrMalformed)
	}
	return fromYAML(root, 0)
}

// maxAliasDepth stops alias cycles.
const maxAliasDepth = 64

func fromYAML(n *yaml.Node, depth int) (*tree.Node, error) {
	if depth > maxAliasDepth {
		return nil, fmt.Errorf("%w: line %d: nesting too deep", archive.ErrMalformed, n.Line)
	}
	switch n.Kind {
	case yaml.AliasNode:
		return fromYAML(n.Alias, depth+1)
	case yaml.MappingNode:
		obj := tree.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromYAML(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := tree.NewArray()
		for _, c := range n.Content {
			v, err := fromYAML(c, depth+1)
			if err != nil {
				return nil, err
			}
			arr.Append(v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalar(n)
	}
	return nil, fmt.Errorf("%w: line %d: unexpected node", archive.ErrMalformed, n.Line)
}

func scalar(n *yaml.Node) (*tree.Node, error) {
	switch n.ShortTag() {
	case "!!null":
		return tree.NewNull(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", archive.ErrMalformed, n.Line, err)
		}
		return tree.NewBool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return tree.NewInt(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", archive.ErrMalformed, n.Line, err)
		}
		return tree.NewUint(u), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", archive.ErrMalformed, n.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: line %d: non-finite number", archive.ErrMalformed, n.Line)
		}
		return tree.NewFloat(f), nil
	}
	return tree.NewString(n.Value), nil
}

// Print renders root as a YAML document.
func Print(root *tree.Node) ([]byte, error) {
	buf := wire.GetBuffer()
	defer wire.PutBuffer(buf)

	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(root, false)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func toYAML(n *tree.Node, flow bool) *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	flow = flow || n.Hint == archive.HintOneLine
	childFlow := flow || n.Hint == archive.HintChildrenOneLine

	out := &yaml.Node{}
	if flow {
		out.Style = yaml.FlowStyle
	}
	switch n.Kind {
	case tree.Object:
		out.Kind, out.Tag = yaml.MappingNode, "!!map"
		for _, m := range n.Members {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Name}
			out.Content = append(out.Content, key, toYAML(m.Value, childFlow))
		}
	case tree.Array:
		out.Kind, out.Tag = yaml.SequenceNode, "!!seq"
		for _, it := range n.Items {
			out.Content = append(out.Content, toYAML(it, childFlow))
		}
	case tree.String:
		out.Kind, out.Tag, out.Value = yaml.ScalarNode, "!!str", n.Text
		out.Style = 0
	case tree.Number:
		out.Kind, out.Value = yaml.ScalarNode, n.Text
		out.Tag = "!!float"
		if _, err := strconv.ParseInt(n.Text, 10, 64); err == nil {
			out.Tag = "!!int"
		} else if _, err := strconv.ParseUint(n.Text, 10, 64); err == nil {
			out.Tag = "!!int"
		}
		out.Style = 0
	case tree.Bool:
		out.Kind, out.Tag, out.Value = yaml.ScalarNode, "!!bool", strconv.FormatBool(n.Bool)
		out.Style = 0
	default:
		out.Kind, out.Tag, out.Value = yaml.ScalarNode, "!!null", "null"
		out.Style = 0
	}
	return out
}
