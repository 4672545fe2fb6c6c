package jsonarchive

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/wire"
	"github.com/oy3o/archive/tree"
)

// Print renders root as indented JSON. Nodes hinted OneLine are printed on
// a single line, and so are the children of nodes hinted ChildrenOneLine.
func Print(root *tree.Node, opts ...Option) []byte {
	c := buildConfig(opts)
	buf := wire.GetBuffer()
	defer wire.PutBuffer(buf)

	p := printer{buf: buf, indent: c.indent}
	p.value(root, 0, false)
	buf.WriteByte('\n')
	return bytes.Clone(buf.Bytes())
}

type printer struct {
	buf    *bytes.Buffer
	indent string
}

func (p *printer) newline(depth int) {
	p.buf.WriteByte('\n')
	p.buf.WriteString(strings.Repeat(p.indent, depth))
}

func (p *printer) value(n *tree.Node, depth int, oneLine bool) {
	if n == nil {
		p.buf.WriteString("null")
		return
	}
	oneLine = oneLine || n.Hint == archive.HintOneLine || p.indent == ""
	childOneLine := oneLine || n.Hint == archive.HintChildrenOneLine

	switch n.Kind {
	case tree.Null:
		p.buf.WriteString("null")
	case tree.Bool:
		if n.Bool {
			p.buf.WriteString("true")
		} else {
			p.buf.WriteString("false")
		}
	case tree.Number:
		p.buf.WriteString(n.Text)
	case tree.String:
		writeString(p.buf, n.Text)
	case tree.Array:
		if len(n.Items) == 0 {
			p.buf.WriteString("[]")
			return
		}
		p.buf.WriteByte('[')
		for i, it := range n.Items {
			p.separator(i, depth, oneLine)
			p.value(it, depth+1, childOneLine)
		}
		p.close(']', depth, oneLine)
	case tree.Object:
		if len(n.Members) == 0 {
			p.buf.WriteString("{}")
			return
		}
		p.buf.WriteByte('{')
		for i, m := range n.Members {
			p.separator(i, depth, oneLine)
			writeString(p.buf, m.Name)
			p.buf.WriteString(": ")
			p.value(m.Value, depth+1, childOneLine)
		}
		p.close('}', depth, oneLine)
	}
}

func (p *printer) separator(i, depth int, oneLine bool) {
	if i > 0 {
		p.buf.WriteByte(',')
		if oneLine {
			p.buf.WriteByte(' ')
		}
	}
	if !oneLine {
		p.newline(depth + 1)
	}
}

func (p *printer) close(c byte, depth int, oneLine bool) {
	if !oneLine {
		p.newline(depth)
	}
	p.buf.WriteByte(c)
}

const hex = "0123456789abcdef"

// writeString writes s as a JSON string. Invalid UTF-8 is replaced by U+FFFD.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"' || c == '\\':
				buf.WriteByte('\\')
				buf.WriteByte(c)
			case c == '\n':
				buf.WriteString(`\n`)
			case c == '\r':
				buf.WriteString(`\r`)
			case c == '\t':
				buf.WriteString(`\t`)
			case c < 0x20:
				buf.WriteString(`\u00`)
				buf.WriteByte(hex[c>>4])
				buf.WriteByte(hex[c&0xF])
			default:
				buf.WriteByte(c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf.WriteString("\uFFFD")
		} else {
			buf.WriteString(s[i : i+size])
		}
		i += size
	}
	buf.WriteByte('"')
}
