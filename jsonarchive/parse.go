package jsonarchive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/tree"
)

// SyntaxError locates a parse failure in the input.
type SyntaxError struct {
	Line    int   // 1-based
	Column  int   // 1-based, in bytes
	Offset  int64 // 0-based byte offset
	Context string
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("json: line %d column %d: %s\n\t%s", e.Line, e.Column, e.Msg, e.Context)
}

func (e *SyntaxError) Unwrap() error { return archive.ErrMalformed }

func newSyntaxError(src []byte, offset int64, msg string) *SyntaxError {
	offset = min(max(offset, 0), int64(len(src)))
	head := src[:offset]
	line := bytes.Count(head, []byte{'\n'}) + 1
	start := bytes.LastIndexByte(head, '\n') + 1
	end := bytes.IndexByte(src[start:], '\n')
	if end < 0 {
		end = len(src) - start
	}
	ctx := bytes.TrimRight(src[start:start+end], "\r")
	return &SyntaxError{
		Line:    line,
		Column:  int(offset) - start + 1,
		Offset:  offset,
		Context: string(ctx),
		Msg:     msg,
	}
}

// Parse reads a JSON document. Comments and trailing commas are accepted.
// Member order is preserved and numbers keep their literal text.
func Parse(data []byte) (*tree.Node, error) {
	clean := jsonc.ToJSON(data)
	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.UseNumber()

	p := parser{dec: dec, src: data}
	root, err := p.value()
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, newSyntaxError(data, dec.InputOffset(), "unexpected data after top-level value")
	}
	if root.Kind != tree.Object {
		return nil, newSyntaxError(data, 0, "document root must be an object")
	}
	return root, nil
}

type parser struct {
	dec *json.Decoder
	src []byte
}

func (p *parser) fail(err error) error {
	var se *json.SyntaxError
	switch {
	case errors.As(err, &se):
		return newSyntaxError(p.src, se.Offset, se.Error())
	case err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF):
		return newSyntaxError(p.src, int64(len(p.src)), "unexpected end of input")
	}
	return newSyntaxError(p.src, p.dec.InputOffset(), err.Error())
}

func (p *parser) value() (*tree.Node, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return nil, p.fail(err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return p.object()
		case '[':
			return p.array()
		}
		return nil, newSyntaxError(p.src, p.dec.InputOffset(), fmt.Sprintf("unexpected %q", t))
	case string:
		return tree.NewString(t), nil
	case json.Number:
		return tree.NewNumber(t.String()), nil
	case bool:
		return tree.NewBool(t), nil
	case nil:
		return tree.NewNull(), nil
	}
	return nil, newSyntaxError(p.src, p.dec.InputOffset(), fmt.Sprintf("unexpected token %v", tok))
}

func (p *parser) object() (*tree.Node, error) {
	obj := tree.NewObject()
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.fail(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, newSyntaxError(p.src, p.dec.InputOffset(), "object key must be a string")
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	if _, err := p.dec.Token(); err != nil {
		return nil, p.fail(err)
	}
	return obj, nil
}

func (p *parser) array() (*tree.Node, error) {
	arr := tree.NewArray()
	for p.dec.More() {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		arr.Append(v)
	}
	if _, err := p.dec.Token(); err != nil {
		return nil, p.fail(err)
	}
	return arr, nil
}
