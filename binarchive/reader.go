package binarchive

import (
	"fmt"
	"io"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/wire"
)

type frame struct {
	entry archive.EntryType
	// next is the last continuation byte read inside an array entry.
	next bool
}

// Reader parses the binary format.
type Reader struct {
	r     *wire.Reader
	stack []frame
}

var (
	_ archive.Reader         = (*Reader)(nil)
	_ archive.PresenceReader = (*Reader)(nil)
	_ io.Closer              = (*Reader)(nil)
)

func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	c := buildConfig(opts)
	rr, err := wire.NewReader(r)
	if err != nil {
		return nil, err
	}
	rr.WithByteOrder(c.order).WithMaxStringLen(c.maxString)
	return &Reader{r: rr}, nil
}

// err converts a latched stream error into a malformed-input error.
func (r *Reader) err() error {
	if err := r.r.Err(); err != nil {
		return fmt.Errorf("%w: offset %d: %w", archive.ErrMalformed, r.r.Count(), err)
	}
	return nil
}

func (r *Reader) top() *frame {
	if len(r.stack) == 0 {
		return nil
	}
	return &r.stack[len(r.stack)-1]
}

func (r *Reader) readNext(f *frame) {
	r.r.ReadBool(&f.next)
}

func (r *Reader) BeginEntry(_ string, t archive.EntryType) (bool, error) {
	r.stack = append(r.stack, frame{entry: t})
	if t.IsArray() {
		r.readNext(r.top())
	}
	return true, r.err()
}

func (r *Reader) EndEntry(_ string, t archive.EntryType) error {
	f := r.top()
	if f == nil || f.entry != t {
		return fmt.Errorf("%w: end of %s", archive.ErrUnbalancedEntry, t)
	}
	if t.IsArray() && f.next {
		return fmt.Errorf("%w: unread elements in %s", archive.ErrRangeLength, t)
	}
	r.stack = r.stack[:len(r.stack)-1]
	if parent := r.top(); parent != nil && parent.entry.IsArray() {
		r.readNext(parent)
	}
	return r.err()
}

func (r *Reader) ArrayHasNext(string) (bool, error) {
	f := r.top()
	if f == nil || !f.entry.IsArray() {
		return false, fmt.Errorf("%w: has-next outside of an array", archive.ErrUnbalancedEntry)
	}
	return f.next, r.err()
}

// ReadPresence reads the presence byte of an optional. An absent element of
// an array has no entry of its own, so the next continuation byte follows
// immediately.
func (r *Reader) ReadPresence(string) (bool, error) {
	var present bool
	r.r.ReadBool(&present)
	if f := r.top(); !present && f != nil && f.entry.IsArray() {
		r.readNext(f)
	}
	return present, r.err()
}

func (r *Reader) TypeName() (string, error) {
	var name string
	r.r.ReadString(&name)
	return name, r.err()
}

func (r *Reader) TypeVersion() (archive.Version, error) {
	var s string
	r.r.ReadString(&s)
	if err := r.err(); err != nil {
		return archive.Version{}, err
	}
	return archive.ParseVersion(s)
}

func (r *Reader) ReadBool(string) (bool, error) {
	var v bool
	r.r.ReadBool(&v)
	return v, r.err()
}

func (r *Reader) ReadFloat64(string) (float64, error) {
	var v float64
	r.r.ReadFloat64(&v)
	return v, r.err()
}

func (r *Reader) ReadString(string) (string, error) {
	var v string
	r.r.ReadString(&v)
	return v, r.err()
}

// Close verifies that every entry was closed and the input is exhausted.
func (r *Reader) Close() error {
	if len(r.stack) != 0 {
		return fmt.Errorf("%w: %d entries still open", archive.ErrUnbalancedEntry, len(r.stack))
	}
	r.r.ExpectEOF()
	return r.err()
}
