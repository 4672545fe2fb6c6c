package binarchive

import (
	"fmt"
	"io"

	"github.com/oy3o/archive"
	"github.com/oy3o/archive/internal/wire"
)

// Writer emits the binary format. Output is buffered until Close.
type Writer struct {
	w     *wire.Writer
	stack []archive.EntryType
	// continued is set when WritePresence already emitted the continuation
	// byte of the element that is about to begin.
	continued bool
}

var (
	_ archive.Writer         = (*Writer)(nil)
	_ archive.PresenceWriter = (*Writer)(nil)
	_ io.Closer              = (*Writer)(nil)
)

func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	c := buildConfig(opts)
	ww, err := wire.NewWriter(w)
	if err != nil {
		return nil, err
	}
	ww.WithByteOrder(c.order)
	return &Writer{w: ww}, nil
}

func (w *Writer) inArray() bool {
	return len(w.stack) > 0 && w.stack[len(w.stack)-1].IsArray()
}

func (w *Writer) BeginEntry(_ string, t archive.EntryType, _ archive.Hint) (bool, error) {
	if w.inArray() {
		if w.continued {
			w.continued = false
		} else {
			w.w.WriteBool(true)
		}
	}
	w.stack = append(w.stack, t)
	return true, w.w.Err()
}

func (w *Writer) EndEntry(_ string, t archive.EntryType) error {
	if len(w.stack) == 0 || w.stack[len(w.stack)-1] != t {
		return fmt.Errorf("%w: end of %s", archive.ErrUnbalancedEntry, t)
	}
	w.stack = w.stack[:len(w.stack)-1]
	if t.IsArray() {
		w.w.WriteBool(false)
	}
	return w.w.Err()
}

// WritePresence writes one presence byte. Inside an array the element's
// continuation byte comes first, so that an absent optional still occupies
// its slot.
func (w *Writer) WritePresence(_ string, present bool) error {
	if w.inArray() {
		w.w.WriteBool(true)
	}
	w.w.WriteBool(present)
	w.continued = present && w.inArray()
	return w.w.Err()
}

func (w *Writer) WriteTypeName(name string) error {
	w.w.WriteString(name)
	return w.w.Err()
}

func (w *Writer) WriteTypeVersion(v archive.Version) error {
	w.w.WriteString(v.String())
	return w.w.Err()
}

func (w *Writer) WriteBool(_ string, v bool) error {
	w.w.WriteBool(v)
	return w.w.Err()
}

func (w *Writer) WriteFloat64(_ string, v float64) error {
	w.w.WriteFloat64(v)
	return w.w.Err()
}

func (w *Writer) WriteString(_ string, v string) error {
	w.w.WriteString(v)
	return w.w.Err()
}

// Close flushes buffered output. It fails if an entry is still open.
func (w *Writer) Close() error {
	if len(w.stack) != 0 {
		return fmt.Errorf("%w: %d entries still open", archive.ErrUnbalancedEntry, len(w.stack))
	}
	_, err := w.w.Result()
	return err
}
