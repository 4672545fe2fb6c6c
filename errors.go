package archive

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrArchive is the kind of every stream-level failure: missing fields,
	// malformed input, cardinality mismatches, unbalanced entries.
	ErrArchive = errors.New("archive: archive error")

	// ErrFactory is the kind of registry lookup and registration failures.
	ErrFactory = errors.New("archive: factory error")

	// ErrType is the kind of failures to construct, cast or serialize a registered type.
	ErrType = errors.New("archive: type error")
)

var (
	ErrFieldNotFound       = fmt.Errorf("%w: field not found", ErrArchive)
	ErrMalformed           = fmt.Errorf("%w: malformed input", ErrArchive)
	ErrRangeLength         = fmt.Errorf("%w: range length mismatch", ErrArchive)
	ErrInvalidVariantIndex = fmt.Errorf("%w: invalid variant index provided", ErrArchive)
	ErrUnbalancedEntry     = fmt.Errorf("%w: unmatched begin/end entry", ErrArchive)
	ErrNoSerializeMethod   = fmt.Errorf("%w: no serialization method exists", ErrArchive)
	ErrUnsupportedType     = fmt.Errorf("%w: unsupported value type", ErrArchive)
	ErrNilReference        = fmt.Errorf("%w: nil owning reference", ErrArchive)
	ErrNotPointer          = fmt.Errorf("%w: reading requires a non-nil pointer", ErrArchive)

	ErrUnregistered      = fmt.Errorf("%w: type not registered", ErrFactory)
	ErrDuplicateType     = fmt.Errorf("%w: type already registered", ErrFactory)
	ErrBaseNotRegistered = fmt.Errorf("%w: base type not registered", ErrFactory)

	ErrAbstract     = fmt.Errorf("%w: type is abstract and has no factory", ErrType)
	ErrNotBase      = fmt.Errorf("%w: type does not derive from requested base", ErrType)
	ErrNoSerializer = fmt.Errorf("%w: type was registered without serializer", ErrType)
)

// PathError attaches the field path at which a traversal failed.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *PathError) Unwrap() error { return e.Err }

// Is matches the same failure recorded at a shorter path, so an outer field
// may replace the error an inner one latched.
func (e *PathError) Is(target error) bool {
	t, ok := target.(*PathError)
	return ok && t.Err == e.Err && strings.HasSuffix(e.Path, t.Path)
}

// wrapPath prefixes err with a path segment. Segments starting with '[' are
// element indexes and attach without a separator.
func wrapPath(segment string, err error) error {
	if err == nil || segment == "" {
		return err
	}
	if pe, ok := err.(*PathError); ok {
		sep := "."
		if strings.HasPrefix(pe.Path, "[") {
			sep = ""
		}
		return &PathError{Path: segment + sep + pe.Path, Err: pe.Err}
	}
	return &PathError{Path: segment, Err: err}
}
