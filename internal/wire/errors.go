package wire

import "errors"

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with an nil interface
	ErrNilIO = errors.New("wire: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrSizeTooSmall indicates a size conflict with bufio
	ErrSizeTooSmall = errors.New("wire: NewReaderSize with a size smaller than 16 conflict with bufio")

	// ErrStringTooLong indicates a length prefix above the reader's limit.
	ErrStringTooLong = errors.New("wire: string length exceeds limit")

	// ErrTrailingData is returned by ExpectEOF when bytes remain after the
	// expected end of the data.
	ErrTrailingData = errors.New("wire: trailing data found after decoding")
)
