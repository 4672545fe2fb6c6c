// Package wire provides buffered binary stream readers and writers with
// first-error latching. Every primitive operation is a no-op once an error
// has been recorded, so callers check Err or Result once at the end.
package wire

import "encoding/binary"

var (
	BE = binary.BigEndian
	LE = binary.LittleEndian
	// Order is default binary order
	Order binary.ByteOrder = LE
)

const BUFFER_SIZE = 4096

// DefaultMaxStringLen bounds length-prefixed strings unless a reader is
// configured otherwise.
const DefaultMaxStringLen = 64 << 20
