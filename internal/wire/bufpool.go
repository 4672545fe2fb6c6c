package wire

import (
	"bytes"
	"sync"
)

// bytesBufPool holds scratch buffers for whole encoded payloads.
var bytesBufPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, BUFFER_SIZE))
	},
}

// maxPooledCap keeps one huge document from pinning its buffer forever.
const maxPooledCap = 1 << 20

// GetBuffer returns an empty buffer from the pool.
func GetBuffer() *bytes.Buffer {
	return bytesBufPool.Get().(*bytes.Buffer)
}

// PutBuffer returns b to the pool. The caller must not use b afterwards.
func PutBuffer(b *bytes.Buffer) {
	if b == nil || b.Cap() > maxPooledCap {
		return
	}
	b.Reset()
	bytesBufPool.Put(b)
}
