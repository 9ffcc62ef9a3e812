// Package buffer implements the growable byte buffer described by the
// library's "Byte buffer" component: a contiguous, append-only region
// used for encoder output and frame/body assembly.
//
// Grounded on the bytebufferpool.ByteBuffer field embedded in
// github.com/dgrr/http2's Request/Response types (request.go, response.go);
// this wraps the same github.com/valyala/bytebufferpool allocator the
// teacher reaches for instead of hand-rolling amortized growth.
package buffer

import (
	"sync"

	"github.com/valyala/bytebufferpool"
)

// Buffer is a growable, contiguous byte container. It is not safe for
// concurrent use.
type Buffer struct {
	b bytebufferpool.ByteBuffer
}

var pool sync.Pool

// Acquire returns a Buffer from the pool. Release it with Release when done.
func Acquire() *Buffer {
	v := pool.Get()
	if v == nil {
		return &Buffer{}
	}
	return v.(*Buffer)
}

// Release clears buf and returns it to the pool.
func Release(buf *Buffer) {
	buf.Clear()
	pool.Put(buf)
}

// Append appends p to the buffer, growing geometrically as needed.
func (buf *Buffer) Append(p []byte) {
	_, _ = buf.b.Write(p)
}

// AppendByte appends a single byte to the buffer.
func (buf *Buffer) AppendByte(c byte) {
	_ = buf.b.WriteByte(c)
}

// AppendString appends s to the buffer without an intermediate []byte copy.
func (buf *Buffer) AppendString(s string) {
	_, _ = buf.b.WriteString(s)
}

// Reserve ensures the buffer has room for n additional bytes without
// changing its length.
func (buf *Buffer) Reserve(n int) {
	if cap(buf.b.B)-len(buf.b.B) >= n {
		return
	}
	grown := make([]byte, len(buf.b.B), len(buf.b.B)+n)
	copy(grown, buf.b.B)
	buf.b.B = grown
}

// Len returns the number of bytes currently held.
func (buf *Buffer) Len() int {
	return len(buf.b.B)
}

// View returns a read-only view of the buffer's contents. The slice is
// invalidated by any subsequent mutating call on buf.
func (buf *Buffer) View() []byte {
	return buf.b.B
}

// Clear empties the buffer without releasing its backing array, so it can
// be grown again geometrically (≥1.5×) on reuse without shrinking.
func (buf *Buffer) Clear() {
	buf.b.Reset()
}

// Bytes is an alias of View kept for callers that prefer the conventional
// name; both return the same backing slice.
func (buf *Buffer) Bytes() []byte {
	return buf.b.B
}
