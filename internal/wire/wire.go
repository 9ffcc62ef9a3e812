// Package wire holds the small byte-level helpers shared by the http1,
// hpack and http2 packages: big-endian 24/32 bit conversions, the
// allocation-free byte/string casts, and the DATA/HEADERS padding helpers.
//
// Grounded on github.com/dgrr/http2's http2utils package.
package wire

import (
	"crypto/rand"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/valyala/fastrand"
)

func Uint24ToBytes(b []byte, n uint32) {
	_ = b[2] // bound checking
	b[0] = byte(n >> 16)
	b[1] = byte(n >> 8)
	b[2] = byte(n)
}

func BytesToUint24(b []byte) uint32 {
	_ = b[2] // bound checking
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func AppendUint32Bytes(dst []byte, n uint32) []byte {
	dst = append(dst, byte(n>>24))
	dst = append(dst, byte(n>>16))
	dst = append(dst, byte(n>>8))
	dst = append(dst, byte(n))
	return dst
}

func Uint32ToBytes(b []byte, n uint32) {
	_ = b[3] // bound checking
	b[0] = byte(n >> 24)
	b[1] = byte(n >> 16)
	b[2] = byte(n >> 8)
	b[3] = byte(n)
}

func BytesToUint32(b []byte) uint32 {
	_ = b[3] // bound checking
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// StreamID masks off the reserved high bit of a 31-bit stream identifier.
func StreamID(n uint32) uint32 {
	return n & (1<<31 - 1)
}

func EqualsFold(a, b []byte) bool {
	n := len(a)
	if n != len(b) {
		return false
	}
	for i := 0; i < n; i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func Resize(b []byte, neededLen int) []byte {
	b = b[:cap(b)]

	if n := neededLen - len(b); n > 0 {
		b = append(b, make([]byte, n)...)
	}

	return b[:neededLen]
}

// CutPadding cuts the padding byte and trailing pad bytes off payload
// (which has length `length`) for a frame carrying FlagPadded, returning
// the remaining content and an error if the declared padding doesn't fit.
func CutPadding(payload []byte, length int) ([]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("wire: padded frame has no pad-length octet")
	}

	pad := int(payload[0])
	if length-pad-1 < 0 || len(payload) < length-pad {
		return nil, fmt.Errorf("wire: padding %d exceeds frame length %d", pad, length)
	}

	return payload[1 : length-pad], nil
}

// AddPadding prepends a random pad-length octet and appends that many
// random pad bytes to b, returning the padded slice.
func AddPadding(b []byte) []byte {
	n := int(fastrand.Uint32n(256-9)) + 9
	nn := len(b)

	b = Resize(b, nn+n)
	b = append(b[:1], b...)
	b[0] = uint8(n)

	rand.Read(b[nn+1 : nn+n+1])

	return b
}

// BytesToString converts b to a string without copying. The returned
// string must not outlive the backing array of b, nor be used after b is
// mutated.
func BytesToString(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

// StringToBytes converts s to a []byte without copying. The returned
// slice must not be mutated.
func StringToBytes(s string) []byte {
	sh := (*reflect.StringHeader)(unsafe.Pointer(&s))
	bh := reflect.SliceHeader{Data: sh.Data, Len: sh.Len, Cap: sh.Len}
	return *(*[]byte)(unsafe.Pointer(&bh))
}
