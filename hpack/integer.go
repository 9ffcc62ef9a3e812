package hpack

import "errors"

// ErrIntegerOverflow is returned when a decoded integer would exceed the
// 32-bit range the library represents HPACK integers in.
var ErrIntegerOverflow = errors.New("hpack: integer overflow")

// ErrTruncated is returned when an integer's continuation octets are
// missing from the input.
var ErrTruncated = errors.New("hpack: truncated integer")

const maxInt = 1<<32 - 1

// appendInt encodes n using an N-bit prefix (RFC 7541 §5.1) and appends it
// to dst. The low `prefixBits` bits of dst's last byte (already written by
// the caller with the instruction's leading bits) are where the prefix is
// packed in-place by OR'ing; callers pass the partially-built leader byte
// in dst[len(dst)-1].
func appendInt(dst []byte, prefixBits int, n uint64) []byte {
	max := uint64(1<<uint(prefixBits) - 1)

	if n < max {
		dst[len(dst)-1] |= byte(n)
		return dst
	}

	dst[len(dst)-1] |= byte(max)
	n -= max

	for n >= 128 {
		dst = append(dst, byte(n%128+128))
		n /= 128
	}

	return append(dst, byte(n))
}

// readInt decodes an N-bit-prefix integer from src, where src[0] already
// contains the prefix bits (the leading instruction bits are irrelevant
// and masked out by the caller-supplied prefixBits). It returns the value
// and the number of bytes consumed.
func readInt(prefixBits int, src []byte) (uint64, int, error) {
	if len(src) == 0 {
		return 0, 0, ErrTruncated
	}

	max := uint64(1<<uint(prefixBits) - 1)
	n := uint64(src[0]) & max

	if n < max {
		return n, 1, nil
	}

	var m uint64
	i := 1
	for {
		if i >= len(src) {
			return 0, 0, ErrTruncated
		}

		b := src[i]
		n += uint64(b&0x7f) << m
		i++

		if n > maxInt {
			return 0, 0, ErrIntegerOverflow
		}

		if b&0x80 == 0 {
			break
		}

		m += 7
		if m > 35 {
			return 0, 0, ErrIntegerOverflow
		}
	}

	if n > maxInt {
		return 0, 0, ErrIntegerOverflow
	}

	return n, i, nil
}
