package hpack

// appendString encodes s as an HPACK string literal (RFC 7541 §5.2) and
// appends it to dst, preferring the Huffman encoding whenever it is
// strictly shorter than the raw bytes.
func appendString(dst []byte, s []byte) []byte {
	huffLen := HuffmanEncodedLen(s)

	if huffLen < len(s) {
		dst = append(dst, 0x80) // H=1, length filled in by appendInt below
		dst = appendInt(dst, 7, uint64(huffLen))
		return HuffmanEncode(dst, s)
	}

	dst = append(dst, 0x00)
	dst = appendInt(dst, 7, uint64(len(s)))
	return append(dst, s...)
}

// readString decodes an HPACK string literal from src, appending the
// decoded bytes to dst. It returns the new dst and the number of bytes of
// src consumed.
func readString(dst []byte, src []byte) ([]byte, int, error) {
	if len(src) == 0 {
		return dst, 0, ErrTruncated
	}

	huffman := src[0]&0x80 != 0

	length, n, err := readInt(7, src)
	if err != nil {
		return dst, 0, err
	}

	total := n + int(length)
	if total > len(src) {
		return dst, 0, ErrTruncated
	}

	raw := src[n:total]

	if huffman {
		dst, err = HuffmanDecode(dst, raw)
		if err != nil {
			return dst, 0, err
		}
		return dst, total, nil
	}

	return append(dst, raw...), total, nil
}
