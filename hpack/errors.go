package hpack

import "errors"

// ErrCompression is returned for any HPACK protocol violation: integer
// overflow, a truncated string, invalid Huffman padding, an out-of-range
// index, a dynamic-table-size-update above the negotiated cap, or a
// size-update instruction that doesn't lead the header block. Per §4.4,
// callers map this to the HTTP/2 COMPRESSION_ERROR connection error.
var ErrCompression = errors.New("hpack: compression error")
