package http1

import "strconv"

// AppendRequest serializes req onto dst as a complete HTTP/1.x request
// message (start line, headers, CRLF, body verbatim — no framing headers
// are synthesized; callers set Content-Length or Transfer-Encoding
// themselves via req.Headers before calling this, matching the explicit,
// nothing-inferred style of github.com/dgrr/http2's frame Serialize
// methods).
func AppendRequest(dst []byte, req *Request) []byte {
	if len(req.MethodRaw) > 0 {
		dst = append(dst, req.MethodRaw...)
	} else {
		dst = append(dst, req.Method.String()...)
	}
	dst = append(dst, ' ')
	dst = append(dst, req.Target...)
	dst = append(dst, ' ')
	dst = append(dst, req.Version.String()...)
	dst = append(dst, '\r', '\n')
	dst = appendHeaders(dst, req.Headers)
	dst = append(dst, req.Body...)
	return dst
}

// AppendResponse serializes resp onto dst as a complete HTTP/1.x response
// message.
func AppendResponse(dst []byte, resp *Response) []byte {
	dst = append(dst, resp.Version.String()...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(resp.StatusCode), 10)
	dst = append(dst, ' ')
	dst = append(dst, resp.Reason...)
	dst = append(dst, '\r', '\n')
	dst = appendHeaders(dst, resp.Headers)
	dst = append(dst, resp.Body...)
	return dst
}

func appendHeaders(dst []byte, h Header) []byte {
	for _, f := range h {
		dst = append(dst, f.Name...)
		dst = append(dst, ':', ' ')
		dst = append(dst, f.Value...)
		dst = append(dst, '\r', '\n')
	}
	dst = append(dst, '\r', '\n')
	return dst
}

// AppendChunk appends one chunked-encoding chunk (size line, data, CRLF)
// to dst. Passing a zero-length chunk writes the terminating chunk; pass
// trailers (already CRLF-terminated header lines, or nil) only with the
// final chunk.
func AppendChunk(dst []byte, chunk []byte, trailers []byte) []byte {
	dst = strconv.AppendInt(dst, int64(len(chunk)), 16)
	dst = append(dst, '\r', '\n')
	if len(chunk) == 0 {
		dst = append(dst, trailers...)
		return append(dst, '\r', '\n')
	}
	dst = append(dst, chunk...)
	dst = append(dst, '\r', '\n')
	return dst
}
