package fasthttp

import (
	"bytes"
	"net"

	"github.com/wirehttp/wirehttp/http2"
)

// Protocol is the wire protocol DetectVersion concludes a connection is
// speaking.
type Protocol int

const (
	ProtocolHTTP1 Protocol = iota
	ProtocolHTTP2
)

// DetectVersion reports which protocol a connection's leading bytes
// belong to: HTTP/2 if peek matches the client connection preface as
// far as it goes, HTTP/1.x otherwise. It never returns a "need more
// data" outcome — a short peek is fine, since the preface's bytes are
// distinctive well before the 24-octet preface completes ("PRI " is
// not a valid HTTP/1.x request line for any method this library knows).
//
// Grounded on original_source/include/http_parse/http_parse.hpp's
// co::http::parser with version::auto_detect, demonstrated end-to-end in
// original_source/example/version_detection.cpp: parse with auto_detect,
// inspect detected_version(). Reimplemented here as a pure function over
// a byte prefix (rather than a stateful resettable parser object, which
// this module's protocol-pure http1/http2 packages have no use for) since
// the adaptor only needs this once, at accept time, to pick which core
// to hand the connection to.
func DetectVersion(peek []byte) Protocol {
	n := len(peek)
	if n == 0 {
		return ProtocolHTTP1
	}
	if n > len(http2.ClientPreface) {
		n = len(http2.ClientPreface)
	}
	if bytes.Equal(peek[:n], []byte(http2.ClientPreface)[:n]) {
		return ProtocolHTTP2
	}
	return ProtocolHTTP1
}

// prefixConn replays a peeked byte prefix before reading further from
// the wrapped net.Conn, so a connection's leading bytes can be sniffed
// by DetectVersion without losing them.
type prefixConn struct {
	net.Conn
	prefix []byte
}

func (c *prefixConn) Read(p []byte) (int, error) {
	if len(c.prefix) > 0 {
		n := copy(p, c.prefix)
		c.prefix = c.prefix[n:]
		return n, nil
	}
	return c.Conn.Read(p)
}
