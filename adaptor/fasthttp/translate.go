// Package fasthttp bridges this module's transport-agnostic http1/http2
// cores to github.com/valyala/fasthttp, the one place a socket, a TLS
// listener and an application Handler actually come together. Nothing in
// http1 or http2 imports this package; it only ever goes the other way.
package fasthttp

import (
	"bytes"
	"strconv"

	"github.com/valyala/fasthttp"
	"github.com/wirehttp/wirehttp/hpack"
)

var (
	strUserAgent     = []byte("user-agent")
	strContentType   = []byte("content-type")
	strContentLength = []byte("content-length")
	strStatus        = []byte(":status")
	strPath          = []byte(":path")
)

func isPseudo(name []byte) bool {
	return len(name) > 0 && name[0] == ':'
}

// applyHeaderField folds one decoded HPACK field into req, splitting the
// HTTP/2 pseudo-headers (:method, :path, :scheme, :authority) into their
// fasthttp.Request equivalents and passing everything else through as a
// regular header.
//
// Grounded on github.com/dgrr/http2's fasthttpRequestHeaders (adaptor.go).
func applyHeaderField(req *fasthttp.Request, hf hpack.HeaderField) {
	name, value := hf.Name, hf.Value

	if !isPseudo(name) {
		if bytes.Equal(name, strUserAgent) {
			req.Header.SetUserAgentBytes(value)
			return
		}
		if bytes.Equal(name, strContentType) {
			req.Header.SetContentTypeBytes(value)
			return
		}
		req.Header.AddBytesKV(name, value)
		return
	}

	if bytes.Equal(name, strPath) {
		req.SetRequestURIBytes(value)
		return
	}

	switch name[1] {
	case 'm': // :method
		req.Header.SetMethodBytes(value)
	case 's': // :scheme
		req.URI().SetSchemeBytes(value)
	case 'a': // :authority
		req.URI().SetHostBytes(value)
		req.Header.AddBytesV("Host", value)
	}
}

// responseHeaderFields lists res's status line and headers as HPACK
// header fields, in the :status-pseudo-header-first order §8.1.2.4
// requires, ready for Connection.SendHeaders to encode and frame.
//
// Grounded on github.com/dgrr/http2's fasthttpResponseHeaders (adaptor.go),
// adapted from writing directly into a frame's header-block buffer to
// returning a field list so the http2 package keeps sole ownership of
// HPACK encoding and CONTINUATION splitting.
func responseHeaderFields(res *fasthttp.Response) []hpack.HeaderField {
	fields := make([]hpack.HeaderField, 0, 2+res.Header.Len())

	fields = append(fields, hpack.HeaderField{
		Name:  strStatus,
		Value: []byte(strconv.Itoa(res.Header.StatusCode())),
	})
	fields = append(fields, hpack.HeaderField{
		Name:  strContentLength,
		Value: []byte(strconv.Itoa(len(res.Body()))),
	})

	res.Header.VisitAll(func(k, v []byte) {
		fields = append(fields, hpack.HeaderField{
			Name:  bytes.ToLower(k),
			Value: append([]byte(nil), v...),
		})
	})

	return fields
}
