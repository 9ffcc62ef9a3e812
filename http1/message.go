// Package http1 implements the incremental HTTP/1.x parser and encoder
// described by §4.2/§4.3 of the spec: a resumable, byte-oriented state
// machine for request and response messages, plus a serializer for the
// same message types.
//
// Grounded on the pooled, order-preserving message/header design of
// github.com/dgrr/http2's Request/Response/HeaderField (request.go,
// response.go, headerField.go), adapted from HTTP/2 pseudo-headers to
// HTTP/1 start lines and from HPACK-backed storage to plain byte buffers.
package http1

import "github.com/wirehttp/wirehttp/internal/wire"

// Method is the parsed HTTP request method.
type Method uint8

const (
	MethodUnknown Method = iota
	MethodGET
	MethodHEAD
	MethodPOST
	MethodPUT
	MethodDELETE
	MethodCONNECT
	MethodOPTIONS
	MethodTRACE
	MethodPATCH
)

var methodNames = [...]string{
	MethodUnknown: "",
	MethodGET:     "GET",
	MethodHEAD:    "HEAD",
	MethodPOST:    "POST",
	MethodPUT:     "PUT",
	MethodDELETE:  "DELETE",
	MethodCONNECT: "CONNECT",
	MethodOPTIONS: "OPTIONS",
	MethodTRACE:   "TRACE",
	MethodPATCH:   "PATCH",
}

// String returns the wire representation of m ("" for MethodUnknown; use
// Request.MethodRaw for the verbatim token in that case).
func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return ""
}

func lookupMethod(tok []byte) Method {
	for m := MethodGET; int(m) < len(methodNames); m++ {
		if wire.EqualsFold(tok, []byte(methodNames[m])) {
			return m
		}
	}
	return MethodUnknown
}

// Version is one of the two protocol versions this parser accepts.
type Version uint8

const (
	VersionUnknown Version = iota
	Version10
	Version11
)

func (v Version) String() string {
	switch v {
	case Version10:
		return "HTTP/1.0"
	case Version11:
		return "HTTP/1.1"
	}
	return "HTTP/0.0"
}

// Field is a single (name, value) header line as received or to be sent.
// Field order is significant and preserved; duplicate names are kept as
// independent entries (§3).
type Field struct {
	Name, Value []byte
}

// Header is an ordered list of header fields.
type Header []Field

// Get returns the value of the first field matching name
// (case-insensitively), or nil if absent.
func (h Header) Get(name string) []byte {
	n := []byte(name)
	for i := range h {
		if wire.EqualsFold(h[i].Name, n) {
			return h[i].Value
		}
	}
	return nil
}

// GetAll returns the values of every field matching name
// (case-insensitively), in wire order.
func (h Header) GetAll(name string) [][]byte {
	n := []byte(name)
	var out [][]byte
	for i := range h {
		if wire.EqualsFold(h[i].Name, n) {
			out = append(out, h[i].Value)
		}
	}
	return out
}

// Add appends a new field, copying name and value.
func (h *Header) Add(name, value string) {
	*h = append(*h, Field{
		Name:  append([]byte(nil), name...),
		Value: append([]byte(nil), value...),
	})
}

// AddBytes appends a new field, copying name and value from byte slices.
func (h *Header) AddBytes(name, value []byte) {
	*h = append(*h, Field{
		Name:  append([]byte(nil), name...),
		Value: append([]byte(nil), value...),
	})
}

// Reset empties h for reuse.
func (h *Header) Reset() {
	*h = (*h)[:0]
}

// Request is an HTTP/1.x request message, fully decoded: every []byte
// field is owned (copied out of whatever input produced it).
type Request struct {
	Method    Method
	MethodRaw []byte // verbatim token; set even for known methods
	Target    []byte // request-target, verbatim
	Version   Version
	Headers   Header
	Body      []byte
}

// Reset clears req for reuse by a new parse.
func (req *Request) Reset() {
	req.Method = MethodUnknown
	req.MethodRaw = req.MethodRaw[:0]
	req.Target = req.Target[:0]
	req.Version = VersionUnknown
	req.Headers.Reset()
	req.Body = req.Body[:0]
}

// Response is an HTTP/1.x response message, fully decoded.
type Response struct {
	Version    Version
	StatusCode int
	Reason     []byte
	Headers    Header
	Body       []byte
}

// Reset clears resp for reuse by a new parse.
func (resp *Response) Reset() {
	resp.Version = VersionUnknown
	resp.StatusCode = 0
	resp.Reason = resp.Reason[:0]
	resp.Headers.Reset()
	resp.Body = resp.Body[:0]
}
