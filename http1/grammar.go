package http1

import (
	"bytes"
	"strconv"

	"golang.org/x/net/http/httpguts"

	"github.com/wirehttp/wirehttp/internal/wire"
)

// parseRequestLine decodes "method SP request-target SP HTTP-version".
// Grounded on the strict, no-tolerance tokenizing style of
// github.com/dgrr/http2's frame-header validation (frameHeader.go):
// reject rather than guess on anything irregular.
func (p *Parser) parseRequestLine(line []byte, req *Request) error {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return ErrBadRequest
	}
	rest := line[sp1+1:]
	sp2 := bytes.IndexByte(rest, ' ')
	if sp2 <= 0 {
		return ErrBadRequest
	}

	methodTok := line[:sp1]
	target := rest[:sp2]
	versionTok := rest[sp2+1:]

	if !validToken(methodTok) {
		return ErrInvalidMethod
	}
	if len(target) == 0 || bytes.IndexByte(target, ' ') >= 0 {
		return ErrInvalidURI
	}
	ver, ok := parseVersion(versionTok)
	if !ok {
		return ErrInvalidVersion
	}

	req.Method = lookupMethod(methodTok)
	req.MethodRaw = append(req.MethodRaw[:0], methodTok...)
	req.Target = append(req.Target[:0], target...)
	req.Version = ver
	return nil
}

// parseStatusLine decodes "HTTP-version SP status-code SP reason-phrase".
func (p *Parser) parseStatusLine(line []byte, resp *Response) error {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return ErrInvalidVersion
	}
	ver, ok := parseVersion(line[:sp1])
	if !ok {
		return ErrInvalidVersion
	}

	rest := line[sp1+1:]
	sp2 := bytes.IndexByte(rest, ' ')
	var codeTok, reason []byte
	if sp2 < 0 {
		codeTok = rest
	} else {
		codeTok = rest[:sp2]
		reason = rest[sp2+1:]
	}
	if len(codeTok) != 3 {
		return ErrBadRequest
	}
	code, err := strconv.Atoi(string(codeTok))
	if err != nil || code < 100 || code > 999 {
		return ErrBadRequest
	}

	resp.Version = ver
	resp.StatusCode = code
	resp.Reason = append(resp.Reason[:0], reason...)
	return nil
}

func parseVersion(tok []byte) (Version, bool) {
	switch {
	case wire.EqualsFold(tok, []byte("HTTP/1.1")):
		return Version11, true
	case wire.EqualsFold(tok, []byte("HTTP/1.0")):
		return Version10, true
	default:
		return VersionUnknown, false
	}
}

func validToken(tok []byte) bool {
	if len(tok) == 0 {
		return false
	}
	for _, c := range tok {
		if !httpguts.IsTokenRune(rune(c)) {
			return false
		}
	}
	return true
}

// parseHeaderLine decodes one "field-name: OWS field-value OWS" line.
// scanLine only ends a line at CRLF, so a bare LF stays inside the line and
// fails the token or field-value check below; a leading space or tab here
// means obs-fold, which §4.2 requires rejecting rather than unfolding.
func (p *Parser) parseHeaderLine(line []byte, req *Request, resp *Response) error {
	if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
		return ErrInvalidHeader
	}

	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return ErrInvalidHeader
	}
	name := line[:colon]
	if !validToken(name) {
		return ErrInvalidHeader
	}

	value := bytes.Trim(line[colon+1:], " \t")
	if !httpguts.ValidHeaderFieldValue(wire.BytesToString(value)) {
		return ErrInvalidHeader
	}

	if p.isRequest {
		req.Headers.AddBytes(name, value)
	} else {
		resp.Headers.AddBytes(name, value)
	}
	return nil
}

// decideBodyFraming applies §4.2's Content-Length/Transfer-Encoding
// resolution: a chunked Transfer-Encoding always wins over any
// Content-Length, and multiple conflicting Content-Length values are
// rejected rather than one being picked arbitrarily.
func (p *Parser) decideBodyFraming(req *Request, resp *Response) error {
	headers := req.Headers
	if !p.isRequest {
		headers = resp.Headers
	}

	te := headers.GetAll("Transfer-Encoding")
	for _, v := range te {
		if wire.EqualsFold(bytes.TrimSpace(v), []byte("chunked")) {
			p.chunked = true
		}
	}

	cls := headers.GetAll("Content-Length")
	for _, v := range cls {
		n, err := strconv.Atoi(string(bytes.TrimSpace(v)))
		if err != nil || n < 0 {
			return ErrInvalidBody
		}
		if p.haveContentLength && n != p.contentLength {
			return ErrInvalidBody
		}
		p.haveContentLength = true
		p.contentLength = n
	}

	switch {
	case p.chunked:
		p.state = stateBodyChunkSize
	case p.haveContentLength:
		p.bodyRemaining = p.contentLength
		p.state = stateBodyLength
	case p.isRequest:
		// A request with no declared length has no body (§4.2).
		p.state = stateComplete
	default:
		// A response with no declared length reads until the transport
		// signals end-of-stream; Parse keeps returning ErrNeedMoreData
		// and the caller calls CloseBody once its connection says so.
		p.state = stateBodyUntilClose
	}
	return nil
}

func parseChunkSizeLine(line []byte) (int, error) {
	if idx := bytes.IndexByte(line, ';'); idx >= 0 {
		line = line[:idx] // chunk-ext, discarded
	}
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return 0, ErrInvalidBody
	}
	n, err := strconv.ParseInt(string(line), 16, 64)
	if err != nil || n < 0 {
		return 0, ErrInvalidBody
	}
	return int(n), nil
}
