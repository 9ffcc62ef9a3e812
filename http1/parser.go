package http1

import (
	"bytes"

	"github.com/wirehttp/wirehttp/buffer"
)

// Parser is an incremental HTTP/1.x message parser. A single Parser value
// decodes one message (request or response) across as many Parse calls as
// the caller needs to feed; call Reset to start the next message.
//
// Grounded on the resumable byte-at-a-time state machines in
// github.com/dgrr/http2 (the frame header continuation handling in
// frameHeader.go, and the HPACK continuation-reassembly loop in hpack.go),
// generalized here from "wait for N more header-block bytes" to a full
// start-line/headers/body grammar. Per §4.2, the parser never owns a
// socket: it only ever sees the bytes it is handed and never blocks.
type Parser struct {
	state state
	isRequest bool

	// pending accumulates a line (request-line, status-line, header line,
	// chunk-size line or chunk trailer line) across Parse calls until its
	// terminating CRLF is found.
	pending buffer.Buffer

	haveContentLength bool
	contentLength     int
	chunked           bool
	bodyRemaining     int // for Content-Length framing
	chunkRemaining    int // for the current chunk, chunked framing

	stickyErr error
}

type state uint8

const (
	stateStartLine state = iota
	stateHeaderLine
	stateBodyDecide
	stateBodyLength
	stateBodyChunkSize
	stateBodyChunkData
	stateBodyChunkCRLF
	stateBodyTrailer
	stateBodyUntilClose
	stateComplete
)

// NewParser returns a Parser ready to decode a request if isRequest is
// true, or a response otherwise.
func NewParser(isRequest bool) *Parser {
	p := &Parser{isRequest: isRequest}
	p.Reset()
	return p
}

// Reset discards all in-flight state so the Parser can decode a new
// message. It does not touch any Request/Response previously passed to
// Parse; the caller owns those and should call their own Reset.
func (p *Parser) Reset() {
	p.state = stateStartLine
	p.pending.Clear()
	p.haveContentLength = false
	p.contentLength = 0
	p.chunked = false
	p.bodyRemaining = 0
	p.chunkRemaining = 0
	p.stickyErr = nil
}

// IsComplete reports whether the current message has been fully parsed.
func (p *Parser) IsComplete() bool {
	return p.state == stateComplete
}

// ParseRequest feeds input into the state machine, writing fields into req
// as they are decoded. Once the whole message is decoded it returns the
// number of leading bytes of this call's input that belong to it (so
// the caller can hold onto any trailing bytes, e.g. a pipelined second
// request, for the next Parse call after Reset); ErrNeedMoreData when
// input ended mid-message (every byte of input has been taken in; call
// again with only the new bytes and the same req); or a sticky error for
// a malformed message.
func (p *Parser) ParseRequest(input []byte, req *Request) (int, error) {
	if !p.isRequest {
		panic("http1: ParseRequest called on a response Parser")
	}
	return p.advance(input, nil, req)
}

// ParseResponse feeds input into the state machine, writing fields into
// resp. See ParseRequest for the return-value contract.
func (p *Parser) ParseResponse(input []byte, resp *Response) (int, error) {
	if p.isRequest {
		panic("http1: ParseResponse called on a request Parser")
	}
	return p.advance(input, resp, nil)
}

var crlf = []byte("\r\n")

func (p *Parser) advance(input []byte, resp *Response, req *Request) (int, error) {
	if p.stickyErr != nil {
		return 0, p.stickyErr
	}

	pos := 0
	for {
		switch p.state {
		case stateStartLine:
			line, n, ok := p.scanLine(input[pos:])
			pos += n
			if !ok {
				return 0, ErrNeedMoreData
			}
			var err error
			if p.isRequest {
				err = p.parseRequestLine(line, req)
			} else {
				err = p.parseStatusLine(line, resp)
			}
			if err != nil {
				return 0, p.fail(err)
			}
			p.state = stateHeaderLine

		case stateHeaderLine:
			line, n, ok := p.scanLine(input[pos:])
			pos += n
			if !ok {
				return 0, ErrNeedMoreData
			}
			if len(line) == 0 {
				p.state = stateBodyDecide
				continue
			}
			if err := p.parseHeaderLine(line, req, resp); err != nil {
				return 0, p.fail(err)
			}

		case stateBodyDecide:
			if err := p.decideBodyFraming(req, resp); err != nil {
				return 0, p.fail(err)
			}

		case stateBodyLength:
			if p.bodyRemaining == 0 {
				p.state = stateComplete
				continue
			}
			n := p.bodyRemaining
			if avail := len(input) - pos; avail < n {
				n = avail
			}
			if n == 0 {
				return 0, ErrNeedMoreData
			}
			p.appendBody(input[pos:pos+n], req, resp)
			pos += n
			p.bodyRemaining -= n
			if p.bodyRemaining == 0 {
				p.state = stateComplete
			} else {
				return 0, ErrNeedMoreData
			}

		case stateBodyUntilClose:
			// Only valid for responses with no declared length; every
			// byte handed to us belongs to the body, and completion is
			// signaled by the transport, not by this parser.
			p.appendBody(input[pos:], req, resp)
			pos = len(input)
			return 0, ErrNeedMoreData

		case stateBodyChunkSize:
			line, n, ok := p.scanLine(input[pos:])
			pos += n
			if !ok {
				return 0, ErrNeedMoreData
			}
			size, err := parseChunkSizeLine(line)
			if err != nil {
				return 0, p.fail(ErrInvalidBody)
			}
			if size == 0 {
				p.state = stateBodyTrailer
				continue
			}
			p.chunkRemaining = size
			p.state = stateBodyChunkData

		case stateBodyChunkData:
			n := p.chunkRemaining
			if avail := len(input) - pos; avail < n {
				n = avail
			}
			if n > 0 {
				p.appendBody(input[pos:pos+n], req, resp)
				pos += n
				p.chunkRemaining -= n
			}
			if p.chunkRemaining > 0 {
				return 0, ErrNeedMoreData
			}
			p.state = stateBodyChunkCRLF

		case stateBodyChunkCRLF:
			line, n, ok := p.scanLine(input[pos:])
			pos += n
			if !ok {
				return 0, ErrNeedMoreData
			}
			if len(line) != 0 {
				return 0, p.fail(ErrInvalidBody)
			}
			p.state = stateBodyChunkSize

		case stateBodyTrailer:
			line, n, ok := p.scanLine(input[pos:])
			pos += n
			if !ok {
				return 0, ErrNeedMoreData
			}
			if len(line) == 0 {
				p.state = stateComplete
				continue
			}
			if err := p.parseHeaderLine(line, req, resp); err != nil {
				return 0, p.fail(err)
			}

		case stateComplete:
			return pos, nil
		}
	}
}

// CloseBody tells the parser the transport has reached end-of-stream.
// It is only meaningful while parsing a response with no declared length
// (neither Content-Length nor chunked Transfer-Encoding), the one framing
// mode whose end this parser cannot detect on its own (§4.2). Calling it
// while a declared-length body is still incomplete is a protocol error:
// the peer closed before sending everything it promised.
func (p *Parser) CloseBody() error {
	switch p.state {
	case stateBodyUntilClose:
		p.state = stateComplete
		return nil
	case stateComplete:
		return nil
	default:
		return p.fail(ErrInvalidBody)
	}
}

func (p *Parser) fail(err error) error {
	p.stickyErr = err
	return err
}

// scanLine looks for a CRLF-terminated line across however many Parse
// calls it takes to see the whole thing, reassembling it in p.pending.
// On success it returns the line (sans CRLF) and the number of bytes of
// seg consumed to complete it; on failure (no CRLF yet in seg) it buffers
// all of seg and returns ok=false.
func (p *Parser) scanLine(seg []byte) (line []byte, consumed int, ok bool) {
	if p.pending.Len() > 0 {
		view := p.pending.View()
		if view[len(view)-1] == '\r' && len(seg) > 0 && seg[0] == '\n' {
			line = append([]byte(nil), view[:len(view)-1]...)
			p.pending.Clear()
			return line, 1, true
		}
	}

	if idx := bytes.Index(seg, crlf); idx >= 0 {
		if p.pending.Len() > 0 {
			p.pending.Append(seg[:idx])
			line = append([]byte(nil), p.pending.View()...)
			p.pending.Clear()
		} else {
			line = append([]byte(nil), seg[:idx]...)
		}
		return line, idx + 2, true
	}

	p.pending.Append(seg)
	return nil, len(seg), false
}

func (p *Parser) appendBody(b []byte, req *Request, resp *Response) {
	if p.isRequest {
		req.Body = append(req.Body, b...)
	} else {
		resp.Body = append(resp.Body, b...)
	}
}
