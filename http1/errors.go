package http1

import "errors"

// ErrNeedMoreData means the parser reached the end of the supplied input
// mid-token. It is not a protocol error: call Parse again with the same
// Request/Response and the next chunk of bytes (§4.2's resumability rule).
var ErrNeedMoreData = errors.New("http1: need more data")

// Sticky protocol errors. Once any of these is returned, the Parser is
// poisoned (§4.2: "once a parser returns a non-NeedMoreData error it must
// continue returning an error for any further input") — call Reset before
// reusing it.
var (
	ErrInvalidMethod  = errors.New("http1: invalid method token")
	ErrInvalidURI     = errors.New("http1: invalid request-target")
	ErrInvalidVersion = errors.New("http1: invalid HTTP version")
	ErrInvalidHeader  = errors.New("http1: invalid header line")
	ErrInvalidBody    = errors.New("http1: invalid message body framing")
	ErrMessageTooLarge = errors.New("http1: message exceeds configured limit")
	ErrBadRequest     = errors.New("http1: malformed request")
)
