package http2

import (
	"errors"
	"fmt"
)

// ErrorCode is one of the HTTP/2 error codes carried by RST_STREAM and
// GOAWAY frames.
//
// https://tools.ietf.org/html/rfc7540#section-7
type ErrorCode uint32

const (
	NoError              ErrorCode = 0x0
	ProtocolError        ErrorCode = 0x1
	InternalError        ErrorCode = 0x2
	FlowControlError     ErrorCode = 0x3
	SettingsTimeoutError ErrorCode = 0x4
	StreamClosedError    ErrorCode = 0x5
	FrameSizeError       ErrorCode = 0x6
	RefusedStreamError   ErrorCode = 0x7
	CancelError          ErrorCode = 0x8
	CompressionError     ErrorCode = 0x9
	ConnectError         ErrorCode = 0xa
	EnhanceYourCalmError ErrorCode = 0xb
	InadequateSecurity   ErrorCode = 0xc
	HTTP11Required       ErrorCode = 0xd
)

var errorCodeNames = [...]string{
	NoError:              "NO_ERROR",
	ProtocolError:        "PROTOCOL_ERROR",
	InternalError:        "INTERNAL_ERROR",
	FlowControlError:     "FLOW_CONTROL_ERROR",
	SettingsTimeoutError: "SETTINGS_TIMEOUT",
	StreamClosedError:    "STREAM_CLOSED",
	FrameSizeError:       "FRAME_SIZE_ERROR",
	RefusedStreamError:   "REFUSED_STREAM",
	CancelError:          "CANCEL",
	CompressionError:     "COMPRESSION_ERROR",
	ConnectError:         "CONNECT_ERROR",
	EnhanceYourCalmError: "ENHANCE_YOUR_CALM",
	InadequateSecurity:   "INADEQUATE_SECURITY",
	HTTP11Required:       "HTTP_1_1_REQUIRED",
}

func (c ErrorCode) String() string {
	if int(c) < len(errorCodeNames) && errorCodeNames[c] != "" {
		return errorCodeNames[c]
	}
	return fmt.Sprintf("UNKNOWN_ERROR(0x%x)", uint32(c))
}

// Error is a protocol error tagged with the ErrorCode it should be
// reported to the peer as, either scoped to one stream (RST_STREAM) or to
// the whole connection (GOAWAY) depending on where it surfaces.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError returns an *Error carrying code and an optional message.
func NewError(code ErrorCode, message string) error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the ErrorCode from err if it (or something it wraps) is
// an *Error, defaulting to INTERNAL_ERROR otherwise.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalError
}

// ErrNeedMoreData means the bytes handed to ConsumeFrameHeader (or to
// Connection.Process) don't yet contain a complete frame. It is not a
// protocol error: resubmit the same bytes plus more once available.
var ErrNeedMoreData = errors.New("http2: need more data")

// Frame decode/dispatch errors. These are always connection errors
// (PROTOCOL_ERROR or FRAME_SIZE_ERROR per §4.2/§4.3/§5.4.1), since a
// malformed frame makes the HPACK or stream-state of the connection
// unrecoverable.
var (
	ErrMissingBytes     = NewError(FrameSizeError, "frame payload too short for its type")
	ErrUnknownFrameType = NewError(ProtocolError, "unknown frame type")
	ErrPayloadExceeds   = NewError(FrameSizeError, "frame payload exceeds the negotiated maximum size")
	ErrBadPreface       = NewError(ProtocolError, "client connection preface mismatch")
)
