package http2

import "github.com/wirehttp/wirehttp/internal/wire"

// RstStream abruptly terminates a stream, carrying the ErrorCode the
// sender is abandoning it for.
//
// https://tools.ietf.org/html/rfc7540#section-6.4
//
// Grounded on github.com/dgrr/http2's RstStream (rststream.go).
type RstStream struct {
	code ErrorCode
}

func (r *RstStream) Type() FrameType { return FrameResetStream }

func (r *RstStream) Reset() { r.code = 0 }

func (r *RstStream) CopyTo(o *RstStream) { o.code = r.code }

func (r *RstStream) Code() ErrorCode    { return r.code }
func (r *RstStream) SetCode(c ErrorCode) { r.code = c }

func (r *RstStream) Error() error { return NewError(r.code, "") }

func (r *RstStream) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) < 4 {
		return ErrMissingBytes
	}
	r.code = ErrorCode(wire.BytesToUint32(frh.payload[:4]))
	return nil
}

func (r *RstStream) Serialize(frh *FrameHeader) {
	frh.payload = wire.AppendUint32Bytes(frh.payload[:0], uint32(r.code))
	frh.length = 4
}
