package http2

import "github.com/wirehttp/wirehttp/internal/wire"

// WindowUpdate grants additional flow-control credit, either for one
// stream (non-zero frame stream id) or for the whole connection
// (stream id 0).
//
// https://tools.ietf.org/html/rfc7540#section-6.9
//
// Grounded on github.com/dgrr/http2's WindowUpdate (windowUpdate.go and
// the duplicate, lowercase-named windowupdate.go carried alongside it in
// this retrieval — both define the same type, so only one informs this
// file).
type WindowUpdate struct {
	increment uint32
}

func (wu *WindowUpdate) Type() FrameType { return FrameWindowUpdate }

func (wu *WindowUpdate) Reset() { wu.increment = 0 }

func (wu *WindowUpdate) CopyTo(o *WindowUpdate) { o.increment = wu.increment }

func (wu *WindowUpdate) Increment() uint32     { return wu.increment }
func (wu *WindowUpdate) SetIncrement(n uint32) { wu.increment = n & (1<<31 - 1) }

func (wu *WindowUpdate) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) < 4 {
		return ErrMissingBytes
	}
	wu.increment = wire.BytesToUint32(frh.payload[:4]) & (1<<31 - 1)
	if wu.increment == 0 {
		return NewError(ProtocolError, "window update increment must be non-zero")
	}
	return nil
}

func (wu *WindowUpdate) Serialize(frh *FrameHeader) {
	frh.payload = wire.AppendUint32Bytes(frh.payload[:0], wu.increment)
	frh.length = 4
}
