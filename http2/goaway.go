package http2

import (
	"fmt"

	"github.com/wirehttp/wirehttp/internal/wire"
)

// GoAway tells the peer the connection is shutting down: the highest
// stream id the sender has started (or will) processing, the reason, and
// optional debug data.
//
// https://tools.ietf.org/html/rfc7540#section-6.8
//
// Grounded on github.com/dgrr/http2's GoAway (goaway.go), with its
// Deserialize bug fixed: the teacher's version reads the error code twice
// (once from payload[:4], then again from payload[4:] into the same
// field) and never actually captures the last-stream-id it just read.
type GoAway struct {
	lastStreamID uint32
	code         ErrorCode
	data         []byte
}

func (ga *GoAway) Type() FrameType { return FrameGoAway }

func (ga *GoAway) Reset() {
	ga.lastStreamID = 0
	ga.code = 0
	ga.data = ga.data[:0]
}

func (ga *GoAway) CopyTo(o *GoAway) {
	o.lastStreamID = ga.lastStreamID
	o.code = ga.code
	o.data = append(o.data[:0], ga.data...)
}

func (ga *GoAway) Error() string {
	return fmt.Sprintf("last_stream_id=%d code=%s data=%q", ga.lastStreamID, ga.code, ga.data)
}

func (ga *GoAway) LastStreamID() uint32     { return ga.lastStreamID }
func (ga *GoAway) SetLastStreamID(id uint32) { ga.lastStreamID = id & (1<<31 - 1) }
func (ga *GoAway) Code() ErrorCode           { return ga.code }
func (ga *GoAway) SetCode(c ErrorCode)       { ga.code = c }
func (ga *GoAway) Data() []byte              { return ga.data }
func (ga *GoAway) SetData(b []byte)          { ga.data = append(ga.data[:0], b...) }

func (ga *GoAway) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) < 8 {
		return ErrMissingBytes
	}
	ga.lastStreamID = wire.BytesToUint32(frh.payload[:4]) & (1<<31 - 1)
	ga.code = ErrorCode(wire.BytesToUint32(frh.payload[4:8]))
	if len(frh.payload) > 8 {
		ga.data = append(ga.data[:0], frh.payload[8:]...)
	}
	return nil
}

func (ga *GoAway) Serialize(frh *FrameHeader) {
	payload := wire.AppendUint32Bytes(nil, ga.lastStreamID)
	payload = wire.AppendUint32Bytes(payload, uint32(ga.code))
	payload = append(payload, ga.data...)
	frh.setPayload(payload)
}
