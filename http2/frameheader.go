package http2

import (
	"sync"

	"github.com/wirehttp/wirehttp/internal/wire"
)

// FrameHeaderLen is the fixed size of the 9-octet frame header.
//
// https://tools.ietf.org/html/rfc7540#section-4.1
const FrameHeaderLen = 9

const defaultMaxFrameSize = 1 << 14

// FrameHeader is one decoded/to-be-encoded HTTP/2 frame: the 9-octet
// header plus whatever Frame interprets its payload. One FrameHeader
// decodes (or encodes) a single frame; acquire one from the pool per
// frame via AcquireFrameHeader.
//
// Grounded on github.com/dgrr/http2's FrameHeader (frameHeader.go),
// adapted from a bufio.Reader-driven ReadFrom to a pure byte-slice
// ConsumeFrameHeader so the core never blocks on I/O (§4.1/§4.4).
type FrameHeader struct {
	length int
	kind   FrameType
	flags  FrameFlags
	stream uint32

	maxLen uint32

	payload []byte
	fr      Frame
}

var frameHeaderPool = sync.Pool{
	New: func() interface{} { return &FrameHeader{} },
}

// AcquireFrameHeader returns a FrameHeader from the pool, reset and ready
// to decode or build a frame.
func AcquireFrameHeader() *FrameHeader {
	frh := frameHeaderPool.Get().(*FrameHeader)
	frh.Reset()
	return frh
}

// ReleaseFrameHeader releases frh's Frame body back to its pool and
// returns frh itself to the FrameHeader pool.
func ReleaseFrameHeader(frh *FrameHeader) {
	if frh.fr != nil {
		ReleaseFrame(frh.fr)
	}
	frameHeaderPool.Put(frh)
}

// Reset clears frh for reuse, preserving no state across frames.
func (frh *FrameHeader) Reset() {
	frh.length = 0
	frh.kind = 0
	frh.flags = 0
	frh.stream = 0
	frh.maxLen = defaultMaxFrameSize
	frh.payload = frh.payload[:0]
	frh.fr = nil
}

func (frh *FrameHeader) Type() FrameType    { return frh.kind }
func (frh *FrameHeader) Flags() FrameFlags  { return frh.flags }
func (frh *FrameHeader) SetFlags(f FrameFlags) { frh.flags = f }
func (frh *FrameHeader) Stream() uint32     { return frh.stream }
func (frh *FrameHeader) SetStream(id uint32) { frh.stream = id & (1<<31 - 1) }
func (frh *FrameHeader) Len() int           { return frh.length }
func (frh *FrameHeader) MaxLen() uint32     { return frh.maxLen }
func (frh *FrameHeader) SetMaxLen(max uint32) { frh.maxLen = max }

// Body returns the decoded frame payload, or nil if this header's frame
// type isn't recognized (an unknown frame type must be ignored by the
// receiver, per §5.5, not treated as an error).
func (frh *FrameHeader) Body() Frame { return frh.fr }

func (frh *FrameHeader) SetBody(fr Frame) {
	frh.kind = fr.Type()
	frh.fr = fr
}

func (frh *FrameHeader) setPayload(payload []byte) {
	frh.payload = append(frh.payload[:0], payload...)
	frh.length = len(frh.payload)
}

func (frh *FrameHeader) checkLen() error {
	if frh.maxLen != 0 && frh.length > int(frh.maxLen) {
		return ErrPayloadExceeds
	}
	return nil
}

// ConsumeFrameHeader attempts to decode exactly one frame from the front
// of data. It returns the decoded FrameHeader (caller-owned; release it
// with ReleaseFrameHeader), how many bytes were consumed from data, and
// an error.
//
// If data doesn't yet hold a complete frame, it returns (nil, 0,
// ErrNeedMoreData) and consumes nothing — callers resubmit the same bytes
// plus more on the next call, matching this library's transport-agnostic
// contract (§4.1/§7).
func ConsumeFrameHeader(data []byte, maxLen uint32) (*FrameHeader, int, error) {
	if len(data) < FrameHeaderLen {
		return nil, 0, ErrNeedMoreData
	}

	frh := AcquireFrameHeader()
	if maxLen != 0 {
		frh.maxLen = maxLen
	}

	frh.length = int(wire.BytesToUint24(data[:3]))
	frh.kind = FrameType(data[3])
	frh.flags = FrameFlags(data[4])
	frh.stream = wire.BytesToUint32(data[5:9]) & (1<<31 - 1)

	if err := frh.checkLen(); err != nil {
		ReleaseFrameHeader(frh)
		return nil, 0, err
	}

	total := FrameHeaderLen + frh.length
	if len(data) < total {
		ReleaseFrameHeader(frh)
		return nil, 0, ErrNeedMoreData
	}

	frh.payload = wire.Resize(frh.payload, frh.length)
	copy(frh.payload, data[FrameHeaderLen:total])

	if frh.kind > maxFrameType {
		// Unknown frame type: fully consumed, body left nil for the
		// caller to skip over.
		return frh, total, nil
	}

	fr := AcquireFrame(frh.kind)
	if err := fr.Deserialize(frh); err != nil {
		ReleaseFrame(fr)
		ReleaseFrameHeader(frh)
		return nil, 0, err
	}
	frh.fr = fr

	return frh, total, nil
}

// AppendFrameHeader serializes frh's body (already attached via SetBody) onto
// dst as a complete frame: 9-octet header followed by payload.
func AppendFrameHeader(dst []byte, frh *FrameHeader) []byte {
	frh.fr.Serialize(frh)
	frh.length = len(frh.payload)

	var header [FrameHeaderLen]byte
	wire.Uint24ToBytes(header[:3], uint32(frh.length))
	header[3] = byte(frh.kind)
	header[4] = byte(frh.flags)
	wire.Uint32ToBytes(header[5:9], frh.stream)

	dst = append(dst, header[:]...)
	dst = append(dst, frh.payload...)
	return dst
}
