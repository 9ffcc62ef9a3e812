package http2

import "github.com/wirehttp/wirehttp/internal/wire"

// FrameWithHeaders is implemented by frame types that carry a header
// block fragment subject to reassembly across CONTINUATION frames
// (Headers, PushPromise, Continuation).
type FrameWithHeaders interface {
	Frame
	HeaderBlockFragment() []byte
}

// Headers opens a stream (or, with no END_STREAM, starts one that still
// expects a DATA body) by carrying an HPACK-compressed header block
// fragment, optionally preceded by stream-dependency/weight priority
// information.
//
// https://tools.ietf.org/html/rfc7540#section-6.2
//
// Grounded on github.com/dgrr/http2's Headers (headers.go).
type Headers struct {
	padded       bool
	hasPriority  bool
	streamDep    uint32
	exclusive    bool
	weight       uint8
	endStream    bool
	endHeaders   bool
	rawHeaders   []byte
}

func (h *Headers) Type() FrameType { return FrameHeaders }

func (h *Headers) Reset() {
	h.padded = false
	h.hasPriority = false
	h.streamDep = 0
	h.exclusive = false
	h.weight = 0
	h.endStream = false
	h.endHeaders = false
	h.rawHeaders = h.rawHeaders[:0]
}

func (h *Headers) CopyTo(o *Headers) {
	o.padded = h.padded
	o.hasPriority = h.hasPriority
	o.streamDep = h.streamDep
	o.exclusive = h.exclusive
	o.weight = h.weight
	o.endStream = h.endStream
	o.endHeaders = h.endHeaders
	o.rawHeaders = append(o.rawHeaders[:0], h.rawHeaders...)
}

func (h *Headers) HeaderBlockFragment() []byte { return h.rawHeaders }
func (h *Headers) SetHeaderBlockFragment(b []byte) {
	h.rawHeaders = append(h.rawHeaders[:0], b...)
}
func (h *Headers) AppendHeaderBlockFragment(b []byte) {
	h.rawHeaders = append(h.rawHeaders, b...)
}

func (h *Headers) EndStream() bool     { return h.endStream }
func (h *Headers) SetEndStream(v bool) { h.endStream = v }
func (h *Headers) EndHeaders() bool    { return h.endHeaders }
func (h *Headers) SetEndHeaders(v bool) { h.endHeaders = v }
func (h *Headers) StreamDep() uint32   { return h.streamDep }
func (h *Headers) Exclusive() bool     { return h.exclusive }
func (h *Headers) Weight() uint8       { return h.weight }
func (h *Headers) HasPriority() bool   { return h.hasPriority }

func (h *Headers) SetPriority(streamDep uint32, exclusive bool, weight uint8) {
	h.hasPriority = true
	h.streamDep = streamDep & (1<<31 - 1)
	h.exclusive = exclusive
	h.weight = weight
}

func (h *Headers) Padded() bool     { return h.padded }
func (h *Headers) SetPadded(v bool) { h.padded = v }

func (h *Headers) Deserialize(frh *FrameHeader) error {
	flags := frh.Flags()
	payload := frh.payload

	if flags.Has(FlagPadded) {
		var err error
		payload, err = wire.CutPadding(payload, frh.Len())
		if err != nil {
			return err
		}
	}

	if flags.Has(FlagPriority) {
		if len(payload) < 5 {
			return ErrMissingBytes
		}
		dep := wire.BytesToUint32(payload[:4])
		h.exclusive = dep&0x80000000 != 0
		h.streamDep = dep & (1<<31 - 1)
		h.weight = payload[4]
		h.hasPriority = true
		payload = payload[5:]
	}

	h.endStream = flags.Has(FlagEndStream)
	h.endHeaders = flags.Has(FlagEndHeaders)
	h.rawHeaders = append(h.rawHeaders[:0], payload...)
	return nil
}

func (h *Headers) Serialize(frh *FrameHeader) {
	if h.endStream {
		frh.SetFlags(frh.Flags().Add(FlagEndStream))
	}
	if h.endHeaders {
		frh.SetFlags(frh.Flags().Add(FlagEndHeaders))
	}

	payload := h.rawHeaders
	if h.hasPriority {
		frh.SetFlags(frh.Flags().Add(FlagPriority))
		var prefix [5]byte
		dep := h.streamDep
		if h.exclusive {
			dep |= 0x80000000
		}
		wire.Uint32ToBytes(prefix[:4], dep)
		prefix[4] = h.weight
		payload = append(append([]byte(nil), prefix[:]...), payload...)
	}
	if h.padded {
		frh.SetFlags(frh.Flags().Add(FlagPadded))
		payload = wire.AddPadding(append([]byte(nil), payload...))
	}

	frh.setPayload(payload)
}
