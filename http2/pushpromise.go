package http2

import "github.com/wirehttp/wirehttp/internal/wire"

// PushPromise announces a stream the server intends to push, carrying
// the would-be request's header block fragment.
//
// https://tools.ietf.org/html/rfc7540#section-6.6
//
// Grounded on github.com/dgrr/http2's PushPromise (pushpromise.go).
type PushPromise struct {
	padded         bool
	promisedStream uint32
	endHeaders     bool
	rawHeaders     []byte
}

func (pp *PushPromise) Type() FrameType { return FramePushPromise }

func (pp *PushPromise) Reset() {
	pp.padded = false
	pp.promisedStream = 0
	pp.endHeaders = false
	pp.rawHeaders = pp.rawHeaders[:0]
}

func (pp *PushPromise) CopyTo(o *PushPromise) {
	o.padded = pp.padded
	o.promisedStream = pp.promisedStream
	o.endHeaders = pp.endHeaders
	o.rawHeaders = append(o.rawHeaders[:0], pp.rawHeaders...)
}

func (pp *PushPromise) HeaderBlockFragment() []byte { return pp.rawHeaders }
func (pp *PushPromise) SetHeaderBlockFragment(b []byte) {
	pp.rawHeaders = append(pp.rawHeaders[:0], b...)
}

func (pp *PushPromise) PromisedStream() uint32     { return pp.promisedStream }
func (pp *PushPromise) SetPromisedStream(id uint32) { pp.promisedStream = id & (1<<31 - 1) }
func (pp *PushPromise) EndHeaders() bool           { return pp.endHeaders }
func (pp *PushPromise) SetEndHeaders(v bool)       { pp.endHeaders = v }
func (pp *PushPromise) Padded() bool               { return pp.padded }
func (pp *PushPromise) SetPadded(v bool)           { pp.padded = v }

func (pp *PushPromise) Deserialize(frh *FrameHeader) error {
	payload := frh.payload

	if frh.Flags().Has(FlagPadded) {
		var err error
		payload, err = wire.CutPadding(payload, frh.Len())
		if err != nil {
			return err
		}
	}

	if len(payload) < 4 {
		return ErrMissingBytes
	}

	pp.promisedStream = wire.BytesToUint32(payload[:4]) & (1<<31 - 1)
	pp.rawHeaders = append(pp.rawHeaders[:0], payload[4:]...)
	pp.endHeaders = frh.Flags().Has(FlagEndHeaders)
	return nil
}

func (pp *PushPromise) Serialize(frh *FrameHeader) {
	if pp.endHeaders {
		frh.SetFlags(frh.Flags().Add(FlagEndHeaders))
	}

	payload := wire.AppendUint32Bytes(nil, pp.promisedStream)
	payload = append(payload, pp.rawHeaders...)

	if pp.padded {
		frh.SetFlags(frh.Flags().Add(FlagPadded))
		payload = wire.AddPadding(payload)
	}

	frh.setPayload(payload)
}
