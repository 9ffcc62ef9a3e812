package http2

// Continuation carries header block fragment overflow from a HEADERS or
// PUSH_PROMISE frame that didn't set END_HEADERS; a run of CONTINUATION
// frames must itself end with one that does (§4.3/§6.10).
//
// https://tools.ietf.org/html/rfc7540#section-6.10
//
// Grounded on github.com/dgrr/http2's Continuation (continuation.go).
type Continuation struct {
	endHeaders bool
	rawHeaders []byte
}

func (c *Continuation) Type() FrameType { return FrameContinuation }

func (c *Continuation) Reset() {
	c.endHeaders = false
	c.rawHeaders = c.rawHeaders[:0]
}

func (c *Continuation) CopyTo(o *Continuation) {
	o.endHeaders = c.endHeaders
	o.rawHeaders = append(o.rawHeaders[:0], c.rawHeaders...)
}

func (c *Continuation) HeaderBlockFragment() []byte { return c.rawHeaders }
func (c *Continuation) SetHeaderBlockFragment(b []byte) {
	c.rawHeaders = append(c.rawHeaders[:0], b...)
}

func (c *Continuation) EndHeaders() bool     { return c.endHeaders }
func (c *Continuation) SetEndHeaders(v bool) { c.endHeaders = v }

func (c *Continuation) Deserialize(frh *FrameHeader) error {
	c.endHeaders = frh.Flags().Has(FlagEndHeaders)
	c.rawHeaders = append(c.rawHeaders[:0], frh.payload...)
	return nil
}

func (c *Continuation) Serialize(frh *FrameHeader) {
	if c.endHeaders {
		frh.SetFlags(frh.Flags().Add(FlagEndHeaders))
	}
	frh.setPayload(c.rawHeaders)
}
