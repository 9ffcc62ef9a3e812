package http2

// Ping is a connection-level liveness probe; setting the ACK flag turns
// it into the required reply to one received from the peer.
//
// https://tools.ietf.org/html/rfc7540#section-6.7
//
// Grounded on github.com/dgrr/http2's Ping (ping.go).
type Ping struct {
	ack  bool
	data [8]byte
}

func (p *Ping) Type() FrameType { return FramePing }

func (p *Ping) Reset() {
	p.ack = false
	p.data = [8]byte{}
}

func (p *Ping) CopyTo(o *Ping) {
	o.ack = p.ack
	o.data = p.data
}

func (p *Ping) Ack() bool      { return p.ack }
func (p *Ping) SetAck(v bool)  { p.ack = v }
func (p *Ping) Data() []byte   { return p.data[:] }
func (p *Ping) SetData(b []byte) {
	copy(p.data[:], b)
}

func (p *Ping) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) != 8 {
		return ErrMissingBytes
	}
	p.ack = frh.Flags().Has(FlagAck)
	copy(p.data[:], frh.payload)
	return nil
}

func (p *Ping) Serialize(frh *FrameHeader) {
	if p.ack {
		frh.SetFlags(frh.Flags().Add(FlagAck))
	}
	frh.setPayload(p.data[:])
}
