package http2

import "github.com/wirehttp/wirehttp/internal/wire"

// Priority advises how a client would like the server to prioritize
// concurrent streams: a dependency on another stream, an exclusivity
// bit, and a relative weight.
//
// https://tools.ietf.org/html/rfc7540#section-6.3
//
// Grounded on github.com/dgrr/http2's Priority (priority.go), extended
// with the exclusive-dependency bit the teacher's version drops on the
// floor (it masks the high bit off on both read and write and never
// exposes it).
type Priority struct {
	streamDep uint32
	exclusive bool
	weight    uint8
}

func (p *Priority) Type() FrameType { return FramePriority }

func (p *Priority) Reset() {
	p.streamDep = 0
	p.exclusive = false
	p.weight = 0
}

func (p *Priority) CopyTo(o *Priority) {
	o.streamDep = p.streamDep
	o.exclusive = p.exclusive
	o.weight = p.weight
}

func (p *Priority) StreamDep() uint32 { return p.streamDep }
func (p *Priority) Exclusive() bool   { return p.exclusive }
func (p *Priority) Weight() uint8     { return p.weight }

func (p *Priority) SetStreamDep(id uint32) { p.streamDep = id & (1<<31 - 1) }
func (p *Priority) SetExclusive(v bool)    { p.exclusive = v }
func (p *Priority) SetWeight(w uint8)      { p.weight = w }

func (p *Priority) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) < 5 {
		return ErrMissingBytes
	}
	dep := wire.BytesToUint32(frh.payload[:4])
	p.exclusive = dep&0x80000000 != 0
	p.streamDep = dep & (1<<31 - 1)
	p.weight = frh.payload[4]
	return nil
}

func (p *Priority) Serialize(frh *FrameHeader) {
	var b [5]byte
	dep := p.streamDep
	if p.exclusive {
		dep |= 0x80000000
	}
	wire.Uint32ToBytes(b[:4], dep)
	b[4] = p.weight
	frh.setPayload(b[:])
}
