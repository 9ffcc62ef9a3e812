package http2

import "github.com/wirehttp/wirehttp/internal/wire"

// Data carries a stream's body bytes.
//
// https://tools.ietf.org/html/rfc7540#section-6.1
//
// Grounded on github.com/dgrr/http2's Data (data.go).
type Data struct {
	endStream bool
	padded    bool
	b         []byte
}

func (d *Data) Type() FrameType { return FrameData }

func (d *Data) Reset() {
	d.endStream = false
	d.padded = false
	d.b = d.b[:0]
}

func (d *Data) CopyTo(o *Data) {
	o.endStream = d.endStream
	o.padded = d.padded
	o.b = append(o.b[:0], d.b...)
}

func (d *Data) EndStream() bool        { return d.endStream }
func (d *Data) SetEndStream(v bool)    { d.endStream = v }
func (d *Data) Padded() bool           { return d.padded }
func (d *Data) SetPadded(v bool)       { d.padded = v }
func (d *Data) Data() []byte           { return d.b }
func (d *Data) SetData(b []byte)       { d.b = append(d.b[:0], b...) }
func (d *Data) Len() int               { return len(d.b) }

func (d *Data) Deserialize(frh *FrameHeader) error {
	payload := frh.payload

	if frh.Flags().Has(FlagPadded) {
		var err error
		payload, err = wire.CutPadding(payload, frh.Len())
		if err != nil {
			return err
		}
	}

	d.endStream = frh.Flags().Has(FlagEndStream)
	d.b = append(d.b[:0], payload...)
	return nil
}

func (d *Data) Serialize(frh *FrameHeader) {
	if d.endStream {
		frh.SetFlags(frh.Flags().Add(FlagEndStream))
	}

	payload := d.b
	if d.padded {
		frh.SetFlags(frh.Flags().Add(FlagPadded))
		payload = wire.AddPadding(append([]byte(nil), d.b...))
	}

	frh.setPayload(payload)
}
