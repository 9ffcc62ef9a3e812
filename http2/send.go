package http2

import "github.com/wirehttp/wirehttp/hpack"

// Preface returns the 24-octet client connection preface a RoleClient
// Connection must write before anything else, per §3.5. A RoleServer
// Connection has nothing to send here; it waits to read the preface
// via Process instead.
func (c *Connection) Preface() []byte {
	if c.role != RoleClient {
		return nil
	}
	return []byte(ClientPreface)
}

// SendSettings encodes a SETTINGS frame announcing local, listing only the
// parameters that differ from the current LocalSettings (the RFC 7540
// defaults before the first call), and sets Connection.LocalSettings to
// local at once, without waiting for the peer's ACK. The caller is responsible for only calling this once per
// connection as the initial handshake SETTINGS, or subsequently to
// renegotiate a parameter.
func (c *Connection) SendSettings(local ConnSettings) []byte {
	s := AcquireFrame(FrameSettings).(*Settings)

	if local.HeaderTableSize != c.local.HeaderTableSize {
		s.SetHeaderTableSize(local.HeaderTableSize)
	}
	if local.EnablePush != c.local.EnablePush {
		s.SetEnablePush(local.EnablePush)
	}
	if local.MaxConcurrentStreams != c.local.MaxConcurrentStreams {
		s.SetMaxConcurrentStreams(local.MaxConcurrentStreams)
	}
	if local.InitialWindowSize != c.local.InitialWindowSize {
		s.SetInitialWindowSize(local.InitialWindowSize)
	}
	if local.MaxFrameSize != c.local.MaxFrameSize {
		s.SetMaxFrameSize(local.MaxFrameSize)
	}
	if local.MaxHeaderListSize != c.local.MaxHeaderListSize {
		s.SetMaxHeaderListSize(local.MaxHeaderListSize)
	}

	c.local = local
	c.enc.SetMaxTableSize(int(local.HeaderTableSize))

	frh := AcquireFrameHeader()
	defer ReleaseFrameHeader(frh)
	frh.SetBody(s)
	return AppendFrameHeader(nil, frh)
}

// SendHeaders HPACK-encodes headers and returns the HEADERS (+ any
// CONTINUATION frames needed to stay within maxFrameSize) for a new or
// continuing stream, opening a local stream table entry as needed.
// endStream should be true for a request/response with no body.
func (c *Connection) SendHeaders(streamID uint32, headers []hpack.HeaderField, endStream bool) []byte {
	s := c.streams.Get(streamID)
	if s == nil {
		s = NewStream(streamID, int32(c.remote.InitialWindowSize), int32(c.local.InitialWindowSize))
		s.SetState(StreamOpen)
		c.streams.Insert(s)
	}

	var block []byte
	for i := range headers {
		block = c.enc.AppendHeader(block, &headers[i], true)
	}

	out := c.appendHeaderBlock(streamID, block, endStream)

	if endStream {
		switch s.State() {
		case StreamOpen:
			s.SetState(StreamHalfClosedLocal)
		case StreamHalfClosedRemote:
			s.SetState(StreamClosed)
			c.streams.Del(streamID)
		}
	}

	return out
}

// appendHeaderBlock splits block across a leading HEADERS frame and as
// many CONTINUATION frames as required to respect c.remote.MaxFrameSize,
// per §4.3.
func (c *Connection) appendHeaderBlock(streamID uint32, block []byte, endStream bool) []byte {
	maxLen := int(c.remote.MaxFrameSize)
	if maxLen == 0 {
		maxLen = int(DefaultMaxFrameSize)
	}

	first := block
	rest := []byte(nil)
	if len(first) > maxLen {
		first, rest = block[:maxLen], block[maxLen:]
	} else {
		rest = nil
	}

	var out []byte

	h := AcquireFrame(FrameHeaders).(*Headers)
	h.SetHeaderBlockFragment(first)
	h.SetEndStream(endStream)
	h.SetEndHeaders(len(rest) == 0)
	frh := AcquireFrameHeader()
	frh.SetStream(streamID)
	frh.SetBody(h)
	out = AppendFrameHeader(out, frh)
	ReleaseFrameHeader(frh)

	for len(rest) > 0 {
		chunk := rest
		if len(chunk) > maxLen {
			chunk = rest[:maxLen]
		}
		rest = rest[len(chunk):]

		cont := AcquireFrame(FrameContinuation).(*Continuation)
		cont.SetHeaderBlockFragment(chunk)
		cont.SetEndHeaders(len(rest) == 0)
		cfrh := AcquireFrameHeader()
		cfrh.SetStream(streamID)
		cfrh.SetBody(cont)
		out = AppendFrameHeader(out, cfrh)
		ReleaseFrameHeader(cfrh)
	}

	return out
}

// SendData encodes a DATA frame for streamID, debiting the stream and
// connection send windows. It does not itself split data to respect
// those windows or the negotiated max frame size — the caller should
// only send as much as SendableData reports available.
func (c *Connection) SendData(streamID uint32, data []byte, endStream bool) []byte {
	s := c.streams.Get(streamID)
	if s != nil {
		s.ConsumeSendWindow(int32(len(data)))
	}
	c.connSendWin -= int32(len(data))

	d := AcquireFrame(FrameData).(*Data)
	d.SetData(data)
	d.SetEndStream(endStream)

	frh := AcquireFrameHeader()
	defer ReleaseFrameHeader(frh)
	frh.SetStream(streamID)
	frh.SetBody(d)
	out := AppendFrameHeader(nil, frh)

	if endStream && s != nil {
		switch s.State() {
		case StreamOpen:
			s.SetState(StreamHalfClosedLocal)
		case StreamHalfClosedRemote:
			s.SetState(StreamClosed)
			c.streams.Del(streamID)
		}
	}

	return out
}

// SendableData returns the largest DATA payload streamID may currently
// send without exceeding either the stream's or the connection's send
// window, or the peer's negotiated max frame size.
func (c *Connection) SendableData(streamID uint32) int {
	s := c.streams.Get(streamID)
	if s == nil {
		return 0
	}
	n := s.SendWindow()
	if c.connSendWin < n {
		n = c.connSendWin
	}
	if n < 0 {
		return 0
	}
	maxLen := int32(c.remote.MaxFrameSize)
	if maxLen != 0 && n > maxLen {
		n = maxLen
	}
	return int(n)
}

// SendWindowUpdate encodes a WINDOW_UPDATE frame granting increment
// bytes of additional receive credit for streamID (0 for the
// connection itself).
func (c *Connection) SendWindowUpdate(streamID uint32, increment uint32) []byte {
	wu := AcquireFrame(FrameWindowUpdate).(*WindowUpdate)
	wu.SetIncrement(increment)

	frh := AcquireFrameHeader()
	defer ReleaseFrameHeader(frh)
	frh.SetStream(streamID)
	frh.SetBody(wu)
	return AppendFrameHeader(nil, frh)
}

// SendRstStream encodes an RST_STREAM abandoning streamID for code, and
// removes the stream from the local table.
func (c *Connection) SendRstStream(streamID uint32, code ErrorCode) []byte {
	if s := c.streams.Del(streamID); s != nil {
		s.SetState(StreamClosed)
	}

	r := AcquireFrame(FrameResetStream).(*RstStream)
	r.SetCode(code)

	frh := AcquireFrameHeader()
	defer ReleaseFrameHeader(frh)
	frh.SetStream(streamID)
	frh.SetBody(r)
	return AppendFrameHeader(nil, frh)
}

// SendPing encodes a PING carrying payload, or its ACK if ack is true.
func (c *Connection) SendPing(payload [8]byte, ack bool) []byte {
	p := AcquireFrame(FramePing).(*Ping)
	p.SetData(payload[:])
	p.SetAck(ack)

	frh := AcquireFrameHeader()
	defer ReleaseFrameHeader(frh)
	frh.SetBody(p)
	return AppendFrameHeader(nil, frh)
}

// SendGoAway encodes a GOAWAY reporting code and debug, naming the
// highest client stream id this side has processed, and moves the
// connection to GoingAway.
func (c *Connection) SendGoAway(code ErrorCode, debug string) []byte {
	if c.state != StateClosed {
		c.state = StateGoingAway
	}

	ga := AcquireFrame(FrameGoAway).(*GoAway)
	ga.SetLastStreamID(c.streams.LastClientID())
	ga.SetCode(code)
	ga.SetData([]byte(debug))

	frh := AcquireFrameHeader()
	defer ReleaseFrameHeader(frh)
	frh.SetBody(ga)
	return AppendFrameHeader(nil, frh)
}
