package http2

import "github.com/wirehttp/wirehttp/hpack"

func (c *Connection) handleSettings(frh *FrameHeader) {
	s, ok := frh.Body().(*Settings)
	if !ok {
		return
	}

	if s.Ack() {
		return
	}
	if frh.Stream() != 0 {
		c.connError(ProtocolError, "SETTINGS on a non-zero stream")
		return
	}

	c.remote.Apply(s)
	c.dec.SetMaxCap(int(c.remote.HeaderTableSize))

	if c.cb.OnSettings != nil {
		c.cb.OnSettings(c.remote)
	}

	ack := AcquireFrame(FrameSettings).(*Settings)
	ack.SetAck(true)
	afrh := AcquireFrameHeader()
	afrh.SetBody(ack)
	c.queue(AppendFrameHeader(nil, afrh))
	ReleaseFrameHeader(afrh)
}

func (c *Connection) handleHeaders(frh *FrameHeader) {
	if frh.Stream() == 0 {
		c.connError(ProtocolError, "HEADERS on stream 0")
		return
	}

	h, ok := frh.Body().(*Headers)
	if !ok {
		return
	}

	id := frh.Stream()
	s := c.streams.Get(id)
	if s == nil {
		if !c.streams.IsNewClientID(id) {
			c.connError(ProtocolError, "HEADERS on an invalid stream id")
			return
		}
		// §5.1.2: a peer that receives a HEADERS frame that would cause
		// its advertised SETTINGS_MAX_CONCURRENT_STREAMS to be exceeded
		// must treat this as a stream error of type REFUSED_STREAM.
		if c.local.MaxConcurrentStreams != UnlimitedStreams &&
			uint32(c.streams.OpenCount()) >= c.local.MaxConcurrentStreams {
			c.nextClientID = id + 2
			c.streamError(id, RefusedStreamError)
			return
		}
		s = NewStream(id, int32(c.remote.InitialWindowSize), int32(c.local.InitialWindowSize))
		s.SetState(StreamOpen)
		c.streams.Insert(s)
		c.nextClientID = id + 2
	}

	s.BeginHeaderBlock(h.HeaderBlockFragment())

	if h.EndHeaders() {
		c.finishHeaderBlock(s, h.EndStream())
	} else {
		c.headerBlockStream = id
	}

	if h.EndStream() {
		c.endStreamRemote(s)
	}

	if c.cb.OnPriority != nil && h.HasPriority() {
		c.cb.OnPriority(id, h.StreamDep(), h.Exclusive(), h.Weight())
	}
}

func (c *Connection) handleContinuation(frh *FrameHeader) {
	cont, ok := frh.Body().(*Continuation)
	if !ok {
		return
	}

	id := frh.Stream()
	s := c.streams.Get(id)
	if s == nil || !s.HeaderBlockInProgress() {
		c.connError(ProtocolError, "unexpected CONTINUATION")
		return
	}

	s.AppendHeaderBlock(cont.HeaderBlockFragment())

	if cont.EndHeaders() {
		c.headerBlockStream = 0
		c.finishHeaderBlock(s, s.State() == StreamHalfClosedRemote)
	}
}

func (c *Connection) finishHeaderBlock(s *Stream, endStream bool) {
	block := s.EndHeaderBlock()

	// DecodeHeaderBlock hands each field to emit with its own Name/Value
	// backing arrays (hpack.HeaderField.Clone), so appending the value
	// here is safe even though the decoder reuses one scratch field
	// across the whole block.
	var fields []hpack.HeaderField
	err := c.dec.DecodeHeaderBlock(block, func(hf hpack.HeaderField) {
		fields = append(fields, hf)
	})
	if err != nil {
		c.connError(CompressionError, err.Error())
		return
	}

	if c.cb.OnHeaders != nil {
		c.cb.OnHeaders(s.ID(), fields, endStream)
	}
}

func (c *Connection) endStreamRemote(s *Stream) {
	switch s.State() {
	case StreamOpen:
		s.SetState(StreamHalfClosedRemote)
	case StreamHalfClosedLocal:
		s.SetState(StreamClosed)
		c.streams.Del(s.ID())
	}
	if c.cb.OnStreamEnd != nil {
		c.cb.OnStreamEnd(s.ID())
	}
}

func (c *Connection) handleData(frh *FrameHeader) {
	if frh.Stream() == 0 {
		c.connError(ProtocolError, "DATA on stream 0")
		return
	}

	d, ok := frh.Body().(*Data)
	if !ok {
		return
	}

	id := frh.Stream()
	s := c.streams.Get(id)
	if s == nil {
		c.connError(StreamClosedError, "DATA on an unknown stream")
		return
	}

	n := int32(frh.Len())
	if n > c.connRecvWin || n > s.RecvWindow() {
		c.streamError(id, FlowControlError)
		return
	}
	c.connRecvWin -= n
	s.ConsumeRecvWindow(n)

	// Simple auto-credit: once a window has spent more than half its
	// negotiated size, replenish it so a steady stream of DATA frames
	// never stalls waiting on the application to explicitly credit back.
	if c.connRecvWin < int32(c.local.InitialWindowSize)/2 {
		incr := int32(c.local.InitialWindowSize) - c.connRecvWin
		c.connRecvWin += incr
		c.queueWindowUpdate(0, uint32(incr))
	}
	if s.RecvWindow() < int32(c.local.InitialWindowSize)/2 {
		incr := int32(c.local.InitialWindowSize) - s.RecvWindow()
		s.IncrRecvWindow(incr)
		c.queueWindowUpdate(id, uint32(incr))
	}

	if c.cb.OnData != nil {
		c.cb.OnData(id, d.Data(), d.EndStream())
	}

	if d.EndStream() {
		c.endStreamRemote(s)
	}
}

func (c *Connection) queueWindowUpdate(streamID uint32, increment uint32) {
	wu := AcquireFrame(FrameWindowUpdate).(*WindowUpdate)
	wu.SetIncrement(increment)
	frh := AcquireFrameHeader()
	frh.SetStream(streamID)
	frh.SetBody(wu)
	c.queue(AppendFrameHeader(nil, frh))
	ReleaseFrameHeader(frh)
}

func (c *Connection) handlePriority(frh *FrameHeader) {
	if frh.Stream() == 0 {
		c.connError(ProtocolError, "PRIORITY on stream 0")
		return
	}
	p, ok := frh.Body().(*Priority)
	if !ok {
		return
	}
	if c.cb.OnPriority != nil {
		c.cb.OnPriority(frh.Stream(), p.StreamDep(), p.Exclusive(), p.Weight())
	}
}

func (c *Connection) handleRstStream(frh *FrameHeader) {
	id := frh.Stream()
	if id == 0 {
		c.connError(ProtocolError, "RST_STREAM on stream 0")
		return
	}
	r, ok := frh.Body().(*RstStream)
	if !ok {
		return
	}
	if s := c.streams.Del(id); s != nil {
		s.SetState(StreamClosed)
	}
	if c.cb.OnStreamError != nil {
		c.cb.OnStreamError(id, r.Code())
	}
}

func (c *Connection) handlePing(frh *FrameHeader) {
	if frh.Stream() != 0 {
		c.connError(ProtocolError, "PING on a non-zero stream")
		return
	}
	p, ok := frh.Body().(*Ping)
	if !ok {
		return
	}

	if c.cb.OnPing != nil {
		c.cb.OnPing(*(*[8]byte)(p.Data()), p.Ack())
	}

	if !p.Ack() {
		reply := AcquireFrame(FramePing).(*Ping)
		reply.SetAck(true)
		reply.SetData(p.Data())
		rfrh := AcquireFrameHeader()
		rfrh.SetBody(reply)
		c.queue(AppendFrameHeader(nil, rfrh))
		ReleaseFrameHeader(rfrh)
	}
}

func (c *Connection) handleGoAway(frh *FrameHeader) {
	if frh.Stream() != 0 {
		c.connError(ProtocolError, "GOAWAY on a non-zero stream")
		return
	}
	ga, ok := frh.Body().(*GoAway)
	if !ok {
		return
	}
	if c.cb.OnGoAway != nil {
		c.cb.OnGoAway(ga.LastStreamID(), ga.Code(), string(ga.Data()))
	}
	if c.state == StateActive {
		c.state = StateGoingAway
	}
}

func (c *Connection) handleWindowUpdate(frh *FrameHeader) {
	wu, ok := frh.Body().(*WindowUpdate)
	if !ok {
		return
	}

	id := frh.Stream()
	if id == 0 {
		next := int64(c.connSendWin) + int64(wu.Increment())
		if next > int64(MaxAllowedWindowSize) {
			c.connError(FlowControlError, "connection send window overflow")
			return
		}
		c.connSendWin = int32(next)
		return
	}

	s := c.streams.Get(id)
	if s == nil {
		return
	}
	next := int64(s.SendWindow()) + int64(wu.Increment())
	if next > int64(MaxAllowedWindowSize) {
		c.streamError(id, FlowControlError)
		return
	}
	s.IncrSendWindow(int32(wu.Increment()))
}

func (c *Connection) handlePushPromise(frh *FrameHeader) {
	if c.role != RoleClient {
		c.connError(ProtocolError, "PUSH_PROMISE received by a server")
		return
	}
	pp, ok := frh.Body().(*PushPromise)
	if !ok {
		return
	}

	id := pp.PromisedStream()
	if !c.streams.IsNewServerID(id) {
		c.connError(ProtocolError, "PUSH_PROMISE announces an invalid stream id")
		return
	}

	s := NewStream(id, int32(c.remote.InitialWindowSize), int32(c.local.InitialWindowSize))
	s.SetState(StreamReservedRemote)
	c.streams.Insert(s)

	s.BeginHeaderBlock(pp.HeaderBlockFragment())
	if pp.EndHeaders() {
		c.finishHeaderBlock(s, false)
	} else {
		c.headerBlockStream = id
	}
}
