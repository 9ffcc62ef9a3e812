package http2

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wirehttp/wirehttp/hpack"
)

func handshake(t *testing.T, c *Connection) {
	t.Helper()
	n, err := c.Process([]byte(ClientPreface))
	require.NoError(t, err)
	require.Equal(t, len(ClientPreface), n)
	require.Equal(t, StateAwaitingInitialSettings, c.State())

	s := AcquireFrame(FrameSettings).(*Settings)
	s.SetMaxConcurrentStreams(100)
	frh := AcquireFrameHeader()
	frh.SetBody(s)
	buf := AppendFrameHeader(nil, frh)
	ReleaseFrameHeader(frh)

	n, err = c.Process(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, StateActive, c.State())
}

func TestServerHandshakeTransitionsToActive(t *testing.T) {
	c := NewConnection(RoleServer, Callbacks{})
	handshake(t, c)

	out := c.TakeOutput()
	require.NotEmpty(t, out, "a SETTINGS ack should have been queued")
}

func TestServerRejectsNonSettingsAsFirstFrame(t *testing.T) {
	var gotCode ErrorCode
	c := NewConnection(RoleServer, Callbacks{
		OnConnectionError: func(code ErrorCode, debug string) { gotCode = code },
	})

	_, err := c.Process([]byte(ClientPreface))
	require.NoError(t, err)

	p := AcquireFrame(FramePing).(*Ping)
	p.SetData([]byte("12345678"))
	frh := AcquireFrameHeader()
	frh.SetBody(p)
	buf := AppendFrameHeader(nil, frh)
	ReleaseFrameHeader(frh)

	_, err = c.Process(buf)
	require.NoError(t, err)
	require.Equal(t, ProtocolError, gotCode)
	require.Equal(t, StateClosed, c.State())
}

func TestHeadersDecodeAndOnHeadersCallback(t *testing.T) {
	var gotStream uint32
	var gotFields []hpack.HeaderField
	var gotEndStream bool

	c := NewConnection(RoleServer, Callbacks{
		OnHeaders: func(streamID uint32, headers []hpack.HeaderField, endStream bool) {
			gotStream = streamID
			gotFields = headers
			gotEndStream = endStream
		},
	})
	handshake(t, c)
	c.TakeOutput()

	enc := hpack.NewEncoder(4096)
	var block []byte
	method := hpack.HeaderField{Name: []byte(":method"), Value: []byte("GET")}
	path := hpack.HeaderField{Name: []byte(":path"), Value: []byte("/")}
	block = enc.AppendHeader(block, &method, true)
	block = enc.AppendHeader(block, &path, true)

	h := AcquireFrame(FrameHeaders).(*Headers)
	h.SetHeaderBlockFragment(block)
	h.SetEndHeaders(true)
	h.SetEndStream(true)
	frh := AcquireFrameHeader()
	frh.SetStream(1)
	frh.SetBody(h)
	buf := AppendFrameHeader(nil, frh)
	ReleaseFrameHeader(frh)

	n, err := c.Process(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)

	require.Equal(t, uint32(1), gotStream)
	require.True(t, gotEndStream)
	require.Len(t, gotFields, 2)
	require.Equal(t, []byte(":method"), gotFields[0].Name)
	require.Equal(t, []byte("GET"), gotFields[0].Value)
	require.Equal(t, []byte(":path"), gotFields[1].Name)
	require.Equal(t, []byte("/"), gotFields[1].Value)

	s := c.streams.Get(1)
	require.NotNil(t, s)
	require.Equal(t, StreamHalfClosedRemote, s.State())
}

func TestHeadersSplitAcrossContinuation(t *testing.T) {
	var gotFields []hpack.HeaderField
	c := NewConnection(RoleServer, Callbacks{
		OnHeaders: func(streamID uint32, headers []hpack.HeaderField, endStream bool) {
			gotFields = headers
		},
	})
	handshake(t, c)
	c.TakeOutput()

	enc := hpack.NewEncoder(4096)
	var block []byte
	method := hpack.HeaderField{Name: []byte(":method"), Value: []byte("POST")}
	path := hpack.HeaderField{Name: []byte(":path"), Value: []byte("/upload")}
	block = enc.AppendHeader(block, &method, true)
	block = enc.AppendHeader(block, &path, true)

	h := AcquireFrame(FrameHeaders).(*Headers)
	h.SetHeaderBlockFragment(block[:1])
	h.SetEndHeaders(false)
	frh := AcquireFrameHeader()
	frh.SetStream(1)
	frh.SetBody(h)
	buf := AppendFrameHeader(nil, frh)
	ReleaseFrameHeader(frh)

	cont := AcquireFrame(FrameContinuation).(*Continuation)
	cont.SetHeaderBlockFragment(block[1:])
	cont.SetEndHeaders(true)
	cfrh := AcquireFrameHeader()
	cfrh.SetStream(1)
	cfrh.SetBody(cont)
	buf = AppendFrameHeader(buf, cfrh)
	ReleaseFrameHeader(cfrh)

	n, err := c.Process(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Len(t, gotFields, 2)
	require.Equal(t, []byte(":method"), gotFields[0].Name)
	require.Equal(t, []byte("POST"), gotFields[0].Value)
	require.Equal(t, []byte(":path"), gotFields[1].Name)
	require.Equal(t, []byte("/upload"), gotFields[1].Value)
}

func TestHeadersBeyondMaxConcurrentStreamsIsRefusedStream(t *testing.T) {
	var gotStream uint32
	var gotCode ErrorCode
	var headersCalls int
	c := NewConnection(RoleServer, Callbacks{
		OnHeaders:     func(streamID uint32, headers []hpack.HeaderField, endStream bool) { headersCalls++ },
		OnStreamError: func(streamID uint32, code ErrorCode) { gotStream = streamID; gotCode = code },
	})
	handshake(t, c)
	c.TakeOutput()
	c.local.MaxConcurrentStreams = 1

	sendHeaders := func(streamID uint32) {
		enc := hpack.NewEncoder(4096)
		method := hpack.HeaderField{Name: []byte(":method"), Value: []byte("GET")}
		block := enc.AppendHeader(nil, &method, true)

		h := AcquireFrame(FrameHeaders).(*Headers)
		h.SetHeaderBlockFragment(block)
		h.SetEndHeaders(true)
		frh := AcquireFrameHeader()
		frh.SetStream(streamID)
		frh.SetBody(h)
		buf := AppendFrameHeader(nil, frh)
		ReleaseFrameHeader(frh)

		n, err := c.Process(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
	}

	sendHeaders(1)
	require.Equal(t, 1, headersCalls)
	require.NotNil(t, c.streams.Get(1))

	sendHeaders(3)
	require.Equal(t, 1, headersCalls, "the second stream's HEADERS must never reach OnHeaders")
	require.Equal(t, uint32(3), gotStream)
	require.Equal(t, RefusedStreamError, gotCode)
	require.Nil(t, c.streams.Get(3))
}

func TestFrameInterleavedInHeaderBlockIsConnectionError(t *testing.T) {
	var gotCode ErrorCode
	c := NewConnection(RoleServer, Callbacks{
		OnConnectionError: func(code ErrorCode, debug string) { gotCode = code },
	})
	handshake(t, c)
	c.TakeOutput()

	h := AcquireFrame(FrameHeaders).(*Headers)
	h.SetHeaderBlockFragment([]byte{0x82})
	h.SetEndHeaders(false)
	frh := AcquireFrameHeader()
	frh.SetStream(1)
	frh.SetBody(h)
	buf := AppendFrameHeader(nil, frh)
	ReleaseFrameHeader(frh)

	p := AcquireFrame(FramePing).(*Ping)
	p.SetData([]byte("12345678"))
	pfrh := AcquireFrameHeader()
	pfrh.SetBody(p)
	buf = AppendFrameHeader(buf, pfrh)
	ReleaseFrameHeader(pfrh)

	_, err := c.Process(buf)
	require.NoError(t, err)
	require.Equal(t, ProtocolError, gotCode)
	require.Equal(t, StateClosed, c.State())
}

func TestWindowUpdateOverflowIsFlowControlError(t *testing.T) {
	var gotCode ErrorCode
	c := NewConnection(RoleServer, Callbacks{
		OnConnectionError: func(code ErrorCode, debug string) { gotCode = code },
	})
	handshake(t, c)
	c.TakeOutput()
	c.connSendWin = int32(MaxAllowedWindowSize)

	wu := AcquireFrame(FrameWindowUpdate).(*WindowUpdate)
	wu.SetIncrement(1)
	frh := AcquireFrameHeader()
	frh.SetBody(wu)
	buf := AppendFrameHeader(nil, frh)
	ReleaseFrameHeader(frh)

	_, err := c.Process(buf)
	require.NoError(t, err)
	require.Equal(t, FlowControlError, gotCode)
	require.Equal(t, StateClosed, c.State())
}

func TestDataExceedingStreamWindowIsStreamError(t *testing.T) {
	var gotStream uint32
	var gotCode ErrorCode
	c := NewConnection(RoleServer, Callbacks{
		OnHeaders:     func(streamID uint32, headers []hpack.HeaderField, endStream bool) {},
		OnStreamError: func(streamID uint32, code ErrorCode) { gotStream = streamID; gotCode = code },
	})
	handshake(t, c)
	c.TakeOutput()

	enc := hpack.NewEncoder(4096)
	var block []byte
	method := hpack.HeaderField{Name: []byte(":method"), Value: []byte("POST")}
	block = enc.AppendHeader(block, &method, true)
	h := AcquireFrame(FrameHeaders).(*Headers)
	h.SetHeaderBlockFragment(block)
	h.SetEndHeaders(true)
	frh := AcquireFrameHeader()
	frh.SetStream(1)
	frh.SetBody(h)
	buf := AppendFrameHeader(nil, frh)
	ReleaseFrameHeader(frh)

	n, err := c.Process(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)

	s := c.streams.Get(1)
	require.NotNil(t, s)
	s.recvWindow = 4 // shrink artificially to force the violation deterministically

	d := AcquireFrame(FrameData).(*Data)
	d.SetData([]byte("too much data for this window"))
	dfrh := AcquireFrameHeader()
	dfrh.SetStream(1)
	dfrh.SetBody(d)
	dbuf := AppendFrameHeader(nil, dfrh)
	ReleaseFrameHeader(dfrh)

	_, err = c.Process(dbuf)
	require.NoError(t, err)
	require.Equal(t, uint32(1), gotStream)
	require.Equal(t, FlowControlError, gotCode)
	require.Nil(t, c.streams.Get(1))
}

func TestSendHeadersAndSendDataRoundTripThroughPeerConnection(t *testing.T) {
	client := NewConnection(RoleClient, Callbacks{})
	server := NewConnection(RoleServer, Callbacks{})

	_, err := server.Process(client.Preface())
	require.NoError(t, err)

	clientSettingsBuf := client.SendSettings(NewConnSettings())
	serverSettingsBuf := server.SendSettings(NewConnSettings())

	_, err = server.Process(clientSettingsBuf)
	require.NoError(t, err)
	require.Equal(t, StateActive, server.State())

	_, err = client.Process(serverSettingsBuf)
	require.NoError(t, err)
	require.Equal(t, StateActive, client.State())

	_, err = client.Process(server.TakeOutput())
	require.NoError(t, err)
	_, err = server.Process(client.TakeOutput())
	require.NoError(t, err)

	var gotFields []hpack.HeaderField
	var gotData []byte
	server.cb.OnHeaders = func(streamID uint32, headers []hpack.HeaderField, endStream bool) {
		gotFields = headers
	}
	server.cb.OnData = func(streamID uint32, data []byte, endStream bool) {
		gotData = append(gotData[:0], data...)
	}

	hdrBuf := client.SendHeaders(1, []hpack.HeaderField{
		{Name: []byte(":method"), Value: []byte("GET")},
	}, false)
	_, err = server.Process(hdrBuf)
	require.NoError(t, err)
	require.Len(t, gotFields, 1)

	dataBuf := client.SendData(1, []byte("body"), true)
	_, err = server.Process(dataBuf)
	require.NoError(t, err)
	require.Equal(t, []byte("body"), gotData)
}
