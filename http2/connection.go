package http2

import (
	"bytes"

	"github.com/wirehttp/wirehttp/hpack"
)

// ClientPreface is the 24-octet connection preface a client must send
// before any frame, per §3.5.
const ClientPreface = "PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n"

// Role distinguishes which end of the connection this Connection plays,
// since the preface is only ever sent/expected from the client and
// stream-id parity is role-dependent.
type Role uint8

const (
	RoleServer Role = iota
	RoleClient
)

// ConnState is a Connection's position in §4.7's state machine.
type ConnState uint8

const (
	StateAwaitingPreface ConnState = iota
	StateAwaitingInitialSettings
	StateActive
	StateGoingAway
	StateClosed
)

// Callbacks are invoked synchronously from within Process, in wire order,
// per §4.6. Any field left nil is simply not called.
//
// Grounded on the serverConn/conn dispatch switch in github.com/dgrr/http2's
// conn.go/serverConn.go, generalized from "call a handler method on a
// concrete *conn" to caller-supplied closures so this package never
// assumes ownership of a socket, goroutine, or application framework.
type Callbacks struct {
	OnHeaders         func(streamID uint32, headers []hpack.HeaderField, endStream bool)
	OnData            func(streamID uint32, data []byte, endStream bool)
	OnStreamEnd       func(streamID uint32)
	OnStreamError     func(streamID uint32, code ErrorCode)
	OnConnectionError func(code ErrorCode, debug string)
	OnSettings        func(settings ConnSettings)
	OnPing            func(payload [8]byte, ack bool)
	OnGoAway          func(lastStreamID uint32, code ErrorCode, debug string)
	OnPriority        func(streamID, dependsOn uint32, exclusive bool, weight uint8)
}

// Connection is one HTTP/2 connection's frame codec, stream table and
// state machine. It owns no socket: Process consumes bytes the caller
// read from wherever it likes, and the Send*/TakeOutput methods return
// bytes for the caller to write back out.
//
// Grounded on github.com/dgrr/http2's conn.go/serverConn.go dispatch
// loop, reworked per §4.7/§5 from a goroutine-and-channel design driven
// by a live net.Conn into a pull-driven, single-threaded state machine
// driven only by Process.
type Connection struct {
	role  Role
	state ConnState

	prefaceMatched int

	local  ConnSettings
	remote ConnSettings

	enc *hpack.Encoder
	dec *hpack.Decoder

	streams       Streams
	connSendWin   int32
	connRecvWin   int32
	nextClientID  uint32
	nextServerID  uint32
	lastProcessed uint32

	// headerBlockStream is the stream currently mid HEADERS/PUSH_PROMISE
	// + CONTINUATION reassembly, or 0 if none.
	headerBlockStream uint32

	cb Callbacks

	outbox []byte
}

// NewConnection returns a Connection ready to Process incoming bytes.
// Callbacks may be zero-valued; any combination of fields may be left
// nil.
func NewConnection(role Role, cb Callbacks) *Connection {
	c := &Connection{
		role:         role,
		local:        NewConnSettings(),
		remote:       NewConnSettings(),
		enc:          hpack.NewEncoder(int(DefaultHeaderTableSize)),
		dec:          hpack.NewDecoder(int(DefaultHeaderTableSize)),
		connSendWin:  int32(DefaultInitialWindowSize),
		connRecvWin:  int32(DefaultInitialWindowSize),
		nextClientID: 1,
		nextServerID: 2,
		cb:           cb,
	}
	if role == RoleClient {
		c.state = StateAwaitingInitialSettings
	}
	return c
}

// State returns the connection's current state.
func (c *Connection) State() ConnState { return c.state }

// LocalSettings returns the settings this side has announced (or the
// RFC 7540 defaults, until an initial SETTINGS is sent).
func (c *Connection) LocalSettings() ConnSettings { return c.local }

// RemoteSettings returns the peer's currently-in-force settings.
func (c *Connection) RemoteSettings() ConnSettings { return c.remote }

// ActiveStreamIDs returns the ids of every stream currently tracked by
// the connection, ascending. A pull-style complement to Callbacks, for
// callers that want to poll rather than react.
func (c *Connection) ActiveStreamIDs() []uint32 {
	ids := make([]uint32, c.streams.Len())
	for i, s := range c.streams.list {
		ids[i] = s.ID()
	}
	return ids
}

// StreamInfo returns a snapshot of stream id's state and flow-control
// windows, or ok=false if no such stream is tracked.
func (c *Connection) StreamInfo(id uint32) (info StreamInfo, ok bool) {
	s := c.streams.Get(id)
	if s == nil {
		return StreamInfo{}, false
	}
	return StreamInfo{
		ID:         s.ID(),
		State:      s.State(),
		SendWindow: s.SendWindow(),
		RecvWindow: s.RecvWindow(),
	}, true
}

// TakeOutput returns and clears bytes Process queued reactively (SETTINGS
// acks, automatic window credit, RST_STREAM/GOAWAY emitted in response to
// a protocol violation). The caller writes these to the transport.
func (c *Connection) TakeOutput() []byte {
	out := c.outbox
	c.outbox = nil
	return out
}

func (c *Connection) queue(b []byte) {
	c.outbox = append(c.outbox, b...)
}

// Process decodes as many complete frames as data holds, dispatching
// callbacks for each, and returns how many leading bytes of data were
// consumed. A trailing incomplete frame is normal: consumed will be less
// than len(data), and the caller should call Process again once more
// bytes are available, passing data[consumed:] followed by the new bytes
// (the partial frame's bytes were not consumed). Process returns a
// non-nil error only when called on a connection that is already
// Closed; every protocol violation, fatal or not, is instead reported via
// the connection- or stream-error callback and reflected in
// Connection.State.
func (c *Connection) Process(data []byte) (int, error) {
	if c.state == StateClosed {
		return 0, NewError(InternalError, "connection is closed")
	}

	pos := 0
	for {
		switch c.state {
		case StateAwaitingPreface:
			n, done := c.matchPreface(data[pos:])
			pos += n
			if !done {
				return pos, nil
			}
			c.state = StateAwaitingInitialSettings

		default:
			frh, n, err := ConsumeFrameHeader(data[pos:], c.local.MaxFrameSize)
			if err == ErrNeedMoreData {
				return pos, nil
			}
			if err != nil {
				c.connError(CodeOf(err), err.Error())
				return pos, nil
			}
			pos += n

			if c.state == StateAwaitingInitialSettings {
				if frh.Type() != FrameSettings || frh.Flags().Has(FlagAck) {
					ReleaseFrameHeader(frh)
					c.connError(ProtocolError, "first frame must be a non-ack SETTINGS")
					return pos, nil
				}
				c.state = StateActive
			}

			c.lastProcessed = frh.Stream()
			c.dispatch(frh)
			ReleaseFrameHeader(frh)

			if c.state == StateClosed {
				return pos, nil
			}
		}
	}
}

func (c *Connection) matchPreface(seg []byte) (consumed int, done bool) {
	need := len(ClientPreface) - c.prefaceMatched
	n := need
	if len(seg) < n {
		n = len(seg)
	}
	if !bytes.Equal(seg[:n], []byte(ClientPreface)[c.prefaceMatched:c.prefaceMatched+n]) {
		c.connError(ProtocolError, "bad connection preface")
		return len(seg), true
	}
	c.prefaceMatched += n
	return n, c.prefaceMatched == len(ClientPreface)
}

// connError reports a connection-level error: invokes the callback,
// queues a GOAWAY naming the last stream this side started processing,
// and transitions to GoingAway (permanent errors close the connection
// outright once the GOAWAY has been queued).
func (c *Connection) connError(code ErrorCode, debug string) {
	if c.state == StateGoingAway || c.state == StateClosed {
		return
	}
	c.state = StateGoingAway
	if c.cb.OnConnectionError != nil {
		c.cb.OnConnectionError(code, debug)
	}
	ga := AcquireFrame(FrameGoAway).(*GoAway)
	ga.SetLastStreamID(c.streams.LastClientID())
	ga.SetCode(code)
	frh := AcquireFrameHeader()
	frh.SetBody(ga)
	c.queue(AppendFrameHeader(nil, frh))
	ReleaseFrameHeader(frh)
	c.state = StateClosed
}

func (c *Connection) streamError(id uint32, code ErrorCode) {
	if s := c.streams.Del(id); s != nil {
		s.SetState(StreamClosed)
	}
	if c.cb.OnStreamError != nil {
		c.cb.OnStreamError(id, code)
	}
	rst := AcquireFrame(FrameResetStream).(*RstStream)
	rst.SetCode(code)
	frh := AcquireFrameHeader()
	frh.SetStream(id)
	frh.SetBody(rst)
	c.queue(AppendFrameHeader(nil, frh))
	ReleaseFrameHeader(frh)
}

func (c *Connection) dispatch(frh *FrameHeader) {
	// Header-block atomicity: once a HEADERS/PUSH_PROMISE without
	// END_HEADERS has been seen, only a CONTINUATION on that same stream
	// may follow (§4.3).
	if c.headerBlockStream != 0 {
		if frh.Type() != FrameContinuation || frh.Stream() != c.headerBlockStream {
			c.connError(ProtocolError, "frame interleaved within a header block")
			return
		}
	}

	switch frh.Type() {
	case FrameSettings:
		c.handleSettings(frh)
	case FrameHeaders:
		c.handleHeaders(frh)
	case FrameContinuation:
		c.handleContinuation(frh)
	case FrameData:
		c.handleData(frh)
	case FramePriority:
		c.handlePriority(frh)
	case FrameResetStream:
		c.handleRstStream(frh)
	case FramePing:
		c.handlePing(frh)
	case FrameGoAway:
		c.handleGoAway(frh)
	case FrameWindowUpdate:
		c.handleWindowUpdate(frh)
	case FramePushPromise:
		c.handlePushPromise(frh)
	default:
		// Unknown frame type: ignore per §5.5.
	}
}
