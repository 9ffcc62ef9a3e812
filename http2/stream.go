package http2

// StreamState is a stream's position in the RFC 7540 §5.1 state machine.
//
// Grounded on github.com/dgrr/http2's StreamState (stream.go), split here
// into distinct half-closed-local and half-closed-remote states — the
// teacher's enum collapses both into one StreamStateHalfClosed, which
// can't tell "we've sent END_STREAM and are waiting on the peer" apart
// from "the peer has sent END_STREAM and is waiting on us", a
// distinction §5.1 and this library's stream bookkeeping both need.
type StreamState int8

const (
	StreamIdle StreamState = iota
	StreamReservedLocal
	StreamReservedRemote
	StreamOpen
	StreamHalfClosedLocal
	StreamHalfClosedRemote
	StreamClosed
)

func (ss StreamState) String() string {
	switch ss {
	case StreamIdle:
		return "idle"
	case StreamReservedLocal:
		return "reserved(local)"
	case StreamReservedRemote:
		return "reserved(remote)"
	case StreamOpen:
		return "open"
	case StreamHalfClosedLocal:
		return "half-closed(local)"
	case StreamHalfClosedRemote:
		return "half-closed(remote)"
	case StreamClosed:
		return "closed"
	}
	return "unknown"
}

// Stream tracks one HTTP/2 stream's state, flow-control window, and
// header-block reassembly progress.
//
// Grounded on github.com/dgrr/http2's Stream (stream.go); window is
// signed here (int32, not the teacher's plain int) since §5.2.1 lets a
// SETTINGS_INITIAL_WINDOW_SIZE decrease drive a stream's window negative.
type Stream struct {
	id    uint32
	state StreamState

	sendWindow int32
	recvWindow int32

	// headerBlock accumulates HEADERS/PUSH_PROMISE + CONTINUATION
	// payloads until a frame with END_HEADERS completes the block
	// (§4.3): no other frame type may interleave on this stream (or any
	// other) until this is true.
	headerBlock      []byte
	headerInProgress bool

	data interface{}
}

// NewStream returns an idle Stream with the given id and initial
// send/receive window (the negotiated SETTINGS_INITIAL_WINDOW_SIZE for
// each direction).
func NewStream(id uint32, sendWindow, recvWindow int32) *Stream {
	return &Stream{id: id, state: StreamIdle, sendWindow: sendWindow, recvWindow: recvWindow}
}

func (s *Stream) ID() uint32           { return s.id }
func (s *Stream) State() StreamState   { return s.state }
func (s *Stream) SetState(st StreamState) { s.state = st }

func (s *Stream) SendWindow() int32 { return s.sendWindow }
func (s *Stream) RecvWindow() int32 { return s.recvWindow }

// IncrSendWindow applies a WINDOW_UPDATE increment from the peer.
func (s *Stream) IncrSendWindow(n int32) { s.sendWindow += n }

// IncrRecvWindow applies a local SETTINGS_INITIAL_WINDOW_SIZE change, or
// credits back window after the application consumes buffered DATA.
func (s *Stream) IncrRecvWindow(n int32) { s.recvWindow += n }

// ConsumeSendWindow debits n (a DATA frame about to be sent) from the
// send window.
func (s *Stream) ConsumeSendWindow(n int32) { s.sendWindow -= n }

// ConsumeRecvWindow debits n (a DATA frame just received) from the
// receive window.
func (s *Stream) ConsumeRecvWindow(n int32) { s.recvWindow -= n }

func (s *Stream) Data() interface{}      { return s.data }
func (s *Stream) SetData(data interface{}) { s.data = data }

// HeaderBlockInProgress reports whether this stream is mid-reassembly of
// a HEADERS/PUSH_PROMISE + CONTINUATION sequence.
func (s *Stream) HeaderBlockInProgress() bool { return s.headerInProgress }

// BeginHeaderBlock starts reassembly with frag, the first frame's
// payload.
func (s *Stream) BeginHeaderBlock(frag []byte) {
	s.headerBlock = append(s.headerBlock[:0], frag...)
	s.headerInProgress = true
}

// AppendHeaderBlock appends a CONTINUATION frame's fragment.
func (s *Stream) AppendHeaderBlock(frag []byte) {
	s.headerBlock = append(s.headerBlock, frag...)
}

// EndHeaderBlock returns the fully reassembled block and resets
// reassembly state.
func (s *Stream) EndHeaderBlock() []byte {
	s.headerInProgress = false
	return s.headerBlock
}

// StreamInfo is a read-only snapshot of a stream's state and windows,
// returned by Connection.StreamInfo for callers that poll rather than
// consume Callbacks.
//
// Grounded on co::http::v2::stream_state (original_source/include/http_parse/v2/parser.hpp),
// the pull-style accumulation view the callback-only Callbacks/Streams
// pair doesn't otherwise expose.
type StreamInfo struct {
	ID         uint32
	State      StreamState
	SendWindow int32
	RecvWindow int32
}

// Closed/Open are convenience state predicates mirroring §5.1's diagram.
func (s *Stream) Closed() bool { return s.state == StreamClosed }

func (s *Stream) Open() bool { return s.state == StreamOpen }
