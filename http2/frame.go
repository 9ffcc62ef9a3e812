// Package http2 implements the HTTP/2 framing, stream-multiplexing and
// connection state machine described by §5/§6/§7 of the spec: a
// transport-agnostic, single-threaded core that decodes and encodes
// frames and tracks stream and connection state from a byte stream
// handed to it by the caller. It never owns a socket, spawns a
// goroutine, or blocks.
//
// Grounded on github.com/dgrr/http2, whose per-frame-type files
// (data.go, headers.go, priority.go, ...) define FrameType constants
// and implement a shared Frame interface each dispatched from
// AcquireFrame. That dispatcher, the FrameType/FrameFlags/ErrorCode
// types and the Settings frame are not present as such in this
// retrieval's modern (package http2) file set — only in an older,
// differently-shaped "fasthttp2" package alongside it — so this file
// reconstructs them from the legacy file's constants in the modern
// per-frame-type idiom the rest of the package already follows.
package http2

import "sync"

// FrameType identifies the kind of payload an HTTP/2 frame carries.
//
// https://tools.ietf.org/html/rfc7540#section-6
type FrameType uint8

const (
	FrameData FrameType = iota
	FrameHeaders
	FramePriority
	FrameResetStream
	FrameSettings
	FramePushPromise
	FramePing
	FrameGoAway
	FrameWindowUpdate
	FrameContinuation
)

func (t FrameType) String() string {
	switch t {
	case FrameData:
		return "DATA"
	case FrameHeaders:
		return "HEADERS"
	case FramePriority:
		return "PRIORITY"
	case FrameResetStream:
		return "RST_STREAM"
	case FrameSettings:
		return "SETTINGS"
	case FramePushPromise:
		return "PUSH_PROMISE"
	case FramePing:
		return "PING"
	case FrameGoAway:
		return "GOAWAY"
	case FrameWindowUpdate:
		return "WINDOW_UPDATE"
	case FrameContinuation:
		return "CONTINUATION"
	}
	return "UNKNOWN"
}

const maxFrameType = FrameContinuation

// FrameFlags are the 8 bits of a frame header's Flags field. Only a few
// bit positions carry meaning, and their meaning is frame-type-specific
// (e.g. 0x1 is END_STREAM on DATA/HEADERS but ACK on SETTINGS/PING).
type FrameFlags uint8

const (
	FlagAck        FrameFlags = 0x1
	FlagEndStream  FrameFlags = 0x1
	FlagEndHeaders FrameFlags = 0x4
	FlagPadded     FrameFlags = 0x8
	FlagPriority   FrameFlags = 0x20
)

// Has reports whether f is set in flags.
func (flags FrameFlags) Has(f FrameFlags) bool {
	return flags&f == f
}

// Add returns flags with f set.
func (flags FrameFlags) Add(f FrameFlags) FrameFlags {
	return flags | f
}

// Frame is implemented by every frame payload type (Data, Headers,
// Priority, RstStream, Settings, PushPromise, Ping, GoAway, WindowUpdate,
// Continuation). Deserialize/Serialize convert between the type's typed
// fields and the raw payload carried by a FrameHeader; Frame values are
// normally obtained from AcquireFrame and are not safe for concurrent use.
type Frame interface {
	Type() FrameType
	Deserialize(fr *FrameHeader) error
	Serialize(fr *FrameHeader)
}

var framePools = [maxFrameType + 1]sync.Pool{
	FrameData:         {New: func() interface{} { return new(Data) }},
	FrameHeaders:      {New: func() interface{} { return new(Headers) }},
	FramePriority:     {New: func() interface{} { return new(Priority) }},
	FrameResetStream:  {New: func() interface{} { return new(RstStream) }},
	FrameSettings:     {New: func() interface{} { return new(Settings) }},
	FramePushPromise:  {New: func() interface{} { return new(PushPromise) }},
	FramePing:         {New: func() interface{} { return new(Ping) }},
	FrameGoAway:       {New: func() interface{} { return new(GoAway) }},
	FrameWindowUpdate: {New: func() interface{} { return new(WindowUpdate) }},
	FrameContinuation: {New: func() interface{} { return new(Continuation) }},
}

// AcquireFrame returns a pooled, reset Frame implementing kind. Release it
// with ReleaseFrame once done.
func AcquireFrame(kind FrameType) Frame {
	if kind > maxFrameType {
		return nil
	}
	fr := framePools[kind].Get().(Frame)
	return fr
}

// ReleaseFrame resets fr and returns it to its type's pool.
func ReleaseFrame(fr Frame) {
	if fr == nil {
		return
	}
	kind := fr.Type()
	if kind > maxFrameType {
		return
	}
	if r, ok := fr.(interface{ Reset() }); ok {
		r.Reset()
	}
	framePools[kind].Put(fr)
}
