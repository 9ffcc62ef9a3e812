package http2

import "math"

// UnlimitedStreams is the MaxConcurrentStreams/MaxHeaderListSize sentinel
// meaning "no limit has been negotiated" — the RFC 7540 default for both.
const UnlimitedStreams = math.MaxUint32

// ConnSettings is one side's effective, currently-in-force SETTINGS
// state: the RFC 7540 §6.5.2 defaults, overridden parameter-by-parameter
// as SETTINGS frames are applied. A Connection keeps two of these — Local
// (values it has told its peer) and Remote (values its peer has told it)
// — since each direction negotiates independently.
type ConnSettings struct {
	HeaderTableSize      uint32
	EnablePush           bool
	MaxConcurrentStreams uint32
	InitialWindowSize    uint32
	MaxFrameSize         uint32
	MaxHeaderListSize    uint32
}

// NewConnSettings returns the RFC 7540 default settings.
func NewConnSettings() ConnSettings {
	return ConnSettings{
		HeaderTableSize:      DefaultHeaderTableSize,
		EnablePush:           true,
		MaxConcurrentStreams: UnlimitedStreams,
		InitialWindowSize:    DefaultInitialWindowSize,
		MaxFrameSize:         DefaultMaxFrameSize,
		MaxHeaderListSize:    UnlimitedStreams,
	}
}

// Apply overrides cs field-by-field with whatever parameters are present
// in s (bounds already validated by Settings.Deserialize).
func (cs *ConnSettings) Apply(s *Settings) {
	if v, ok := s.HeaderTableSize(); ok {
		cs.HeaderTableSize = v
	}
	if v, ok := s.EnablePush(); ok {
		cs.EnablePush = v
	}
	if v, ok := s.MaxConcurrentStreams(); ok {
		cs.MaxConcurrentStreams = v
	}
	if v, ok := s.InitialWindowSize(); ok {
		cs.InitialWindowSize = v
	}
	if v, ok := s.MaxFrameSize(); ok {
		cs.MaxFrameSize = v
	}
	if v, ok := s.MaxHeaderListSize(); ok {
		cs.MaxHeaderListSize = v
	}
}
