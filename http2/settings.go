package http2

import "github.com/wirehttp/wirehttp/internal/wire"

// Settings parameter identifiers.
//
// https://tools.ietf.org/html/rfc7540#section-6.5.2
const (
	SettingHeaderTableSize      uint16 = 0x1
	SettingEnablePush           uint16 = 0x2
	SettingMaxConcurrentStreams uint16 = 0x3
	SettingInitialWindowSize    uint16 = 0x4
	SettingMaxFrameSize         uint16 = 0x5
	SettingMaxHeaderListSize    uint16 = 0x6
)

const settingsParamLen = 6 // 2-octet id + 4-octet value

// Default values per §3 of this connection's SETTINGS negotiation.
const (
	DefaultHeaderTableSize   uint32 = 4096
	DefaultInitialWindowSize uint32 = 65535
	DefaultMaxFrameSize      uint32 = 16384
	MaxAllowedFrameSize      uint32 = 1<<24 - 1
	MaxAllowedWindowSize     uint32 = 1<<31 - 1
)

const (
	bitHeaderTableSize = 1 << iota
	bitEnablePush
	bitMaxConcurrentStreams
	bitInitialWindowSize
	bitMaxFrameSize
	bitMaxHeaderListSize
)

// Settings is a SETTINGS frame: either a list of explicitly-changed
// parameters (present tracks which ones), or — with Ack set — the empty
// acknowledgement of a peer's SETTINGS frame.
//
// https://tools.ietf.org/html/rfc7540#section-6.5
//
// Grounded on the humanized parameter struct in github.com/dgrr/http2's
// legacy Settings (settings.go, "fasthttp2" package revision), rewritten
// as a Frame implementation (the modern package's AcquireFrame(FrameSettings)
// expects one) that tracks which parameters were actually present on the
// wire instead of conflating "absent" with "zero", which the legacy
// Encode/Decode pair could not distinguish (it skipped any zero-valued
// field including a deliberate "set push to disabled" by omission).
type Settings struct {
	present uint8
	ack     bool

	headerTableSize      uint32
	enablePush           bool
	maxConcurrentStreams uint32
	initialWindowSize    uint32
	maxFrameSize         uint32
	maxHeaderListSize    uint32
}

func (s *Settings) Type() FrameType { return FrameSettings }

func (s *Settings) Reset() {
	s.present = 0
	s.ack = false
	s.headerTableSize = 0
	s.enablePush = false
	s.maxConcurrentStreams = 0
	s.initialWindowSize = 0
	s.maxFrameSize = 0
	s.maxHeaderListSize = 0
}

func (s *Settings) Ack() bool    { return s.ack }
func (s *Settings) SetAck(v bool) { s.ack = v }

func (s *Settings) HeaderTableSize() (uint32, bool) {
	return s.headerTableSize, s.present&bitHeaderTableSize != 0
}
func (s *Settings) SetHeaderTableSize(v uint32) {
	s.headerTableSize = v
	s.present |= bitHeaderTableSize
}

func (s *Settings) EnablePush() (bool, bool) {
	return s.enablePush, s.present&bitEnablePush != 0
}
func (s *Settings) SetEnablePush(v bool) {
	s.enablePush = v
	s.present |= bitEnablePush
}

func (s *Settings) MaxConcurrentStreams() (uint32, bool) {
	return s.maxConcurrentStreams, s.present&bitMaxConcurrentStreams != 0
}
func (s *Settings) SetMaxConcurrentStreams(v uint32) {
	s.maxConcurrentStreams = v
	s.present |= bitMaxConcurrentStreams
}

func (s *Settings) InitialWindowSize() (uint32, bool) {
	return s.initialWindowSize, s.present&bitInitialWindowSize != 0
}
func (s *Settings) SetInitialWindowSize(v uint32) {
	s.initialWindowSize = v
	s.present |= bitInitialWindowSize
}

func (s *Settings) MaxFrameSize() (uint32, bool) {
	return s.maxFrameSize, s.present&bitMaxFrameSize != 0
}
func (s *Settings) SetMaxFrameSize(v uint32) {
	s.maxFrameSize = v
	s.present |= bitMaxFrameSize
}

func (s *Settings) MaxHeaderListSize() (uint32, bool) {
	return s.maxHeaderListSize, s.present&bitMaxHeaderListSize != 0
}
func (s *Settings) SetMaxHeaderListSize(v uint32) {
	s.maxHeaderListSize = v
	s.present |= bitMaxHeaderListSize
}

func (s *Settings) Deserialize(frh *FrameHeader) error {
	s.ack = frh.Flags().Has(FlagAck)
	if s.ack {
		if len(frh.payload) != 0 {
			return ErrMissingBytes
		}
		return nil
	}

	if len(frh.payload)%settingsParamLen != 0 {
		return NewError(FrameSizeError, "SETTINGS payload not a multiple of 6")
	}

	for p := frh.payload; len(p) > 0; p = p[settingsParamLen:] {
		id := uint16(p[0])<<8 | uint16(p[1])
		value := wire.BytesToUint32(p[2:6])

		switch id {
		case SettingHeaderTableSize:
			s.SetHeaderTableSize(value)
		case SettingEnablePush:
			if value > 1 {
				return NewError(ProtocolError, "SETTINGS_ENABLE_PUSH must be 0 or 1")
			}
			s.SetEnablePush(value == 1)
		case SettingMaxConcurrentStreams:
			s.SetMaxConcurrentStreams(value)
		case SettingInitialWindowSize:
			if value > MaxAllowedWindowSize {
				return NewError(FlowControlError, "SETTINGS_INITIAL_WINDOW_SIZE exceeds 2^31-1")
			}
			s.SetInitialWindowSize(value)
		case SettingMaxFrameSize:
			if value < DefaultMaxFrameSize || value > MaxAllowedFrameSize {
				return NewError(ProtocolError, "SETTINGS_MAX_FRAME_SIZE out of range")
			}
			s.SetMaxFrameSize(value)
		case SettingMaxHeaderListSize:
			s.SetMaxHeaderListSize(value)
		default:
			// Unknown settings parameters must be ignored, not rejected.
		}
	}

	return nil
}

func (s *Settings) Serialize(frh *FrameHeader) {
	if s.ack {
		frh.SetFlags(frh.Flags().Add(FlagAck))
		frh.setPayload(nil)
		return
	}

	payload := make([]byte, 0, settingsParamLen*6)
	appendParam := func(id uint16, value uint32) {
		payload = append(payload, byte(id>>8), byte(id))
		payload = wire.AppendUint32Bytes(payload, value)
	}

	if v, ok := s.HeaderTableSize(); ok {
		appendParam(SettingHeaderTableSize, v)
	}
	if v, ok := s.EnablePush(); ok {
		n := uint32(0)
		if v {
			n = 1
		}
		appendParam(SettingEnablePush, n)
	}
	if v, ok := s.MaxConcurrentStreams(); ok {
		appendParam(SettingMaxConcurrentStreams, v)
	}
	if v, ok := s.InitialWindowSize(); ok {
		appendParam(SettingInitialWindowSize, v)
	}
	if v, ok := s.MaxFrameSize(); ok {
		appendParam(SettingMaxFrameSize, v)
	}
	if v, ok := s.MaxHeaderListSize(); ok {
		appendParam(SettingMaxHeaderListSize, v)
	}

	frh.setPayload(payload)
}
