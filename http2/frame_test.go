package http2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, frh *FrameHeader) (*FrameHeader, int) {
	t.Helper()
	buf := AppendFrameHeader(nil, frh)
	got, n, err := ConsumeFrameHeader(buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	return got, n
}

func TestDataFrameRoundTrip(t *testing.T) {
	d := AcquireFrame(FrameData).(*Data)
	d.SetData([]byte("hello"))
	d.SetEndStream(true)

	frh := AcquireFrameHeader()
	frh.SetStream(3)
	frh.SetBody(d)

	got, _ := roundTrip(t, frh)
	defer ReleaseFrameHeader(got)

	gd := got.Body().(*Data)
	require.Equal(t, []byte("hello"), gd.Data())
	require.True(t, gd.EndStream())
	require.Equal(t, uint32(3), got.Stream())
}

func TestDataFramePadded(t *testing.T) {
	d := AcquireFrame(FrameData).(*Data)
	d.SetData([]byte("payload"))
	d.SetPadded(true)

	frh := AcquireFrameHeader()
	frh.SetBody(d)

	got, _ := roundTrip(t, frh)
	defer ReleaseFrameHeader(got)

	require.Equal(t, []byte("payload"), got.Body().(*Data).Data())
}

func TestHeadersFrameWithPriority(t *testing.T) {
	h := AcquireFrame(FrameHeaders).(*Headers)
	h.SetHeaderBlockFragment([]byte{0x82, 0x86, 0x84})
	h.SetEndHeaders(true)
	h.SetEndStream(true)
	h.SetPriority(5, true, 200)

	frh := AcquireFrameHeader()
	frh.SetStream(1)
	frh.SetBody(h)

	got, _ := roundTrip(t, frh)
	defer ReleaseFrameHeader(got)

	gh := got.Body().(*Headers)
	require.True(t, gh.HasPriority())
	require.Equal(t, uint32(5), gh.StreamDep())
	require.True(t, gh.Exclusive())
	require.Equal(t, uint8(200), gh.Weight())
	require.True(t, gh.EndHeaders())
	require.True(t, gh.EndStream())
}

func TestPriorityFrameExclusiveBit(t *testing.T) {
	p := AcquireFrame(FramePriority).(*Priority)
	p.SetStreamDep(9)
	p.SetExclusive(true)
	p.SetWeight(42)

	frh := AcquireFrameHeader()
	frh.SetStream(7)
	frh.SetBody(p)

	got, _ := roundTrip(t, frh)
	defer ReleaseFrameHeader(got)

	gp := got.Body().(*Priority)
	require.Equal(t, uint32(9), gp.StreamDep())
	require.True(t, gp.Exclusive())
	require.Equal(t, uint8(42), gp.Weight())
}

func TestSettingsFrameDistinguishesAbsentFromZero(t *testing.T) {
	s := AcquireFrame(FrameSettings).(*Settings)
	s.SetEnablePush(false)

	frh := AcquireFrameHeader()
	frh.SetBody(s)

	got, _ := roundTrip(t, frh)
	defer ReleaseFrameHeader(got)

	gs := got.Body().(*Settings)
	v, ok := gs.EnablePush()
	require.True(t, ok)
	require.False(t, v)

	_, ok = gs.MaxFrameSize()
	require.False(t, ok, "MaxFrameSize was never set and must report absent")
}

func TestSettingsAckHasEmptyPayload(t *testing.T) {
	s := AcquireFrame(FrameSettings).(*Settings)
	s.SetAck(true)

	frh := AcquireFrameHeader()
	frh.SetBody(s)

	got, n := roundTrip(t, frh)
	defer ReleaseFrameHeader(got)

	require.Equal(t, FrameHeaderLen, n)
	require.True(t, got.Body().(*Settings).Ack())
}

func TestSettingsRejectsOddPayloadLength(t *testing.T) {
	// declared length 7 is not a multiple of 6.
	buf := []byte{0, 0, 7, byte(FrameSettings), 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	_, _, err := ConsumeFrameHeader(buf, 0)
	require.Error(t, err)
	require.Equal(t, FrameSizeError, CodeOf(err))
}

func TestSettingsRejectsEnablePushOutOfRange(t *testing.T) {
	payload := []byte{0, 2, 0, 0, 0, 2}
	buf := append([]byte{0, 0, 6, byte(FrameSettings), 0, 0, 0, 0, 0}, payload...)
	_, _, err := ConsumeFrameHeader(buf, 0)
	require.Error(t, err)
	require.Equal(t, ProtocolError, CodeOf(err))
}

func TestGoAwayCapturesLastStreamIDAndCode(t *testing.T) {
	ga := AcquireFrame(FrameGoAway).(*GoAway)
	ga.SetLastStreamID(17)
	ga.SetCode(FlowControlError)
	ga.SetData([]byte("too much data"))

	frh := AcquireFrameHeader()
	frh.SetBody(ga)

	got, _ := roundTrip(t, frh)
	defer ReleaseFrameHeader(got)

	gga := got.Body().(*GoAway)
	require.Equal(t, uint32(17), gga.LastStreamID())
	require.Equal(t, FlowControlError, gga.Code())
	require.Equal(t, []byte("too much data"), gga.Data())
}

func TestWindowUpdateRejectsZeroIncrement(t *testing.T) {
	wu := AcquireFrame(FrameWindowUpdate).(*WindowUpdate)
	// build the wire bytes directly with a zero increment
	payload := []byte{0, 0, 0, 0}
	buf := append([]byte{0, 0, 4, byte(FrameWindowUpdate), 0, 0, 0, 0, 1}, payload...)
	_, _, err := ConsumeFrameHeader(buf, 0)
	require.Error(t, err)
	require.Equal(t, ProtocolError, CodeOf(err))
	_ = wu
}

func TestPingRoundTrip(t *testing.T) {
	p := AcquireFrame(FramePing).(*Ping)
	p.SetData([]byte("12345678"))

	frh := AcquireFrameHeader()
	frh.SetBody(p)

	got, _ := roundTrip(t, frh)
	defer ReleaseFrameHeader(got)

	require.Equal(t, []byte("12345678"), got.Body().(*Ping).Data())
	require.False(t, got.Body().(*Ping).Ack())
}

func TestUnknownFrameTypeIsIgnoredNotRejected(t *testing.T) {
	// type 0x99 isn't any defined frame type.
	buf := []byte{0, 0, 3, 0x99, 0, 0, 0, 0, 0, 'a', 'b', 'c'}
	frh, n, err := ConsumeFrameHeader(buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Nil(t, frh.Body())
	ReleaseFrameHeader(frh)
}

func TestConsumeFrameHeaderNeedsMoreData(t *testing.T) {
	buf := []byte{0, 0, 5, byte(FramePing), 0, 0, 0, 0, 0, 1, 2, 3}
	_, n, err := ConsumeFrameHeader(buf, 0)
	require.ErrorIs(t, err, ErrNeedMoreData)
	require.Equal(t, 0, n)
}

func TestFrameExceedsMaxLenIsRejected(t *testing.T) {
	buf := []byte{0, 0, 20, byte(FramePing), 0, 0, 0, 0, 0}
	buf = append(buf, make([]byte, 20)...)
	_, _, err := ConsumeFrameHeader(buf, 16)
	require.Error(t, err)
	require.Equal(t, FrameSizeError, CodeOf(err))
}
