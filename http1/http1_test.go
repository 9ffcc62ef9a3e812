package http1

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleGET(t *testing.T) {
	raw := "GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n"
	p := NewParser(true)
	req := &Request{}

	n, err := p.ParseRequest([]byte(raw), req)
	require.NoError(t, err)
	require.Equal(t, len(raw), n)
	require.True(t, p.IsComplete())

	require.Equal(t, MethodGET, req.Method)
	require.Equal(t, "/index.html", string(req.Target))
	require.Equal(t, Version11, req.Version)
	require.Equal(t, "example.com", string(req.Headers.Get("Host")))
	require.Equal(t, "example.com", string(req.Headers.Get("host"))) // case-insensitive
	require.Empty(t, req.Body)
}

func TestParseRequestWithContentLengthBody(t *testing.T) {
	raw := "POST /submit HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello"
	p := NewParser(true)
	req := &Request{}

	n, err := p.ParseRequest([]byte(raw), req)
	require.NoError(t, err)
	require.Equal(t, len(raw), n)
	require.Equal(t, "hello", string(req.Body))
}

func TestParseChunkedBody(t *testing.T) {
	raw := "POST /submit HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	p := NewParser(true)
	req := &Request{}

	n, err := p.ParseRequest([]byte(raw), req)
	require.NoError(t, err)
	require.Equal(t, len(raw), n)
	require.Equal(t, "hello world", string(req.Body))
}

func TestParseSplitAcrossCalls(t *testing.T) {
	raw := "GET /a HTTP/1.1\r\nHost: example.com\r\nX-Foo: bar\r\n\r\n"
	p := NewParser(true)
	req := &Request{}

	var err error
	var n int
	for i := 0; i < len(raw); i++ {
		n, err = p.ParseRequest([]byte(raw[i:i+1]), req)
		if err == nil {
			break
		}
		require.ErrorIs(t, err, ErrNeedMoreData)
	}
	require.NoError(t, err)
	require.Equal(t, 1, n) // the single final byte that completed the message
	require.Equal(t, "example.com", string(req.Headers.Get("Host")))
	require.Equal(t, "bar", string(req.Headers.Get("X-Foo")))
}

func TestChunkedWinsOverContentLength(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 999\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"2\r\nhi\r\n0\r\n\r\n"
	p := NewParser(true)
	req := &Request{}

	_, err := p.ParseRequest([]byte(raw), req)
	require.NoError(t, err)
	require.Equal(t, "hi", string(req.Body))
}

func TestConflictingContentLengthRejected(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nContent-Length: 5\r\nContent-Length: 6\r\n\r\nhello"
	p := NewParser(true)
	req := &Request{}

	_, err := p.ParseRequest([]byte(raw), req)
	require.ErrorIs(t, err, ErrInvalidBody)

	// Sticky: a further call must keep failing without re-parsing.
	_, err = p.ParseRequest([]byte("more"), req)
	require.ErrorIs(t, err, ErrInvalidBody)
}

func TestBareLFRejected(t *testing.T) {
	raw := "GET / HTTP/1.1\nHost: x\r\n\r\n"
	p := NewParser(true)
	req := &Request{}

	_, err := p.ParseRequest([]byte(raw), req)
	require.Error(t, err)
}

func TestObsFoldRejected(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nX-Foo: bar\r\n baz\r\n\r\n"
	p := NewParser(true)
	req := &Request{}

	_, err := p.ParseRequest([]byte(raw), req)
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestParseResponseNoLength(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nConnection: close\r\n\r\nhello world"
	p := NewParser(false)
	resp := &Response{}

	_, err := p.ParseResponse([]byte(raw), resp)
	require.ErrorIs(t, err, ErrNeedMoreData)
	require.Equal(t, "hello world", string(resp.Body))

	require.NoError(t, p.CloseBody())
	require.True(t, p.IsComplete())
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "OK", string(resp.Reason))
}

func TestAppendRequestRoundTrip(t *testing.T) {
	req := &Request{
		Method:  MethodGET,
		Target:  []byte("/a"),
		Version: Version11,
	}
	req.Headers.Add("Host", "example.com")
	req.Body = nil

	buf := AppendRequest(nil, req)

	p := NewParser(true)
	got := &Request{}
	n, err := p.ParseRequest(buf, got)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, "/a", string(got.Target))
	require.Equal(t, "example.com", string(got.Headers.Get("Host")))
}
