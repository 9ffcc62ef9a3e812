package fasthttp

import (
	"bufio"
	"bytes"
	"crypto/tls"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/acme/autocert"

	"github.com/wirehttp/wirehttp/hpack"
	"github.com/wirehttp/wirehttp/http1"
	"github.com/wirehttp/wirehttp/http2"
	"github.com/wirehttp/wirehttp/internal/wire"
)

var logger = log.New(os.Stdout, "", log.LstdFlags)

var ctxPool = sync.Pool{
	New: func() interface{} { return &fasthttp.RequestCtx{} },
}

// Server serves a fasthttp.RequestHandler over both HTTP/1.1 and HTTP/2,
// picking the wire protocol per connection from the TLS ALPN negotiation
// where one was negotiated, and otherwise by sniffing the connection's
// leading bytes for the HTTP/2 client preface (see DetectVersion) —
// this covers prior-knowledge plaintext HTTP/2 as well as any TLS
// client that completed a handshake without negotiating ALPN.
//
// Grounded on github.com/dgrr/http2's Server (server.go): one Handler
// shared across every accepted connection, each connection served on its
// own goroutine via ServeConn. This type generalizes that loop from
// "always HTTP/2" to "whichever protocol the handshake negotiated",
// delegating the actual frame/message work to http2.Connection and
// http1.Parser instead of the teacher's net.Conn-owning serverConn.
type Server struct {
	Handler fasthttp.RequestHandler

	// ReadTimeout bounds how long a connection may sit idle between
	// requests (and while a request is still being read).
	ReadTimeout time.Duration
}

// ConfigureTLS appends "h2" and "http/1.1" to cfg.NextProtos, leaving any
// certificates or ClientAuth settings already present untouched.
func ConfigureTLS(cfg *tls.Config) *tls.Config {
	cfg.NextProtos = append([]string{"h2", "http/1.1"}, cfg.NextProtos...)
	return cfg
}

// ListenAndServeTLS accepts TLS connections on addr, negotiating HTTP/2 or
// HTTP/1.1 via ALPN, terminating TLS with the certFile/keyFile leaf pair.
func (s *Server) ListenAndServeTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return err
	}
	ln, err := tls.Listen("tcp", addr, ConfigureTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
	}))
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// ListenAndServeAutocert is ListenAndServeTLS with the leaf certificate
// obtained and renewed automatically through Let's Encrypt for hostname,
// persisting account and certificate state under cacheDir.
//
// Grounded on examples/autocert/main.go in github.com/dgrr/http2: an
// autocert.Manager feeding tls.Config.GetCertificate, with the ACME
// HTTP-01 challenge answered on :80 by the manager's own http.Handler.
func (s *Server) ListenAndServeAutocert(addr, hostname, cacheDir string) error {
	m := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(hostname),
		Cache:      autocert.DirCache(cacheDir),
	}

	go func() {
		challenge := &http.Server{Addr: ":80", Handler: m.HTTPHandler(nil)}
		logger.Printf("acme challenge listener stopped: %v", challenge.ListenAndServe())
	}()

	ln, err := tls.Listen("tcp", addr, ConfigureTLS(&tls.Config{
		GetCertificate: m.GetCertificate,
	}))
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections from ln until it returns an error, serving
// each on its own goroutine.
func (s *Server) Serve(ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			return err
		}
		go func() {
			if err := s.serveConn(c); err != nil {
				logger.Printf("connection from %s: %v", c.RemoteAddr(), err)
			}
		}()
	}
}

func (s *Server) serveConn(c net.Conn) error {
	defer func() { _ = c.Close() }()

	secure := false
	negotiated := ""
	if tc, ok := c.(*tls.Conn); ok {
		if err := tc.Handshake(); err != nil {
			return err
		}
		secure = true
		negotiated = tc.ConnectionState().NegotiatedProtocol
	}

	switch negotiated {
	case "h2":
		return s.serveHTTP2(c)
	case "http/1.1":
		return s.serveHTTP1(c, secure)
	}

	// No ALPN result (a plaintext connection, or a TLS client that didn't
	// negotiate): sniff the leading bytes for the HTTP/2 client preface
	// rather than assuming HTTP/1.1 outright.
	peek := make([]byte, len(http2.ClientPreface))
	n, err := io.ReadFull(c, peek)
	pc := &prefixConn{Conn: c, prefix: peek[:n]}
	if err != nil {
		return s.serveHTTP1(pc, secure)
	}
	if DetectVersion(peek) == ProtocolHTTP2 {
		return s.serveHTTP2(pc)
	}
	return s.serveHTTP1(pc, secure)
}

// serveHTTP1 decodes and answers as many pipelined HTTP/1.x requests as
// the connection sends, in the teacher's one-goroutine-per-connection
// style (server.go's ServeConn), but driving http1.Parser/AppendResponse
// instead of fasthttp's own request reader.
func (s *Server) serveHTTP1(c net.Conn, secure bool) error {
	ctx := ctxPool.Get().(*fasthttp.RequestCtx)
	defer func() {
		ctx.Request.Reset()
		ctx.Response.Reset()
		ctxPool.Put(ctx)
	}()
	ctx.Init2(c, logger, secure)

	parser := http1.NewParser(true)
	req := &http1.Request{}
	br := bufio.NewReaderSize(c, 4096)
	raw := make([]byte, 4096)
	var pending []byte

	for {
		if s.ReadTimeout > 0 {
			_ = c.SetReadDeadline(time.Now().Add(s.ReadTimeout))
		}

		for {
			consumed, perr := parser.ParseRequest(pending, req)
			if perr == nil {
				pending = append(pending[:0], pending[consumed:]...)
				break
			}
			if perr != http1.ErrNeedMoreData {
				return perr
			}
			// The parser has taken in every byte it was handed; only the
			// bytes read next go into the following call.
			pending = pending[:0]
			n, err := br.Read(raw)
			if n > 0 {
				pending = append(pending, raw[:n]...)
			}
			if err != nil {
				return err
			}
		}

		applyRequestTo(&ctx.Request, req)
		ctx.Response.Reset()
		s.Handler(ctx)

		resp := &http1.Response{
			Version:    req.Version,
			StatusCode: ctx.Response.StatusCode(),
			Reason:     []byte(fasthttp.StatusMessage(ctx.Response.StatusCode())),
			Body:       ctx.Response.Body(),
		}
		appendResponseHeader1(&resp.Headers, &ctx.Response)

		if _, err := c.Write(http1.AppendResponse(nil, resp)); err != nil {
			return err
		}

		keepAlive := req.Version == http1.Version11 &&
			!wire.EqualsFold(bytes.TrimSpace(req.Headers.Get("Connection")), []byte("close"))

		parser.Reset()
		req.Reset()
		ctx.Request.Reset()
		if !keepAlive {
			return nil
		}
	}
}

// serveHTTP2 drives one http2.Connection off c, accumulating each
// stream's headers/body through the synchronous callbacks Process
// invokes, dispatching to Handler once a stream's request is complete
// and writing the response straight back out with the connection's
// Send* encode API.
func (s *Server) serveHTTP2(c net.Conn) error {
	type pendingStream struct {
		ctx *fasthttp.RequestCtx
	}

	var conn *http2.Connection
	streams := make(map[uint32]*pendingStream)

	finish := func(streamID uint32) {
		st, ok := streams[streamID]
		if !ok {
			return
		}
		delete(streams, streamID)

		s.Handler(st.ctx)

		fields := responseHeaderFields(&st.ctx.Response)
		body := st.ctx.Response.Body()

		if _, err := c.Write(conn.SendHeaders(streamID, fields, len(body) == 0)); err != nil {
			st.ctx.Request.Reset()
			st.ctx.Response.Reset()
			ctxPool.Put(st.ctx)
			return
		}
		if len(body) > 0 {
			_, _ = c.Write(conn.SendData(streamID, body, true))
		}

		st.ctx.Request.Reset()
		st.ctx.Response.Reset()
		ctxPool.Put(st.ctx)
	}

	conn = http2.NewConnection(http2.RoleServer, http2.Callbacks{
		OnHeaders: func(streamID uint32, headers []hpack.HeaderField, endStream bool) {
			st, ok := streams[streamID]
			if !ok {
				st = &pendingStream{ctx: ctxPool.Get().(*fasthttp.RequestCtx)}
				st.ctx.Init2(c, logger, true)
				st.ctx.Request.Reset()
				st.ctx.Response.Reset()
				streams[streamID] = st
			}
			for i := range headers {
				applyHeaderField(&st.ctx.Request, headers[i])
			}
			if endStream {
				finish(streamID)
			}
		},
		OnData: func(streamID uint32, data []byte, endStream bool) {
			if st, ok := streams[streamID]; ok {
				st.ctx.Request.AppendBody(data)
			}
			if endStream {
				finish(streamID)
			}
		},
	})

	br := bufio.NewReaderSize(c, 4096)
	raw := make([]byte, 4096)
	var pending []byte

	// §3.5 requires the server to send its SETTINGS immediately after the
	// connection preface, without waiting on the client's own SETTINGS.
	if _, err := c.Write(conn.SendSettings(http2.NewConnSettings())); err != nil {
		return err
	}

	for {
		if s.ReadTimeout > 0 {
			_ = c.SetReadDeadline(time.Now().Add(s.ReadTimeout))
		}

		n, err := br.Read(raw)
		if n > 0 {
			pending = append(pending, raw[:n]...)
			consumed, perr := conn.Process(pending)
			pending = append(pending[:0], pending[consumed:]...)
			if perr != nil {
				return perr
			}
			if out := conn.TakeOutput(); len(out) > 0 {
				if _, werr := c.Write(out); werr != nil {
					return werr
				}
			}
			if conn.State() == http2.StateClosed {
				return nil
			}
		}
		if err != nil {
			return err
		}
	}
}

func applyRequestTo(req *fasthttp.Request, src *http1.Request) {
	req.Reset()
	req.Header.SetMethodBytes(methodBytes(src))
	req.SetRequestURIBytes(src.Target)
	for _, f := range src.Headers {
		req.Header.AddBytesKV(f.Name, f.Value)
	}
	if len(src.Body) > 0 {
		req.SetBody(src.Body)
	}
}

func methodBytes(req *http1.Request) []byte {
	if len(req.MethodRaw) > 0 {
		return req.MethodRaw
	}
	return []byte(req.Method.String())
}

func appendResponseHeader1(dst *http1.Header, res *fasthttp.Response) {
	dst.AddBytes(strContentLength, []byte(strconv.Itoa(len(res.Body()))))
	res.Header.VisitAll(func(k, v []byte) {
		dst.AddBytes(k, v)
	})
}
