package server

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/X-Ryl669/eHTTPd/pkg/ehttpd/http11"
)

// fakeSocket feeds a canned request and captures whatever the loop
// emits, standing in for a real TCP connection.
type fakeSocket struct {
	in     bytes.Buffer
	out    bytes.Buffer
	closed bool
}

func (f *fakeSocket) Recv(buf []byte, min, max int) (int, error) {
	if f.in.Len() == 0 {
		return 0, io.EOF
	}
	if max > len(buf) {
		max = len(buf)
	}
	return f.in.Read(buf[:max])
}
func (f *fakeSocket) Send(buf []byte) (int, error) { return f.out.Write(buf) }
func (f *fakeSocket) Readable(time.Duration) bool  { return f.in.Len() > 0 }
func (f *fakeSocket) Valid() bool                  { return !f.closed }
func (f *fakeSocket) Close() error                 { f.closed = true; return nil }

type fakeAcceptor struct{ pending []Socket }

func (a *fakeAcceptor) Accept(time.Duration) (Socket, error) {
	if len(a.pending) == 0 {
		return nil, ErrWouldBlock
	}
	s := a.pending[0]
	a.pending = a.pending[1:]
	return s, nil
}
func (a *fakeAcceptor) Close() error { return nil }

func helloRouter() *http11.Router {
	return http11.NewRouter(&http11.Route{
		MethodMask: http11.MethodGET.Mask(),
		PathPrefix: "/hello",
		Callback: func(c *http11.Client, w http11.Writer) bool {
			return http11.Emit(w, http11.SimpleAnswer(http11.StatusOK, "text/plain", []byte("hi")), c.RequestLine.Method) == nil
		},
	})
}

func newTestServer(acceptor Acceptor) *Server {
	cfg := DefaultConfig()
	cfg.PollInterval = time.Millisecond
	s := New(cfg, helloRouter())
	s.acceptor = acceptor
	s.slots = make([]slot, 0, cfg.MaxClients)
	return s
}

func TestLoopServicesRequestAndKeepsHTTP11Alive(t *testing.T) {
	sock := &fakeSocket{}
	sock.in.WriteString("GET /hello HTTP/1.1\r\nHost: x\r\n\r\n")
	s := newTestServer(&fakeAcceptor{pending: []Socket{sock}})

	s.iterate() // accepts the connection
	s.iterate() // services it

	if !strings.HasPrefix(sock.out.String(), "HTTP/1.1 200 Ok\r\n") {
		t.Fatalf("response = %q, want a 200", sock.out.String())
	}
	if !strings.HasSuffix(sock.out.String(), "\r\nhi") {
		t.Fatalf("response = %q, want body %q", sock.out.String(), "hi")
	}
	if sock.closed || len(s.slots) != 1 {
		t.Fatalf("closed=%v slots=%d; an HTTP/1.1 request without Connection: close keeps the connection", sock.closed, len(s.slots))
	}
}

func TestLoopClosesHTTP10Connection(t *testing.T) {
	sock := &fakeSocket{}
	sock.in.WriteString("GET /hello HTTP/1.0\r\n\r\n")
	s := newTestServer(&fakeAcceptor{pending: []Socket{sock}})

	s.iterate()
	s.iterate()

	if !strings.HasPrefix(sock.out.String(), "HTTP/1.1 200 Ok\r\n") {
		t.Fatalf("response = %q, want a 200", sock.out.String())
	}
	if !sock.closed || len(s.slots) != 0 {
		t.Fatalf("closed=%v slots=%d; HTTP/1.0 without keep-alive must close", sock.closed, len(s.slots))
	}
}

func TestLoopRepliesNotFoundAndCloses(t *testing.T) {
	sock := &fakeSocket{}
	sock.in.WriteString("GET /nope HTTP/1.1\r\nHost: x\r\n\r\n")
	s := newTestServer(&fakeAcceptor{pending: []Socket{sock}})

	s.iterate()
	s.iterate()

	want := "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"
	if sock.out.String() != want {
		t.Fatalf("response = %q, want %q", sock.out.String(), want)
	}
	if !sock.closed || len(s.slots) != 0 {
		t.Fatalf("closed=%v slots=%d; every error reply is fatal to its connection", sock.closed, len(s.slots))
	}
}

func TestAcceptStopsAtMaxClients(t *testing.T) {
	acceptor := &fakeAcceptor{}
	s := newTestServer(acceptor)
	for i := 0; i < s.cfg.MaxClients+2; i++ {
		acceptor.pending = append(acceptor.pending, &fakeSocket{})
	}

	for i := 0; i < s.cfg.MaxClients+2; i++ {
		s.iterate()
	}

	if len(s.slots) != s.cfg.MaxClients {
		t.Fatalf("slots = %d, want the configured maximum %d", len(s.slots), s.cfg.MaxClients)
	}
	if len(acceptor.pending) != 2 {
		t.Fatalf("pending = %d, want 2 connections left waiting", len(acceptor.pending))
	}
}
