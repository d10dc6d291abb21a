// Package server implements the socket pool and acceptor/receive/parse/
// dispatch loop that drives the http11 core. None of this package is
// part of the wire-level contract the core specifies -- it is one
// concrete, reasonable implementation of the byte-level socket contract
// the core consumes, built on net.Conn plus the socket package's
// platform tuning knobs.
package server

import (
	"bufio"
	"errors"
	"io"
	"net"
	"time"

	"github.com/X-Ryl669/eHTTPd/pkg/ehttpd/socket"
)

// ErrWouldBlock is returned by Acceptor.Accept when no connection arrived
// within its timeout; it is not a listener error.
var ErrWouldBlock = errors.New("server: would block")

// Socket is the minimal byte-level contract a client connection
// exposes to the core's server loop.
type Socket interface {
	// Recv reads at least min and at most max bytes into buf, blocking
	// until either bound is satisfied or an error occurs.
	Recv(buf []byte, min, max int) (int, error)
	// Send writes buf in full or returns a short-write error.
	Send(buf []byte) (int, error)
	// Readable reports whether a read would return data without
	// blocking for longer than the given poll interval -- the loop's
	// substitute for select()'s per-socket readiness bit.
	Readable(poll time.Duration) bool
	Valid() bool
	Close() error
}

// netConnSocket adapts a net.Conn (with a buffered reader so Readable
// can Peek without losing bytes) to Socket.
type netConnSocket struct {
	conn   net.Conn
	br     *bufio.Reader
	closed bool
}

// NewSocket wraps conn, applying cfg's platform tuning (TCP_NODELAY,
// buffer sizes, keepalive) the same way the socket package documents.
func NewSocket(conn net.Conn, cfg *socket.Config) (Socket, error) {
	if cfg != nil {
		if err := socket.Apply(conn, cfg); err != nil {
			// Tuning is best-effort: a platform that rejects an option
			// (e.g. TCP_QUICKACK outside Linux) should not fail accept.
			_ = err
		}
	}
	return &netConnSocket{conn: conn, br: bufio.NewReaderSize(conn, 4096)}, nil
}

func (s *netConnSocket) Recv(buf []byte, min, max int) (int, error) {
	if max > len(buf) {
		max = len(buf)
	}
	n, err := io.ReadAtLeast(s.br, buf[:max], min)
	if err != nil && n > 0 {
		return n, nil
	}
	return n, err
}

func (s *netConnSocket) Send(buf []byte) (int, error) {
	n, err := s.conn.Write(buf)
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}
	return n, err
}

// Readable peeks one byte with a short deadline to detect pending data
// without consuming it, giving the single-threaded loop a select()-like
// readiness check over plain net.Conn.
func (s *netConnSocket) Readable(poll time.Duration) bool {
	if s.br.Buffered() > 0 {
		return true
	}
	_ = s.conn.SetReadDeadline(time.Now().Add(poll))
	_, err := s.br.Peek(1)
	_ = s.conn.SetReadDeadline(time.Time{})
	return err == nil
}

func (s *netConnSocket) Valid() bool { return !s.closed }

// NetConn surfaces the wrapped net.Conn for the sendfile fast path in
// EmitFile; reads must still go through Recv so the buffered reader
// never loses bytes.
func (s *netConnSocket) NetConn() net.Conn { return s.conn }

func (s *netConnSocket) Close() error {
	s.closed = true
	return s.conn.Close()
}

// Acceptor is the listen/accept half of the socket contract. Accept is
// bounded by timeout so the single-threaded loop can interleave it with
// servicing existing clients; ErrWouldBlock means no connection was
// pending within the window, not a listener failure.
type Acceptor interface {
	Accept(timeout time.Duration) (Socket, error)
	Close() error
}

type netListener struct {
	ln  net.Listener
	cfg *socket.Config
}

// Listen opens a TCP listener on addr and applies cfg's listener-side
// tuning (TCP_DEFER_ACCEPT/TCP_FASTOPEN where supported).
func Listen(addr string, cfg *socket.Config) (Acceptor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		_ = socket.ApplyListener(ln, cfg)
	}
	return &netListener{ln: ln, cfg: cfg}, nil
}

func (l *netListener) Accept(timeout time.Duration) (Socket, error) {
	if d, ok := l.ln.(interface{ SetDeadline(time.Time) error }); ok {
		_ = d.SetDeadline(time.Now().Add(timeout))
	}
	conn, err := l.ln.Accept()
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, ErrWouldBlock
		}
		return nil, err
	}
	return NewSocket(conn, l.cfg)
}

func (l *netListener) Close() error { return l.ln.Close() }
