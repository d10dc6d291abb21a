package server

import (
	"time"

	"github.com/X-Ryl669/eHTTPd/pkg/ehttpd"
	"github.com/X-Ryl669/eHTTPd/pkg/ehttpd/http11"
	"github.com/X-Ryl669/eHTTPd/pkg/ehttpd/socket"
)

// Logger is a context-carried logging seam, replacing a global SLog-style
// macro with a value passed in at construction. A nil Logger falls back
// to a no-op default.
type Logger interface {
	Printf(format string, args ...any)
}

// nopLogger discards everything; this is the Server's zero-value logger.
type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Config configures a Server. All fields have the defaults described in
// the configuration-knobs section: vault capacity 1024 (power of two),
// max client count 4, no TLS, paranoid-mode zeroing off.
type Config struct {
	Addr          string
	VaultCapacity int
	MaxClients    int
	RefillPolicy  http11.RefillPolicy
	ParanoidZero  bool
	PollInterval  time.Duration
	SelectTimeout time.Duration
	SocketTuning  *socket.Config
	Logger        Logger
}

// DefaultConfig returns the configuration knobs' documented defaults.
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		VaultCapacity: 1024,
		MaxClients:    4,
		RefillPolicy:  http11.RefillUnsupported,
		PollInterval:  2 * time.Millisecond,
		SelectTimeout: 100 * time.Millisecond,
		SocketTuning:  socket.DefaultConfig(),
	}
}

type slot struct {
	sock   Socket
	client *http11.Client
}

// Server is the acceptor + per-client receive/parse/dispatch loop: one
// goroutine runs Run and drives every connection cooperatively, exactly
// the single-threaded model the resource-model section requires. No
// other goroutine touches a client's vault or state while Run owns it.
type Server struct {
	cfg      Config
	router   *http11.Router
	acceptor Acceptor
	slots    []slot
	log      Logger

	clients *http11.ClientPool
	scratch http11.ScratchProvider

	lastMetrics time.Time
}

// New builds a Server bound to router; it does not start listening until
// Run is called. The client pool and scratch-buffer pool are both sized
// to cfg.MaxClients and warmed up here, so accepting connections and
// emitting streamed answers never allocates once Run starts.
func New(cfg Config, router *http11.Router) *Server {
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = 4
	}

	clients := http11.NewClientPool(cfg.VaultCapacity, cfg.RefillPolicy)
	clients.Warmup(cfg.MaxClients)

	var scratch http11.ScratchProvider
	if cfg.ParanoidZero {
		scratch = ehttpd.NewSecureScratchPool(cfg.MaxClients)
	} else {
		scratch = ehttpd.NewScratchPool(cfg.MaxClients)
	}

	return &Server{cfg: cfg, router: router, log: cfg.Logger, clients: clients, scratch: scratch}
}

// Run listens on cfg.Addr and runs the loop until stop is closed or a
// listen-socket error occurs. Per-client failures never stop the loop --
// only unrecoverable accept/listen errors do.
func (s *Server) Run(stop <-chan struct{}) error {
	acceptor, err := Listen(s.cfg.Addr, s.cfg.SocketTuning)
	if err != nil {
		return err
	}
	s.acceptor = acceptor
	defer acceptor.Close()

	s.slots = make([]slot, 0, s.cfg.MaxClients)

	for {
		select {
		case <-stop:
			return nil
		default:
		}
		s.iterate()
	}
}

// iterate is one pass of the loop: drive every client socket that is
// currently readable, then check for a new connection. This mirrors the
// source's Server<Router,MaxClientCount>::loop(): per-client recv/parse/
// dispatch first, listening socket last.
func (s *Server) iterate() {
	for i := 0; i < len(s.slots); i++ {
		c := &s.slots[i]
		if !c.sock.Readable(s.cfg.PollInterval) {
			continue
		}
		s.serviceClient(c)
		if c.client.Status != http11.ReqDone {
			continue
		}
		if c.client.CloseAfter() {
			c.sock.Close()
			s.removeSlot(i)
			i--
		} else {
			// Keep-alive: rewind the client for the connection's next
			// request without returning it to the pool.
			c.client.Reset(s.cfg.ParanoidZero)
		}
	}
	s.tryAccept()

	if now := time.Now(); now.Sub(s.lastMetrics) >= time.Second {
		s.observeMetrics()
		s.lastMetrics = now
	}
}

// serviceClient reads whatever is available into the client's vault,
// advances its parser, and dispatches + emits once the request is fully
// parsed.
func (s *Server) serviceClient(c *slot) {
	free := c.client.Vault.TailFree()
	if free == 0 {
		s.fail(c, http11.StatusEntityTooLarge)
		return
	}
	n, err := c.sock.Recv(c.client.Vault.WriteSlot(), 1, free)
	if n > 0 {
		c.client.Vault.Stored(n)
	}
	if err != nil {
		// Socket read error: close without a response.
		c.client.MarkDone(false)
		return
	}

	status := c.client.Parse(s.router)
	if status == http11.HeadersDone {
		s.dispatchAndEmit(c)
	} else if c.client.ReplyCode != 0 {
		s.sendReply(c, c.client.ReplyCode)
	}
}

func (s *Server) dispatchAndEmit(c *slot) {
	sock := c.sock
	c.client.BodyRefill = func(buf []byte) (int, error) { return sock.Recv(buf, 1, len(buf)) }
	ok := s.router.Dispatch(c.client, socketWriter{c.sock})
	if !ok && c.client.ReplyCode == 0 {
		s.sendReply(c, http11.StatusInternalServerError)
		return
	}
	c.client.MarkDone(c.client.WantsKeepAlive())
}

// socketWriter adapts Socket's Send method to http11.Writer (plain
// io.Writer shape) so the emitter stays socket-contract-agnostic.
type socketWriter struct{ sock Socket }

func (w socketWriter) Write(p []byte) (int, error) { return w.sock.Send(p) }

func (s *Server) sendReply(c *slot, code http11.StatusCode) {
	if err := http11.EmitWithScratch(socketWriter{c.sock}, http11.CodeAnswer(code), c.client.RequestLine.Method, s.scratch); err != nil {
		s.log.Printf("server: emit failed: %v", err)
	}
	// Every error reply in the error table is fatal to its connection.
	c.client.MarkDone(false)
}

func (s *Server) fail(c *slot, code http11.StatusCode) {
	s.sendReply(c, code)
}

func (s *Server) tryAccept() {
	if len(s.slots) >= s.cfg.MaxClients {
		return
	}
	// With no clients to service the loop has nothing else to do, so the
	// accept wait can stretch to the full select window; with live
	// clients it stays at the short poll interval to keep them serviced.
	timeout := s.cfg.PollInterval
	if len(s.slots) == 0 {
		timeout = s.cfg.SelectTimeout
	}
	sock, err := s.acceptor.Accept(timeout)
	if err != nil {
		if err != ErrWouldBlock {
			s.log.Printf("server: accept: %v", err)
		}
		return
	}
	client := s.clients.Get()
	client.Scratch = s.scratch
	s.slots = append(s.slots, slot{sock: sock, client: client})
}

// removeSlot drops slot i and returns its client to the pool; callers
// must have already closed the socket.
func (s *Server) removeSlot(i int) {
	s.clients.Put(s.slots[i].client)
	s.slots = append(s.slots[:i], s.slots[i+1:]...)
}
