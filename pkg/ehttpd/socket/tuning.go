// Package socket applies connection-level tuning on top of net.Conn so
// server.NewSocket/server.Listen get TCP_NODELAY, buffer sizing, and
// keepalive without the http11 core ever touching a raw file descriptor.
// Options that differ per OS live in tuning_linux.go, tuning_darwin.go,
// and the tuning_other.go fallback.
package socket

import (
	"net"
	"syscall"
)

// Config lists the socket options a Server applies to every accepted
// connection (Apply) and to the listening socket itself (ApplyListener).
// A zero field leaves the corresponding OS default untouched.
type Config struct {
	// NoDelay turns off Nagle's algorithm. HTTP/1.1 request/response
	// traffic rarely benefits from Nagle's coalescing, so the shipped
	// configs all set this.
	NoDelay bool

	// RecvBuffer and SendBuffer set SO_RCVBUF/SO_SNDBUF in bytes; 0
	// leaves the kernel default (commonly 128KB-256KB) in place.
	RecvBuffer int
	SendBuffer int

	// QuickAck asks for an immediate ACK rather than waiting on the
	// kernel's delayed-ACK timer. Linux-only; a no-op elsewhere.
	QuickAck bool

	// DeferAccept withholds the accept wakeup until request bytes have
	// actually arrived, trimming one context switch per connection.
	// Linux-only.
	DeferAccept bool

	// FastOpen enables TCP Fast Open on the listening socket so a
	// returning client can carry data in its SYN. Linux and Darwin only.
	FastOpen bool

	// KeepAlive turns on SO_KEEPALIVE for long-lived connections.
	KeepAlive bool
}

// DefaultConfig is the tuning this package recommends for a general
// HTTP/1.1 workload: low latency without oversized buffers.
func DefaultConfig() *Config {
	return &Config{
		NoDelay:     true,
		RecvBuffer:  256 * 1024,
		SendBuffer:  256 * 1024,
		QuickAck:    true,
		DeferAccept: true,
		FastOpen:    true,
		KeepAlive:   true,
	}
}

// HighThroughputConfig widens the socket buffers and tolerates delayed
// ACKs in exchange for bulk-transfer throughput.
func HighThroughputConfig() *Config {
	return &Config{
		NoDelay:     true,
		RecvBuffer:  1024 * 1024,
		SendBuffer:  1024 * 1024,
		QuickAck:    false,
		DeferAccept: true,
		FastOpen:    true,
		KeepAlive:   true,
	}
}

// LowLatencyConfig shrinks the buffers and forces immediate ACKs and
// accept wakeups, favoring turnaround time over throughput.
func LowLatencyConfig() *Config {
	return &Config{
		NoDelay:     true,
		RecvBuffer:  128 * 1024,
		SendBuffer:  128 * 1024,
		QuickAck:    true,
		DeferAccept: false,
		FastOpen:    true,
		KeepAlive:   true,
	}
}

// Apply sets cfg on conn. A nil cfg falls back to DefaultConfig. Only
// TCP_NODELAY failing is treated as fatal; buffer sizing, keepalive, and
// platform-specific knobs are applied best-effort since a kernel or
// container may reject any one of them without the connection being
// unusable. Non-TCP connections are left untouched.
func Apply(conn net.Conn, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return err
	}

	var nodelayErr error
	ctrlErr := rawConn.Control(func(fd uintptr) {
		if cfg.NoDelay {
			if err := syscall.SetsockoptInt(int(fd), syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1); err != nil {
				nodelayErr = err
				return
			}
		}
		if cfg.RecvBuffer > 0 {
			_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_RCVBUF, cfg.RecvBuffer)
		}
		if cfg.SendBuffer > 0 {
			_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_SNDBUF, cfg.SendBuffer)
		}
		if cfg.KeepAlive {
			_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_KEEPALIVE, 1)
		}
		applyPlatformOptions(int(fd), cfg)
	})
	if ctrlErr != nil {
		return ctrlErr
	}
	return nodelayErr
}

// ApplyListener sets cfg's listener-side options (TCP_DEFER_ACCEPT,
// TCP_FASTOPEN) on the socket backing listener before the first Accept.
// A nil cfg falls back to DefaultConfig; non-TCP listeners are left
// untouched.
func ApplyListener(listener net.Listener, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tcpListener, ok := listener.(*net.TCPListener)
	if !ok {
		return nil
	}

	file, err := tcpListener.File()
	if err != nil {
		return err
	}
	defer file.Close()

	return applyListenerOptions(int(file.Fd()), cfg)
}
