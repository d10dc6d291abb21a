//go:build darwin
// +build darwin

package socket

import (
	"golang.org/x/sys/unix"
)

// Darwin's numeric option values, kept local since they aren't all
// exported under the same names by every x/sys/unix release.
const (
	// tcpFastOpen enables TCP Fast Open on macOS 10.11+.
	tcpFastOpen = 0x105

	// tcpKeepAlive is Darwin's equivalent of Linux's TCP_KEEPIDLE: idle
	// seconds before the first keepalive probe.
	tcpKeepAlive = 0x10

	// soNoSigPipe suppresses SIGPIPE on write to a closed socket; Linux
	// gets the same effect via MSG_NOSIGNAL on send instead.
	soNoSigPipe = 0x1022
)

// applyPlatformOptions sets Darwin-only socket options. Called from
// Apply in tuning.go after the cross-platform options.
func applyPlatformOptions(fd int, cfg *Config) {
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, soNoSigPipe, 1)

	if cfg.KeepAlive {
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, tcpKeepAlive, 60)
	}
}

// applyListenerOptions sets Darwin-only listener options. Called from
// ApplyListener in tuning.go.
func applyListenerOptions(fd int, cfg *Config) error {
	var lastErr error
	if cfg.FastOpen {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, tcpFastOpen, 256); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// SetQuickAck is a no-op on Darwin: there is no TCP_QUICKACK equivalent,
// so this exists only so callers can treat all platforms uniformly.
func SetQuickAck(fd int) error {
	return nil
}

// SocketInfo mirrors the subset of connection health Darwin actually
// exposes -- considerably less than Linux's struct tcp_info.
type SocketInfo struct {
	State       uint8
	RTT         uint32 // microseconds
	RTTVar      uint32 // microseconds
	SndCwnd     uint32
	SndSsthresh uint32
	RcvSpace    uint32
}

// GetTCPInfo returns what little connection health Darwin surfaces.
// macOS has no getsockopt(TCP_INFO) equivalent to Linux's; a fuller
// implementation would read TCP_CONNECTION_INFO (10.10+), but that
// struct isn't covered by x/sys/unix, so this reports an empty
// SocketInfo rather than hand-decoding it with unsafe.
func GetTCPInfo(fd int) (*SocketInfo, error) {
	return &SocketInfo{}, nil
}
