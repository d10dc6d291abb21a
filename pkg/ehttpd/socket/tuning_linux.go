//go:build linux
// +build linux

package socket

import (
	"golang.org/x/sys/unix"
)

// Numeric option values kept local: not every Go release's x/sys/unix
// exports all of these under a name.
const (
	tcpQuickAck    = 12 // TCP_QUICKACK, cleared by the kernel after each ACK
	tcpDeferAccept = 9  // TCP_DEFER_ACCEPT, value is a timeout in seconds
	tcpFastOpen    = 23 // TCP_FASTOPEN, value is the pending-TFO queue length
	tcpUserTimeout = 18 // TCP_USER_TIMEOUT, milliseconds
	tcpKeepIdle    = 4  // TCP_KEEPIDLE, seconds before the first probe
	tcpKeepIntvl   = 5  // TCP_KEEPINTVL, seconds between probes
	tcpKeepCnt     = 6  // TCP_KEEPCNT, probes before the connection is dead
)

// applyPlatformOptions sets the Linux-only per-connection options.
// Called from Apply in tuning.go after the cross-platform ones; every
// option here is best-effort.
func applyPlatformOptions(fd int, cfg *Config) {
	if cfg.QuickAck {
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, tcpQuickAck, 1)
	}

	// Unacknowledged data times the connection out after 10s.
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, tcpUserTimeout, 10000)

	if cfg.KeepAlive {
		// First probe after 60s idle, then every 10s, dead after 3 misses.
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, tcpKeepIdle, 60)
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, tcpKeepIntvl, 10)
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, tcpKeepCnt, 3)
	}
}

// applyListenerOptions sets the Linux-only listener options. Both are
// tolerated failing (a kernel may have TFO disabled); the first failure
// is reported so ApplyListener can surface it.
func applyListenerOptions(fd int, cfg *Config) error {
	var firstErr error
	if cfg.DeferAccept {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, tcpDeferAccept, 5); err != nil {
			firstErr = err
		}
	}
	if cfg.FastOpen {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, tcpFastOpen, 256); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SetQuickAck re-arms TCP_QUICKACK on fd. The kernel clears the option
// after each ACK, so a caller that wants it persistently must call this
// again after every read, typically from the per-client service loop.
func SetQuickAck(fd int) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, tcpQuickAck, 1)
}

// SocketInfo mirrors the fields of the kernel's struct tcp_info that
// connection-health diagnostics care about.
type SocketInfo struct {
	State         uint8
	CAState       uint8
	Retransmits   uint8
	Probes        uint8
	Backoff       uint8
	Options       uint8
	DeliveryRate  uint64
	BusyTime      uint64
	RwndLimited   uint64
	SndbufLimited uint64
	RTO           uint32
	ATO           uint32
	SndMss        uint32
	RcvMss        uint32
	Unacked       uint32
	Sacked        uint32
	Lost          uint32
	Retrans       uint32
	Fackets       uint32
	RTT           uint32 // microseconds
	RTTVar        uint32 // microseconds
	SndSsthresh   uint32
	SndCwnd       uint32
	Advmss        uint32
	Reordering    uint32
	RcvRTT        uint32
	RcvSpace      uint32
	TotalRetrans  uint32
}

// GetTCPInfo retrieves detailed connection state via
// getsockopt(TCP_INFO), using x/sys/unix instead of the unsafe pointer
// arithmetic the deprecated syscall package would need for the same
// call.
func GetTCPInfo(fd int) (*SocketInfo, error) {
	info, err := unix.GetsockoptTCPInfo(fd, unix.IPPROTO_TCP, unix.TCP_INFO)
	if err != nil {
		return nil, err
	}
	return &SocketInfo{
		State:         info.State,
		CAState:       info.Ca_state,
		Retransmits:   info.Retransmits,
		Probes:        info.Probes,
		Backoff:       info.Backoff,
		Options:       info.Options,
		DeliveryRate:  info.Delivery_rate,
		BusyTime:      info.Busy_time,
		RwndLimited:   info.Rwnd_limited,
		SndbufLimited: info.Sndbuf_limited,
		RTO:           info.Rto,
		ATO:           info.Ato,
		SndMss:        info.Snd_mss,
		RcvMss:        info.Rcv_mss,
		Unacked:       info.Unacked,
		Sacked:        info.Sacked,
		Lost:          info.Lost,
		Retrans:       info.Retrans,
		Fackets:       info.Fackets,
		RTT:           info.Rtt,
		RTTVar:        info.Rttvar,
		SndSsthresh:   info.Snd_ssthresh,
		SndCwnd:       info.Snd_cwnd,
		Advmss:        info.Advmss,
		Reordering:    info.Reordering,
		RcvRTT:        info.Rcv_rtt,
		RcvSpace:      info.Rcv_space,
		TotalRetrans:  info.Total_retrans,
	}, nil
}
