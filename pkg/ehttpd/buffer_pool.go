// Package ehttpd collects the fixed-capacity scratch-buffer pool that
// backs the http11 emitter's streamed body paths: copying a Stream's
// bytes onto the wire needs a scratch buffer the same way the vault
// needs its backing array, and neither should come from a fresh make()
// per request. This is the one allocating resource in the answer path
// that is not itself the per-client vault, so it gets the same
// fixed-capacity-at-startup treatment as everything else in the core.
package ehttpd

import (
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// ScratchSize is the size class every pooled scratch buffer is grown
// to. It is independent of any one client's vault capacity -- the
// emitter uses it only to copy Stream bytes onto the socket, not to
// hold request state.
const ScratchSize = 8 * 1024

// ScratchPool is a fixed-capacity free list of byte buffers, sized to
// the server's configured client count rather than left to grow
// without bound the way a bare sync.Pool would: a server with
// MaxClients connections never has more than MaxClients emissions in
// flight at once, so a pool of that size never blocks on Get and never
// needs to allocate once NewScratchPool has pre-warmed it.
type ScratchPool struct {
	free chan *bytebufferpool.ByteBuffer

	gets atomic.Uint64
	puts atomic.Uint64
	miss atomic.Uint64
}

// NewScratchPool builds a pool sized to capacity (typically the
// server's MaxClients) and pre-warms it so the first capacity Gets
// never allocate.
func NewScratchPool(capacity int) *ScratchPool {
	if capacity < 1 {
		capacity = 1
	}
	p := &ScratchPool{free: make(chan *bytebufferpool.ByteBuffer, capacity)}
	for i := 0; i < capacity; i++ {
		b := bytebufferpool.Get()
		b.B = growTo(b.B, ScratchSize)
		p.free <- b
	}
	return p
}

// Get returns a scratch buffer of at least ScratchSize bytes. If the
// pool is momentarily exhausted (more concurrent emissions than the
// pool's capacity, which should not happen when capacity tracks
// MaxClients) it falls back to bytebufferpool's own pool rather than
// blocking the single-threaded server loop.
func (p *ScratchPool) Get() []byte {
	p.gets.Add(1)
	select {
	case b := <-p.free:
		return b.B[:ScratchSize]
	default:
		p.miss.Add(1)
		b := bytebufferpool.Get()
		return growTo(b.B, ScratchSize)[:ScratchSize]
	}
}

// Put returns buf to the pool. Callers must not use buf afterwards.
func (p *ScratchPool) Put(buf []byte) {
	if cap(buf) < ScratchSize {
		return
	}
	p.puts.Add(1)
	b := &bytebufferpool.ByteBuffer{B: buf[:cap(buf)]}
	select {
	case p.free <- b:
	default:
		bytebufferpool.Put(b)
	}
}

// Stats reports get/put/miss counters for the Prometheus wrapper (see
// buffer_pool_prometheus.go) and for tests.
func (p *ScratchPool) Stats() (gets, puts, misses uint64) {
	return p.gets.Load(), p.puts.Load(), p.miss.Load()
}

func growTo(b []byte, n int) []byte {
	if cap(b) >= n {
		return b[:n]
	}
	return make([]byte, n)
}
