package ehttpd

// SecureScratchPool wraps a ScratchPool with the paranoid-mode zeroing
// the connection state machine's Reset documents (see §4.7's
// "zeroing is optional, enabled by a paranoid-mode flag"): a server
// built with ParanoidZero also zeroes every scratch buffer it hands
// back, not just the vault, since Authorization and Cookie values can
// pass through it on their way to the wire (e.g. a route that echoes a
// header value via a Stream).
type SecureScratchPool struct {
	*ScratchPool
}

// NewSecureScratchPool builds a paranoid-mode scratch pool of the given
// capacity.
func NewSecureScratchPool(capacity int) *SecureScratchPool {
	return &SecureScratchPool{ScratchPool: NewScratchPool(capacity)}
}

// Put zeroes buf before returning it to the underlying pool.
func (p *SecureScratchPool) Put(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	p.ScratchPool.Put(buf)
}
