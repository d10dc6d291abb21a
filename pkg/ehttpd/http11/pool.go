package http11

import "sync"

// ClientPool reuses Client instances (and therefore their vaults)
// across connections: the only allocation happens at warm-up, not on
// the request path. A Server that churns through many short-lived
// connections should draw from a ClientPool rather than calling
// NewClient per accept.
type ClientPool struct {
	pool sync.Pool
}

// NewClientPool returns a pool that creates clients with the given
// fixed vault capacity and refill policy.
func NewClientPool(vaultCapacity int, refill RefillPolicy) *ClientPool {
	return &ClientPool{
		pool: sync.Pool{
			New: func() any { return NewClient(vaultCapacity, refill) },
		},
	}
}

// Get returns a Client ready for a fresh connection (Invalid state,
// empty vault).
func (p *ClientPool) Get() *Client {
	c := p.pool.Get().(*Client)
	c.Reset(false)
	return c
}

// Put returns c to the pool after its connection has closed. Callers
// must not touch c afterwards.
func (p *ClientPool) Put(c *Client) {
	c.Reset(false)
	p.pool.Put(c)
}

// Warmup pre-populates n clients so the first n connections never pay
// an allocation on accept.
func (p *ClientPool) Warmup(n int) {
	clients := make([]*Client, n)
	for i := range clients {
		clients[i] = p.pool.Get().(*Client)
	}
	for _, c := range clients {
		p.pool.Put(c)
	}
}
