package client

import (
	"context"
	"sync/atomic"
)

// Pool hands out clients exclusively, one per concurrent worker. Every
// client owns its transport; the call counter is shared.
type Pool struct {
	clients chan *Client
	calls   *atomic.Int64
	size    int
}

// NewPool creates size clients from opts. size is clamped to at least 1.
func NewPool(size int, opts Options) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		clients: make(chan *Client, size),
		calls:   new(atomic.Int64),
		size:    size,
	}
	for i := 0; i < size; i++ {
		p.clients <- newClient(opts, p.calls)
	}
	return p
}

// Acquire blocks until a client is free or ctx is done
func (p *Pool) Acquire(ctx context.Context) (*Client, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case c := <-p.clients:
		return c, nil
	}
}

// Release returns a client obtained from Acquire
func (p *Pool) Release(c *Client) {
	p.clients <- c
}

// Calls returns the total HTTP requests issued by all pooled clients
func (p *Pool) Calls() int64 {
	return p.calls.Load()
}

// Size returns the number of clients
func (p *Pool) Size() int {
	return p.size
}
