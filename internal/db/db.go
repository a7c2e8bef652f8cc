package db

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/oxidb"
)

const (
	dialTimeout       = 5 * time.Second
	keepaliveInterval = 10 * time.Second
)

// Pool is a round-robin connection pool for OxiDB with auto-reconnect.
type Pool struct {
	host      string
	port      int
	clients   []*oxidb.Client
	mu        sync.RWMutex
	idx       uint64
	stop      chan struct{}
	closeOnce sync.Once
}

// NewPool creates a pool of n OxiDB connections.
func NewPool(host string, port, size int) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		host:    host,
		port:    port,
		clients: make([]*oxidb.Client, size),
		stop:    make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		c, err := oxidb.Connect(host, port, dialTimeout)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("pool: connect client %d: %w", i, err)
		}
		p.clients[i] = c
	}
	// Keepalive pings prevent the server's idle timeout from dropping us.
	go p.keepalive()
	return p, nil
}

// Get returns the next client in round-robin order, redialing it first if
// an earlier request broke its connection.
func (p *Pool) Get() *oxidb.Client {
	n := atomic.AddUint64(&p.idx, 1)
	i := int(n % uint64(len(p.clients)))
	return p.healthy(i)
}

func (p *Pool) client(i int) *oxidb.Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clients[i]
}

// Size returns the number of connections in the pool.
func (p *Pool) Size() int {
	return len(p.clients)
}

// Ping checks every connection once.
func (p *Pool) Ping(ctx context.Context) error {
	for i := range p.clients {
		if _, err := p.healthy(i).Ping(ctx); err != nil {
			return fmt.Errorf("pool: client %d: %w", i, err)
		}
	}
	return nil
}

// reconnect replaces stale at index i. If another caller already replaced
// it, the fresh connection is dropped instead.
func (p *Pool) reconnect(i int, stale *oxidb.Client) {
	c, err := oxidb.Connect(p.host, p.port, dialTimeout)
	if err != nil {
		log.Printf("Warning: pool: reconnect client %d failed: %v", i, err)
		return
	}
	p.mu.Lock()
	if p.clients[i] != stale {
		p.mu.Unlock()
		c.Close()
		return
	}
	p.clients[i] = c
	p.mu.Unlock()
	if stale != nil {
		stale.Close()
	}
}

// healthy returns client i, redialing it first when it is broken.
func (p *Pool) healthy(i int) *oxidb.Client {
	c := p.client(i)
	if c.Broken() {
		p.reconnect(i, c)
		c = p.client(i)
	}
	return c
}

func (p *Pool) keepalive() {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			for i := range p.clients {
				c := p.healthy(i)
				ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
				_, err := c.Ping(ctx)
				cancel()
				if err != nil {
					log.Printf("Warning: pool: client %d ping failed, reconnecting: %v", i, err)
					p.reconnect(i, c)
				}
			}
		}
	}
}

// Close closes all connections. Safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.stop)
		p.mu.Lock()
		defer p.mu.Unlock()
		for _, c := range p.clients {
			if c != nil {
				c.Close()
			}
		}
	})
}
