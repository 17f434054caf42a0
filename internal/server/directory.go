package server

import (
	"sync"

	"github.com/google/uuid"
)

// Directory maps session ids to the peers that write to them.
type Directory struct {
	mu     sync.RWMutex
	peers  map[uuid.UUID]*Peer
	closed bool
}

func NewDirectory() *Directory {
	return &Directory{peers: make(map[uuid.UUID]*Peer)}
}

// Add registers p. It fails with ErrServerClosed once Close has been called.
func (d *Directory) Add(p *Peer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrServerClosed
	}
	d.peers[p.ID()] = p
	return nil
}

// Close refuses further registrations and returns the peers registered so far.
func (d *Directory) Close() []*Peer {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	out := make([]*Peer, 0, len(d.peers))
	for _, p := range d.peers {
		out = append(out, p)
	}
	return out
}

func (d *Directory) Remove(id uuid.UUID) (*Peer, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.peers[id]
	delete(d.peers, id)
	return p, ok
}

func (d *Directory) Get(id uuid.UUID) (*Peer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.peers[id]
	return p, ok
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.peers)
}

// Broadcast enqueues frame on every peer except the one named by except and
// returns how many peers accepted it. It never blocks on a slow peer.
func (d *Directory) Broadcast(frame []byte, except uuid.UUID) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	delivered := 0
	for id, p := range d.peers {
		if id == except {
			continue
		}
		if p.Enqueue(frame) == nil {
			delivered++
		}
	}
	return delivered
}
