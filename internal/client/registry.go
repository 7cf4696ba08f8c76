package client

import "sync"

type tableKey struct {
	tableID  string
	playerID string
}

// Registry enforces the one-socket-per-(table, participant) invariant with
// an explicit ownership record instead of relying on caller discipline. A
// second New for a live key fails with ErrAlreadyConnected until the first
// client is closed.
type Registry struct {
	mu   sync.Mutex
	live map[tableKey]*Client
}

func NewRegistry() *Registry {
	return &Registry{live: map[tableKey]*Client{}}
}

func (r *Registry) acquire(k tableKey, c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[k]; ok {
		return ErrAlreadyConnected
	}
	r.live[k] = c
	return nil
}

func (r *Registry) release(k tableKey, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live[k] == c {
		delete(r.live, k)
	}
}

// Lookup returns the live client for a table/participant pair, if any.
func (r *Registry) Lookup(tableID, playerID string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.live[tableKey{tableID: tableID, playerID: playerID}]
	return c, ok
}
