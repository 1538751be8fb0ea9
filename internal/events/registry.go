package events

import "sync"

// Registry holds the open channels of this process.
type Registry struct {
	mu       sync.RWMutex
	channels map[*Channel]struct{}
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[*Channel]struct{}),
	}
}

// Register adds a channel
func (r *Registry) Register(c *Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.channels[c] = struct{}{}
}

// Unregister removes a channel. Removing an unknown channel is a no-op.
func (r *Registry) Unregister(c *Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.channels, c)
}

// Snapshot returns the channels registered at call time
func (r *Registry) Snapshot() []*Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Channel, 0, len(r.channels))
	for c := range r.channels {
		out = append(out, c)
	}
	return out
}

// Len returns the number of open channels
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.channels)
}

// CloseAll closes and forgets every channel. Used on shutdown.
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	channels := r.channels
	r.channels = make(map[*Channel]struct{})
	r.mu.Unlock()

	for c := range channels {
		c.Close()
	}
	return len(channels)
}
