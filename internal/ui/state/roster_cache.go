package state

import (
	"sync"
)

// RosterCache holds the board view state behind a lock so network callbacks
// and renders never observe a half-applied edit.
type RosterCache struct {
	mu    sync.RWMutex
	state ViewState
}

// NewRosterCache constructs a cache in the NotLoaded phase.
func NewRosterCache() *RosterCache {
	return &RosterCache{}
}

// Snapshot returns a copy of the current state.
//
// Callers can safely modify the returned value without affecting the cache.
func (c *RosterCache) Snapshot() ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// Replace swaps in a whole new state, as a full load does.
func (c *RosterCache) Replace(next ViewState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	banner := c.state.Banner
	c.state = next.Clone()
	c.state.Banner = banner
}

// Update applies fn to the live state under the write lock and returns a
// snapshot of the result.
func (c *RosterCache) Update(fn func(*ViewState)) ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
	return c.state.Clone()
}
