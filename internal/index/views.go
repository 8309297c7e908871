package index

import "sync"

// ViewCounter tracks per-document view counts for the process lifetime.
// Counts are best-effort and reset to zero on restart; increments are
// atomic within the process.
type ViewCounter struct {
	mu     sync.RWMutex
	counts map[string]int64
}

// NewViewCounter returns an empty counter.
func NewViewCounter() *ViewCounter {
	return &ViewCounter{counts: make(map[string]int64)}
}

// Add increments the counter for id and returns the new value.
func (c *ViewCounter) Add(id string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[id]++
	return c.counts[id]
}

// Get returns the current count for id.
func (c *ViewCounter) Get(id string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[id]
}

// IncrementViews bumps the in-memory view counter for id, returning the
// new count. Fire-and-forget from the page-render collaborator's side.
func (x *Index) IncrementViews(id string) int64 {
	return x.views.Add(id)
}

// Views exposes the index's counter component.
func (x *Index) Views() *ViewCounter { return x.views }
