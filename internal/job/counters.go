package job

import (
	"sync"
)

// Counters aggregates increments from every task of a run.
type Counters struct {
	mu     sync.Mutex
	groups map[string]map[string]int64
}

func NewCounters() *Counters {
	return &Counters{groups: make(map[string]map[string]int64)}
}

func (c *Counters) Increment(group, name string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.groups[group]; !exists {
		c.groups[group] = make(map[string]int64)
	}
	c.groups[group][name] += delta
}

// Get returns the current value of a counter.
func (c *Counters) Get(group, name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.groups[group][name]
}

// Snapshot returns a copy of every counter.
func (c *Counters) Snapshot() map[string]map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]map[string]int64, len(c.groups))
	for group, names := range c.groups {
		out[group] = make(map[string]int64, len(names))
		for name, v := range names {
			out[group][name] = v
		}
	}
	return out
}
