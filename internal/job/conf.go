package job

import (
	"sync"
)

// Conf is the job configuration shared by every task of a run.
type Conf struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewConf() *Conf {
	return &Conf{values: make(map[string]string)}
}

func (c *Conf) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *Conf) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}
