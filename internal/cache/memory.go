package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	val string
	exp time.Time
}

// Memory is a process-local stand-in for redis with the same semantics as
// the redis stores. It serves store.driver=memory and tests.
type Memory struct {
	mu  sync.Mutex
	m   map[string]entry
	ttl time.Duration
	now func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{m: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (c *Memory) get(k string) (string, bool) {
	e, ok := c.m[k]
	if !ok {
		return "", false
	}
	if !e.exp.IsZero() && !c.now().Before(e.exp) {
		delete(c.m, k)
		return "", false
	}
	return e.val, true
}

func (c *Memory) set(k, v string, ttl time.Duration) {
	e := entry{val: v}
	if ttl > 0 {
		e.exp = c.now().Add(ttl)
	}
	c.m[k] = e
}

func (c *Memory) TryLock(_ context.Context, scope, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.get(lockKey(scope, key)); ok {
		return false, nil
	}
	c.set(lockKey(scope, key), "1", c.ttl)
	return true, nil
}

func (c *Memory) Unlock(_ context.Context, scope, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, lockKey(scope, key))
	return nil
}

func (c *Memory) Remember(_ context.Context, scope, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(mapKey(scope, key), value, c.ttl)
	return nil
}

func (c *Memory) Recall(_ context.Context, scope, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.get(mapKey(scope, key))
	return v, ok, nil
}

func (c *Memory) Put(_ context.Context, token, userID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(resetKey(token), userID, ttl)
	return nil
}

func (c *Memory) Take(_ context.Context, token string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.get(resetKey(token))
	delete(c.m, resetKey(token))
	return v, ok, nil
}
