package domain

import (
	"strings"
	"sync"
)

// CheckCache holds the last completeness check per application for one
// caller. It is never consulted implicitly; callers record results and
// invalidate entries when responses change.
type CheckCache struct {
	mu      sync.RWMutex
	entries map[string]CheckResult
}

// NewCheckCache returns an empty cache.
func NewCheckCache() *CheckCache {
	return &CheckCache{entries: map[string]CheckResult{}}
}

// Record stores result unless a newer check for the same application is
// already cached. It reports whether result was stored.
func (c *CheckCache) Record(result CheckResult) bool {
	if c == nil {
		return false
	}
	applicationID := strings.TrimSpace(result.ApplicationID)
	if applicationID == "" {
		return false
	}
	result.MissingFields = append([]string(nil), result.MissingFields...)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string]CheckResult{}
	}
	if existing, ok := c.entries[applicationID]; ok && existing.CheckedAt.After(result.CheckedAt) {
		return false
	}
	c.entries[applicationID] = result
	return true
}

// Get returns the cached check for applicationID.
func (c *CheckCache) Get(applicationID string) (CheckResult, bool) {
	if c == nil {
		return CheckResult{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[strings.TrimSpace(applicationID)]
	if ok {
		result.MissingFields = append([]string(nil), result.MissingFields...)
	}
	return result, ok
}

// Invalidate drops the cached check for applicationID.
func (c *CheckCache) Invalidate(applicationID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, strings.TrimSpace(applicationID))
}

// Reset drops every cached check.
func (c *CheckCache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]CheckResult{}
}

// Len returns the number of cached checks.
func (c *CheckCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
