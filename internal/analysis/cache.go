package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultCooldown is the minimum time between successful session analyses.
const DefaultCooldown = 5 * time.Minute

// sessionRunner is the expensive operation the cache gates.
type sessionRunner interface {
	Analyze(ctx context.Context, req SessionRequest) (*SessionAnalysis, error)
}

// Cache gates session analysis behind a cooldown window. The state is the
// pair (cached result, last success timestamp), updated together and only on
// success — a failed run consumes nothing, so retries are never throttled.
type Cache struct {
	runner   sessionRunner
	cooldown time.Duration
	now      func() time.Time // injectable clock for tests

	mu       sync.Mutex
	inFlight bool
	last     time.Time
	cached   *SessionAnalysis
}

// NewCache wraps a session analyzer with a cooldown window. A non-positive
// cooldown falls back to DefaultCooldown.
func NewCache(runner sessionRunner, cooldown time.Duration) *Cache {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Cache{
		runner:   runner,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// CanAnalyze reports whether a fresh analysis would actually run right now.
// Exposed so callers can disable a retry control instead of attempting and
// immediately failing.
func (c *Cache) CanAnalyze() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canAnalyzeLocked()
}

func (c *Cache) canAnalyzeLocked() bool {
	if c.inFlight {
		return false
	}
	if c.last.IsZero() {
		return true
	}
	return c.now().Sub(c.last) >= c.cooldown
}

// Cached returns the last successful analysis, or nil.
func (c *Cache) Cached() *SessionAnalysis {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cached
}

// GetOrAnalyze returns the cached analysis when inside the cooldown window,
// otherwise runs a fresh one. The bool reports whether the result came from
// cache.
func (c *Cache) GetOrAnalyze(ctx context.Context, req SessionRequest) (*SessionAnalysis, bool, error) {
	c.mu.Lock()
	if !c.canAnalyzeLocked() && c.cached != nil {
		result := c.cached
		c.mu.Unlock()
		return result, true, nil
	}
	if c.inFlight {
		c.mu.Unlock()
		return nil, false, fmt.Errorf("session analysis already in flight")
	}
	c.inFlight = true
	c.mu.Unlock()

	result, err := c.runner.Analyze(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if err != nil {
		// Timestamp deliberately untouched: a failure must never block the
		// next attempt.
		return nil, false, err
	}

	c.cached = result
	c.last = c.now()
	return result, false, nil
}
