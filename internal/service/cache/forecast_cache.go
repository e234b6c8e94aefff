package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"KankoLens/internal/domain/models"
	"KankoLens/internal/services/forecast"
)

// ForecastCache memoizes complete forecast payloads for a bounded TTL,
// keyed by the normalized request signature. Concurrent identical
// requests share one in-flight computation via singleflight. The cache
// is best-effort: expiry or eviction only costs latency, never
// correctness.
type ForecastCache struct {
	mu      sync.RWMutex
	entries map[string]forecastEntry
	group   singleflight.Group
	ttl     time.Duration
	now     func() time.Time
}

type forecastEntry struct {
	payload *models.ForecastPayload
	exp     time.Time
}

// NewForecastCache builds a cache with the given TTL. The clock is
// injectable for tests; pass nil for time.Now.
func NewForecastCache(ttl time.Duration, now func() time.Time) *ForecastCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &ForecastCache{
		entries: make(map[string]forecastEntry),
		ttl:     ttl,
		now:     now,
	}
}

// Key normalizes a forecast request into its cache signature. Scenario
// ids are sorted so permutations of the same set share an entry.
func Key(req *forecast.Request) string {
	ids := append([]string{}, req.ScenarioIDs...)
	sort.Strings(ids)
	custom := "none"
	if req.CustomShockRate != nil {
		custom = fmt.Sprintf("%.6f", *req.CustomShockRate)
	}
	return fmt.Sprintf("forecast:%s:%s:%04d-%02d:h%d:s[%s]:c%s",
		req.Prefecture, req.Market, req.BaseYear, req.BaseMonth,
		req.HorizonMonths, strings.Join(ids, ","), custom)
}

// GetOrCompute returns the cached payload for the key, or runs compute
// exactly once across concurrent callers and caches the result.
func (c *ForecastCache) GetOrCompute(key string, compute func() (*models.ForecastPayload, error)) (*models.ForecastPayload, error) {
	if payload, ok := c.lookup(key); ok {
		return payload, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under single-flight: another caller may have
		// published while this one waited for the flight slot.
		if payload, ok := c.lookup(key); ok {
			return payload, nil
		}
		payload, err := compute()
		if err != nil {
			return nil, err
		}
		c.store(key, payload)
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ForecastPayload), nil
}

func (c *ForecastCache) lookup(key string) (*models.ForecastPayload, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.exp) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.payload, true
}

func (c *ForecastCache) store(key string, payload *models.ForecastPayload) {
	c.mu.Lock()
	c.entries[key] = forecastEntry{payload: payload, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len reports live entries, pruning expired ones.
func (c *ForecastCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.exp) {
			delete(c.entries, k)
		}
	}
	return len(c.entries)
}
