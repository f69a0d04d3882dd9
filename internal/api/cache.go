package api

import (
	"fmt"
	"sync"
	"time"

	"sales-segmentation/internal/domain"
)

// maxCachedReports bounds the cache when callers vary as_of on the same period.
const maxCachedReports = 256

// periodCache keeps reports of closed periods for ttl. A zero ttl disables it.
type periodCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	report  *domain.SegmentationReport
	expires time.Time
}

func newPeriodCache(ttl time.Duration) *periodCache {
	return &periodCache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

func cacheKey(year int, months domain.MonthRange, asOf time.Time) string {
	return fmt.Sprintf("%d|%02d|%02d|%s", year, months.From, months.To, asOf.Format(time.DateOnly))
}

// isClosedPeriod reports whether the whole period ends before the month containing now.
// The current month is still receiving invoices and is never cached.
func isClosedPeriod(year int, months domain.MonthRange, now time.Time) bool {
	_, end := months.Bounds(year)
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return end.Before(currentMonth)
}

func (c *periodCache) get(key string, now time.Time) (*domain.SegmentationReport, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !now.Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.report, true
}

func (c *periodCache) put(key string, report *domain.SegmentationReport, now time.Time) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
	if _, ok := c.entries[key]; !ok && len(c.entries) >= maxCachedReports {
		c.evictOldest()
	}
	c.entries[key] = cacheEntry{report: report, expires: now.Add(c.ttl)}
}

// evictOldest drops the entry closest to expiry. Callers hold mu.
func (c *periodCache) evictOldest() {
	var oldest string
	var at time.Time
	for k, e := range c.entries {
		if oldest == "" || e.expires.Before(at) {
			oldest, at = k, e.expires
		}
	}
	delete(c.entries, oldest)
}

func (c *periodCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
