// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

// Package cache holds an age-weighted, capacity-bounded store of query
// results.
//
// Every orchestration pass ages all tracked queries by one, and a query that
// recurs is aged down by one when its results are inserted. When an insert
// does not fit, the cache evicts the oldest tracked query whose age is at
// least two and that is not part of the current batch; batch members are aged
// down instead. If eviction cannot free enough room the insert is dropped.
package cache

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/facetatlas/facetatlas/pkg/types"
)

// DefaultCapacity is the number of result strings kept when unconfigured.
const DefaultCapacity = 3000

// MinEvictableAge is the age a query must reach before it can be evicted.
const MinEvictableAge = 2

// ResultCache is safe for concurrent use.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	entries  []string
	index    map[string][]int
	ages     map[string]int

	evicted int
	dropped int

	metrics *cacheMetrics
	logger  *slog.Logger
}

// Option configures a ResultCache.
type Option func(*ResultCache) error

// WithMetrics registers the cache's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *ResultCache) error {
		m, err := newCacheMetrics(reg)
		if err != nil {
			return err
		}
		c.metrics = m
		return nil
	}
}

// WithLogger sets the logger used for eviction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ResultCache) error {
		c.logger = logger
		return nil
	}
}

// New returns an empty cache holding at most capacity result strings.
// A non-positive capacity uses DefaultCapacity.
func New(capacity int, opts ...Option) (*ResultCache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &ResultCache{
		capacity: capacity,
		index:    make(map[string][]int),
		ages:     make(map[string]int),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Age increments the age of every tracked query.
func (c *ResultCache) Age() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for q := range c.ages {
		c.ages[q]++
	}
}

// Insert stores results under query. batch lists the queries of the current
// pass; they are protected from eviction. Results already cached under query
// are skipped, and a query that recurs is aged down by one. It reports
// whether the results are cached.
func (c *ResultCache) Insert(batch []string, query string, results []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if age, ok := c.ages[query]; ok && age > 0 {
		c.ages[query] = age - 1
	}
	fresh := c.missing(query, results)
	if len(fresh) == 0 {
		return true
	}

	needed := len(fresh)
	remaining := c.capacity - len(c.entries)
	if remaining < needed {
		remaining += c.evict(batch, needed-remaining)
	}
	if remaining < needed {
		c.dropped++
		if c.metrics != nil {
			c.metrics.dropped.Inc()
		}
		c.logger.Debug("result cache insert dropped",
			slog.String("query", query),
			slog.Int("needed", needed),
			slog.Int("available", remaining),
		)
		return false
	}

	if _, ok := c.ages[query]; !ok {
		c.ages[query] = 0
	}
	for _, r := range fresh {
		c.entries = append(c.entries, r)
		c.index[query] = append(c.index[query], len(c.entries)-1)
	}
	if c.metrics != nil {
		c.metrics.inserts.Inc()
		c.metrics.updateSize(len(c.entries), len(c.ages))
	}
	return true
}

// missing returns the results not yet cached under query, without repeats.
// Callers hold c.mu.
func (c *ResultCache) missing(query string, results []string) []string {
	seen := types.NewOrderedSet[string]()
	for _, i := range c.index[query] {
		seen.Add(c.entries[i])
	}
	var out []string
	for _, r := range results {
		if _, added := seen.Add(r); added {
			out = append(out, r)
		}
	}
	return out
}

// evict frees at least want slots if it can and returns the number freed.
// Callers hold c.mu.
func (c *ResultCache) evict(batch []string, want int) int {
	protected := make(map[string]struct{}, len(batch))
	for _, q := range batch {
		protected[q] = struct{}{}
	}

	removed := make(map[int]struct{})
	for len(removed) < want {
		keys := make([]string, 0, len(c.ages))
		for q := range c.ages {
			keys = append(keys, q)
		}
		sort.Strings(keys)

		oldest, oldestAge := "", 0
		for _, q := range keys {
			age := c.ages[q]
			if age < MinEvictableAge {
				continue
			}
			if _, ok := protected[q]; ok {
				c.ages[q] = age - 1
				continue
			}
			if age > oldestAge {
				oldest, oldestAge = q, age
			}
		}
		if oldest == "" {
			break
		}

		for _, i := range c.index[oldest] {
			removed[i] = struct{}{}
		}
		delete(c.index, oldest)
		delete(c.ages, oldest)
		c.evicted++
		if c.metrics != nil {
			c.metrics.evictions.Inc()
		}
		c.logger.Debug("result cache evicted query",
			slog.String("query", oldest),
			slog.Int("age", oldestAge),
		)
	}

	if len(removed) > 0 {
		c.compact(removed)
	}
	return len(removed)
}

// compact drops removed slots and renumbers every surviving index.
func (c *ResultCache) compact(removed map[int]struct{}) {
	remap := make([]int, len(c.entries))
	kept := make([]string, 0, len(c.entries)-len(removed))
	for i, e := range c.entries {
		if _, ok := removed[i]; ok {
			remap[i] = -1
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, e)
	}
	c.entries = kept

	for q, idx := range c.index {
		next := idx[:0]
		for _, i := range idx {
			if remap[i] >= 0 {
				next = append(next, remap[i])
			}
		}
		c.index[q] = next
	}
	if c.metrics != nil {
		c.metrics.updateSize(len(c.entries), len(c.ages))
	}
}

// Lookup returns the results cached under query in insertion order.
func (c *ResultCache) Lookup(query string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.index[query]
	if c.metrics != nil {
		if len(idx) > 0 {
			c.metrics.hits.Inc()
		} else {
			c.metrics.misses.Inc()
		}
	}
	if len(idx) == 0 {
		return nil
	}
	out := make([]string, len(idx))
	for n, i := range idx {
		out[n] = c.entries[i]
	}
	return out
}

// HasMarker reports whether any result cached under term has the form
// "term;marker;value".
func (c *ResultCache) HasMarker(term, marker string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, i := range c.index[term] {
		e := c.entries[i]
		first := strings.Index(e, ";")
		last := strings.LastIndex(e, ";")
		if first >= 0 && first < last && e[first+1:last] == marker {
			return true
		}
	}
	return false
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Capacity  int            `json:"capacity"`
	Entries   int            `json:"entries"`
	Evictions int            `json:"evictions"`
	Dropped   int            `json:"dropped"`
	Ages      map[string]int `json:"ages"`
}

func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	ages := make(map[string]int, len(c.ages))
	for q, a := range c.ages {
		ages[q] = a
	}
	return Stats{
		Capacity:  c.capacity,
		Entries:   len(c.entries),
		Evictions: c.evicted,
		Dropped:   c.dropped,
		Ages:      ages,
	}
}

// Reset empties the cache. Counters are kept.
func (c *ResultCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.index = make(map[string][]int)
	c.ages = make(map[string]int)
	if c.metrics != nil {
		c.metrics.updateSize(0, 0)
	}
}
