// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package cache

import "github.com/prometheus/client_golang/prometheus"

// cacheMetrics holds Prometheus metrics for result cache operations.
type cacheMetrics struct {
	inserts   prometheus.Counter
	dropped   prometheus.Counter
	evictions prometheus.Counter
	hits      prometheus.Counter
	misses    prometheus.Counter

	entries prometheus.Gauge
	queries prometheus.Gauge
}

func newCacheMetrics(reg prometheus.Registerer) (*cacheMetrics, error) {
	m := &cacheMetrics{
		inserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "facetatlas",
			Subsystem: "result_cache",
			Name:      "inserts_total",
			Help:      "Total number of query result batches stored",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "facetatlas",
			Subsystem: "result_cache",
			Name:      "dropped_total",
			Help:      "Total number of inserts dropped for lack of evictable space",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "facetatlas",
			Subsystem: "result_cache",
			Name:      "evictions_total",
			Help:      "Total number of tracked queries evicted",
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "facetatlas",
			Subsystem: "result_cache",
			Name:      "hits_total",
			Help:      "Total number of lookups that found cached results",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "facetatlas",
			Subsystem: "result_cache",
			Name:      "misses_total",
			Help:      "Total number of lookups that found nothing",
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "facetatlas",
			Subsystem: "result_cache",
			Name:      "entries",
			Help:      "Current number of cached result strings",
		}),
		queries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "facetatlas",
			Subsystem: "result_cache",
			Name:      "tracked_queries",
			Help:      "Current number of tracked queries",
		}),
	}

	for _, c := range []prometheus.Collector{m.inserts, m.dropped, m.evictions, m.hits, m.misses, m.entries, m.queries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *cacheMetrics) updateSize(entries, queries int) {
	m.entries.Set(float64(entries))
	m.queries.Set(float64(queries))
}
