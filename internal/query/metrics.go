// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package query

import "github.com/prometheus/client_golang/prometheus"

type sessionMetrics struct {
	runs     prometheus.Counter
	failures *prometheus.CounterVec
	duration prometheus.Histogram
	storeErr prometheus.Counter
}

func newSessionMetrics(reg prometheus.Registerer) (*sessionMetrics, error) {
	m := &sessionMetrics{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "facetatlas",
			Subsystem: "query",
			Name:      "runs_total",
			Help:      "Total number of query passes",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "facetatlas",
			Subsystem: "query",
			Name:      "subquery_failures_total",
			Help:      "Sub-queries that produced no result, by error code",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "facetatlas",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Duration of query passes",
			Buckets:   prometheus.DefBuckets,
		}),
		storeErr: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "facetatlas",
			Subsystem: "query",
			Name:      "store_unavailable_total",
			Help:      "Query passes that could not open the triple store",
		}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.failures, m.duration, m.storeErr} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
