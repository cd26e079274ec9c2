// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package ontology_test

import (
	"context"

	"github.com/facetatlas/facetatlas/internal/store"
)

// countingGateway records every filter executed against the wrapped store.
type countingGateway struct {
	store.Gateway
	filters []store.Filter
}

func (c *countingGateway) Execute(ctx context.Context, f store.Filter) ([]store.Triple, error) {
	c.filters = append(c.filters, f)
	return c.Gateway.Execute(ctx, f)
}

func (c *countingGateway) calls() int { return len(c.filters) }

func newCounting(triples ...store.Triple) *countingGateway {
	return &countingGateway{Gateway: store.NewMemory(triples...)}
}

// markerSet is a MarkerIndex backed by a set of terms.
type markerSet map[string]bool

func (m markerSet) HasMarker(term, _ string) bool { return m[term] }

func tr(s, p, o string) store.Triple {
	return store.Triple{Subject: s, Predicate: p, Object: o}
}
