// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package server

import (
	"context"

	"github.com/facetatlas/facetatlas/internal/cache"
	"github.com/facetatlas/facetatlas/internal/query"
	"github.com/facetatlas/facetatlas/internal/scene"
)

// QueryService is the session surface the REST API exposes.
// *query.Session implements it.
type QueryService interface {
	RunQuery(ctx context.Context, raw string) (*query.Result, error)
	Synchronize(ctx context.Context) (*scene.Report, error)
	Pending() []scene.Candidate
	Confirm(subject, entity string) (bool, error)
	Bindings() map[string][]string
	History() []query.HistoryEntry
	HistoryEntry(id string) (*query.Result, error)
	CacheStats() cache.Stats
	Reset()
}

var _ QueryService = (*query.Session)(nil)
