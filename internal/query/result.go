// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package query

import (
	"time"

	"github.com/facetatlas/facetatlas/internal/scene"
)

// Group holds the named results of one sub-query.
type Group struct {
	Label string   `json:"label"`
	Items []string `json:"items"`
}

// Failure records a sub-query that produced nothing.
type Failure struct {
	Query   string `json:"query"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of one query pass.
type Result struct {
	ID               string            `json:"id"`
	Query            string            `json:"query"`
	At               time.Time         `json:"at"`
	HasVisualResults bool              `json:"has_visual_results"`
	StoreAvailable   bool              `json:"store_available"`
	Display          []string          `json:"display"`
	Groups           []Group           `json:"groups"`
	Failures         []Failure         `json:"failures,omitempty"`
	Directives       []scene.Directive `json:"directives,omitempty"`
	Truncated        bool              `json:"truncated,omitempty"`
}

// HistoryEntry summarizes a past pass.
type HistoryEntry struct {
	ID               string    `json:"id"`
	Query            string    `json:"query"`
	At               time.Time `json:"at"`
	HasVisualResults bool      `json:"has_visual_results"`
	Failures         int       `json:"failures"`
}

// Summary returns the history view of r.
func (r *Result) Summary() HistoryEntry {
	return HistoryEntry{
		ID:               r.ID,
		Query:            r.Query,
		At:               r.At,
		HasVisualResults: r.HasVisualResults,
		Failures:         len(r.Failures),
	}
}
