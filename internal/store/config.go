// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package store

// StorageConfig controls which backend the store factory uses.
type StorageConfig struct {
	Backend string // "sqlite" (default) or "modernc".
	Path    string // Triple store database file.
	Table   string // Triples table; empty uses "resources".
}

// DefaultTable is the table holding (subject, predicate, object) rows.
const DefaultTable = "resources"

// TableName returns the effective table name.
func (c *StorageConfig) TableName() string {
	if c.Table == "" {
		return DefaultTable
	}
	return c.Table
}
