// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package store

import "context"

// Gateway executes filters against an open triple store. A Gateway is scoped
// to one orchestration or synchronization pass and must be closed by the caller.
type Gateway interface {
	// Execute returns every row matching f in store order.
	// A filter matching nothing returns an empty slice and no error.
	Execute(ctx context.Context, f Filter) ([]Triple, error)
	Close() error
}

// Writer appends triples to a store opened for writing.
type Writer interface {
	// PutTriples inserts triples, ignoring exact duplicates, and reports how
	// many rows were new.
	PutTriples(ctx context.Context, triples []Triple) (int, error)
	Close() error
}

// Opener opens a fresh Gateway.
type Opener interface {
	Open(ctx context.Context) (Gateway, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context) (Gateway, error)

func (f OpenerFunc) Open(ctx context.Context) (Gateway, error) {
	return f(ctx)
}
