// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package ontology

import (
	"context"
	"log/slog"

	"github.com/facetatlas/facetatlas/internal/store"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
	"github.com/facetatlas/facetatlas/pkg/types"
)

// DefaultMaxDepth bounds recursion when no ceiling is configured.
const DefaultMaxDepth = 64

// DefaultDisplayMarker is the cache predicate marking a term as already displayed.
const DefaultDisplayMarker = "mrmlName"

// MarkerIndex reports whether a term already has a cached display entry.
type MarkerIndex interface {
	HasMarker(term, marker string) bool
}

// Walker expands subjects along part-of predicates, collecting the entities
// bound to every subject it reaches.
type Walker struct {
	gw         store.Gateway
	resolver   *Resolver
	bindings   *Bindings
	classifier *Classifier
	markers    MarkerIndex
	marker     string
	maxDepth   int
	logger     *slog.Logger
}

// Traversal is one expansion with its own visited set. Subjects are expanded
// at most once per Traversal, so cyclic ontologies terminate.
type Traversal struct {
	w         *Walker
	visited   map[string]struct{}
	display   *types.OrderedSet[string]
	queries   int
	truncated bool
}

// NewWalker returns a walker over gw. A zero maxDepth uses DefaultMaxDepth and
// an empty marker uses DefaultDisplayMarker; markers may be nil.
func NewWalker(gw store.Gateway, resolver *Resolver, bindings *Bindings, classifier *Classifier,
	markers MarkerIndex, marker string, maxDepth int, logger *slog.Logger,
) *Walker {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if marker == "" {
		marker = DefaultDisplayMarker
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{
		gw:         gw,
		resolver:   resolver,
		bindings:   bindings,
		classifier: classifier,
		markers:    markers,
		marker:     marker,
		maxDepth:   maxDepth,
		logger:     logger,
	}
}

// Begin starts a traversal seeded at seed. Entities found are added to display.
func (w *Walker) Begin(seed string, display *types.OrderedSet[string]) *Traversal {
	visited := make(map[string]struct{})
	if canonical, err := Normalize(seed); err == nil {
		visited[canonical] = struct{}{}
	}
	return &Traversal{w: w, visited: visited, display: display}
}

// Expand follows every recursion and additive recursion predicate from subject.
func (t *Traversal) Expand(ctx context.Context, subject string) error {
	return t.expand(ctx, subject, 0)
}

// Follow executes f and recurses through the far term of every row. When
// followAsSubject is set the far term is the row's object, otherwise its
// subject. A filter matching nothing ends that branch without error.
func (t *Traversal) Follow(ctx context.Context, f store.Filter, followAsSubject bool) error {
	return t.follow(ctx, f, followAsSubject, 0)
}

// Queries returns how many filters the traversal executed.
func (t *Traversal) Queries() int { return t.queries }

// Truncated reports whether the depth ceiling cut off any branch.
func (t *Traversal) Truncated() bool { return t.truncated }

// Visited returns how many distinct subjects were expanded, seed included.
func (t *Traversal) Visited() int { return len(t.visited) }

func (t *Traversal) follow(ctx context.Context, f store.Filter, followAsSubject bool, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.queries++
	rows, err := t.w.gw.Execute(ctx, f)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	var candidates []string
	for _, row := range rows {
		far := row.Subject
		if followAsSubject {
			far = row.Object
		}

		key := far
		subject, err := t.w.resolver.Resolve(ctx, far)
		switch {
		case err == nil:
			key = subject
		case faerr.IsNotFound(err) || faerr.IsInvalidInput(err):
		default:
			return err
		}
		t.display.AddAll(t.w.bindings.Entities(key)...)

		if t.w.markers != nil && t.w.markers.HasMarker(far, t.w.marker) {
			continue
		}
		canonical, err := Normalize(far)
		if err != nil {
			continue
		}
		if _, seen := t.visited[canonical]; seen {
			continue
		}
		t.visited[canonical] = struct{}{}
		candidates = append(candidates, canonical)
	}

	if len(candidates) > 0 && depth+1 > t.w.maxDepth {
		t.truncated = true
		t.w.logger.Warn("traversal depth ceiling reached",
			slog.Int("max_depth", t.w.maxDepth),
			slog.Int("dropped", len(candidates)),
			slog.String("filter", f.String()),
		)
		return nil
	}

	for _, c := range candidates {
		if err := t.expand(ctx, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (t *Traversal) expand(ctx context.Context, subject string, depth int) error {
	for _, pred := range t.w.classifier.Recursion() {
		f, err := Compile(subject, store.RoleSubject, pred)
		if err != nil {
			continue
		}
		if err := t.follow(ctx, f, true, depth); err != nil {
			return err
		}
	}
	for _, pred := range t.w.classifier.Additive() {
		f, err := Compile(subject, store.RoleObject, pred)
		if err != nil {
			continue
		}
		if err := t.follow(ctx, f, false, depth); err != nil {
			return err
		}
	}
	return nil
}
