// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package scene

import (
	"context"
	"log/slog"
	"strings"

	"github.com/facetatlas/facetatlas/internal/ontology"
	"github.com/facetatlas/facetatlas/internal/store"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

// NoMatch is the answer that declines every candidate for an entity.
const NoMatch = "none"

const hierarchyNodeMarker = "vtkmrmlmodelhierarchynode"

// Binding pairs a canonical subject with the entity that displays it.
type Binding struct {
	Subject string `json:"subject"`
	Entity  string `json:"entity"`
}

// Candidate lists the ontology subjects a fuzzy match proposed for an entity.
// Candidates are not bound until confirmed.
type Candidate struct {
	Entity    string   `json:"entity"`
	Canonical string   `json:"canonical"`
	Subjects  []string `json:"subjects"`
}

// Report summarizes one synchronization pass.
type Report struct {
	StoreAvailable bool        `json:"store_available"`
	Bound          []Binding   `json:"bound"`
	Candidates     []Candidate `json:"candidates"`
	NonDB          []string    `json:"non_db"`
}

// Synchronizer binds scene entity names to ontology subjects.
type Synchronizer struct {
	opener    store.Opener
	state     *ontology.State
	fallbacks []string
	logger    *slog.Logger
}

func NewSynchronizer(opener store.Opener, state *ontology.State, fallbacks []string, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{opener: opener, state: state, fallbacks: fallbacks, logger: logger}
}

// Synchronize walks every hierarchy of g. Exact matches are bound, fuzzy
// matches come back as candidates, and entities with no match at all are
// recorded as non-ontology. When the store cannot be opened every model is
// recorded as non-ontology and the report says so.
func (s *Synchronizer) Synchronize(ctx context.Context, g Graph) (*Report, error) {
	report := &Report{}
	nonDB := func(name string) {
		if s.state.NonDB.Add(name) {
			report.NonDB = append(report.NonDB, name)
		}
	}

	var gw store.Gateway
	var err error
	if s.opener != nil {
		gw, err = s.opener.Open(ctx)
	} else {
		err = store.ErrUnavailable
	}
	if err != nil {
		s.logger.Warn("triple store unavailable, scene marked non-ontology", "error", err)
		for _, m := range g.Models() {
			nonDB(m.Name)
		}
		return report, nil
	}
	defer gw.Close()
	report.StoreAvailable = true

	resolver := ontology.NewResolver(gw, s.state.Synonyms, s.fallbacks, s.logger)
	ontologyModels := make(map[string]struct{})

	for _, h := range g.Hierarchies() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, id := range h.Members() {
			ontologyModels[id] = struct{}{}
		}

		name := syncName(h, g)
		canonical, err := ontology.Normalize(name)
		if err != nil {
			nonDB(h.Name)
			continue
		}

		rows, err := gw.Execute(ctx, store.Filter{Term: canonical, Role: store.RoleEither})
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			subject, err := resolver.Resolve(ctx, name)
			if err != nil {
				if !faerr.IsNotFound(err) {
					return nil, err
				}
				subject = canonical
			}
			if s.state.Bindings.Bind(subject, h.Name) {
				report.Bound = append(report.Bound, Binding{Subject: subject, Entity: h.Name})
			}
			continue
		}

		subjects, err := s.fuzzy(ctx, gw, canonical)
		if err != nil {
			return nil, err
		}
		if len(subjects) == 0 {
			nonDB(h.Name)
			continue
		}
		report.Candidates = append(report.Candidates, Candidate{
			Entity:    h.Name,
			Canonical: canonical,
			Subjects:  subjects,
		})
	}

	for _, m := range g.Models() {
		if _, ok := ontologyModels[m.ID]; !ok {
			nonDB(m.Name)
		}
	}

	s.logger.Info("scene synchronized",
		"bound", len(report.Bound),
		"candidates", len(report.Candidates),
		"non_db", len(report.NonDB))
	return report, nil
}

// Confirm binds subject to entity. The NoMatch answer binds nothing.
func (s *Synchronizer) Confirm(subject, entity string) (bool, error) {
	if strings.EqualFold(strings.TrimSpace(subject), NoMatch) {
		return false, nil
	}
	canonical, err := ontology.Normalize(subject)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(entity) == "" {
		return false, faerr.New(faerr.CodeQueryInputInvalid, "entity name is empty")
	}
	return s.state.Bindings.Bind(canonical, entity), nil
}

// fuzzy slides a window over the words of canonical and returns the subjects
// of the first window that matches any row.
func (s *Synchronizer) fuzzy(ctx context.Context, gw store.Gateway, canonical string) ([]string, error) {
	var words []string
	for _, w := range strings.Split(canonical, "_") {
		if w == "" || strings.EqualFold(w, "of") {
			continue
		}
		words = append(words, w)
	}

	for count := 1; count < len(words)-1; count++ {
		prefix := strings.Join(words[:len(words)-count], "%") + "%"
		suffix := "%" + strings.Join(words[count:], "%")

		rows, err := gw.Execute(ctx, ontology.CompileLike(suffix, prefix))
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}
		var seen []string
		have := make(map[string]struct{})
		for _, r := range rows {
			if _, ok := have[r.Subject]; ok {
				continue
			}
			have[r.Subject] = struct{}{}
			seen = append(seen, r.Subject)
		}
		s.logger.Debug("fuzzy candidates", "term", canonical, "window", count, "subjects", len(seen))
		return seen, nil
	}
	return nil, nil
}

// syncName is the name a hierarchy is matched by. Hierarchy nodes that carry
// a generated node name are matched by their model's name instead, minus the
// two leading underscore-separated prefixes.
func syncName(h Hierarchy, g Graph) string {
	name := strings.ToLower(h.Name)
	if !strings.Contains(name, hierarchyNodeMarker) || h.ModelID == "" {
		return name
	}
	for _, m := range g.Models() {
		if m.ID != h.ModelID {
			continue
		}
		model := strings.ToLower(m.Name)
		for i := 0; i < 2; i++ {
			if _, rest, ok := strings.Cut(model, "_"); ok {
				model = rest
			}
		}
		return model
	}
	return name
}
