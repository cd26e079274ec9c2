// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package ontology

import (
	"context"
	"log/slog"
	"strings"

	"github.com/facetatlas/facetatlas/internal/store"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

// DefaultSynonymFallbacks are the alternate-name predicates tried, in order,
// when a term is not itself a subject.
var DefaultSynonymFallbacks = []string{"non_english_equivalent", "synonym"}

// SynonymMap memoizes free-text terms resolved through an alternate-name
// predicate. The first resolution of a term wins.
type SynonymMap struct {
	m map[string]string
}

func NewSynonymMap() *SynonymMap {
	return &SynonymMap{m: make(map[string]string)}
}

func (s *SynonymMap) Get(term string) (string, bool) {
	subject, ok := s.m[term]
	return subject, ok
}

// Put records term -> subject unless term is already mapped.
func (s *SynonymMap) Put(term, subject string) bool {
	if _, ok := s.m[term]; ok {
		return false
	}
	s.m[term] = subject
	return true
}

func (s *SynonymMap) Len() int { return len(s.m) }

func (s *SynonymMap) Snapshot() map[string]string {
	out := make(map[string]string, len(s.m))
	for k, v := range s.m {
		out[k] = v
	}
	return out
}

func (s *SynonymMap) Clear() { s.m = make(map[string]string) }

// Resolver maps free text to canonical subjects.
type Resolver struct {
	gw        store.Gateway
	synonyms  *SynonymMap
	fallbacks []string
	logger    *slog.Logger
}

// NewResolver returns a resolver over gw. A nil fallbacks slice uses
// DefaultSynonymFallbacks.
func NewResolver(gw store.Gateway, synonyms *SynonymMap, fallbacks []string, logger *slog.Logger) *Resolver {
	if fallbacks == nil {
		fallbacks = DefaultSynonymFallbacks
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{gw: gw, synonyms: synonyms, fallbacks: fallbacks, logger: logger}
}

// Resolve returns the canonical subject for term. It tries, in order: the
// normalized term as a subject, the synonym memo, then each fallback
// predicate with the normalized term as object, taking the first row's
// subject. Only fallback hits are memoized.
func (r *Resolver) Resolve(ctx context.Context, term string) (string, error) {
	key := strings.TrimSpace(term)
	if r.gw == nil {
		return "", faerr.Wrap(store.ErrUnavailable, faerr.CodeQueryResolveNotFound,
			"triple store unavailable", faerr.FieldTerm(key))
	}

	f, err := Compile(key, store.RoleSubject, "")
	if err != nil {
		return "", err
	}
	rows, err := r.gw.Execute(ctx, f)
	if err != nil {
		return "", err
	}
	if len(rows) > 0 {
		return f.Term, nil
	}

	if subject, ok := r.synonyms.Get(key); ok {
		return subject, nil
	}

	for _, pred := range r.fallbacks {
		rows, err := r.gw.Execute(ctx, store.Filter{Term: f.Term, Role: store.RoleObject, Predicate: pred})
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			continue
		}
		subject := rows[0].Subject
		r.synonyms.Put(key, subject)
		r.logger.Debug("resolved term through alternate name",
			slog.String("term", key),
			slog.String("predicate", pred),
			slog.String("subject", subject),
		)
		return subject, nil
	}

	return "", faerr.New(faerr.CodeQueryResolveNotFound, "no subject for term: "+key, faerr.FieldTerm(key))
}
