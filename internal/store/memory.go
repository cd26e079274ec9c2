// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package store

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process triple store. It evaluates filters with the same
// semantics as the SQL backends: exact, case-sensitive equality, and
// ASCII case-insensitive LIKE patterns.
type Memory struct {
	mu      sync.RWMutex
	triples []Triple
	seen    map[Triple]struct{}
}

// NewMemory returns a store holding triples in order.
func NewMemory(triples ...Triple) *Memory {
	m := &Memory{seen: make(map[Triple]struct{})}
	_, _ = m.PutTriples(context.Background(), triples)
	return m
}

// Execute implements Gateway.
func (m *Memory) Execute(ctx context.Context, f Filter) ([]Triple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Triple
	for _, t := range m.triples {
		if matches(f, t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// PutTriples implements Writer.
func (m *Memory) PutTriples(_ context.Context, triples []Triple) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := 0
	for _, t := range triples {
		if _, ok := m.seen[t]; ok {
			continue
		}
		m.seen[t] = struct{}{}
		m.triples = append(m.triples, t)
		added++
	}
	return added, nil
}

// Close is a no-op; the data outlives individual gateways.
func (m *Memory) Close() error { return nil }

// Open implements Opener, handing out the store itself.
func (m *Memory) Open(context.Context) (Gateway, error) {
	return m, nil
}

func matches(f Filter, t Triple) bool {
	if len(f.SubjectLike) > 0 {
		for _, p := range f.SubjectLike {
			if Like(p, t.Subject) {
				return true
			}
		}
		return false
	}

	var ok bool
	switch f.Role {
	case RoleSubject:
		ok = t.Subject == f.Term
	case RoleObject:
		ok = t.Object == f.Term
	default:
		ok = t.Subject == f.Term || t.Object == f.Term
	}
	if ok && f.Predicate != "" {
		ok = t.Predicate == f.Predicate
	}
	return ok
}

// Like reports whether s matches the SQL LIKE pattern, where '%' matches any
// run of characters and '_' exactly one. Comparison folds ASCII case only.
func Like(pattern, s string) bool {
	p := []rune(asciiLower(pattern))
	r := []rune(asciiLower(s))

	// match[j] reports whether p[:i] matches r[:j] for the current i.
	match := make([]bool, len(r)+1)
	match[0] = true
	for i := 0; i < len(p); i++ {
		next := make([]bool, len(r)+1)
		switch p[i] {
		case '%':
			seen := false
			for j := 0; j <= len(r); j++ {
				seen = seen || match[j]
				next[j] = seen
			}
		default:
			for j := 1; j <= len(r); j++ {
				next[j] = match[j-1] && (p[i] == '_' || p[i] == r[j-1])
			}
		}
		match = next
	}
	return match[len(r)]
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
