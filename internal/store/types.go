// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package store

import (
	"fmt"
	"strings"
)

// Triple is one (subject, predicate, object) row.
type Triple struct {
	Subject   string `json:"subject" yaml:"subject"`
	Predicate string `json:"predicate" yaml:"predicate"`
	Object    string `json:"object" yaml:"object"`
}

func (t Triple) String() string {
	return t.Subject + ";" + t.Predicate + ";" + t.Object
}

// Role restricts which triple position a term is matched against.
type Role int

const (
	// RoleEither matches the term as subject or object.
	RoleEither Role = iota
	RoleSubject
	RoleObject
)

func (r Role) String() string {
	switch r {
	case RoleSubject:
		return "subject"
	case RoleObject:
		return "object"
	default:
		return "either"
	}
}

// Filter selects rows from the triple store.
//
// When SubjectLike is set the filter is a wildcard search: rows whose subject
// matches any of the LIKE patterns are returned and the other fields are
// ignored. Otherwise Term is matched against the position(s) named by Role,
// optionally ANDed with an exact predicate match.
type Filter struct {
	Term        string   `json:"term,omitempty"`
	Role        Role     `json:"role"`
	Predicate   string   `json:"predicate,omitempty"`
	SubjectLike []string `json:"subject_like,omitempty"`
}

// Where renders the filter as a parameterized WHERE clause.
func (f Filter) Where() (string, []any) {
	if len(f.SubjectLike) > 0 {
		parts := make([]string, len(f.SubjectLike))
		args := make([]any, len(f.SubjectLike))
		for i, p := range f.SubjectLike {
			parts[i] = "subject LIKE ?"
			args[i] = p
		}
		return strings.Join(parts, " OR "), args
	}

	var clause string
	var args []any
	switch f.Role {
	case RoleSubject:
		clause, args = "subject = ?", []any{f.Term}
	case RoleObject:
		clause, args = "object = ?", []any{f.Term}
	default:
		clause, args = "(subject = ? OR object = ?)", []any{f.Term, f.Term}
	}
	if f.Predicate != "" {
		clause += " AND predicate = ?"
		args = append(args, f.Predicate)
	}
	return clause, args
}

// String renders the filter with literals inlined and escaped, for logs and
// diagnostics. Gateways execute Where, never String.
func (f Filter) String() string {
	clause, args := f.Where()
	var b strings.Builder
	ai := 0
	for _, r := range clause {
		if r == '?' && ai < len(args) {
			fmt.Fprintf(&b, "'%s'", Quote(fmt.Sprint(args[ai])))
			ai++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Quote escapes s for use inside a single-quoted SQL string literal.
func Quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
