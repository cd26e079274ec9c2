// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package ontology

import "github.com/facetatlas/facetatlas/internal/store"

// Compile builds a filter matching term in the given role, optionally
// restricted to one predicate. The term is normalized first; the predicate is
// used verbatim.
func Compile(term string, role store.Role, predicate string) (store.Filter, error) {
	canonical, err := Normalize(term)
	if err != nil {
		return store.Filter{}, err
	}
	return store.Filter{Term: canonical, Role: role, Predicate: predicate}, nil
}

// CompileLike builds a wildcard filter matching subjects against any of the
// LIKE patterns.
func CompileLike(patterns ...string) store.Filter {
	return store.Filter{SubjectLike: patterns}
}
