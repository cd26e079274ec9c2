// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

// Package ontology resolves free-text anatomy terms against a triple store
// and expands them into the scene entities bound to them.
package ontology

import (
	"strings"
	"unicode"
	"unicode/utf8"

	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

// Normalize converts a free-text term into canonical subject form: the
// surrounding single quotes and parentheses are removed, the first letter is
// upper-cased and every run of spaces becomes one underscore.
//
//	normalize("'left kidney'")   == "Left_kidney"
//	normalize("(hepatic  vein)") == "Hepatic_vein"
//
// Normalize is idempotent on its own output. An input that is empty after
// stripping fails with ontology.normalize.invalid_input.
func Normalize(term string) (string, error) {
	s := strings.TrimSpace(term)
	for {
		stripped := stripPair(stripPair(s, '\'', '\''), '(', ')')
		stripped = strings.TrimSpace(stripped)
		if stripped == s {
			break
		}
		s = stripped
	}
	if s == "" {
		return "", faerr.New(faerr.CodeOntologyNormalizeInvalid, "term is empty", faerr.FieldTerm(term))
	}

	s = strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == ' ' }), "_")

	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:], nil
}

// NormalizePredicate converts a user-typed predicate ("arterial supply")
// into store form ("arterial_supply"). Case is preserved.
func NormalizePredicate(predicate string) string {
	return strings.Join(strings.Fields(predicate), "_")
}

func stripPair(s string, open, close byte) string {
	if len(s) >= 2 && s[0] == open && s[len(s)-1] == close {
		return s[1 : len(s)-1]
	}
	return s
}
