// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package ontology

import (
	"strings"

	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

// PredicateRole says how traversal and result partitioning treat a predicate.
type PredicateRole int

const (
	// Plain predicates are surfaced as relations.
	Plain PredicateRole = iota
	// Recursion predicates store the part as object: (whole, regional_part, part).
	Recursion
	// AdditiveRecursion predicates store the part as subject: (part, subClassOf, whole).
	AdditiveRecursion
	// Ignore predicates are administrative and never surfaced.
	Ignore
	// Comment predicates carry definitional text surfaced verbatim.
	Comment
)

func (r PredicateRole) String() string {
	switch r {
	case Recursion:
		return "recursion"
	case AdditiveRecursion:
		return "additive_recursion"
	case Ignore:
		return "ignore"
	case Comment:
		return "comment"
	default:
		return "plain"
	}
}

// PredicateSets lists the predicates of each non-plain role.
type PredicateSets struct {
	Recursion         []string `mapstructure:"recursion" yaml:"recursion"`
	AdditiveRecursion []string `mapstructure:"additive_recursion" yaml:"additive_recursion"`
	Ignore            []string `mapstructure:"ignore" yaml:"ignore"`
	Comment           []string `mapstructure:"comment" yaml:"comment"`
}

// DefaultPredicateSets returns the FMA-oriented predicate vocabulary.
func DefaultPredicateSets() PredicateSets {
	return PredicateSets{
		Recursion:         []string{"regional_part", "constitutional_part", "systemic_part", "member", "subClass"},
		AdditiveRecursion: []string{"regional_part_of", "constitutional_part_of", "systemic_part_of", "memberOf", "subClassOf"},
		Ignore:            []string{"label", "fmaid", "assocmrmlnode", "assocematlaslabel", "hasematlasname"},
		Comment:           []string{"comment", "definition"},
	}
}

// Classifier maps predicates to roles with one lookup per row.
type Classifier struct {
	roles     map[string]PredicateRole
	ignore    map[string]struct{}
	recursion []string
	additive  []string
}

// NewClassifier validates that the sets are disjoint and builds the lookup.
func NewClassifier(sets PredicateSets) (*Classifier, error) {
	c := &Classifier{
		roles:     make(map[string]PredicateRole),
		ignore:    make(map[string]struct{}),
		recursion: append([]string(nil), sets.Recursion...),
		additive:  append([]string(nil), sets.AdditiveRecursion...),
	}

	add := func(role PredicateRole, preds []string) error {
		for _, p := range preds {
			if p == "" {
				return faerr.New(faerr.CodeConfigValidateInvalidValue,
					"empty "+role.String()+" predicate")
			}
			if prev, ok := c.roles[p]; ok && prev != role {
				return faerr.New(faerr.CodeConfigValidateInvalidValue,
					"predicate "+p+" is both "+prev.String()+" and "+role.String(),
					faerr.FieldPredicate(p))
			}
			c.roles[p] = role
		}
		return nil
	}

	if err := add(Recursion, sets.Recursion); err != nil {
		return nil, err
	}
	if err := add(AdditiveRecursion, sets.AdditiveRecursion); err != nil {
		return nil, err
	}
	if err := add(Comment, sets.Comment); err != nil {
		return nil, err
	}
	if err := add(Ignore, sets.Ignore); err != nil {
		return nil, err
	}
	for _, p := range sets.Ignore {
		c.ignore[strings.ToLower(p)] = struct{}{}
	}
	return c, nil
}

// MustClassifier is NewClassifier for static predicate sets.
func MustClassifier(sets PredicateSets) *Classifier {
	c, err := NewClassifier(sets)
	if err != nil {
		panic(err)
	}
	return c
}

// Role classifies predicate. Ignore predicates match case-insensitively;
// the other roles match exactly.
func (c *Classifier) Role(predicate string) PredicateRole {
	if _, ok := c.ignore[strings.ToLower(predicate)]; ok {
		return Ignore
	}
	if role, ok := c.roles[predicate]; ok {
		return role
	}
	return Plain
}

// Recursion returns the recursion predicates in configured order.
func (c *Classifier) Recursion() []string { return c.recursion }

// Additive returns the additive recursion predicates in configured order.
func (c *Classifier) Additive() []string { return c.additive }
