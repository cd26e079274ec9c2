// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package ontology

import (
	"strings"

	"github.com/facetatlas/facetatlas/pkg/types"
)

// Bindings maps canonical subjects to the scene entities that display them.
// Subjects and each subject's entities keep insertion order.
type Bindings struct {
	subjects types.OrderedSet[string]
	entities map[string]*types.OrderedSet[string]
}

func NewBindings() *Bindings {
	return &Bindings{entities: make(map[string]*types.OrderedSet[string])}
}

// Bind records that entity displays subject. It reports whether the pair was new.
func (b *Bindings) Bind(subject, entity string) bool {
	set, ok := b.entities[subject]
	if !ok {
		set = types.NewOrderedSet[string]()
		b.entities[subject] = set
		b.subjects.Add(subject)
	}
	_, added := set.Add(entity)
	return added
}

// Entities returns the entities bound to subject.
func (b *Bindings) Entities(subject string) []string {
	if set, ok := b.entities[subject]; ok {
		return set.Items()
	}
	return nil
}

// Bound reports whether subject has at least one entity.
func (b *Bindings) Bound(subject string) bool {
	set, ok := b.entities[subject]
	return ok && set.Len() > 0
}

// Subjects returns every bound subject in insertion order.
func (b *Bindings) Subjects() []string {
	return b.subjects.Items()
}

// Len returns the number of bound subjects.
func (b *Bindings) Len() int {
	return b.subjects.Len()
}

// Snapshot copies the table.
func (b *Bindings) Snapshot() map[string][]string {
	out := make(map[string][]string, len(b.entities))
	for subject, set := range b.entities {
		out[subject] = set.Items()
	}
	return out
}

func (b *Bindings) Clear() {
	b.subjects.Clear()
	b.entities = make(map[string]*types.OrderedSet[string])
}

// NameSet holds scene entity names with no ontology counterpart. Lookups are
// exact after case folding.
type NameSet struct {
	names types.OrderedSet[string]
	folded map[string]string
}

func NewNameSet() *NameSet {
	return &NameSet{folded: make(map[string]string)}
}

// Add records name, reporting whether it was new.
func (n *NameSet) Add(name string) bool {
	_, added := n.names.Add(name)
	if added {
		if _, ok := n.folded[strings.ToLower(name)]; !ok {
			n.folded[strings.ToLower(name)] = name
		}
	}
	return added
}

// Match returns the first recorded name equal to query ignoring case.
func (n *NameSet) Match(query string) (string, bool) {
	name, ok := n.folded[strings.ToLower(strings.TrimSpace(query))]
	return name, ok
}

func (n *NameSet) Items() []string { return n.names.Items() }

func (n *NameSet) Len() int { return n.names.Len() }

func (n *NameSet) Clear() {
	n.names.Clear()
	n.folded = make(map[string]string)
}

// State is the mutable vocabulary a session accumulates: resolved synonyms,
// subject bindings and non-ontology entity names.
type State struct {
	Synonyms *SynonymMap
	Bindings *Bindings
	NonDB    *NameSet
}

func NewState() *State {
	return &State{
		Synonyms: NewSynonymMap(),
		Bindings: NewBindings(),
		NonDB:    NewNameSet(),
	}
}

// Reset empties every table.
func (s *State) Reset() {
	s.Synonyms.Clear()
	s.Bindings.Clear()
	s.NonDB.Clear()
}
