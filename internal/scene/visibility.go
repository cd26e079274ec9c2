// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package scene

// Directive shows or hides one model.
type Directive struct {
	ModelID string `json:"model_id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// Visibility computes the directives for a query result: every model under a
// hierarchy and every non-ontology model is hidden, then each display term
// shows the members of the hierarchy of that name or, failing that, the
// model of that name. Each model appears once with its final state.
func Visibility(g Graph, nonDB []string, display []string) []Directive {
	names := make(map[string]string)
	for _, m := range g.Models() {
		names[m.ID] = m.Name
	}

	var order []string
	state := make(map[string]bool)
	set := func(id string, visible bool) {
		if _, ok := names[id]; !ok {
			return
		}
		if _, ok := state[id]; !ok {
			order = append(order, id)
		}
		state[id] = visible
	}

	for _, h := range g.Hierarchies() {
		for _, id := range h.Members() {
			set(id, false)
		}
	}
	hiddenNames := make(map[string]struct{}, len(nonDB))
	for _, n := range nonDB {
		hiddenNames[n] = struct{}{}
	}
	for _, m := range g.Models() {
		if _, ok := hiddenNames[m.Name]; ok {
			set(m.ID, false)
		}
	}

	for _, term := range display {
		found := false
		for _, h := range g.Hierarchies() {
			if h.Name != term {
				continue
			}
			found = true
			for _, id := range h.Members() {
				set(id, true)
			}
		}
		if found {
			continue
		}
		for _, m := range g.Models() {
			if m.Name == term {
				set(m.ID, true)
			}
		}
	}

	out := make([]Directive, 0, len(order))
	for _, id := range order {
		out = append(out, Directive{ModelID: id, Name: names[id], Visible: state[id]})
	}
	return out
}

// Apply applies directives to g and returns how many matched a model.
func Apply(g Graph, directives []Directive) int {
	n := 0
	for _, d := range directives {
		if g.SetVisibility(d.ModelID, d.Visible) {
			n++
		}
	}
	return n
}
