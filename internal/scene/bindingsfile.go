// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package scene

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/facetatlas/facetatlas/internal/ontology"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

// BindingsFile is the persisted form of confirmed bindings and non-ontology
// names, so a scene only needs to be matched once.
type BindingsFile struct {
	Bindings map[string][]string `yaml:"bindings"`
	NonDB    []string            `yaml:"non_db,omitempty"`
}

// SaveBindings writes the state's bindings and non-ontology names to path.
func SaveBindings(path string, state *ontology.State) error {
	f := BindingsFile{
		Bindings: state.Bindings.Snapshot(),
		NonDB:    state.NonDB.Items(),
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return faerr.Errorf(faerr.CodeSceneSaveFailure, "encoding bindings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return faerr.Wrap(err, faerr.CodeSceneSaveFailure, "writing bindings", faerr.FieldPath(path))
	}
	return nil
}

// LoadBindings merges the bindings file at path into state. Subjects are
// applied in sorted order.
func LoadBindings(path string, state *ontology.State) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, faerr.Wrap(err, faerr.CodeSceneLoadFailure, "reading bindings", faerr.FieldPath(path))
	}
	var f BindingsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, faerr.Errorf(faerr.CodeSceneParseInvalid, "parsing bindings: %w", err)
	}

	subjects := make([]string, 0, len(f.Bindings))
	for s := range f.Bindings {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	n := 0
	for _, s := range subjects {
		for _, e := range f.Bindings[s] {
			if state.Bindings.Bind(s, e) {
				n++
			}
		}
	}
	for _, name := range f.NonDB {
		state.NonDB.Add(name)
	}
	return n, nil
}
