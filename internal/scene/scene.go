// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

// Package scene models the visual scene a query drives: models that can be
// shown or hidden, grouped under named hierarchy nodes.
package scene

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

// Model is a displayable scene entity.
type Model struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Visible bool   `yaml:"visible" json:"visible"`
}

// Hierarchy groups models under an anatomical name. A leaf hierarchy has no
// children and stands for its associated model.
type Hierarchy struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	ModelID  string   `yaml:"model_id,omitempty" json:"model_id,omitempty"`
	Children []string `yaml:"children,omitempty" json:"children,omitempty"`
}

// Members returns the IDs of the models the hierarchy controls.
func (h Hierarchy) Members() []string {
	if len(h.Children) == 0 {
		if h.ModelID == "" {
			return nil
		}
		return []string{h.ModelID}
	}
	return h.Children
}

// Graph is the scene surface the query engine reads and drives.
type Graph interface {
	Models() []Model
	Hierarchies() []Hierarchy
	// SetVisibility shows or hides the model with the given ID and reports
	// whether the model exists.
	SetVisibility(id string, visible bool) bool
}

// Scene is a Graph held in memory and persisted as YAML.
type Scene struct {
	ModelList     []Model     `yaml:"models" json:"models"`
	HierarchyList []Hierarchy `yaml:"hierarchies" json:"hierarchies"`
}

var _ Graph = (*Scene)(nil)

func (s *Scene) Models() []Model { return s.ModelList }

func (s *Scene) Hierarchies() []Hierarchy { return s.HierarchyList }

func (s *Scene) SetVisibility(id string, visible bool) bool {
	for i := range s.ModelList {
		if s.ModelList[i].ID == id {
			s.ModelList[i].Visible = visible
			return true
		}
	}
	return false
}

// Model returns the model with the given ID.
func (s *Scene) Model(id string) (Model, bool) {
	for _, m := range s.ModelList {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// Visible returns the names of the visible models in scene order.
func (s *Scene) Visible() []string {
	var out []string
	for _, m := range s.ModelList {
		if m.Visible {
			out = append(out, m.Name)
		}
	}
	return out
}

// Validate checks identifiers are present and unique and that hierarchies
// reference known models.
func (s *Scene) Validate() error {
	models := make(map[string]struct{}, len(s.ModelList))
	for _, m := range s.ModelList {
		if strings.TrimSpace(m.ID) == "" || strings.TrimSpace(m.Name) == "" {
			return faerr.New(faerr.CodeSceneParseInvalid, "model needs an id and a name", faerr.Field("model", m.ID))
		}
		if _, dup := models[m.ID]; dup {
			return faerr.New(faerr.CodeSceneParseInvalid, "duplicate model id "+m.ID)
		}
		models[m.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(s.HierarchyList))
	for _, h := range s.HierarchyList {
		if strings.TrimSpace(h.ID) == "" || strings.TrimSpace(h.Name) == "" {
			return faerr.New(faerr.CodeSceneParseInvalid, "hierarchy needs an id and a name", faerr.Field("hierarchy", h.ID))
		}
		if _, dup := seen[h.ID]; dup {
			return faerr.New(faerr.CodeSceneParseInvalid, "duplicate hierarchy id "+h.ID)
		}
		seen[h.ID] = struct{}{}
		for _, id := range append(h.Children, h.ModelID) {
			if id == "" {
				continue
			}
			if _, ok := models[id]; !ok {
				return faerr.New(faerr.CodeSceneParseInvalid,
					"hierarchy "+h.ID+" references unknown model "+id)
			}
		}
	}
	return nil
}

// Parse decodes and validates a YAML scene document.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, faerr.Errorf(faerr.CodeSceneParseInvalid, "parsing scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a YAML scene document from path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faerr.Wrap(err, faerr.CodeSceneLoadFailure, "reading scene", faerr.FieldPath(path))
	}
	return Parse(data)
}

// Save writes the scene, including current visibility, to path.
func (s *Scene) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return faerr.Errorf(faerr.CodeSceneSaveFailure, "encoding scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return faerr.Wrap(err, faerr.CodeSceneSaveFailure, "writing scene", faerr.FieldPath(path))
	}
	return nil
}
