// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package scene_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facetatlas/facetatlas/internal/scene"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

const abdomen = `
models:
  - {id: m1, name: Right lobe, visible: true}
  - {id: m2, name: Left lobe, visible: true}
  - {id: m3, name: Model_12_kidney, visible: true}
  - {id: m4, name: Pointer, visible: true}
  - {id: m5, name: Spleen, visible: false}
hierarchies:
  - {id: h1, name: liver, children: [m1, m2]}
  - {id: h2, name: vtkMRMLModelHierarchyNode3, model_id: m3}
`

func parseAbdomen(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.Parse([]byte(abdomen))
	require.NoError(t, err)
	return s
}

func TestParse(t *testing.T) {
	s := parseAbdomen(t)
	assert.Len(t, s.Models(), 5)
	assert.Len(t, s.Hierarchies(), 2)
	assert.Equal(t, []string{"m1", "m2"}, s.Hierarchies()[0].Members())
	assert.Equal(t, []string{"m3"}, s.Hierarchies()[1].Members())
}

func TestParse_RejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "models: [\n"},
		{"missing name", "models:\n  - {id: m1}\n"},
		{"duplicate model", "models:\n  - {id: m1, name: a}\n  - {id: m1, name: b}\n"},
		{"unknown child", "models:\n  - {id: m1, name: a}\nhierarchies:\n  - {id: h1, name: x, children: [m9]}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scene.Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Equal(t, faerr.CodeSceneParseInvalid, faerr.CodeOf(err))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := scene.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, faerr.CodeSceneLoadFailure, faerr.CodeOf(err))
}

func TestSave_KeepsVisibility(t *testing.T) {
	s := parseAbdomen(t)
	require.True(t, s.SetVisibility("m5", true))
	require.False(t, s.SetVisibility("m9", true))

	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, s.Save(path))

	loaded, err := scene.Load(path)
	require.NoError(t, err)
	m, ok := loaded.Model("m5")
	require.True(t, ok)
	assert.True(t, m.Visible)
}

func TestVisibility(t *testing.T) {
	s := parseAbdomen(t)

	got := scene.Visibility(s, []string{"Pointer"}, []string{"liver", "Spleen"})
	assert.Equal(t, []scene.Directive{
		{ModelID: "m1", Name: "Right lobe", Visible: true},
		{ModelID: "m2", Name: "Left lobe", Visible: true},
		{ModelID: "m3", Name: "Model_12_kidney", Visible: false},
		{ModelID: "m4", Name: "Pointer", Visible: false},
		{ModelID: "m5", Name: "Spleen", Visible: true},
	}, got)

	assert.Equal(t, 5, scene.Apply(s, got))
	assert.Equal(t, []string{"Right lobe", "Left lobe", "Spleen"}, s.Visible())
}

func TestVisibility_NoDisplayHidesHierarchies(t *testing.T) {
	s := parseAbdomen(t)
	scene.Apply(s, scene.Visibility(s, nil, nil))
	assert.Equal(t, []string{"Pointer"}, s.Visible())
}
