// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package scene_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facetatlas/facetatlas/internal/ontology"
	"github.com/facetatlas/facetatlas/internal/scene"
	"github.com/facetatlas/facetatlas/internal/store"
)

func tr(s, p, o string) store.Triple {
	return store.Triple{Subject: s, Predicate: p, Object: o}
}

func abdomenStore() *store.Memory {
	return store.NewMemory(
		tr("Liver", "regional_part", "Right_lobe_of_the_liver"),
		tr("Right_lobe_of_the_liver", "regional_part_of", "Liver"),
		tr("Kidney", "member", "Renal_cortex"),
	)
}

func TestSynchronize(t *testing.T) {
	s, err := scene.Parse([]byte(`
models:
  - {id: m1, name: Right lobe}
  - {id: m2, name: Model_12_kidney}
  - {id: m3, name: Pointer}
  - {id: m4, name: Skin part}
hierarchies:
  - {id: h1, name: liver, children: [m1]}
  - {id: h2, name: vtkMRMLModelHierarchyNode3, model_id: m2}
  - {id: h3, name: right lobe of liver, model_id: m1}
  - {id: h4, name: skin, model_id: m4}
`))
	require.NoError(t, err)

	state := ontology.NewState()
	sync := scene.NewSynchronizer(abdomenStore(), state, ontology.DefaultSynonymFallbacks, nil)

	report, err := sync.Synchronize(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, report.StoreAvailable)

	assert.Equal(t, []scene.Binding{
		{Subject: "Liver", Entity: "liver"},
		{Subject: "Kidney", Entity: "vtkMRMLModelHierarchyNode3"},
	}, report.Bound)
	assert.Equal(t, []string{"liver"}, state.Bindings.Entities("Liver"))

	require.Len(t, report.Candidates, 1)
	assert.Equal(t, "right lobe of liver", report.Candidates[0].Entity)
	assert.Equal(t, "Right_lobe_of_liver", report.Candidates[0].Canonical)
	assert.Equal(t, []string{"Right_lobe_of_the_liver"}, report.Candidates[0].Subjects)
	assert.False(t, state.Bindings.Bound("Right_lobe_of_the_liver"))

	assert.Equal(t, []string{"skin", "Pointer"}, report.NonDB)
	_, ok := state.NonDB.Match("POINTER")
	assert.True(t, ok)
}

func TestSynchronize_StoreUnavailable(t *testing.T) {
	s, err := scene.Parse([]byte(abdomen))
	require.NoError(t, err)

	state := ontology.NewState()
	failing := store.OpenerFunc(func(context.Context) (store.Gateway, error) {
		return nil, errors.New("disk gone")
	})
	report, err := scene.NewSynchronizer(failing, state, nil, nil).Synchronize(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, report.StoreAvailable)
	assert.Len(t, report.NonDB, 5)
	assert.Equal(t, 5, state.NonDB.Len())
	assert.Zero(t, state.Bindings.Len())
}

func TestConfirm(t *testing.T) {
	state := ontology.NewState()
	sync := scene.NewSynchronizer(abdomenStore(), state, nil, nil)

	ok, err := sync.Confirm("none", "right lobe")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = sync.Confirm("Right_lobe_of_the_liver", "right lobe")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"right lobe"}, state.Bindings.Entities("Right_lobe_of_the_liver"))

	_, err = sync.Confirm("''", "right lobe")
	require.Error(t, err)
}

func TestBindingsFile(t *testing.T) {
	state := ontology.NewState()
	state.Bindings.Bind("Liver", "liver")
	state.Bindings.Bind("Liver", "liver outline")
	state.Bindings.Bind("Kidney", "kidney")
	state.NonDB.Add("Pointer")

	path := filepath.Join(t.TempDir(), "bindings.yaml")
	require.NoError(t, scene.SaveBindings(path, state))

	restored := ontology.NewState()
	n, err := scene.LoadBindings(path, restored)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"Kidney", "Liver"}, restored.Bindings.Subjects())
	assert.Equal(t, []string{"liver", "liver outline"}, restored.Bindings.Entities("Liver"))
	assert.Equal(t, []string{"Pointer"}, restored.NonDB.Items())
}
