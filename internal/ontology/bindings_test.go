// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package ontology_test

import (
	"testing"

	"github.com/facetatlas/facetatlas/internal/ontology"
	"github.com/stretchr/testify/assert"
)

func TestBindings_MultiValued(t *testing.T) {
	b := ontology.NewBindings()

	assert.True(t, b.Bind("Kidney", "Left_kidney_model"))
	assert.True(t, b.Bind("Kidney", "Right_kidney_model"))
	assert.False(t, b.Bind("Kidney", "Left_kidney_model"))
	assert.True(t, b.Bind("Liver", "VisualLiver"))

	assert.Equal(t, []string{"Left_kidney_model", "Right_kidney_model"}, b.Entities("Kidney"))
	assert.Equal(t, []string{"Kidney", "Liver"}, b.Subjects())
	assert.True(t, b.Bound("Liver"))
	assert.False(t, b.Bound("Spleen"))
	assert.Nil(t, b.Entities("Spleen"))
	assert.Equal(t, 2, b.Len())

	b.Clear()
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Snapshot())
}

func TestNameSet_CaseInsensitiveExactMatch(t *testing.T) {
	n := ontology.NewNameSet()
	assert.True(t, n.Add("Tumor_segmentation"))
	assert.False(t, n.Add("Tumor_segmentation"))

	name, ok := n.Match("tumor_segmentation")
	assert.True(t, ok)
	assert.Equal(t, "Tumor_segmentation", name)

	_, ok = n.Match("tumor")
	assert.False(t, ok, "matching is exact, not fuzzy")
}

func TestState_Reset(t *testing.T) {
	s := ontology.NewState()
	s.Synonyms.Put("hepar", "Liver")
	s.Bindings.Bind("Liver", "VisualLiver")
	s.NonDB.Add("Probe")

	s.Reset()
	assert.Zero(t, s.Synonyms.Len())
	assert.Zero(t, s.Bindings.Len())
	assert.Zero(t, s.NonDB.Len())
}
