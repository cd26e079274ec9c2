// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package ontology_test

import (
	"context"
	"testing"

	"github.com/facetatlas/facetatlas/internal/ontology"
	"github.com/facetatlas/facetatlas/internal/store"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_DirectSubject(t *testing.T) {
	gw := newCounting(tr("Liver", "subClassOf", "Organ"))
	r := ontology.NewResolver(gw, ontology.NewSynonymMap(), nil, nil)

	subject, err := r.Resolve(context.Background(), "liver")
	require.NoError(t, err)
	assert.Equal(t, "Liver", subject)
	assert.Equal(t, 1, gw.calls())
}

func TestResolver_SynonymFallbackIsMemoized(t *testing.T) {
	gw := newCounting(
		tr("Liver", "subClassOf", "Organ"),
		tr("Liver", "synonym", "Hepar"),
	)
	synonyms := ontology.NewSynonymMap()
	r := ontology.NewResolver(gw, synonyms, nil, nil)
	ctx := context.Background()

	subject, err := r.Resolve(ctx, "hepar")
	require.NoError(t, err)
	assert.Equal(t, "Liver", subject)
	// subject lookup, non_english_equivalent, synonym
	require.Equal(t, 3, gw.calls())
	assert.Equal(t, "non_english_equivalent", gw.filters[1].Predicate)
	assert.Equal(t, store.RoleObject, gw.filters[2].Role)

	subject, err = r.Resolve(ctx, "hepar")
	require.NoError(t, err)
	assert.Equal(t, "Liver", subject)
	assert.Equal(t, 4, gw.calls(), "second resolution is served from the synonym map")

	got, ok := synonyms.Get("hepar")
	assert.True(t, ok)
	assert.Equal(t, "Liver", got)
}

func TestResolver_NonEnglishBeforeSynonym(t *testing.T) {
	gw := newCounting(
		tr("Liver", "non_english_equivalent", "Foie"),
		tr("Liver_lobe", "synonym", "Foie"),
	)
	r := ontology.NewResolver(gw, ontology.NewSynonymMap(), nil, nil)

	subject, err := r.Resolve(context.Background(), "foie")
	require.NoError(t, err)
	assert.Equal(t, "Liver", subject)
	assert.Equal(t, 2, gw.calls())
}

func TestResolver_FailureIsNotMemoized(t *testing.T) {
	gw := newCounting(tr("Liver", "subClassOf", "Organ"))
	synonyms := ontology.NewSynonymMap()
	r := ontology.NewResolver(gw, synonyms, nil, nil)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "kidney")
	require.Error(t, err)
	assert.True(t, faerr.HasCode(err, faerr.CodeQueryResolveNotFound))
	first := gw.calls()

	_, err = r.Resolve(ctx, "kidney")
	require.Error(t, err)
	assert.Equal(t, 2*first, gw.calls())
	assert.Zero(t, synonyms.Len())
}

func TestResolver_FirstResolutionWins(t *testing.T) {
	synonyms := ontology.NewSynonymMap()
	assert.True(t, synonyms.Put("hepar", "Liver"))
	assert.False(t, synonyms.Put("hepar", "Other"))

	got, _ := synonyms.Get("hepar")
	assert.Equal(t, "Liver", got)
	assert.Equal(t, map[string]string{"hepar": "Liver"}, synonyms.Snapshot())
}

func TestResolver_UnavailableStore(t *testing.T) {
	r := ontology.NewResolver(nil, ontology.NewSynonymMap(), nil, nil)
	_, err := r.Resolve(context.Background(), "liver")
	require.Error(t, err)
	assert.True(t, faerr.IsNotFound(err))
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestResolver_EmptyTerm(t *testing.T) {
	r := ontology.NewResolver(newCounting(), ontology.NewSynonymMap(), nil, nil)
	_, err := r.Resolve(context.Background(), "  ")
	assert.True(t, faerr.IsInvalidInput(err))
}
