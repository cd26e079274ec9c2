// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package sqlite_test

import (
	"context"
	"testing"

	"github.com/facetatlas/facetatlas/internal/store"
	"github.com/facetatlas/facetatlas/internal/store/sqlite"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
	"github.com/facetatlas/facetatlas/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anatomy = []store.Triple{
	{Subject: "Liver", Predicate: "subClassOf", Object: "Organ"},
	{Subject: "Liver", Predicate: "arterial_supply", Object: "Hepatic_artery"},
	{Subject: "Foie", Predicate: "non_english_equivalent", Object: "foie"},
	{Subject: "Left_kidney", Predicate: "subClassOf", Object: "Kidney"},
	{Subject: "Crohn's_disease", Predicate: "comment", Object: "inflammatory"},
}

func backends() []types.Backend {
	return []types.Backend{types.BackendSQLite, types.BackendModernc}
}

func TestGateway_ExecuteRoles(t *testing.T) {
	for _, backend := range backends() {
		t.Run(string(backend), func(t *testing.T) {
			ctx := context.Background()
			cfg := seedStore(t, backend, anatomy...)

			gw, err := sqlite.Open(ctx, backend, cfg)
			require.NoError(t, err)
			defer func() { _ = gw.Close() }()

			rows, err := gw.Execute(ctx, store.Filter{Term: "Liver"})
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "subClassOf", rows[0].Predicate, "rows keep insertion order")

			rows, err = gw.Execute(ctx, store.Filter{Term: "Kidney", Role: store.RoleObject})
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "Left_kidney", rows[0].Subject)

			rows, err = gw.Execute(ctx, store.Filter{Term: "Liver", Role: store.RoleSubject, Predicate: "arterial_supply"})
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "Hepatic_artery", rows[0].Object)

			rows, err = gw.Execute(ctx, store.Filter{Term: "Crohn's_disease", Role: store.RoleSubject})
			require.NoError(t, err)
			assert.Len(t, rows, 1, "quotes in terms are bound, not spliced")

			rows, err = gw.Execute(ctx, store.Filter{Term: "Spleen"})
			require.NoError(t, err)
			assert.Empty(t, rows)
		})
	}
}

func TestGateway_ExecuteSubjectLike(t *testing.T) {
	for _, backend := range backends() {
		t.Run(string(backend), func(t *testing.T) {
			ctx := context.Background()
			cfg := seedStore(t, backend, anatomy...)

			gw, err := sqlite.Open(ctx, backend, cfg)
			require.NoError(t, err)
			defer func() { _ = gw.Close() }()

			rows, err := gw.Execute(ctx, store.Filter{SubjectLike: []string{"left%", "%_liver"}})
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "Left_kidney", rows[0].Subject)
		})
	}
}

func TestGateway_ExecuteRejectsEmptyFilter(t *testing.T) {
	ctx := context.Background()
	cfg := seedStore(t, types.BackendSQLite, anatomy...)
	gw, err := sqlite.Open(ctx, types.BackendSQLite, cfg)
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	_, err = gw.Execute(ctx, store.Filter{})
	assert.True(t, faerr.IsInvalidInput(err))
}

func TestOpen_MissingFileIsUnavailable(t *testing.T) {
	for _, backend := range backends() {
		t.Run(string(backend), func(t *testing.T) {
			cfg := &store.StorageConfig{Path: testDBPath(t, "absent")}
			_, err := sqlite.Open(context.Background(), backend, cfg)
			require.Error(t, err)
			assert.True(t, faerr.IsUnavailable(err))
			assert.ErrorIs(t, err, store.ErrUnavailable)
		})
	}
}

func TestOpen_MissingTableIsUnavailable(t *testing.T) {
	cfg := seedStore(t, types.BackendSQLite)
	cfg.Table = "other"

	_, err := sqlite.Open(context.Background(), types.BackendSQLite, cfg)
	require.Error(t, err)
	assert.True(t, faerr.IsUnavailable(err))
}

func TestOpen_InvalidTableName(t *testing.T) {
	cfg := &store.StorageConfig{Path: testDBPath(t, "x"), Table: "resources; DROP TABLE x"}
	_, err := sqlite.OpenWriter(context.Background(), types.BackendSQLite, cfg)
	require.Error(t, err)
	assert.True(t, faerr.IsInvalidInput(err))
}

func TestPutTriples_Idempotent(t *testing.T) {
	ctx := context.Background()
	cfg := &store.StorageConfig{Path: testDBPath(t, "import")}

	w, err := sqlite.OpenWriter(ctx, types.BackendSQLite, cfg)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	n, err := w.PutTriples(ctx, anatomy)
	require.NoError(t, err)
	assert.Equal(t, len(anatomy), n)

	n, err = w.PutTriples(ctx, anatomy[:2])
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPutTriples_RejectsEmptyPosition(t *testing.T) {
	ctx := context.Background()
	cfg := &store.StorageConfig{Path: testDBPath(t, "bad")}

	w, err := sqlite.OpenWriter(ctx, types.BackendSQLite, cfg)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	_, err = w.PutTriples(ctx, []store.Triple{{Subject: "A", Predicate: "", Object: "B"}})
	assert.True(t, faerr.IsInvalidInput(err))
}

func TestRegisteredBackends(t *testing.T) {
	for _, backend := range backends() {
		t.Run(string(backend), func(t *testing.T) {
			cfg := seedStore(t, backend, anatomy...)
			gw, err := store.NewOpener(*cfg).Open(context.Background())
			require.NoError(t, err)
			require.NoError(t, gw.Close())
		})
	}
}
