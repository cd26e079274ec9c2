// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facetatlas/facetatlas/internal/store"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_String(t *testing.T) {
	tests := []struct {
		name   string
		filter store.Filter
		want   string
	}{
		{
			name:   "either role",
			filter: store.Filter{Term: "Liver"},
			want:   "(subject = 'Liver' OR object = 'Liver')",
		},
		{
			name:   "subject role with predicate",
			filter: store.Filter{Term: "Liver", Role: store.RoleSubject, Predicate: "subClassOf"},
			want:   "subject = 'Liver' AND predicate = 'subClassOf'",
		},
		{
			name:   "object role escapes quotes",
			filter: store.Filter{Term: "Crohn's_disease", Role: store.RoleObject},
			want:   "object = 'Crohn''s_disease'",
		},
		{
			name:   "wildcard search",
			filter: store.Filter{SubjectLike: []string{"Left%", "%kidney"}},
			want:   "subject LIKE 'Left%' OR subject LIKE '%kidney'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.String())
		})
	}
}

func TestFilter_WhereArgs(t *testing.T) {
	clause, args := store.Filter{Term: "Liver", Predicate: "synonym"}.Where()
	assert.Equal(t, "(subject = ? OR object = ?) AND predicate = ?", clause)
	assert.Equal(t, []any{"Liver", "Liver", "synonym"}, args)
}

func TestLike(t *testing.T) {
	tests := []struct {
		pattern, s string
		want       bool
	}{
		{"Left%", "Left_kidney", true},
		{"left%", "Left_kidney", true},
		{"%kidney", "Left_kidney", true},
		{"%kidney", "Kidney_capsule", false},
		{"L_ver", "Liver", true},
		{"L_ver", "Lver", false},
		{"%", "", true},
		{"", "", true},
		{"a%b%c", "aXXbYYc", true},
		{"a%b%c", "aXXcYYb", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, store.Like(tt.pattern, tt.s), "%q LIKE %q", tt.s, tt.pattern)
	}
}

func TestMemory_ExecuteFollowsRoleAndPredicate(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory(
		store.Triple{Subject: "Liver", Predicate: "subClassOf", Object: "Organ"},
		store.Triple{Subject: "Liver", Predicate: "arterial_supply", Object: "Hepatic_artery"},
		store.Triple{Subject: "Hepatic_artery", Predicate: "synonym", Object: "liver"},
	)

	rows, err := m.Execute(ctx, store.Filter{Term: "Liver"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = m.Execute(ctx, store.Filter{Term: "Organ", Role: store.RoleObject})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Liver", rows[0].Subject)

	rows, err = m.Execute(ctx, store.Filter{Term: "Liver", Role: store.RoleSubject, Predicate: "arterial_supply"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Hepatic_artery", rows[0].Object)

	rows, err = m.Execute(ctx, store.Filter{Term: "Spleen"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMemory_PutTriplesIgnoresDuplicates(t *testing.T) {
	m := store.NewMemory()
	tr := store.Triple{Subject: "A", Predicate: "p", Object: "B"}
	n, err := m.PutTriples(context.Background(), []store.Triple{tr, tr})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpenGateway_UnknownBackend(t *testing.T) {
	_, err := store.OpenGateway(context.Background(), &store.StorageConfig{Backend: "unknown"})
	require.Error(t, err)
	assert.True(t, faerr.HasCode(err, faerr.CodeStoreBackendUnsupported))
	assert.Contains(t, err.Error(), "unknown")
}

func TestRegisterBackend_RoutesToFactory(t *testing.T) {
	mem := store.NewMemory(store.Triple{Subject: "A", Predicate: "p", Object: "B"})
	store.RegisterBackend("test-memory",
		func(context.Context, *store.StorageConfig) (store.Gateway, error) { return mem, nil },
		nil,
	)

	opener := store.NewOpener(store.StorageConfig{Backend: "test-memory"})
	gw, err := opener.Open(context.Background())
	require.NoError(t, err)
	rows, err := gw.Execute(context.Background(), store.Filter{Term: "A"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = store.OpenWriter(context.Background(), &store.StorageConfig{Backend: "test-memory"})
	assert.True(t, faerr.HasCode(err, faerr.CodeStoreBackendUnsupported))
}

func TestBreakerOpener_TripsAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	failing := store.OpenerFunc(func(context.Context) (store.Gateway, error) {
		calls++
		return nil, errors.New("unable to open database file")
	})

	b := store.NewBreakerOpener("test", failing, store.BreakerConfig{MaxFailures: 2, Timeout: time.Minute}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := b.Open(ctx)
		require.Error(t, err)
		assert.False(t, faerr.IsUnavailable(err))
	}

	_, err := b.Open(ctx)
	require.Error(t, err)
	assert.True(t, faerr.IsUnavailable(err))
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.Equal(t, 2, calls, "open breaker must not reach the store")

	h := b.Health()
	assert.False(t, h.Available)
	assert.NotNil(t, h.LastFailureAt)
	assert.NotNil(t, h.CooldownUntil)
}

func TestBreakerOpener_PassesThroughGateway(t *testing.T) {
	mem := store.NewMemory()
	b := store.NewBreakerOpener("ok", mem, store.BreakerConfig{}, nil)

	gw, err := b.Open(context.Background())
	require.NoError(t, err)
	assert.Same(t, mem, gw)
	assert.True(t, b.Health().Available)
}
