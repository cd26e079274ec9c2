// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facetatlas/facetatlas/internal/store"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

func TestReadTriples_Batches(t *testing.T) {
	in := "# header\nA\tp\tB\nB\tp\tC\n\nC\tp\tD\nD\tp\tE\nE\tp\tF\n"

	var sizes []int
	var all []store.Triple
	err := readTriples(strings.NewReader(in), 2, func(batch []store.Triple) error {
		sizes = append(sizes, len(batch))
		all = append(all, batch...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, sizes)
	require.Len(t, all, 5)
	assert.Equal(t, store.Triple{Subject: "A", Predicate: "p", Object: "B"}, all[0])
	assert.Equal(t, store.Triple{Subject: "E", Predicate: "p", Object: "F"}, all[4])
}

func TestReadTriples_TrimsFields(t *testing.T) {
	var got []store.Triple
	err := readTriples(strings.NewReader("Liver \t arterial_supply\tHepatic_artery\n"), 10, func(batch []store.Triple) error {
		got = append(got, batch...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []store.Triple{{Subject: "Liver", Predicate: "arterial_supply", Object: "Hepatic_artery"}}, got)
}

func TestReadTriples_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"two fields", "A\tp\n"},
		{"four fields", "A\tp\tB\tC\n"},
		{"empty field", "A\t\tB\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := readTriples(strings.NewReader(tt.in), 10, func([]store.Triple) error { return nil })
			require.Error(t, err)
			assert.Equal(t, faerr.CodeCLIInputInvalid, faerr.CodeOf(err))
		})
	}
}

func TestReadTriples_PutError(t *testing.T) {
	boom := errors.New("boom")
	err := readTriples(strings.NewReader("A\tp\tB\n"), 10, func([]store.Triple) error { return boom })
	assert.ErrorIs(t, err, boom)
}
