// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/facetatlas/facetatlas/internal/store"
	"github.com/facetatlas/facetatlas/internal/store/sqlite"
	"github.com/facetatlas/facetatlas/pkg/types"
	"github.com/stretchr/testify/require"
)

// testDir creates a temp directory for a test and removes it on cleanup.
func testDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "facetatlas-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// testDBPath returns a temp SQLite database path.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(testDir(t), name+".db")
}

// seedStore writes triples into a fresh database and returns its config.
func seedStore(t *testing.T, backend types.Backend, triples ...store.Triple) *store.StorageConfig {
	t.Helper()
	cfg := &store.StorageConfig{Backend: string(backend), Path: testDBPath(t, "ontology")}

	w, err := sqlite.OpenWriter(context.Background(), backend, cfg)
	require.NoError(t, err)
	_, err = w.PutTriples(context.Background(), triples)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return cfg
}
