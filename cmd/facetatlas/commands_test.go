// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facetatlas/facetatlas/internal/query"
	"github.com/facetatlas/facetatlas/internal/scene"
	"github.com/facetatlas/facetatlas/internal/server"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
	"github.com/facetatlas/facetatlas/pkg/health"
)

const liverTriples = `# subject	predicate	object
Liver	subClassOf	Organ
Liver	arterial_supply	Hepatic_artery
`

const liverScene = `models:
  - {id: m1, name: Right lobe, visible: false}
  - {id: m2, name: Left lobe, visible: false}
  - {id: m3, name: Pointer, visible: true}
hierarchies:
  - {id: h1, name: liver, children: [m1, m2]}
`

// testEnv is a scratch config pointing the triple store and bindings file
// into a temp directory.
type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	cfg := fmt.Sprintf("storage:\n  path: %s\nscene:\n  bindings_path: %s\nlogging:\n  level: error\n",
		filepath.Join(dir, "ontology.db"), filepath.Join(dir, "bindings.yaml"))
	path := filepath.Join(dir, "facetatlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return testEnv{dir: dir, config: path}
}

func (e testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, append([]string{"--config", e.config}, args...)...)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetIn(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"query", "sync", "match", "bind", "import", "serve", "status", "version"} {
		assert.Contains(t, out, name)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "facetatlas")
}

func TestQueryCommand_RequiresConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := execute(t, "--config", "/nonexistent/path.yaml", "query", "liver")
	require.Error(t, err)
	assert.Equal(t, faerr.CodeConfigLoadReadFailure, faerr.CodeOf(err))
}

func TestQueryCommand_RequiresTerms(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "query")
	assert.Error(t, err)
}

func TestImportBindQuery(t *testing.T) {
	env := newTestEnv(t)
	triples := env.write(t, "liver.tsv", liverTriples)

	out, err := env.run(t, "import", triples)
	require.NoError(t, err)
	assert.Contains(t, out, "read 2 triples, added 2")

	out, err = env.run(t, "import", triples)
	require.NoError(t, err)
	assert.Contains(t, out, "added 0 (2 duplicates)")

	out, err = env.run(t, "bind", "liver", "VisualLiver")
	require.NoError(t, err)
	assert.Contains(t, out, "bound liver -> VisualLiver")
	assert.FileExists(t, filepath.Join(env.dir, "bindings.yaml"))

	out, err = env.run(t, "query", "liver")
	require.NoError(t, err)
	assert.Contains(t, out, "liver:")
	assert.Contains(t, out, "arterial_supply")
	assert.Contains(t, out, "display: VisualLiver")
	assert.NotContains(t, out, "triple store unavailable")

	out, err = env.run(t, "query", "--json", "liver")
	require.NoError(t, err)
	var result query.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "liver", result.Query)
	assert.Equal(t, []string{"VisualLiver"}, result.Display)
	assert.True(t, result.HasVisualResults)
}

func TestQueryCommand_StoreMissing(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "query", "liver")
	require.NoError(t, err)
	assert.Contains(t, out, "warning: triple store unavailable")
	assert.Contains(t, out, "nothing to display")
}

func TestSyncThenQueryDrivesScene(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "import", env.write(t, "liver.tsv", liverTriples))
	require.NoError(t, err)
	scenePath := env.write(t, "scene.yaml", liverScene)

	out, err := env.run(t, "sync", "--scene", scenePath)
	require.NoError(t, err)
	assert.Contains(t, out, "bound 1, candidates 0, non-ontology 1")

	saved := filepath.Join(env.dir, "after.yaml")
	_, err = env.run(t, "query", "--scene", scenePath, "--save-scene", saved, "liver")
	require.NoError(t, err)

	sc, err := scene.Load(saved)
	require.NoError(t, err)
	for id, want := range map[string]bool{"m1": true, "m2": true, "m3": false} {
		m, ok := sc.Model(id)
		require.True(t, ok, id)
		assert.Equal(t, want, m.Visible, id)
	}
}

func TestSaveSceneWithoutScene(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "query", "--save-scene", filepath.Join(env.dir, "out.yaml"), "liver")
	require.Error(t, err)
	assert.Equal(t, faerr.CodeCLIInputInvalid, faerr.CodeOf(err))
}

func TestBindCommand_Decline(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "bind", "none", "Lung")
	require.NoError(t, err)
	assert.Contains(t, out, "no change for Lung")
}

func TestMatchCommand_RequiresTerminal(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "match")
	require.Error(t, err)
	assert.Equal(t, faerr.CodeCLISetupFailure, faerr.CodeOf(err))
}

func TestStatusCommand(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(server.HealthBody{
			Status: "ok",
			Store:  &health.Metrics{Available: true, State: "closed"},
		})
	}))
	defer ts.Close()

	env := newTestEnv(t)
	out, err := env.run(t, "status", "--address", strings.TrimPrefix(ts.URL, "http://"))
	require.NoError(t, err)
	assert.Contains(t, out, ": ok")
	assert.Contains(t, out, "state=closed available=true failures=0")
}

func TestStatusCommand_NotRunning(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(ts.URL, "http://")
	ts.Close()

	env := newTestEnv(t)
	out, err := env.run(t, "status", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "is not running")
}

func TestQueryCommand_Remote(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/query", r.URL.Path)
		var body struct {
			Query string `json:"query"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(query.Result{
			Query:            body.Query,
			StoreAvailable:   true,
			HasVisualResults: true,
			Display:          []string{"VisualHeart"},
			Groups:           []query.Group{{Label: "heart", Items: []string{"Left_ventricle"}}},
		})
	}))
	defer ts.Close()

	env := newTestEnv(t)
	out, err := env.run(t, "query", "--remote", strings.TrimPrefix(ts.URL, "http://"), "heart")
	require.NoError(t, err)
	assert.Contains(t, out, "heart:\n  Left_ventricle")
	assert.Contains(t, out, "display: VisualHeart")
}

func TestQueryCommand_RemoteError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	env := newTestEnv(t)
	_, err := env.run(t, "query", "--remote", strings.TrimPrefix(ts.URL, "http://"), "heart")
	require.Error(t, err)
	assert.Equal(t, faerr.CodeCLIRequestFailure, faerr.CodeOf(err))
}
