// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/facetatlas/facetatlas/internal/query"
	"github.com/facetatlas/facetatlas/internal/server"
	"github.com/facetatlas/facetatlas/internal/store"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

const defaultOutPath = "api/openapi/spec.json"

func main() {
	outPath := defaultOutPath
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}
	if err := run(outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OpenAPI spec written to %s\n", outPath)
}

// run writes the OpenAPI document to outPath, creating its directory.
func run(outPath string) error {
	spec, err := generateSpec()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return faerr.Wrap(err, faerr.CodeCLISetupFailure, "creating output dir", faerr.FieldPath(outPath))
	}
	if err := os.WriteFile(outPath, spec, 0o644); err != nil {
		return faerr.Wrap(err, faerr.CodeCLISetupFailure, "writing spec", faerr.FieldPath(outPath))
	}
	return nil
}

// generateSpec registers every route against an empty in-memory session and
// returns the OpenAPI document huma derives from the handler types.
func generateSpec() ([]byte, error) {
	session, err := query.New(store.NewMemory(), query.DefaultConfig())
	if err != nil {
		return nil, faerr.Errorf(faerr.CodeCLISetupFailure, "creating session: %w", err)
	}

	srv, err := server.New(server.Config{
		ListenAddr: "127.0.0.1:0",
		Service:    session,
	})
	if err != nil {
		return nil, faerr.Errorf(faerr.CodeCLISetupFailure, "creating server: %w", err)
	}

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}
