// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package store

import (
	"context"
	"sync"

	faerr "github.com/facetatlas/facetatlas/pkg/errors"
	"github.com/facetatlas/facetatlas/pkg/types"
)

// GatewayFactory opens a read-only Gateway for cfg.
type GatewayFactory func(ctx context.Context, cfg *StorageConfig) (Gateway, error)

// WriterFactory opens cfg for writing, creating the schema when missing.
type WriterFactory func(ctx context.Context, cfg *StorageConfig) (Writer, error)

type backend struct {
	gateway GatewayFactory
	writer  WriterFactory
}

var (
	backends   = map[string]backend{}
	backendsMu sync.RWMutex
)

// RegisterBackend registers factory functions for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, gw GatewayFactory, w WriterFactory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = backend{gateway: gw, writer: w}
}

// resolveBackend returns the effective backend name, defaulting to "sqlite".
func resolveBackend(cfg *StorageConfig) string {
	if cfg.Backend == "" {
		return string(types.BackendSQLite)
	}
	return cfg.Backend
}

func lookup(cfg *StorageConfig) (backend, error) {
	name := resolveBackend(cfg)

	backendsMu.RLock()
	b, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return backend{}, faerr.New(faerr.CodeStoreBackendUnsupported,
			"unsupported storage backend: "+name, faerr.Field("backend", name))
	}
	return b, nil
}

// OpenGateway opens a read-only gateway using the configured backend.
func OpenGateway(ctx context.Context, cfg *StorageConfig) (Gateway, error) {
	b, err := lookup(cfg)
	if err != nil {
		return nil, err
	}
	return b.gateway(ctx, cfg)
}

// OpenWriter opens the configured store for writing.
func OpenWriter(ctx context.Context, cfg *StorageConfig) (Writer, error) {
	b, err := lookup(cfg)
	if err != nil {
		return nil, err
	}
	if b.writer == nil {
		return nil, faerr.New(faerr.CodeStoreBackendUnsupported,
			"backend is read-only: "+resolveBackend(cfg))
	}
	return b.writer(ctx, cfg)
}

// NewOpener returns an Opener bound to a copy of cfg.
func NewOpener(cfg StorageConfig) Opener {
	return OpenerFunc(func(ctx context.Context) (Gateway, error) {
		return OpenGateway(ctx, &cfg)
	})
}
