// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package sqlite

import (
	"context"

	"github.com/facetatlas/facetatlas/internal/store"
	"github.com/facetatlas/facetatlas/pkg/types"
)

func init() {
	for _, b := range []types.Backend{types.BackendSQLite, types.BackendModernc} {
		store.RegisterBackend(string(b), gatewayFactory(b), writerFactory(b))
	}
}

func gatewayFactory(b types.Backend) store.GatewayFactory {
	return func(ctx context.Context, cfg *store.StorageConfig) (store.Gateway, error) {
		return Open(ctx, b, cfg)
	}
}

func writerFactory(b types.Backend) store.WriterFactory {
	return func(ctx context.Context, cfg *store.StorageConfig) (store.Writer, error) {
		return OpenWriter(ctx, b, cfg)
	}
}
