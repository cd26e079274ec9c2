// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package types

import (
	"strings"

	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

// Backend names a triple store driver.
type Backend string

const (
	// BackendSQLite uses the cgo mattn/go-sqlite3 driver.
	BackendSQLite Backend = "sqlite"
	// BackendModernc uses the pure-Go modernc.org/sqlite driver.
	BackendModernc Backend = "modernc"
)

// Valid reports whether b is a recognized backend.
func (b Backend) Valid() bool {
	switch b {
	case BackendSQLite, BackendModernc:
		return true
	default:
		return false
	}
}

// ParseBackend parses a case-insensitive string into a Backend.
func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"invalid storage backend: %q", s)
	}
	return b, nil
}
