// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package store

import "errors"

// Sentinel errors for store operations.
// These errors can be checked using errors.Is() for classification.
var (
	// ErrUnavailable indicates the triple store could not be opened.
	ErrUnavailable = errors.New("triple store unavailable")

	// ErrInvalidInput indicates the filter or triple is malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDatabase indicates a general database error occurred.
	ErrDatabase = errors.New("database error")

	// ErrClosed indicates a gateway was used after Close.
	ErrClosed = errors.New("gateway closed")
)
