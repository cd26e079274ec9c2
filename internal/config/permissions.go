// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

// WarnInsecurePermissions logs a warning when the config file can be
// written by group or other users, who could then point storage.path at a
// database of their choosing. Startup is not failed.
func WarnInsecurePermissions(path string) {
	if path == "" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("could not stat config file for permission check", "path", path, "error", err)
		return
	}

	const groupWrite fs.FileMode = 0o020
	const otherWrite fs.FileMode = 0o002

	if info.Mode().Perm()&(groupWrite|otherWrite) != 0 {
		slog.Warn("config file is writable by other users",
			"path", path,
			"mode", info.Mode(),
			"recommended", "0644",
		)
	}
}
