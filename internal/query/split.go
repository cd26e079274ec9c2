// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package query

import "strings"

// Split breaks a compound query on '+' and ',' into lower-cased, trimmed
// sub-queries. Empty parts are dropped.
func Split(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == '+' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// GroupLabel is the label named results of sub-query q are reported under.
func GroupLabel(q string) string {
	return strings.ReplaceAll(q, ";", "-")
}
