// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Bind scene entities to ontology subjects",
		Long: "Match every hierarchy of the scene against the ontology. Exact matches are\n" +
			"bound and saved to scene.bindings_path; fuzzy candidates are listed for\n" +
			"'facetatlas match' or 'facetatlas bind'.",
		RunE: c.runSync,
	}

	cmd.Flags().String("scene", "", "scene file to synchronize (default scene.path)")

	return cmd
}

func (c *cli) runSync(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	scenePath, _ := cmd.Flags().GetString("scene")
	app, err := WireApp(cmd.Context(), cfg, scenePath, logger)
	if err != nil {
		return err
	}

	report, err := app.Session.Synchronize(cmd.Context())
	if err != nil {
		return err
	}
	if err := app.SaveBindings(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !report.StoreAvailable {
		_, _ = fmt.Fprintln(out, "warning: triple store unavailable, every model marked non-ontology")
	}
	_, _ = fmt.Fprintf(out, "bound %d, candidates %d, non-ontology %d\n",
		len(report.Bound), len(report.Candidates), len(report.NonDB))
	for _, b := range report.Bound {
		_, _ = fmt.Fprintf(out, "  %s -> %s\n", b.Subject, b.Entity)
	}
	for _, cand := range report.Candidates {
		_, _ = fmt.Fprintf(out, "  ? %s: %s\n", cand.Entity, strings.Join(cand.Subjects, ", "))
	}
	return nil
}
