// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facetatlas/facetatlas/internal/query"
)

func (c *cli) newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query TERMS...",
		Short: "Resolve a query against the ontology",
		Long: "Resolve one or more terms joined by '+' or ','. A 'term;predicate' part\n" +
			"follows the named relation instead of the default recursion.",
		Example: "  facetatlas query 'liver;arterial supply'\n  facetatlas query heart+lung --json",
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.runQuery,
	}

	cmd.Flags().Bool("json", false, "print the result as JSON")
	cmd.Flags().String("scene", "", "scene file to drive (default scene.path)")
	cmd.Flags().String("save-scene", "", "write the scene with the new visibility to this path")
	cmd.Flags().String("remote", "", "send the query to a running server at host:port")

	return cmd
}

func (c *cli) runQuery(cmd *cobra.Command, args []string) error {
	raw := strings.Join(args, " ")
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
		var result query.Result
		if err := newAPIClient(remote).postJSON("/api/v1/query", map[string]string{"query": raw}, &result); err != nil {
			return err
		}
		return printResult(out, &result, asJSON)
	}

	cfg, logger, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	scenePath, _ := cmd.Flags().GetString("scene")
	app, err := WireApp(cmd.Context(), cfg, scenePath, logger)
	if err != nil {
		return err
	}

	result, err := app.Session.RunQuery(cmd.Context(), raw)
	if err != nil {
		return err
	}

	if savePath, _ := cmd.Flags().GetString("save-scene"); savePath != "" {
		if err := app.SaveScene(savePath); err != nil {
			return err
		}
		logger.Info("scene saved", "path", savePath, "directives", len(result.Directives))
	}

	return printResult(out, result, asJSON)
}

func printResult(w io.Writer, r *query.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	if !r.StoreAvailable {
		_, _ = fmt.Fprintln(w, "warning: triple store unavailable")
	}
	for _, g := range r.Groups {
		_, _ = fmt.Fprintf(w, "%s:\n", g.Label)
		for _, item := range g.Items {
			_, _ = fmt.Fprintf(w, "  %s\n", item)
		}
	}
	if len(r.Display) > 0 {
		_, _ = fmt.Fprintf(w, "display: %s\n", strings.Join(r.Display, ", "))
	}
	for _, f := range r.Failures {
		_, _ = fmt.Fprintf(w, "no results for %q (%s)\n", f.Query, f.Code)
	}
	if r.Truncated {
		_, _ = fmt.Fprintln(w, "warning: traversal depth limit reached, results truncated")
	}
	if !r.HasVisualResults {
		_, _ = fmt.Fprintln(w, "nothing to display")
	}
	return nil
}
