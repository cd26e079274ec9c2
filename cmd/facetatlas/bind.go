// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) newBindCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "bind SUBJECT ENTITY",
		Short:   "Bind an ontology subject to a scene entity",
		Long:    "Record that ENTITY displays SUBJECT and save the bindings file. A SUBJECT of 'none' declines.",
		Example: "  facetatlas bind 'right lung' Right_Lung",
		Args:    cobra.ExactArgs(2),
		RunE:    c.runBind,
	}
}

func (c *cli) runBind(cmd *cobra.Command, args []string) error {
	cfg, logger, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	app, err := WireApp(cmd.Context(), cfg, "", logger)
	if err != nil {
		return err
	}

	bound, err := app.Session.Confirm(args[0], args[1])
	if err != nil {
		return err
	}
	if err := app.SaveBindings(); err != nil {
		return err
	}

	if bound {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "bound %s -> %s\n", args[0], args[1])
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no change for %s\n", args[1])
	}
	return nil
}
