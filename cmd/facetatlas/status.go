// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facetatlas/facetatlas/internal/server"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

func (c *cli) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server status",
		Long:  "Check the running server's health endpoint and display triple store availability.",
		RunE:  c.runStatus,
	}

	cmd.Flags().String("address", "", "server address to check (default server.listen)")

	return cmd
}

func (c *cli) runStatus(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("address")
	if addr == "" {
		addr = c.v.GetString("server.listen")
	}
	out := cmd.OutOrStdout()

	var body server.HealthBody
	if err := newAPIClient(addr).getJSON("/health", &body); err != nil {
		if faerr.HasCode(err, faerr.CodeCLIServerNotRunning) {
			_, _ = fmt.Fprintf(out, "Server at %s is not running (connection refused)\n", addr)
			return nil
		}
		_, _ = fmt.Fprintf(out, "Server at %s: %s\n", addr, err)
		return nil
	}

	_, _ = fmt.Fprintf(out, "Server at %s: %s\n", addr, body.Status)
	if body.Store != nil {
		_, _ = fmt.Fprintf(out, "Triple store: state=%s available=%t failures=%d\n",
			body.Store.State, body.Store.Available, body.Store.FailureCount)
	}
	return nil
}
