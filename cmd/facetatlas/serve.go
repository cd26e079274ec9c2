// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/facetatlas/facetatlas/internal/server"
)

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Load configuration, wire the query session and serve the REST API, /health and /metrics.",
		RunE:  c.runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	cmd.Flags().String("scene", "", "scene file to drive (default scene.path)")

	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	if f := cmd.Flags().Lookup("listen"); f != nil && f.Changed {
		c.v.Set("server.listen", f.Value.String())
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

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Server.Listen,
		CORSOrigins: cfg.Server.CORSOrigins,
		Service:     app.Session,
		Health:      app.Breaker,
		Gatherer:    app.Registry,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting facetatlas on %s\n", cfg.Server.Listen)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	return app.SaveBindings()
}
