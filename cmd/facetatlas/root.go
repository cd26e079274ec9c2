// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/facetatlas/facetatlas/internal/config"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

// cli carries state shared by the commands of one root command.
type cli struct {
	v *viper.Viper
}

// NewRootCmd creates the root facetatlas command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "facetatlas",
		Short:         "FacetAtlas: faceted anatomy ontology queries",
		Long:          "FacetAtlas resolves free-text anatomy queries against a triple store and drives the visibility of a scene of anatomical models.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initViper(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.newQueryCmd(),
		c.newSyncCmd(),
		c.newMatchCmd(),
		c.newBindCmd(),
		c.newImportCmd(),
		c.newServeCmd(),
		c.newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up Viper with defaults, env bindings, flag bindings, and
// optional config file so the standard precedence (flag > env > file >
// defaults) is handled uniformly.
func (c *cli) initViper(cmd *cobra.Command) error {
	v := c.v

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return faerr.Errorf(faerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		v.SetConfigName("facetatlas")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/facetatlas")
		v.AddConfigPath("/etc/facetatlas")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return faerr.Errorf(faerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return faerr.Errorf(faerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}
	config.WarnInsecurePermissions(v.ConfigFileUsed())

	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return faerr.Errorf(faerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}

// loadConfig decodes the resolved configuration and installs the logger it
// selects.
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.FromViper(c.v)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg.Logging, c.v.GetBool("verbose"), cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(cfg config.LoggingConfig, verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
