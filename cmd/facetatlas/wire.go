// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/facetatlas/facetatlas/internal/config"
	"github.com/facetatlas/facetatlas/internal/ontology"
	"github.com/facetatlas/facetatlas/internal/query"
	"github.com/facetatlas/facetatlas/internal/scene"
	"github.com/facetatlas/facetatlas/internal/store"
	_ "github.com/facetatlas/facetatlas/internal/store/sqlite" // register sqlite backends
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

// App holds all wired subsystems and manages their lifecycle.
type App struct {
	Config   *config.Config
	Session  *query.Session
	Breaker  *store.BreakerOpener
	Scene    *scene.Scene
	Registry *prometheus.Registry

	logger *slog.Logger
}

// WireApp creates the store opener, session and scene from cfg.
// scenePath overrides scene.path when non-empty.
func WireApp(_ context.Context, cfg *config.Config, scenePath string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	classifier, err := ontology.NewClassifier(cfg.PredicateSets())
	if err != nil {
		return nil, faerr.Wrapf(err, faerr.CodeCLISetupFailure, "building predicate classifier")
	}

	breaker := store.NewBreakerOpener("triple-store", store.NewOpener(cfg.StoreConfig()), store.BreakerConfig{
		MaxFailures: cfg.Storage.Breaker.MaxFailures,
		Timeout:     cfg.Storage.Breaker.Timeout,
	}, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	session, err := query.New(breaker, query.Config{
		Classifier:       classifier,
		SynonymFallbacks: cfg.Predicates.SynonymFallbacks,
		DisplayMarker:    cfg.Predicates.DisplayMarker,
		MaxDepth:         cfg.Traversal.MaxDepth,
		CacheEnabled:     cfg.Cache.Enabled,
		CacheCapacity:    cfg.Cache.Capacity,
		HistoryLimit:     cfg.History.MaxEntries,
	}, query.WithLogger(logger), query.WithMetrics(reg))
	if err != nil {
		return nil, faerr.Wrapf(err, faerr.CodeCLISetupFailure, "creating query session")
	}

	app := &App{
		Config:   cfg,
		Session:  session,
		Breaker:  breaker,
		Registry: reg,
		logger:   logger,
	}

	if scenePath == "" {
		scenePath = cfg.Scene.Path
	}
	if scenePath != "" {
		sc, err := scene.Load(scenePath)
		if err != nil {
			return nil, err
		}
		app.Scene = sc
		session.SetScene(sc)
		logger.Debug("scene loaded", "path", scenePath, "models", len(sc.Models()))
	}

	if path := cfg.Scene.BindingsPath; path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			n, err := session.LoadBindings(path)
			if err != nil {
				return nil, err
			}
			logger.Debug("bindings loaded", "path", path, "count", n)
		}
	}

	return app, nil
}

// SaveBindings writes the session bindings to scene.bindings_path when set.
func (a *App) SaveBindings() error {
	path := a.Config.Scene.BindingsPath
	if path == "" {
		return nil
	}
	if err := a.Session.SaveBindings(path); err != nil {
		return err
	}
	a.logger.Debug("bindings saved", "path", path)
	return nil
}

// SaveScene writes the scene, with its current visibility, back to path.
func (a *App) SaveScene(path string) error {
	if a.Scene == nil {
		return faerr.New(faerr.CodeCLIInputInvalid, "no scene loaded; set scene.path or pass --scene")
	}
	return a.Scene.Save(path)
}
