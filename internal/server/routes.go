// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/facetatlas/facetatlas/internal/cache"
	"github.com/facetatlas/facetatlas/internal/query"
	"github.com/facetatlas/facetatlas/internal/scene"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "run-query",
		Method:      http.MethodPost,
		Path:        "/api/v1/query",
		Summary:     "Run a compound ontology query",
		Tags:        []string{"query"},
	}, s.handleQuery)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/history",
		Summary:     "List past queries",
		Tags:        []string{"query"},
	}, s.handleListHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/history/{id}",
		Summary:     "Get a past query result",
		Tags:        []string{"query"},
	}, s.handleGetHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "sync-scene",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync",
		Summary:     "Bind scene entities to ontology subjects",
		Tags:        []string{"scene"},
	}, s.handleSync)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-pending",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/pending",
		Summary:     "List fuzzy matches awaiting confirmation",
		Tags:        []string{"scene"},
	}, s.handlePending)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-bindings",
		Method:      http.MethodGet,
		Path:        "/api/v1/bindings",
		Summary:     "List subject to entity bindings",
		Tags:        []string{"scene"},
	}, s.handleListBindings)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirm-binding",
		Method:      http.MethodPost,
		Path:        "/api/v1/bindings",
		Summary:     "Confirm a binding",
		Tags:        []string{"scene"},
	}, s.handleConfirm)

	huma.Register(s.api, huma.Operation{
		OperationID: "cache-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/cache",
		Summary:     "Result cache statistics",
		Tags:        []string{"system"},
	}, s.handleCache)

	huma.Register(s.api, huma.Operation{
		OperationID: "reset-session",
		Method:      http.MethodPost,
		Path:        "/api/v1/reset",
		Summary:     "Clear synonyms, bindings, cache and history",
		Tags:        []string{"system"},
	}, s.handleReset)
}

// --- Request/Response types for huma ---

type queryInput struct {
	Body struct {
		Query string `json:"query" minLength:"1" doc:"Terms joined by '+' or ','; 'term;predicate' filters by relation" example:"liver;arterial supply"`
	}
}
type queryOutput struct {
	Body *query.Result
}

type listHistoryOutput struct {
	Body struct {
		Entries []query.HistoryEntry `json:"entries"`
	}
}

type historyInput struct {
	ID string `path:"id"`
}

type syncOutput struct {
	Body *scene.Report
}

type pendingOutput struct {
	Body struct {
		Candidates []scene.Candidate `json:"candidates"`
	}
}

type bindingsOutput struct {
	Body struct {
		Bindings map[string][]string `json:"bindings"`
	}
}

type confirmInput struct {
	Body struct {
		Subject string `json:"subject" minLength:"1" doc:"Ontology subject, or 'none' to decline"`
		Entity  string `json:"entity" minLength:"1" doc:"Scene entity name"`
	}
}
type confirmOutput struct {
	Body struct {
		Bound bool `json:"bound" doc:"False when the binding existed or was declined"`
	}
}

type cacheOutput struct {
	Body cache.Stats
}

type statusOutput struct {
	Body struct {
		Status string `json:"status" example:"ok"`
	}
}

// --- Handlers ---

func (s *Server) handleQuery(ctx context.Context, input *queryInput) (*queryOutput, error) {
	res, err := s.service.RunQuery(ctx, input.Body.Query)
	if err != nil {
		return nil, s.apiError("running query", err)
	}
	return &queryOutput{Body: res}, nil
}

func (s *Server) handleListHistory(_ context.Context, _ *struct{}) (*listHistoryOutput, error) {
	out := &listHistoryOutput{}
	out.Body.Entries = s.service.History()
	return out, nil
}

func (s *Server) handleGetHistory(_ context.Context, input *historyInput) (*queryOutput, error) {
	res, err := s.service.HistoryEntry(input.ID)
	if err != nil {
		return nil, s.apiError("loading history entry", err)
	}
	return &queryOutput{Body: res}, nil
}

func (s *Server) handleSync(ctx context.Context, _ *struct{}) (*syncOutput, error) {
	report, err := s.service.Synchronize(ctx)
	if err != nil {
		return nil, s.apiError("synchronizing scene", err)
	}
	return &syncOutput{Body: report}, nil
}

func (s *Server) handlePending(_ context.Context, _ *struct{}) (*pendingOutput, error) {
	out := &pendingOutput{}
	out.Body.Candidates = s.service.Pending()
	return out, nil
}

func (s *Server) handleListBindings(_ context.Context, _ *struct{}) (*bindingsOutput, error) {
	out := &bindingsOutput{}
	out.Body.Bindings = s.service.Bindings()
	return out, nil
}

func (s *Server) handleConfirm(_ context.Context, input *confirmInput) (*confirmOutput, error) {
	bound, err := s.service.Confirm(input.Body.Subject, input.Body.Entity)
	if err != nil {
		return nil, s.apiError("confirming binding", err)
	}
	out := &confirmOutput{}
	out.Body.Bound = bound
	return out, nil
}

func (s *Server) handleCache(_ context.Context, _ *struct{}) (*cacheOutput, error) {
	return &cacheOutput{Body: s.service.CacheStats()}, nil
}

func (s *Server) handleReset(_ context.Context, _ *struct{}) (*statusOutput, error) {
	s.service.Reset()
	out := &statusOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// apiError maps a domain error to an HTTP error. Internal failures are
// logged and reported without detail.
func (s *Server) apiError(op string, err error) error {
	status := faerr.HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Error(op+" failed", "error", err, "code", faerr.CodeOf(err))
		return huma.Error500InternalServerError(op + " failed")
	}
	return huma.NewError(status, err.Error())
}
