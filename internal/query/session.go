// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

// Package query runs compound user queries against the ontology and keeps
// the state that persists between passes.
package query

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/facetatlas/facetatlas/internal/cache"
	"github.com/facetatlas/facetatlas/internal/ontology"
	"github.com/facetatlas/facetatlas/internal/scene"
	"github.com/facetatlas/facetatlas/internal/store"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
	"github.com/facetatlas/facetatlas/pkg/types"
)

// DefaultHistoryLimit bounds the query history when unconfigured.
const DefaultHistoryLimit = 20

// Config tunes a Session.
type Config struct {
	Classifier       *ontology.Classifier
	SynonymFallbacks []string
	DisplayMarker    string
	MaxDepth         int
	CacheEnabled     bool
	CacheCapacity    int
	HistoryLimit     int
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Classifier:       ontology.MustClassifier(ontology.DefaultPredicateSets()),
		SynonymFallbacks: ontology.DefaultSynonymFallbacks,
		DisplayMarker:    ontology.DefaultDisplayMarker,
		MaxDepth:         ontology.DefaultMaxDepth,
		CacheEnabled:     true,
		CacheCapacity:    cache.DefaultCapacity,
		HistoryLimit:     DefaultHistoryLimit,
	}
}

// Session owns the vocabulary, cache and history shared by successive query
// and synchronization passes. Every pass holds the session lock, so a
// Session may be shared between goroutines.
type Session struct {
	mu      sync.Mutex
	opener  store.Opener
	cfg     Config
	state   *ontology.State
	cache   *cache.ResultCache
	graph   scene.Graph
	pending []scene.Candidate
	history []*Result
	metrics *sessionMetrics
	logger  *slog.Logger

	registerer prometheus.Registerer
}

// Option configures a Session.
type Option func(*Session)

// WithScene attaches the scene that query results drive.
func WithScene(g scene.Graph) Option {
	return func(s *Session) { s.graph = g }
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithMetrics registers session and cache collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Session) { s.registerer = reg }
}

// New returns a session reading triples through opener. Zero values in cfg
// fall back to DefaultConfig.
func New(opener store.Opener, cfg Config, opts ...Option) (*Session, error) {
	def := DefaultConfig()
	if cfg.Classifier == nil {
		cfg.Classifier = def.Classifier
	}
	if cfg.SynonymFallbacks == nil {
		cfg.SynonymFallbacks = def.SynonymFallbacks
	}
	if cfg.DisplayMarker == "" {
		cfg.DisplayMarker = def.DisplayMarker
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}

	s := &Session{
		opener: opener,
		cfg:    cfg,
		state:  ontology.NewState(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cacheOpts := []cache.Option{cache.WithLogger(s.logger)}
	if s.registerer != nil {
		m, err := newSessionMetrics(s.registerer)
		if err != nil {
			return nil, err
		}
		s.metrics = m
		cacheOpts = append(cacheOpts, cache.WithMetrics(s.registerer))
	}
	c, err := cache.New(cfg.CacheCapacity, cacheOpts...)
	if err != nil {
		return nil, err
	}
	s.cache = c
	return s, nil
}

// RunQuery answers a compound query. Sub-queries fail independently; their
// failures are reported in the result. Only an empty query or a canceled
// context fails the pass.
func (s *Session) RunQuery(ctx context.Context, raw string) (*Result, error) {
	parts := Split(raw)
	if len(parts) == 0 {
		return nil, faerr.New(faerr.CodeQueryInputInvalid, "query is empty", faerr.FieldQuery(raw))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.cache.Age()

	res := &Result{
		ID:    uuid.New().String(),
		Query: raw,
		At:    start.UTC(),
	}

	gw, err := s.open(ctx)
	if err != nil {
		s.logger.Warn("triple store unavailable", "error", err)
		if s.metrics != nil {
			s.metrics.storeErr.Inc()
		}
	} else {
		defer func() { _ = gw.Close() }()
		res.StoreAvailable = true
	}

	proc := ontology.NewProcessor(gw, s.state, ontology.Config{
		Classifier:       s.cfg.Classifier,
		SynonymFallbacks: s.cfg.SynonymFallbacks,
		DisplayMarker:    s.cfg.DisplayMarker,
		MaxDepth:         s.cfg.MaxDepth,
	}, s.cache, s.logger)

	var display types.OrderedSet[string]
	groups := make(map[string]int)

	// Rewritten queries form the cache batch before any insert.
	queries := make([]string, len(parts))
	for i, part := range parts {
		q, err := s.effective(ctx, gw, part)
		if err != nil {
			return nil, err
		}
		queries[i] = q
	}

	for _, q := range queries {
		out, err := proc.Process(ctx, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			f := failure(q, err)
			res.Failures = append(res.Failures, f)
			if s.metrics != nil {
				s.metrics.failures.WithLabelValues(f.Code).Inc()
			}
			s.logger.Info("sub-query produced no results", "query", q, "code", f.Code)
			continue
		}

		display.AddAll(out.Display...)
		res.Truncated = res.Truncated || out.Truncated

		label := GroupLabel(q)
		for _, named := range out.Named {
			_, rest, _ := strings.Cut(named, ";")
			i, ok := groups[label]
			if !ok {
				i = len(res.Groups)
				groups[label] = i
				res.Groups = append(res.Groups, Group{Label: label})
			}
			res.Groups[i].Items = append(res.Groups[i].Items, rest)
		}

		if s.cfg.CacheEnabled && len(out.Display) > 0 {
			s.cache.Insert(queries, q, s.cacheStrings(q, out.Display))
		}
	}

	res.Display = display.Items()
	res.HasVisualResults = len(res.Display) > 0

	if s.graph != nil {
		res.Directives = scene.Visibility(s.graph, s.state.NonDB.Items(), res.Display)
		scene.Apply(s.graph, res.Directives)
	}

	s.record(res)
	if s.metrics != nil {
		s.metrics.runs.Inc()
		s.metrics.duration.Observe(time.Since(start).Seconds())
	}
	s.logger.Debug("query pass complete",
		slog.String("query", raw),
		slog.Int("display", len(res.Display)),
		slog.Int("failures", len(res.Failures)),
	)
	return res, nil
}

func (s *Session) open(ctx context.Context) (store.Gateway, error) {
	if s.opener == nil {
		return nil, store.ErrUnavailable
	}
	return s.opener.Open(ctx)
}

// effective returns the query to process for q. For "x;y" where y is itself
// a subject in the store, y is queried on its own.
func (s *Session) effective(ctx context.Context, gw store.Gateway, q string) (string, error) {
	_, second, ok := strings.Cut(q, ";")
	second = strings.TrimSpace(second)
	if !ok || gw == nil || second == "" {
		return q, nil
	}
	f, err := ontology.Compile(second, store.RoleSubject, "")
	if err != nil {
		return q, nil
	}
	rows, err := gw.Execute(ctx, f)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return q, nil
	}
	if len(rows) > 0 {
		return second, nil
	}
	return q, nil
}

// cacheStrings renders display terms as "q;predicate;entity" for one-part
// queries, using the first recursion predicate, and "q;entity" otherwise.
func (s *Session) cacheStrings(q string, display []string) []string {
	prefix := q + ";"
	if !strings.Contains(q, ";") {
		if rec := s.cfg.Classifier.Recursion(); len(rec) > 0 {
			prefix += rec[0] + ";"
		}
	}
	out := make([]string, len(display))
	for i, d := range display {
		out[i] = prefix + d
	}
	return out
}

func failure(q string, err error) Failure {
	code := string(faerr.CodeOf(err))
	if errors.Is(err, store.ErrUnavailable) {
		code = string(faerr.CodeStoreUnavailable)
	}
	if code == "" {
		code = string(faerr.CodeStoreQueryFailure)
	}
	return Failure{Query: q, Code: code, Message: err.Error()}
}

func (s *Session) record(r *Result) {
	s.history = append(s.history, r)
	if over := len(s.history) - s.cfg.HistoryLimit; over > 0 {
		s.history = append([]*Result(nil), s.history[over:]...)
	}
}

// History lists past passes, oldest first.
func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HistoryEntry, len(s.history))
	for i, r := range s.history {
		out[i] = r.Summary()
	}
	return out
}

// HistoryEntry returns the full result of a past pass.
func (s *Session) HistoryEntry(id string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.history {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, faerr.New(faerr.CodeQueryHistoryNotFound, "no query with id "+id, faerr.Field("id", id))
}

// SetScene attaches g, replacing any previous scene. Pending candidates are
// discarded.
func (s *Session) SetScene(g scene.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
	s.pending = nil
}

// Scene returns the attached scene, if any.
func (s *Session) Scene() scene.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

// Synchronize binds the attached scene to the ontology and keeps the fuzzy
// candidates pending until confirmed.
func (s *Session) Synchronize(ctx context.Context) (*scene.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph == nil {
		return nil, faerr.New(faerr.CodeSceneEntityNotFound, "no scene attached")
	}
	report, err := scene.NewSynchronizer(s.opener, s.state, s.cfg.SynonymFallbacks, s.logger).
		Synchronize(ctx, s.graph)
	if err != nil {
		return nil, err
	}
	s.pending = append([]scene.Candidate(nil), report.Candidates...)
	return report, nil
}

// Pending returns the candidates still awaiting confirmation.
func (s *Session) Pending() []scene.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scene.Candidate(nil), s.pending...)
}

// Confirm binds subject to entity and clears the entity's pending
// candidates. The scene.NoMatch answer only clears them.
func (s *Session) Confirm(subject, entity string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph != nil && !hasEntity(s.graph, entity) {
		return false, faerr.New(faerr.CodeSceneEntityNotFound, "scene has no entity "+entity,
			faerr.Field("entity", entity))
	}
	bound, err := scene.NewSynchronizer(s.opener, s.state, s.cfg.SynonymFallbacks, s.logger).
		Confirm(subject, entity)
	if err != nil {
		return false, err
	}

	kept := s.pending[:0]
	for _, c := range s.pending {
		if c.Entity != entity {
			kept = append(kept, c)
		}
	}
	s.pending = kept
	return bound, nil
}

func hasEntity(g scene.Graph, name string) bool {
	for _, h := range g.Hierarchies() {
		if h.Name == name {
			return true
		}
	}
	for _, m := range g.Models() {
		if m.Name == name {
			return true
		}
	}
	return false
}

// SaveBindings persists bindings and non-ontology names to path.
func (s *Session) SaveBindings(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return scene.SaveBindings(path, s.state)
}

// LoadBindings merges the bindings file at path into the session.
func (s *Session) LoadBindings(path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return scene.LoadBindings(path, s.state)
}

// Bindings returns a copy of the subject to entity table.
func (s *Session) Bindings() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Bindings.Snapshot()
}

// Bind records a binding directly, bypassing scene checks.
func (s *Session) Bind(subject, entity string) error {
	canonical, err := ontology.Normalize(subject)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Bindings.Bind(canonical, entity)
	return nil
}

// CacheStats reports the result cache state.
func (s *Session) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Reset clears synonyms, bindings, non-ontology names, the cache, history
// and pending candidates. The scene stays attached.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Reset()
	s.cache.Reset()
	s.history = nil
	s.pending = nil
}
