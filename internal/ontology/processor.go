// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package ontology

import (
	"context"
	"log/slog"
	"strings"

	"github.com/facetatlas/facetatlas/internal/store"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
	"github.com/facetatlas/facetatlas/pkg/types"
)

// Config tunes query processing.
type Config struct {
	Classifier       *Classifier
	SynonymFallbacks []string
	DisplayMarker    string
	MaxDepth         int
}

// Output is the result of processing one sub-query.
type Output struct {
	// Subject is the canonical subject the term resolved to, if any.
	Subject string
	// Named holds "subject;object", "subject;comment;text" and
	// "subject;predicate" strings.
	Named []string
	// Display holds the scene entities to show, without duplicates.
	Display []string
	// NonDB is set when the query named a scene entity outside the ontology.
	NonDB bool
	// Truncated is set when the traversal hit its depth ceiling.
	Truncated bool
	// Queries counts the filters executed.
	Queries int
}

// Processor answers single queries of the form "term" or "term;predicate".
type Processor struct {
	gw         store.Gateway
	state      *State
	classifier *Classifier
	resolver   *Resolver
	walker     *Walker
	logger     *slog.Logger
}

// NewProcessor wires a processor over gw. A nil gw means the triple store is
// unavailable: only non-ontology entity names can then be answered.
func NewProcessor(gw store.Gateway, state *State, cfg Config, markers MarkerIndex, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Classifier == nil {
		cfg.Classifier = MustClassifier(DefaultPredicateSets())
	}
	resolver := NewResolver(gw, state.Synonyms, cfg.SynonymFallbacks, logger)
	return &Processor{
		gw:         gw,
		state:      state,
		classifier: cfg.Classifier,
		resolver:   resolver,
		walker:     NewWalker(gw, resolver, state.Bindings, cfg.Classifier, markers, cfg.DisplayMarker, cfg.MaxDepth, logger),
		logger:     logger,
	}
}

// Resolver exposes the processor's resolver, sharing its synonym memo.
func (p *Processor) Resolver() *Resolver { return p.resolver }

// Process answers query. Failures carry query.resolve.not_found when the term
// has no subject and query.process.not_found when the subject has no rows.
func (p *Processor) Process(ctx context.Context, query string) (*Output, error) {
	term, predicate, twoPart := strings.Cut(query, ";")
	term = strings.TrimSpace(term)
	if twoPart {
		return p.processTwoPart(ctx, term, NormalizePredicate(predicate))
	}
	return p.processOnePart(ctx, term)
}

type accumulator struct {
	named   types.OrderedSet[string]
	display types.OrderedSet[string]
	queries int
	trunc   bool
}

func (a *accumulator) output(subject string) *Output {
	return &Output{
		Subject:   subject,
		Named:     a.named.Items(),
		Display:   a.display.Items(),
		Truncated: a.trunc,
		Queries:   a.queries,
	}
}

func (p *Processor) processOnePart(ctx context.Context, term string) (*Output, error) {
	acc := &accumulator{}

	subject := ""
	if p.gw != nil {
		s, err := p.resolver.Resolve(ctx, term)
		switch {
		case err == nil:
			subject = s
			acc.display.AddAll(p.state.Bindings.Entities(subject)...)
		case faerr.IsNotFound(err):
		default:
			return nil, err
		}
	}

	if name, ok := p.state.NonDB.Match(term); ok {
		acc.display.Add(name)
		out := acc.output(subject)
		out.NonDB = true
		return out, nil
	}

	if p.gw == nil {
		return nil, faerr.Wrap(store.ErrUnavailable, faerr.CodeQueryResolveNotFound,
			"triple store unavailable", faerr.FieldTerm(term))
	}
	if subject == "" {
		return nil, faerr.New(faerr.CodeQueryResolveNotFound, "no subject for term: "+term, faerr.FieldTerm(term))
	}

	for _, pred := range p.classifier.Recursion() {
		err := p.collectPredicate(ctx, subject, pred, acc)
		if err != nil && !faerr.IsNotFound(err) {
			return nil, err
		}
	}

	walk := p.walker.Begin(subject, &acc.display)
	for _, pred := range p.classifier.Additive() {
		if err := walk.Follow(ctx, store.Filter{Term: subject, Role: store.RoleObject, Predicate: pred}, false); err != nil {
			return nil, err
		}
	}
	acc.queries += walk.Queries()
	acc.trunc = acc.trunc || walk.Truncated()

	acc.queries++
	rows, err := p.gw.Execute(ctx, store.Filter{Term: subject, Role: store.RoleSubject})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if acc.display.Len() > 0 || acc.named.Len() > 0 {
			return acc.output(subject), nil
		}
		return nil, faerr.New(faerr.CodeQueryProcessNotFound, "no triples for subject: "+subject,
			faerr.FieldTerm(subject))
	}

	var relations types.OrderedSet[string]
	for _, row := range rows {
		switch p.classifier.Role(row.Predicate) {
		case Ignore, Recursion, AdditiveRecursion:
		case Comment:
			acc.named.Add(row.Subject + ";comment;" + row.Object)
		default:
			relations.Add(row.Subject + ";" + row.Predicate)
		}
	}
	acc.named.AddAll(relations.Items()...)

	p.logger.Debug("processed query",
		slog.String("term", term),
		slog.String("subject", subject),
		slog.Int("named", acc.named.Len()),
		slog.Int("display", acc.display.Len()),
	)
	return acc.output(subject), nil
}

func (p *Processor) processTwoPart(ctx context.Context, term, predicate string) (*Output, error) {
	if predicate == "" {
		return nil, faerr.New(faerr.CodeQueryInputInvalid, "empty predicate in query", faerr.FieldTerm(term))
	}
	subject, err := p.resolver.Resolve(ctx, term)
	if err != nil {
		return nil, err
	}

	acc := &accumulator{}
	if err := p.collectPredicate(ctx, subject, predicate, acc); err != nil {
		return nil, err
	}
	return acc.output(subject), nil
}

// collectPredicate traverses subject along predicate, then emits the direct
// rows: "subject;object" for the requested predicate and
// "subject;comment;text" for comment predicates.
func (p *Processor) collectPredicate(ctx context.Context, subject, predicate string, acc *accumulator) error {
	f := store.Filter{Term: subject, Role: store.RoleSubject, Predicate: predicate}

	walk := p.walker.Begin(subject, &acc.display)
	if err := walk.Follow(ctx, f, true); err != nil {
		return err
	}
	acc.queries += walk.Queries()
	acc.trunc = acc.trunc || walk.Truncated()

	acc.queries++
	rows, err := p.gw.Execute(ctx, f)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return faerr.New(faerr.CodeQueryProcessNotFound, "no triples for predicate",
			faerr.FieldTerm(subject), faerr.FieldPredicate(predicate))
	}

	for _, row := range rows {
		role := p.classifier.Role(row.Predicate)
		if role == Ignore {
			continue
		}
		if row.Predicate == predicate {
			acc.named.Add(row.Subject + ";" + row.Object)
		}
		if role == Comment {
			acc.named.Add(row.Subject + ";comment;" + row.Object)
		}
	}
	return nil
}
