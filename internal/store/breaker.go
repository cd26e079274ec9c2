// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	faerr "github.com/facetatlas/facetatlas/pkg/errors"
	"github.com/facetatlas/facetatlas/pkg/health"
)

// BreakerConfig tunes the circuit breaker guarding store opens.
type BreakerConfig struct {
	MaxFailures uint32        // Consecutive open failures that trip the breaker.
	Timeout     time.Duration // How long the breaker stays open.
}

// BreakerOpener wraps an Opener with a circuit breaker. While the breaker is
// open, Open fails fast with a store.unavailable error without touching the
// underlying store.
type BreakerOpener struct {
	next    Opener
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *slog.Logger

	mu          sync.Mutex
	lastFailure time.Time
	openedAt    time.Time
}

// NewBreakerOpener guards next with a breaker named name.
func NewBreakerOpener(name string, next Opener, cfg BreakerConfig, logger *slog.Logger) *BreakerOpener {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	b := &BreakerOpener{next: next, timeout: cfg.Timeout, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				b.mu.Lock()
				b.openedAt = time.Now()
				b.mu.Unlock()
			}
			logger.Warn("triple store breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	return b
}

// Open implements Opener.
func (b *BreakerOpener) Open(ctx context.Context) (Gateway, error) {
	gw, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Open(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, faerr.Wrap(ErrUnavailable, faerr.CodeStoreUnavailable,
				"triple store breaker open", faerr.Field("breaker", b.cb.Name()))
		}
		b.mu.Lock()
		b.lastFailure = time.Now()
		b.mu.Unlock()
		return nil, err
	}
	return gw.(Gateway), nil
}

// Health returns a snapshot of the breaker state.
func (b *BreakerOpener) Health() health.Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.cb.State()
	m := health.Metrics{
		FailureCount: int64(b.cb.Counts().ConsecutiveFailures),
		Available:    state != gobreaker.StateOpen,
		State:        state.String(),
	}
	if !b.lastFailure.IsZero() {
		t := b.lastFailure
		m.LastFailureAt = &t
	}
	if state == gobreaker.StateOpen && !b.openedAt.IsZero() {
		until := b.openedAt.Add(b.timeout)
		m.CooldownUntil = &until
	}
	return m
}
