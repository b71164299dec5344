// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/permitdesk/internal/core/effects"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// DefaultInvalidationTimeout bounds one fire-and-forget invalidation.
const DefaultInvalidationTimeout = 2 * time.Second

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place post-commit I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor. Invalidations run in their own
// goroutine and are never awaited by the caller nor retried.
type DefaultEffectExecutor struct {
	invalidator secondary.CacheInvalidator
	logger      *slog.Logger
	timeout     time.Duration
	inflight    sync.WaitGroup
}

// NewEffectExecutor creates a new DefaultEffectExecutor. A nil invalidator drops
// invalidation effects.
func NewEffectExecutor(invalidator secondary.CacheInvalidator, logger *slog.Logger) *DefaultEffectExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultEffectExecutor{
		invalidator: invalidator,
		logger:      logger,
		timeout:     DefaultInvalidationTimeout,
	}
}

// Execute processes a slice of effects in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

// Wait blocks until in-flight invalidations finish. Short-lived processes call
// it before exiting so signals are not cut off.
func (e *DefaultEffectExecutor) Wait() {
	e.inflight.Wait()
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.InvalidateEffect:
		e.invalidate(ctx, typed)
		return nil
	case effects.CompositeEffect:
		return e.Execute(ctx, typed.Effects)
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) invalidate(ctx context.Context, eff effects.InvalidateEffect) {
	if e.invalidator == nil || len(eff.Keys) == 0 {
		return
	}

	// Detach from the request: the caller's ctx may end as soon as we return.
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	keys := append([]string(nil), eff.Keys...)

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		defer cancel()
		if err := e.invalidator.Invalidate(bg, keys...); err != nil {
			e.logger.Warn("cache invalidation failed", "keys", keys, "error", err)
		}
	}()
}
