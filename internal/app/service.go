package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/permitdesk/internal/core/effects"
	"github.com/example/permitdesk/internal/ctxutil"
	"github.com/example/permitdesk/internal/domainerr"
	"github.com/example/permitdesk/internal/logging"
	"github.com/example/permitdesk/internal/metrics"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// Retry defaults for units of work that claim a ticket number.
const (
	DefaultMaxAttempts  = 5
	DefaultRetryBackoff = 20 * time.Millisecond
)

// Option configures a service.
type Option func(*base)

// base carries the ambient dependencies every service shares.
type base struct {
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	newID       func() string
	effects     EffectExecutor
	maxAttempts int
	backoff     time.Duration

	// requireChecklist gates approval on completed required items.
	requireChecklist bool
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics sets the prometheus instruments.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) {
		b.metrics = m
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator overrides the row id generator.
func WithIDGenerator(newID func() string) Option {
	return func(b *base) {
		if newID != nil {
			b.newID = newID
		}
	}
}

// WithEffectExecutor sets where post-commit effects go.
func WithEffectExecutor(e EffectExecutor) Option {
	return func(b *base) {
		if e != nil {
			b.effects = e
		}
	}
}

// WithRetry bounds the retry loop around ticket-claiming units of work.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(b *base) {
		if maxAttempts > 0 {
			b.maxAttempts = maxAttempts
		}
		if backoff >= 0 {
			b.backoff = backoff
		}
	}
}

// WithApprovalPolicy requires every required checklist item to be completed
// before a permit can be approved.
func WithApprovalPolicy(requireCompletedChecklist bool) Option {
	return func(b *base) {
		b.requireChecklist = requireCompletedChecklist
	}
}

func newBase(opts []Option) base {
	b := base{
		logger:      logging.Discard(),
		now:         time.Now,
		newID:       uuid.NewString,
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.effects == nil {
		b.effects = NewEffectExecutor(nil, b.logger)
	}
	return b
}

func (b *base) clock() time.Time {
	return b.now().UTC()
}

// actor returns explicit when set, else the actor carried by ctx.
func (b *base) actor(ctx context.Context, explicit string) string {
	return ctxutil.ResolveActor(ctx, explicit)
}

// withRetry runs fn in a transaction, re-running the whole unit of work on a
// ticket collision or busy database. Exhaustion returns a ContentionError.
func (b *base) withRetry(ctx context.Context, tx secondary.Transactor, op string, fn func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := tx.RunInTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		if attempt >= b.maxAttempts {
			b.logger.Warn("retries exhausted", "op", op, "attempts", attempt, "error", err)
			return &domainerr.ContentionError{Op: op, Attempts: attempt, Err: err}
		}

		b.metrics.IncrementAllocationRetry(op)
		b.logger.Warn("retrying unit of work", "op", op, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return domainerr.Storage(op, ctx.Err())
		case <-time.After(b.backoff * time.Duration(attempt)):
		}
	}
}

// emit hands post-commit effects to the executor. Failures never reach the caller.
func (b *base) emit(ctx context.Context, effs ...effects.Effect) {
	if err := b.effects.Execute(ctx, effs); err != nil {
		b.logger.Warn("post-commit effect failed", "error", err)
	}
}

func isTransient(err error) bool {
	return errors.Is(err, secondary.ErrDuplicate) || errors.Is(err, secondary.ErrBusy)
}

// translate maps repository errors onto the domain taxonomy. Errors that already
// carry a code pass through.
func translate(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case domainerr.CodeOf(err) != "":
		return err
	case errors.Is(err, secondary.ErrNotFound):
		return domainerr.NotFound(entity, id)
	case errors.Is(err, secondary.ErrBusy):
		return &domainerr.ContentionError{Op: fmt.Sprintf("%s %s", entity, id), Attempts: 1, Err: err}
	}
	return domainerr.Storage(fmt.Sprintf("%s %s", entity, id), err)
}
