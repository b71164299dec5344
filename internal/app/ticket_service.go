package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/permitdesk/internal/core/permit"
	"github.com/example/permitdesk/internal/core/ticket"
	"github.com/example/permitdesk/internal/domainerr"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// TicketAllocator issues ticket numbers from the sequence counters.
// It implements primary.TicketService for read-only inspection.
type TicketAllocator struct {
	base
	seq secondary.SequenceRepository
}

// NewTicketAllocator creates a new TicketAllocator.
func NewTicketAllocator(seq secondary.SequenceRepository, opts ...Option) *TicketAllocator {
	return &TicketAllocator{base: newBase(opts), seq: seq}
}

// Allocate claims the next ticket for a prefix. Permit prefixes draw from the
// series of the current year. A series past its fixed width fails with
// ticket.ErrSeriesExhausted instead of widening. Must run inside the caller's transaction so the
// claim commits or rolls back with the entity insert.
func (a *TicketAllocator) Allocate(ctx context.Context, prefix ticket.Prefix) (string, error) {
	series, err := a.seriesFor(prefix)
	if err != nil {
		return "", err
	}
	n, err := a.seq.Next(ctx, series)
	if err != nil {
		return "", err
	}
	if n > series.Max() {
		return "", domainerr.Storage("allocate "+series.String(), ticket.ErrSeriesExhausted)
	}
	a.metrics.IncrementTicketAllocated(string(series.Prefix))
	return series.Format(n), nil
}

// Peek returns the ticket the next Allocate would issue. Accepts a prefix
// ("WRK") or a permit category ("WORK_PERMIT").
func (a *TicketAllocator) Peek(ctx context.Context, prefix string) (string, error) {
	p := ticket.Prefix(strings.ToUpper(strings.TrimSpace(prefix)))
	if cat, ok := permit.ParseCategory(prefix); ok {
		p = cat.Prefix()
	}

	series, err := a.seriesFor(p)
	if err != nil {
		return "", err
	}
	n, err := a.seq.Peek(ctx, series)
	if err != nil {
		return "", translate(err, "series", series.String())
	}
	if n > series.Max() {
		return "", domainerr.Storage("peek "+series.String(), ticket.ErrSeriesExhausted)
	}
	return series.Format(n), nil
}

func (a *TicketAllocator) seriesFor(p ticket.Prefix) (ticket.Series, error) {
	kind := ticket.KindOf(p)
	switch kind {
	case ticket.KindUnknown:
		return ticket.Series{}, domainerr.Validation("prefix", fmt.Sprintf("unknown ticket prefix %q", p))
	case ticket.KindPermit:
		series, err := ticket.PermitSeries(p, a.clock().Year())
		if err != nil {
			return ticket.Series{}, domainerr.Validation("prefix", err.Error())
		}
		return series, nil
	}
	series, err := ticket.EntitySeries(kind)
	if err != nil {
		return ticket.Series{}, domainerr.Validation("prefix", err.Error())
	}
	return series, nil
}
