package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/example/permitdesk/internal/core/ticket"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// DefaultHistoryLimit is the number of history rows ResolveWithDetails returns
// when the caller passes zero.
const DefaultHistoryLimit = 5

// resolveFunc fetches one kind of entity by ticket. A missing ticket is nil, nil.
type resolveFunc func(ctx context.Context, number string) (*primary.EntityDetail, error)

// TicketResolverImpl implements the TicketResolver interface with a closed
// dispatch table keyed by entity kind.
type TicketResolverImpl struct {
	base
	itemRepo    secondary.ChecklistItemRepository
	historyRepo secondary.HistoryRepository
	handlers    map[ticket.Kind]resolveFunc
}

// NewTicketResolver creates a resolver. Every resolvable kind must be served:
// persons and permits by their repositories, the rest by registries.
func NewTicketResolver(
	personRepo secondary.PersonRepository,
	permitRepo secondary.PermitRepository,
	itemRepo secondary.ChecklistItemRepository,
	historyRepo secondary.HistoryRepository,
	registries []secondary.RegistryRepository,
	opts ...Option,
) (*TicketResolverImpl, error) {
	r := &TicketResolverImpl{
		base:        newBase(opts),
		itemRepo:    itemRepo,
		historyRepo: historyRepo,
		handlers: map[ticket.Kind]resolveFunc{
			ticket.KindPerson: personResolver(personRepo),
			ticket.KindPermit: permitResolver(permitRepo),
		},
	}
	for _, repo := range registries {
		r.handlers[repo.Kind()] = registryResolver(repo)
	}

	for _, kind := range ticket.Kinds() {
		if _, ok := r.handlers[kind]; !ok {
			return nil, fmt.Errorf("no resolver for %s tickets", kind)
		}
	}
	return r, nil
}

// Resolve classifies the ticket by prefix and fetches a normalized view.
// Unknown prefixes and missing tickets return nil, nil.
func (r *TicketResolverImpl) Resolve(ctx context.Context, number string) (*primary.EntityDetail, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	handler, ok := r.handlers[ticket.KindOf(ticket.PrefixOf(number))]
	if !ok {
		r.logger.Debug("unknown ticket prefix", "ticket", number)
		return nil, nil
	}

	detail, err := handler(ctx, number)
	if err != nil {
		return nil, translate(err, "ticket", number)
	}
	return detail, nil
}

// ResolveWithDetails adds checklist counts and recent history for permits.
// The two aggregates are read concurrently.
func (r *TicketResolverImpl) ResolveWithDetails(ctx context.Context, number string, historyLimit int) (*primary.EntityDetails, error) {
	detail, err := r.Resolve(ctx, number)
	if err != nil || detail == nil {
		return nil, err
	}

	out := &primary.EntityDetails{EntityDetail: *detail}
	if detail.Type != ticket.KindPermit.String() {
		return out, nil
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}

	var (
		items   []*secondary.ChecklistItemRecord
		history []*secondary.HistoryRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = r.itemRepo.ListByPermit(gctx, detail.ID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = r.historyRepo.ListByPermit(gctx, detail.ID, historyLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translate(err, "permit", detail.ID)
	}

	out.Checklist = progressOf(items)
	out.RecentHistory = recordsToHistory(history)
	return out, nil
}

func personResolver(repo secondary.PersonRepository) resolveFunc {
	return func(ctx context.Context, number string) (*primary.EntityDetail, error) {
		p, err := repo.GetByTicket(ctx, number)
		if isNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &primary.EntityDetail{
			Type:         ticket.KindPerson.String(),
			ID:           p.ID,
			TicketNumber: p.TicketNumber,
			Title:        recordToPerson(p).FullName(),
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		}, nil
	}
}

func permitResolver(repo secondary.PermitRepository) resolveFunc {
	return func(ctx context.Context, number string) (*primary.EntityDetail, error) {
		p, err := repo.GetByTicket(ctx, number)
		if isNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		title := p.Category
		if p.PersonName != "" {
			title = p.Category + " - " + p.PersonName
		}
		return &primary.EntityDetail{
			Type:         ticket.KindPermit.String(),
			ID:           p.ID,
			TicketNumber: p.TicketNumber,
			Title:        title,
			Status:       p.Status,
			Category:     p.Category,
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		}, nil
	}
}

func registryResolver(repo secondary.RegistryRepository) resolveFunc {
	return func(ctx context.Context, number string) (*primary.EntityDetail, error) {
		e, err := repo.GetByTicket(ctx, number)
		if isNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &primary.EntityDetail{
			Type:         repo.Kind().String(),
			ID:           e.ID,
			TicketNumber: e.TicketNumber,
			Title:        e.Title,
			Status:       e.Status,
			CreatedAt:    e.CreatedAt,
			UpdatedAt:    e.UpdatedAt,
		}, nil
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, secondary.ErrNotFound)
}
