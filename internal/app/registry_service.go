package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/permitdesk/internal/core/effects"
	"github.com/example/permitdesk/internal/core/permit"
	"github.com/example/permitdesk/internal/core/ticket"
	"github.com/example/permitdesk/internal/domainerr"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// RegistryServiceImpl implements the RegistryService interface for one registry
// kind. Entries move through the same status machine as permits.
type RegistryServiceImpl struct {
	base
	tx         secondary.Transactor
	repo       secondary.RegistryRepository
	personRepo secondary.PersonRepository
	tickets    *TicketAllocator
	prefix     ticket.Prefix
	entity     string
}

// NewRegistryService creates a RegistryService over repo.
func NewRegistryService(
	tx secondary.Transactor,
	repo secondary.RegistryRepository,
	personRepo secondary.PersonRepository,
	tickets *TicketAllocator,
	opts ...Option,
) (*RegistryServiceImpl, error) {
	prefix, ok := ticket.EntityPrefix(repo.Kind())
	if !ok || repo.Kind() == ticket.KindPerson {
		return nil, fmt.Errorf("kind %s is not a registry kind", repo.Kind())
	}
	return &RegistryServiceImpl{
		base:       newBase(opts),
		tx:         tx,
		repo:       repo,
		personRepo: personRepo,
		tickets:    tickets,
		prefix:     prefix,
		entity:     strings.ToLower(repo.Kind().String()),
	}, nil
}

// Kind returns the display name of the registry kind.
func (s *RegistryServiceImpl) Kind() string {
	return s.repo.Kind().String()
}

// Create registers a new PENDING entry with a fresh ticket.
func (s *RegistryServiceImpl) Create(ctx context.Context, req primary.CreateRegistryRequest) (*primary.RegistryEntry, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, domainerr.Validation("title", "required")
	}
	actor := s.actor(ctx, "")

	var record *secondary.RegistryRecord
	err := s.withRetry(ctx, s.tx, "create "+s.entity, func(ctx context.Context) error {
		if req.PersonID != "" {
			if _, err := s.personRepo.GetByID(ctx, req.PersonID); err != nil {
				return translate(err, "person", req.PersonID)
			}
		}

		number, err := s.tickets.Allocate(ctx, s.prefix)
		if err != nil {
			return err
		}

		now := s.clock()
		record = &secondary.RegistryRecord{
			ID:           s.newID(),
			TicketNumber: number,
			Title:        strings.TrimSpace(req.Title),
			Reference:    strings.TrimSpace(req.Reference),
			Status:       string(permit.InitialStatus()),
			PersonID:     req.PersonID,
			Notes:        req.Notes,
			CreatedBy:    actor,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return s.repo.Create(ctx, record)
	})
	if err != nil {
		return nil, translate(err, s.entity, req.Title)
	}

	s.logger.Info("registry entry created", "kind", s.Kind(), "ticket", record.TicketNumber)
	s.emit(ctx, effects.Invalidate(s.entity, record.ID, record.TicketNumber))
	return s.toEntry(record), nil
}

// Get retrieves an entry by ID.
func (s *RegistryServiceImpl) Get(ctx context.Context, id string) (*primary.RegistryEntry, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, s.entity, id)
	}
	return s.toEntry(record), nil
}

// List lists entries with optional filters.
func (s *RegistryServiceImpl) List(ctx context.Context, filters primary.RegistryFilters) ([]*primary.RegistryEntry, error) {
	f := secondary.RegistryFilters{Search: filters.Search, PersonID: filters.PersonID}
	if filters.Status != "" {
		st, ok := permit.ParseStatus(filters.Status)
		if !ok {
			return nil, domainerr.Validation("status", fmt.Sprintf("unknown status %q", filters.Status))
		}
		f.Status = string(st)
	}

	records, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, translate(err, s.entity, "")
	}
	entries := make([]*primary.RegistryEntry, len(records))
	for i, r := range records {
		entries[i] = s.toEntry(r)
	}
	return entries, nil
}

// SetStatus moves an entry through the permit status machine.
func (s *RegistryServiceImpl) SetStatus(ctx context.Context, id, status string) (*primary.RegistryEntry, error) {
	target, ok := permit.ParseStatus(status)
	if !ok {
		return nil, domainerr.Validation("status", fmt.Sprintf("unknown status %q", status))
	}

	var before, after *secondary.RegistryRecord
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		before, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		guard := permit.CanTransition(permit.TransitionContext{
			PermitID: before.TicketNumber,
			Current:  permit.Status(before.Status),
			Target:   target,
		})
		if !guard.Allowed {
			s.metrics.IncrementRejectedTransition(before.Status, string(target))
			return &domainerr.IllegalTransitionError{Current: before.Status, Requested: string(target), Reason: guard.Reason}
		}

		moved, err := s.repo.UpdateStatus(ctx, id, before.Status, string(target), s.clock())
		if err != nil {
			return err
		}
		if !moved {
			return domainerr.Conflict("%s %s changed status concurrently; reload and retry", s.entity, id)
		}
		after, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, translate(err, s.entity, id)
	}

	s.metrics.IncrementTransition(before.Status, after.Status)
	s.logger.Info("registry status changed",
		"kind", s.Kind(), "ticket", after.TicketNumber, "from", before.Status, "to", after.Status)
	s.emit(ctx, effects.Invalidate(s.entity, after.ID, after.TicketNumber))
	return s.toEntry(after), nil
}

func (s *RegistryServiceImpl) toEntry(r *secondary.RegistryRecord) *primary.RegistryEntry {
	return &primary.RegistryEntry{
		ID:           r.ID,
		Kind:         s.Kind(),
		TicketNumber: r.TicketNumber,
		Title:        r.Title,
		Reference:    r.Reference,
		Status:       r.Status,
		PersonID:     r.PersonID,
		Notes:        r.Notes,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
