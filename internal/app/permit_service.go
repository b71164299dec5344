package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/permitdesk/internal/core/checklist"
	"github.com/example/permitdesk/internal/core/effects"
	"github.com/example/permitdesk/internal/core/permit"
	"github.com/example/permitdesk/internal/domainerr"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// PermitServiceImpl implements the PermitService interface.
type PermitServiceImpl struct {
	base
	tx           secondary.Transactor
	personRepo   secondary.PersonRepository
	templateRepo secondary.TemplateRepository
	permitRepo   secondary.PermitRepository
	itemRepo     secondary.ChecklistItemRepository
	historyRepo  secondary.HistoryRepository
	tickets      *TicketAllocator
}

// NewPermitService creates a new PermitService with injected dependencies.
func NewPermitService(
	tx secondary.Transactor,
	personRepo secondary.PersonRepository,
	templateRepo secondary.TemplateRepository,
	permitRepo secondary.PermitRepository,
	itemRepo secondary.ChecklistItemRepository,
	historyRepo secondary.HistoryRepository,
	tickets *TicketAllocator,
	opts ...Option,
) *PermitServiceImpl {
	return &PermitServiceImpl{
		base:         newBase(opts),
		tx:           tx,
		personRepo:   personRepo,
		templateRepo: templateRepo,
		permitRepo:   permitRepo,
		itemRepo:     itemRepo,
		historyRepo:  historyRepo,
		tickets:      tickets,
	}
}

// CreatePermit creates a PENDING permit and copies the active checklist template
// of its category onto it. The ticket claim, permit row and items commit together.
func (s *PermitServiceImpl) CreatePermit(ctx context.Context, req primary.CreatePermitRequest) (*primary.Permit, error) {
	if strings.TrimSpace(req.PersonID) == "" {
		return nil, domainerr.Validation("personId", "required")
	}
	category, ok := permit.ParseCategory(req.Category)
	if !ok {
		return nil, domainerr.Validation("category", fmt.Sprintf("unknown permit category %q", req.Category))
	}
	actor := s.actor(ctx, "")

	var created *secondary.PermitRecord
	var items []*secondary.ChecklistItemRecord
	err := s.withRetry(ctx, s.tx, "create permit", func(ctx context.Context) error {
		_, err := s.personRepo.GetByID(ctx, req.PersonID)
		if err != nil && !errors.Is(err, secondary.ErrNotFound) {
			return err
		}
		guard := permit.CanCreatePermit(permit.CreateContext{
			Category:     string(category),
			PersonID:     req.PersonID,
			PersonExists: err == nil,
		})
		if !guard.Allowed {
			if guard.Field == "personId" {
				return domainerr.NotFound("person", req.PersonID)
			}
			return domainerr.Validation(guard.Field, guard.Reason)
		}

		tmpl, err := s.templateRepo.GetActive(ctx, string(category))
		if err != nil && !errors.Is(err, secondary.ErrNotFound) {
			return err
		}

		number, err := s.tickets.Allocate(ctx, category.Prefix())
		if err != nil {
			return err
		}

		now := s.clock()
		record := &secondary.PermitRecord{
			ID:           s.newID(),
			TicketNumber: number,
			Category:     string(category),
			Status:       string(permit.InitialStatus()),
			PersonID:     req.PersonID,
			DueDate:      req.DueDate,
			Notes:        req.Notes,
			CreatedBy:    actor,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		var seeds []checklist.ItemSeed
		if tmpl != nil {
			record.ChecklistID = tmpl.ID
			record.ChecklistVersion = tmpl.Version
			seeds = checklist.Snapshot(templateItems(tmpl))
		}
		if err := s.permitRepo.Create(ctx, record); err != nil {
			return err
		}

		items = make([]*secondary.ChecklistItemRecord, len(seeds))
		for i, seed := range seeds {
			items[i] = &secondary.ChecklistItemRecord{
				ID:        s.newID(),
				PermitID:  record.ID,
				Position:  seed.Position,
				Label:     seed.Label,
				Required:  seed.Required,
				Hint:      seed.Hint,
				UpdatedAt: now,
			}
		}
		if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
			return err
		}

		created, err = s.permitRepo.GetByID(ctx, record.ID)
		return err
	})
	if err != nil {
		return nil, translate(err, "permit", req.Category)
	}

	s.logger.Info("permit created",
		"ticket", created.TicketNumber, "category", created.Category,
		"person", created.PersonID, "checklist_version", created.ChecklistVersion)
	s.emit(ctx, effects.Invalidate("permit", created.ID, created.TicketNumber))

	p := recordToPermit(created)
	for _, item := range items {
		p.Items = append(p.Items, recordToChecklistItem(item))
	}
	return p, nil
}

// GetPermit retrieves a permit by ID, with its checklist items.
func (s *PermitServiceImpl) GetPermit(ctx context.Context, permitID string) (*primary.Permit, error) {
	record, err := s.permitRepo.GetByID(ctx, permitID)
	if err != nil {
		return nil, translate(err, "permit", permitID)
	}
	return s.withItems(ctx, record)
}

// GetPermitByTicket retrieves a permit by ticket number, with its checklist items.
func (s *PermitServiceImpl) GetPermitByTicket(ctx context.Context, number string) (*primary.Permit, error) {
	record, err := s.permitRepo.GetByTicket(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, translate(err, "permit", number)
	}
	return s.withItems(ctx, record)
}

func (s *PermitServiceImpl) withItems(ctx context.Context, record *secondary.PermitRecord) (*primary.Permit, error) {
	items, err := s.itemRepo.ListByPermit(ctx, record.ID)
	if err != nil {
		return nil, translate(err, "permit", record.ID)
	}
	p := recordToPermit(record)
	for _, item := range items {
		p.Items = append(p.Items, recordToChecklistItem(item))
	}
	return p, nil
}

// ListPermits lists permits with optional filters.
func (s *PermitServiceImpl) ListPermits(ctx context.Context, filters primary.PermitFilters) ([]*primary.Permit, error) {
	verr := &domainerr.ValidationError{}
	f := secondary.PermitFilters{PersonID: filters.PersonID, Limit: filters.Limit}
	if filters.Status != "" {
		st, ok := permit.ParseStatus(filters.Status)
		if !ok {
			verr.Add("status", fmt.Sprintf("unknown status %q", filters.Status))
		}
		f.Status = string(st)
	}
	if filters.Category != "" {
		cat, ok := permit.ParseCategory(filters.Category)
		if !ok {
			verr.Add("category", fmt.Sprintf("unknown permit category %q", filters.Category))
		}
		f.Category = string(cat)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	records, err := s.permitRepo.List(ctx, f)
	if err != nil {
		return nil, translate(err, "permits", "")
	}
	permits := make([]*primary.Permit, len(records))
	for i, r := range records {
		permits[i] = recordToPermit(r)
	}
	return permits, nil
}

// UpdatePermit updates notes and/or due date.
func (s *PermitServiceImpl) UpdatePermit(ctx context.Context, req primary.UpdatePermitRequest) (*primary.Permit, error) {
	if req.Notes == nil && req.DueDate == nil {
		return nil, domainerr.Validation("notes", "nothing to update")
	}

	var updated *secondary.PermitRecord
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.permitRepo.UpdateDetails(ctx, req.PermitID, req.Notes, req.DueDate, s.clock()); err != nil {
			return err
		}
		var err error
		updated, err = s.permitRepo.GetByID(ctx, req.PermitID)
		return err
	})
	if err != nil {
		return nil, translate(err, "permit", req.PermitID)
	}

	s.emit(ctx, effects.Invalidate("permit", updated.ID, updated.TicketNumber))
	return recordToPermit(updated), nil
}

// Transition moves a permit to a new status and appends a history row in one
// transaction. A concurrent change to the same permit surfaces as a conflict.
func (s *PermitServiceImpl) Transition(ctx context.Context, req primary.TransitionRequest) (*primary.Permit, error) {
	target, ok := permit.ParseStatus(req.ToStatus)
	if !ok {
		return nil, domainerr.Validation("toStatus", fmt.Sprintf("unknown status %q", req.ToStatus))
	}
	actor := s.actor(ctx, req.ActorID)

	var before, after *secondary.PermitRecord
	err := s.withRetry(ctx, s.tx, "transition permit", func(ctx context.Context) error {
		var err error
		before, err = s.permitRepo.GetByID(ctx, req.PermitID)
		if err != nil {
			return err
		}

		guardCtx := permit.TransitionContext{
			PermitID:                  req.PermitID,
			Current:                   permit.Status(before.Status),
			Target:                    target,
			RequireCompletedChecklist: s.requireChecklist,
		}
		if s.requireChecklist && target == permit.StatusApproved {
			items, err := s.itemRepo.ListByPermit(ctx, req.PermitID)
			if err != nil {
				return err
			}
			guardCtx.RequiredPending = checklist.ComputeProgress(itemStates(items)).RequiredPending
		}

		if guard := permit.CanTransition(guardCtx); !guard.Allowed {
			s.metrics.IncrementRejectedTransition(before.Status, string(target))
			if guard.Field != "" {
				return domainerr.Validation(guard.Field, guard.Reason)
			}
			return &domainerr.IllegalTransitionError{
				Current:   before.Status,
				Requested: string(target),
				Reason:    guard.Reason,
			}
		}

		now := s.clock()
		moved, err := s.permitRepo.UpdateStatus(ctx, req.PermitID, before.Status, string(target), now)
		if err != nil {
			return err
		}
		if !moved {
			return domainerr.Conflict("permit %s changed status concurrently; reload and retry", req.PermitID)
		}

		if err := s.historyRepo.Append(ctx, &secondary.HistoryRecord{
			ID:         s.newID(),
			PermitID:   req.PermitID,
			FromStatus: before.Status,
			ToStatus:   string(target),
			ChangedBy:  actor,
			Notes:      req.Notes,
			ChangedAt:  now,
		}); err != nil {
			return err
		}

		after, err = s.permitRepo.GetByID(ctx, req.PermitID)
		return err
	})
	if err != nil {
		return nil, translate(err, "permit", req.PermitID)
	}

	s.metrics.IncrementTransition(before.Status, after.Status)
	s.logger.Info("permit transitioned",
		"ticket", after.TicketNumber, "from", before.Status, "to", after.Status, "actor", actor)
	s.emit(ctx, effects.Invalidate("permit", after.ID, after.TicketNumber))

	return recordToPermit(after), nil
}

// Submit moves a PENDING permit to SUBMITTED.
func (s *PermitServiceImpl) Submit(ctx context.Context, permitID, actorID, notes string) (*primary.Permit, error) {
	return s.Transition(ctx, primary.TransitionRequest{PermitID: permitID, ToStatus: string(permit.StatusSubmitted), ActorID: actorID, Notes: notes})
}

// Approve moves a SUBMITTED permit to APPROVED.
func (s *PermitServiceImpl) Approve(ctx context.Context, permitID, actorID, notes string) (*primary.Permit, error) {
	return s.Transition(ctx, primary.TransitionRequest{PermitID: permitID, ToStatus: string(permit.StatusApproved), ActorID: actorID, Notes: notes})
}

// Reject moves a SUBMITTED permit to REJECTED.
func (s *PermitServiceImpl) Reject(ctx context.Context, permitID, actorID, notes string) (*primary.Permit, error) {
	return s.Transition(ctx, primary.TransitionRequest{PermitID: permitID, ToStatus: string(permit.StatusRejected), ActorID: actorID, Notes: notes})
}

// History lists status changes newest first.
func (s *PermitServiceImpl) History(ctx context.Context, permitID string, limit int) ([]*primary.HistoryEntry, error) {
	if _, err := s.permitRepo.GetByID(ctx, permitID); err != nil {
		return nil, translate(err, "permit", permitID)
	}
	records, err := s.historyRepo.ListByPermit(ctx, permitID, limit)
	if err != nil {
		return nil, translate(err, "permit", permitID)
	}
	return recordsToHistory(records), nil
}

func templateItems(t *secondary.TemplateRecord) []checklist.TemplateItem {
	items := make([]checklist.TemplateItem, len(t.Items))
	for i, item := range t.Items {
		items[i] = checklist.TemplateItem{Label: item.Label, Required: item.Required, Hint: item.Hint}
	}
	return items
}

func itemStates(items []*secondary.ChecklistItemRecord) []checklist.ItemState {
	states := make([]checklist.ItemState, len(items))
	for i, item := range items {
		states[i] = checklist.ItemState{Label: item.Label, Required: item.Required, Completed: item.Completed}
	}
	return states
}

func recordToPermit(r *secondary.PermitRecord) *primary.Permit {
	return &primary.Permit{
		ID:               r.ID,
		TicketNumber:     r.TicketNumber,
		Category:         r.Category,
		Status:           r.Status,
		PersonID:         r.PersonID,
		PersonName:       r.PersonName,
		ChecklistID:      r.ChecklistID,
		ChecklistVersion: r.ChecklistVersion,
		DueDate:          r.DueDate,
		Notes:            r.Notes,
		CreatedBy:        r.CreatedBy,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func recordsToHistory(records []*secondary.HistoryRecord) []*primary.HistoryEntry {
	entries := make([]*primary.HistoryEntry, len(records))
	for i, r := range records {
		entries[i] = &primary.HistoryEntry{
			ID:         r.ID,
			PermitID:   r.PermitID,
			FromStatus: r.FromStatus,
			ToStatus:   r.ToStatus,
			ChangedBy:  r.ChangedBy,
			Notes:      r.Notes,
			ChangedAt:  r.ChangedAt,
		}
	}
	return entries
}
