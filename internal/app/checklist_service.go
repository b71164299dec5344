package app

import (
	"context"

	"github.com/example/permitdesk/internal/core/checklist"
	"github.com/example/permitdesk/internal/core/effects"
	"github.com/example/permitdesk/internal/domainerr"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// ChecklistServiceImpl implements the ChecklistService interface.
type ChecklistServiceImpl struct {
	base
	tx         secondary.Transactor
	permitRepo secondary.PermitRepository
	itemRepo   secondary.ChecklistItemRepository
}

// NewChecklistService creates a new ChecklistService with injected dependencies.
func NewChecklistService(
	tx secondary.Transactor,
	permitRepo secondary.PermitRepository,
	itemRepo secondary.ChecklistItemRepository,
	opts ...Option,
) *ChecklistServiceImpl {
	return &ChecklistServiceImpl{
		base:       newBase(opts),
		tx:         tx,
		permitRepo: permitRepo,
		itemRepo:   itemRepo,
	}
}

// SetItemCompletion marks an item completed or not. Setting the state an item
// already has keeps its existing stamps.
func (s *ChecklistServiceImpl) SetItemCompletion(ctx context.Context, itemID string, completed bool, actorID string) (*primary.ChecklistItem, error) {
	actor := s.actor(ctx, actorID)
	return s.mutate(ctx, itemID, func(ctx context.Context, item *secondary.ChecklistItemRecord) (bool, error) {
		next := checklist.ApplyCompletion(checklist.Completion{
			Completed:   item.Completed,
			CompletedBy: item.CompletedBy,
			CompletedAt: item.CompletedAt,
		}, completed, actor, s.clock())
		if next.Completed == item.Completed {
			return false, nil
		}
		return true, s.itemRepo.UpdateCompletion(ctx, itemID, next.Completed, next.CompletedBy, next.CompletedAt)
	})
}

// AttachNotes replaces an item's notes.
func (s *ChecklistServiceImpl) AttachNotes(ctx context.Context, itemID, notes string) (*primary.ChecklistItem, error) {
	return s.mutate(ctx, itemID, func(ctx context.Context, item *secondary.ChecklistItemRecord) (bool, error) {
		if item.Notes == notes {
			return false, nil
		}
		return true, s.itemRepo.UpdateNotes(ctx, itemID, notes)
	})
}

// AttachFiles adds file references not already attached, preserving order.
func (s *ChecklistServiceImpl) AttachFiles(ctx context.Context, itemID string, refs []string) (*primary.ChecklistItem, error) {
	if len(refs) == 0 {
		return nil, domainerr.Validation("refs", "at least one file reference is required")
	}
	return s.mutate(ctx, itemID, func(ctx context.Context, item *secondary.ChecklistItemRecord) (bool, error) {
		merged := checklist.MergeFileRefs(item.FileURLs, refs)
		if len(merged) == len(item.FileURLs) {
			return false, nil
		}
		return true, s.itemRepo.UpdateFiles(ctx, itemID, merged)
	})
}

// mutate loads the item, applies fn and re-reads it in one transaction.
// fn reports whether it wrote anything.
func (s *ChecklistServiceImpl) mutate(
	ctx context.Context,
	itemID string,
	fn func(ctx context.Context, item *secondary.ChecklistItemRecord) (bool, error),
) (*primary.ChecklistItem, error) {
	var result *secondary.ChecklistItemRecord
	var changed bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		item, err := s.itemRepo.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		changed, err = fn(ctx, item)
		if err != nil {
			return err
		}
		if !changed {
			result = item
			return nil
		}
		result, err = s.itemRepo.GetByID(ctx, itemID)
		return err
	})
	if err != nil {
		return nil, translate(err, "checklist item", itemID)
	}

	if changed {
		s.logger.Info("checklist item updated",
			"item", result.ID, "permit", result.PermitID, "completed", result.Completed)
		s.invalidatePermit(ctx, result.PermitID)
	}
	return recordToChecklistItem(result), nil
}

func (s *ChecklistServiceImpl) invalidatePermit(ctx context.Context, permitID string) {
	p, err := s.permitRepo.GetByID(ctx, permitID)
	if err != nil {
		s.emit(ctx, effects.Invalidate("permit", permitID, ""))
		return
	}
	s.emit(ctx, effects.Invalidate("permit", p.ID, p.TicketNumber))
}

// ListItems lists a permit's items in template order.
func (s *ChecklistServiceImpl) ListItems(ctx context.Context, permitID string) ([]*primary.ChecklistItem, error) {
	if _, err := s.permitRepo.GetByID(ctx, permitID); err != nil {
		return nil, translate(err, "permit", permitID)
	}
	records, err := s.itemRepo.ListByPermit(ctx, permitID)
	if err != nil {
		return nil, translate(err, "permit", permitID)
	}
	items := make([]*primary.ChecklistItem, len(records))
	for i, r := range records {
		items[i] = recordToChecklistItem(r)
	}
	return items, nil
}

// Progress summarizes completion for a permit.
func (s *ChecklistServiceImpl) Progress(ctx context.Context, permitID string) (*primary.ChecklistProgress, error) {
	if _, err := s.permitRepo.GetByID(ctx, permitID); err != nil {
		return nil, translate(err, "permit", permitID)
	}
	records, err := s.itemRepo.ListByPermit(ctx, permitID)
	if err != nil {
		return nil, translate(err, "permit", permitID)
	}
	return progressOf(records), nil
}

func progressOf(records []*secondary.ChecklistItemRecord) *primary.ChecklistProgress {
	p := checklist.ComputeProgress(itemStates(records))
	return &primary.ChecklistProgress{
		Total:           p.Total,
		Completed:       p.Completed,
		RequiredPending: p.RequiredPending,
		PendingRequired: p.PendingRequired,
	}
}

func recordToChecklistItem(r *secondary.ChecklistItemRecord) *primary.ChecklistItem {
	return &primary.ChecklistItem{
		ID:          r.ID,
		PermitID:    r.PermitID,
		Position:    r.Position,
		Label:       r.Label,
		Required:    r.Required,
		Hint:        r.Hint,
		Completed:   r.Completed,
		CompletedBy: r.CompletedBy,
		CompletedAt: r.CompletedAt,
		Notes:       r.Notes,
		FileURLs:    append([]string(nil), r.FileURLs...),
	}
}
