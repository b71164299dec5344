package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/example/permitdesk/internal/core/ticket"
	"github.com/example/permitdesk/internal/ports/primary"
)

// PermitAdapter is a thin adapter that translates CLI operations to PermitService
// and ChecklistService calls.
type PermitAdapter struct {
	permits   primary.PermitService
	checklist primary.ChecklistService
	out       io.Writer
}

// NewPermitAdapter creates a new PermitAdapter with the given services.
func NewPermitAdapter(permits primary.PermitService, checklist primary.ChecklistService, out io.Writer) *PermitAdapter {
	return &PermitAdapter{
		permits:   permits,
		checklist: checklist,
		out:       out,
	}
}

// Create creates a permit and prints its snapshotted checklist.
func (a *PermitAdapter) Create(ctx context.Context, req primary.CreatePermitRequest) (*primary.Permit, error) {
	p, err := a.permits.CreatePermit(ctx, req)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Created permit %s (%s) for %s\n", p.TicketNumber, p.Category, p.PersonName)
	if p.ChecklistVersion > 0 {
		fmt.Fprintf(a.out, "  Checklist v%d, %d item(s)\n", p.ChecklistVersion, len(p.Items))
	} else {
		fmt.Fprintln(a.out, faint("  No active checklist template for this category"))
	}
	return p, nil
}

// Show displays a permit by ID or ticket number, with its checklist.
func (a *PermitAdapter) Show(ctx context.Context, ref string) (*primary.Permit, error) {
	p, err := a.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nPermit:   %s\n", p.TicketNumber)
	fmt.Fprintf(a.out, "Category: %s\n", p.Category)
	fmt.Fprintf(a.out, "Status:   %s\n", StatusColor(p.Status))
	fmt.Fprintf(a.out, "Person:   %s\n", p.PersonName)
	if p.DueDate != nil {
		fmt.Fprintf(a.out, "Due:      %s\n", formatDate(p.DueDate))
	}
	if p.Notes != "" {
		fmt.Fprintf(a.out, "Notes:    %s\n", p.Notes)
	}
	fmt.Fprintf(a.out, "Created:  %s by %s\n", formatTime(p.CreatedAt), p.CreatedBy)

	if len(p.Items) > 0 {
		fmt.Fprintf(a.out, "\nChecklist (v%d):\n", p.ChecklistVersion)
		for _, item := range p.Items {
			a.printItem(item)
		}
	}
	fmt.Fprintln(a.out)
	return p, nil
}

func (a *PermitAdapter) lookup(ctx context.Context, ref string) (*primary.Permit, error) {
	if _, ok := ticket.Parse(ref); ok {
		return a.permits.GetPermitByTicket(ctx, ref)
	}
	return a.permits.GetPermit(ctx, ref)
}

func (a *PermitAdapter) printItem(item *primary.ChecklistItem) {
	req := ""
	if item.Required {
		req = red("*")
	}
	fmt.Fprintf(a.out, "  %s %s%s %s\n", CheckMark(item.Completed), item.Label, req, faint(item.ID))
	if item.Completed {
		fmt.Fprintf(a.out, "      completed by %s at %s\n", item.CompletedBy, formatTime(*item.CompletedAt))
	}
	if item.Notes != "" {
		fmt.Fprintf(a.out, "      notes: %s\n", item.Notes)
	}
	for _, f := range item.FileURLs {
		fmt.Fprintf(a.out, "      file: %s\n", f)
	}
}

// List lists permits matching filters.
func (a *PermitAdapter) List(ctx context.Context, filters primary.PermitFilters) error {
	permits, err := a.permits.ListPermits(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list permits: %w", err)
	}

	if len(permits) == 0 {
		fmt.Fprintln(a.out, "No permits found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-15s %-20s %-10s %-11s %s\n", "TICKET", "CATEGORY", "STATUS", "DUE", "PERSON")
	fmt.Fprintln(a.out, rule)
	for _, p := range permits {
		// Pad before colouring so escape codes do not break alignment.
		fmt.Fprintf(a.out, "%-15s %-20s %s %-11s %s\n",
			p.TicketNumber, p.Category, StatusColor(fmt.Sprintf("%-10s", p.Status)), formatDate(p.DueDate), p.PersonName)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Update changes notes and/or due date. Nil values are left unchanged.
func (a *PermitAdapter) Update(ctx context.Context, ref string, notes *string, due *time.Time) error {
	p, err := a.lookup(ctx, ref)
	if err != nil {
		return err
	}
	updated, err := a.permits.UpdatePermit(ctx, primary.UpdatePermitRequest{
		PermitID: p.ID,
		Notes:    notes,
		DueDate:  due,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Updated permit %s\n", updated.TicketNumber)
	return nil
}

// Transition moves a permit to a new status.
func (a *PermitAdapter) Transition(ctx context.Context, ref, toStatus, actorID, notes string) error {
	p, err := a.lookup(ctx, ref)
	if err != nil {
		return err
	}
	before := p.Status

	moved, err := a.permits.Transition(ctx, primary.TransitionRequest{
		PermitID: p.ID,
		ToStatus: toStatus,
		ActorID:  actorID,
		Notes:    notes,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Permit %s: %s → %s\n", moved.TicketNumber, StatusColor(before), StatusColor(moved.Status))
	return nil
}

// History prints status changes newest first.
func (a *PermitAdapter) History(ctx context.Context, ref string, limit int) error {
	p, err := a.lookup(ctx, ref)
	if err != nil {
		return err
	}
	entries, err := a.permits.History(ctx, p.ID, limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintf(a.out, "No status changes for %s\n", p.TicketNumber)
		return nil
	}

	fmt.Fprintf(a.out, "\nHistory for %s:\n", p.TicketNumber)
	for _, e := range entries {
		fmt.Fprintf(a.out, "  %s  %s → %s  by %s\n",
			formatTime(e.ChangedAt), StatusColor(e.FromStatus), StatusColor(e.ToStatus), e.ChangedBy)
		if e.Notes != "" {
			fmt.Fprintf(a.out, "      %s\n", e.Notes)
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// Progress prints checklist completion for a permit.
func (a *PermitAdapter) Progress(ctx context.Context, ref string) error {
	p, err := a.lookup(ctx, ref)
	if err != nil {
		return err
	}
	progress, err := a.checklist.Progress(ctx, p.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s: %d/%d items completed\n", p.TicketNumber, progress.Completed, progress.Total)
	if progress.RequiredPending == 0 {
		fmt.Fprintln(a.out, green("All required items completed"))
		return nil
	}
	fmt.Fprintf(a.out, "%s\n", yellow(fmt.Sprintf("%d required item(s) pending:", progress.RequiredPending)))
	for _, label := range progress.PendingRequired {
		fmt.Fprintf(a.out, "  - %s\n", label)
	}
	return nil
}

// Checklist prints a permit's items in template order.
func (a *PermitAdapter) Checklist(ctx context.Context, ref string) error {
	p, err := a.lookup(ctx, ref)
	if err != nil {
		return err
	}
	items, err := a.checklist.ListItems(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintf(a.out, "%s has no checklist items\n", p.TicketNumber)
		return nil
	}
	fmt.Fprintf(a.out, "%s checklist (v%d):\n", p.TicketNumber, p.ChecklistVersion)
	for _, item := range items {
		a.printItem(item)
	}
	return nil
}

// Item prints one checklist item after a change.
func (a *PermitAdapter) Item(item *primary.ChecklistItem) {
	a.printItem(item)
}
