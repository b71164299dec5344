package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/permitdesk/internal/ports/primary"
)

// TicketAdapter translates ticket lookups into printed summaries.
type TicketAdapter struct {
	resolver primary.TicketResolver
	tickets  primary.TicketService
	out      io.Writer
}

// NewTicketAdapter creates a new TicketAdapter.
func NewTicketAdapter(resolver primary.TicketResolver, tickets primary.TicketService, out io.Writer) *TicketAdapter {
	return &TicketAdapter{
		resolver: resolver,
		tickets:  tickets,
		out:      out,
	}
}

// Resolve prints the entity behind a ticket. With details, permits also show
// checklist counts and recent history. Returns false when nothing matched.
func (a *TicketAdapter) Resolve(ctx context.Context, number string, details bool, historyLimit int) (bool, error) {
	if !details {
		d, err := a.resolver.Resolve(ctx, number)
		if err != nil {
			return false, err
		}
		if d == nil {
			fmt.Fprintf(a.out, "No entity found for ticket %s\n", number)
			return false, nil
		}
		a.printDetail(d)
		return true, nil
	}

	d, err := a.resolver.ResolveWithDetails(ctx, number, historyLimit)
	if err != nil {
		return false, err
	}
	if d == nil {
		fmt.Fprintf(a.out, "No entity found for ticket %s\n", number)
		return false, nil
	}
	a.printDetail(&d.EntityDetail)

	if d.Checklist != nil {
		fmt.Fprintf(a.out, "Checklist: %d/%d completed, %d required pending\n",
			d.Checklist.Completed, d.Checklist.Total, d.Checklist.RequiredPending)
	}
	if len(d.RecentHistory) > 0 {
		fmt.Fprintln(a.out, "Recent history:")
		for _, e := range d.RecentHistory {
			fmt.Fprintf(a.out, "  %s  %s → %s  by %s\n",
				formatTime(e.ChangedAt), StatusColor(e.FromStatus), StatusColor(e.ToStatus), e.ChangedBy)
		}
	}
	return true, nil
}

func (a *TicketAdapter) printDetail(d *primary.EntityDetail) {
	fmt.Fprintf(a.out, "%s %s\n", cyan(d.TicketNumber), d.Type)
	fmt.Fprintf(a.out, "  Title:   %s\n", d.Title)
	if d.Status != "" {
		fmt.Fprintf(a.out, "  Status:  %s\n", StatusColor(d.Status))
	}
	fmt.Fprintf(a.out, "  ID:      %s\n", d.ID)
	fmt.Fprintf(a.out, "  Updated: %s\n", formatTime(d.UpdatedAt))
}

// Peek prints the next ticket number for a prefix without consuming it.
func (a *TicketAdapter) Peek(ctx context.Context, prefix string) error {
	next, err := a.tickets.Peek(ctx, prefix)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Next %s ticket: %s\n", prefix, next)
	return nil
}
