package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/permitdesk/internal/ctxutil"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/wire"
)

// PermitCmd returns the permit command
func PermitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permit",
		Short: "Manage permits and their approval workflow",
		Long: `Permits move PENDING → SUBMITTED → APPROVED or REJECTED.
Every change is recorded in the permit's history.

Commands taking [permit] accept either a permit ID or a ticket number
such as WRK-2026-0001.`,
	}
	cmd.AddCommand(permitCreateCmd())
	cmd.AddCommand(permitShowCmd())
	cmd.AddCommand(permitListCmd())
	cmd.AddCommand(permitUpdateCmd())
	cmd.AddCommand(permitStatusCmd("submit", "SUBMITTED", "Submit a pending permit for review"))
	cmd.AddCommand(permitStatusCmd("approve", "APPROVED", "Approve a submitted permit"))
	cmd.AddCommand(permitStatusCmd("reject", "REJECTED", "Reject a submitted permit"))
	cmd.AddCommand(permitTransitionCmd())
	cmd.AddCommand(permitHistoryCmd())
	cmd.AddCommand(permitProgressCmd())
	return cmd
}

func permitCreateCmd() *cobra.Command {
	var category, personID, notes, due string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a permit and snapshot the active checklist",
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := parseDate(due)
			if err != nil {
				return err
			}
			_, err = wire.PermitAdapter().Create(commandContext(cmd), primary.CreatePermitRequest{
				Category: strings.ToUpper(category),
				PersonID: personID,
				Notes:    notes,
				DueDate:  dueDate,
			})
			return err
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Permit category, e.g. WORK_PERMIT (required)")
	cmd.Flags().StringVarP(&personID, "person", "p", "", "Person ID (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("person")
	return cmd
}

func permitShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [permit]",
		Short: "Show a permit with its checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.PermitAdapter().Show(commandContext(cmd), args[0])
			return err
		},
	}
}

func permitListCmd() *cobra.Command {
	var filters primary.PermitFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List permits",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters.Status = strings.ToUpper(filters.Status)
			filters.Category = strings.ToUpper(filters.Category)
			return wire.PermitAdapter().List(commandContext(cmd), filters)
		},
	}

	cmd.Flags().StringVarP(&filters.PersonID, "person", "p", "", "Filter by person ID")
	cmd.Flags().StringVar(&filters.Status, "status", "", "Filter by status")
	cmd.Flags().StringVarP(&filters.Category, "category", "c", "", "Filter by category")
	cmd.Flags().IntVarP(&filters.Limit, "limit", "n", 0, "Maximum rows")
	return cmd
}

func permitUpdateCmd() *cobra.Command {
	var notes, due string

	cmd := &cobra.Command{
		Use:   "update [permit]",
		Short: "Update a permit's notes or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var notesPtr *string
			if cmd.Flags().Changed("notes") {
				notesPtr = &notes
			}
			dueDate, err := parseDate(due)
			if err != nil {
				return err
			}
			if notesPtr == nil && dueDate == nil {
				return fmt.Errorf("nothing to update: pass --notes and/or --due")
			}
			return wire.PermitAdapter().Update(commandContext(cmd), args[0], notesPtr, dueDate)
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Replace notes")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	return cmd
}

func permitStatusCmd(use, status, short string) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   use + " [permit]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			return wire.PermitAdapter().Transition(ctx, args[0], status, ctxutil.ActorFromContext(ctx), notes)
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "m", "", "Notes recorded with the status change")
	return cmd
}

func permitTransitionCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "transition [permit] [status]",
		Short: "Move a permit to any status the workflow allows",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			return wire.PermitAdapter().Transition(ctx, args[0], strings.ToUpper(args[1]), ctxutil.ActorFromContext(ctx), notes)
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "m", "", "Notes recorded with the status change")
	return cmd
}

func permitHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [permit]",
		Short: "Show status changes, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.PermitAdapter().History(commandContext(cmd), args[0], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries (0 for all)")
	return cmd
}

func permitProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress [permit]",
		Short: "Summarize checklist completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.PermitAdapter().Progress(commandContext(cmd), args[0])
		},
	}
}
