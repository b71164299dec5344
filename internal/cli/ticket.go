package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/permitdesk/internal/app"
	"github.com/example/permitdesk/internal/wire"
)

// TicketCmd returns the ticket command
func TicketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Look up entities by ticket number",
	}
	cmd.AddCommand(ticketResolveCmd())
	cmd.AddCommand(ticketPeekCmd())
	return cmd
}

func ticketResolveCmd() *cobra.Command {
	var details bool
	var history int

	cmd := &cobra.Command{
		Use:     "resolve [ticket]",
		Short:   "Show the entity behind a ticket number",
		Example: `  permitdesk ticket resolve FOR-000100
  permitdesk ticket resolve WRK-2026-0001 --details`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.TicketAdapter().Resolve(commandContext(cmd), args[0], details, history)
			return err
		},
	}

	cmd.Flags().BoolVarP(&details, "details", "d", false, "Include checklist progress and recent history for permits")
	cmd.Flags().IntVar(&history, "history", app.DefaultHistoryLimit, "History entries shown with --details")
	return cmd
}

func ticketPeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "peek [prefix]",
		Short: "Show the next ticket number for a prefix without using it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.TicketAdapter().Peek(commandContext(cmd), strings.ToUpper(args[0]))
		},
	}
}
