package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/permitdesk/internal/ctxutil"
	"github.com/example/permitdesk/internal/wire"
)

// ChecklistCmd returns the checklist command
func ChecklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Track a permit's checklist items",
	}
	cmd.AddCommand(checklistListCmd())
	cmd.AddCommand(checklistMarkCmd("done", true, "Mark an item completed"))
	cmd.AddCommand(checklistMarkCmd("undo", false, "Mark an item not completed"))
	cmd.AddCommand(checklistNoteCmd())
	cmd.AddCommand(checklistAttachCmd())
	return cmd
}

func checklistListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [permit]",
		Short: "List a permit's checklist items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.PermitAdapter().Checklist(commandContext(cmd), args[0])
		},
	}
}

func checklistMarkCmd(use string, completed bool, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [item-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			item, err := wire.ChecklistService().SetItemCompletion(ctx, args[0], completed, ctxutil.ActorFromContext(ctx))
			if err != nil {
				return err
			}
			wire.PermitAdapter().Item(item)
			return nil
		},
	}
}

func checklistNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note [item-id] [text]",
		Short: "Replace an item's notes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := wire.ChecklistService().AttachNotes(commandContext(cmd), args[0], args[1])
			if err != nil {
				return err
			}
			wire.PermitAdapter().Item(item)
			return nil
		},
	}
}

func checklistAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach [item-id] [file-ref...]",
		Short: "Attach file references to an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := wire.ChecklistService().AttachFiles(commandContext(cmd), args[0], args[1:])
			if err != nil {
				return err
			}
			wire.PermitAdapter().Item(item)
			return nil
		},
	}
}
