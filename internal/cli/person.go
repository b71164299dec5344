package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/wire"
)

// PersonCmd returns the person command
func PersonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Manage persons (foreigners holding permits)",
	}
	cmd.AddCommand(personCreateCmd())
	cmd.AddCommand(personShowCmd())
	cmd.AddCommand(personListCmd())
	cmd.AddCommand(personDeleteCmd())
	return cmd
}

func personCreateCmd() *cobra.Command {
	var req primary.CreatePersonRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a person with a FOR ticket",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := wire.PersonService().CreatePerson(commandContext(cmd), req)
			if err != nil {
				return fmt.Errorf("failed to create person: %w", err)
			}
			fmt.Printf("✓ Created person %s: %s\n", p.TicketNumber, p.FullName())
			if p.GuardianID != "" {
				fmt.Printf("  Dependent of %s (%s)\n", p.GuardianID, p.Relationship)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.FirstName, "first", "", "First name (required)")
	cmd.Flags().StringVar(&req.LastName, "last", "", "Last name")
	cmd.Flags().StringVar(&req.Nationality, "nationality", "", "Nationality (ISO country code)")
	cmd.Flags().StringVar(&req.PassportNumber, "passport", "", "Passport number")
	cmd.Flags().StringVar(&req.GuardianID, "guardian", "", "Guardian person ID (makes this person a dependent)")
	cmd.Flags().StringVar(&req.Relationship, "relationship", "", "Relationship to the guardian")
	cmd.MarkFlagRequired("first")
	return cmd
}

func personShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [person-id]",
		Short: "Show person details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := wire.PersonService().GetPerson(commandContext(cmd), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nPerson:      %s\n", p.TicketNumber)
			fmt.Printf("Name:        %s\n", p.FullName())
			fmt.Printf("ID:          %s\n", p.ID)
			if p.Nationality != "" {
				fmt.Printf("Nationality: %s\n", p.Nationality)
			}
			if p.PassportNumber != "" {
				fmt.Printf("Passport:    %s\n", p.PassportNumber)
			}
			if p.GuardianID != "" {
				fmt.Printf("Guardian:    %s (%s)\n", p.GuardianID, p.Relationship)
			}
			fmt.Printf("Created:     %s by %s\n\n", p.CreatedAt.Local().Format("2006-01-02 15:04"), p.CreatedBy)
			return nil
		},
	}
}

func personListCmd() *cobra.Command {
	var filters primary.PersonFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persons",
		RunE: func(cmd *cobra.Command, args []string) error {
			persons, err := wire.PersonService().ListPersons(commandContext(cmd), filters)
			if err != nil {
				return fmt.Errorf("failed to list persons: %w", err)
			}
			if len(persons) == 0 {
				fmt.Println("No persons found")
				return nil
			}

			fmt.Printf("\n%-12s %-28s %-4s %s\n", "TICKET", "NAME", "NAT", "ID")
			for _, p := range persons {
				fmt.Printf("%-12s %-28s %-4s %s\n", p.TicketNumber, p.FullName(), p.Nationality, p.ID)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVarP(&filters.Search, "search", "s", "", "Match name, passport or ticket")
	cmd.Flags().StringVar(&filters.GuardianID, "guardian", "", "Only dependents of this person")
	cmd.Flags().IntVarP(&filters.Limit, "limit", "n", 0, "Maximum rows")
	return cmd
}

func personDeleteCmd() *cobra.Command {
	var cascade, yes bool

	cmd := &cobra.Command{
		Use:   "delete [person-id]",
		Short: "Delete a person",
		Long: `Delete a person. Without --cascade the delete is refused while the person
has permits, tasks or dependents. With --cascade the full deletion plan is
shown and must be confirmed (or pre-approved with --yes).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			svc := wire.PersonService()

			if !cascade {
				if _, err := svc.DeletePerson(ctx, args[0], false); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted person %s\n", args[0])
				return nil
			}

			plan, err := svc.PlanDeletion(ctx, args[0])
			if err != nil {
				return err
			}
			if !confirmPlan(cmd, plan, yes) {
				return nil
			}
			if err := svc.CommitDeletion(ctx, plan); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted person %s and everything listed above\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&cascade, "cascade", false, "Also delete permits, tasks and dependents")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
