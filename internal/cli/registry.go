package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/permitdesk/internal/adapters/cli"
	"github.com/example/permitdesk/internal/core/ticket"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/wire"
)

// VehicleCmd returns the vehicle registry command
func VehicleCmd() *cobra.Command {
	return registryCmd(ticket.KindVehicle, "vehicle", "Manage vehicle registrations (VEH tickets)")
}

// ImportCmd returns the import permit registry command
func ImportCmd() *cobra.Command {
	return registryCmd(ticket.KindImportPermit, "import", "Manage import permits (IMP tickets)")
}

// CompanyCmd returns the company registration command
func CompanyCmd() *cobra.Command {
	return registryCmd(ticket.KindCompanyRegistration, "company", "Manage company registrations (CMP tickets)")
}

// registryCmd builds the same create/show/list/status tree for every registry kind.
func registryCmd(kind ticket.Kind, use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	var req primary.CreateRegistryRequest
	createCmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Register a new entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Title = args[0]
			e, err := wire.RegistryService(kind).Create(commandContext(cmd), req)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", use, err)
			}
			fmt.Printf("✓ Created %s %s: %s\n", e.Kind, e.TicketNumber, e.Title)
			return nil
		},
	}
	createCmd.Flags().StringVar(&req.Reference, "reference", "", "External reference (plate, customs or registry number)")
	createCmd.Flags().StringVar(&req.PersonID, "person", "", "Owning person ID")
	createCmd.Flags().StringVar(&req.Notes, "notes", "", "Free-text notes")

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := wire.RegistryService(kind).Get(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("\n%s: %s\n", e.Kind, e.TicketNumber)
			fmt.Printf("Title:     %s\n", e.Title)
			fmt.Printf("Status:    %s\n", cliadapter.StatusColor(e.Status))
			fmt.Printf("ID:        %s\n", e.ID)
			if e.Reference != "" {
				fmt.Printf("Reference: %s\n", e.Reference)
			}
			if e.PersonID != "" {
				fmt.Printf("Person:    %s\n", e.PersonID)
			}
			if e.Notes != "" {
				fmt.Printf("Notes:     %s\n", e.Notes)
			}
			fmt.Println()
			return nil
		},
	}

	var filters primary.RegistryFilters
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters.Status = strings.ToUpper(filters.Status)
			entries, err := wire.RegistryService(kind).List(commandContext(cmd), filters)
			if err != nil {
				return fmt.Errorf("failed to list %s entries: %w", use, err)
			}
			if len(entries) == 0 {
				fmt.Printf("No %s entries found\n", use)
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%-12s %s %s\n", e.TicketNumber, cliadapter.StatusColor(fmt.Sprintf("%-10s", e.Status)), e.Title)
			}
			return nil
		},
	}
	listCmd.Flags().StringVarP(&filters.Search, "search", "s", "", "Match title, reference or ticket")
	listCmd.Flags().StringVar(&filters.Status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&filters.PersonID, "person", "", "Filter by owning person")

	statusCmd := &cobra.Command{
		Use:   "status [id] [status]",
		Short: "Move an entry to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := wire.RegistryService(kind).SetStatus(commandContext(cmd), args[0], strings.ToUpper(args[1]))
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s %s is now %s\n", e.Kind, e.TicketNumber, cliadapter.StatusColor(e.Status))
			return nil
		},
	}

	cmd.AddCommand(createCmd, showCmd, listCmd, statusCmd)
	return cmd
}
