package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/permitdesk/internal/db"
	"github.com/example/permitdesk/internal/wire"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "dev",
		Short:  "Development utilities",
		Hidden: true,
	}
	cmd.AddCommand(devSeedCmd())
	cmd.AddCommand(devSchemaCmd())
	return cmd
}

func devSeedCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fixture persons, templates, permits and registry entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := wire.Config().Database.Path
			if !force && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Seed fixtures into %s?", path)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			if err := db.SeedFixtures(wire.DB()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Fixtures loaded")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}

func devSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(db.GetSchemaSQL())
		},
	}
}
