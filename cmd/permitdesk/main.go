package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/permitdesk/internal/cli"
	"github.com/example/permitdesk/internal/version"
	"github.com/example/permitdesk/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "permitdesk",
		Short:   "Permit desk - track foreigners' permits through approval",
		Version: version.String(),
		Long: `permitdesk manages persons, permits, checklist templates and the
approval workflow. Every entity carries a human-readable ticket number
(FOR-000123, WRK-2026-0001) that resolves back to it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.PersonCmd())
	rootCmd.AddCommand(cli.TemplateCmd())
	rootCmd.AddCommand(cli.PermitCmd())
	rootCmd.AddCommand(cli.ChecklistCmd())
	rootCmd.AddCommand(cli.TaskCmd())
	rootCmd.AddCommand(cli.TicketCmd())

	// Registries
	rootCmd.AddCommand(cli.VehicleCmd())
	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.CompanyCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	err := rootCmd.Execute()
	if shutdownErr := wire.Shutdown(); shutdownErr != nil {
		fmt.Fprintln(os.Stderr, shutdownErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
