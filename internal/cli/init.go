package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/permitdesk/internal/config"
	"github.com/example/permitdesk/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a permitdesk workspace",
		Long: `Write .permitdesk/config.yaml in the current directory (unless it exists)
and create the database with the current schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			path := config.Path(dir)
			_, err = os.Stat(path)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				if err := config.SaveConfig(dir, config.Default(dir)); err != nil {
					return err
				}
				fmt.Printf("✓ Wrote %s\n", path)
			case err != nil:
				return fmt.Errorf("failed to check config: %w", err)
			default:
				fmt.Printf("Using existing %s\n", path)
			}

			// Opening the database applies migrations.
			wire.DB()
			fmt.Printf("✓ Database ready at %s\n", wire.Config().Database.Path)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  permitdesk template import work-permit.yaml")
			fmt.Println("  permitdesk person create --first Amara --last Okafor")
			return nil
		},
	}
}
