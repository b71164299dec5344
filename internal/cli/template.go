package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/wire"
)

// TemplateCmd returns the template command
func TemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage versioned checklist templates",
		Long: `Checklist templates define the requirements a new permit must collect.
Creating a template for a category makes it the active version; permits
created earlier keep the checklist they were created with.`,
	}
	cmd.AddCommand(templateCreateCmd())
	cmd.AddCommand(templateImportCmd())
	cmd.AddCommand(templateShowCmd())
	cmd.AddCommand(templateListCmd())
	cmd.AddCommand(templateVersionsCmd())
	return cmd
}

// parseTemplateItem reads "Label", "Label?" (optional) or "Label|hint".
func parseTemplateItem(raw string) primary.TemplateItem {
	item := primary.TemplateItem{Required: true}
	label, hint, _ := strings.Cut(raw, "|")
	label = strings.TrimSpace(label)
	if strings.HasSuffix(label, "?") {
		item.Required = false
		label = strings.TrimSpace(strings.TrimSuffix(label, "?"))
	}
	item.Label = label
	item.Hint = strings.TrimSpace(hint)
	return item
}

func templateCreateCmd() *cobra.Command {
	var name, category string
	var items []string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a new template version for a category",
		Example: `  permitdesk template create --category WORK_PERMIT --name "Work permit" \
    --item "Passport copy" --item "Employer letter|signed and stamped" --item "Photo?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := primary.CreateTemplateRequest{
				Name:     name,
				Category: strings.ToUpper(category),
			}
			for _, raw := range items {
				req.Items = append(req.Items, parseTemplateItem(raw))
			}

			tmpl, err := wire.TemplateService().CreateVersion(commandContext(cmd), req)
			if err != nil {
				return fmt.Errorf("failed to create template: %w", err)
			}
			printTemplateCreated(tmpl)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Template name (required)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Permit category (required)")
	cmd.Flags().StringArrayVarP(&items, "item", "i", nil, `Checklist item, in order. Suffix "?" for optional, "|hint" for a hint`)
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("category")
	return cmd
}

func templateImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.yaml]",
		Short: "Create a template version from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			tmpl, err := wire.TemplateService().ImportFile(ctx, args[0], resolveActor(cmd))
			if err != nil {
				return fmt.Errorf("failed to import template: %w", err)
			}
			printTemplateCreated(tmpl)
			return nil
		},
	}
}

func printTemplateCreated(tmpl *primary.Template) {
	fmt.Printf("✓ Created template %s v%d for %s (%d items)\n", tmpl.Name, tmpl.Version, tmpl.Category, len(tmpl.Items))
}

func templateShowCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "show [category]",
		Short: "Show the active template for a category, or any version by --id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			svc := wire.TemplateService()

			var tmpl *primary.Template
			var err error
			switch {
			case id != "":
				tmpl, err = svc.GetTemplate(ctx, id)
			case len(args) == 1:
				tmpl, err = svc.GetActive(ctx, strings.ToUpper(args[0]))
			default:
				return fmt.Errorf("pass a category or --id")
			}
			if err != nil {
				return err
			}
			if tmpl == nil {
				fmt.Printf("No active template for %s\n", strings.ToUpper(args[0]))
				return nil
			}

			active := ""
			if tmpl.Active {
				active = " (active)"
			}
			fmt.Printf("\n%s v%d%s\n", tmpl.Name, tmpl.Version, active)
			fmt.Printf("Category: %s\n", tmpl.Category)
			fmt.Printf("ID:       %s\n\n", tmpl.ID)
			for i, item := range tmpl.Items {
				marker := ""
				if item.Required {
					marker = "*"
				}
				fmt.Printf("  %2d. %s%s\n", i+1, item.Label, marker)
				if item.Hint != "" {
					fmt.Printf("      %s\n", item.Hint)
				}
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Template ID")
	return cmd
}

func templateListCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := wire.TemplateService().ListTemplates(commandContext(cmd), search)
			if err != nil {
				return fmt.Errorf("failed to list templates: %w", err)
			}
			printTemplates(templates)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Match name or category")
	return cmd
}

func templateVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions [category]",
		Short: "List every version of a category's template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := wire.TemplateService().ListVersions(commandContext(cmd), strings.ToUpper(args[0]))
			if err != nil {
				return fmt.Errorf("failed to list versions: %w", err)
			}
			printTemplates(templates)
			return nil
		},
	}
}

func printTemplates(templates []*primary.Template) {
	if len(templates) == 0 {
		fmt.Println("No templates found")
		return
	}
	for _, t := range templates {
		active := ""
		if t.Active {
			active = "active"
		}
		fmt.Printf("%-20s v%-3d %-6s %s  %s\n", t.Category, t.Version, active, t.Name, t.ID)
	}
}
