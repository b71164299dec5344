package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/permitdesk/internal/adapters/cli"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/wire"
)

// TaskCmd returns the task command
func TaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage follow-up tasks",
	}
	cmd.AddCommand(taskCreateCmd())
	cmd.AddCommand(taskListCmd())
	cmd.AddCommand(taskShowCmd())
	cmd.AddCommand(taskCompleteCmd())
	cmd.AddCommand(taskDeleteCmd())
	return cmd
}

func taskCreateCmd() *cobra.Command {
	var personID, permitID, due string

	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := parseDate(due)
			if err != nil {
				return err
			}
			task, err := wire.TaskService().CreateTask(commandContext(cmd), primary.CreateTaskRequest{
				Title:    args[0],
				PersonID: personID,
				PermitID: permitID,
				DueDate:  dueDate,
			})
			if err != nil {
				return fmt.Errorf("failed to create task: %w", err)
			}

			fmt.Printf("✓ Created task %s: %s\n", task.ID, task.Title)
			if task.PermitID != "" {
				fmt.Printf("  Permit: %s\n", task.PermitID)
			}
			if task.PersonID != "" {
				fmt.Printf("  Person: %s\n", task.PersonID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&personID, "person", "p", "", "Person ID")
	cmd.Flags().StringVar(&permitID, "permit", "", "Permit ID")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func taskListCmd() *cobra.Command {
	var filters primary.TaskFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := wire.TaskService().ListTasks(commandContext(cmd), filters)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}
			if len(tasks) == 0 {
				fmt.Println("No tasks found.")
				return nil
			}

			fmt.Printf("Found %d task(s):\n\n", len(tasks))
			for _, task := range tasks {
				fmt.Printf("%s %s: %s\n", cliadapter.StatusColor(fmt.Sprintf("%-4s", task.Status)), task.ID, task.Title)
				if task.DueDate != nil {
					fmt.Printf("   Due: %s\n", task.DueDate.Format(dateLayout))
				}
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVarP(&filters.PersonID, "person", "p", "", "Filter by person ID")
	cmd.Flags().StringVar(&filters.PermitID, "permit", "", "Filter by permit ID")
	cmd.Flags().StringVar(&filters.Status, "status", "", "Filter by status (open, done)")
	return cmd
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [task-id]",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := wire.TaskService().GetTask(commandContext(cmd), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nTask:    %s\n", task.ID)
			fmt.Printf("Title:   %s\n", task.Title)
			fmt.Printf("Status:  %s\n", cliadapter.StatusColor(task.Status))
			if task.PersonID != "" {
				fmt.Printf("Person:  %s\n", task.PersonID)
			}
			if task.PermitID != "" {
				fmt.Printf("Permit:  %s\n", task.PermitID)
			}
			if task.DueDate != nil {
				fmt.Printf("Due:     %s\n", task.DueDate.Format(dateLayout))
			}
			if task.CompletedAt != nil {
				fmt.Printf("Done:    %s\n", task.CompletedAt.Local().Format("2006-01-02 15:04"))
			}
			fmt.Println()
			return nil
		},
	}
}

func taskCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete [task-id]",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := wire.TaskService().CompleteTask(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("✓ Task %s completed\n", task.ID)
			return nil
		},
	}
}

func taskDeleteCmd() *cobra.Command {
	var withPermit, yes bool

	cmd := &cobra.Command{
		Use:   "delete [task-id]",
		Short: "Delete a task, optionally with its permit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			svc := wire.TaskService()

			plan, err := svc.PlanDeletion(ctx, args[0], withPermit)
			if err != nil {
				return err
			}
			if withPermit {
				if !confirmPlan(cmd, plan, yes) {
					return nil
				}
			}
			if err := svc.CommitDeletion(ctx, plan); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted task %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&withPermit, "with-permit", false, "Also delete the linked permit")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
