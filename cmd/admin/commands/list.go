package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakehq/jaketodo/internal/database"
	"github.com/jakehq/jaketodo/internal/models"
	"github.com/jakehq/jaketodo/internal/validation"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var status string
	var priority int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active todos",
		Long:  "List active todos, optionally filtered by status and priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter database.TodoFilter
			if status != "" {
				if err := validation.ValidateStatus(status); err != nil {
					return err
				}
				s := models.TodoStatus(status)
				filter.Status = &s
			}
			if priority != 0 {
				if err := validation.ValidatePriority(priority); err != nil {
					return err
				}
				filter.Priority = &priority
			}

			db, closer, err := openDatabase()
			if err != nil {
				return err
			}
			defer closer()

			repo := database.NewTodoRepository(db)
			todos, err := repo.List(context.Background(), filter)
			if err != nil {
				return fmt.Errorf("failed to list todos: %w", err)
			}

			if len(todos) == 0 {
				fmt.Println("No todos found")
				return nil
			}

			for _, todo := range todos {
				due := "-"
				if todo.DueDate != nil {
					due = todo.DueDate.String()
				}
				fmt.Printf("%6d  [%s]  p%d  due %-10s  %s\n",
					todo.ID, todo.Status, todo.Priority, due, todo.Description)
			}
			fmt.Printf("\n%d todo(s)\n", len(todos))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending or completed)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Filter by priority (1-4)")

	return cmd
}
