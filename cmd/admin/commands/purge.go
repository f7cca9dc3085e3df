package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakehq/jaketodo/internal/database"
)

// NewPurgeCmd creates the purge command
func NewPurgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Permanently remove soft-deleted todos",
		Long:  "Erase all todos that have been soft deleted. This cannot be undone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closer, err := openDatabase()
			if err != nil {
				return err
			}
			defer closer()

			repo := database.NewTodoRepository(db)
			count, err := repo.Purge(context.Background())
			if err != nil {
				return fmt.Errorf("failed to purge todos: %w", err)
			}

			fmt.Printf("Purged %d todo(s)\n", count)
			return nil
		},
	}

	return cmd
}
