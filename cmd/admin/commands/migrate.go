package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Create or update the todos schema. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closer, err := openDatabase()
			if err != nil {
				return err
			}
			defer closer()

			if err := db.Migrate(context.Background()); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			fmt.Println("Migrations applied")
			return nil
		},
	}

	return cmd
}
