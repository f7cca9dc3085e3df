package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the database connection",
		Long:  "Verify the configured database is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closer, err := openDatabase()
			if err != nil {
				return err
			}
			defer closer()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("database ping failed: %w", err)
			}

			fmt.Println("Database connection OK")
			return nil
		},
	}

	return cmd
}
