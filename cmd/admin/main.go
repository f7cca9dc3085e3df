package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakehq/jaketodo/cmd/admin/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "jaketodo-admin",
		Short: "Administration tool for the jaketodo API",
		Long:  "CLI tool for database migrations and todo maintenance",
	}

	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewPurgeCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
