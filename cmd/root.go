package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "staffd",
		Short:         "Employee directory HTTP API",
		Long:          "staffd serves an employee directory REST API backed by PostgreSQL and manages its database schema.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newMigrateCmd(),
	)

	return rootCmd
}
