package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "service-transport"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Transport trip record service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newEventsCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default command).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rollback, _ := cmd.Flags().GetBool("rollback")
			return runMigrate(rollback)
		},
	}
	cmd.Flags().Bool("rollback", false, "Revert the most recent migration instead")
	return cmd
}

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail transport record events and log them.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			group, _ := cmd.Flags().GetString("group")
			return runEvents(cmd.Context(), group)
		},
	}
	cmd.Flags().String("group", serviceName+"-audit", "Kafka consumer group")
	return cmd
}
