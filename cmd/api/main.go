package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"user-registry-service/cmd/api/app"
	"user-registry-service/cmd/api/server"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	serve := func(cmd *cobra.Command, _ []string) error {
		ctx, stop := server.WithSignal(cmd.Context())
		defer stop()

		a, err := app.New(ctx, configPath)
		if err != nil {
			return err
		}
		return a.Run(ctx)
	}

	root := &cobra.Command{
		Use:           "user-registry",
		Short:         "User registry CRUD service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPathFromEnv(), "directory containing app.env")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the HTTP API (and gRPC when enabled)",
			RunE:  serve,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the SQL schema and seed the default users",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.Migrate(cmd.Context(), configPath)
			},
		},
	)

	return root
}

func configPathFromEnv() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}
