package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

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

		g, err := newGateway(ctx, configPath)
		if err != nil {
			return err
		}
		return g.run(ctx)
	}

	root := &cobra.Command{
		Use:           "gateway",
		Short:         "Traced gateway in front of the user registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPathFromEnv(), "directory containing app.env")
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the gateway HTTP API",
		RunE:  serve,
	})
	return root
}

func configPathFromEnv() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}
