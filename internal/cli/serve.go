package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/innkeeper/internal/runtime"
)

const shutdownGrace = 30 * time.Second

func newServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP API server",
		Long:         "Run the HTTP API server. The config file is watched and log level and assistant settings are applied without a restart.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, level := opts.logger(os.Stdout, cfg.Log.Level)

			runtime.RegisterProviders()
			appOpts := []runtime.Option{
				runtime.WithLogger(logger),
				runtime.WithLogLevel(level),
			}
			if _, err := os.Stat(opts.ConfigPath); err == nil {
				appOpts = append(appOpts, runtime.WithConfigFile(opts.ConfigPath))
			} else {
				appOpts = append(appOpts, runtime.WithConfig(cfg))
			}
			app, err := runtime.New(appOpts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, shutdownGrace)
		},
	}
}

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create or upgrade the database schema",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			store, err := runtime.OpenStore(cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				return err
			}
			printf(cmd, "%s schema is up to date\n", cfg.Storage.Driver)
			return nil
		},
	}
}
