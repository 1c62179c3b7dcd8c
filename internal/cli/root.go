// Package cli implements the innkeeper command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/innkeeper/internal/config"
	"github.com/tjfontaine/innkeeper/internal/runtime"
	"github.com/tjfontaine/innkeeper/internal/service"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand creates the root command for the innkeeper CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "innkeeper",
		Short:   "Innkeeper - hotel property management",
		Long:    "A multi-tenant property-management server for small hotels, with a front-desk assistant.",
		Version: runtime.Version,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override log.level (debug|info|warn|error)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newHashPasswordCommand())
	cmd.AddCommand(newCreateSuperAdminCommand(opts))
	cmd.AddCommand(newTimelineCommand(opts))

	return cmd
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	return cfg, nil
}

// logger returns a JSON logger on w whose level follows the returned LevelVar.
func (o *RootOptions) logger(w io.Writer, level string) (*slog.Logger, *slog.LevelVar) {
	lv := new(slog.LevelVar)
	lv.Set(runtime.ParseLevel(level))
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})), lv
}

// openService opens the configured store for one-shot commands.
func (o *RootOptions) openService() (*service.Service, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := runtime.OpenStore(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	svc := service.New(store, service.WithOptions(service.Options{
		SessionTTL:       cfg.Auth.SessionTTL,
		ImpersonationTTL: cfg.Auth.ImpersonationTTL,
		DraftTTL:         cfg.Auth.DraftTTL,
	}))
	return svc, func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}, nil
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
