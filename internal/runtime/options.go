package runtime

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/tjfontaine/innkeeper/internal/config"
	"github.com/tjfontaine/innkeeper/internal/provider"
	"github.com/tjfontaine/innkeeper/internal/storage"
)

// Option is a functional option for configuring an App.
type Option func(*App) error

// WithConfigFile loads path and watches it for changes once the app starts.
func WithConfigFile(path string) Option {
	return func(a *App) error {
		if path == "" {
			return errors.New("config path cannot be empty")
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		a.cfg = cfg
		a.configPath = path
		return nil
	}
}

// WithConfig uses an already loaded configuration. It is not watched.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		if cfg == nil {
			return errors.New("config cannot be nil")
		}
		a.cfg = cfg
		return nil
	}
}

// WithStore uses an already opened store instead of the configured database. The
// app closes it on shutdown.
func WithStore(store storage.Store) Option {
	return func(a *App) error {
		a.store = store
		return nil
	}
}

// WithChatModel uses model for the assistant regardless of ai.provider.
func WithChatModel(model provider.ChatModel) Option {
	return func(a *App) error {
		a.model = model
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithLogLevel lets config reloads change the level of the app's logger.
func WithLogLevel(level *slog.LevelVar) Option {
	return func(a *App) error {
		a.level = level
		return nil
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *App) error {
		a.now = now
		return nil
	}
}

// WithTraceWriter sends exported spans to w instead of stderr.
func WithTraceWriter(w io.Writer) Option {
	return func(a *App) error {
		a.traceOut = w
		return nil
	}
}
