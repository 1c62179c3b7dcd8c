// Package runtime assembles the innkeeper server from configuration and manages its
// lifecycle: HTTP listener, config hot reload and the expiry sweep.
package runtime

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tjfontaine/innkeeper/internal/agent"
	"github.com/tjfontaine/innkeeper/internal/api/pms"
	"github.com/tjfontaine/innkeeper/internal/archive"
	"github.com/tjfontaine/innkeeper/internal/auth"
	"github.com/tjfontaine/innkeeper/internal/config"
	"github.com/tjfontaine/innkeeper/internal/provider"
	"github.com/tjfontaine/innkeeper/internal/provider/gemini"
	"github.com/tjfontaine/innkeeper/internal/provider/openai"
	"github.com/tjfontaine/innkeeper/internal/ratelimit"
	"github.com/tjfontaine/innkeeper/internal/server"
	"github.com/tjfontaine/innkeeper/internal/service"
	"github.com/tjfontaine/innkeeper/internal/storage"
	"github.com/tjfontaine/innkeeper/internal/storage/sqldb"
	"github.com/tjfontaine/innkeeper/internal/telemetry"
)

// Version is reported in traces and by the CLI.
var Version = "dev"

// App is a fully wired innkeeper server.
type App struct {
	// Dependencies (injected via options)
	cfg        *config.Config
	configPath string
	store      storage.Store
	model      provider.ChatModel
	logger     *slog.Logger
	level      *slog.LevelVar
	now        func() time.Time
	traceOut   io.Writer

	// Built by New
	svc      *service.Service
	agent    *agent.Agent
	limiters []ratelimit.Limiter
	api      *pms.Server
	server   *server.Server

	// current is the latest loaded config; reloads swap it without taking mu.
	current atomic.Pointer[config.Config]

	// Lifecycle management
	watcher       *config.Watcher
	traceShutdown func(context.Context) error
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	errs          chan error
	mu            sync.Mutex
}

// RegisterProviders registers the built-in chat model factories.
func RegisterProviders() {
	openai.RegisterProviderFactory()
	gemini.RegisterProviderFactory()
}

// New builds the application. Without WithConfig or WithConfigFile the default
// config.yaml and environment are loaded; without WithStore the configured database
// is opened and migrated.
func New(opts ...Option) (*App, error) {
	a := &App{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if a.cfg == nil {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		a.cfg = cfg
	}
	a.current.Store(a.cfg)

	if a.store == nil {
		store, err := OpenStore(a.cfg.Storage)
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	if err := a.build(); err != nil {
		a.closeResources()
		return nil, err
	}
	return a, nil
}

// OpenStore opens and migrates the configured database.
func OpenStore(cfg config.StorageConfig) (*sqldb.Store, error) {
	store, err := sqldb.New(sqldb.Config{Driver: cfg.Driver, DSN: cfg.DSN})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	return store, nil
}

func (a *App) build() error {
	cfg := a.cfg

	signer, err := a.signer()
	if err != nil {
		return err
	}
	svcOpts := []service.Option{
		service.WithSigner(signer),
		service.WithOptions(service.Options{
			SessionTTL:       cfg.Auth.SessionTTL,
			ImpersonationTTL: cfg.Auth.ImpersonationTTL,
			DraftTTL:         cfg.Auth.DraftTTL,
		}),
		service.WithClock(a.now),
		service.WithLogger(a.logger),
	}
	if cfg.Archive.Enabled() {
		arc, err := archive.New(cfg.Archive)
		if err != nil {
			return fmt.Errorf("connect export archive: %w", err)
		}
		svcOpts = append(svcOpts, service.WithArchive(arc))
		a.logger.Info("export archive enabled",
			slog.String("endpoint", cfg.Archive.Endpoint),
			slog.String("bucket", cfg.Archive.Bucket))
	}
	a.svc = service.New(a.store, svcOpts...)

	loginLimiter, err := a.limiter(cfg.RateLimit.LoginLimiter())
	if err != nil {
		return fmt.Errorf("login rate limiter: %w", err)
	}
	apiOpts := []pms.Option{
		pms.WithLoginLimiter(loginLimiter),
		pms.WithSecureCookies(cfg.Server.SecureCookies),
		pms.WithLogger(a.logger),
	}

	if err := a.buildAgent(); err != nil {
		return err
	}
	if a.agent != nil {
		apiOpts = append(apiOpts, pms.WithAgent(a.agent))
	}
	a.api = pms.NewServer(a.svc, apiOpts...)

	a.server = server.New(server.Config{
		Port:                  cfg.Server.Port,
		RequestTimeout:        cfg.Server.RequestTimeout,
		ContentSecurityPolicy: cfg.Server.ContentSecurityPolicy,
	}, a.logger)
	a.server.Router.Mount("/", a.api)
	return nil
}

// signer uses the configured key, or a random one that invalidates impersonation
// cookies on restart.
func (a *App) signer() (*auth.Signer, error) {
	key := []byte(a.cfg.Auth.SigningKey)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		a.logger.Warn("auth.signing_key is not set; impersonation cookies will not survive a restart")
	}
	signer, err := auth.NewSigner(key, a.cfg.Auth.ImpersonationTTL)
	if err != nil {
		return nil, fmt.Errorf("impersonation signer: %w", err)
	}
	return signer, nil
}

func (a *App) limiter(cfg ratelimit.Config) (ratelimit.Limiter, error) {
	l, err := ratelimit.New(cfg)
	if err != nil {
		return nil, err
	}
	if l != nil {
		a.limiters = append(a.limiters, l)
	}
	return l, nil
}

func (a *App) buildAgent() error {
	ai := a.cfg.AI
	model := a.model
	if model == nil {
		if !ai.Enabled() {
			a.logger.Info("assistant disabled; set ai.provider.type to enable it")
			return nil
		}
		m, err := provider.Create(ai.Provider)
		if err != nil {
			return fmt.Errorf("create chat model: %w", err)
		}
		model = m
	}

	chatLimiter, err := a.limiter(a.cfg.RateLimit.ChatLimiter())
	if err != nil {
		return fmt.Errorf("chat rate limiter: %w", err)
	}
	a.agent = agent.New(model, a.svc,
		agent.WithSettings(AgentSettings(ai)),
		agent.WithLimiter(chatLimiter),
		agent.WithClock(a.now),
		agent.WithLogger(a.logger),
	)
	a.logger.Info("assistant enabled",
		slog.String("provider", model.Name()),
		slog.String("model", ai.Model))
	return nil
}

// AgentSettings maps the ai config section onto the assistant's tunables.
func AgentSettings(ai config.AIConfig) agent.Settings {
	return agent.Settings{
		Model:              ai.Model,
		Temperature:        ai.Temperature,
		MaxTokens:          ai.MaxTokens,
		SystemPrompt:       ai.SystemPrompt,
		MaxSteps:           ai.MaxSteps,
		HistoryTokenBudget: ai.HistoryTokenBudget,
	}
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Router
}

func (a *App) Service() *service.Service {
	return a.svc
}

func (a *App) Agent() *agent.Agent {
	return a.agent
}

// Config returns the most recently applied configuration.
func (a *App) Config() *config.Config {
	return a.current.Load()
}

// Start begins serving in the background and starts the config watcher and the
// expiry sweep. Listener failures are reported by Wait.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return errors.New("already started")
	}
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.errs = make(chan error, 1)

	if a.cfg.Telemetry.Tracing {
		shutdown, err := telemetry.InitTracer("innkeeper", Version, a.traceOut, a.logger)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		a.traceShutdown = shutdown
	}

	if a.configPath != "" {
		w, err := config.NewWatcher(a.configPath, a.logger)
		if err != nil {
			return err
		}
		if err := w.Watch(a.ctx, a.applyConfig); err != nil {
			a.logger.Warn("config hot reload unavailable", slog.String("error", err.Error()))
		} else {
			a.watcher = w
		}
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.expireLoop(a.ctx, a.cfg.Server.ExpireInterval)
	}()

	go func() {
		if err := a.server.Start(); err != nil {
			a.errs <- fmt.Errorf("http server: %w", err)
		}
	}()

	a.logger.Info("innkeeper started",
		slog.Int("port", a.cfg.Server.Port),
		slog.String("storage", a.cfg.Storage.Driver),
		slog.Bool("assistant", a.agent != nil))
	return nil
}

// Wait blocks until ctx is done or the listener fails.
func (a *App) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-a.errs:
		return err
	}
}

// Run starts the app, waits for ctx to be cancelled and shuts down within grace.
func (a *App) Run(ctx context.Context, grace time.Duration) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	runErr := a.Wait(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown gracefully stops the server and releases resources. mu is only held
// while lifecycle fields are read and resources released, never while waiting on
// the watcher or background goroutines.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	cancel, watcher, traceShutdown := a.cancel, a.watcher, a.traceShutdown
	a.watcher, a.traceShutdown = nil, nil
	a.mu.Unlock()

	a.logger.Info("shutting down")
	if cancel != nil {
		cancel()
	}

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.wg.Wait()

	if watcher != nil {
		if err := watcher.Close(); err != nil {
			a.logger.Error("failed to close config watcher", slog.String("error", err.Error()))
		}
	}
	if traceShutdown != nil {
		if err := traceShutdown(ctx); err != nil {
			a.logger.Error("failed to flush traces", slog.String("error", err.Error()))
		}
	}

	a.mu.Lock()
	a.closeResources()
	a.mu.Unlock()

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeResources() {
	for _, l := range a.limiters {
		if c, ok := l.(io.Closer); ok {
			if err := c.Close(); err != nil {
				a.logger.Error("failed to close rate limiter", slog.String("error", err.Error()))
			}
		}
	}
	a.limiters = nil
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
		a.store = nil
	}
}

// applyConfig hot-applies the settings that can change without a restart: log level
// and the assistant's model parameters. Everything else needs a restart.
func (a *App) applyConfig(cfg *config.Config) {
	a.current.Store(cfg)

	if a.level != nil {
		a.level.Set(ParseLevel(cfg.Log.Level))
	}
	if a.agent != nil {
		a.agent.UpdateSettings(AgentSettings(cfg.AI))
	}
	a.logger.Info("config reloaded",
		slog.String("log_level", cfg.Log.Level),
		slog.String("model", cfg.AI.Model))
}

// expireLoop periodically expires stale drafts and sessions.
func (a *App) expireLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.svc.ExpireStale(ctx); err != nil && ctx.Err() == nil {
				a.logger.Error("expiry sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// ParseLevel maps a log.level setting to a slog level. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
