package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tjfontaine/innkeeper/internal/config"
	"github.com/tjfontaine/innkeeper/internal/provider"
	"github.com/tjfontaine/innkeeper/internal/storage/sqldb"
)

type stubModel struct{}

func (stubModel) Name() string { return "stub" }

func (stubModel) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	return nil, errors.New("not used")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.Server.Port = 0
	cfg.Server.ExpireInterval = 10 * time.Millisecond
	return cfg
}

var storeSeq atomic.Int64

func testStore(t *testing.T) *sqldb.Store {
	t.Helper()
	store, err := sqldb.NewSQLite(fmt.Sprintf("file:runtime%d?mode=memory&cache=shared", storeSeq.Add(1)))
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	return store
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewServesHealth(t *testing.T) {
	app, err := New(
		WithConfig(testConfig(t)),
		WithStore(testStore(t)),
		WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.closeResources()

	if app.Agent() != nil {
		t.Error("assistant should be off without a provider")
	}

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/v1/auth/me = %d, want 401", rec.Code)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.AI.Provider = provider.Config{Type: "carrier-pigeon"}

	_, err := New(WithConfig(cfg), WithStore(testStore(t)), WithLogger(quietLogger()))
	if err == nil {
		t.Fatal("New() error = nil, want unknown provider error")
	}
}

func TestApplyConfig(t *testing.T) {
	level := new(slog.LevelVar)
	app, err := New(
		WithConfig(testConfig(t)),
		WithStore(testStore(t)),
		WithChatModel(stubModel{}),
		WithLogger(quietLogger()),
		WithLogLevel(level),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.closeResources()

	if app.Agent() == nil {
		t.Fatal("assistant should be on with an explicit model")
	}

	next := testConfig(t)
	next.Log.Level = "debug"
	next.AI.Model = "gpt-4o"
	next.AI.SystemPrompt = "Answer in one sentence."
	app.applyConfig(next)

	if level.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level.Level())
	}
	got := app.Agent().Settings()
	if got.Model != "gpt-4o" || got.SystemPrompt != "Answer in one sentence." {
		t.Errorf("settings not applied: %+v", got)
	}
	if app.Config() != next {
		t.Error("Config() did not return the reloaded config")
	}
}

func TestStartShutdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 18089\n  expire_interval: 10ms\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	app, err := New(
		WithConfigFile(path),
		WithStore(testStore(t)),
		WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := app.Start(ctx); err == nil {
		t.Error("second Start() error = nil")
	}
	time.Sleep(30 * time.Millisecond)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := app.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestReloadDuringShutdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	write := func(model string) {
		t.Helper()
		body := "server:\n  port: 18090\n  expire_interval: 10ms\nai:\n  model: " + model + "\n"
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("gpt-4o-mini")

	app, err := New(
		WithConfigFile(path),
		WithStore(testStore(t)),
		WithChatModel(stubModel{}),
		WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// A reload must complete while the lifecycle lock is held elsewhere.
	app.mu.Lock()
	write("gpt-4o")
	deadline := time.Now().Add(5 * time.Second)
	for app.Config().AI.Model != "gpt-4o" {
		if time.Now().After(deadline) {
			app.mu.Unlock()
			t.Fatal("reload blocked on the lifecycle lock")
		}
		time.Sleep(10 * time.Millisecond)
	}
	app.mu.Unlock()

	// Shut down with another reload in flight.
	write("gpt-4.1")
	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- app.Shutdown(ctx)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Shutdown() did not return while a reload was in flight")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
