package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/premscan/premscan/api"
	"github.com/premscan/premscan/browser"
	"github.com/premscan/premscan/config"
	"github.com/premscan/premscan/engine"
	"github.com/premscan/premscan/fallback"
	"github.com/premscan/premscan/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("premscan starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"target", cfg.Target.QuoteURL,
	)

	// ── 3. Browser resource (lazy: Chromium launches on first quote) ─
	resource := browser.NewResource(cfg.Browser)
	defer resource.Shutdown()

	diags := browser.NewDiagnostics(cfg.Diagnostics)

	// ── 4. Quote engines + dispatcher ───────────────────────────────
	sc := scraper.New(resource, diags, cfg.Scraper, cfg.Target)

	var static engine.QuoteEngine
	if cfg.Fallback.Enabled || cfg.Fallback.ScrapeDisabled {
		static = engine.NewStaticEngine(fallback.New())
	}
	dispatcher := engine.NewDispatcher(engine.NewScrapeEngine(sc), static, cfg.Fallback)

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(dispatcher, sc, cfg, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// In-flight quotes hold browser contexts for tens of seconds.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// resource.Shutdown() runs via defer — kills Chromium.
	slog.Info("premscan stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
