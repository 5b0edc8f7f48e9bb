package browser

import (
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/premscan/premscan/config"
	"github.com/premscan/premscan/models"
)

// Resource owns the single shared browser engine for the whole process.
// It launches lazily on first Acquire and relaunches if the held instance
// has disconnected. Only the liveness check is serialized; page operations
// run in parallel per isolated session.
type Resource struct {
	mu      sync.Mutex
	browser *rod.Browser
	cfg     config.BrowserConfig
}

// NewResource creates the resource without launching anything.
func NewResource(cfg config.BrowserConfig) *Resource {
	return &Resource{cfg: cfg}
}

// Acquire returns a connected browser, launching or relaunching as needed.
// Launch failures surface as ENGINE_UNAVAILABLE.
func (r *Resource) Acquire() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		if r.alive() {
			return r.browser, nil
		}
		slog.Warn("browser disconnected, relaunching")
		r.browser = nil
	}

	browser, err := r.launch()
	if err != nil {
		return nil, err
	}
	r.browser = browser
	return browser, nil
}

// Alive reports whether a live engine is currently held, without launching.
func (r *Resource) Alive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.browser != nil && r.alive()
}

// alive probes the CDP connection. Callers hold r.mu.
func (r *Resource) alive() bool {
	_, err := proto.BrowserGetVersion{}.Call(r.browser)
	return err == nil
}

// launch starts a fresh Chromium and connects to it.
func (r *Resource) launch() (*rod.Browser, error) {
	l := launcher.New().
		Headless(r.cfg.Headless).
		NoSandbox(r.cfg.NoSandbox)

	if r.cfg.BrowserBin != "" {
		l = l.Bin(r.cfg.BrowserBin)
	}
	if r.cfg.Proxy != "" {
		l = l.Proxy(r.cfg.Proxy)
	}

	// Keep the automated session indistinguishable from a normal one; the
	// target form occasionally varies its behavior for flagged browsers.
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeEngineUnavailable, "",
			"failed to launch browser",
			err,
		)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeEngineUnavailable, "",
			"failed to connect to browser",
			err,
		)
	}

	slog.Info("browser launched", "controlURL", controlURL)
	return browser, nil
}

// Shutdown kills the held browser, if any. Call on graceful service stop to
// prevent zombie Chrome processes.
func (r *Resource) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return
	}
	slog.Info("browser resource shutting down")
	if err := r.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	r.browser = nil
}
