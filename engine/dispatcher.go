package engine

import (
	"context"
	"log/slog"

	"github.com/premscan/premscan/config"
	"github.com/premscan/premscan/models"
)

// Dispatcher routes quote requests to the scrape engine with an optional
// static-estimate fallback. The scraped figure always wins when available;
// the estimate only covers scrape failures or a disabled scraper.
type Dispatcher struct {
	primary  QuoteEngine
	fallback QuoteEngine
	cfg      config.FallbackConfig
}

// NewDispatcher wires the engines. fallback may be nil when estimates are
// disabled outright.
func NewDispatcher(primary, fallback QuoteEngine, cfg config.FallbackConfig) *Dispatcher {
	return &Dispatcher{primary: primary, fallback: fallback, cfg: cfg}
}

// Dispatch runs the request and reports which engine produced the result.
// With scraping disabled the browser is never touched: the static engine
// answers, or, when none is configured, the call fails outright with engine
// name "none".
func (d *Dispatcher) Dispatch(ctx context.Context, req *models.QuoteRequest) (*models.ScrapeResult, string) {
	if d.cfg.ScrapeDisabled {
		if d.canFallBack() {
			return d.fallback.Quote(ctx, req), d.fallback.Name()
		}
		return models.Failed(models.StepRegoLookup,
			"scraping is disabled and no fallback engine is configured"), "none"
	}

	result := d.primary.Quote(ctx, req)
	if result.Success || !d.canFallBack() {
		return result, d.primary.Name()
	}

	slog.Warn("scrape failed, answering with static estimate",
		"step", result.StepReached, "error", result.Error)
	est := d.fallback.Quote(ctx, req)
	// Keep the scrape's diagnostics on the estimate so the failure stays
	// reviewable.
	est.DiagnosticArtifact = result.DiagnosticArtifact
	return est, d.fallback.Name()
}

func (d *Dispatcher) canFallBack() bool {
	return d.cfg.Enabled && d.fallback != nil
}
