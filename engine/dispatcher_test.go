package engine

import (
	"context"
	"testing"

	"github.com/premscan/premscan/config"
	"github.com/premscan/premscan/models"
)

// stubEngine returns a canned result and records whether it ran.
type stubEngine struct {
	name   string
	result *models.ScrapeResult
	called bool
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Quote(ctx context.Context, req *models.QuoteRequest) *models.ScrapeResult {
	s.called = true
	return s.result
}

func req() *models.QuoteRequest {
	return &models.QuoteRequest{Registration: "ABC123", Address: "1 Main St", DriverAge: 40}
}

func TestDispatch_ScrapeSuccessWins(t *testing.T) {
	scrape := &stubEngine{name: "scrape", result: &models.ScrapeResult{Success: true, AnnualPremium: 1234}}
	static := &stubEngine{name: "static", result: &models.ScrapeResult{Success: true, Estimated: true}}
	d := NewDispatcher(scrape, static, config.FallbackConfig{Enabled: true})

	res, engine := d.Dispatch(context.Background(), req())
	if engine != "scrape" || !res.Success || res.Estimated {
		t.Errorf("engine = %q, result = %+v, want live scrape result", engine, res)
	}
	if static.called {
		t.Error("fallback ran despite a successful scrape")
	}
}

func TestDispatch_FallsBackOnScrapeFailure(t *testing.T) {
	scrape := &stubEngine{name: "scrape", result: &models.ScrapeResult{
		Success:            false,
		StepReached:        models.StepAboutYou,
		Error:              "system error banner persisted",
		DiagnosticArtifact: "diagnostics/about_you_fault.png",
	}}
	static := &stubEngine{name: "static", result: &models.ScrapeResult{
		Success: true, Estimated: true, AnnualPremium: 980,
	}}
	d := NewDispatcher(scrape, static, config.FallbackConfig{Enabled: true})

	res, engine := d.Dispatch(context.Background(), req())
	if engine != "static" || !res.Estimated {
		t.Fatalf("engine = %q, result = %+v, want static estimate", engine, res)
	}
	if res.DiagnosticArtifact != "diagnostics/about_you_fault.png" {
		t.Errorf("scrape diagnostics lost on fallback: %+v", res)
	}
}

func TestDispatch_FallbackDisabledReportsFailure(t *testing.T) {
	scrape := &stubEngine{name: "scrape", result: models.Failed(models.StepRegoLookup, "no vehicle matched")}
	static := &stubEngine{name: "static", result: &models.ScrapeResult{Success: true, Estimated: true}}
	d := NewDispatcher(scrape, static, config.FallbackConfig{Enabled: false})

	res, engine := d.Dispatch(context.Background(), req())
	if engine != "scrape" || res.Success {
		t.Errorf("engine = %q, result = %+v, want the scrape failure verbatim", engine, res)
	}
	if static.called {
		t.Error("fallback ran while disabled")
	}
}

func TestDispatch_ScrapeDisabledSkipsBrowser(t *testing.T) {
	scrape := &stubEngine{name: "scrape", result: &models.ScrapeResult{Success: true}}
	static := &stubEngine{name: "static", result: &models.ScrapeResult{Success: true, Estimated: true}}
	d := NewDispatcher(scrape, static, config.FallbackConfig{Enabled: true, ScrapeDisabled: true})

	res, engine := d.Dispatch(context.Background(), req())
	if engine != "static" || !res.Estimated {
		t.Errorf("engine = %q, result = %+v, want static estimate", engine, res)
	}
	if scrape.called {
		t.Error("scrape engine ran while disabled")
	}
}

func TestDispatch_ScrapeDisabledWithoutFallbackNeverScrapes(t *testing.T) {
	scrape := &stubEngine{name: "scrape", result: &models.ScrapeResult{Success: true}}
	d := NewDispatcher(scrape, nil, config.FallbackConfig{Enabled: false, ScrapeDisabled: true})

	res, engine := d.Dispatch(context.Background(), req())
	if scrape.called {
		t.Fatal("scrape engine ran although scraping is disabled")
	}
	if engine != "none" {
		t.Errorf("engine = %q, want none", engine)
	}
	if res.Success || res.Error == "" || res.StepReached == "" {
		t.Errorf("result = %+v, want a structured failure", res)
	}
}

func TestDispatch_NilFallback(t *testing.T) {
	scrape := &stubEngine{name: "scrape", result: models.Failed(models.StepYourCar, "address rejected")}
	d := NewDispatcher(scrape, nil, config.FallbackConfig{Enabled: true})

	res, engine := d.Dispatch(context.Background(), req())
	if engine != "scrape" || res.Success {
		t.Errorf("engine = %q, result = %+v, want the scrape failure", engine, res)
	}
}
