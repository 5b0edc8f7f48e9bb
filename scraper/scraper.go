// Package scraper drives the insurer's multi-step quoting form and turns the
// final page into a structured quote result. The form is a JS-rendered UI
// with no stable contract; everything here is best-effort against its
// current markup, with retries for its known transient failures.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/premscan/premscan/browser"
	"github.com/premscan/premscan/config"
	"github.com/premscan/premscan/extract"
	"github.com/premscan/premscan/models"
)

// presenceTimeout is how long a fill helper waits for an optional field
// before concluding the form omitted it for the current mode.
const presenceTimeout = 3 * time.Second

// Scraper runs quote scrapes against the configured target form. It is safe
// for concurrent use: all per-request state lives in the isolated session
// created per call, and the shared browser resource serializes only its own
// liveness check.
type Scraper struct {
	resource *browser.Resource
	diags    *browser.Diagnostics
	cfg      config.ScraperConfig
	target   config.TargetConfig
	sel      Selectors
	rules    extract.Rules
	active   atomic.Int32
}

// New wires a Scraper. Extraction thresholds and excess tiers come from the
// target config; selector overrides can be applied with SetSelectors.
func New(resource *browser.Resource, diags *browser.Diagnostics, cfg config.ScraperConfig, target config.TargetConfig) *Scraper {
	rules := extract.DefaultRules()
	rules.AnnualMin = target.AnnualMin
	rules.AnnualMax = target.AnnualMax
	rules.MonthlyMin = target.MonthlyMin
	rules.MonthlyMax = target.MonthlyMax
	if len(target.ExcessTiers) > 0 {
		rules.ExcessTiers = target.ExcessTiers
	}
	return &Scraper{
		resource: resource,
		diags:    diags,
		cfg:      cfg,
		target:   target,
		sel:      DefaultSelectors(),
		rules:    rules,
	}
}

// SetSelectors applies selector overrides on top of the defaults.
func (s *Scraper) SetSelectors(override Selectors) {
	s.sel = DefaultSelectors().Merge(override)
}

// Active returns the number of in-flight scrapes.
func (s *Scraper) Active() int {
	return int(s.active.Load())
}

// Alive reports whether the shared browser engine is currently connected.
func (s *Scraper) Alive() bool {
	return s.resource.Alive()
}

// flow carries one call's state through the form stages.
type flow struct {
	s        *Scraper
	req      *models.QuoteRequest
	sess     *browser.Session
	page     *rod.Page // bound to the call's context
	observer *lookupObserver
	vehicle  *models.VehicleInfo
	// step is the stage currently being driven, for fault attribution.
	step string
	// finalText is the final page's visible text, set once the
	// quote_result stage was reached (success or not).
	finalText string
}

// enterStage records the stage the flow is about to drive.
func (f *flow) enterStage(step string) { f.step = step }

// faultResult converts a recovered panic into a failure result tagged with
// the stage that was being driven when the fault happened.
func faultResult(step string, fault any) *models.ScrapeResult {
	return models.Failed(step, fmt.Sprintf("unexpected fault: %v", fault))
}

// ScrapeQuote runs the whole three-stage flow for one request and always
// returns a structured result; no failure mode escapes as an error or panic.
//
// Lifecycle:
//
//	1. Whole-call deadline        – request timeout capped by config
//	2. Open isolated session      – incognito context + page + hijack
//	3. DEFER: session close       – unconditional, every exit path
//	4. DEFER: recover             – unexpected faults become results
//	5. Vehicle stage              – resolver with interception fallback
//	6. your_car / about_you       – fill-if-present form driving
//	7. Submit + recovery          – one transient-error recovery cycle
//	8. Extraction + final snapshot
func (s *Scraper) ScrapeQuote(ctx context.Context, req *models.QuoteRequest) (result *models.ScrapeResult) {
	s.active.Add(1)
	defer s.active.Add(-1)

	start := time.Now()

	// ── 1. Whole-call deadline ──────────────────────────────────────
	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = s.cfg.DefaultTimeout
	}
	if timeout > s.cfg.MaxTimeout {
		timeout = s.cfg.MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// ── 2. Isolated session ─────────────────────────────────────────
	observer := &lookupObserver{}
	sess, err := browser.OpenSession(s.resource, browser.SessionOptions{
		BlockAds:           true,
		LookupURLSubstring: s.target.LookupURLSubstring,
		OnLookupResponse:   observer.observe,
	})
	if err != nil {
		return resultFromError(err, models.StepRegoLookup)
	}

	// ── 3. Unconditional teardown. Runs after the recover below, so a
	// panic path can still snapshot the live page first.
	defer sess.Close()

	f := &flow{
		s:        s,
		req:      req,
		sess:     sess,
		page:     sess.Page().Context(ctx),
		observer: observer,
		step:     models.StepRegoLookup,
	}

	// ── 4. Outermost safety: unexpected faults become results ──────
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scrape flow fault", "step", f.step, "fault", fmt.Sprintf("%v", r))
			res := faultResult(f.step, r)
			res.DiagnosticArtifact = s.diags.Snapshot(sess.Page(), "fault")
			result = res
		}
	}()

	result = f.run()
	slog.Info("scrape finished",
		"mode", req.Mode(),
		"success", result.Success,
		"step", result.StepReached,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return result
}

// run executes the stages and builds the single result.
func (f *flow) run() *models.ScrapeResult {
	// Vehicle stage (retries + interception fallback live inside).
	vehicle, serr := f.resolveVehicle()
	if serr != nil {
		return f.fail(serr)
	}
	f.vehicle = vehicle

	f.enterStage(models.StepYourCar)
	if serr := f.yourCarStage(); serr != nil {
		return f.fail(serr)
	}
	f.enterStage(models.StepAboutYou)
	if serr := f.aboutYouStage(); serr != nil {
		return f.fail(serr)
	}

	f.enterStage(models.StepQuoteResult)
	ext, serr := f.submitAndExtract()

	// The final stage always gets a snapshot, success or not.
	artifact := f.s.diags.Snapshot(f.sess.Page(), "quote_result")

	if serr != nil {
		res := f.fail(serr)
		if res.DiagnosticArtifact == "" {
			res.DiagnosticArtifact = artifact
		}
		if ext != nil {
			res.RawAmounts = ext.RawAmounts
		}
		return res
	}

	res := &models.ScrapeResult{
		Success:            true,
		VehicleDescription: f.vehicle.Describe(),
		AnnualPremium:      ext.AnnualPremium,
		MonthlyPremium:     ext.MonthlyPremium,
		ExcessAmount:       ext.Excess,
		RawAmounts:         ext.RawAmounts,
		DiagnosticArtifact: artifact,
		StepReached:        models.StepQuoteResult,
	}
	return res
}

// fail converts a classified error into a failure result with a diagnostic
// snapshot of whatever page state the call died on. A failure caused by the
// whole-call deadline is reclassified as a timeout regardless of which step
// operation happened to trip on it.
func (f *flow) fail(serr *models.ScrapeError) *models.ScrapeResult {
	if errors.Is(serr, context.DeadlineExceeded) {
		serr = models.NewScrapeError(models.ErrCodeTimeout, serr.Step,
			"scrape timed out before completing", serr)
	}
	res := resultFromError(serr, models.StepRegoLookup)
	if f.vehicle != nil {
		res.VehicleDescription = f.vehicle.Describe()
	}
	res.DiagnosticArtifact = f.s.diags.Snapshot(f.sess.Page(), res.StepReached)
	return res
}

// resultFromError maps any error to a failure result, honoring the result
// invariants (step and error always set).
func resultFromError(err error, defaultStep string) *models.ScrapeResult {
	var serr *models.ScrapeError
	if errors.As(err, &serr) {
		step := serr.Step
		if step == "" {
			step = defaultStep
		}
		return models.Failed(step, serr.Message)
	}
	return models.Failed(defaultStep, err.Error())
}

// navigateToForm (re)loads the quote form's entry page.
func (f *flow) navigateToForm() error {
	if err := f.page.Navigate(f.s.target.QuoteURL); err != nil {
		return fmt.Errorf("navigate to quote form: %w", err)
	}
	f.waitSettled()
	return nil
}

// waitSettled waits for the DOM to stop mutating. The form re-renders whole
// sections between steps, so this runs after every committed interaction.
func (f *flow) waitSettled() {
	if err := f.page.Timeout(f.s.cfg.StepTimeout).WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("DOM did not settle, proceeding", "error", err)
	}
}

// visibleText returns the page's rendered text. innerText preserves the
// line structure the extraction label rules depend on; the HTML path is the
// fallback when script evaluation fails.
func (f *flow) visibleText() string {
	if res, err := f.page.Eval(`() => document.body.innerText`); err == nil {
		return res.Value.Str()
	}
	html, err := f.page.HTML()
	if err != nil {
		return ""
	}
	return extract.TextFromHTML(html)
}
