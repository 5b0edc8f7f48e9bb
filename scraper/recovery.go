package scraper

import (
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/premscan/premscan/extract"
	"github.com/premscan/premscan/models"
)

// transientPhrases mark the form's generic backend-failure banner, as
// opposed to a validation message about a specific input.
var transientPhrases = []string{
	"system error",
	"technical error",
	"technical difficulties",
	"temporarily unavailable",
	"something went wrong",
	"please try again",
}

// isTransientBanner classifies a page-level banner text.
func isTransientBanner(text string) bool {
	t := strings.ToLower(text)
	for _, phrase := range transientPhrases {
		if strings.Contains(t, phrase) {
			return true
		}
	}
	return false
}

type reviewOutcome int

const (
	outcomeResult reviewOutcome = iota
	outcomeBanner
	outcomeTimeout
)

// recoveryAction is the controller's decision after one submission outcome.
type recoveryAction int

const (
	actionExtract recoveryAction = iota
	actionRecover
	actionFail
)

// classifyOutcome applies the recovery budget to one submission outcome. The
// first transient banner buys the single recovery cycle; any banner after
// that, and any non-transient banner, terminates the call.
func classifyOutcome(outcome reviewOutcome, bannerText string, recovered bool) (recoveryAction, *models.ScrapeError) {
	switch outcome {
	case outcomeResult:
		return actionExtract, nil
	case outcomeBanner:
		if !isTransientBanner(bannerText) {
			return actionFail, models.NewScrapeError(models.ErrCodeFieldValidation,
				models.StepAboutYou, bannerText, nil)
		}
		if recovered {
			return actionFail, models.NewScrapeError(models.ErrCodeTransientBackend,
				models.StepAboutYou,
				"backend error recurred after recovery: "+bannerText, nil)
		}
		return actionRecover, nil
	default:
		return actionFail, models.NewScrapeError(models.ErrCodeFieldValidation,
			models.StepAboutYou,
			"quote did not complete; additional steps may be required", nil)
	}
}

// submitAndExtract runs the review/submit boundary with its recovery rules:
//
//   - transient backend banner: drive the form's own back action, wait for
//     the applicant stage to reappear, re-submit. At most once per call; a
//     second occurrence is reported as failure.
//   - labelled validation error or non-transient banner: terminate
//     immediately, the input is presumed invalid rather than the service.
//   - timeout with no error and no result: terminate with a generic
//     "additional steps may be required" message.
//
// On reaching the result page, extraction runs; RawAmounts is returned even
// when no premium resolves, so the caller can surface it for manual review.
func (f *flow) submitAndExtract() (*extract.Result, *models.ScrapeError) {
	recovered := false

	for {
		if err := f.click(f.s.sel.SubmitButton); err != nil {
			return nil, models.NewScrapeError(models.ErrCodeFieldValidation,
				models.StepAboutYou, "quote submission not available", err)
		}

		outcome, bannerText := f.awaitQuoteOutcome()
		action, serr := classifyOutcome(outcome, bannerText, recovered)
		switch action {
		case actionExtract:
			f.finalText = f.visibleText()
			ext, err := extract.Run(f.finalText, f.s.rules)
			if err != nil {
				msg := "could not extract premium from quote page"
				if msgs := f.fieldErrors(); len(msgs) > 0 {
					msg = strings.Join(msgs, "; ")
				}
				return ext, models.NewScrapeError(models.ErrCodeExtractionFailed,
					models.StepQuoteResult, msg, err)
			}
			return ext, nil

		case actionRecover:
			recovered = true
			slog.Warn("transient backend error, driving form recovery", "banner", bannerText)
			if serr := f.recoverTransient(); serr != nil {
				return nil, serr
			}

		default:
			// A silent timeout may still be a rejected submit whose field
			// errors rendered without a banner; prefer their text.
			if outcome == outcomeTimeout {
				if msgs := f.fieldErrors(); len(msgs) > 0 {
					serr = models.NewScrapeError(models.ErrCodeFieldValidation,
						models.StepAboutYou, strings.Join(msgs, "; "), nil)
				}
			}
			return nil, serr
		}
	}
}

// awaitQuoteOutcome waits for whichever arrives first after submission: the
// premium panel or a visible page-level banner.
func (f *flow) awaitQuoteOutcome() (reviewOutcome, string) {
	var (
		outcome = outcomeTimeout
		banner  string
	)
	p := f.page.Timeout(f.s.cfg.LookupTimeout)
	_, err := p.Race().
		Element(f.s.sel.QuotePanel).
		MustHandle(func(*rod.Element) { outcome = outcomeResult }).
		ElementR(f.s.sel.PageBanner, `/\S/`).
		MustHandle(func(e *rod.Element) {
			outcome = outcomeBanner
			if t, terr := e.Text(); terr == nil {
				banner = strings.Join(strings.Fields(t), " ")
			}
		}).
		Do()
	if err != nil {
		return outcomeTimeout, ""
	}
	return outcome, banner
}

// recoverTransient drives the form's own "back to form" action and waits for
// the applicant stage to render again.
func (f *flow) recoverTransient() *models.ScrapeError {
	if err := f.click(f.s.sel.BackToForm); err != nil {
		return models.NewScrapeError(models.ErrCodeTransientBackend,
			models.StepAboutYou, "recovery action not available", err)
	}
	// The applicant fields keep their values through the form's back
	// navigation; only their reappearance matters before re-submitting.
	if _, err := f.page.Timeout(f.s.cfg.StepTimeout).Element(f.s.sel.AgeInput); err != nil {
		if _, err2 := f.page.Timeout(presenceTimeout).Element(f.s.sel.SubmitButton); err2 != nil {
			return models.NewScrapeError(models.ErrCodeTransientBackend,
				models.StepAboutYou, "applicant stage did not reappear after recovery", err)
		}
	}
	f.waitSettled()
	return nil
}
