package scraper

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/premscan/premscan/models"
)

// ── element helpers ─────────────────────────────────────────────────────
//
// The form renders a different field set per request mode, so most helpers
// are fill-if-present: a field that never appears within presenceTimeout is
// treated as omitted for this mode and silently skipped.

func (f *flow) element(selector string) (*rod.Element, error) {
	return f.page.Timeout(f.s.cfg.StepTimeout).Element(selector)
}

func (f *flow) typeInto(selector, value string) error {
	el, err := f.element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	return el.Input(value)
}

func (f *flow) click(selector string) error {
	el, err := f.element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	return el.Click("left", 1)
}

func (f *flow) clickIfPresent(selector string) bool {
	el, err := f.page.Timeout(presenceTimeout).Element(selector)
	if err != nil {
		return false
	}
	if err := el.Click("left", 1); err != nil {
		slog.Debug("optional click failed", "selector", selector, "error", err)
		return false
	}
	return true
}

func (f *flow) fillIfPresent(selector, value string) error {
	el, err := f.page.Timeout(presenceTimeout).Element(selector)
	if err != nil {
		return nil // field omitted for this mode
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	return el.Input(value)
}

// chooseIfPresent selects the option matching any of the candidate texts on
// a select element, skipping silently when the element is absent. A present
// select with no matching option is an error: the form will reject the
// submission anyway, so fail with the field named.
func (f *flow) chooseIfPresent(selector string, candidates ...string) error {
	el, err := f.page.Timeout(presenceTimeout).Element(selector)
	if err != nil {
		return nil
	}
	opts, err := el.Elements("option")
	if err != nil {
		return fmt.Errorf("options of %q not readable: %w", selector, err)
	}
	texts := make([]string, 0, len(opts))
	for _, o := range opts {
		if t, terr := o.Text(); terr == nil {
			texts = append(texts, strings.TrimSpace(t))
		}
	}
	for _, want := range candidates {
		if match := matchOption(want, texts); match != "" {
			return el.Select([]string{"^" + regexp.QuoteMeta(match) + "$"}, true, "text")
		}
	}
	return fmt.Errorf("no option matching %v on %q", candidates, selector)
}

// chooseFirstOption selects the first non-placeholder option.
func (f *flow) chooseFirstOption(selector string) error {
	el, err := f.page.Timeout(presenceTimeout).Element(selector)
	if err != nil {
		return nil
	}
	opts, err := el.Elements("option")
	if err != nil {
		return fmt.Errorf("options of %q not readable: %w", selector, err)
	}
	for i, o := range opts {
		t, terr := o.Text()
		if terr != nil {
			continue
		}
		t = strings.TrimSpace(t)
		// First option is usually a "Please select" placeholder.
		if i == 0 && (t == "" || strings.Contains(strings.ToLower(t), "select")) {
			continue
		}
		if t != "" {
			return el.Select([]string{"^" + regexp.QuoteMeta(t) + "$"}, true, "text")
		}
	}
	return nil
}

// toggleIfPresent clicks the yes/no control of a binary field. The form
// marks the pair with value attributes on a shared name.
func (f *flow) toggleIfPresent(baseSelector string, yes bool) {
	val := "no"
	if yes {
		val = "yes"
	}
	f.clickIfPresent(fmt.Sprintf(`%s[value=%q]`, baseSelector, val))
}

// ── stage driving ───────────────────────────────────────────────────────

// advance clicks the stage's continue action, waits for the re-render, and
// aborts with a classified error if the form flagged any field.
func (f *flow) advance(step string) *models.ScrapeError {
	if err := f.click(f.s.sel.ContinueButton); err != nil {
		return models.NewScrapeError(models.ErrCodeFieldValidation, step,
			"continue action not available", err)
	}
	f.waitSettled()

	if msgs := f.fieldErrors(); len(msgs) > 0 {
		return models.NewScrapeError(models.ErrCodeFieldValidation, step,
			strings.Join(msgs, "; "), nil)
	}
	return nil
}

// fieldErrors collects the visible labelled error texts currently on the
// page. No waiting: errors render synchronously with the rejected submit.
func (f *flow) fieldErrors() []string {
	els, err := f.page.Elements(f.s.sel.FieldError)
	if err != nil {
		return nil
	}
	var msgs []string
	for _, el := range els {
		if visible, verr := el.Visible(); verr != nil || !visible {
			continue
		}
		if t, terr := el.Text(); terr == nil {
			if t = strings.Join(strings.Fields(t), " "); t != "" {
				msgs = append(msgs, t)
			}
		}
	}
	return msgs
}

// yourCarStage fills the car-details screen: where the vehicle is kept, how
// it is financed and used. Field presence varies per mode.
func (f *flow) yourCarStage() *models.ScrapeError {
	sel := f.s.sel
	req := f.req

	// Leave the vehicle confirmation.
	if serr := f.advance(models.StepRegoLookup); serr != nil {
		return serr
	}

	if req.Mode() == models.ModeRegistration {
		if err := f.fillIfPresent(sel.AddressInput, req.Address); err != nil {
			return stageErr(models.StepYourCar, "address could not be entered", err)
		}
		f.pickAddressSuggestion()
	} else {
		if err := f.fillIfPresent(sel.PostcodeInput, req.Postcode); err != nil {
			return stageErr(models.StepYourCar, "postcode could not be entered", err)
		}
	}

	if req.UnderFinance != nil {
		f.toggleIfPresent(sel.FinanceToggle, *req.UnderFinance)
	}

	if err := f.chooseIfPresent(sel.PurposeSelect, req.Purpose); err != nil {
		return stageErr(models.StepYourCar, err.Error(), err)
	}
	if req.Purpose == "business" {
		if err := f.fillIfPresent(sel.BusinessNameInput, "Sole trader"); err != nil {
			return stageErr(models.StepYourCar, "business name could not be entered", err)
		}
	}

	if req.ParkingType != "" {
		if err := f.chooseIfPresent(sel.ParkingSelect, req.ParkingType); err != nil {
			return stageErr(models.StepYourCar, err.Error(), err)
		}
	}

	return f.advance(models.StepYourCar)
}

// pickAddressSuggestion selects the first autocomplete suggestion when the
// address field offers one. The form accepts free text without it, so a
// missing list is not an error.
func (f *flow) pickAddressSuggestion() {
	el, err := f.page.Timeout(5 * time.Second).Element(f.s.sel.AddressSuggestion)
	if err != nil {
		return
	}
	if err := el.Click("left", 1); err != nil {
		slog.Debug("address suggestion click failed", "error", err)
	}
}

// aboutYouStage fills the applicant screen: membership, gender, ages and
// claims history.
func (f *flow) aboutYouStage() *models.ScrapeError {
	sel := f.s.sel
	req := f.req

	f.toggleIfPresent(sel.MemberToggle, req.IsMember)

	if req.DriverGender != "" {
		f.clickIfPresent(fmt.Sprintf(`%s[value=%q]`, sel.GenderToggle, req.DriverGender))
	}

	if err := f.fillIfPresent(sel.AgeInput, strconv.Itoa(req.DriverAge)); err != nil {
		return stageErr(models.StepAboutYou, "driver age could not be entered", err)
	}

	if err := f.chooseIfPresent(sel.LicenceAgeSelect, strconv.Itoa(req.LicenceAge)); err != nil {
		return stageErr(models.StepAboutYou, err.Error(), err)
	}

	if err := f.chooseIfPresent(sel.ClaimsCountSelect, claimsCandidates(req.ClaimsLast5Years)...); err != nil {
		return stageErr(models.StepAboutYou, err.Error(), err)
	}
	if req.ClaimsLast5Years > 0 {
		if err := f.chooseFirstOption(sel.ClaimsDetail); err != nil {
			return stageErr(models.StepAboutYou, "claims detail could not be selected", err)
		}
	}

	return f.advance(models.StepAboutYou)
}

// claimsCandidates maps a numeric claims count onto the labels the form
// uses for its claims select ("None", "1", "2", "3+", ...).
func claimsCandidates(n int) []string {
	switch {
	case n <= 0:
		return []string{"0", "none", "no claims"}
	case n >= 3:
		return []string{strconv.Itoa(n), "3+", "3 or more"}
	default:
		return []string{strconv.Itoa(n)}
	}
}

func stageErr(step, msg string, err error) *models.ScrapeError {
	return models.NewScrapeError(models.ErrCodeFieldValidation, step, msg, err)
}
