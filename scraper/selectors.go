package scraper

import "reflect"

// Selectors centralizes every CSS selector, label keyword and text pattern
// used against the quote form. The form has no API contract, so these are
// matching conventions against its current markup; when the insurer reworks
// a page, this is the one place to patch. Any field can be overridden via
// Merge without touching flow logic.
type Selectors struct {
	// ── rego_lookup stage ───────────────────────────────────────────
	RegoInput      string
	RegoSubmit     string
	VehicleConfirm string
	// VehicleConfirmPattern is a JS regex matching the confirmation
	// heading's "year + make" shape, e.g. "2022 TOYOTA COROLLA".
	VehicleConfirmPattern string
	NotFoundIndicator     string
	NotFoundPattern       string
	ManualToggle          string
	YearSelect            string
	MakeSelect            string
	ModelSelect           string
	BodyTypeSelect        string

	// ── your_car stage ──────────────────────────────────────────────
	AddressInput      string
	AddressSuggestion string
	PostcodeInput     string
	FinanceToggle     string
	PurposeSelect     string
	BusinessNameInput string
	ParkingSelect     string

	// ── about_you stage ─────────────────────────────────────────────
	MemberToggle      string
	GenderToggle      string
	AgeInput          string
	LicenceAgeSelect  string
	ClaimsCountSelect string
	ClaimsDetail      string

	// ── transitions & errors ────────────────────────────────────────
	ContinueButton string
	SubmitButton   string
	QuotePanel     string
	FieldError     string
	PageBanner     string
	BackToForm     string
}

// DefaultSelectors returns the conventions currently observed on the form.
func DefaultSelectors() Selectors {
	return Selectors{
		RegoInput:             `input[name="registration"], input[id*="rego" i]`,
		RegoSubmit:            `button[data-action="rego-search"], button[type="submit"]`,
		VehicleConfirm:        `[data-testid="vehicle-details"], .vehicle-confirmation, .vehicle-summary h2`,
		VehicleConfirmPattern: `(19|20)\d{2}\s+\S+`,
		NotFoundIndicator:     `.lookup-error, .vehicle-not-found, [role="alert"]`,
		NotFoundPattern:       `/couldn't find|could not find|no vehicle|not found/i`,
		ManualToggle:          `a[data-action="manual-entry"], [href*="manual"], button.manual-entry`,
		YearSelect:            `select[name="year"], select[id*="year" i]`,
		MakeSelect:            `select[name="make"], select[id*="make" i]`,
		ModelSelect:           `select[name="model"], select[id*="model" i]`,
		BodyTypeSelect:        `select[name="bodyType"], select[id*="body" i]`,

		AddressInput:      `input[name="address"], input[id*="address" i]`,
		AddressSuggestion: `.address-suggestions li, [role="listbox"] [role="option"]`,
		PostcodeInput:     `input[name="postcode"], input[id*="postcode" i]`,
		FinanceToggle:     `input[name="finance"]`,
		PurposeSelect:     `select[name="purpose"], select[id*="purpose" i]`,
		BusinessNameInput: `input[name="businessName"], input[id*="business" i]`,
		ParkingSelect:     `select[name="parking"], select[id*="park" i]`,

		MemberToggle:      `input[name="member"]`,
		GenderToggle:      `input[name="gender"]`,
		AgeInput:          `input[name="driverAge"], input[id*="age" i]`,
		LicenceAgeSelect:  `select[name="licenceAge"], select[id*="licence" i]`,
		ClaimsCountSelect: `select[name="claims"], select[id*="claim" i]`,
		ClaimsDetail:      `select[name="claimDetail"], select[id*="claim-detail" i]`,

		ContinueButton: `button[data-action="continue"], button.continue, button[type="submit"]`,
		SubmitButton:   `button[data-action="get-quote"], button.get-quote, button[type="submit"]`,
		QuotePanel:     `.quote-result, [data-testid="quote"], .premium-display`,
		FieldError:     `.field-error, .input-error, .error-message`,
		PageBanner:     `.page-error, .alert, [role="alert"]`,
		BackToForm:     `button[data-action="back"], a.back-to-form, button.back`,
	}
}

// Merge returns a copy of s with every non-empty field of override applied.
func (s Selectors) Merge(override Selectors) Selectors {
	out := s
	ov := reflect.ValueOf(override)
	dst := reflect.ValueOf(&out).Elem()
	for i := 0; i < ov.NumField(); i++ {
		if v := ov.Field(i).String(); v != "" {
			dst.Field(i).SetString(v)
		}
	}
	return out
}
