package models

// Step tags record how far a call got through the quote form before it
// finished or failed. They match the form's own page sequence.
const (
	StepRegoLookup  = "rego_lookup"  // vehicle identification
	StepYourCar     = "your_car"     // car details, address, parking
	StepAboutYou    = "about_you"    // driver details, claims history
	StepQuoteResult = "quote_result" // final premium page
)

// ScrapeResult is the unified outcome of one quote scrape.
//
// Invariants:
//   - Success == true implies AnnualPremium or MonthlyPremium is set.
//   - Success == false implies StepReached and Error are set.
//   - RawAmounts is populated whenever the final page was reached,
//     regardless of success, to support manual review.
type ScrapeResult struct {
	Success bool `json:"success"`

	// VehicleDescription is the resolved vehicle label, when known.
	VehicleDescription string `json:"vehicle_description,omitempty"`

	// AnnualPremium and MonthlyPremium are the extracted amounts in dollars.
	AnnualPremium  float64 `json:"annual_premium,omitempty"`
	MonthlyPremium float64 `json:"monthly_premium,omitempty"`

	// ExcessAmount is the policy excess, when one of the form's known
	// excess tiers was recognized on the final page.
	ExcessAmount float64 `json:"excess_amount,omitempty"`

	// RawAmounts holds every currency string found on the final page,
	// verbatim, in page order.
	RawAmounts []string `json:"raw_amounts,omitempty"`

	// DiagnosticArtifact references a saved page snapshot (screenshot +
	// HTML dump), when one was captured. Advisory only.
	DiagnosticArtifact string `json:"diagnostic_artifact,omitempty"`

	// Estimated marks results produced by the static fallback calculator
	// rather than a live scrape.
	Estimated bool `json:"estimated,omitempty"`

	// Error is the human-readable failure description.
	Error string `json:"error,omitempty"`

	// StepReached is the step tag where the call ended.
	StepReached string `json:"step_reached,omitempty"`
}

// Failed builds a failure result honoring the result invariants.
func Failed(step, errMsg string) *ScrapeResult {
	return &ScrapeResult{
		Success:     false,
		Error:       errMsg,
		StepReached: step,
	}
}
