package models

import "fmt"

// Quote request modes. Exactly one mode is used per call.
const (
	// ModeRegistration identifies the vehicle by its registration plate.
	ModeRegistration = "registration"

	// ModeManual identifies the vehicle by make/model/year selection.
	ModeManual = "manual"
)

// QuoteRequest is the payload for POST /api/v1/quote.
//
// The request runs in one of two modes. Registration mode drives the form's
// own rego lookup; manual mode drives the cascading make/year/model selects
// directly. The scraper fills only the fields the form presents for the
// active mode; everything else is skipped.
type QuoteRequest struct {
	// Registration is the vehicle's number plate. Setting it selects
	// registration mode.
	Registration string `json:"registration,omitempty"`

	// Address is the full street address where the vehicle is kept.
	// Used in registration mode.
	Address string `json:"address,omitempty"`

	// Make, Model and Year identify the vehicle in manual mode.
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
	Year  int    `json:"year,omitempty" binding:"omitempty,min=1950,max=2100"`

	// Postcode is the overnight-parking postcode. Used in manual mode.
	Postcode string `json:"postcode,omitempty"`

	// DriverAge is the main driver's age in years. Required in both modes.
	DriverAge int `json:"driver_age" binding:"required,min=16,max=110"`

	// DriverGender is "male" or "female". Registration mode only; the form
	// omits the field in manual mode.
	DriverGender string `json:"driver_gender,omitempty" binding:"omitempty,oneof=male female"`

	// LicenceAge is the age at which the driver obtained their licence.
	LicenceAge int `json:"licence_age,omitempty"`

	// ClaimsLast5Years is the number of at-fault claims in the last five years.
	ClaimsLast5Years int `json:"claims_last_5_years"`

	// IsMember reports existing membership with the insurer's road-service arm.
	IsMember bool `json:"is_member,omitempty"`

	// UnderFinance reports whether the vehicle is under finance.
	UnderFinance *bool `json:"under_finance,omitempty"`

	// Purpose is the vehicle's primary use.
	Purpose string `json:"purpose,omitempty" binding:"omitempty,oneof=private business rideshare"`

	// ParkingType is where the vehicle is parked overnight. Manual mode only.
	ParkingType string `json:"parking_type,omitempty" binding:"omitempty,oneof=garage carport driveway street"`

	// TimeoutSeconds caps the whole scrape. Default 90, max 300.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" binding:"omitempty,min=10,max=300"`

	// WebhookURL, when set, receives a signed quote.completed or
	// quote.failed event after the call finishes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`
}

// Mode reports which request mode the field set selects.
func (r *QuoteRequest) Mode() string {
	if r.Registration != "" {
		return ModeRegistration
	}
	return ModeManual
}

// Defaults applies default values to unset fields.
func (r *QuoteRequest) Defaults() {
	if r.TimeoutSeconds == 0 {
		r.TimeoutSeconds = 90
	}
	if r.LicenceAge == 0 {
		// The form rejects an empty licence age; assume licensed at 18
		// unless the driver is younger than that.
		r.LicenceAge = 18
		if r.DriverAge > 0 && r.DriverAge < 18 {
			r.LicenceAge = r.DriverAge
		}
	}
	if r.Purpose == "" {
		r.Purpose = "private"
	}
}

// Validate checks mode consistency. Field-level constraints (ranges, enums)
// are enforced by binding tags at the API boundary; this catches the
// cross-field rules binding cannot express.
func (r *QuoteRequest) Validate() error {
	switch r.Mode() {
	case ModeRegistration:
		if r.Address == "" {
			return fmt.Errorf("registration mode requires an address")
		}
		if r.Make != "" || r.Model != "" || r.Year != 0 {
			return fmt.Errorf("registration mode must not set make/model/year")
		}
	case ModeManual:
		if r.Make == "" || r.Model == "" || r.Year == 0 {
			return fmt.Errorf("manual mode requires make, model and year")
		}
		if r.Postcode == "" {
			return fmt.Errorf("manual mode requires a postcode")
		}
	}
	if r.LicenceAge > r.DriverAge {
		return fmt.Errorf("licence_age %d exceeds driver_age %d", r.LicenceAge, r.DriverAge)
	}
	if r.ClaimsLast5Years < 0 {
		return fmt.Errorf("claims_last_5_years must not be negative")
	}
	return nil
}
