package models

import (
	"strings"
	"testing"
)

func TestQuoteRequestMode(t *testing.T) {
	reg := &QuoteRequest{Registration: "ABC123"}
	if reg.Mode() != ModeRegistration {
		t.Errorf("mode = %q, want registration", reg.Mode())
	}

	man := &QuoteRequest{Make: "Toyota", Model: "Corolla", Year: 2022}
	if man.Mode() != ModeManual {
		t.Errorf("mode = %q, want manual", man.Mode())
	}
}

func TestQuoteRequestDefaults(t *testing.T) {
	r := &QuoteRequest{DriverAge: 35}
	r.Defaults()

	if r.TimeoutSeconds != 90 {
		t.Errorf("timeout = %d, want 90", r.TimeoutSeconds)
	}
	if r.LicenceAge != 18 {
		t.Errorf("licence age = %d, want 18", r.LicenceAge)
	}
	if r.Purpose != "private" {
		t.Errorf("purpose = %q, want private", r.Purpose)
	}
}

func TestQuoteRequestDefaults_YoungDriver(t *testing.T) {
	r := &QuoteRequest{DriverAge: 17}
	r.Defaults()

	if r.LicenceAge != 17 {
		t.Errorf("licence age = %d, want clamped to driver age 17", r.LicenceAge)
	}
}

func TestQuoteRequestDefaults_PreservesExplicitValues(t *testing.T) {
	r := &QuoteRequest{DriverAge: 40, TimeoutSeconds: 120, LicenceAge: 25, Purpose: "business"}
	r.Defaults()

	if r.TimeoutSeconds != 120 || r.LicenceAge != 25 || r.Purpose != "business" {
		t.Errorf("explicit values overwritten: %+v", r)
	}
}

func TestQuoteRequestValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     QuoteRequest
		wantErr string
	}{
		{
			name: "registration ok",
			req:  QuoteRequest{Registration: "ABC123", Address: "1 Main St, Richmond VIC 3121", DriverAge: 35, LicenceAge: 18},
		},
		{
			name:    "registration missing address",
			req:     QuoteRequest{Registration: "ABC123", DriverAge: 35},
			wantErr: "requires an address",
		},
		{
			name:    "registration with manual fields",
			req:     QuoteRequest{Registration: "ABC123", Address: "1 Main St", Make: "Toyota", DriverAge: 35},
			wantErr: "must not set make/model/year",
		},
		{
			name: "manual ok",
			req:  QuoteRequest{Make: "Toyota", Model: "Corolla", Year: 2022, Postcode: "3121", DriverAge: 35, LicenceAge: 18},
		},
		{
			name:    "manual missing model",
			req:     QuoteRequest{Make: "Toyota", Year: 2022, Postcode: "3121", DriverAge: 35},
			wantErr: "requires make, model and year",
		},
		{
			name:    "manual missing postcode",
			req:     QuoteRequest{Make: "Toyota", Model: "Corolla", Year: 2022, DriverAge: 35},
			wantErr: "requires a postcode",
		},
		{
			name:    "licence age after driver age",
			req:     QuoteRequest{Registration: "ABC123", Address: "1 Main St", DriverAge: 20, LicenceAge: 25},
			wantErr: "exceeds driver_age",
		},
		{
			name:    "negative claims",
			req:     QuoteRequest{Registration: "ABC123", Address: "1 Main St", DriverAge: 35, ClaimsLast5Years: -1},
			wantErr: "must not be negative",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.req.Validate()
			if c.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), c.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, c.wantErr)
			}
		})
	}
}
