package models

import (
	"fmt"
	"strings"
)

// VehicleInfo is the vehicle record resolved during the rego-lookup stage.
// It comes from either the form's own confirmation panel or an intercepted
// backend lookup response, and lives only for the duration of one call.
type VehicleInfo struct {
	Year     int    `json:"year,omitempty"`
	Make     string `json:"make,omitempty"`
	Model    string `json:"model,omitempty"`
	BodyType string `json:"body_type,omitempty"`
	Variant  string `json:"variant,omitempty"`

	// Description is the normalized human-readable label, e.g.
	// "2022 TOYOTA COROLLA ASCENT SPORT Hatchback". Used for manual
	// fallback matching and reporting.
	Description string `json:"description,omitempty"`
}

// Complete reports whether the record carries enough structure to drive the
// manual cascading selection fallback.
func (v *VehicleInfo) Complete() bool {
	return v != nil && v.Year > 0 && v.Make != "" && v.Model != ""
}

// Describe builds the normalized description from the structured fields,
// collapsing repeated whitespace. Existing descriptions are kept as-is.
func (v *VehicleInfo) Describe() string {
	if v.Description != "" {
		return v.Description
	}
	parts := []string{fmt.Sprintf("%d", v.Year), v.Make, v.Model, v.Variant, v.BodyType}
	fields := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && p != "0" {
			fields = append(fields, p)
		}
	}
	return strings.Join(fields, " ")
}
