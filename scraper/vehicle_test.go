package scraper

import (
	"testing"

	"github.com/premscan/premscan/models"
)

func TestMatchOption_Exact(t *testing.T) {
	opts := []string{"Please select", "Toyota", "Toyota Landcruiser"}
	if got := matchOption("TOYOTA", opts); got != "Toyota" {
		t.Errorf("matchOption = %q, want exact match %q", got, "Toyota")
	}
}

func TestMatchOption_OptionContainsRecord(t *testing.T) {
	opts := []string{"Please select", "Corolla Ascent Sport", "Camry"}
	if got := matchOption("corolla", opts); got != "Corolla Ascent Sport" {
		t.Errorf("matchOption = %q, want %q", got, "Corolla Ascent Sport")
	}
}

func TestMatchOption_RecordContainsOption(t *testing.T) {
	// The backend record can be more verbose than the UI label.
	opts := []string{"Please select", "Hatch", "Sedan"}
	if got := matchOption("Hatchback 5dr", opts); got != "Hatch" {
		t.Errorf("matchOption = %q, want %q", got, "Hatch")
	}
}

func TestMatchOption_NoMatch(t *testing.T) {
	if got := matchOption("Mazda", []string{"Toyota", "Holden"}); got != "" {
		t.Errorf("matchOption = %q, want no match", got)
	}
}

func TestMatchOption_EmptyWant(t *testing.T) {
	if got := matchOption("  ", []string{"Toyota"}); got != "" {
		t.Errorf("matchOption = %q, want no match for blank input", got)
	}
}

func TestParseLookupRecord_Envelope(t *testing.T) {
	body := []byte(`{"success":true,"vehicle":{"year":2022,"make":"TOYOTA","model":"COROLLA","bodyType":"Hatchback","variant":"Ascent Sport"}}`)

	v := parseLookupRecord(body)
	if !v.Complete() {
		t.Fatalf("record should be complete: %+v", v)
	}
	if v.Year != 2022 || v.Make != "TOYOTA" || v.Model != "COROLLA" || v.BodyType != "Hatchback" {
		t.Errorf("unexpected record: %+v", v)
	}
}

func TestParseLookupRecord_FlatPayload(t *testing.T) {
	body := []byte(`{"year":2018,"make":"MAZDA","model":"CX-5","body_type":"Wagon"}`)

	v := parseLookupRecord(body)
	if !v.Complete() {
		t.Fatalf("record should be complete: %+v", v)
	}
	if v.BodyType != "Wagon" {
		t.Errorf("body type = %q, want Wagon (snake_case key)", v.BodyType)
	}
}

func TestParseLookupRecord_ExplicitFailure(t *testing.T) {
	body := []byte(`{"success":false,"vehicle":{"year":2022,"make":"TOYOTA","model":"COROLLA"}}`)

	if v := parseLookupRecord(body); v.Complete() {
		t.Errorf("failed lookup must not yield a usable record: %+v", v)
	}
}

func TestParseLookupRecord_Malformed(t *testing.T) {
	if v := parseLookupRecord([]byte(`not json at all`)); v.Complete() {
		t.Errorf("malformed body must not yield a usable record: %+v", v)
	}
}

func TestVehicleFromHeading(t *testing.T) {
	v := vehicleFromHeading("  2022   TOYOTA  COROLLA Ascent Sport Hatchback ")
	if v.Year != 2022 {
		t.Errorf("year = %d, want 2022", v.Year)
	}
	if v.Make != "TOYOTA" {
		t.Errorf("make = %q, want TOYOTA", v.Make)
	}
	if v.Description != "2022 TOYOTA COROLLA Ascent Sport Hatchback" {
		t.Errorf("description = %q (whitespace should be collapsed)", v.Description)
	}
}

func TestVehicleFromHeading_NoYear(t *testing.T) {
	v := vehicleFromHeading("Your vehicle")
	if v.Year != 0 || v.Description != "Your vehicle" {
		t.Errorf("unexpected result: %+v", v)
	}
}

func TestConfirmedVehicle_HeadingIsAuthoritative(t *testing.T) {
	// The request asked for a Corolla, the form confirmed a specific one.
	requested := &models.VehicleInfo{Year: 2022, Make: "Toyota", Model: "Corolla"}
	v := confirmedVehicle("2022 TOYOTA COROLLA Ascent Sport Hatchback", requested)

	if v.Description != "2022 TOYOTA COROLLA Ascent Sport Hatchback" {
		t.Errorf("description = %q, want the form's own heading", v.Description)
	}
	if v.Year != 2022 || v.Make != "TOYOTA" {
		t.Errorf("structured fields not taken from heading: %+v", v)
	}
}

func TestConfirmedVehicle_FallbackFillsMissingFields(t *testing.T) {
	rec := &models.VehicleInfo{Year: 2018, Make: "MAZDA", Model: "CX-5", BodyType: "Wagon"}
	v := confirmedVehicle("Your vehicle", rec)

	if v.Year != 2018 || v.Make != "MAZDA" || v.Model != "CX-5" || v.BodyType != "Wagon" {
		t.Errorf("record fields lost when heading carries no structure: %+v", v)
	}
	if v.Description != "Your vehicle" {
		t.Errorf("description = %q, want the heading text", v.Description)
	}
}

func TestLookupObserver_KeepsLatestCompleteRecord(t *testing.T) {
	o := &lookupObserver{}

	o.observe([]byte(`{"success":false}`))
	if o.record() != nil {
		t.Fatal("failed response must not be cached")
	}

	o.observe([]byte(`{"vehicle":{"year":2020,"make":"FORD","model":"RANGER"}}`))
	rec := o.record()
	if rec == nil || rec.Make != "FORD" {
		t.Fatalf("expected cached FORD record, got %+v", rec)
	}

	// Incomplete follow-up must not clobber the cached record.
	o.observe([]byte(`{"vehicle":{"make":"HOLDEN"}}`))
	if rec := o.record(); rec.Make != "FORD" {
		t.Errorf("incomplete record overwrote cache: %+v", rec)
	}
}
