package scraper

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/premscan/premscan/models"
	"github.com/ysmood/gson"
)

// lookupObserver caches the latest well-formed vehicle record seen among the
// site's backend lookup responses. The form sometimes fails its own lookup
// UI while the backend still returned usable data; the cached record then
// drives the manual-selection fallback.
type lookupObserver struct {
	rec atomic.Pointer[models.VehicleInfo]
}

// observe runs on the hijack goroutine for every intercepted lookup
// response. It must not block.
func (o *lookupObserver) observe(body []byte) {
	v := parseLookupRecord(body)
	if v.Complete() {
		slog.Debug("vehicle lookup response intercepted", "vehicle", v.Describe())
		o.rec.Store(v)
	}
}

// record returns the cached vehicle record, or nil.
func (o *lookupObserver) record() *models.VehicleInfo {
	return o.rec.Load()
}

// parseLookupRecord probes a lookup response body for a vehicle record. The
// payload shape is not documented, so probing is tolerant: fields are read
// from a "vehicle" envelope or the top level, and an explicit failure flag
// rejects the record.
func parseLookupRecord(body []byte) *models.VehicleInfo {
	j := gson.New(body)

	if b, ok := j.Get("success").Val().(bool); ok && !b {
		return &models.VehicleInfo{}
	}

	rec := j.Get("vehicle")
	if rec.Val() == nil {
		rec = j
	}

	return &models.VehicleInfo{
		Year:        intField(rec, "year"),
		Make:        strField(rec, "make"),
		Model:       strField(rec, "model"),
		BodyType:    strField(rec, "bodyType", "body_type"),
		Variant:     strField(rec, "variant"),
		Description: strField(rec, "description"),
	}
}

// strField reads the first present string key, trimmed. Absent keys and
// non-string values read as empty.
func strField(j gson.JSON, keys ...string) string {
	for _, k := range keys {
		if s, ok := j.Get(k).Val().(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// intField reads a numeric key, tolerating string-encoded numbers.
func intField(j gson.JSON, key string) int {
	switch v := j.Get(key).Val().(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}

var yearRe = regexp.MustCompile(`(19|20)\d{2}`)

// vehicleFromHeading builds a VehicleInfo from the form's confirmation
// heading, e.g. "2022 TOYOTA COROLLA ASCENT SPORT Hatchback".
func vehicleFromHeading(text string) *models.VehicleInfo {
	desc := strings.Join(strings.Fields(text), " ")
	v := &models.VehicleInfo{Description: desc}
	if y := yearRe.FindString(desc); y != "" {
		v.Year, _ = strconv.Atoi(y)
		rest := strings.Fields(strings.TrimSpace(desc[strings.Index(desc, y)+len(y):]))
		if len(rest) > 0 {
			v.Make = rest[0]
		}
		if len(rest) > 1 {
			v.Model = rest[1]
		}
	}
	return v
}

// resolveVehicle runs the whole resolution sequence: the direct channel
// (rego lookup or request-driven manual selection), with the intercepted
// backend record as fallback when the UI reports not-found. The sequence is
// attempted up to VehicleAttempts times, re-navigating from the start each
// time no vehicle was confirmed.
func (f *flow) resolveVehicle() (*models.VehicleInfo, *models.ScrapeError) {
	var lastErr *models.ScrapeError

	for attempt := 1; attempt <= f.s.cfg.VehicleAttempts; attempt++ {
		if err := f.navigateToForm(); err != nil {
			lastErr = models.NewScrapeError(
				models.ErrCodeVehicleNotFound, models.StepRegoLookup,
				err.Error(), err)
			continue
		}

		var (
			v    *models.VehicleInfo
			serr *models.ScrapeError
		)
		if f.req.Mode() == models.ModeRegistration {
			v, serr = f.resolveByRegistration()
		} else {
			v, serr = f.resolveManualRequest()
		}
		if serr == nil && v != nil {
			slog.Info("vehicle resolved", "attempt", attempt, "vehicle", v.Describe())
			return v, nil
		}

		lastErr = serr
		slog.Warn("vehicle resolution attempt failed",
			"attempt", attempt, "error", lastErr.Message)
	}

	if lastErr == nil {
		lastErr = vehicleErr("no vehicle confirmed", nil)
	}
	return nil, lastErr
}

// resolveByRegistration drives the rego-lookup UI and waits for whichever
// observable outcome arrives first: the confirmation panel or an explicit
// not-found message. On not-found with a cached backend record, it switches
// to the manual cascade driven from that record.
func (f *flow) resolveByRegistration() (*models.VehicleInfo, *models.ScrapeError) {
	sel := f.s.sel

	if err := f.typeInto(sel.RegoInput, f.req.Registration); err != nil {
		return nil, vehicleErr("rego input not available", err)
	}
	if err := f.click(sel.RegoSubmit); err != nil {
		return nil, vehicleErr("rego search could not be submitted", err)
	}

	var (
		confirmedText string
		notFound      bool
	)
	p := f.page.Timeout(f.s.cfg.LookupTimeout)
	_, err := p.Race().
		ElementR(sel.VehicleConfirm, sel.VehicleConfirmPattern).
		MustHandle(func(e *rod.Element) { confirmedText, _ = e.Text() }).
		ElementR(sel.NotFoundIndicator, sel.NotFoundPattern).
		MustHandle(func(*rod.Element) { notFound = true }).
		Do()
	if err != nil {
		return nil, vehicleErr("vehicle lookup did not confirm in time", err)
	}

	if notFound {
		if rec := f.observer.record(); rec.Complete() {
			slog.Info("lookup UI reported not-found, driving manual fallback",
				"vehicle", rec.Describe())
			return f.manualCascadeFromRecord(rec)
		}
		return nil, vehicleErr(
			fmt.Sprintf("vehicle not found for registration %q", f.req.Registration), nil)
	}

	return vehicleFromHeading(confirmedText), nil
}

// resolveManualRequest drives the cascading selects from the request's own
// make/year/model (manual-vehicle mode). The cascade matches options by
// substring, so the selection only counts once the form itself confirms a
// matched vehicle.
func (f *flow) resolveManualRequest() (*models.VehicleInfo, *models.ScrapeError) {
	f.clickIfPresent(f.s.sel.ManualToggle)

	steps := []cascadeStep{
		{"year", f.s.sel.YearSelect, strconv.Itoa(f.req.Year)},
		{"make", f.s.sel.MakeSelect, f.req.Make},
		{"model", f.s.sel.ModelSelect, f.req.Model},
	}
	if err := f.runCascade(steps); err != nil {
		return nil, vehicleErr(err.Error(), err)
	}

	heading, err := f.awaitVehicleConfirm()
	if err != nil {
		return nil, vehicleErr("manual selection was not confirmed by the form", err)
	}
	return confirmedVehicle(heading, &models.VehicleInfo{
		Year:  f.req.Year,
		Make:  f.req.Make,
		Model: f.req.Model,
	}), nil
}

// manualCascadeFromRecord drives the same cascade a human would, using the
// intercepted record's strings, and likewise waits for the form to confirm.
func (f *flow) manualCascadeFromRecord(rec *models.VehicleInfo) (*models.VehicleInfo, *models.ScrapeError) {
	f.clickIfPresent(f.s.sel.ManualToggle)

	steps := []cascadeStep{
		{"year", f.s.sel.YearSelect, strconv.Itoa(rec.Year)},
		{"make", f.s.sel.MakeSelect, rec.Make},
		{"model", f.s.sel.ModelSelect, rec.Model},
		{"body type", f.s.sel.BodyTypeSelect, rec.BodyType},
	}
	if err := f.runCascade(steps); err != nil {
		return nil, vehicleErr(err.Error(), err)
	}

	heading, err := f.awaitVehicleConfirm()
	if err != nil {
		return nil, vehicleErr("cascade selection was not confirmed by the form", err)
	}
	return confirmedVehicle(heading, rec), nil
}

// awaitVehicleConfirm waits for the confirmation panel to render after a
// cascade selection and returns its heading text.
func (f *flow) awaitVehicleConfirm() (string, error) {
	el, err := f.page.Timeout(f.s.cfg.LookupTimeout).
		ElementR(f.s.sel.VehicleConfirm, f.s.sel.VehicleConfirmPattern)
	if err != nil {
		return "", err
	}
	return el.Text()
}

// confirmedVehicle builds the resolved record from the form's confirmation
// heading. The heading is authoritative for the description; structured
// fields it does not carry are kept from the caller's own record.
func confirmedVehicle(heading string, fallback *models.VehicleInfo) *models.VehicleInfo {
	v := vehicleFromHeading(heading)
	if v.Year == 0 {
		v.Year = fallback.Year
	}
	if v.Make == "" {
		v.Make = fallback.Make
	}
	if v.Model == "" {
		v.Model = fallback.Model
	}
	if v.BodyType == "" {
		v.BodyType = fallback.BodyType
	}
	if v.Variant == "" {
		v.Variant = fallback.Variant
	}
	if v.Description == "" {
		v.Description = fallback.Description
	}
	return v
}

// cascadeStep is one link of the dependent-selection chain. Steps run
// strictly in sequence: each re-queries its options only after the prior
// step's selection has been committed, because the form repopulates each
// select from the previous one's value.
type cascadeStep struct {
	name     string
	selector string
	want     string
}

func (f *flow) runCascade(steps []cascadeStep) error {
	for _, st := range steps {
		if st.want == "" {
			// Optional link (e.g. body type missing from the record).
			continue
		}
		el, err := f.page.Timeout(f.s.cfg.StepTimeout).Element(st.selector)
		if err != nil {
			return fmt.Errorf("%s select not available: %w", st.name, err)
		}
		option, err := f.matchingOption(el, st.want)
		if err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
		if err := el.Select([]string{"^" + regexp.QuoteMeta(option) + "$"}, true, "text"); err != nil {
			return fmt.Errorf("%s option %q could not be selected: %w", st.name, option, err)
		}
		f.waitSettled()
	}
	return nil
}

// matchingOption picks the select's option whose text matches want.
func (f *flow) matchingOption(el *rod.Element, want string) (string, error) {
	opts, err := el.Elements("option")
	if err != nil {
		return "", fmt.Errorf("options not readable: %w", err)
	}
	texts := make([]string, 0, len(opts))
	for _, o := range opts {
		t, err := o.Text()
		if err != nil {
			continue
		}
		texts = append(texts, strings.TrimSpace(t))
	}
	if match := matchOption(want, texts); match != "" {
		return match, nil
	}
	return "", fmt.Errorf("no option matching %q among %d options", want, len(texts))
}

// matchOption matches want against option texts case-insensitively, by
// substring containment in either direction, to absorb minor label
// differences between the backend record and the UI ("COROLLA" vs
// "Corolla Ascent"). Exact matches win over containment.
func matchOption(want string, options []string) string {
	w := strings.ToLower(strings.TrimSpace(want))
	if w == "" {
		return ""
	}
	for _, opt := range options {
		if strings.ToLower(strings.TrimSpace(opt)) == w {
			return opt
		}
	}
	for _, opt := range options {
		o := strings.ToLower(strings.TrimSpace(opt))
		if o == "" {
			continue
		}
		if strings.Contains(o, w) || strings.Contains(w, o) {
			return opt
		}
	}
	return ""
}

func vehicleErr(msg string, err error) *models.ScrapeError {
	return models.NewScrapeError(models.ErrCodeVehicleNotFound, models.StepRegoLookup, msg, err)
}
