package models

// QuoteResponse is the response for POST /api/v1/quote.
type QuoteResponse struct {
	// Success indicates whether a premium was obtained.
	Success bool `json:"success"`

	// Result is the scrape (or fallback-estimate) outcome.
	Result *ScrapeResult `json:"result,omitempty"`

	// Engine indicates which quote engine produced the result
	// ("scrape" or "static"; "none" when no engine could run).
	Engine string `json:"engine,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false and no structured
	// result is available (input or infrastructure failures).
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down where the request spent its time.
type TimingInfo struct {
	// TotalMs is the end-to-end duration.
	TotalMs int64 `json:"total_ms"`

	// ScrapeMs is the time spent driving the browser.
	ScrapeMs int64 `json:"scrape_ms,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	BrowserAlive  bool   `json:"browser_alive"`
	ActiveScrapes int    `json:"active_scrapes"`
}
