package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Browser     BrowserConfig
	Scraper     ScraperConfig
	Target      TargetConfig
	Diagnostics DiagnosticsConfig
	Fallback    FallbackConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Webhook     WebhookConfig
	Log         LogConfig
}

// WebhookConfig controls outbound event delivery.
type WebhookConfig struct {
	// Secret signs event payloads with HMAC-SHA256 when non-empty.
	Secret string
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the shared Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is an optional proxy URL for all browser traffic.
	Proxy string

	// BlockAds blocks requests to known ad/tracking domains.
	BlockAds bool // default: true
}

// ScraperConfig controls the quote-scraping flow.
type ScraperConfig struct {
	// DefaultTimeout is the whole-call deadline when the request does not
	// set one.
	DefaultTimeout time.Duration // default: 90s

	// MaxTimeout is the maximum allowed whole-call deadline.
	MaxTimeout time.Duration // default: 300s

	// StepTimeout is the deadline for a single form-step wait (element
	// appearance, stage transition). Sized to normal form latency.
	StepTimeout time.Duration // default: 20s

	// LookupTimeout is the deadline for the vehicle lookup to confirm.
	LookupTimeout time.Duration // default: 25s

	// VehicleAttempts is the number of full vehicle-resolution attempts
	// (direct channel, then manual fallback) before giving up.
	VehicleAttempts int // default: 3
}

// TargetConfig describes the insurer's quoting form. The form has no API
// contract, so everything here is a matching convention against its current
// markup and may need tuning when the site changes.
type TargetConfig struct {
	// QuoteURL is the entry URL of the quote form.
	QuoteURL string

	// LookupURLSubstring identifies the backend vehicle-lookup call among
	// the page's network traffic.
	LookupURLSubstring string // default: "/vehicle/lookup"

	// ExcessTiers are the form's fixed excess options in dollars.
	ExcessTiers []float64 // default: 500,600,700,850,1000,1250,1600,2000

	// AnnualMin/AnnualMax bound the plausible annual-premium range used by
	// the extraction fallback rule.
	AnnualMin float64 // default: 300
	AnnualMax float64 // default: 9000

	// MonthlyMin/MonthlyMax bound the plausible monthly-premium range.
	MonthlyMin float64 // default: 30
	MonthlyMax float64 // default: 800
}

// DiagnosticsConfig controls failure snapshots.
type DiagnosticsConfig struct {
	// Enabled toggles snapshot capture.
	Enabled bool // default: true

	// Dir is where screenshots and HTML dumps are written.
	Dir string // default: "./diagnostics"

	// MaxArtifacts caps how many snapshot pairs are kept; older ones are
	// pruned on capture. 0 disables pruning.
	MaxArtifacts int // default: 50
}

// FallbackConfig controls the static rate-table quote engine.
type FallbackConfig struct {
	// Enabled makes the dispatcher answer with a static estimate when the
	// scrape fails (or ScrapeDisabled is set).
	Enabled bool // default: true

	// ScrapeDisabled skips the browser entirely and always estimates.
	ScrapeDisabled bool // default: false
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 3
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PREMSCAN_HOST", "0.0.0.0"),
			Port: envIntOr("PREMSCAN_PORT", 8080),
			Mode: envOr("PREMSCAN_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("PREMSCAN_HEADLESS", true),
			NoSandbox:  envBoolOr("PREMSCAN_NO_SANDBOX", false),
			BrowserBin: os.Getenv("PREMSCAN_BROWSER_BIN"),
			Proxy:      os.Getenv("PREMSCAN_PROXY"),
			BlockAds:   envBoolOr("PREMSCAN_BLOCK_ADS", true),
		},
		Scraper: ScraperConfig{
			DefaultTimeout:  envDurationOr("PREMSCAN_DEFAULT_TIMEOUT", 90*time.Second),
			MaxTimeout:      envDurationOr("PREMSCAN_MAX_TIMEOUT", 300*time.Second),
			StepTimeout:     envDurationOr("PREMSCAN_STEP_TIMEOUT", 20*time.Second),
			LookupTimeout:   envDurationOr("PREMSCAN_LOOKUP_TIMEOUT", 25*time.Second),
			VehicleAttempts: envIntOr("PREMSCAN_VEHICLE_ATTEMPTS", 3),
		},
		Target: TargetConfig{
			QuoteURL:           envOr("PREMSCAN_QUOTE_URL", "https://quote.example-insurer.com.au/car"),
			LookupURLSubstring: envOr("PREMSCAN_LOOKUP_URL_SUBSTRING", "/vehicle/lookup"),
			ExcessTiers: envFloatSliceOr("PREMSCAN_EXCESS_TIERS", []float64{
				500, 600, 700, 850, 1000, 1250, 1600, 2000,
			}),
			AnnualMin:  envFloatOr("PREMSCAN_ANNUAL_MIN", 300),
			AnnualMax:  envFloatOr("PREMSCAN_ANNUAL_MAX", 9000),
			MonthlyMin: envFloatOr("PREMSCAN_MONTHLY_MIN", 30),
			MonthlyMax: envFloatOr("PREMSCAN_MONTHLY_MAX", 800),
		},
		Diagnostics: DiagnosticsConfig{
			Enabled:      envBoolOr("PREMSCAN_DIAGNOSTICS", true),
			Dir:          envOr("PREMSCAN_DIAGNOSTICS_DIR", "./diagnostics"),
			MaxArtifacts: envIntOr("PREMSCAN_DIAGNOSTICS_MAX", 50),
		},
		Fallback: FallbackConfig{
			Enabled:        envBoolOr("PREMSCAN_FALLBACK", true),
			ScrapeDisabled: envBoolOr("PREMSCAN_SCRAPE_DISABLED", false),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PREMSCAN_AUTH_ENABLED", true),
			APIKeys: envSliceOr("PREMSCAN_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PREMSCAN_RATE_RPS", 1.0),
			Burst:             envIntOr("PREMSCAN_RATE_BURST", 3),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("PREMSCAN_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("PREMSCAN_LOG_LEVEL", "info"),
			Format: envOr("PREMSCAN_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

func envFloatSliceOr(key string, fallback []float64) []float64 {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]float64, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
					result = append(result, f)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
