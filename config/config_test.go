package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if !cfg.Browser.Headless || !cfg.Browser.BlockAds {
		t.Errorf("browser defaults: %+v", cfg.Browser)
	}
	if cfg.Scraper.DefaultTimeout != 90*time.Second || cfg.Scraper.MaxTimeout != 300*time.Second {
		t.Errorf("scraper timeouts: %+v", cfg.Scraper)
	}
	if cfg.Target.LookupURLSubstring != "/vehicle/lookup" {
		t.Errorf("lookup substring = %q", cfg.Target.LookupURLSubstring)
	}
	if len(cfg.Target.ExcessTiers) != 8 || cfg.Target.ExcessTiers[3] != 850 {
		t.Errorf("excess tiers: %v", cfg.Target.ExcessTiers)
	}
	if !cfg.Fallback.Enabled || cfg.Fallback.ScrapeDisabled {
		t.Errorf("fallback defaults: %+v", cfg.Fallback)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PREMSCAN_PORT", "9090")
	t.Setenv("PREMSCAN_HEADLESS", "false")
	t.Setenv("PREMSCAN_STEP_TIMEOUT", "45s")
	t.Setenv("PREMSCAN_EXCESS_TIERS", "400, 800,1200")
	t.Setenv("PREMSCAN_API_KEYS", "key-a, key-b,")
	t.Setenv("PREMSCAN_RATE_RPS", "0.5")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Browser.Headless {
		t.Error("headless override ignored")
	}
	if cfg.Scraper.StepTimeout != 45*time.Second {
		t.Errorf("step timeout = %v", cfg.Scraper.StepTimeout)
	}
	if len(cfg.Target.ExcessTiers) != 3 || cfg.Target.ExcessTiers[1] != 800 {
		t.Errorf("excess tiers = %v", cfg.Target.ExcessTiers)
	}
	if len(cfg.Auth.APIKeys) != 2 || cfg.Auth.APIKeys[1] != "key-b" {
		t.Errorf("api keys = %v", cfg.Auth.APIKeys)
	}
	if cfg.RateLimit.RequestsPerSecond != 0.5 {
		t.Errorf("rate = %v", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PREMSCAN_PORT", "not-a-number")
	t.Setenv("PREMSCAN_STEP_TIMEOUT", "soon")
	t.Setenv("PREMSCAN_EXCESS_TIERS", "abc,def")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default on parse failure", cfg.Server.Port)
	}
	if cfg.Scraper.StepTimeout != 20*time.Second {
		t.Errorf("step timeout = %v, want default", cfg.Scraper.StepTimeout)
	}
	if len(cfg.Target.ExcessTiers) != 8 {
		t.Errorf("excess tiers = %v, want defaults", cfg.Target.ExcessTiers)
	}
}
