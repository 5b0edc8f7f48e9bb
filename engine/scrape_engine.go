package engine

import (
	"context"

	"github.com/premscan/premscan/models"
	"github.com/premscan/premscan/scraper"
)

// ScrapeEngine answers quotes by driving the insurer's web form.
type ScrapeEngine struct {
	scraper *scraper.Scraper
}

// NewScrapeEngine wraps the live scraper as a QuoteEngine.
func NewScrapeEngine(s *scraper.Scraper) *ScrapeEngine {
	return &ScrapeEngine{scraper: s}
}

func (e *ScrapeEngine) Name() string { return "scrape" }

func (e *ScrapeEngine) Quote(ctx context.Context, req *models.QuoteRequest) *models.ScrapeResult {
	return e.scraper.ScrapeQuote(ctx, req)
}
