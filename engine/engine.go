package engine

import (
	"context"

	"github.com/premscan/premscan/models"
)

// QuoteEngine is the interface all quote producers implement.
type QuoteEngine interface {
	// Name returns the engine identifier ("scrape", "static").
	Name() string

	// Quote produces a result for the request. Engines never return an
	// error: every failure mode is represented inside the ScrapeResult.
	Quote(ctx context.Context, req *models.QuoteRequest) *models.ScrapeResult
}
