package engine

import (
	"context"

	"github.com/premscan/premscan/fallback"
	"github.com/premscan/premscan/models"
)

// StaticEngine answers quotes from the static rate table.
type StaticEngine struct {
	calc *fallback.Calculator
}

// NewStaticEngine wraps the fallback calculator as a QuoteEngine.
func NewStaticEngine(calc *fallback.Calculator) *StaticEngine {
	return &StaticEngine{calc: calc}
}

func (e *StaticEngine) Name() string { return "static" }

func (e *StaticEngine) Quote(_ context.Context, req *models.QuoteRequest) *models.ScrapeResult {
	return e.calc.Quote(req)
}
