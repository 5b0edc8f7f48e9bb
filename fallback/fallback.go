// Package fallback implements the static pricing calculator used when live
// scraping is disabled or fails. The rate table is deliberately crude: its
// job is a plausible placeholder figure, clearly marked as estimated, not a
// competitive premium.
package fallback

import (
	"math"

	"github.com/premscan/premscan/models"
)

// basePremium is the yearly starting point in dollars before loadings.
const basePremium = 920.0

// monthlyLoading is the surcharge the insurer applies for paying monthly.
const monthlyLoading = 1.08

// Calculator produces deterministic premium estimates from a static rate
// table. Safe for concurrent use; it holds no state.
type Calculator struct{}

// New creates a Calculator.
func New() *Calculator {
	return &Calculator{}
}

// Quote estimates a premium for the request. Always succeeds; the result is
// marked Estimated so callers can distinguish it from a scraped figure.
func (c *Calculator) Quote(req *models.QuoteRequest) *models.ScrapeResult {
	annual := basePremium

	annual *= ageLoading(req.DriverAge)
	annual *= claimsLoading(req.ClaimsLast5Years)
	annual *= yearLoading(req.Year)

	if req.IsMember {
		annual *= 0.95
	}
	if req.ParkingType == "street" {
		annual *= 1.10
	}
	if req.Purpose == "rideshare" {
		annual *= 1.30
	} else if req.Purpose == "business" {
		annual *= 1.15
	}

	annual = round2(annual)
	monthly := round2(annual / 12 * monthlyLoading)

	return &models.ScrapeResult{
		Success:        true,
		AnnualPremium:  annual,
		MonthlyPremium: monthly,
		Estimated:      true,
		StepReached:    models.StepQuoteResult,
	}
}

// ageLoading follows the usual age curve: steep under 25, flat through
// middle age, rising again past 70.
func ageLoading(age int) float64 {
	switch {
	case age <= 0:
		return 1.0
	case age < 21:
		return 1.95
	case age < 25:
		return 1.55
	case age < 30:
		return 1.20
	case age > 70:
		return 1.15
	default:
		return 1.0
	}
}

func claimsLoading(claims int) float64 {
	if claims <= 0 {
		return 1.0
	}
	if claims > 4 {
		claims = 4
	}
	return 1.0 + 0.25*float64(claims)
}

// yearLoading reflects vehicle value: newer cars cost more to insure, very
// old cars slightly less. Zero means registration mode, where the vehicle
// year is unknown at estimate time.
func yearLoading(year int) float64 {
	switch {
	case year == 0:
		return 1.0
	case year >= 2020:
		return 1.15
	case year < 2005:
		return 0.90
	default:
		return 1.0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
