// Package extract parses premium, excess and other currency amounts out of
// the quote form's final page text. The page has no stable contract, so
// everything here is ordered heuristics over free text; the rule set is a
// value so thresholds and label patterns can be tuned without touching the
// flow logic.
package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// amountRe matches a currency amount like "$1,234.56", "$ 980" or "$64.20".
var amountRe = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d{1,2})?`)

// Rules drives extraction. First matching rule wins independently for each
// of {annual, monthly}:
//
//  1. An amount immediately followed by a period marker ("$980 per year").
//  2. A line labelled with a premium phrase ("Annual premium: $980"), with
//     the amount on the same line or at the start of the next.
//  3. Fallback: the first amount in the plausible numeric range, page order.
//
// The excess is taken from an "excess"-labelled line, or failing that the
// first amount equal to one of the form's fixed excess tiers.
type Rules struct {
	AnnualMarkers  []string
	MonthlyMarkers []string
	AnnualLabels   []string
	MonthlyLabels  []string
	ExcessLabels   []string

	AnnualMin, AnnualMax   float64
	MonthlyMin, MonthlyMax float64
	ExcessTiers            []float64
}

// DefaultRules returns the conventions observed on the target form.
func DefaultRules() Rules {
	return Rules{
		AnnualMarkers: []string{
			"per year", "per annum", "p.a.", "p/a", "/yr", "/year",
			"a year", "annually", "yearly",
		},
		MonthlyMarkers: []string{
			"per month", "per mth", "/mo", "/month", "a month", "monthly",
		},
		AnnualLabels: []string{
			"annual premium", "yearly premium", "annual price",
			"yearly price", "annual cost", "yearly cost", "premium per year",
		},
		MonthlyLabels: []string{
			"monthly premium", "monthly price", "monthly cost",
			"premium per month", "monthly instalment", "monthly installment",
		},
		ExcessLabels: []string{"excess"},
		AnnualMin:    300,
		AnnualMax:    9000,
		MonthlyMin:   30,
		MonthlyMax:   800,
		ExcessTiers:  []float64{500, 600, 700, 850, 1000, 1250, 1600, 2000},
	}
}

// Result is the extraction outcome. RawAmounts always holds every currency
// string found, verbatim and in page order, even when no premium resolved.
type Result struct {
	AnnualPremium  float64
	MonthlyPremium float64
	Excess         float64
	RawAmounts     []string
}

// ErrNoPremium reports that no rule resolved an annual or monthly premium.
var ErrNoPremium = errors.New("could not extract premium from page text")

// Run extracts amounts from visible page text (newline-separated, as
// produced by document.body.innerText or TextFromHTML).
func Run(text string, rules Rules) (*Result, error) {
	res := &Result{
		RawAmounts: amountRe.FindAllString(text, -1),
	}

	lower := strings.ToLower(text)
	lines := splitLines(text)

	// Rule 1: marker adjacency.
	res.AnnualPremium = byMarker(lower, rules.AnnualMarkers)
	res.MonthlyPremium = byMarker(lower, rules.MonthlyMarkers)

	// Rule 2: labelled lines.
	if res.AnnualPremium == 0 {
		res.AnnualPremium = byLabel(lines, rules.AnnualLabels)
	}
	if res.MonthlyPremium == 0 {
		res.MonthlyPremium = byLabel(lines, rules.MonthlyLabels)
	}

	// Excess: labelled line first, then tier equality.
	res.Excess = byLabel(lines, rules.ExcessLabels)
	if res.Excess != 0 && !isTier(res.Excess, rules.ExcessTiers) {
		// A labelled "excess" amount that is not one of the form's fixed
		// tiers is likely a different figure (e.g. an age loading); ignore.
		res.Excess = 0
	}

	// Rule 4: range fallback, first candidate in page order. Known
	// limitation: on unusual layouts this can pick up a discount or the
	// excess instead of the premium.
	for _, raw := range res.RawAmounts {
		v := ParseAmount(raw)
		if v == 0 {
			continue
		}
		if res.AnnualPremium == 0 && v >= rules.AnnualMin && v <= rules.AnnualMax {
			res.AnnualPremium = v
		}
		if res.MonthlyPremium == 0 && v >= rules.MonthlyMin && v <= rules.MonthlyMax {
			res.MonthlyPremium = v
		}
		if res.Excess == 0 && isTier(v, rules.ExcessTiers) {
			res.Excess = v
		}
	}

	if res.AnnualPremium == 0 && res.MonthlyPremium == 0 {
		return res, ErrNoPremium
	}
	return res, nil
}

// byMarker finds the first amount immediately followed by one of the period
// markers. Text must already be lowercased.
func byMarker(lower string, markers []string) float64 {
	for _, loc := range amountRe.FindAllStringIndex(lower, -1) {
		tail := lower[loc[1]:]
		tail = strings.TrimLeft(tail, " \t*")
		for _, m := range markers {
			if strings.HasPrefix(tail, m) {
				return ParseAmount(lower[loc[0]:loc[1]])
			}
		}
	}
	return 0
}

// byLabel finds a line carrying one of the labels and takes the amount on
// that line, or the first amount at the start of the following line (the
// form often renders label and figure as sibling elements).
func byLabel(lines []string, labels []string) float64 {
	for i, line := range lines {
		ll := strings.ToLower(line)
		matched := false
		for _, label := range labels {
			if strings.Contains(ll, label) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if raw := amountRe.FindString(line); raw != "" {
			return ParseAmount(raw)
		}
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if loc := amountRe.FindStringIndex(next); loc != nil && loc[0] == 0 {
				return ParseAmount(next[loc[0]:loc[1]])
			}
		}
	}
	return 0
}

// ParseAmount converts a matched currency string to its numeric value.
// Returns 0 when the string does not parse.
func ParseAmount(raw string) float64 {
	s := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func isTier(v float64, tiers []float64) bool {
	for _, t := range tiers {
		if v == t {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
