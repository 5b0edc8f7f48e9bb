package extract

import (
	"errors"
	"testing"
)

func TestRun_MarkerRule(t *testing.T) {
	text := "Your comprehensive quote\n$1,234.56 per year\nor $112.50 per month\nStandard excess: $850"

	res, err := Run(text, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AnnualPremium != 1234.56 {
		t.Errorf("annual = %v, want 1234.56", res.AnnualPremium)
	}
	if res.MonthlyPremium != 112.50 {
		t.Errorf("monthly = %v, want 112.50", res.MonthlyPremium)
	}
	if res.Excess != 850 {
		t.Errorf("excess = %v, want 850", res.Excess)
	}
}

func TestRun_MarkerBeatsLabel(t *testing.T) {
	// Rule 1 (marker adjacency) takes priority over rule 2 (labelled line).
	text := "Annual premium: $4,000\n$5,000 per year"

	res, err := Run(text, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AnnualPremium != 5000 {
		t.Errorf("annual = %v, want 5000 (marker rule should win)", res.AnnualPremium)
	}
}

func TestRun_LabelSameLine(t *testing.T) {
	res, err := Run("Yearly cost: $1,100.00\nsome other text", DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AnnualPremium != 1100 {
		t.Errorf("annual = %v, want 1100", res.AnnualPremium)
	}
}

func TestRun_LabelNextLine(t *testing.T) {
	// The form often renders label and figure as sibling elements, which
	// innerText turns into adjacent lines.
	text := "Annual premium\n$980\nMonthly premium\n$88.20"

	res, err := Run(text, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AnnualPremium != 980 {
		t.Errorf("annual = %v, want 980", res.AnnualPremium)
	}
	if res.MonthlyPremium != 88.20 {
		t.Errorf("monthly = %v, want 88.20", res.MonthlyPremium)
	}
}

func TestRun_RangeFallback(t *testing.T) {
	// No markers, no labels: first in-range amount wins per role.
	text := "Here is your price\n$4,500\nsomething $95\ndeductible $850"

	res, err := Run(text, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AnnualPremium != 4500 {
		t.Errorf("annual = %v, want 4500", res.AnnualPremium)
	}
	if res.MonthlyPremium != 95 {
		t.Errorf("monthly = %v, want 95", res.MonthlyPremium)
	}
	if res.Excess != 850 {
		t.Errorf("excess = %v, want 850", res.Excess)
	}
}

func TestRun_TierAmountDoublesAsAnnual(t *testing.T) {
	// A lone tier-valued amount is claimed by both the annual range and
	// the excess tiers. Known accuracy limitation of the range fallback.
	res, err := Run("Amount due $850", DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AnnualPremium != 850 || res.Excess != 850 {
		t.Errorf("annual = %v, excess = %v, want both 850", res.AnnualPremium, res.Excess)
	}
}

func TestRun_RawAmountsVerbatimInPageOrder(t *testing.T) {
	text := "$1,234.56 per year\nwas $1,400\nexcess $850"

	res, err := Run(text, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"$1,234.56", "$1,400", "$850"}
	if len(res.RawAmounts) != len(want) {
		t.Fatalf("raw amounts = %v, want %v", res.RawAmounts, want)
	}
	for i, w := range want {
		if res.RawAmounts[i] != w {
			t.Errorf("raw_amounts[%d] = %q, want %q", i, res.RawAmounts[i], w)
		}
	}
}

func TestRun_NoPremium(t *testing.T) {
	res, err := Run("Thanks! Our team will contact you shortly.", DefaultRules())
	if !errors.Is(err, ErrNoPremium) {
		t.Fatalf("err = %v, want ErrNoPremium", err)
	}
	if len(res.RawAmounts) != 0 {
		t.Errorf("raw amounts = %v, want empty", res.RawAmounts)
	}
}

func TestRun_OutOfRangeAmountsStillReported(t *testing.T) {
	// $25 is below every plausible range, so extraction fails, but the
	// amount must still surface for manual review.
	res, err := Run("Processing fee $25", DefaultRules())
	if !errors.Is(err, ErrNoPremium) {
		t.Fatalf("err = %v, want ErrNoPremium", err)
	}
	if len(res.RawAmounts) != 1 || res.RawAmounts[0] != "$25" {
		t.Errorf("raw amounts = %v, want [$25]", res.RawAmounts)
	}
}

func TestRun_MonthlyAnnualConsistency(t *testing.T) {
	// Real result pages carry both figures; monthly is annual/12 plus a
	// pay-by-month loading. Sanity check within a wide tolerance.
	text := "$1,200.00 per year\n$108.00 per month"

	res, err := Run(text, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ratio := res.MonthlyPremium / (res.AnnualPremium / 12)
	if ratio < 1.0 || ratio > 1.25 {
		t.Errorf("monthly/annual ratio = %v, want within [1.0, 1.25]", ratio)
	}
}

func TestRun_CustomRules(t *testing.T) {
	rules := DefaultRules()
	rules.AnnualMin = 10000
	rules.AnnualMax = 50000

	res, err := Run("Premium total $12,000", rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AnnualPremium != 12000 {
		t.Errorf("annual = %v, want 12000 with widened range", res.AnnualPremium)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"$1,234.56", 1234.56},
		{"$ 980", 980},
		{"$64.2", 64.2},
		{"garbage", 0},
	}
	for _, c := range cases {
		if got := ParseAmount(c.in); got != c.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTextFromHTML(t *testing.T) {
	html := `<html><head><title>q</title></head><body>
		<script>var x = "$9,999";</script>
		<div><span>Annual premium</span><span>$980</span></div>
		<p>Standard excess: $850</p>
	</body></html>`

	text := TextFromHTML(html)
	res, err := Run(text, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v (text: %q)", err, text)
	}
	if res.AnnualPremium != 980 {
		t.Errorf("annual = %v, want 980 (script amounts must be excluded)", res.AnnualPremium)
	}
	for _, raw := range res.RawAmounts {
		if raw == "$9,999" {
			t.Error("script content leaked into visible text")
		}
	}
}
