package scraper

import (
	"testing"

	"github.com/premscan/premscan/models"
)

func TestIsTransientBanner(t *testing.T) {
	transient := []string{
		"A system error has occurred. Please try again later.",
		"We're experiencing TECHNICAL difficulties",
		"Sorry, something went wrong",
		"The service is temporarily unavailable",
	}
	for _, text := range transient {
		if !isTransientBanner(text) {
			t.Errorf("expected transient classification for %q", text)
		}
	}

	permanent := []string{
		"We couldn't verify the address you entered",
		"Please enter a valid postcode",
		"",
	}
	for _, text := range permanent {
		if isTransientBanner(text) {
			t.Errorf("expected non-transient classification for %q", text)
		}
	}
}

func TestClassifyOutcome(t *testing.T) {
	if action, serr := classifyOutcome(outcomeResult, "", false); action != actionExtract || serr != nil {
		t.Errorf("result outcome: action = %v, err = %v", action, serr)
	}

	action, serr := classifyOutcome(outcomeBanner, "Please enter a valid postcode", false)
	if action != actionFail || serr == nil || serr.Code != models.ErrCodeFieldValidation {
		t.Errorf("non-transient banner: action = %v, err = %v", action, serr)
	}

	if action, serr := classifyOutcome(outcomeBanner, "A system error has occurred", false); action != actionRecover || serr != nil {
		t.Errorf("first transient banner: action = %v, err = %v", action, serr)
	}

	action, serr = classifyOutcome(outcomeTimeout, "", false)
	if action != actionFail || serr == nil || serr.Step != models.StepAboutYou {
		t.Errorf("timeout: action = %v, err = %v", action, serr)
	}
}

func TestClassifyOutcome_SingleRecoveryCycle(t *testing.T) {
	// Two transient banners in one call: the first buys the recovery cycle,
	// the second must terminate as a reported backend failure.
	banner := "We're experiencing technical difficulties. Please try again."
	recovered := false

	action, serr := classifyOutcome(outcomeBanner, banner, recovered)
	if action != actionRecover || serr != nil {
		t.Fatalf("first banner: action = %v, err = %v", action, serr)
	}
	recovered = true

	action, serr = classifyOutcome(outcomeBanner, banner, recovered)
	if action != actionFail {
		t.Fatal("second banner must not trigger another recovery cycle")
	}
	if serr == nil || serr.Code != models.ErrCodeTransientBackend || serr.Step != models.StepAboutYou {
		t.Errorf("second banner: err = %v", serr)
	}
}

func TestClaimsCandidates(t *testing.T) {
	cases := []struct {
		n     int
		first string
		count int
	}{
		{0, "0", 3},
		{1, "1", 1},
		{2, "2", 1},
		{3, "3", 3},
		{5, "5", 3},
	}
	for _, c := range cases {
		got := claimsCandidates(c.n)
		if len(got) != c.count || got[0] != c.first {
			t.Errorf("claimsCandidates(%d) = %v", c.n, got)
		}
	}
}

func TestClaimsCandidates_MatchFormLabels(t *testing.T) {
	// The form labels its claims select "None", "1", "2", "3+".
	formOptions := []string{"Please select", "None", "1", "2", "3+"}

	for n, want := range map[int]string{0: "None", 1: "1", 2: "2", 4: "3+"} {
		var match string
		for _, cand := range claimsCandidates(n) {
			if match = matchOption(cand, formOptions); match != "" {
				break
			}
		}
		if match != want {
			t.Errorf("claims %d matched %q, want %q", n, match, want)
		}
	}
}
