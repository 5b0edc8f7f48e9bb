package scraper

import (
	"strings"
	"testing"

	"github.com/premscan/premscan/models"
)

func TestFaultResultTagsCurrentStage(t *testing.T) {
	f := &flow{step: models.StepRegoLookup}
	f.enterStage(models.StepYourCar)
	f.enterStage(models.StepAboutYou)

	res := faultResult(f.step, "nil pointer dereference")

	if res.Success {
		t.Error("fault result marked successful")
	}
	if res.StepReached != models.StepAboutYou {
		t.Errorf("step = %q, want the stage being driven at fault time", res.StepReached)
	}
	if !strings.Contains(res.Error, "nil pointer dereference") {
		t.Errorf("error = %q, want the fault detail preserved", res.Error)
	}
}
