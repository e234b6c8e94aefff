package forecast

import (
	"testing"

	"KankoLens/internal/domain/models"
)

func TestShockScheduleHoldsLastValue(t *testing.T) {
	sc := &models.ScenarioDefinition{ID: "ev", Schedule: []float64{-0.1, -0.2}}
	a := NewShockApplier(sc, nil)

	want := []float64{-0.1, -0.2, -0.2, -0.2, -0.2}
	for step, w := range want {
		if got := a.At(step); got != w {
			t.Fatalf("shock at step %d = %v, want %v", step, got, w)
		}
	}
}

func TestShockCustomRateTakesPrecedence(t *testing.T) {
	sc := &models.ScenarioDefinition{ID: "ev", Schedule: []float64{-0.5}}
	custom := 0.07
	a := NewShockApplier(sc, &custom)

	for step := 0; step < 4; step++ {
		if got := a.At(step); got != 0.07 {
			t.Fatalf("shock at step %d = %v, want custom 0.07", step, got)
		}
	}
}

func TestShockBaselineIsZero(t *testing.T) {
	a := NewShockApplier(nil, nil)
	for step := 0; step < 3; step++ {
		if got := a.At(step); got != 0 {
			t.Fatalf("baseline shock at step %d = %v, want 0", step, got)
		}
	}
}

func TestShockEmptySchedule(t *testing.T) {
	a := NewShockApplier(&models.ScenarioDefinition{ID: "ev"}, nil)
	if got := a.At(0); got != 0 {
		t.Fatalf("empty schedule shock = %v, want 0", got)
	}
}
