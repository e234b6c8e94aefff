package forecast

import (
	"KankoLens/internal/domain/models"
)

// ShockApplier resolves the shock rate for each forecast step.
// A custom rate, when set, applies uniformly and takes precedence over
// the named scenario's schedule. Shocks from different scenarios never
// combine: each scenario run gets its own applier.
type ShockApplier struct {
	scenario *models.ScenarioDefinition
	custom   *float64
}

// NewShockApplier builds an applier for one scenario run. Both
// arguments may be nil, which yields the zero-shock baseline.
func NewShockApplier(scenario *models.ScenarioDefinition, custom *float64) *ShockApplier {
	return &ShockApplier{scenario: scenario, custom: custom}
}

// At returns the shock rate for a 0-based step index.
func (s *ShockApplier) At(step int) float64 {
	if s.custom != nil {
		return *s.custom
	}
	if s.scenario == nil {
		return 0
	}
	return s.scenario.ShockAt(step)
}
