package models

import "fmt"

// Model version tags distinguish trained output from the fallback estimator.
const (
	ModelVersionSkeleton = "skeleton-v0.1"
	ModelVersionTrained  = "linear-v1"
)

// TargetMetricGrowthRate is the only target currently exposed.
const TargetMetricGrowthRate = "guest_growth_rate"

// ScenarioDefinition maps a scenario id to its per-step shock schedule.
// Schedule entries are ordered by forecast step; when a requested horizon
// exceeds the schedule length, the last value is held constant.
type ScenarioDefinition struct {
	ID       string    `json:"event_id"`
	Label    string    `json:"event_name_ja"`
	Note     string    `json:"note"`
	Schedule []float64 `json:"-"`
}

// ShockAt returns the shock rate for a 0-based step index.
func (s *ScenarioDefinition) ShockAt(step int) float64 {
	if len(s.Schedule) == 0 {
		return 0
	}
	if step >= len(s.Schedule) {
		return s.Schedule[len(s.Schedule)-1]
	}
	if step < 0 {
		return s.Schedule[0]
	}
	return s.Schedule[step]
}

// ScenarioInfo is the listing view of a scenario, without its schedule.
type ScenarioInfo struct {
	ID    string `json:"event_id"`
	Label string `json:"event_name_ja"`
	Note  string `json:"note"`
}

// FeatureSnapshot is the fixed feature vector for one forecast step.
// Fields are enumerated explicitly so a trained artifact whose feature
// list differs from this set is rejected instead of silently rescored.
type FeatureSnapshot struct {
	CurrentTotal     float64 `json:"current_total"`
	PrevTotal        float64 `json:"prev_total"`
	ActiveFacilities int     `json:"active_facilities"`

	// Latest known facility concentration for the (prefecture, market),
	// held constant over the horizon: predicted totals carry no
	// per-facility split to recompute it from.
	FacilityHHI       float64 `json:"facility_hhi"`
	FacilityTop1Share float64 `json:"facility_top1_share"`

	BaselineGrowth float64 `json:"baseline_growth_rate"`
	TrendGrowth    float64 `json:"trend_growth_rate"`
	FXRate         float64 `json:"fx_rate"`
	Seasonal       float64 `json:"seasonal_component"`

	// Degraded marks a snapshot built with a carried-forward FX rate
	// because the exogenous series had no row for the target month.
	Degraded bool `json:"degraded"`
}

// FeatureNames returns the ordered names of the numeric feature vector.
// Order must match Vector.
func FeatureNames() []string {
	return []string{
		"current_total",
		"prev_total",
		"active_facilities",
		"facility_hhi",
		"facility_top1_share",
		"baseline_growth_rate",
		"trend_growth_rate",
		"fx_rate",
		"seasonal_component",
	}
}

// Vector flattens the snapshot into the model input order.
func (f *FeatureSnapshot) Vector() []float64 {
	return []float64{
		f.CurrentTotal,
		f.PrevTotal,
		float64(f.ActiveFacilities),
		f.FacilityHHI,
		f.FacilityTop1Share,
		f.BaselineGrowth,
		f.TrendGrowth,
		f.FXRate,
		f.Seasonal,
	}
}

// ForecastPoint is one projected month within a scenario run.
type ForecastPoint struct {
	Step                int     `json:"step"`
	Year                int     `json:"year"`
	Month               int     `json:"month"`
	MonthDate           string  `json:"month_date"`
	PredictedGrowthRate float64 `json:"predicted_growth_rate"`
	AppliedShockRate    float64 `json:"applied_shock_rate"`
	SeasonalComponent   float64 `json:"seasonal_component"`
}

// ForecastScenario is the projection for one scenario over the horizon.
type ForecastScenario struct {
	ScenarioID string          `json:"scenario_id"`
	Label      string          `json:"scenario_name_ja"`
	Note       string          `json:"note"`
	Points     []ForecastPoint `json:"points"`
}

// ForecastPayload is the complete response for one forecast request.
type ForecastPayload struct {
	ModelVersion       string             `json:"model_version"`
	TargetMetric       string             `json:"target_metric"`
	Prefecture         string             `json:"prefecture"`
	Market             Market             `json:"market"`
	BaseYear           int                `json:"base_year"`
	BaseMonth          int                `json:"base_month"`
	HorizonMonths      int                `json:"horizon_months"`
	BaselineGrowthRate float64            `json:"baseline_growth_rate"`
	FeatureSnapshot    FeatureSnapshot    `json:"feature_snapshot"`
	AvailableScenarios []ScenarioInfo     `json:"available_scenarios"`
	Scenarios          []ForecastScenario `json:"scenarios"`
}

// ModelArtifact is a trained linear growth model loaded from disk.
// Weights are ordered to match Features; Predict is a dot product plus
// intercept, which keeps artifacts portable as plain JSON.
type ModelArtifact struct {
	Version   string    `json:"version"`
	Features  []string  `json:"feature_cols"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	TrainedAt string    `json:"trained_at"`
}

// Validate checks artifact internal consistency.
func (m *ModelArtifact) Validate() error {
	if m.Version == "" {
		return fmt.Errorf("model artifact missing version")
	}
	if len(m.Features) == 0 {
		return fmt.Errorf("model artifact %s has no feature list", m.Version)
	}
	if len(m.Weights) != len(m.Features) {
		return fmt.Errorf("model artifact %s: %d weights for %d features", m.Version, len(m.Weights), len(m.Features))
	}
	return nil
}
