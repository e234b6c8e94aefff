package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"KankoLens/internal/domain/models"
	"KankoLens/internal/domain/repository"
	domsvc "KankoLens/internal/domain/service"
)

type fakePanel struct {
	totals map[repository.MonthKey]float64
	active int
}

func (f *fakePanel) Rows(_ context.Context, _ string, year, month int) ([]*models.AllocationRecord, error) {
	rows := make([]*models.AllocationRecord, 0, f.active)
	for i := 0; i < f.active; i++ {
		rows = append(rows, &models.AllocationRecord{
			FacilityID: "f",
			Year:       year,
			Month:      month,
			Counts:     map[models.Market]float64{models.MarketChina: 1},
		})
	}
	return rows, nil
}

func (f *fakePanel) ListMonths(_ context.Context, _ string) ([]repository.MonthKey, error) {
	keys := make([]repository.MonthKey, 0, len(f.totals))
	for k := range f.totals {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakePanel) LatestYearForMonth(_ context.Context, _ string, month int) (int, error) {
	best := 0
	for k := range f.totals {
		if k.Month == month && k.Year > best {
			best = k.Year
		}
	}
	if best == 0 {
		for k := range f.totals {
			if k.Year > best {
				best = k.Year
			}
		}
	}
	return best, nil
}

func (f *fakePanel) MonthlyMarketTotals(_ context.Context, _ string, _ models.Market) (map[repository.MonthKey]float64, error) {
	return f.totals, nil
}

type fakeScenarios struct {
	defs map[string]*models.ScenarioDefinition
}

func (f *fakeScenarios) Get(id string) (*models.ScenarioDefinition, bool) {
	sc, ok := f.defs[id]
	return sc, ok
}

func (f *fakeScenarios) List() []models.ScenarioInfo {
	out := make([]models.ScenarioInfo, 0, len(f.defs))
	for _, sc := range f.defs {
		out = append(out, models.ScenarioInfo{ID: sc.ID, Label: sc.Label, Note: sc.Note})
	}
	return out
}

type fakeExog struct {
	rates map[int]float64 // year*12 + month-1
	last  float64
}

func (f *fakeExog) RateFor(year, month int) (float64, bool) {
	if r, ok := f.rates[year*12+month-1]; ok {
		return r, true
	}
	return f.last, false
}

type failingPredictor struct{}

func (failingPredictor) Version() string                                { return "trained-test" }
func (failingPredictor) Predict(*models.FeatureSnapshot) (float64, error) { return 0, ErrFeatureMismatch }

func testPanel() *fakePanel {
	return &fakePanel{
		totals: map[repository.MonthKey]float64{
			{Year: 2025, Month: 1}: 100,
			{Year: 2025, Month: 2}: 110,
			{Year: 2025, Month: 3}: 121,
			{Year: 2025, Month: 4}: 115,
		},
		active: 5,
	}
}

func testEngine(trained domsvc.GrowthPredictor) *Engine {
	scenarios := &fakeScenarios{defs: map[string]*models.ScenarioDefinition{
		"disease": {ID: "disease", Label: "disease resurgence", Schedule: []float64{-0.3, -0.2}},
	}}
	exog := &fakeExog{rates: map[int]float64{}, last: 150}
	builder := NewSnapshotBuilder(exog, 3, 2)
	return NewEngine(testPanel(), scenarios, builder, trained, 12, 3, nil, nil)
}

func TestForecastInvalidHorizon(t *testing.T) {
	e := testEngine(nil)
	for _, horizon := range []int{0, -1, 13} {
		_, err := e.Forecast(context.Background(), &Request{
			Prefecture: "kyoto", Market: models.MarketChina, BaseMonth: 4, HorizonMonths: horizon,
		})
		if !errors.Is(err, ErrInvalidHorizon) {
			t.Fatalf("horizon %d: err = %v, want ErrInvalidHorizon", horizon, err)
		}
	}
}

func TestForecastUnknownScenario(t *testing.T) {
	e := testEngine(nil)
	_, err := e.Forecast(context.Background(), &Request{
		Prefecture: "kyoto", Market: models.MarketChina, BaseMonth: 4, HorizonMonths: 3,
		ScenarioIDs: []string{"meteor_strike"},
	})
	if !errors.Is(err, ErrUnknownScenario) {
		t.Fatalf("err = %v, want ErrUnknownScenario", err)
	}
}

func TestForecastBaselineShocksAreZero(t *testing.T) {
	e := testEngine(nil)
	payload, err := e.Forecast(context.Background(), &Request{
		Prefecture: "kyoto", Market: models.MarketChina, BaseMonth: 4, HorizonMonths: 3,
		ScenarioIDs: []string{"baseline"},
	})
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(payload.Scenarios) != 1 || payload.Scenarios[0].ScenarioID != "base" {
		t.Fatalf("scenarios = %+v, want single baseline", payload.Scenarios)
	}
	for _, p := range payload.Scenarios[0].Points {
		if p.AppliedShockRate != 0 {
			t.Fatalf("step %d shock = %v, want 0", p.Step, p.AppliedShockRate)
		}
	}
}

func TestForecastDeterministic(t *testing.T) {
	e := testEngine(nil)
	req := &Request{
		Prefecture: "kyoto", Market: models.MarketChina, BaseMonth: 4, HorizonMonths: 6,
		ScenarioIDs: []string{"disease"},
	}
	a, err := e.Forecast(context.Background(), req)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	b, err := e.Forecast(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Fatal("identical requests must yield identical payloads")
	}
}

func TestForecastScheduleExtension(t *testing.T) {
	e := testEngine(nil)
	payload, err := e.Forecast(context.Background(), &Request{
		Prefecture: "kyoto", Market: models.MarketChina, BaseMonth: 4, HorizonMonths: 5,
		ScenarioIDs: []string{"disease"},
	})
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	var run *models.ForecastScenario
	for i := range payload.Scenarios {
		if payload.Scenarios[i].ScenarioID == "disease" {
			run = &payload.Scenarios[i]
		}
	}
	if run == nil {
		t.Fatal("disease scenario missing from payload")
	}
	shocks := make([]float64, 0, 5)
	for _, p := range run.Points {
		shocks = append(shocks, p.AppliedShockRate)
	}
	want := []float64{-0.3, -0.2, -0.2, -0.2, -0.2}
	for i := range want {
		if shocks[i] != want[i] {
			t.Fatalf("shocks = %v, want %v", shocks, want)
		}
	}
}

func TestForecastEveryStepProducesPoint(t *testing.T) {
	e := testEngine(nil)
	payload, err := e.Forecast(context.Background(), &Request{
		Prefecture: "kyoto", Market: models.MarketChina, BaseMonth: 4, HorizonMonths: 12,
	})
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	for _, sc := range payload.Scenarios {
		if len(sc.Points) != 12 {
			t.Fatalf("scenario %s has %d points, want 12", sc.ScenarioID, len(sc.Points))
		}
		for i, p := range sc.Points {
			if p.Step != i+1 {
				t.Fatalf("point %d has step %d", i, p.Step)
			}
			if p.PredictedGrowthRate < -0.95 || p.PredictedGrowthRate > 2.0 {
				t.Fatalf("step %d growth %v outside clamp bounds", p.Step, p.PredictedGrowthRate)
			}
		}
	}
	// April 2025 base: first projected month is May 2025, last is April 2026.
	pts := payload.Scenarios[0].Points
	if pts[0].MonthDate != "2025-05-01" || pts[11].MonthDate != "2026-04-01" {
		t.Fatalf("month dates = %s .. %s", pts[0].MonthDate, pts[11].MonthDate)
	}
}

func TestForecastSnapshotCarriesBaseConcentration(t *testing.T) {
	// testPanel rows: 5 facilities with one guest each, so HHI and the
	// top-1 share are both 1/5.
	e := testEngine(nil)
	payload, err := e.Forecast(context.Background(), &Request{
		Prefecture: "kyoto", Market: models.MarketChina, BaseMonth: 4, HorizonMonths: 3,
	})
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if got := payload.FeatureSnapshot.FacilityHHI; math.Abs(got-0.2) > 1e-12 {
		t.Fatalf("facility HHI = %v, want 0.2", got)
	}
	if got := payload.FeatureSnapshot.FacilityTop1Share; math.Abs(got-0.2) > 1e-12 {
		t.Fatalf("facility top1 = %v, want 0.2", got)
	}
}

func TestForecastTrainedFailureFallsBackToSkeleton(t *testing.T) {
	e := testEngine(failingPredictor{})
	payload, err := e.Forecast(context.Background(), &Request{
		Prefecture: "kyoto", Market: models.MarketChina, BaseMonth: 4, HorizonMonths: 3,
	})
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if payload.ModelVersion != models.ModelVersionSkeleton {
		t.Fatalf("model version = %q, want skeleton tag", payload.ModelVersion)
	}
	if len(payload.Scenarios[0].Points) != 3 {
		t.Fatal("fallback run must still produce every point")
	}
}

func TestForecastInsufficientData(t *testing.T) {
	scenarios := &fakeScenarios{defs: map[string]*models.ScenarioDefinition{}}
	builder := NewSnapshotBuilder(&fakeExog{}, 3, 2)
	e := NewEngine(&fakePanel{totals: map[repository.MonthKey]float64{}}, scenarios, builder, nil, 12, 3, nil, nil)

	_, err := e.Forecast(context.Background(), &Request{
		Prefecture: "kyoto", Market: models.MarketChina, BaseMonth: 4, HorizonMonths: 3,
	})
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestForecastMissingHistory(t *testing.T) {
	scenarios := &fakeScenarios{defs: map[string]*models.ScenarioDefinition{}}
	builder := NewSnapshotBuilder(&fakeExog{}, 3, 2)
	panel := &fakePanel{totals: map[repository.MonthKey]float64{
		{Year: 2025, Month: 4}: 100, // one period, zero growth observations
	}}
	e := NewEngine(panel, scenarios, builder, nil, 12, 3, nil, nil)

	_, err := e.Forecast(context.Background(), &Request{
		Prefecture: "kyoto", Market: models.MarketChina, BaseMonth: 4, HorizonMonths: 3,
	})
	if !errors.Is(err, ErrMissingHistory) {
		t.Fatalf("err = %v, want ErrMissingHistory", err)
	}
}
