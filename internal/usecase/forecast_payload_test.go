package usecase

import (
	"context"
	"testing"

	"KankoLens/internal/domain/models"
	domrepo "KankoLens/internal/domain/repository"
	"KankoLens/internal/services/forecast"
)

// cancelAwarePanel fails panel reads once the request context is done,
// the way a real ClickHouse query would.
type cancelAwarePanel struct{ *fakePanel }

func (p *cancelAwarePanel) MonthlyMarketTotals(ctx context.Context, prefecture string, market models.Market) (map[domrepo.MonthKey]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.fakePanel.MonthlyMarketTotals(ctx, prefecture, market)
}

func (p *cancelAwarePanel) Rows(ctx context.Context, prefecture string, year, month int) ([]*models.AllocationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.fakePanel.Rows(ctx, prefecture, year, month)
}

type emptyScenarios struct{}

func (emptyScenarios) Get(string) (*models.ScenarioDefinition, bool) { return nil, false }
func (emptyScenarios) List() []models.ScenarioInfo                   { return nil }

func TestGetForecastSurvivesCallerCancellation(t *testing.T) {
	panel := &cancelAwarePanel{fakePanel: testPanel()}
	builder := forecast.NewSnapshotBuilder(nil, 3, 1)
	engine := forecast.NewEngine(panel, emptyScenarios{}, builder, nil, 12, 3, nil, nil)
	uc := NewForecastUseCase(engine, nil, emptyScenarios{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payload, err := uc.GetForecast(ctx, &forecast.Request{
		Prefecture:    "kyoto",
		Market:        models.MarketChina,
		BaseMonth:     5,
		HorizonMonths: 3,
	})
	if err != nil {
		t.Fatalf("GetForecast after caller disconnect: %v", err)
	}
	if len(payload.Scenarios) != 1 || len(payload.Scenarios[0].Points) != 3 {
		t.Fatalf("scenarios = %+v, want one baseline run with 3 points", payload.Scenarios)
	}
}
