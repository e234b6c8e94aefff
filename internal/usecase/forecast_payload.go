package usecase

import (
	"context"
	"time"

	"KankoLens/internal/domain/models"
	domrepo "KankoLens/internal/domain/repository"
	srvcache "KankoLens/internal/service/cache"
	"KankoLens/internal/services/forecast"
)

// ForecastUseCase runs scenario forecasts through the TTL cache so
// identical concurrent dashboard requests share one computation.
type ForecastUseCase struct {
	engine    *forecast.Engine
	cache     *srvcache.ForecastCache
	scenarios domrepo.ScenarioStore
}

func NewForecastUseCase(engine *forecast.Engine, cache *srvcache.ForecastCache, scenarios domrepo.ScenarioStore) *ForecastUseCase {
	if cache == nil {
		cache = srvcache.NewForecastCache(5*time.Minute, nil)
	}
	return &ForecastUseCase{engine: engine, cache: cache, scenarios: scenarios}
}

// GetForecast returns the cached payload for the request signature, or
// computes it once. Errors pass through uncached so a corrected retry
// is never served a stale failure. The computation runs detached from
// the caller's cancellation: the flight is shared across requests, so
// one disconnecting client must not fail every waiter on the same key.
func (uc *ForecastUseCase) GetForecast(ctx context.Context, req *forecast.Request) (*models.ForecastPayload, error) {
	detached := context.WithoutCancel(ctx)
	return uc.cache.GetOrCompute(srvcache.Key(req), func() (*models.ForecastPayload, error) {
		return uc.engine.Forecast(detached, req)
	})
}

// ListScenarios exposes the scenario catalog for the dashboard picker.
func (uc *ForecastUseCase) ListScenarios() []models.ScenarioInfo {
	return uc.scenarios.List()
}
