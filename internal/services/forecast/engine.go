package forecast

import (
	"context"
	"fmt"
	"sort"

	"KankoLens/internal/domain/models"
	"KankoLens/internal/domain/repository"
	domsvc "KankoLens/internal/domain/service"
	"KankoLens/internal/services/concentration"
	applogger "KankoLens/pkg/logger"
	"KankoLens/pkg/util"
)

// Request is the normalized input for one forecast computation.
type Request struct {
	Prefecture      string
	Market          models.Market
	BaseYear        int // 0 resolves to the latest year holding BaseMonth
	BaseMonth       int
	HorizonMonths   int
	ScenarioIDs     []string
	CustomShockRate *float64
}

// Engine orchestrates the recursive multi-step projection. The loop is
// sequential per request (step N feeds step N+1); independent requests
// may run concurrently since the engine holds no per-request state.
type Engine struct {
	panel      repository.AllocationPanel
	scenarios  repository.ScenarioStore
	snapshots  *SnapshotBuilder
	trained    domsvc.GrowthPredictor // nil when no artifact was loaded
	skeleton   domsvc.GrowthPredictor
	maxHorizon int
	lagWindow  int
	defaults   []string
	log        *applogger.Logger
}

func NewEngine(
	panel repository.AllocationPanel,
	scenarios repository.ScenarioStore,
	snapshots *SnapshotBuilder,
	trained domsvc.GrowthPredictor,
	maxHorizon, lagWindow int,
	defaultScenarios []string,
	log *applogger.Logger,
) *Engine {
	if maxHorizon <= 0 {
		maxHorizon = 12
	}
	if lagWindow <= 0 {
		lagWindow = 3
	}
	return &Engine{
		panel:      panel,
		scenarios:  scenarios,
		snapshots:  snapshots,
		trained:    trained,
		skeleton:   NewSkeletonPredictor(),
		maxHorizon: maxHorizon,
		lagWindow:  lagWindow,
		defaults:   defaultScenarios,
		log:        log,
	}
}

// Forecast validates the request, seeds history from realized panel
// observations, then runs the baseline and each requested scenario as
// independent recursive projections over the horizon.
func (e *Engine) Forecast(ctx context.Context, req *Request) (*models.ForecastPayload, error) {
	if req.HorizonMonths <= 0 || req.HorizonMonths > e.maxHorizon {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrInvalidHorizon, req.HorizonMonths, e.maxHorizon)
	}

	selected, err := e.resolveScenarios(req.ScenarioIDs)
	if err != nil {
		return nil, err
	}

	baseYear := req.BaseYear
	if baseYear == 0 {
		baseYear, err = e.panel.LatestYearForMonth(ctx, req.Prefecture, req.BaseMonth)
		if err != nil {
			return nil, fmt.Errorf("resolve base year: %w", err)
		}
	}

	history, resolvedYear, resolvedMonth, err := e.seedHistory(ctx, req.Prefecture, req.Market, baseYear, req.BaseMonth)
	if err != nil {
		return nil, err
	}

	baseSnapshot, err := e.snapshots.Build(history, resolvedYear, resolvedMonth)
	if err != nil {
		return nil, err
	}

	predictor := e.skeleton
	if e.trained != nil {
		predictor = e.trained
	}

	payload := &models.ForecastPayload{
		ModelVersion:       predictor.Version(),
		TargetMetric:       models.TargetMetricGrowthRate,
		Prefecture:         req.Prefecture,
		Market:             req.Market,
		BaseYear:           resolvedYear,
		BaseMonth:          resolvedMonth,
		HorizonMonths:      req.HorizonMonths,
		BaselineGrowthRate: history.Last(),
		FeatureSnapshot:    *baseSnapshot,
		AvailableScenarios: e.scenarios.List(),
	}

	// Baseline run always carries zero shock.
	basePoints, fellBack, err := e.runScenario(history.Clone(), predictor, NewShockApplier(nil, nil), resolvedYear, resolvedMonth, req.HorizonMonths)
	if err != nil {
		return nil, err
	}
	payload.Scenarios = append(payload.Scenarios, models.ForecastScenario{
		ScenarioID: "base",
		Label:      "baseline",
		Note:       "baseline case without external shock",
		Points:     basePoints,
	})

	for _, sc := range selected {
		points, fb, err := e.runScenario(history.Clone(), predictor, NewShockApplier(sc, req.CustomShockRate), resolvedYear, resolvedMonth, req.HorizonMonths)
		if err != nil {
			return nil, err
		}
		fellBack = fellBack || fb
		payload.Scenarios = append(payload.Scenarios, models.ForecastScenario{
			ScenarioID: sc.ID,
			Label:      sc.Label,
			Note:       sc.Note,
			Points:     points,
		})
	}

	if fellBack {
		payload.ModelVersion = e.skeleton.Version()
	}
	return payload, nil
}

// runScenario executes the per-step loop for one scenario. Every step
// produces a point: a trained predictor failure downgrades the run to
// the skeleton instead of aborting mid-recursion.
func (e *Engine) runScenario(
	history *History,
	predictor domsvc.GrowthPredictor,
	shocks *ShockApplier,
	baseYear, baseMonth, horizon int,
) ([]models.ForecastPoint, bool, error) {
	points := make([]models.ForecastPoint, 0, horizon)
	fellBack := false

	for step := 1; step <= horizon; step++ {
		year, month := util.AddMonths(baseYear, baseMonth, step)

		snapshot, err := e.snapshots.Build(history, year, month)
		if err != nil {
			return nil, fellBack, err
		}

		raw, err := predictor.Predict(snapshot)
		if err != nil {
			if e.log != nil {
				e.log.Warn("trained predictor failed, using skeleton",
					applogger.Int("step", step), applogger.Error(err))
			}
			predictor = e.skeleton
			fellBack = true
			raw, _ = predictor.Predict(snapshot)
		}

		shock := shocks.At(step - 1)
		predicted := ClampGrowth(raw + shock)

		points = append(points, models.ForecastPoint{
			Step:                step,
			Year:                year,
			Month:               month,
			MonthDate:           util.MonthDate(year, month),
			PredictedGrowthRate: predicted,
			AppliedShockRate:    shock,
			SeasonalComponent:   snapshot.Seasonal,
		})
		history.Append(predicted)
	}
	return points, fellBack, nil
}

// resolveScenarios maps requested ids to definitions. Explicitly
// requested unknown ids fail fast; the configured defaults are only
// best-effort and skip anything the store does not know.
func (e *Engine) resolveScenarios(ids []string) ([]*models.ScenarioDefinition, error) {
	if len(ids) == 0 {
		var out []*models.ScenarioDefinition
		for _, id := range e.defaults {
			if sc, ok := e.scenarios.Get(id); ok {
				out = append(out, sc)
			}
		}
		return out, nil
	}

	out := make([]*models.ScenarioDefinition, 0, len(ids))
	for _, id := range ids {
		if id == "base" || id == "baseline" {
			continue // baseline is always included
		}
		sc, ok := e.scenarios.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, id)
		}
		out = append(out, sc)
	}
	return out, nil
}

// seedHistory builds the initial rolling buffer from realized monthly
// market totals, resolving the base period to the latest one at or
// before the requested month when the exact period is absent.
func (e *Engine) seedHistory(ctx context.Context, prefecture string, market models.Market, baseYear, baseMonth int) (*History, int, int, error) {
	totals, err := e.panel.MonthlyMarketTotals(ctx, prefecture, market)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("load market totals: %w", err)
	}
	if len(totals) == 0 {
		return nil, 0, 0, fmt.Errorf("%w: prefecture=%s market=%s", ErrInsufficientData, prefecture, market)
	}

	keys := make([]repository.MonthKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return util.MonthIndex(keys[i].Year, keys[i].Month) < util.MonthIndex(keys[j].Year, keys[j].Month)
	})

	// Resolve the base period: exact match, else latest at or before
	// the target, else the latest period overall.
	target := util.MonthIndex(baseYear, baseMonth)
	baseIdx := -1
	for i, k := range keys {
		if util.MonthIndex(k.Year, k.Month) <= target {
			baseIdx = i
		}
	}
	if baseIdx < 0 {
		baseIdx = len(keys) - 1
	}
	base := keys[baseIdx]

	// Growth observations between consecutive panel periods up to base,
	// oldest first, bounded by the lag window.
	var growths []float64
	for i := 1; i <= baseIdx; i++ {
		growths = append(growths, SafeGrowth(totals[keys[i]], totals[keys[i-1]]))
	}
	if len(growths) > e.lagWindow {
		growths = growths[len(growths)-e.lagWindow:]
	}

	prevTotal := 0.0
	if baseIdx > 0 {
		prevTotal = totals[keys[baseIdx-1]]
	}

	// Base-period facility rows feed the active count and the latest
	// known concentration metrics for the snapshot.
	active := 0
	var hhi, top1 float64
	if rows, err := e.panel.Rows(ctx, prefecture, base.Year, base.Month); err == nil {
		counts := make([]float64, 0, len(rows))
		for _, r := range rows {
			c := r.Count(market)
			if c > 0 {
				active++
			}
			counts = append(counts, c)
		}
		if shares, total := concentration.Shares(counts); total > 0 {
			hhi = concentration.HHI(shares)
			top1 = concentration.Top1(shares)
		}
	}

	return NewHistory(totals[base], prevTotal, active, hhi, top1, growths), base.Year, base.Month, nil
}
