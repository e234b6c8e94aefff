package usecase

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"KankoLens/internal/domain/models"
)

// SummaryResult holds per-market metrics for one period, computed in
// parallel across markets.
type SummaryResult struct {
	Prefecture string                                            `json:"prefecture"`
	Year       int                                               `json:"year"`
	Month      int                                               `json:"month"`
	Markets    map[models.Market]*models.DependencyMetricsRecord `json:"markets"`
}

// GetSummary fans out one metrics computation per market. Markets are
// independent keys, so the aggregations run concurrently.
func (uc *DependencyUseCase) GetSummary(ctx context.Context, prefecture string, year, month int) (*SummaryResult, error) {
	if year == 0 {
		var err error
		year, err = uc.panel.LatestYearForMonth(ctx, prefecture, month)
		if err != nil {
			return nil, fmt.Errorf("resolve year: %w", err)
		}
	}

	rows, err := uc.panel.Rows(ctx, prefecture, year, month)
	if err != nil {
		return nil, fmt.Errorf("panel rows: %w", err)
	}

	out := &SummaryResult{
		Prefecture: prefecture,
		Year:       year,
		Month:      month,
		Markets:    make(map[models.Market]*models.DependencyMetricsRecord, len(models.AllMarkets)),
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	for _, market := range models.AllMarkets {
		market := market
		g.Go(func() error {
			rec := uc.agg.MonthRecord(rows, market, year, month)
			mu.Lock()
			out.Markets[market] = rec
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
