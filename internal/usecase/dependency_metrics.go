package usecase

import (
	"context"
	"fmt"
	"sort"

	"KankoLens/internal/domain/models"
	domrepo "KankoLens/internal/domain/repository"
	"KankoLens/internal/services/concentration"
)

// DependencyUseCase builds dependency metrics payloads from the
// allocation panel.
type DependencyUseCase struct {
	panel domrepo.AllocationPanel
	agg   *concentration.Aggregator
}

func NewDependencyUseCase(panel domrepo.AllocationPanel) *DependencyUseCase {
	return &DependencyUseCase{panel: panel, agg: concentration.NewAggregator()}
}

type GetDependencyParams struct {
	Prefecture string
	Month      int
	Year       int // 0 resolves to the latest year holding Month
	Market     models.Market
	Region     string // optional ward filter, empty means prefecture-wide
}

// GetDependency computes the full metrics series for the prefecture
// and the selected-period view. When the exact (year, month) has no
// data, the latest available period is selected instead so the
// dashboard still renders.
func (uc *DependencyUseCase) GetDependency(ctx context.Context, p GetDependencyParams) (*models.DependencyPayload, error) {
	months, err := uc.panel.ListMonths(ctx, p.Prefecture)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	if len(months) == 0 {
		return nil, fmt.Errorf("no allocation data for prefecture %s", p.Prefecture)
	}

	series := make([]models.DependencyMetricsRecord, 0, len(months))
	selectedIdx := -1
	for i, mk := range months {
		rows, err := uc.panel.Rows(ctx, p.Prefecture, mk.Year, mk.Month)
		if err != nil {
			return nil, fmt.Errorf("panel rows %04d-%02d: %w", mk.Year, mk.Month, err)
		}
		if p.Region != "" {
			series = append(series, *uc.agg.RegionRecord(rows, p.Region, p.Market, mk.Year, mk.Month))
		} else {
			series = append(series, *uc.agg.MonthRecord(rows, p.Market, mk.Year, mk.Month))
		}

		if p.Year != 0 {
			if mk.Year == p.Year && mk.Month == p.Month {
				selectedIdx = i
			}
		} else if mk.Month == p.Month {
			// keep the latest year holding this calendar month
			selectedIdx = i
		}
	}
	if selectedIdx < 0 {
		selectedIdx = len(series) - 1
	}

	current := series[selectedIdx]
	return &models.DependencyPayload{
		CurrentYear: current.Year,
		Current: models.DependencyCurrent{
			DependencyMetricsRecord: current,
			SelectedMarket:          p.Market,
		},
		Series: series,
	}, nil
}

// GetMonthRecord computes metrics for a single period. Year 0 resolves
// to the latest year holding the calendar month.
func (uc *DependencyUseCase) GetMonthRecord(ctx context.Context, prefecture string, market models.Market, year, month int) (*models.DependencyMetricsRecord, error) {
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
	return uc.agg.MonthRecord(rows, market, year, month), nil
}

// GetFacilityPoints returns per-facility shares of one market's
// citywide total for the selected period, for heatmap rendering.
func (uc *DependencyUseCase) GetFacilityPoints(ctx context.Context, p GetDependencyParams, limit int) ([]models.FacilityShare, error) {
	year := p.Year
	if year == 0 {
		var err error
		year, err = uc.panel.LatestYearForMonth(ctx, p.Prefecture, p.Month)
		if err != nil {
			return nil, fmt.Errorf("resolve year: %w", err)
		}
	}

	rows, err := uc.panel.Rows(ctx, p.Prefecture, year, p.Month)
	if err != nil {
		return nil, fmt.Errorf("panel rows: %w", err)
	}

	points := uc.agg.FacilityShares(rows, p.Market)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Share > points[j].Share })
	if limit > 0 && len(points) > limit {
		points = points[:limit]
	}
	return points, nil
}
