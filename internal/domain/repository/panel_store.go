package repository

import (
	"context"

	"KankoLens/internal/domain/models"
)

// Granularity selects the denominator structure for concentration metrics.
type Granularity string

const (
	GranularityFacility Granularity = "facility"
	GranularityRegion   Granularity = "region"
	GranularityMarket   Granularity = "market"
)

// MonthKey identifies one panel period.
type MonthKey struct {
	Year  int
	Month int
}

// AllocationPanel provides read-only access to the monthly allocation panel.
type AllocationPanel interface {
	// Rows returns all facility rows for one (prefecture, year, month).
	Rows(ctx context.Context, prefecture string, year, month int) ([]*models.AllocationRecord, error)
	// ListMonths returns every period with data for the prefecture, ascending.
	ListMonths(ctx context.Context, prefecture string) ([]MonthKey, error)
	// LatestYearForMonth resolves the most recent year holding data for the
	// given calendar month, or the latest period overall when none matches.
	LatestYearForMonth(ctx context.Context, prefecture string, month int) (int, error)
	// MonthlyMarketTotals returns the prefecture-wide total for one market
	// across all periods, ascending by period.
	MonthlyMarketTotals(ctx context.Context, prefecture string, market models.Market) (map[MonthKey]float64, error)
}

// ExogSeries supplies exogenous observations (FX rates) by period.
type ExogSeries interface {
	// RateFor returns the observation for the period and whether it existed.
	// Implementations return the last known value with ok=false when the
	// period is absent so callers can flag degraded snapshots.
	RateFor(year, month int) (rate float64, ok bool)
}

// ScenarioStore supplies shock-schedule definitions.
type ScenarioStore interface {
	Get(id string) (*models.ScenarioDefinition, bool)
	List() []models.ScenarioInfo
}
