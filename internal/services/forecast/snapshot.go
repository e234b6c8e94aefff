package forecast

import (
	"fmt"

	"KankoLens/internal/domain/models"
	"KankoLens/internal/domain/repository"
)

// SnapshotBuilder assembles the fixed feature vector for one
// (prefecture, market, target month) from the rolling history and the
// exogenous FX series.
type SnapshotBuilder struct {
	exog         repository.ExogSeries
	lagWindow    int
	minLagWindow int
}

func NewSnapshotBuilder(exog repository.ExogSeries, lagWindow, minLagWindow int) *SnapshotBuilder {
	if lagWindow <= 0 {
		lagWindow = 3
	}
	if minLagWindow <= 0 {
		minLagWindow = 1
	}
	return &SnapshotBuilder{exog: exog, lagWindow: lagWindow, minLagWindow: minLagWindow}
}

// Build returns the snapshot for the target month. When fewer lag
// observations exist than the minimum window, it fails with
// ErrMissingHistory so the caller can shorten the horizon or abort.
// A missing FX observation falls back to the last known value and
// marks the snapshot degraded instead of failing.
func (b *SnapshotBuilder) Build(h *History, year, month int) (*models.FeatureSnapshot, error) {
	if h.Len() < b.minLagWindow {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrMissingHistory, h.Len(), b.minLagWindow)
	}

	var (
		fx float64
		ok bool
	)
	if b.exog != nil {
		fx, ok = b.exog.RateFor(year, month)
	}

	return &models.FeatureSnapshot{
		CurrentTotal:      h.currentTotal,
		PrevTotal:         h.prevTotal,
		ActiveFacilities:  h.activeFacilities,
		FacilityHHI:       h.hhi,
		FacilityTop1Share: h.top1,
		BaselineGrowth:    h.Last(),
		TrendGrowth:       RollMean(h.Growths(), b.lagWindow),
		FXRate:            fx,
		Seasonal:          SeasonalComponent(month),
		Degraded:          !ok,
	}, nil
}
