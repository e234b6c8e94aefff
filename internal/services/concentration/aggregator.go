package concentration

import (
	"fmt"

	"KankoLens/internal/domain/models"
)

// Aggregator computes dependency concentration metrics from allocation
// rows. Pure computation, no state: the same input slice always yields
// the same record.
type Aggregator struct{}

func NewAggregator() *Aggregator { return &Aggregator{} }

func ptr(v float64) *float64 { return &v }

// MonthRecord computes the full metrics record for one period:
// the market-across-facilities view for the selected market plus the
// cross-market foreign/all views over the period's aggregate counts.
func (a *Aggregator) MonthRecord(rows []*models.AllocationRecord, market models.Market, year, month int) *models.DependencyMetricsRecord {
	rec := &models.DependencyMetricsRecord{
		Year:      year,
		Month:     month,
		MonthDate: fmt.Sprintf("%04d-%02d-01", year, month),
	}
	a.fillMarketView(rec, rows, market)
	a.fillCrossMarketViews(rec, rows)
	return rec
}

// RegionRecord restricts the input to one region code, then computes
// the same metrics over the subset.
func (a *Aggregator) RegionRecord(rows []*models.AllocationRecord, regionCode string, market models.Market, year, month int) *models.DependencyMetricsRecord {
	var filtered []*models.AllocationRecord
	for _, r := range rows {
		if r.RegionCode == regionCode {
			filtered = append(filtered, r)
		}
	}
	return a.MonthRecord(filtered, market, year, month)
}

// FacilityShares distributes one market's citywide total across
// facilities, for heatmap rendering. Facilities with zero count are
// included with share 0 when the total is positive.
func (a *Aggregator) FacilityShares(rows []*models.AllocationRecord, market models.Market) []models.FacilityShare {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.Count(market)
	}
	shares, total := Shares(values)

	out := make([]models.FacilityShare, 0, len(rows))
	for i, r := range rows {
		share := 0.0
		if total > 0 {
			share = shares[i]
		}
		out = append(out, models.FacilityShare{
			FacilityID:   r.FacilityID,
			FacilityName: r.FacilityName,
			Latitude:     r.Latitude,
			Longitude:    r.Longitude,
			Count:        values[i],
			Share:        share,
		})
	}
	return out
}

// fillMarketView computes the market-across-facilities granularity:
// each facility's count over the market's citywide total. Note the
// denominator differs structurally from the cross-market views.
func (a *Aggregator) fillMarketView(rec *models.DependencyMetricsRecord, rows []*models.AllocationRecord, market models.Market) {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.Count(market)
	}

	rec.FacilityCountTotal = len(rows)
	rec.FacilityCountActive = ActiveCount(values)

	shares, total := Shares(values)
	rec.MarketTotal = total
	if total <= 0 {
		// Zero-total periods keep nil metrics so the dashboard can
		// render the gap instead of a fabricated zero.
		return
	}

	entropy := Entropy(shares)
	rec.FacilityHHI = ptr(HHI(shares))
	rec.FacilityEntropy = ptr(entropy)
	rec.FacilityEntropyNorm = ptr(NormalizedEntropy(entropy, rec.FacilityCountActive))
	rec.FacilityTop1Share = ptr(Top1(shares))
	rec.FacilityTop10Share = ptr(TopK(shares, 10))
}

// fillCrossMarketViews computes concentration across market categories
// for the aggregated counts: foreign-only, and foreign plus domestic.
func (a *Aggregator) fillCrossMarketViews(rec *models.DependencyMetricsRecord, rows []*models.AllocationRecord) {
	foreignValues := make([]float64, len(models.ForeignMarkets))
	for i, m := range models.ForeignMarkets {
		for _, r := range rows {
			foreignValues[i] += r.Count(m)
		}
	}
	var domesticTotal float64
	for _, r := range rows {
		domesticTotal += r.Count(models.MarketJapan)
	}
	allValues := append(append([]float64{}, foreignValues...), domesticTotal)

	foreignShares, foreignTotal := Shares(foreignValues)
	if foreignTotal > 0 {
		entropy := Entropy(foreignShares)
		rec.ForeignHHI = ptr(HHI(foreignShares))
		rec.ForeignEntropy = ptr(entropy)
		rec.ForeignEntropyNorm = ptr(NormalizedEntropy(entropy, len(models.ForeignMarkets)))
		rec.ForeignTop1Share = ptr(Top1(foreignShares))
		if idx := Top1Index(foreignValues); idx >= 0 {
			rec.ForeignTop1Market = string(models.ForeignMarkets[idx])
		}
	}

	allShares, allTotal := Shares(allValues)
	if allTotal > 0 {
		entropy := Entropy(allShares)
		rec.AllHHI = ptr(HHI(allShares))
		rec.AllEntropy = ptr(entropy)
		rec.AllEntropyNorm = ptr(NormalizedEntropy(entropy, len(allValues)))
		rec.AllTop1Share = ptr(Top1(allShares))
		if idx := Top1Index(allValues); idx >= 0 {
			rec.AllTop1Market = string(models.AllMarkets[idx])
		}
	}
}
