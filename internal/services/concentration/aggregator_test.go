package concentration

import (
	"encoding/json"
	"testing"

	"KankoLens/internal/domain/models"
)

func row(id, region string, counts map[models.Market]float64) *models.AllocationRecord {
	var total float64
	for _, v := range counts {
		total += v
	}
	return &models.AllocationRecord{
		FacilityID: id,
		Prefecture: "kyoto",
		RegionCode: region,
		Year:       2025,
		Month:      4,
		Counts:     counts,
		TotalCount: total,
		Active:     total > 0,
	}
}

func TestMonthRecordMarketView(t *testing.T) {
	rows := []*models.AllocationRecord{
		row("f1", "east", map[models.Market]float64{models.MarketChina: 80}),
		row("f2", "east", map[models.Market]float64{models.MarketChina: 20}),
		row("f3", "west", map[models.Market]float64{models.MarketChina: 0}),
	}
	rec := NewAggregator().MonthRecord(rows, models.MarketChina, 2025, 4)

	if rec.MarketTotal != 100 {
		t.Fatalf("market total = %v, want 100", rec.MarketTotal)
	}
	if rec.FacilityCountTotal != 3 || rec.FacilityCountActive != 2 {
		t.Fatalf("facility counts = %d/%d, want 3/2", rec.FacilityCountTotal, rec.FacilityCountActive)
	}
	if rec.FacilityHHI == nil || !almostEqual(*rec.FacilityHHI, 0.68, 1e-12) {
		t.Fatalf("facility HHI = %v, want 0.68", rec.FacilityHHI)
	}
	if rec.FacilityEntropyNorm == nil || !almostEqual(*rec.FacilityEntropyNorm, 0.722, 1e-3) {
		t.Fatalf("facility entropy norm = %v, want ~0.722", rec.FacilityEntropyNorm)
	}
	if rec.FacilityTop1Share == nil || !almostEqual(*rec.FacilityTop1Share, 0.8, 1e-12) {
		t.Fatalf("facility top1 = %v, want 0.8", rec.FacilityTop1Share)
	}
	if rec.MonthDate != "2025-04-01" {
		t.Fatalf("month date = %q", rec.MonthDate)
	}
}

func TestMonthRecordZeroTotalYieldsNullMetrics(t *testing.T) {
	rows := []*models.AllocationRecord{
		row("f1", "east", map[models.Market]float64{models.MarketChina: 0}),
	}
	rec := NewAggregator().MonthRecord(rows, models.MarketChina, 2025, 4)

	if rec.FacilityHHI != nil || rec.FacilityEntropy != nil || rec.FacilityTop1Share != nil {
		t.Fatal("zero-total metrics must be nil")
	}

	// nil metrics must serialize as JSON null, not 0
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["facility_hhi"] != nil {
		t.Fatalf("facility_hhi = %v, want null", decoded["facility_hhi"])
	}
}

func TestMonthRecordCrossMarketViews(t *testing.T) {
	rows := []*models.AllocationRecord{
		row("f1", "east", map[models.Market]float64{
			models.MarketChina: 50,
			models.MarketKorea: 30,
			models.MarketJapan: 120,
		}),
		row("f2", "west", map[models.Market]float64{
			models.MarketChina: 30,
			models.MarketKorea: 0,
			models.MarketJapan: 80,
		}),
	}
	rec := NewAggregator().MonthRecord(rows, models.MarketChina, 2025, 4)

	// foreign counts: china=80, korea=30 -> top market china
	if rec.ForeignTop1Market != "china" {
		t.Fatalf("foreign top market = %q, want china", rec.ForeignTop1Market)
	}
	if rec.ForeignHHI == nil {
		t.Fatal("foreign HHI must be set")
	}
	want := (80.0/110)*(80.0/110) + (30.0/110)*(30.0/110)
	if !almostEqual(*rec.ForeignHHI, want, 1e-12) {
		t.Fatalf("foreign HHI = %v, want %v", *rec.ForeignHHI, want)
	}
	// all view includes domestic 200 which dominates
	if rec.AllTop1Market != "japan" {
		t.Fatalf("all top market = %q, want japan", rec.AllTop1Market)
	}
}

func TestMonthRecordIdempotent(t *testing.T) {
	rows := []*models.AllocationRecord{
		row("f1", "east", map[models.Market]float64{models.MarketChina: 7, models.MarketJapan: 3}),
		row("f2", "west", map[models.Market]float64{models.MarketChina: 5, models.MarketKorea: 11}),
	}
	agg := NewAggregator()
	a, _ := json.Marshal(agg.MonthRecord(rows, models.MarketChina, 2025, 4))
	b, _ := json.Marshal(agg.MonthRecord(rows, models.MarketChina, 2025, 4))
	if string(a) != string(b) {
		t.Fatal("recomputation must be bit-identical")
	}
}

func TestRegionRecordFilters(t *testing.T) {
	rows := []*models.AllocationRecord{
		row("f1", "east", map[models.Market]float64{models.MarketChina: 40}),
		row("f2", "west", map[models.Market]float64{models.MarketChina: 60}),
	}
	rec := NewAggregator().RegionRecord(rows, "east", models.MarketChina, 2025, 4)
	if rec.MarketTotal != 40 {
		t.Fatalf("region market total = %v, want 40", rec.MarketTotal)
	}
	if rec.FacilityCountTotal != 1 {
		t.Fatalf("facility count = %d, want 1", rec.FacilityCountTotal)
	}
}

func TestFacilityShares(t *testing.T) {
	rows := []*models.AllocationRecord{
		row("f1", "east", map[models.Market]float64{models.MarketChina: 75}),
		row("f2", "west", map[models.Market]float64{models.MarketChina: 25}),
	}
	shares := NewAggregator().FacilityShares(rows, models.MarketChina)
	if len(shares) != 2 {
		t.Fatalf("len = %d, want 2", len(shares))
	}
	if !almostEqual(shares[0].Share, 0.75, 1e-12) || !almostEqual(shares[1].Share, 0.25, 1e-12) {
		t.Fatalf("shares = %v / %v", shares[0].Share, shares[1].Share)
	}
}
