package usecase

import (
	"context"
	"math"
	"testing"

	"KankoLens/internal/domain/models"
	domrepo "KankoLens/internal/domain/repository"
)

func almostEq(a, b float64) bool { return math.Abs(a-b) <= 1e-12 }

type fakePanel struct {
	months []domrepo.MonthKey
	rows   map[domrepo.MonthKey][]*models.AllocationRecord
}

func (p *fakePanel) Rows(_ context.Context, _ string, year, month int) ([]*models.AllocationRecord, error) {
	return p.rows[domrepo.MonthKey{Year: year, Month: month}], nil
}

func (p *fakePanel) ListMonths(_ context.Context, _ string) ([]domrepo.MonthKey, error) {
	return p.months, nil
}

func (p *fakePanel) LatestYearForMonth(_ context.Context, _ string, month int) (int, error) {
	latest := 0
	for _, mk := range p.months {
		if mk.Month == month && mk.Year > latest {
			latest = mk.Year
		}
	}
	if latest == 0 {
		latest = p.months[len(p.months)-1].Year
	}
	return latest, nil
}

func (p *fakePanel) MonthlyMarketTotals(_ context.Context, _ string, market models.Market) (map[domrepo.MonthKey]float64, error) {
	out := make(map[domrepo.MonthKey]float64)
	for mk, rows := range p.rows {
		for _, r := range rows {
			out[mk] += r.Count(market)
		}
	}
	return out, nil
}

func row(id, region string, year, month int, china, japan float64) *models.AllocationRecord {
	total := china + japan
	return &models.AllocationRecord{
		FacilityID: id,
		Prefecture: "kyoto",
		RegionCode: region,
		Year:       year,
		Month:      month,
		Counts: map[models.Market]float64{
			models.MarketChina: china,
			models.MarketJapan: japan,
		},
		TotalCount: total,
		Active:     total > 0,
	}
}

func testPanel() *fakePanel {
	apr := domrepo.MonthKey{Year: 2025, Month: 4}
	may := domrepo.MonthKey{Year: 2025, Month: 5}
	return &fakePanel{
		months: []domrepo.MonthKey{apr, may},
		rows: map[domrepo.MonthKey][]*models.AllocationRecord{
			apr: {
				row("f1", "higashiyama", 2025, 4, 80, 100),
				row("f2", "arashiyama", 2025, 4, 20, 50),
			},
			may: {
				row("f1", "higashiyama", 2025, 5, 90, 110),
				row("f2", "arashiyama", 2025, 5, 30, 40),
			},
		},
	}
}

func TestGetDependencySeriesAndSelection(t *testing.T) {
	uc := NewDependencyUseCase(testPanel())

	payload, err := uc.GetDependency(context.Background(), GetDependencyParams{
		Prefecture: "kyoto",
		Month:      4,
		Market:     models.MarketChina,
	})
	if err != nil {
		t.Fatalf("GetDependency: %v", err)
	}
	if len(payload.Series) != 2 {
		t.Fatalf("series length = %d, want 2", len(payload.Series))
	}
	if payload.Current.Year != 2025 || payload.Current.Month != 4 {
		t.Fatalf("selected period = %04d-%02d, want 2025-04", payload.Current.Year, payload.Current.Month)
	}
	if payload.Current.MarketTotal != 100 {
		t.Fatalf("market total = %v, want 100", payload.Current.MarketTotal)
	}
	// {80, 20} across facilities: HHI 0.68, top1 0.8
	if payload.Current.FacilityHHI == nil {
		t.Fatal("facility HHI must be set for a non-zero total")
	}
	if got := *payload.Current.FacilityHHI; !almostEq(got, 0.68) {
		t.Fatalf("facility HHI = %v, want 0.68", got)
	}
	if payload.Current.FacilityTop1Share == nil {
		t.Fatal("facility top1 must be set for a non-zero total")
	}
	if got := *payload.Current.FacilityTop1Share; !almostEq(got, 0.8) {
		t.Fatalf("facility top1 = %v, want 0.8", got)
	}
}

func TestGetDependencyFallsBackToLatestPeriod(t *testing.T) {
	uc := NewDependencyUseCase(testPanel())

	payload, err := uc.GetDependency(context.Background(), GetDependencyParams{
		Prefecture: "kyoto",
		Month:      12, // no December data
		Market:     models.MarketChina,
	})
	if err != nil {
		t.Fatalf("GetDependency: %v", err)
	}
	if payload.Current.Year != 2025 || payload.Current.Month != 5 {
		t.Fatalf("fallback period = %04d-%02d, want 2025-05", payload.Current.Year, payload.Current.Month)
	}
}

func TestGetDependencyRegionFilter(t *testing.T) {
	uc := NewDependencyUseCase(testPanel())

	payload, err := uc.GetDependency(context.Background(), GetDependencyParams{
		Prefecture: "kyoto",
		Month:      4,
		Market:     models.MarketChina,
		Region:     "higashiyama",
	})
	if err != nil {
		t.Fatalf("GetDependency: %v", err)
	}
	if payload.Current.MarketTotal != 80 {
		t.Fatalf("region market total = %v, want 80", payload.Current.MarketTotal)
	}
	if payload.Current.FacilityCountTotal != 1 {
		t.Fatalf("region facility count = %d, want 1", payload.Current.FacilityCountTotal)
	}
	// single active facility: normalized entropy defined as 0
	if payload.Current.FacilityEntropyNorm == nil || *payload.Current.FacilityEntropyNorm != 0 {
		t.Fatalf("region entropy norm = %v, want 0", payload.Current.FacilityEntropyNorm)
	}
}

func TestGetSummaryAllMarkets(t *testing.T) {
	uc := NewDependencyUseCase(testPanel())

	res, err := uc.GetSummary(context.Background(), "kyoto", 2025, 4)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if len(res.Markets) != len(models.AllMarkets) {
		t.Fatalf("markets = %d, want %d", len(res.Markets), len(models.AllMarkets))
	}
	china := res.Markets[models.MarketChina]
	japan := res.Markets[models.MarketJapan]
	if china.MarketTotal != 100 || japan.MarketTotal != 150 {
		t.Fatalf("totals = %v / %v, want 100 / 150", china.MarketTotal, japan.MarketTotal)
	}
}

func TestGetFacilityPointsLimit(t *testing.T) {
	uc := NewDependencyUseCase(testPanel())

	points, err := uc.GetFacilityPoints(context.Background(), GetDependencyParams{
		Prefecture: "kyoto",
		Month:      4,
		Market:     models.MarketChina,
	}, 1)
	if err != nil {
		t.Fatalf("GetFacilityPoints: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("points = %d, want 1", len(points))
	}
	if !almostEq(points[0].Share, 0.8) {
		t.Fatalf("share = %v, want 0.8", points[0].Share)
	}
}
