package forecast

import (
	"errors"
	"math"
	"testing"

	"KankoLens/internal/domain/models"
)

func TestSnapshotBuildMissingHistory(t *testing.T) {
	b := NewSnapshotBuilder(&fakeExog{}, 3, 2)
	h := NewHistory(100, 90, 4, 0.5, 0.6, []float64{0.1})
	if _, err := b.Build(h, 2025, 5); !errors.Is(err, ErrMissingHistory) {
		t.Fatalf("err = %v, want ErrMissingHistory", err)
	}
}

func TestSnapshotBuildFields(t *testing.T) {
	exog := &fakeExog{rates: map[int]float64{2025*12 + 4: 155.5}}
	b := NewSnapshotBuilder(exog, 3, 2)
	h := NewHistory(121, 110, 7, 0.34, 0.45, []float64{0.10, 0.10, 0.10})

	snap, err := b.Build(h, 2025, 5)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snap.CurrentTotal != 121 || snap.PrevTotal != 110 || snap.ActiveFacilities != 7 {
		t.Fatalf("totals = %+v", snap)
	}
	if snap.FacilityHHI != 0.34 || snap.FacilityTop1Share != 0.45 {
		t.Fatalf("concentration = %v / %v, want 0.34 / 0.45", snap.FacilityHHI, snap.FacilityTop1Share)
	}
	if math.Abs(snap.BaselineGrowth-0.10) > 1e-12 || math.Abs(snap.TrendGrowth-0.10) > 1e-12 {
		t.Fatalf("growths = %v / %v", snap.BaselineGrowth, snap.TrendGrowth)
	}
	if snap.FXRate != 155.5 || snap.Degraded {
		t.Fatalf("fx = %v degraded = %v, want 155.5 / false", snap.FXRate, snap.Degraded)
	}
	if math.Abs(snap.Seasonal-SeasonalComponent(5)) > 1e-15 {
		t.Fatalf("seasonal = %v", snap.Seasonal)
	}
}

func TestSnapshotBuildDegradedOnMissingFXMonth(t *testing.T) {
	exog := &fakeExog{rates: map[int]float64{}, last: 148.0}
	b := NewSnapshotBuilder(exog, 3, 1)
	h := NewHistory(121, 110, 7, 0.34, 0.45, []float64{0.1})

	snap, err := b.Build(h, 2025, 5)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !snap.Degraded {
		t.Fatal("snapshot must be degraded when the FX month is absent")
	}
	if snap.FXRate != 148.0 {
		t.Fatalf("fx = %v, want carried-forward 148.0", snap.FXRate)
	}
}

func TestSnapshotVectorAlignsWithFeatureNames(t *testing.T) {
	names := models.FeatureNames()
	vec := (&models.FeatureSnapshot{}).Vector()
	if len(vec) != len(names) {
		t.Fatalf("vector has %d entries for %d names", len(vec), len(names))
	}
	has := make(map[string]bool, len(names))
	for _, n := range names {
		has[n] = true
	}
	if !has["facility_hhi"] || !has["facility_top1_share"] {
		t.Fatalf("feature names must carry the latest concentration metrics: %v", names)
	}
}

func TestHistoryCloneIsolation(t *testing.T) {
	h := NewHistory(100, 90, 3, 0.5, 0.6, []float64{0.1})
	c := h.Clone()
	c.Append(0.5)
	if h.Len() != 1 {
		t.Fatalf("original history mutated: len = %d", h.Len())
	}
	if c.Len() != 2 || math.Abs(c.Last()-0.5) > 1e-12 {
		t.Fatalf("clone state wrong: len=%d last=%v", c.Len(), c.Last())
	}
	if math.Abs(c.currentTotal-150) > 1e-9 {
		t.Fatalf("rolled total = %v, want 150", c.currentTotal)
	}
}
