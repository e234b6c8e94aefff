package repository

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCSVScenarioStore(t *testing.T) {
	path := writeFile(t, "scenarios.csv", `event_id,event_name_ja,note,schedule
infectious_disease_resurgence,感染症再拡大,pandemic-style demand shock,-0.35;-0.25;-0.10
fx_jpy_depreciation,円安進行,weak yen boosts inbound,0.08
`)
	store, err := NewCSVScenarioStore(path)
	if err != nil {
		t.Fatalf("NewCSVScenarioStore: %v", err)
	}

	sc, ok := store.Get("infectious_disease_resurgence")
	if !ok {
		t.Fatal("scenario missing")
	}
	if len(sc.Schedule) != 3 || sc.Schedule[0] != -0.35 {
		t.Fatalf("schedule = %v", sc.Schedule)
	}
	if got := sc.ShockAt(10); got != -0.10 {
		t.Fatalf("held shock = %v, want -0.10", got)
	}

	infos := store.List()
	if len(infos) != 2 || infos[0].ID != "infectious_disease_resurgence" {
		t.Fatalf("list = %+v", infos)
	}
}

func TestCSVScenarioStoreEmptyFile(t *testing.T) {
	path := writeFile(t, "scenarios.csv", "event_id,event_name_ja,note,schedule\n")
	if _, err := NewCSVScenarioStore(path); err == nil {
		t.Fatal("expected error for empty scenario file")
	}
}

func TestCSVExogSeriesExactAndFallback(t *testing.T) {
	path := writeFile(t, "fx.csv", `date,usd_jpy
2025-03-01,149.2
2025-04-01,151.8
`)
	series, err := NewCSVExogSeries(path)
	if err != nil {
		t.Fatalf("NewCSVExogSeries: %v", err)
	}

	if r, ok := series.RateFor(2025, 4); !ok || r != 151.8 {
		t.Fatalf("exact = %v %v", r, ok)
	}
	// month past the file end: carried forward, flagged degraded
	if r, ok := series.RateFor(2025, 7); ok || r != 151.8 {
		t.Fatalf("carried = %v %v, want 151.8 false", r, ok)
	}
	// month before the file start, live fallback attached
	series.SetLiveFallback(func() (float64, bool) { return 147.0, true })
	if r, ok := series.RateFor(2024, 1); ok || r != 147.0 {
		t.Fatalf("live fallback = %v %v, want 147 false", r, ok)
	}
}

func TestCSVExogSeriesYearMonthColumns(t *testing.T) {
	path := writeFile(t, "fx.csv", `year,month,rate
2025,5,150.1
`)
	series, err := NewCSVExogSeries(path)
	if err != nil {
		t.Fatalf("NewCSVExogSeries: %v", err)
	}
	if r, ok := series.RateFor(2025, 5); !ok || r != 150.1 {
		t.Fatalf("rate = %v %v", r, ok)
	}
}
