package recommend

import (
	"context"
	"strings"
	"testing"

	"KankoLens/internal/domain/models"
)

func req() *models.RecommendationRequest {
	return &models.RecommendationRequest{Prefecture: "kyoto", Market: "china", Month: 4, Focus: "diversification"}
}

func TestStaticRecommenderHighConcentration(t *testing.T) {
	hhi, top1 := 0.42, 0.61
	rec, err := NewStaticRecommender().Recommend(context.Background(), req(), &models.DependencyMetricsRecord{
		FacilityHHI: &hhi, FacilityTop1Share: &top1,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Source != "static" {
		t.Fatalf("source = %q", rec.Source)
	}
	if !strings.Contains(rec.Summary, "0.420") {
		t.Fatalf("summary must cite the HHI value: %q", rec.Summary)
	}
	if len(rec.Actions) == 0 {
		t.Fatal("expected actions")
	}
}

func TestStaticRecommenderNilMetrics(t *testing.T) {
	rec, err := NewStaticRecommender().Recommend(context.Background(), req(), nil)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(rec.Actions) == 0 || rec.Summary == "" {
		t.Fatalf("degraded recommendation incomplete: %+v", rec)
	}
}

func TestHTTPRecommenderFallsBackWithoutURL(t *testing.T) {
	r := NewHTTPRecommender("", 0, nil)
	hhi := 0.05
	rec, err := r.Recommend(context.Background(), req(), &models.DependencyMetricsRecord{FacilityHHI: &hhi})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Source != "static" {
		t.Fatalf("source = %q, want static", rec.Source)
	}
}
