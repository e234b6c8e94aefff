package forecast

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"KankoLens/internal/domain/models"
)

func writeArtifact(t *testing.T, dir string, artifact string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "china_model.json"), []byte(artifact), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
}

func TestLoadArtifactMissing(t *testing.T) {
	_, err := LoadArtifact(t.TempDir(), "china")
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestLoadArtifactWeightMismatch(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, `{"version":"linear-v1","feature_cols":["a","b"],"weights":[0.1],"intercept":0}`)
	if _, err := LoadArtifact(dir, "china"); err == nil {
		t.Fatal("expected validation error for weight/feature count mismatch")
	}
}

func TestNewLinearPredictorFeatureMismatch(t *testing.T) {
	artifact := &models.ModelArtifact{
		Version:  "linear-v1",
		Features: []string{"not_a_snapshot_feature"},
		Weights:  []float64{1.0},
	}
	_, err := NewLinearPredictor(artifact)
	if !errors.Is(err, ErrFeatureMismatch) {
		t.Fatalf("err = %v, want ErrFeatureMismatch", err)
	}
}

func TestLinearPredictorPredict(t *testing.T) {
	names := models.FeatureNames()
	weights := make([]float64, len(names))
	weights[5] = 1.0 // baseline_growth_rate passthrough
	artifact := &models.ModelArtifact{
		Version:   "linear-v1",
		Features:  names,
		Weights:   weights,
		Intercept: 0.02,
	}
	p, err := NewLinearPredictor(artifact)
	if err != nil {
		t.Fatalf("NewLinearPredictor: %v", err)
	}
	if p.Version() != "linear-v1" {
		t.Fatalf("version = %q", p.Version())
	}

	got, err := p.Predict(&models.FeatureSnapshot{BaselineGrowth: 0.1})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if math.Abs(got-0.12) > 1e-12 {
		t.Fatalf("prediction = %v, want 0.12", got)
	}
}

func TestLoadArtifactRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, `{
		"version": "linear-v1",
		"feature_cols": ["current_total","prev_total","active_facilities","facility_hhi","facility_top1_share","baseline_growth_rate","trend_growth_rate","fx_rate","seasonal_component"],
		"weights": [0,0,0,0,0,0.5,0.5,0,0],
		"intercept": 0.01,
		"trained_at": "2025-06-01"
	}`)
	artifact, err := LoadArtifact(dir, "china")
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}
	if _, err := NewLinearPredictor(artifact); err != nil {
		t.Fatalf("NewLinearPredictor: %v", err)
	}
}
