package service

import (
	"context"

	"KankoLens/internal/domain/models"
)

// GrowthPredictor produces a raw growth-rate estimate from a feature
// snapshot. Implementations: the trained linear model and the
// deterministic skeleton fallback. The choice between them is made once
// at artifact load, not per request.
type GrowthPredictor interface {
	// Version tags forecast payloads so callers can tell trained output
	// from skeleton output.
	Version() string
	Predict(snapshot *models.FeatureSnapshot) (float64, error)
}

// Recommender produces action guidance from current dependency metrics.
type Recommender interface {
	Recommend(ctx context.Context, req *models.RecommendationRequest, metrics *models.DependencyMetricsRecord) (models.Recommendation, error)
}
