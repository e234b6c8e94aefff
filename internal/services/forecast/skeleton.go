package forecast

import (
	"KankoLens/internal/domain/models"
	domsvc "KankoLens/internal/domain/service"
)

// SkeletonPredictor is the deterministic fallback estimator used when
// no trained artifact is available: a damped blend of the most recent
// growth and the short trend plus the seasonal term.
type SkeletonPredictor struct{}

func NewSkeletonPredictor() *SkeletonPredictor { return &SkeletonPredictor{} }

func (s *SkeletonPredictor) Version() string { return models.ModelVersionSkeleton }

func (s *SkeletonPredictor) Predict(snapshot *models.FeatureSnapshot) (float64, error) {
	return 0.55*snapshot.BaselineGrowth + 0.45*(snapshot.TrendGrowth+snapshot.Seasonal), nil
}

var _ domsvc.GrowthPredictor = (*SkeletonPredictor)(nil)
