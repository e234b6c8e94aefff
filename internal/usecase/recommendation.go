package usecase

import (
	"context"
	"fmt"

	"KankoLens/internal/domain/models"
	domsvc "KankoLens/internal/domain/service"
)

// RecommendUseCase pairs the current dependency metrics with the
// recommender so advice always cites the period it was computed for.
type RecommendUseCase struct {
	deps        *DependencyUseCase
	recommender domsvc.Recommender
}

func NewRecommendUseCase(deps *DependencyUseCase, recommender domsvc.Recommender) *RecommendUseCase {
	return &RecommendUseCase{deps: deps, recommender: recommender}
}

func (uc *RecommendUseCase) GetRecommendation(ctx context.Context, req *models.RecommendationRequest) (*models.Recommendation, error) {
	market, err := models.ParseMarket(req.Market)
	if err != nil {
		return nil, err
	}
	rec, err := uc.deps.GetMonthRecord(ctx, req.Prefecture, market, 0, req.Month)
	if err != nil {
		return nil, fmt.Errorf("dependency metrics for recommendation: %w", err)
	}
	out, err := uc.recommender.Recommend(ctx, req, rec)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
