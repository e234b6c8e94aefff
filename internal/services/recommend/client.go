package recommend

import (
	"context"
	"fmt"
	"time"

	"KankoLens/internal/domain/models"
	domsvc "KankoLens/internal/domain/service"
	xhttp "KankoLens/pkg/http"
	applogger "KankoLens/pkg/logger"
)

// HTTPRecommender asks the external language-model service for action
// guidance. Any failure degrades to the static recommender so the
// dashboard always gets an answer.
type HTTPRecommender struct {
	baseURL  string
	client   *xhttp.Client
	fallback *StaticRecommender
	log      *applogger.Logger
}

func NewHTTPRecommender(serviceURL string, timeout time.Duration, log *applogger.Logger) *HTTPRecommender {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPRecommender{
		baseURL:  serviceURL,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		fallback: NewStaticRecommender(),
		log:      log,
	}
}

type recommendHTTPRequest struct {
	Prefecture string                          `json:"prefecture"`
	Market     string                          `json:"market"`
	Month      int                             `json:"month"`
	Focus      string                          `json:"focus"`
	Metrics    *models.DependencyMetricsRecord `json:"dependency_metrics"`
}

type recommendHTTPResponse struct {
	Summary string   `json:"summary"`
	Actions []string `json:"actions"`
}

func (r *HTTPRecommender) Recommend(ctx context.Context, req *models.RecommendationRequest, metrics *models.DependencyMetricsRecord) (models.Recommendation, error) {
	if r.baseURL == "" {
		return r.fallback.Recommend(ctx, req, metrics)
	}

	var resp recommendHTTPResponse
	err := r.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    r.baseURL + "/recommendations",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: recommendHTTPRequest{
			Prefecture: req.Prefecture,
			Market:     req.Market,
			Month:      req.Month,
			Focus:      req.Focus,
			Metrics:    metrics,
		},
	}, &resp)
	if err != nil || resp.Summary == "" {
		if r.log != nil {
			r.log.Warn("recommendation service unavailable, using static fallback", applogger.Error(err))
		}
		return r.fallback.Recommend(ctx, req, metrics)
	}

	return models.Recommendation{
		Prefecture: req.Prefecture,
		Market:     models.Market(req.Market),
		Focus:      req.Focus,
		Summary:    resp.Summary,
		Actions:    resp.Actions,
		Source:     "llm",
	}, nil
}

var _ domsvc.Recommender = (*HTTPRecommender)(nil)

// StaticRecommender derives guidance directly from the concentration
// metrics, used when no external service is configured or reachable.
type StaticRecommender struct{}

func NewStaticRecommender() *StaticRecommender { return &StaticRecommender{} }

func (s *StaticRecommender) Recommend(_ context.Context, req *models.RecommendationRequest, metrics *models.DependencyMetricsRecord) (models.Recommendation, error) {
	rec := models.Recommendation{
		Prefecture: req.Prefecture,
		Market:     models.Market(req.Market),
		Focus:      req.Focus,
		Source:     "static",
	}

	if metrics == nil || metrics.FacilityHHI == nil {
		rec.Summary = "No allocation data for the selected period; keep monitoring dependency metrics before shifting channel spend."
		rec.Actions = []string{"Verify panel ingestion for the selected month", "Re-run once allocation data arrives"}
		return rec, nil
	}

	hhi := *metrics.FacilityHHI
	switch {
	case hhi >= 0.25:
		rec.Summary = fmt.Sprintf("Visitor volume is highly concentrated (HHI %.3f, top facility share %.1f%%); a shock to the %s market would hit few operators very hard.",
			hhi, share(metrics.FacilityTop1Share), req.Market)
		rec.Actions = []string{
			"Rebalance marketing spend toward under-served facilities and wards",
			"Negotiate flexible cancellation terms with the dominant facilities",
			"Add a secondary market campaign to hedge the concentration",
		}
	case hhi >= 0.10:
		rec.Summary = fmt.Sprintf("Concentration is moderate (HHI %.3f); diversification is improving but the top facilities still anchor the %s market.", hhi, req.Market)
		rec.Actions = []string{
			"Track top-10 share monthly for drift",
			"Pilot packages that route demand to mid-tier facilities",
		}
	default:
		rec.Summary = fmt.Sprintf("Visitor volume is well dispersed (HHI %.3f); focus on growth rather than diversification for the %s market.", hhi, req.Market)
		rec.Actions = []string{
			"Protect the current channel mix",
			"Invest in demand generation for shoulder months",
		}
	}
	return rec, nil
}

func share(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p * 100
}

var _ domsvc.Recommender = (*StaticRecommender)(nil)
