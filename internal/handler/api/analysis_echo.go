package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	models "KankoLens/internal/domain/models"
	icache "KankoLens/internal/service/cache"
	svcmetrics "KankoLens/internal/service/metrics"
	"KankoLens/internal/service/ratelimit"
	"KankoLens/internal/services/forecast"
	"KankoLens/internal/usecase"
	xhttp "KankoLens/pkg/http"
	xlogger "KankoLens/pkg/logger"
)

// AnalysisHandler serves the dashboard API: dependency concentration
// metrics, scenario forecasts, and recommendations.
type AnalysisHandler struct {
	logger    *xlogger.Logger
	deps      *usecase.DependencyUseCase
	fc        *usecase.ForecastUseCase
	rec       *usecase.RecommendUseCase
	respCache icache.BytesCache
	respTTL   time.Duration
	rl        *ratelimit.Limiter
}

func NewAnalysisHandler(logger *xlogger.Logger, deps *usecase.DependencyUseCase, fc *usecase.ForecastUseCase, rec *usecase.RecommendUseCase) *AnalysisHandler {
	svcmetrics.Register()
	return &AnalysisHandler{
		logger:  logger,
		deps:    deps,
		fc:      fc,
		rec:     rec,
		respTTL: 30 * time.Second,
		rl:      ratelimit.New(),
	}
}

// SetResponseCache enables byte-level response caching for GET endpoints.
func (h *AnalysisHandler) SetResponseCache(c icache.BytesCache, ttl time.Duration) {
	h.respCache = c
	if ttl > 0 {
		h.respTTL = ttl
	}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/dependency", h.Dependency)
	g.GET("/dependency/summary", h.DependencySummary)
	g.GET("/dependency/points", h.DependencyPoints)
	g.GET("/forecast", h.Forecast)
	g.GET("/scenarios", h.Scenarios)
	g.POST("/recommendation", h.Recommendation)
}

func (h *AnalysisHandler) Dependency(c echo.Context) error {
	endpoint := "dependency"
	start := time.Now()
	defer func() { svcmetrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.DependencyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, endpoint, 10, 5) {
		return rateLimited(c)
	}

	key := fmt.Sprintf("dep:%s:%04d-%02d:%s:%s", req.Prefecture, req.Year, req.Month, req.Market, req.Region)
	if b, ok := h.cached(endpoint, key); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	market, err := models.ParseMarket(req.Market)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	res, err := h.deps.GetDependency(c.Request().Context(), usecase.GetDependencyParams{
		Prefecture: req.Prefecture,
		Month:      req.Month,
		Year:       req.Year,
		Market:     market,
		Region:     req.Region,
	})
	if err != nil {
		svcmetrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("dependency usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respond(c, endpoint, key, res)
}

func (h *AnalysisHandler) DependencySummary(c echo.Context) error {
	endpoint := "dependency_summary"
	start := time.Now()
	defer func() { svcmetrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.DependencyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, endpoint, 10, 5) {
		return rateLimited(c)
	}

	key := fmt.Sprintf("depsum:%s:%04d-%02d", req.Prefecture, req.Year, req.Month)
	if b, ok := h.cached(endpoint, key); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	res, err := h.deps.GetSummary(c.Request().Context(), req.Prefecture, req.Year, req.Month)
	if err != nil {
		svcmetrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("dependency summary usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respond(c, endpoint, key, res)
}

func (h *AnalysisHandler) DependencyPoints(c echo.Context) error {
	endpoint := "dependency_points"
	start := time.Now()
	defer func() { svcmetrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.DependencyPointsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, endpoint, 10, 5) {
		return rateLimited(c)
	}

	key := fmt.Sprintf("deppts:%s:%04d-%02d:%s:%d", req.Prefecture, req.Year, req.Month, req.Market, req.Limit)
	if b, ok := h.cached(endpoint, key); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	market, err := models.ParseMarket(req.Market)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	res, err := h.deps.GetFacilityPoints(c.Request().Context(), usecase.GetDependencyParams{
		Prefecture: req.Prefecture,
		Month:      req.Month,
		Year:       req.Year,
		Market:     market,
	}, req.Limit)
	if err != nil {
		svcmetrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("dependency points usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respond(c, endpoint, key, res)
}

func (h *AnalysisHandler) Forecast(c echo.Context) error {
	endpoint := "forecast"
	start := time.Now()
	defer func() { svcmetrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, endpoint, 5, 2) {
		return rateLimited(c)
	}

	market, err := models.ParseMarket(req.Market)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	res, err := h.fc.GetForecast(c.Request().Context(), &forecast.Request{
		Prefecture:      req.Prefecture,
		Market:          market,
		BaseYear:        req.BaseYear,
		BaseMonth:       req.BaseMonth,
		HorizonMonths:   req.HorizonMonths,
		ScenarioIDs:     splitScenarioIDs(req.ScenarioIDs),
		CustomShockRate: req.CustomShockRate,
	})
	if err != nil {
		svcmetrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("forecast usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, forecastAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Scenarios(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.fc.ListScenarios())
}

func (h *AnalysisHandler) Recommendation(c echo.Context) error {
	endpoint := "recommendation"
	start := time.Now()
	defer func() { svcmetrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.RecommendationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, endpoint, 3, 1) {
		return rateLimited(c)
	}

	res, err := h.rec.GetRecommendation(c.Request().Context(), req)
	if err != nil {
		svcmetrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("recommendation usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// respond writes the standard envelope and stores the marshaled bytes in
// the response cache so the next identical GET skips the usecase.
func (h *AnalysisHandler) respond(c echo.Context, endpoint, key string, data interface{}) error {
	env := xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    data,
	}
	b, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("response marshal error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if h.respCache != nil {
		if err := h.respCache.SetBytes(key, b, h.respTTL); err != nil {
			h.logger.Warn("response cache set error", xlogger.Error(err))
		}
	}
	return c.JSONBlob(http.StatusOK, b)
}

func (h *AnalysisHandler) cached(endpoint, key string) ([]byte, bool) {
	if h.respCache == nil {
		return nil, false
	}
	b, ok, err := h.respCache.GetBytes(key)
	if err != nil {
		h.logger.Warn("response cache get error", xlogger.Error(err))
		return nil, false
	}
	if ok {
		svcmetrics.ResponseCacheHits.WithLabelValues(endpoint).Inc()
		return b, true
	}
	svcmetrics.ResponseCacheMisses.WithLabelValues(endpoint).Inc()
	return nil, false
}

func (h *AnalysisHandler) allow(c echo.Context, endpoint string, capacity, refill float64) bool {
	if h.rl.Allow(c.RealIP()+":"+endpoint, capacity, refill) {
		return true
	}
	h.logger.Warn("rate limited",
		xlogger.String("endpoint", endpoint),
		xlogger.String("remote", c.RealIP()))
	return false
}

func rateLimited(c echo.Context) error {
	return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
}

// splitScenarioIDs accepts both repeated query params and a single
// comma-separated value.
func splitScenarioIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		for _, part := range strings.Split(id, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// forecastAppError maps forecast sentinel errors onto HTTP statuses.
func forecastAppError(err error) error {
	switch {
	case errors.Is(err, forecast.ErrInvalidHorizon),
		errors.Is(err, forecast.ErrUnknownScenario):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, forecast.ErrInsufficientData),
		errors.Is(err, forecast.ErrMissingHistory):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	default:
		return err
	}
}
