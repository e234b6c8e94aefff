package models

// Requests for dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type DependencyRequest struct {
	Prefecture string `query:"prefecture" json:"prefecture" default:"kyoto" validate:"required"`
	Month      int    `query:"month" json:"month" validate:"required,gte=1,lte=12"`
	Year       int    `query:"year" json:"year" validate:"omitempty,gte=2000,lte=2100"`
	Market     string `query:"market" json:"market" default:"china" validate:"oneof=china korea north_america southeast_asia europe japan"`
	Region     string `query:"region" json:"region" validate:"omitempty,max=64"`
}

type DependencyPointsRequest struct {
	Prefecture string `query:"prefecture" json:"prefecture" default:"kyoto" validate:"required"`
	Month      int    `query:"month" json:"month" validate:"required,gte=1,lte=12"`
	Year       int    `query:"year" json:"year" validate:"omitempty,gte=2000,lte=2100"`
	Market     string `query:"market" json:"market" default:"china" validate:"oneof=china korea north_america southeast_asia europe japan"`
	Limit      int    `query:"limit" json:"limit" default:"200" validate:"gte=1,lte=2000"`
}

type ForecastRequest struct {
	Prefecture      string   `query:"prefecture" json:"prefecture" default:"kyoto" validate:"required"`
	Market          string   `query:"market" json:"market" default:"china" validate:"oneof=china korea north_america southeast_asia europe japan"`
	BaseYear        int      `query:"base_year" json:"base_year" validate:"omitempty,gte=2000,lte=2100"`
	BaseMonth       int      `query:"base_month" json:"base_month" validate:"required,gte=1,lte=12"`
	HorizonMonths   int      `query:"horizon_months" json:"horizon_months" default:"6" validate:"gte=1,lte=12"`
	ScenarioIDs     []string `query:"scenario_ids" json:"scenario_ids"`
	CustomShockRate *float64 `query:"custom_shock_rate" json:"custom_shock_rate" validate:"omitempty,gte=-0.95,lte=2"`
}

type RecommendationRequest struct {
	Prefecture string `json:"prefecture" default:"kyoto" validate:"required"`
	Market     string `json:"market" default:"china" validate:"oneof=china korea north_america southeast_asia europe japan"`
	Month      int    `json:"month" validate:"required,gte=1,lte=12"`
	Focus      string `json:"focus" default:"diversification" validate:"oneof=diversification growth resilience"`
}
