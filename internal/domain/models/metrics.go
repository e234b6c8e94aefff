package models

// DependencyMetricsRecord holds concentration metrics for one
// (granularity, key, year, month). Nullable fields use pointers: a nil
// metric means the period total was zero and the value is undefined,
// which is distinct from a computed 0.
type DependencyMetricsRecord struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	MonthDate string `json:"month_date"`

	// Market-across-facilities view for the selected market.
	MarketTotal         float64  `json:"market_total"`
	FacilityCountTotal  int      `json:"facility_count_total"`
	FacilityCountActive int      `json:"facility_count_active"`
	FacilityHHI         *float64 `json:"facility_hhi"`
	FacilityEntropy     *float64 `json:"facility_entropy"`
	FacilityEntropyNorm *float64 `json:"facility_entropy_norm_active"`
	FacilityTop1Share   *float64 `json:"facility_top1_share"`
	FacilityTop10Share  *float64 `json:"facility_top10_share"`

	// Cross-market views over the region's aggregate counts.
	ForeignHHI         *float64 `json:"foreign_hhi"`
	ForeignEntropy     *float64 `json:"foreign_entropy"`
	ForeignEntropyNorm *float64 `json:"foreign_entropy_norm"`
	ForeignTop1Market  string   `json:"foreign_top1_market,omitempty"`
	ForeignTop1Share   *float64 `json:"foreign_top1_share"`

	AllHHI         *float64 `json:"all_hhi"`
	AllEntropy     *float64 `json:"all_entropy"`
	AllEntropyNorm *float64 `json:"all_entropy_norm"`
	AllTop1Market  string   `json:"all_top1_market,omitempty"`
	AllTop1Share   *float64 `json:"all_top1_share"`
}

// DependencyCurrent is the selected-period view returned alongside the series.
type DependencyCurrent struct {
	DependencyMetricsRecord
	SelectedMarket Market `json:"selected_market"`
}

// DependencyPayload is the full response for one dependency metrics query.
type DependencyPayload struct {
	CurrentYear int                       `json:"current_year"`
	Current     DependencyCurrent         `json:"current"`
	Series      []DependencyMetricsRecord `json:"series"`
}

// FacilityShare is one facility's slice of a market's citywide total,
// used by the heatmap endpoint.
type FacilityShare struct {
	FacilityID   string  `json:"facility_id"`
	FacilityName string  `json:"facility_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Count        float64 `json:"count"`
	Share        float64 `json:"share"`
}
