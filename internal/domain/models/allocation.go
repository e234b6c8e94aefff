package models

import "fmt"

// Market identifies a visitor-origin market category.
type Market string

const (
	MarketChina         Market = "china"
	MarketKorea         Market = "korea"
	MarketNorthAmerica  Market = "north_america"
	MarketSoutheastAsia Market = "southeast_asia"
	MarketEurope        Market = "europe"
	MarketJapan         Market = "japan"
)

// ForeignMarkets lists inbound markets, excluding domestic visitors.
// Order is stable; share vectors and top-market labels index into it.
var ForeignMarkets = []Market{
	MarketChina,
	MarketKorea,
	MarketNorthAmerica,
	MarketSoutheastAsia,
	MarketEurope,
}

// AllMarkets is ForeignMarkets plus the domestic market, in that order.
var AllMarkets = append(append([]Market{}, ForeignMarkets...), MarketJapan)

// ParseMarket validates a market identifier from transport input.
func ParseMarket(s string) (Market, error) {
	m := Market(s)
	for _, known := range AllMarkets {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown market %q", s)
}

// AllocationRecord is one facility-month row of the monthly allocation panel.
// Produced by the ingestion pipeline; read-only to the analytics core.
type AllocationRecord struct {
	FacilityID   string             `json:"facility_id"`
	FacilityName string             `json:"facility_name"`
	Prefecture   string             `json:"prefecture"`
	RegionCode   string             `json:"region_code"`
	Year         int                `json:"year"`
	Month        int                `json:"month"`
	Counts       map[Market]float64 `json:"counts"`
	TotalCount   float64            `json:"total_count"`
	Active       bool               `json:"active"`
	Latitude     float64            `json:"latitude"`
	Longitude    float64            `json:"longitude"`
}

// Count returns the visitor count for a market, zero when absent.
func (r *AllocationRecord) Count(m Market) float64 {
	if r.Counts == nil {
		return 0
	}
	return r.Counts[m]
}

// MonthDate renders the record's period as a first-of-month date string.
func (r *AllocationRecord) MonthDate() string {
	return fmt.Sprintf("%04d-%02d-01", r.Year, r.Month)
}
