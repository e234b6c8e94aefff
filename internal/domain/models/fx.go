package models

import "time"

// FXQuote is one streamed currency-rate observation.
type FXQuote struct {
	Pair      string    `json:"pair"`
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}
