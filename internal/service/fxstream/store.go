package fxstream

import (
	"sync"
	"time"

	"KankoLens/internal/domain/models"
)

// RateStore keeps the most recent quote per currency pair. It backs
// the exogenous series' fallback when the reference CSV has no
// observation for a month yet.
type RateStore struct {
	mu     sync.RWMutex
	latest map[string]*models.FXQuote
}

func NewRateStore() *RateStore {
	return &RateStore{latest: make(map[string]*models.FXQuote)}
}

// Update records a quote, keeping only the newest per pair.
func (s *RateStore) Update(q *models.FXQuote) {
	if q == nil || q.Pair == "" {
		return
	}
	s.mu.Lock()
	if cur, ok := s.latest[q.Pair]; !ok || q.Timestamp.After(cur.Timestamp) {
		s.latest[q.Pair] = q
	}
	s.mu.Unlock()
}

// Latest returns the newest quote for the pair.
func (s *RateStore) Latest(pair string) (*models.FXQuote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.latest[pair]
	return q, ok
}

// LatestRate returns the newest rate for the pair when it is fresh
// enough to stand in for a monthly observation.
func (s *RateStore) LatestRate(pair string, maxAge time.Duration) (float64, bool) {
	q, ok := s.Latest(pair)
	if !ok {
		return 0, false
	}
	if maxAge > 0 && time.Since(q.Timestamp) > maxAge {
		return 0, false
	}
	return q.Rate, true
}
