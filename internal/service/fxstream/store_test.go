package fxstream

import (
	"testing"
	"time"

	"KankoLens/internal/domain/models"
)

func TestRateStoreKeepsNewest(t *testing.T) {
	s := NewRateStore()
	now := time.Now()
	s.Update(&models.FXQuote{Pair: "USD/JPY", Rate: 150, Timestamp: now})
	s.Update(&models.FXQuote{Pair: "USD/JPY", Rate: 149, Timestamp: now.Add(-time.Minute)})

	q, ok := s.Latest("USD/JPY")
	if !ok || q.Rate != 150 {
		t.Fatalf("latest = %+v %v, want 150", q, ok)
	}
}

func TestRateStoreFreshness(t *testing.T) {
	s := NewRateStore()
	s.Update(&models.FXQuote{Pair: "USD/JPY", Rate: 150, Timestamp: time.Now().Add(-2 * time.Hour)})

	if _, ok := s.LatestRate("USD/JPY", time.Hour); ok {
		t.Fatal("stale quote must not be served")
	}
	if r, ok := s.LatestRate("USD/JPY", 0); !ok || r != 150 {
		t.Fatalf("unbounded age = %v %v", r, ok)
	}
	if _, ok := s.LatestRate("EUR/JPY", 0); ok {
		t.Fatal("unknown pair must miss")
	}
}
