package repository

import (
	"context"

	"KankoLens/internal/domain/models"
)

// RateStream is a live exogenous-rate feed (FX quotes).
type RateStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.FXQuote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// AllocationSink persists ingested allocation rows.
type AllocationSink interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, r *models.AllocationRecord) error
	StoreBatch(ctx context.Context, rows []*models.AllocationRecord) error
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordIngested(sink, prefecture string)
	RecordError(kind string)
	RecordLastRate(pair string, rate float64)
	RecordLatency(op string, seconds float64)
}
