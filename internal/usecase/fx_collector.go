package usecase

import (
	"context"

	"KankoLens/internal/domain/models"
	domrepo "KankoLens/internal/domain/repository"
	mid "KankoLens/internal/middleware"
	"KankoLens/internal/service/fxstream"
)

// FXCollector consumes the exchange-rate websocket stream and keeps the
// in-memory rate store current. The store backs the live-rate fallback
// of the forecast exogenous series.
type FXCollector struct {
	stream  domrepo.RateStream
	store   *fxstream.RateStore
	metrics domrepo.Metrics
	pipe    *mid.RealtimePipeline
}

func NewFXCollector(stream domrepo.RateStream, store *fxstream.RateStore, metrics domrepo.Metrics, pipe *mid.RealtimePipeline) *FXCollector {
	return &FXCollector{stream: stream, store: store, metrics: metrics, pipe: pipe}
}

// SetPipeline attaches the throttling pipeline. Must be called before
// Start.
func (c *FXCollector) SetPipeline(p *mid.RealtimePipeline) { c.pipe = p }

// IsConnected reports whether the websocket stream is up.
func (c *FXCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Store exposes the rate store for wiring into the exogenous series.
func (c *FXCollector) Store() *fxstream.RateStore { return c.store }

func (c *FXCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	qCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, qCh, errCh)
	return nil
}

func (c *FXCollector) consume(ctx context.Context, qCh <-chan *models.FXQuote, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case q := <-qCh:
			if q == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, q)
			} else {
				c.store.Update(q)
			}
			c.metrics.RecordLastRate(q.Pair, q.Rate)
		}
	}
}

// Process lets the collector sit downstream of the realtime pipeline.
func (c *FXCollector) Process(_ context.Context, q *models.FXQuote) error {
	c.store.Update(q)
	return nil
}

// Shutdown stops the pipeline and closes the stream.
func (c *FXCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}

var _ mid.Proc = (*FXCollector)(nil)
