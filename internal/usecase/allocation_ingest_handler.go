package usecase

import (
	"context"
	"encoding/json"
	"time"

	"KankoLens/internal/domain/models"
	domrepo "KankoLens/internal/domain/repository"
	pkgkafka "KankoLens/pkg/kafka"
)

// AllocationIngestHandler consumes monthly allocation rows from Kafka
// and writes them to the ClickHouse panel.
type AllocationIngestHandler struct {
	topic   string
	sink    domrepo.AllocationSink
	metrics domrepo.Metrics
}

func NewAllocationIngestHandler(topic string, sink domrepo.AllocationSink, metrics domrepo.Metrics) *AllocationIngestHandler {
	return &AllocationIngestHandler{topic: topic, sink: sink, metrics: metrics}
}

func (h *AllocationIngestHandler) Topic() string { return h.topic }

// incoming message schema mirrors the allocation panel row:
// {facility_id, facility_name, prefecture, region_code, year, month,
//  counts: {market: float}, latitude, longitude}
func (h *AllocationIngestHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		FacilityID   string             `json:"facility_id"`
		FacilityName string             `json:"facility_name"`
		Prefecture   string             `json:"prefecture"`
		RegionCode   string             `json:"region_code"`
		Year         int                `json:"year"`
		Month        int                `json:"month"`
		Counts       map[string]float64 `json:"counts"`
		Latitude     float64            `json:"latitude"`
		Longitude    float64            `json:"longitude"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	rec := &models.AllocationRecord{
		FacilityID:   m.FacilityID,
		FacilityName: m.FacilityName,
		Prefecture:   m.Prefecture,
		RegionCode:   m.RegionCode,
		Year:         m.Year,
		Month:        m.Month,
		Counts:       make(map[models.Market]float64, len(m.Counts)),
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
	}
	for name, v := range m.Counts {
		market, err := models.ParseMarket(name)
		if err != nil {
			h.metrics.RecordError("consumer_unknown_market")
			return err
		}
		rec.Counts[market] = v
		rec.TotalCount += v
	}
	rec.Active = rec.TotalCount > 0

	start := time.Now()
	err := h.sink.Store(ctx, rec)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordIngested("clickhouse", rec.Prefecture)
	return nil
}

var _ pkgkafka.MessageHandler = (*AllocationIngestHandler)(nil)
