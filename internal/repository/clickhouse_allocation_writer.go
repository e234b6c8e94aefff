package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"KankoLens/internal/domain/models"
	"KankoLens/internal/domain/repository"
)

// ClickHouseAllocationWriter implements AllocationSink for ClickHouse.
// The ingest consumer feeds it allocation rows published by the
// external normalization pipeline.
type ClickHouseAllocationWriter struct {
	db    *sql.DB
	table string
}

func NewClickHouseAllocationWriter(db *sql.DB, table string) repository.AllocationSink {
	if table == "" {
		table = allocationTable
	}
	return &ClickHouseAllocationWriter{db: db, table: table}
}

func (w *ClickHouseAllocationWriter) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

const allocationColumns = "facility_id, facility_name, prefecture, region_code, year, month, " +
	"china, korea, north_america, southeast_asia, europe, japan, total, active, latitude, longitude"

func rowArgs(r *models.AllocationRecord) []interface{} {
	active := uint8(0)
	if r.Active {
		active = 1
	}
	return []interface{}{
		r.FacilityID, r.FacilityName, r.Prefecture, r.RegionCode, r.Year, r.Month,
		r.Count(models.MarketChina), r.Count(models.MarketKorea), r.Count(models.MarketNorthAmerica),
		r.Count(models.MarketSoutheastAsia), r.Count(models.MarketEurope), r.Count(models.MarketJapan),
		r.TotalCount, active, r.Latitude, r.Longitude,
	}
}

func (w *ClickHouseAllocationWriter) Store(ctx context.Context, r *models.AllocationRecord) error {
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", w.table, allocationColumns)
	_, err := w.db.ExecContext(ctx, q, rowArgs(r)...)
	return err
}

func (w *ClickHouseAllocationWriter) StoreBatch(ctx context.Context, rows []*models.AllocationRecord) error {
	if len(rows) == 0 {
		return nil
	}
	// Multi-row VALUES insert to reduce round-trips, chunked.
	const chunkSize = 2000
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*16)
		for _, r := range rows[start:end] {
			if r == nil || r.FacilityID == "" || r.Year == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, rowArgs(r)...)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", w.table, allocationColumns, strings.Join(values, ","))
		if _, err := w.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (w *ClickHouseAllocationWriter) Health(ctx context.Context) error {
	return w.db.PingContext(ctx)
}

func (w *ClickHouseAllocationWriter) Close() error {
	return nil // Managed by pkg
}
