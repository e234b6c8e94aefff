package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"KankoLens/internal/domain/models"
	domrepo "KankoLens/internal/domain/repository"
	pkgch "KankoLens/pkg/clickhouse"
	applogger "KankoLens/pkg/logger"
)

const allocationTable = "kankolens.allocation_monthly"

// marketColumn maps market ids to table columns. Markets are a closed
// enum, so the lookup doubles as identifier sanitation for queries.
func marketColumn(m models.Market) (string, error) {
	switch m {
	case models.MarketChina, models.MarketKorea, models.MarketNorthAmerica,
		models.MarketSoutheastAsia, models.MarketEurope, models.MarketJapan:
		return string(m), nil
	default:
		return "", fmt.Errorf("unsupported market: %s", m)
	}
}

// CHPanelStore implements AllocationPanel backed by ClickHouse.
type CHPanelStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHPanelStore(ch *pkgch.Client) *CHPanelStore {
	return &CHPanelStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHPanelStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHPanelStore) Rows(ctx context.Context, prefecture string, year, month int) ([]*models.AllocationRecord, error) {
	start := time.Now()
	const q = `
        SELECT facility_id, facility_name, region_code,
               china, korea, north_america, southeast_asia, europe, japan,
               total, active, latitude, longitude
        FROM ` + allocationTable + `
        WHERE prefecture = ? AND year = ? AND month = ?
        ORDER BY facility_id ASC
    `
	rows, err := s.db.QueryContext(ctx, q, prefecture, year, month)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse panel rows query error",
				applogger.String("prefecture", prefecture),
				applogger.Int("year", year),
				applogger.Int("month", month),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("panel rows: %w", err)
	}
	defer rows.Close()

	out := make([]*models.AllocationRecord, 0, 256)
	for rows.Next() {
		rec := &models.AllocationRecord{
			Prefecture: prefecture,
			Year:       year,
			Month:      month,
			Counts:     make(map[models.Market]float64, len(models.AllMarkets)),
		}
		var china, korea, na, sea, eu, jp float64
		var active uint8
		if err := rows.Scan(
			&rec.FacilityID, &rec.FacilityName, &rec.RegionCode,
			&china, &korea, &na, &sea, &eu, &jp,
			&rec.TotalCount, &active, &rec.Latitude, &rec.Longitude,
		); err != nil {
			return nil, fmt.Errorf("scan allocation row: %w", err)
		}
		rec.Counts[models.MarketChina] = china
		rec.Counts[models.MarketKorea] = korea
		rec.Counts[models.MarketNorthAmerica] = na
		rec.Counts[models.MarketSoutheastAsia] = sea
		rec.Counts[models.MarketEurope] = eu
		rec.Counts[models.MarketJapan] = jp
		rec.Active = active != 0
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("panel rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse panel rows ok",
			applogger.String("prefecture", prefecture),
			applogger.Int("year", year),
			applogger.Int("month", month),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHPanelStore) ListMonths(ctx context.Context, prefecture string) ([]domrepo.MonthKey, error) {
	const q = `
        SELECT DISTINCT year, month
        FROM ` + allocationTable + `
        WHERE prefecture = ?
        ORDER BY year ASC, month ASC
    `
	rows, err := s.db.QueryContext(ctx, q, prefecture)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	defer rows.Close()

	var out []domrepo.MonthKey
	for rows.Next() {
		var k domrepo.MonthKey
		if err := rows.Scan(&k.Year, &k.Month); err != nil {
			return nil, fmt.Errorf("scan month: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *CHPanelStore) LatestYearForMonth(ctx context.Context, prefecture string, month int) (int, error) {
	const q = `
        SELECT max(year)
        FROM ` + allocationTable + `
        WHERE prefecture = ? AND month = ?
    `
	var year sql.NullInt64
	if err := s.db.QueryRowContext(ctx, q, prefecture, month).Scan(&year); err != nil {
		return 0, fmt.Errorf("latest year for month: %w", err)
	}
	if year.Valid && year.Int64 > 0 {
		return int(year.Int64), nil
	}

	const fallback = `
        SELECT max(year)
        FROM ` + allocationTable + `
        WHERE prefecture = ?
    `
	if err := s.db.QueryRowContext(ctx, fallback, prefecture).Scan(&year); err != nil {
		return 0, fmt.Errorf("latest year: %w", err)
	}
	if !year.Valid || year.Int64 == 0 {
		return 0, fmt.Errorf("no panel data for prefecture %s", prefecture)
	}
	return int(year.Int64), nil
}

func (s *CHPanelStore) MonthlyMarketTotals(ctx context.Context, prefecture string, market models.Market) (map[domrepo.MonthKey]float64, error) {
	col, err := marketColumn(market)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`
        SELECT year, month, sum(%s)
        FROM %s
        WHERE prefecture = ?
        GROUP BY year, month
        ORDER BY year ASC, month ASC
    `, col, allocationTable)

	rows, err := s.db.QueryContext(ctx, q, prefecture)
	if err != nil {
		return nil, fmt.Errorf("market totals: %w", err)
	}
	defer rows.Close()

	out := make(map[domrepo.MonthKey]float64)
	for rows.Next() {
		var k domrepo.MonthKey
		var total float64
		if err := rows.Scan(&k.Year, &k.Month, &total); err != nil {
			return nil, fmt.Errorf("scan market total: %w", err)
		}
		out[k] = total
	}
	return out, rows.Err()
}

var _ domrepo.AllocationPanel = (*CHPanelStore)(nil)
