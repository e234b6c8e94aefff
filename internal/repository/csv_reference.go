package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"KankoLens/internal/domain/models"
	domrepo "KankoLens/internal/domain/repository"
)

// Reference data loaders for the scenario-shock and FX exogenous CSV
// tables. Both are append-only reference files loaded once at startup.

func readCSVRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, nil
	}

	header := records[0]
	// Strip a UTF-8 BOM if the exporter left one on the first column.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	out := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func toFloat(raw string, def float64) float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func toInt(raw string, def int) int {
	return int(toFloat(raw, float64(def)))
}

// CSVScenarioStore loads shock-schedule definitions from a CSV with
// columns: event_id, event_name_ja, note, schedule. The schedule cell
// is a ';'-separated list of per-step shock rates; a horizon beyond
// the list's length holds the last value.
type CSVScenarioStore struct {
	order []string
	defs  map[string]*models.ScenarioDefinition
}

func NewCSVScenarioStore(path string) (*CSVScenarioStore, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, err
	}

	s := &CSVScenarioStore{defs: make(map[string]*models.ScenarioDefinition)}
	for _, row := range rows {
		id := strings.TrimSpace(row["event_id"])
		if id == "" {
			continue
		}
		label := strings.TrimSpace(row["event_name_ja"])
		if label == "" {
			label = id
		}

		var schedule []float64
		for _, cell := range strings.Split(row["schedule"], ";") {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			schedule = append(schedule, toFloat(cell, 0))
		}

		s.order = append(s.order, id)
		s.defs[id] = &models.ScenarioDefinition{
			ID:       id,
			Label:    label,
			Note:     strings.TrimSpace(row["note"]),
			Schedule: schedule,
		}
	}
	if len(s.defs) == 0 {
		return nil, fmt.Errorf("scenario file %s holds no definitions", path)
	}
	return s, nil
}

func (s *CSVScenarioStore) Get(id string) (*models.ScenarioDefinition, bool) {
	sc, ok := s.defs[id]
	return sc, ok
}

func (s *CSVScenarioStore) List() []models.ScenarioInfo {
	out := make([]models.ScenarioInfo, 0, len(s.order))
	for _, id := range s.order {
		sc := s.defs[id]
		out = append(out, models.ScenarioInfo{ID: sc.ID, Label: sc.Label, Note: sc.Note})
	}
	return out
}

var _ domrepo.ScenarioStore = (*CSVScenarioStore)(nil)

// CSVExogSeries loads monthly FX observations from a CSV with either a
// date column (YYYY-MM-DD) or year/month columns, and a rate column
// (usd_jpy, falling back to rate). A live quote source can be attached
// as the fallback of last resort for months past the file's end.
type CSVExogSeries struct {
	mu      sync.RWMutex
	rates   map[int]float64 // util.MonthIndex-style key: year*12 + month-1
	indices []int           // sorted keys
	live    func() (float64, bool)
}

func NewCSVExogSeries(path string) (*CSVExogSeries, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, err
	}

	s := &CSVExogSeries{rates: make(map[int]float64)}
	for _, row := range rows {
		year, month := 0, 0
		if date := row["date"]; date != "" {
			parts := strings.SplitN(date, "-", 3)
			if len(parts) >= 2 {
				year = toInt(parts[0], 0)
				month = toInt(parts[1], 0)
			}
		} else {
			year = toInt(row["year"], 0)
			month = toInt(row["month"], 0)
		}
		if year == 0 || month < 1 || month > 12 {
			continue
		}

		raw, ok := row["usd_jpy"]
		if !ok || raw == "" {
			raw = row["rate"]
		}
		if raw == "" {
			continue
		}
		s.rates[year*12+month-1] = toFloat(raw, 0)
	}

	s.indices = make([]int, 0, len(s.rates))
	for k := range s.rates {
		s.indices = append(s.indices, k)
	}
	sort.Ints(s.indices)
	return s, nil
}

// SetLiveFallback attaches a live quote source consulted when the file
// has no observation at or before the requested month.
func (s *CSVExogSeries) SetLiveFallback(fn func() (float64, bool)) {
	s.mu.Lock()
	s.live = fn
	s.mu.Unlock()
}

// RateFor returns the observation for the month. When the exact month
// is absent it falls back to the last observation before it (or the
// live source, or the newest observation) and reports ok=false so the
// snapshot is flagged degraded.
func (s *CSVExogSeries) RateFor(year, month int) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := year*12 + month - 1
	if r, ok := s.rates[idx]; ok {
		return r, true
	}

	// last observation at or before the target month
	pos := sort.SearchInts(s.indices, idx)
	if pos > 0 {
		return s.rates[s.indices[pos-1]], false
	}
	if s.live != nil {
		if r, ok := s.live(); ok {
			return r, false
		}
	}
	if len(s.indices) > 0 {
		return s.rates[s.indices[len(s.indices)-1]], false
	}
	return 0, false
}

var _ domrepo.ExogSeries = (*CSVExogSeries)(nil)
