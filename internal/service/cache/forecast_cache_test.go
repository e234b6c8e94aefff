package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"KankoLens/internal/domain/models"
	"KankoLens/internal/services/forecast"
)

func payload(version string) *models.ForecastPayload {
	return &models.ForecastPayload{ModelVersion: version, Prefecture: "kyoto"}
}

func TestForecastCacheHit(t *testing.T) {
	c := NewForecastCache(time.Minute, nil)
	calls := 0
	compute := func() (*models.ForecastPayload, error) {
		calls++
		return payload("v1"), nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrCompute("k", compute)
		if err != nil {
			t.Fatalf("GetOrCompute: %v", err)
		}
		if got.ModelVersion != "v1" {
			t.Fatalf("payload = %+v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("compute ran %d times, want 1", calls)
	}
}

func TestForecastCacheTTLExpiry(t *testing.T) {
	clock := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}

	c := NewForecastCache(5*time.Minute, now)
	calls := 0
	compute := func() (*models.ForecastPayload, error) {
		calls++
		return payload("v1"), nil
	}

	if _, err := c.GetOrCompute("k", compute); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}

	mu.Lock()
	clock = clock.Add(4 * time.Minute)
	mu.Unlock()
	if _, err := c.GetOrCompute("k", compute); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if calls != 1 {
		t.Fatalf("compute ran %d times before expiry, want 1", calls)
	}

	mu.Lock()
	clock = clock.Add(2 * time.Minute) // 6m after insert, past TTL
	mu.Unlock()
	if _, err := c.GetOrCompute("k", compute); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if calls != 2 {
		t.Fatalf("compute ran %d times after expiry, want 2", calls)
	}
}

func TestForecastCacheSingleFlight(t *testing.T) {
	c := NewForecastCache(time.Minute, nil)

	var calls int32
	release := make(chan struct{})
	compute := func() (*models.ForecastPayload, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return payload("v1"), nil
	}

	const concurrency = 8
	var wg sync.WaitGroup
	errs := make(chan error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetOrCompute("k", compute)
			errs <- err
		}()
	}

	time.Sleep(50 * time.Millisecond) // let callers pile onto the flight
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("GetOrCompute: %v", err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("compute ran %d times, want 1", n)
	}
}

func TestForecastCacheErrorNotCached(t *testing.T) {
	c := NewForecastCache(time.Minute, nil)
	calls := 0
	boom := errors.New("boom")
	compute := func() (*models.ForecastPayload, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return payload("v1"), nil
	}

	if _, err := c.GetOrCompute("k", compute); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	got, err := c.GetOrCompute("k", compute)
	if err != nil || got == nil {
		t.Fatalf("second call: %v %v", got, err)
	}
	if calls != 2 {
		t.Fatalf("compute ran %d times, want 2", calls)
	}
}

func TestKeyNormalizesScenarioOrder(t *testing.T) {
	a := Key(&forecast.Request{
		Prefecture: "kyoto", Market: models.MarketChina, BaseYear: 2025, BaseMonth: 4,
		HorizonMonths: 6, ScenarioIDs: []string{"b", "a"},
	})
	b := Key(&forecast.Request{
		Prefecture: "kyoto", Market: models.MarketChina, BaseYear: 2025, BaseMonth: 4,
		HorizonMonths: 6, ScenarioIDs: []string{"a", "b"},
	})
	if a != b {
		t.Fatalf("keys differ: %q vs %q", a, b)
	}

	custom := 0.05
	c := Key(&forecast.Request{
		Prefecture: "kyoto", Market: models.MarketChina, BaseYear: 2025, BaseMonth: 4,
		HorizonMonths: 6, ScenarioIDs: []string{"a", "b"}, CustomShockRate: &custom,
	})
	if a == c {
		t.Fatal("custom shock rate must change the key")
	}
}
