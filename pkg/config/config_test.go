package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
environment: test
server:
  port: 8080
clickhouse:
  host: localhost
  port: 9000
  database: kankolens
forecast:
  scenario_file: data/scenario_shocks.csv
  max_horizon: 12
  cache_ttl: 2m
ingest:
  enabled: true
  brokers: ["localhost:9092"]
  topic: allocation-monthly
`

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	c, err := Load(writeTempConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Environment != "test" {
		t.Fatalf("environment = %q, want test", c.Environment)
	}
	if c.Forecast.CacheTTL != 2*time.Minute {
		t.Fatalf("cache_ttl = %v, want 2m", c.Forecast.CacheTTL)
	}
	if c.Forecast.LagWindow != 3 {
		t.Fatalf("lag_window default = %d, want 3", c.Forecast.LagWindow)
	}
}

func TestLoadMissingScenarioFile(t *testing.T) {
	body := `
environment: test
clickhouse:
  host: localhost
`
	if _, err := Load(writeTempConfig(t, body)); err == nil {
		t.Fatal("expected error for missing forecast.scenario_file")
	}
}

func TestLoadHorizonOutOfRange(t *testing.T) {
	body := `
environment: test
clickhouse:
  host: localhost
forecast:
  scenario_file: s.csv
  max_horizon: 48
`
	if _, err := Load(writeTempConfig(t, body)); err == nil {
		t.Fatal("expected error for max_horizon > 24")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SCENARIO_SHOCK_FILE", "/override/shocks.csv")
	t.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")

	c, err := LoadWithEnv(writeTempConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.Forecast.ScenarioFile != "/override/shocks.csv" {
		t.Fatalf("scenario_file = %q", c.Forecast.ScenarioFile)
	}
	if len(c.Ingest.Brokers) != 2 || c.Ingest.Brokers[1] != "b2:9092" {
		t.Fatalf("brokers = %v", c.Ingest.Brokers)
	}
}

func TestIngestDisabledSkipsBrokerCheck(t *testing.T) {
	body := `
environment: test
clickhouse:
  host: localhost
forecast:
  scenario_file: s.csv
ingest:
  enabled: false
`
	if _, err := Load(writeTempConfig(t, body)); err != nil {
		t.Fatalf("Load: %v", err)
	}
}
