package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"KankoLens/internal/domain/repository"
	domsvc "KankoLens/internal/domain/service"
	"KankoLens/internal/handler/api"
	mid "KankoLens/internal/middleware"
	internalrepo "KankoLens/internal/repository"
	pkgcache "KankoLens/pkg/cache"
	icache "KankoLens/internal/service/cache"
	"KankoLens/internal/service/fxstream"
	"KankoLens/internal/services/forecast"
	"KankoLens/internal/services/recommend"
	"KankoLens/internal/usecase"
	pkgch "KankoLens/pkg/clickhouse"
	"KankoLens/pkg/config"
	pkgkafka "KankoLens/pkg/kafka"
	applogger "KankoLens/pkg/logger"
	"KankoLens/pkg/metrics"
	"KankoLens/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the
// allocation panel schema exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS kankolens",
		`CREATE TABLE IF NOT EXISTS kankolens.allocation_monthly (
			facility_id String, facility_name String, prefecture String, region_code String,
			year UInt16, month UInt8,
			china Float64, korea Float64, north_america Float64, southeast_asia Float64, europe Float64, japan Float64,
			total Float64, active UInt8, latitude Float64, longitude Float64
		) ENGINE=ReplacingMergeTree ORDER BY (prefecture, year, month, facility_id)`,
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePanelStore creates the read side of the allocation panel.
func ProvidePanelStore(chClient *pkgch.Client, l *applogger.Logger) repository.AllocationPanel {
	store := internalrepo.NewCHPanelStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideAllocationSink creates the write side of the allocation panel.
func ProvideAllocationSink(chClient *pkgch.Client) repository.AllocationSink {
	return internalrepo.NewClickHouseAllocationWriter(chClient.DB(), "")
}

// ProvideKafkaConsumer creates a Kafka consumer, or nil when ingest is
// disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Ingest.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Ingest.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Ingest.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Ingest.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Ingest.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Ingest.Consumer.RetryMax, cfg.Ingest.Consumer.BackoffMin, cfg.Ingest.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Ingest.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Ingest.Consumer.MinBytes, cfg.Ingest.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideIngestHandler registers the handler for the allocation topic.
func ProvideIngestHandler(sink repository.AllocationSink, m repository.Metrics, cfg *config.Config) *usecase.AllocationIngestHandler {
	return usecase.NewAllocationIngestHandler(cfg.Ingest.Topic, sink, m)
}

// ProvideRateStream creates the FX WebSocket stream.
func ProvideRateStream(cfg *config.Config) repository.RateStream {
	return fxstream.New(
		cfg.FXStream.APIKey,
		cfg.FXStream.WebSocketURL,
		cfg.FXStream.Pairs,
		cfg.FXStream.ReconnectDelay,
		cfg.FXStream.PingInterval,
	)
}

// ProvideFXCollector creates the FX collector with a throttling
// pipeline between the WebSocket and the rate store.
func ProvideFXCollector(stream repository.RateStream, m repository.Metrics, cfg *config.Config) *usecase.FXCollector {
	store := fxstream.NewRateStore()
	collector := usecase.NewFXCollector(stream, store, m, nil)
	pipe := mid.NewRealtimePipeline(collector, m,
		mid.WithMaxRPS(cfg.FXStream.MaxRPS),
		mid.WithBufferSize(2000),
	)
	collector.SetPipeline(pipe)
	return collector
}

// ProvideScenarioStore loads the shock-schedule catalog.
func ProvideScenarioStore(cfg *config.Config) (repository.ScenarioStore, error) {
	return internalrepo.NewCSVScenarioStore(cfg.Forecast.ScenarioFile)
}

// ProvideExogSeries loads the FX history and attaches the live stream
// as fallback for months past the file end.
func ProvideExogSeries(cfg *config.Config, collector *usecase.FXCollector) (repository.ExogSeries, error) {
	series, err := internalrepo.NewCSVExogSeries(cfg.Forecast.ExogFile)
	if err != nil {
		return nil, err
	}
	if cfg.FXStream.Enabled && len(cfg.FXStream.Pairs) > 0 {
		pair := cfg.FXStream.Pairs[0]
		series.SetLiveFallback(func() (float64, bool) {
			return collector.Store().LatestRate(pair, time.Hour)
		})
	}
	return series, nil
}

// ProvideTrainedPredictor loads the trained model artifact when one is
// deployed. A missing artifact is not an error: the engine falls back
// to the skeleton predictor.
func ProvideTrainedPredictor(cfg *config.Config, l *applogger.Logger) domsvc.GrowthPredictor {
	if cfg.Forecast.ModelDir == "" {
		return nil
	}
	artifact, err := forecast.LoadArtifact(cfg.Forecast.ModelDir, "growth")
	if err != nil {
		if !errors.Is(err, forecast.ErrModelUnavailable) {
			l.Warn("trained model load failed", applogger.Error(err))
		}
		return nil
	}
	p, err := forecast.NewLinearPredictor(artifact)
	if err != nil {
		l.Warn("trained model rejected", applogger.Error(err))
		return nil
	}
	l.Info("trained model loaded", applogger.String("version", p.Version()))
	return p
}

// ProvideEngine creates the scenario forecasting engine.
func ProvideEngine(
	panel repository.AllocationPanel,
	scenarios repository.ScenarioStore,
	exog repository.ExogSeries,
	trained domsvc.GrowthPredictor,
	cfg *config.Config,
	l *applogger.Logger,
) *forecast.Engine {
	snapshots := forecast.NewSnapshotBuilder(exog, cfg.Forecast.LagWindow, cfg.Forecast.MinLagWindow)
	return forecast.NewEngine(
		panel,
		scenarios,
		snapshots,
		trained,
		cfg.Forecast.MaxHorizon,
		cfg.Forecast.LagWindow,
		cfg.Forecast.DefaultScenarios,
		l,
	)
}

// ProvideForecastUseCase wraps the engine with the TTL result cache.
func ProvideForecastUseCase(engine *forecast.Engine, scenarios repository.ScenarioStore, cfg *config.Config) *usecase.ForecastUseCase {
	cache := icache.NewForecastCache(cfg.Forecast.CacheTTL, nil)
	return usecase.NewForecastUseCase(engine, cache, scenarios)
}

// ProvideDependencyUseCase creates the concentration metrics use case.
func ProvideDependencyUseCase(panel repository.AllocationPanel) *usecase.DependencyUseCase {
	return usecase.NewDependencyUseCase(panel)
}

// ProvideRecommender creates the recommendation backend with static
// fallback.
func ProvideRecommender(cfg *config.Config, l *applogger.Logger) domsvc.Recommender {
	return recommend.NewHTTPRecommender(cfg.Recommend.ServiceURL, cfg.Recommend.Timeout, l)
}

// ProvideRecommendUseCase pairs metrics with the recommender.
func ProvideRecommendUseCase(deps *usecase.DependencyUseCase, rec domsvc.Recommender) *usecase.RecommendUseCase {
	return usecase.NewRecommendUseCase(deps, rec)
}

// ProvideResponseCache picks a layered memory+Redis cache when Redis
// is enabled, in-process TTL cache otherwise.
func ProvideResponseCache(cfg *config.Config, l *applogger.Logger) icache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		redisCache, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
			pkgcache.WithRedisPrefix("kankolens:resp"),
		)
		if err != nil {
			l.Warn("redis unavailable, using in-process cache", applogger.Error(err))
			return icache.NewTTLCache()
		}
		return icache.NewServiceBytes(pkgcache.NewLayeredCache(redisCache))
	}
	return icache.NewTTLCache()
}

// ProvideAnalysisHandler creates the dashboard API handler.
func ProvideAnalysisHandler(
	l *applogger.Logger,
	deps *usecase.DependencyUseCase,
	fc *usecase.ForecastUseCase,
	rec *usecase.RecommendUseCase,
	respCache icache.BytesCache,
	cfg *config.Config,
) *api.AnalysisHandler {
	h := api.NewAnalysisHandler(l, deps, fc, rec)
	h.SetResponseCache(respCache, cfg.Cache.ResponseTTL)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.FXCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.AllocationIngestHandler,
	chClient *pkgch.Client,
	handler *api.AnalysisHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, l, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	return app
}
