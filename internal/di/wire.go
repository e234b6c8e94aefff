//go:build wireinject
// +build wireinject

package di

import (
	"KankoLens/pkg/config"
	"KankoLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaConsumer,
		ProvideRateStream,

		// Repositories
		ProvidePanelStore,
		ProvideAllocationSink,
		ProvideScenarioStore,
		ProvideExogSeries,

		// Forecasting
		ProvideTrainedPredictor,
		ProvideEngine,

		// Use cases
		ProvideFXCollector,
		ProvideIngestHandler,
		ProvideDependencyUseCase,
		ProvideForecastUseCase,
		ProvideRecommender,
		ProvideRecommendUseCase,

		// HTTP
		ProvideResponseCache,
		ProvideAnalysisHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
