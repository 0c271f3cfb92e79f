//go:build wireinject
// +build wireinject

package di

import (
	"CoinPulse/pkg/config"
	"CoinPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisClient,
		ProvideBytesCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideCandleStore,
		ProvideTickStorage,
		ProvideTickPublisher,
		ProvidePredictionPublisher,
		ProvideTickStream,
		ProvideCandleSource,

		// Domain services
		ProvideGenerationClient,
		ProvideGenerator,
		ProvideEmbedder,
		ProvideCommentaryStore,

		// Use cases
		ProvideTickProcessor,
		ProvideTickCollector,
		ProvideContextBuilder,
		ProvideAnalysisUseCase,
		ProvideCandlesUseCase,
		ProvideKafkaTicksHandler,
		ProvideJobQueue,
		ProvideScheduler,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
