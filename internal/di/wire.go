//go:build wireinject
// +build wireinject

package di

import (
	"DemandCast/internal/usecase"
	"DemandCast/pkg/config"
	"DemandCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvidePostgresClient,
		ProvideCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideSalesLedger,
		ProvideForecastStore,
		ProvidePublisher,

		// Strategy and use cases
		ProvideStrategy,
		ProvideAggregator,
		ProvideEvaluator,
		ProvideForecaster,
		ProvideGenerator,
		ProvideOrdersIngest,

		// HTTP surface and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeGenerator wires the batch generation pipeline without the
// HTTP server or the consumer, for the CLI.
func InitializeGenerator(cfg *config.Config) (*usecase.Generator, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvidePostgresClient,
		ProvideCache,
		ProvideKafkaProducer,
		ProvideSalesLedger,
		ProvideForecastStore,
		ProvidePublisher,
		ProvideStrategy,
		ProvideAggregator,
		ProvideEvaluator,
		ProvideForecaster,
		ProvideGenerator,
	)
	return &usecase.Generator{}, nil
}
