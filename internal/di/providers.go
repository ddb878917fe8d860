package di

import (
	"context"
	"fmt"
	"time"

	"DemandCast/internal/domain/repository"
	"DemandCast/internal/domain/service"
	"DemandCast/internal/handler/api"
	internalrepo "DemandCast/internal/repository"
	"DemandCast/internal/services/strategy"
	"DemandCast/internal/usecase"
	"DemandCast/pkg/cache"
	pkgch "DemandCast/pkg/clickhouse"
	"DemandCast/pkg/config"
	xhttp "DemandCast/pkg/http"
	pkgkafka "DemandCast/pkg/kafka"
	applogger "DemandCast/pkg/logger"
	"DemandCast/pkg/metrics"
	pkgpg "DemandCast/pkg/postgres"
	"DemandCast/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClickHouseClient creates the ClickHouse client and the ledger
// schema.
func ProvideClickHouseClient(cfg *config.Config, log *applogger.Logger) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ledger := internalrepo.NewCHSalesLedger(client, log)
	if err := ledger.InitSchema(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvidePostgresClient creates the Postgres pool and the forecast
// store schema.
func ProvidePostgresClient(cfg *config.Config, log *applogger.Logger) (*pkgpg.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgpg.NewClient(ctx,
		pkgpg.WithHost(cfg.Postgres.Host),
		pkgpg.WithPort(cfg.Postgres.Port),
		pkgpg.WithDatabase(cfg.Postgres.Database),
		pkgpg.WithCredentials(cfg.Postgres.User, cfg.Postgres.Password),
		pkgpg.WithSSLMode(cfg.Postgres.SSLMode),
		pkgpg.WithMaxConns(cfg.Postgres.MaxConns),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}
	if err := internalrepo.NewPGForecastStore(client, log).InitSchema(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	return client, nil
}

// ProvideCache creates the Redis cache, or an in-process one when
// Redis is disabled.
func ProvideCache(cfg *config.Config, log *applogger.Logger) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		log.Info("redis disabled, using in-process cache")
		return cache.NewMemoryCache(), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideKafkaProducer creates the Kafka producer for domain events.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates the order-event consumer.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSalesLedger creates the ClickHouse-backed sales ledger.
func ProvideSalesLedger(chClient *pkgch.Client, log *applogger.Logger) repository.SalesLedger {
	return internalrepo.NewCHSalesLedger(chClient, log)
}

// ProvideForecastStore creates the Postgres-backed forecast store.
func ProvideForecastStore(pgClient *pkgpg.Client, log *applogger.Logger) repository.ForecastStore {
	return internalrepo.NewPGForecastStore(pgClient, log)
}

// ProvidePublisher creates the Kafka forecast-event publisher.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.EventsTopic)
}

// ProvideStrategy probes the seasonal capability and selects the
// strategy for the process lifetime.
func ProvideStrategy(cfg *config.Config, log *applogger.Logger) service.Strategy {
	seasonal := strategy.NewSeasonal(cfg.Forecast.SeasonalURL, cfg.Forecast.SeasonalTO, log)
	weekly := strategy.NewWeekly(log, time.Now)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return strategy.Select(ctx, cfg, seasonal, weekly, log)
}

// ProvideAggregator creates the sales aggregator.
func ProvideAggregator(ledger repository.SalesLedger, cfg *config.Config, log *applogger.Logger) *usecase.Aggregator {
	return usecase.NewAggregator(ledger, cfg.Forecast.HistoryDays, log)
}

// ProvideEvaluator creates the metrics evaluator.
func ProvideEvaluator(log *applogger.Logger) *usecase.Evaluator {
	return usecase.NewEvaluator(log)
}

// ProvideForecaster creates the forecasting pipeline.
func ProvideForecaster(
	aggregator *usecase.Aggregator,
	evaluator *usecase.Evaluator,
	strat service.Strategy,
	store repository.ForecastStore,
	publisher repository.Publisher,
	m repository.Metrics,
	cacheSvc cache.Service,
	cfg *config.Config,
	log *applogger.Logger,
) *usecase.Forecaster {
	return usecase.NewForecaster(aggregator, evaluator, strat, store, publisher, m, cacheSvc, cfg.Forecast.CacheTTL, log)
}

// ProvideGenerator creates the batch generator.
func ProvideGenerator(forecaster *usecase.Forecaster, ledger repository.SalesLedger, log *applogger.Logger) *usecase.Generator {
	return usecase.NewGenerator(forecaster, ledger, log)
}

// ProvideOrdersIngest creates the order-event ingestion handler.
func ProvideOrdersIngest(cfg *config.Config, ledger repository.SalesLedger, m repository.Metrics, log *applogger.Logger) *usecase.OrdersIngest {
	return usecase.NewOrdersIngest(cfg.Kafka.OrdersTopic, ledger, m, log)
}

// ProvideHTTPHandler groups the API handlers.
func ProvideHTTPHandler(
	log *applogger.Logger,
	forecaster *usecase.Forecaster,
	generator *usecase.Generator,
	ledger repository.SalesLedger,
	store repository.ForecastStore,
	cfg *config.Config,
) xhttp.Handler {
	return xhttp.Handlers{
		api.NewForecastEchoHandler(log, forecaster, generator, cfg.Forecast.DefaultHorizon, cfg.Forecast.MaxHorizon),
		api.NewHealthEchoHandler(ledger, store),
	}
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	consumer *pkgkafka.Consumer,
	ingest *usecase.OrdersIngest,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	pgClient *pkgpg.Client,
	cacheSvc cache.Service,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, consumer, ingest, producer, chClient, pgClient, cacheSvc, handler)
}
