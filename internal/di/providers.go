package di

import (
	"fmt"
	"time"

	"CoinPulse/internal/domain/repository"
	domsvc "CoinPulse/internal/domain/service"
	"CoinPulse/internal/handler/api"
	mid "CoinPulse/internal/middleware"
	internalrepo "CoinPulse/internal/repository"
	icache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/services/fundamental"
	"CoinPulse/internal/services/generation"
	"CoinPulse/internal/services/indicators"
	"CoinPulse/internal/services/macro"
	"CoinPulse/internal/services/marketdata"
	"CoinPulse/internal/services/notify"
	"CoinPulse/internal/services/predict"
	"CoinPulse/internal/services/report"
	"CoinPulse/internal/services/similarity"
	"CoinPulse/internal/services/technical"
	"CoinPulse/internal/usecase"
	pkgch "CoinPulse/pkg/clickhouse"
	"CoinPulse/pkg/config"
	pkgkafka "CoinPulse/pkg/kafka"
	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/metrics"
	"CoinPulse/pkg/queue"
	"CoinPulse/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	level := "info"
	if cfg.Environment == "development" {
		format = "console"
		level = "debug"
	}
	l, err := applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client. Schema init runs in
// App.Run, after the client exists but before any reader starts.
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
	return client, nil
}

// ProvideRedisClient creates the shared Redis client (cache, queue,
// similarity store).
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideBytesCache creates the byte cache, Redis-backed when configured.
func ProvideBytesCache(cfg *config.Config, cli *redis.Client) icache.BytesCache {
	if cfg.Redis.Addr == "" {
		return icache.NewTTLCache()
	}
	return icache.NewRedisCacheFromClient(cli)
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCandleStore creates the ClickHouse candle store.
func ProvideCandleStore(chClient *pkgch.Client, l *applogger.Logger) repository.CandleStore {
	store := internalrepo.NewCHCandleStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideTickStorage creates the ClickHouse tick storage.
func ProvideTickStorage(chClient *pkgch.Client) repository.TickStorage {
	return internalrepo.NewCHTickStorage(chClient)
}

// ProvideTickPublisher creates the Kafka tick publisher.
func ProvideTickPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.TickPublisher {
	return internalrepo.NewKafkaTickPublisher(producer, cfg.Kafka.TickTopic)
}

// ProvidePredictionPublisher creates the Kafka prediction publisher.
func ProvidePredictionPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.PredictionPublisher {
	return internalrepo.NewKafkaPredictionPublisher(producer, cfg.Kafka.PredictionTopic)
}

// ProvideKafkaTicksHandler registers handler for the tick topic.
func ProvideKafkaTicksHandler(store repository.TickStorage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaTicksHandler {
	return usecase.NewKafkaTicksHandler(cfg.Kafka.TickTopic, store, metrics)
}

// ProvideTickStream creates the exchange WebSocket stream.
func ProvideTickStream(cfg *config.Config, l *applogger.Logger) repository.TickStream {
	return marketdata.NewStream(
		cfg.Stream.WebSocketURL,
		cfg.Stream.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		l,
	)
}

// ProvideTickProcessor creates the tick processor use case.
func ProvideTickProcessor(
	pub repository.TickPublisher,
	store repository.TickStorage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.TickProcessor {
	return usecase.NewTickProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideTickCollector creates the tick collector use case.
func ProvideTickCollector(
	stream repository.TickStream,
	processor *usecase.TickProcessor,
	metrics repository.Metrics,
) *usecase.TickCollector {
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewTickCollector(stream, processor, metrics, pipe)
}

// ProvideCandleSource creates the exchange candle source with fallback.
func ProvideCandleSource(cfg *config.Config, l *applogger.Logger) repository.CandleSource {
	primary := marketdata.NewBybitClient(cfg, l)
	if !cfg.Binance.Enabled {
		return primary
	}
	secondary := marketdata.NewBinanceClient(cfg, l)
	return marketdata.NewFallbackSource(primary, secondary, l)
}

// ProvideGenerationClient creates the OpenAI-compatible generation client.
func ProvideGenerationClient(cfg *config.Config, l *applogger.Logger) *generation.OpenAIClient {
	return generation.NewOpenAIClient(cfg, l)
}

// ProvideGenerator binds the generation client as the candidate generator.
func ProvideGenerator(c *generation.OpenAIClient) domsvc.Generator { return c }

// ProvideEmbedder binds the generation client as the embedder.
func ProvideEmbedder(c *generation.OpenAIClient) domsvc.Embedder { return c }

// ProvideCommentaryStore creates the Redis similarity store.
func ProvideCommentaryStore(cfg *config.Config, cli *redis.Client, embedder domsvc.Embedder, l *applogger.Logger) repository.CommentaryStore {
	return similarity.NewStore(cfg, cli, embedder, l)
}

// ProvideContextBuilder wires all context providers.
func ProvideContextBuilder(
	cfg *config.Config,
	commentary repository.CommentaryStore,
	cache icache.BytesCache,
	l *applogger.Logger,
) *usecase.ContextBuilder {
	return usecase.NewContextBuilder(
		marketdata.NewCoinGeckoClient(cfg, l),
		marketdata.NewFearGreedClient(cfg, l),
		marketdata.NewCryptoCompareClient(cfg, l),
		macro.NewFREDClient(cfg, l),
		macro.NewAlphaVantageClient(cfg, l),
		macro.NewPolygonClient(cfg, l),
		macro.NewFinnhubClient(cfg, l),
		fundamental.NewAnalyzer(),
		commentary,
		cache,
		cfg,
		l,
	)
}

// ProvideAnalysisUseCase wires the analysis orchestrator.
func ProvideAnalysisUseCase(
	cfg *config.Config,
	source repository.CandleSource,
	store repository.CandleStore,
	ticks repository.TickStorage,
	generator domsvc.Generator,
	ctxBuilder *usecase.ContextBuilder,
	commentary repository.CommentaryStore,
	publisher repository.PredictionPublisher,
	cache icache.BytesCache,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(
		cfg,
		marketdata.NewCoinGeckoClient(cfg, l),
		marketdata.NewFearGreedClient(cfg, l),
		source,
		store,
		ticks,
		indicators.NewEnricher(l),
		technical.NewAnalyzer(l),
		generator,
		predict.NewValidator(l),
		ctxBuilder,
		commentary,
		publisher,
		notify.NewWebhookNotifier(cfg, l),
		report.NewUploader(cfg, l),
		cache,
		m,
		l,
	)
}

// ProvideCandlesUseCase creates the candles read use case.
func ProvideCandlesUseCase(store repository.CandleStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideJobQueue creates the Redis job queue with the analysis job
// registered.
func ProvideJobQueue(cfg *config.Config, cli *redis.Client, uc *usecase.AnalysisUseCase, l *applogger.Logger) *queue.RedisQueue {
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    1,
		RetryLimit: 2,
		RetryDelay: 30 * time.Second,
	}, cli, queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewAnalysisJob(uc, l))
	return q
}

// ProvideScheduler creates the recurring analysis scheduler.
func ProvideScheduler(q *queue.RedisQueue, cfg *config.Config, l *applogger.Logger) *usecase.AnalysisScheduler {
	return usecase.NewAnalysisScheduler(q, cfg.Analysis.Symbol, cfg.Analysis.RunInterval, l)
}

// ProvideHTTPHandler creates the Echo API handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	uc *usecase.AnalysisUseCase,
	candles *usecase.CandlesUseCase,
	q *queue.RedisQueue,
	collector *usecase.TickCollector,
	cache icache.BytesCache,
) *api.AnalysisEchoHandler {
	h := api.NewAnalysisEchoHandler(l, uc, candles, q, collector)
	h.SetCache(cache)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTicksHandler,
	chClient *pkgch.Client,
	jobQueue *queue.RedisQueue,
	scheduler *usecase.AnalysisScheduler,
	handler *api.AnalysisEchoHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, l, collector, consumer, kh, chClient, jobQueue, scheduler)
	app.SetHTTPHandler(handler)
	if collector != nil {
		app.TickProc = collector.Processor()
	}
	return app
}
