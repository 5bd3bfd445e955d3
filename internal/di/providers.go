package di

import (
	"context"
	"fmt"
	"time"

	"RevenueCast/internal/domain/models"
	"RevenueCast/internal/domain/repository"
	domsvc "RevenueCast/internal/domain/service"
	"RevenueCast/internal/handler/api"
	internalrepo "RevenueCast/internal/repository"
	"RevenueCast/internal/service/ratelimit"
	"RevenueCast/internal/services/features"
	"RevenueCast/internal/services/inference"
	"RevenueCast/internal/services/projection"
	"RevenueCast/internal/usecase"
	"RevenueCast/pkg/breaker"
	"RevenueCast/pkg/cache"
	pkgch "RevenueCast/pkg/clickhouse"
	"RevenueCast/pkg/config"
	xhttp "RevenueCast/pkg/http"
	pkgkafka "RevenueCast/pkg/kafka"
	applogger "RevenueCast/pkg/logger"
	"RevenueCast/pkg/metrics"
	"RevenueCast/pkg/queue"
	"RevenueCast/pkg/server"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rickar/cal/v2"
	"github.com/sony/gobreaker"
)

// Clock is the wall clock in the forecast timezone.
type Clock func() time.Time

// ProvideClock returns time.Now in the configured forecast timezone.
func ProvideClock(cfg *config.Config) (Clock, error) {
	loc, err := cfg.Forecast.Location()
	if err != nil {
		return nil, fmt.Errorf("forecast timezone: %w", err)
	}
	return func() time.Time { return time.Now().In(loc) }, nil
}

// ProvideKafkaProducer creates a Kafka producer when brokers are configured, nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger builds the application logger, attaching the Kafka log
// collector when logging.collector is set.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, nil, err
	}
	if cfg.Logging.Collector && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Interval,
			CountThreshold: cfg.Logging.Threshold,
			Topic:          cfg.Logging.Topic,
			Publisher:      producer,
		})
	}
	return l, l.RemoveCollector, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideHistoryStore opens the xlsx ledger.
func ProvideHistoryStore(cfg *config.Config, l *applogger.Logger, m repository.Metrics) (*internalrepo.XLSXHistoryStore, error) {
	loc, err := cfg.Forecast.Location()
	if err != nil {
		return nil, err
	}
	store, err := internalrepo.NewXLSXHistoryStore(cfg.History.Path,
		internalrepo.WithSheet(cfg.History.Sheet),
		internalrepo.WithLocation(loc),
		internalrepo.WithStoreLogger(l),
		internalrepo.WithStoreMetrics(m),
	)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}
	return store, nil
}

// ProvideEngine loads the configured forecast engine.
func ProvideEngine(cfg *config.Config, l *applogger.Logger) (domsvc.ForecastEngine, error) {
	switch cfg.Model.Engine {
	case "remote":
		b := breaker.New("forecast-engine",
			breaker.WithMaxFailures(cfg.Model.BreakerFails),
			breaker.WithTimeout(cfg.Model.BreakerTimeout),
			breaker.WithStateChange(logStateChange(l)),
		)
		return inference.NewRemoteEngine(cfg.Model.RemoteURL,
			inference.WithRemoteTimeout(cfg.Model.RemoteTimeout),
			inference.WithRemoteBreaker(b),
		), nil
	default:
		engine, err := inference.LoadLSTMEngine(cfg.Model.WeightsPath)
		if err != nil {
			return nil, fmt.Errorf("load model weights: %w", err)
		}
		if engine.OutputSize() != cfg.Forecast.Horizon {
			return nil, fmt.Errorf("model predicts %d values, forecast.horizon is %d", engine.OutputSize(), cfg.Forecast.Horizon)
		}
		l.Info("forecast engine loaded",
			applogger.String("engine", "lstm"),
			applogger.String("weights", cfg.Model.WeightsPath),
		)
		return engine, nil
	}
}

// ProvideScaler builds the feature scaler from the configured bounds.
func ProvideScaler(cfg *config.Config) (*features.MinMaxScaler, error) {
	return features.NewMinMaxScaler(models.Triple(cfg.Forecast.ScaleMin), models.Triple(cfg.Forecast.ScaleMax))
}

// ProvideCalendar builds the market calendar, with holidays when skip_holidays is set.
func ProvideCalendar(cfg *config.Config) (*projection.MarketCalendar, error) {
	days, err := cfg.Forecast.Weekdays()
	if err != nil {
		return nil, err
	}
	opts := []projection.CalendarOption{
		projection.WithMarketDays(days),
		projection.WithSearchDays(cfg.Forecast.SearchDays),
	}
	if cfg.Forecast.SkipHolidays && len(cfg.Forecast.Holidays) > 0 {
		hols := make([]*cal.Holiday, 0, len(cfg.Forecast.Holidays))
		for _, h := range cfg.Forecast.Holidays {
			hols = append(hols, projection.FixedHoliday(h.Name, time.Month(h.Month), h.Day))
		}
		opts = append(opts, projection.WithHolidays(hols...))
	}
	return projection.NewMarketCalendar(opts...), nil
}

func ProvideFormatter(cfg *config.Config, calendar *projection.MarketCalendar, clock Clock) *projection.Formatter {
	return projection.NewFormatter(calendar, cfg.Forecast.Horizon, cfg.Forecast.Currency, clock)
}

// ProvideClickHouseClient connects to ClickHouse when it is the event sink, nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.Sink.Backend != usecase.BackendClickHouse {
		return nil, func() {}, nil
	}
	return newClickHouseClient(cfg)
}

func newClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.ClickHouse.Host == "" {
		return nil, nil, fmt.Errorf("clickhouse.host is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(4, 2),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

func newEventStorage(cfg *config.Config, client *pkgch.Client) (*internalrepo.ClickHouseEventStorage, error) {
	store := internalrepo.NewClickHouseEventStorage(client.DB(), cfg.ClickHouse.Table)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

func newQueueClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Queue.Addr,
		Password: cfg.Queue.Password,
		DB:       cfg.Queue.DB,
	})
}

func queueConfig(cfg *config.Config) queue.Config {
	return queue.Config{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}
}

// ProvideEventQueue starts a producer-only Redis queue when redis is the event sink, nil otherwise.
func ProvideEventQueue(cfg *config.Config, l *applogger.Logger) (*queue.RedisQueue, func(), error) {
	if cfg.Sink.Backend != usecase.BackendRedis {
		return nil, func() {}, nil
	}
	client := newQueueClient(cfg)
	q := queue.NewRedisQueue(l, queueConfig(cfg), client, queue.ModeProducerOnly, queue.WithKeyPrefix(cfg.Queue.Prefix))
	if err := q.Start(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("event queue: %w", err)
	}
	return q, func() { _ = client.Close() }, nil
}

// ProvideEventRelay builds the consumer that drains the event queue into ClickHouse.
func ProvideEventRelay(cfg *config.Config, l *applogger.Logger, m repository.Metrics) (*queue.RedisQueue, func(), error) {
	chClient, chCleanup, err := newClickHouseClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := newEventStorage(cfg, chClient)
	if err != nil {
		chCleanup()
		return nil, nil, err
	}

	client := newQueueClient(cfg)
	q := queue.NewRedisQueue(l, queueConfig(cfg), client, queue.ModeConsumerOnly, queue.WithKeyPrefix(cfg.Queue.Prefix))
	q.RegisterJob(usecase.NewEventRelayJob(store, m, l))
	return q, func() {
		_ = client.Close()
		chCleanup()
	}, nil
}

// ProvideEventProcessor routes forecast events to the configured sink.
func ProvideEventProcessor(
	cfg *config.Config,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	eventQueue *queue.RedisQueue,
	m repository.Metrics,
	l *applogger.Logger,
) (*usecase.EventProcessor, func(), error) {
	var (
		pub   repository.EventPublisher
		store repository.EventStorage
	)
	switch cfg.Sink.Backend {
	case usecase.BackendKafka:
		if producer == nil {
			return nil, nil, fmt.Errorf("kafka sink selected without brokers")
		}
		pub = internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
	case usecase.BackendClickHouse:
		if chClient == nil {
			return nil, nil, fmt.Errorf("clickhouse sink selected without a client")
		}
		chStore, err := newEventStorage(cfg, chClient)
		if err != nil {
			return nil, nil, err
		}
		store = chStore
	case usecase.BackendRedis:
		if eventQueue == nil {
			return nil, nil, fmt.Errorf("redis sink selected without a queue")
		}
		pub = internalrepo.NewRedisEventQueue(eventQueue)
	}

	b := breaker.New("event-"+cfg.Sink.Backend,
		breaker.WithMaxFailures(cfg.Sink.BreakerFails),
		breaker.WithTimeout(cfg.Sink.BreakerTimeout),
		breaker.WithStateChange(logStateChange(l)),
	)
	p := usecase.NewEventProcessor(pub, store, m, cfg.Sink.Backend, b)
	return p, p.Close, nil
}

// ProvideResponseCache returns the history response cache: memory only, or
// memory in front of Redis when cache.redis.enabled is set.
func ProvideResponseCache(cfg *config.Config, l *applogger.Logger) (repository.ResponseCache, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		mc := cache.NewMemoryCache(cache.WithMemoryDefaultTTL(cfg.Cache.TTL))
		return mc, func() { _ = mc.Close() }, nil
	}

	rc, err := cache.NewRedisCache(context.Background(),
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("history cache layered over redis", applogger.String("addr", cfg.Cache.Redis.Addr))
	lc := cache.NewLayeredCache(rc, cache.WithLayeredL1TTL(cfg.Cache.TTL))
	return lc, func() { _ = lc.Close() }, nil
}

// ProvideForecaster wires the forecasting use case.
func ProvideForecaster(
	cfg *config.Config,
	store repository.HistoryStore,
	engine domsvc.ForecastEngine,
	scaler *features.MinMaxScaler,
	formatter *projection.Formatter,
	events *usecase.EventProcessor,
	responseCache repository.ResponseCache,
	m repository.Metrics,
	l *applogger.Logger,
	clock Clock,
) *usecase.RevenueForecaster {
	return usecase.NewRevenueForecaster(
		usecase.ForecastSettings{
			Window:      cfg.Forecast.Window,
			Horizon:     cfg.Forecast.Horizon,
			TargetDaily: cfg.Forecast.TargetDaily,
			Prices:      features.Prices{Large: cfg.Forecast.PriceLarge, Small: cfg.Forecast.PriceSmall},
			HistoryTTL:  cfg.Cache.TTL,
		},
		store, engine, scaler, formatter, events, responseCache, m, l, clock,
	)
}

// ProvideForecastHandler builds the HTTP routes, rate limiting /predict when enabled.
func ProvideForecastHandler(
	cfg *config.Config,
	l *applogger.Logger,
	forecaster *usecase.RevenueForecaster,
	store *internalrepo.XLSXHistoryStore,
) *api.ForecastEchoHandler {
	var mw []echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		mw = append(mw, ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}
	return api.NewForecastEchoHandler(l, forecaster, store, api.ForecastHandlerConfig{
		ExportFilename: cfg.History.Filename,
		TargetDaily:    cfg.Forecast.TargetDaily,
		Currency:       cfg.Forecast.Currency,
		EngineKind:     cfg.Model.Engine,
		SinkBackend:    cfg.Sink.Backend,
	}, mw...)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.ForecastEchoHandler) *xhttp.Server {
	metricsPath := cfg.Metrics.Path
	if !cfg.Metrics.Enabled {
		metricsPath = ""
	}
	var origins []string
	if cfg.Server.CORS {
		origins = []string{"*"}
	}
	return xhttp.NewServer([]xhttp.Handler{h},
		xhttp.WithLogger(l),
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithFrontend(cfg.Server.StaticDir, cfg.Server.IndexFile),
		xhttp.WithMetrics(metricsPath, cfg.Metrics.SlowThreshold),
		xhttp.WithCORS(origins...),
	)
}

// ProvideApp assembles the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, store *internalrepo.XLSXHistoryStore) *server.App {
	return server.New(cfg, l, srv, store)
}

func logStateChange(l *applogger.Logger) func(name string, from, to gobreaker.State) {
	return func(name string, from, to gobreaker.State) {
		l.Warn("circuit breaker state changed",
			applogger.String("breaker", name),
			applogger.String("from", from.String()),
			applogger.String("to", to.String()),
		)
	}
}
