//go:build wireinject
// +build wireinject

package di

import (
	"RevenueCast/internal/domain/repository"
	internalrepo "RevenueCast/internal/repository"
	"RevenueCast/internal/usecase"
	"RevenueCast/pkg/config"
	"RevenueCast/pkg/queue"
	"RevenueCast/pkg/server"

	"github.com/google/wire"
)

var observabilitySet = wire.NewSet(
	ProvideKafkaProducer,
	ProvideLogger,
	ProvideMetrics,
)

var infraSet = wire.NewSet(
	observabilitySet,
	ProvideClock,
	ProvideHistoryStore,
	wire.Bind(new(repository.HistoryStore), new(*internalrepo.XLSXHistoryStore)),
)

var forecastSet = wire.NewSet(
	infraSet,
	ProvideClickHouseClient,
	ProvideEventQueue,
	ProvideEventProcessor,
	ProvideResponseCache,
	ProvideEngine,
	ProvideScaler,
	ProvideCalendar,
	ProvideFormatter,
	ProvideForecaster,
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		forecastSet,
		ProvideForecastHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeForecaster wires the forecasting pipeline without the HTTP layer.
func InitializeForecaster(cfg *config.Config) (*usecase.RevenueForecaster, func(), error) {
	wire.Build(forecastSet)
	return nil, nil, nil
}

// InitializeHistoryStore opens only the ledger.
func InitializeHistoryStore(cfg *config.Config) (*internalrepo.XLSXHistoryStore, func(), error) {
	wire.Build(infraSet)
	return nil, nil, nil
}

// InitializeEventRelay wires the consumer that archives queued forecast events.
func InitializeEventRelay(cfg *config.Config) (*queue.RedisQueue, func(), error) {
	wire.Build(observabilitySet, ProvideEventRelay)
	return nil, nil, nil
}
