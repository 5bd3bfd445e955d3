package repository

import (
	"context"
	"time"

	"RevenueCast/internal/domain/models"
)

// HistoryStore is the date-sorted ledger of past requests.
type HistoryStore interface {
	// Tail returns up to n most recent observations, ascending by date.
	Tail(ctx context.Context, n int) ([]models.Observation, error)
	// Append inserts obs, re-sorts by date and durably persists the ledger.
	Append(ctx context.Context, obs models.Observation) error
	// Since returns observations dated at or after from, ascending.
	Since(ctx context.Context, from time.Time) ([]models.Observation, error)
}

// EventPublisher streams forecast events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev *models.ForecastEvent) error
	Close() error
}

// EventStorage archives forecast events in an analytical store.
type EventStorage interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, ev *models.ForecastEvent) error
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordForecast(status string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordAvgPrediction(value float64)
	RecordHistoryRows(n int)
	RecordEventSent(backend string)
}

// ResponseCache holds serialized read-side responses. Any Get error is a miss.
type ResponseCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}
