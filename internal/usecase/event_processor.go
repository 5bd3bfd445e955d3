package usecase

import (
	"context"
	"fmt"
	"time"

	"RevenueCast/internal/domain/models"
	drepo "RevenueCast/internal/domain/repository"
	"RevenueCast/pkg/breaker"
)

// Event backends.
const (
	BackendNone       = "none"
	BackendKafka      = "kafka"
	BackendClickHouse = "clickhouse"
	BackendRedis      = "redis"
)

// EventProcessor routes forecast events to the configured backend.
type EventProcessor struct {
	pub     drepo.EventPublisher
	store   drepo.EventStorage
	metrics drepo.Metrics
	backend string
	breaker *breaker.Breaker
}

// NewEventProcessor creates a new EventProcessor instance. pub or store may be nil
// when their backend is not selected.
func NewEventProcessor(
	pub drepo.EventPublisher,
	store drepo.EventStorage,
	metrics drepo.Metrics,
	backend string,
	b *breaker.Breaker,
) *EventProcessor {
	if b == nil {
		b = breaker.New("event-" + backend)
	}
	return &EventProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		breaker: b,
	}
}

// Backend returns the configured backend name.
func (p *EventProcessor) Backend() string { return p.backend }

// Process sends a single event to the configured backend.
func (p *EventProcessor) Process(ctx context.Context, ev *models.ForecastEvent) error {
	if ev == nil {
		return fmt.Errorf("event is nil")
	}
	if p.backend == BackendNone || p.backend == "" {
		return nil
	}

	start := time.Now()
	err := p.breaker.Do(func() error {
		switch p.backend {
		case BackendKafka, BackendRedis:
			if p.pub == nil {
				return fmt.Errorf("%s publisher not configured", p.backend)
			}
			return p.pub.Publish(ctx, ev)
		case BackendClickHouse:
			if p.store == nil {
				return fmt.Errorf("clickhouse storage not configured")
			}
			return p.store.Store(ctx, ev)
		default:
			return fmt.Errorf("unknown backend: %s", p.backend)
		}
	})

	if err != nil {
		p.metrics.RecordError("event")
		return fmt.Errorf("process event: %w", err)
	}

	p.metrics.RecordEventSent(p.backend)
	p.metrics.RecordLatency("event", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *EventProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
