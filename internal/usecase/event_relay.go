package usecase

import (
	"context"
	"fmt"
	"time"

	"RevenueCast/internal/domain/models"
	drepo "RevenueCast/internal/domain/repository"
	"RevenueCast/pkg/logger"
	"RevenueCast/pkg/queue"
)

// BackendRelay labels events archived by the relay in metrics.
const BackendRelay = "relay"

// EventRelayJob drains queued forecast events into the analytical store.
type EventRelayJob struct {
	store   drepo.EventStorage
	metrics drepo.Metrics
	log     *logger.Logger
}

var _ queue.Job = (*EventRelayJob)(nil)

func NewEventRelayJob(store drepo.EventStorage, metrics drepo.Metrics, log *logger.Logger) *EventRelayJob {
	return &EventRelayJob{store: store, metrics: metrics, log: log}
}

func (j *EventRelayJob) Name() string { return "forecast-event-relay" }

func (j *EventRelayJob) Type() string { return models.ForecastEventType }

// Handle stores one event. Errors are retried by the queue.
func (j *EventRelayJob) Handle(ctx context.Context, payload interface{}) error {
	ev, err := queue.ParsePayload[models.ForecastEvent](payload)
	if err != nil {
		return fmt.Errorf("decode forecast event: %w", err)
	}
	start := time.Now()
	if err := j.store.Store(ctx, ev); err != nil {
		j.metrics.RecordError("relay")
		return err
	}
	j.metrics.RecordEventSent(BackendRelay)
	j.metrics.RecordLatency("relay", time.Since(start).Seconds())
	j.log.Debug("forecast event archived", logger.String("event_id", ev.ID), logger.String("ledger_date", ev.LedgerDate))
	return nil
}
