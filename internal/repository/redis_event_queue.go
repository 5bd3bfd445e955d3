package repository

import (
	"context"
	"time"

	"RevenueCast/internal/domain/models"
	domrepo "RevenueCast/internal/domain/repository"
	"RevenueCast/pkg/queue"
)

// EventQueue is the producer side of a Redis event queue.
type EventQueue interface {
	queue.Enqueuer
	Stop(ctx context.Context) error
}

// RedisEventQueue implements EventPublisher by enqueueing events for the relay
// to archive later.
type RedisEventQueue struct {
	q EventQueue
}

var _ domrepo.EventPublisher = (*RedisEventQueue)(nil)

func NewRedisEventQueue(q EventQueue) *RedisEventQueue {
	return &RedisEventQueue{q: q}
}

func (p *RedisEventQueue) Publish(ctx context.Context, ev *models.ForecastEvent) error {
	return p.q.Enqueue(ctx, models.ForecastEventType, ev)
}

func (p *RedisEventQueue) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.q.Stop(ctx)
}
