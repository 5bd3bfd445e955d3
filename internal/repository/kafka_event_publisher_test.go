package repository

import (
	"context"
	"testing"

	"RevenueCast/internal/domain/models"
	pkgkafka "RevenueCast/pkg/kafka"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	msgs []kafka.Message
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error { return nil }

func TestKafkaEventPublisher(t *testing.T) {
	w := &memWriter{}
	producer, err := pkgkafka.NewProducer(pkgkafka.WithWriter(w))
	require.NoError(t, err)

	pub := NewKafkaEventPublisher(producer, "livestock.forecasts")
	require.NoError(t, pub.Publish(context.Background(), sampleEvent()))
	require.NoError(t, pub.Close())

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "livestock.forecasts", msg.Topic)
	assert.Equal(t, "2024-01-01", string(msg.Key))

	var got models.ForecastEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "7f1c", got.ID)
	assert.Equal(t, models.StatusShort, got.Status)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "(- Rp 406,071)", got.Entries[0].DeficitText)
}
