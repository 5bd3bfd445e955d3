package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingJob struct {
	payloads []json.RawMessage
	err      error
}

func (j *recordingJob) Name() string { return "recorder" }
func (j *recordingJob) Type() string { return "forecast_event" }
func (j *recordingJob) Handle(_ context.Context, payload interface{}) error {
	j.payloads = append(j.payloads, payload.(json.RawMessage))
	return j.err
}

var fixedNow = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

func newTestQueue(t *testing.T, mode Mode) (*RedisQueue, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	q := NewRedisQueue(nil, Config{RetryLimit: 2, RetryDelay: time.Minute}, db, mode, WithKeyPrefix("test:q"))
	q.newID = func() string { return "id-1" }
	q.now = func() time.Time { return fixedNow }
	return q, mock
}

func encode(t *testing.T, msg Message) []byte {
	t.Helper()
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return b
}

func TestEnqueue(t *testing.T) {
	q, mock := newTestQueue(t, ModeProducerOnly)

	require.Error(t, q.Enqueue(context.Background(), "forecast_event", 1), "queue not started")

	mock.ExpectPing().SetVal("PONG")
	require.NoError(t, q.Start())

	want := encode(t, Message{
		ID:        "id-1",
		Type:      "forecast_event",
		Payload:   json.RawMessage(`{"n":3}`),
		Timestamp: fixedNow,
	})
	mock.ExpectLPush("test:q:messages", want).SetVal(1)

	require.NoError(t, q.Enqueue(context.Background(), "forecast_event", map[string]int{"n": 3}))
	require.NoError(t, q.Stop(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartPingFailure(t *testing.T) {
	q, mock := newTestQueue(t, ModeProducerOnly)
	mock.ExpectPing().SetErr(errors.New("connection refused"))

	err := q.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestStats(t *testing.T) {
	q, mock := newTestQueue(t, ModeProducerOnly)
	mock.ExpectLLen("test:q:messages").SetVal(4)
	mock.ExpectZCard("test:q:retry").SetVal(1)
	mock.ExpectLLen("test:q:dead").SetVal(2)

	s, err := q.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Pending: 4, Retry: 1, Dead: 2}, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcess(t *testing.T) {
	base := Message{ID: "m1", Type: "forecast_event", Payload: json.RawMessage(`{"a":1}`), Timestamp: fixedNow}

	t.Run("success", func(t *testing.T) {
		q, mock := newTestQueue(t, ModeConsumerOnly)
		job := &recordingJob{}
		q.RegisterJob(job)

		q.process(context.Background(), string(encode(t, base)))

		require.Len(t, job.payloads, 1)
		assert.JSONEq(t, `{"a":1}`, string(job.payloads[0]))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure schedules retry", func(t *testing.T) {
		q, mock := newTestQueue(t, ModeConsumerOnly)
		q.RegisterJob(&recordingJob{err: errors.New("clickhouse down")})

		retried := base
		retried.Attempts = 1
		mock.ExpectZAdd("test:q:retry", redis.Z{
			Score:  float64(fixedNow.Add(time.Minute).Unix()),
			Member: encode(t, retried),
		}).SetVal(1)

		q.process(context.Background(), string(encode(t, base)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exhausted retries go to dead letter", func(t *testing.T) {
		q, mock := newTestQueue(t, ModeConsumerOnly)
		q.RegisterJob(&recordingJob{err: errors.New("clickhouse down")})

		exhausted := base
		exhausted.Attempts = 2
		mock.ExpectLPush("test:q:dead", encode(t, exhausted)).SetVal(1)

		q.process(context.Background(), string(encode(t, exhausted)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown type goes to dead letter", func(t *testing.T) {
		q, mock := newTestQueue(t, ModeConsumerOnly)

		mock.ExpectLPush("test:q:dead", encode(t, base)).SetVal(1)

		q.process(context.Background(), string(encode(t, base)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRegisterJobIgnoredForProducer(t *testing.T) {
	q, _ := newTestQueue(t, ModeProducerOnly)
	q.RegisterJob(&recordingJob{})
	assert.Empty(t, q.jobs)
}

func TestParsePayload(t *testing.T) {
	type event struct {
		ID string `json:"id"`
	}

	got, err := ParsePayload[event](json.RawMessage(`{"id":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "x", got.ID)

	got, err = ParsePayload[event](&event{ID: "y"})
	require.NoError(t, err)
	assert.Equal(t, "y", got.ID)

	_, err = ParsePayload[event](42)
	assert.Error(t, err)
}
