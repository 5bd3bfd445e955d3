package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Enqueuer pushes typed payloads onto a queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
}

// Job handles one message type.
type Job interface {
	Name() string
	Type() string
	// Handle processes one payload, the message's raw JSON. Errors are retried.
	Handle(ctx context.Context, payload interface{}) error
}

// Config contains the configuration for the queue.
type Config struct {
	Workers    int           // consumer goroutines
	RetryLimit int           // retries before a message goes to the dead letter list
	RetryDelay time.Duration // delay before a failed message is re-queued
}

// Message is the envelope stored in Redis. Payload keeps the raw JSON so
// consumers decode it into their own types.
type Message struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	Timestamp time.Time       `json:"timestamp"`
}

// Stats reports queue depth.
type Stats struct {
	Pending int64 `json:"pending"`
	Retry   int64 `json:"retry"`
	Dead    int64 `json:"dead"`
}

// ParsePayload decodes a job payload into T.
func ParsePayload[T any](payload interface{}) (*T, error) {
	var result T

	switch p := payload.(type) {
	case *T:
		return p, nil
	case T:
		return &p, nil
	case json.RawMessage:
		if err := json.Unmarshal(p, &result); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		return &result, nil
	case []byte:
		if err := json.Unmarshal(p, &result); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		return &result, nil
	default:
		return nil, fmt.Errorf("invalid payload type: %T", payload)
	}
}
