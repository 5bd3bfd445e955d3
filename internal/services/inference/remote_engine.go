package inference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"RevenueCast/internal/domain/models"
	"RevenueCast/pkg/breaker"
	xhttp "RevenueCast/pkg/http"
)

const forecastPath = "/forecast"

type remoteRequest struct {
	Sequence [][]float64 `json:"sequence"`
}

type remoteResponse struct {
	Predictions []float64 `json:"predictions"`
}

// RemoteOption configures RemoteEngine.
type RemoteOption func(*RemoteEngine)

// RemoteEngine delegates inference to an external model server over HTTP.
// Calls are not retried; repeated failures open the circuit breaker.
type RemoteEngine struct {
	baseURL string
	timeout time.Duration
	client  *xhttp.Client
	breaker *breaker.Breaker
}

// NewRemoteEngine creates an engine posting to baseURL + "/forecast".
func NewRemoteEngine(baseURL string, opts ...RemoteOption) *RemoteEngine {
	e := &RemoteEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		e.client = xhttp.NewClient(xhttp.WithTimeout(e.timeout))
	}
	if e.breaker == nil {
		e.breaker = breaker.New("remote-engine")
	}
	return e
}

// WithRemoteTimeout sets the per-call HTTP timeout.
func WithRemoteTimeout(d time.Duration) RemoteOption {
	return func(e *RemoteEngine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithRemoteClient overrides the HTTP client.
func WithRemoteClient(c *xhttp.Client) RemoteOption {
	return func(e *RemoteEngine) { e.client = c }
}

// WithRemoteBreaker overrides the circuit breaker.
func WithRemoteBreaker(b *breaker.Breaker) RemoteOption {
	return func(e *RemoteEngine) { e.breaker = b }
}

// Infer posts the sequence and returns the server's predictions.
func (e *RemoteEngine) Infer(ctx context.Context, seq models.Sequence) ([]float64, error) {
	if e.baseURL == "" {
		return nil, fmt.Errorf("remote engine url not configured")
	}
	var resp remoteResponse
	err := e.breaker.Do(func() error {
		return e.client.PostJSON(ctx, e.baseURL+forecastPath, remoteRequest{Sequence: seq.Rows()}, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", forecastPath, err)
	}
	return resp.Predictions, nil
}
