package inference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"RevenueCast/internal/domain/models"
	"RevenueCast/pkg/breaker"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteEngineInfer(t *testing.T) {
	var got remoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predictions":[0.1,0.2,0.3,0.4,0.5,0.6,0.7,0.8]}`))
	}))
	defer srv.Close()

	seq := make(models.Sequence, 24)
	seq[23] = models.Triple{0.01, 0.005, 0.0125}

	out, err := NewRemoteEngine(srv.URL + "/").Infer(context.Background(), seq)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}, out)
	require.Len(t, got.Sequence, 24)
	assert.Equal(t, []float64{0.01, 0.005, 0.0125}, got.Sequence[23])
}

func TestRemoteEngineBreakerOpens(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	engine := NewRemoteEngine(srv.URL, WithRemoteBreaker(breaker.New("test", breaker.WithMaxFailures(2))))
	for i := 0; i < 3; i++ {
		_, err := engine.Infer(context.Background(), make(models.Sequence, 24))
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRemoteEngineRequiresURL(t *testing.T) {
	_, err := NewRemoteEngine("").Infer(context.Background(), nil)
	assert.Error(t, err)
}
