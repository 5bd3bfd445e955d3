package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordForecast("KURANG")
	r.RecordForecast("KURANG")
	r.RecordForecast("TERCAPAI")
	r.RecordError("validation")
	r.RecordAvgPrediction(70119)
	r.RecordHistoryRows(42)
	r.RecordEventSent("kafka")
	r.RecordLatency("predict", 0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.forecasts.WithLabelValues("KURANG")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.forecasts.WithLabelValues("TERCAPAI")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("validation")))
	assert.Equal(t, 70119.0, testutil.ToFloat64(r.avgPrediction))
	assert.Equal(t, 42.0, testutil.ToFloat64(r.historyRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.eventsSent.WithLabelValues("kafka")))

	n, err := testutil.GatherAndCount(reg, "livestock_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecorderRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWithRegistry(reg)
	assert.Panics(t, func() { NewWithRegistry(reg) })
}
