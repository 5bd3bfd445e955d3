package features

import (
	"testing"
	"time"

	"RevenueCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeHistory(n int) []models.Observation {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Observation, n)
	for i := range out {
		out[i] = models.Observation{
			Date:       start.AddDate(0, 0, i),
			LargeCount: float64(i + 1),
			SmallCount: float64(2 * (i + 1)),
			Revenue:    float64(1000 * (i + 1)),
		}
	}
	return out
}

func TestBuildSequenceLength(t *testing.T) {
	testData := map[string]struct {
		history int
	}{
		"empty":  {0},
		"one":    {1},
		"short":  {10},
		"exact":  {24},
		"longer": {60},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			seq := BuildSequence(makeHistory(td.history), 24, 7, 9, 23000)
			require.Len(t, seq, 24)
			assert.Equal(t, models.Triple{7, 9, 23000}, seq[23])
		})
	}
}

func TestBuildSequenceEmptyHistoryRepeatsCounts(t *testing.T) {
	seq := BuildSequence(nil, 24, 5, 3, 0)
	require.Len(t, seq, 24)
	for i, step := range seq {
		assert.Equal(t, models.Triple{5, 3, 0}, step, "step %d", i)
	}
}

func TestBuildSequenceEmptyHistoryLastStepRevenue(t *testing.T) {
	seq := BuildSequence(nil, 24, 10, 5, 25000)
	for i := 0; i < 23; i++ {
		assert.Equal(t, models.Triple{10, 5, 0}, seq[i])
	}
	assert.Equal(t, models.Triple{10, 5, 25000}, seq[23])
}

func TestBuildSequenceShortHistoryPadding(t *testing.T) {
	history := makeHistory(10)
	seq := BuildSequence(history, 24, 42, 17, 101000)
	require.Len(t, seq, 24)

	for i := 0; i < 14; i++ {
		assert.Equal(t, models.Triple{}, seq[i], "pad step %d", i)
	}
	for i := 0; i < 9; i++ {
		assert.Equal(t, history[i].Features(), seq[14+i])
	}
	assert.Equal(t, models.Triple{42, 17, 101000}, seq[23])
}

func TestBuildSequenceKeepsMostRecent(t *testing.T) {
	history := makeHistory(30)
	seq := BuildSequence(history, 24, 1, 1, 3000)
	assert.Equal(t, history[6].Features(), seq[0])
	assert.Equal(t, history[28].Features(), seq[22])
}

func TestBuildSequenceOverridesSameDayRow(t *testing.T) {
	history := makeHistory(3)
	history[2].Date = time.Now()
	seq := BuildSequence(history, 24, 100, 200, 400000)
	assert.Equal(t, models.Triple{100, 200, 400000}, seq[23])
	assert.Equal(t, history[1].Features(), seq[22])
}

func TestBuildSequenceInvalidWindow(t *testing.T) {
	assert.Nil(t, BuildSequence(makeHistory(3), 0, 1, 1, 1))
}
