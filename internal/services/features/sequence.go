package features

import "RevenueCast/internal/domain/models"

// BuildSequence assembles the fixed-length model window from history (ascending by date)
// and the current request. With no history the current counts fill every step with zero
// revenue. Short history is left-padded with all-zero triples. The last step always carries
// the request's counts and currentRevenue, even when a same-day row exists.
func BuildSequence(history []models.Observation, window int, large, small, currentRevenue float64) models.Sequence {
	if window <= 0 {
		return nil
	}
	seq := make(models.Sequence, window)

	if len(history) == 0 {
		for i := range seq {
			seq[i] = models.Triple{large, small, 0}
		}
	} else {
		recent := history
		if len(recent) > window {
			recent = recent[len(recent)-window:]
		}
		pad := window - len(recent)
		// seq[:pad] is already zero-valued
		for i, obs := range recent {
			seq[pad+i] = obs.Features()
		}
	}

	seq[window-1] = models.Triple{large, small, currentRevenue}
	return seq
}
