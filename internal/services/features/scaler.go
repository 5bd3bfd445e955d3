package features

import (
	"fmt"

	"RevenueCast/internal/domain/models"
)

var (
	DefaultScaleMin = models.Triple{0, 0, 0}
	DefaultScaleMax = models.Triple{1000, 1000, 2_000_000}
)

// MinMaxScaler maps each feature linearly onto [0,1] using fixed reference bounds.
// Values outside the bounds are extrapolated, never clamped.
type MinMaxScaler struct {
	min   models.Triple
	scale models.Triple
}

// NewMinMaxScaler builds a scaler from per-feature bounds. Every max must exceed its min.
func NewMinMaxScaler(min, max models.Triple) (*MinMaxScaler, error) {
	s := &MinMaxScaler{min: min}
	for i := 0; i < models.NumFeatures; i++ {
		rng := max[i] - min[i]
		if rng <= 0 {
			return nil, fmt.Errorf("feature %d: max %v must be greater than min %v", i, max[i], min[i])
		}
		s.scale[i] = rng
	}
	return s, nil
}

// NewDefaultScaler returns the scaler over the stock livestock and revenue ranges.
func NewDefaultScaler() *MinMaxScaler {
	s, _ := NewMinMaxScaler(DefaultScaleMin, DefaultScaleMax)
	return s
}

// Transform normalizes a single triple.
func (s *MinMaxScaler) Transform(t models.Triple) models.Triple {
	var out models.Triple
	for i := range t {
		out[i] = (t[i] - s.min[i]) / s.scale[i]
	}
	return out
}

// TransformSequence normalizes every step of seq into a new sequence.
func (s *MinMaxScaler) TransformSequence(seq models.Sequence) models.Sequence {
	out := make(models.Sequence, len(seq))
	for i, t := range seq {
		out[i] = s.Transform(t)
	}
	return out
}

// Bounds returns the reference min and max rows.
func (s *MinMaxScaler) Bounds() (models.Triple, models.Triple) {
	var max models.Triple
	for i := range max {
		max[i] = s.min[i] + s.scale[i]
	}
	return s.min, max
}
