package inference

import (
	"context"

	"RevenueCast/internal/domain/models"
)

// Func adapts an ordinary function to the ForecastEngine interface.
type Func func(ctx context.Context, seq models.Sequence) ([]float64, error)

// Infer calls f.
func (f Func) Infer(ctx context.Context, seq models.Sequence) ([]float64, error) {
	return f(ctx, seq)
}

// Constant returns an engine that always yields n copies of v.
func Constant(v float64, n int) Func {
	return func(ctx context.Context, _ models.Sequence) ([]float64, error) {
		out := make([]float64, n)
		for i := range out {
			out[i] = v
		}
		return out, nil
	}
}
