package inference

import (
	"context"
	"fmt"
	"math"

	"RevenueCast/internal/domain/errs"
	"RevenueCast/internal/domain/models"
	"RevenueCast/internal/domain/service"
)

// ShapeGuard enforces the window x features input and horizon-length output
// around any engine. Length mismatches are errs.ErrShape, engine failures errs.ErrInference.
type ShapeGuard struct {
	engine  service.ForecastEngine
	window  int
	horizon int
}

// NewShapeGuard wraps engine with the given sequence window and forecast horizon.
func NewShapeGuard(engine service.ForecastEngine, window, horizon int) *ShapeGuard {
	return &ShapeGuard{engine: engine, window: window, horizon: horizon}
}

// Infer checks the input shape, calls the engine and checks its output.
func (g *ShapeGuard) Infer(ctx context.Context, seq models.Sequence) ([]float64, error) {
	if len(seq) != g.window {
		return nil, errs.Shapef("sequence has %d steps, want %d", len(seq), g.window)
	}
	out, err := g.engine.Infer(ctx, seq)
	if err != nil {
		return nil, errs.Inference(err)
	}
	if len(out) != g.horizon {
		return nil, errs.Shapef("engine returned %d values, want %d", len(out), g.horizon)
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errs.Inference(fmt.Errorf("engine returned non-finite value at %d", i))
		}
	}
	return out, nil
}
