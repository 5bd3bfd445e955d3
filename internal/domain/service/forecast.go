package service

import (
	"context"

	"RevenueCast/internal/domain/models"
)

// ForecastEngine maps a normalized feature window to a raw prediction vector.
// Implementations must be deterministic for fixed weights and free of side effects.
type ForecastEngine interface {
	Infer(ctx context.Context, seq models.Sequence) ([]float64, error)
}
