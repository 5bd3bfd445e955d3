package usecase

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"RevenueCast/internal/domain/errs"
	"RevenueCast/internal/domain/models"
	drepo "RevenueCast/internal/domain/repository"
	domsvc "RevenueCast/internal/domain/service"
	"RevenueCast/internal/services/features"
	"RevenueCast/internal/services/inference"
	"RevenueCast/internal/services/projection"
	"RevenueCast/pkg/logger"
	xutil "RevenueCast/pkg/util"

	"github.com/google/uuid"
)

// NegativeCountMessage is returned to callers sending negative livestock counts.
const NegativeCountMessage = "Jumlah ternak tidak boleh negatif"

const historyCachePrefix = "history:"

// ForecastSettings are the business constants of one deployment.
type ForecastSettings struct {
	Window      int
	Horizon     int
	TargetDaily float64
	Prices      features.Prices
	HistoryTTL  time.Duration
}

// ForecastResult is the outcome of a recorded prediction.
type ForecastResult struct {
	Report   *models.Report
	Recorded models.Observation
	EventID  string
}

// RevenueForecaster runs the forecasting pipeline and records each request in the ledger.
// Everything it holds is read-only after construction except the store.
type RevenueForecaster struct {
	settings  ForecastSettings
	store     drepo.HistoryStore
	engine    domsvc.ForecastEngine
	scaler    *features.MinMaxScaler
	formatter *projection.Formatter
	events    *EventProcessor
	cache     drepo.ResponseCache
	metrics   drepo.Metrics
	log       *logger.Logger
	now       func() time.Time

	// bumped after every append; part of the history cache key
	historyGen atomic.Uint64
}

// NewRevenueForecaster wires the pipeline. The engine is wrapped in a shape guard.
// events and cache may be nil.
func NewRevenueForecaster(
	settings ForecastSettings,
	store drepo.HistoryStore,
	engine domsvc.ForecastEngine,
	scaler *features.MinMaxScaler,
	formatter *projection.Formatter,
	events *EventProcessor,
	cache drepo.ResponseCache,
	metrics drepo.Metrics,
	log *logger.Logger,
	now func() time.Time,
) *RevenueForecaster {
	if now == nil {
		now = time.Now
	}
	f := &RevenueForecaster{
		settings:  settings,
		store:     store,
		engine:    inference.NewShapeGuard(engine, settings.Window, settings.Horizon),
		scaler:    scaler,
		formatter: formatter,
		events:    events,
		cache:     cache,
		metrics:   metrics,
		log:       log,
		now:       now,
	}
	// a restarted process must not pick up keys left in a shared cache
	f.historyGen.Store(uint64(time.Now().UnixNano()))
	return f
}

// ValidateCounts rejects negative or non-finite livestock counts.
func ValidateCounts(large, small float64) error {
	for _, v := range []float64{large, small} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.Validationf("jumlah ternak harus berupa angka")
		}
		if v < 0 {
			return errs.Validationf(NegativeCountMessage)
		}
	}
	return nil
}

// Forecast computes the report for the given counts without touching the ledger.
func (f *RevenueForecaster) Forecast(ctx context.Context, large, small float64) (*models.Report, error) {
	start := time.Now()
	report, err := f.forecast(ctx, large, small)
	f.metrics.RecordLatency("forecast", time.Since(start).Seconds())
	if err != nil {
		f.metrics.RecordError(errs.Kind(err))
		return nil, err
	}
	return report, nil
}

func (f *RevenueForecaster) forecast(ctx context.Context, large, small float64) (*models.Report, error) {
	if err := ValidateCounts(large, small); err != nil {
		return nil, err
	}
	current := f.settings.Prices.CurrentRevenue(large, small)

	history, err := f.store.Tail(ctx, f.settings.Window)
	if err != nil {
		return nil, errs.Store("tail", err)
	}

	seq := features.BuildSequence(history, f.settings.Window, large, small, current)
	raw, err := f.engine.Infer(ctx, f.scaler.TransformSequence(seq))
	if err != nil {
		return nil, err
	}

	values := projection.ProjectAll(raw, current, f.settings.TargetDaily)
	return f.formatter.Format(values, current, f.settings.TargetDaily)
}

// Predict forecasts, appends today's observation with the average projection as
// revenue, and dispatches a forecast event. Event failures do not fail the call.
func (f *RevenueForecaster) Predict(ctx context.Context, large, small float64) (*ForecastResult, error) {
	start := time.Now()
	report, err := f.forecast(ctx, large, small)
	if err != nil {
		f.metrics.RecordError(errs.Kind(err))
		f.log.Warn("forecast failed",
			logger.String("kind", errs.Kind(err)),
			logger.Float64("ternak_besar", large),
			logger.Float64("ternak_kecil", small),
			logger.Error(err),
		)
		return nil, err
	}

	now := f.now()
	obs := models.Observation{
		Date:       xutil.StartOfDay(now),
		LargeCount: large,
		SmallCount: small,
		Revenue:    report.AvgPrediction,
	}
	if err := f.store.Append(ctx, obs); err != nil {
		err = errs.Store("append", err)
		f.metrics.RecordError(errs.Kind(err))
		f.log.Error("append history failed", logger.Error(err))
		return nil, err
	}
	f.invalidateHistory(ctx)

	f.metrics.RecordForecast(string(report.OverallStatus))
	f.metrics.RecordAvgPrediction(report.AvgPrediction)
	f.metrics.RecordLatency("predict", time.Since(start).Seconds())

	res := &ForecastResult{Report: report, Recorded: obs}
	res.EventID = f.dispatch(ctx, now, obs, report)

	f.log.Info("forecast recorded",
		logger.String("date", obs.Date.Format(projection.DateLayout)),
		logger.Float64("current_revenue", report.CurrentRevenue),
		logger.Float64("avg_prediction", report.AvgPrediction),
		logger.String("status", string(report.OverallStatus)),
	)
	return res, nil
}

func (f *RevenueForecaster) dispatch(ctx context.Context, now time.Time, obs models.Observation, report *models.Report) string {
	if f.events == nil || f.events.Backend() == BackendNone {
		return ""
	}
	ev := &models.ForecastEvent{
		ID:             uuid.NewString(),
		RecordedAt:     now.UTC(),
		LedgerDate:     obs.Date.Format(projection.DateLayout),
		LargeCount:     obs.LargeCount,
		SmallCount:     obs.SmallCount,
		CurrentRevenue: report.CurrentRevenue,
		Target:         report.Target,
		AvgPrediction:  report.AvgPrediction,
		AvgDeficit:     report.AvgDeficit,
		Status:         report.OverallStatus,
		Entries:        report.Entries,
	}

	// detached from request cancellation, bounded by its own timeout
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := f.events.Process(sendCtx, ev); err != nil {
		f.log.Warn("forecast event not delivered",
			logger.String("event_id", ev.ID),
			logger.String("backend", f.events.Backend()),
			logger.Error(err),
		)
		return ""
	}
	return ev.ID
}

// History returns daily revenue for the last days calendar days including today.
func (f *RevenueForecaster) History(ctx context.Context, days int) ([]models.HistoryPoint, error) {
	if days <= 0 {
		return nil, errs.Validationf("days must be positive")
	}
	today := xutil.StartOfDay(f.now())
	gen := f.historyGen.Load()
	key := fmt.Sprintf("%s%d:%d:%s", historyCachePrefix, gen, days, today.Format(projection.DateLayout))

	if f.cache != nil {
		var cached []models.HistoryPoint
		if err := f.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := f.store.Since(ctx, today.AddDate(0, 0, -(days-1)))
	if err != nil {
		err = errs.Store("since", err)
		f.metrics.RecordError(errs.Kind(err))
		return nil, err
	}
	points := make([]models.HistoryPoint, len(rows))
	for i, r := range rows {
		points[i] = models.HistoryPoint{Date: r.Date.Format(projection.DateLayout), Revenue: r.Revenue}
	}

	// skip the write when an append happened after the read
	if f.cache != nil && f.historyGen.Load() == gen {
		if err := f.cache.Set(ctx, key, points, f.settings.HistoryTTL); err != nil {
			f.log.Debug("history cache set failed", logger.Error(err))
		}
	}
	return points, nil
}

func (f *RevenueForecaster) invalidateHistory(ctx context.Context) {
	f.historyGen.Add(1)
	if f.cache == nil {
		return
	}
	if err := f.cache.DeleteByPattern(ctx, historyCachePrefix+"*"); err != nil {
		f.log.Warn("history cache invalidation failed", logger.Error(err))
	}
}
