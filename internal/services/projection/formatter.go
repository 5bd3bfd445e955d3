package projection

import (
	"time"

	"RevenueCast/internal/domain/errs"
	"RevenueCast/internal/domain/models"
	xutil "RevenueCast/pkg/util"

	"gonum.org/v1/gonum/stat"
)

const DateLayout = "2006-01-02"

// Formatter binds projected values to market dates and builds the report.
type Formatter struct {
	calendar *MarketCalendar
	horizon  int
	currency string
	now      func() time.Time
}

// NewFormatter creates a report formatter. now supplies the scan start day.
func NewFormatter(calendar *MarketCalendar, horizon int, currency string, now func() time.Time) *Formatter {
	if calendar == nil {
		calendar = NewMarketCalendar()
	}
	if now == nil {
		now = time.Now
	}
	return &Formatter{calendar: calendar, horizon: horizon, currency: currency, now: now}
}

// Format produces a report with exactly horizon entries.
func (f *Formatter) Format(values []float64, current, target float64) (*models.Report, error) {
	if len(values) != f.horizon {
		return nil, errs.Shapef("got %d projected values, want %d", len(values), f.horizon)
	}
	days, err := f.calendar.Next(f.now(), f.horizon)
	if err != nil {
		return nil, err
	}

	entries := make([]models.ForecastEntry, len(values))
	for i, v := range values {
		deficit := target - v
		entries[i] = models.ForecastEntry{
			Weekday:     days[i].Label,
			Date:        days[i].Date.Format(DateLayout),
			Value:       v,
			Deficit:     deficit,
			Status:      models.StatusForDeficit(deficit),
			DeficitText: xutil.FormatSignedAmount(deficit, f.currency),
		}
	}

	avg := stat.Mean(values, nil)
	avgDeficit := target - avg
	return &models.Report{
		Entries:        entries,
		Target:         target,
		CurrentRevenue: current,
		AvgPrediction:  avg,
		AvgDeficit:     avgDeficit,
		OverallStatus:  models.StatusForDeficit(avgDeficit),
	}, nil
}
