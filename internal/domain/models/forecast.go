package models

import "time"

// Status classifies a projected value against the daily target.
type Status string

const (
	StatusShort Status = "KURANG"
	StatusMet   Status = "TERCAPAI"
)

// StatusForDeficit applies the threshold rule: a positive deficit is short, zero or less is met.
func StatusForDeficit(deficit float64) Status {
	if deficit > 0 {
		return StatusShort
	}
	return StatusMet
}

// ForecastEntry is one dated projection in a report.
type ForecastEntry struct {
	Weekday     string  `json:"hari"`
	Date        string  `json:"tanggal"`
	Value       float64 `json:"nilai"`
	Deficit     float64 `json:"defisit"`
	Status      Status  `json:"status"`
	DeficitText string  `json:"defisit_rupiah"`
}

// Report is the structured forecast returned to callers. Field names are
// consumed by existing clients and must not change.
type Report struct {
	Entries        []ForecastEntry `json:"predictions"`
	Target         float64         `json:"target_harian"`
	CurrentRevenue float64         `json:"current_revenue"`
	AvgPrediction  float64         `json:"avg_prediction"`
	AvgDeficit     float64         `json:"avg_deficit"`
	OverallStatus  Status          `json:"status_saat_ini"`
}

// ForecastEventType is the queue message type carrying a ForecastEvent.
const ForecastEventType = "forecast_event"

// ForecastEvent is the record dispatched to the event backend after a forecast is stored.
type ForecastEvent struct {
	ID             string          `json:"id"`
	RecordedAt     time.Time       `json:"recorded_at"`
	LedgerDate     string          `json:"ledger_date"`
	LargeCount     float64         `json:"ternak_besar"`
	SmallCount     float64         `json:"ternak_kecil"`
	CurrentRevenue float64         `json:"current_revenue"`
	Target         float64         `json:"target_harian"`
	AvgPrediction  float64         `json:"avg_prediction"`
	AvgDeficit     float64         `json:"avg_deficit"`
	Status         Status          `json:"status_saat_ini"`
	Entries        []ForecastEntry `json:"predictions"`
}
