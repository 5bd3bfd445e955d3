package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"RevenueCast/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() *models.ForecastEvent {
	return &models.ForecastEvent{
		ID:             "7f1c",
		RecordedAt:     time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC),
		LedgerDate:     "2024-01-01",
		LargeCount:     10,
		SmallCount:     5,
		CurrentRevenue: 25000,
		Target:         476190,
		AvgPrediction:  70119,
		AvgDeficit:     406071,
		Status:         models.StatusShort,
		Entries: []models.ForecastEntry{
			{Weekday: "Selasa", Date: "2024-01-02", Value: 70119, Deficit: 406071, Status: models.StatusShort, DeficitText: "(- Rp 406,071)"},
		},
	}
}

func TestClickHouseEventStorageStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ev := sampleEvent()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO forecast_events (" + eventColumns + ")")).
		WithArgs(ev.ID, ev.RecordedAt, "2024-01-01", 10.0, 5.0, 25000.0, 476190.0, 70119.0, 406071.0, "KURANG",
			sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewClickHouseEventStorage(db, "forecast_events")
	require.NoError(t, s.Store(context.Background(), ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClickHouseEventStorageStoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO forecast_events").WillReturnError(errors.New("table is read only"))

	err = NewClickHouseEventStorage(db, "forecast_events").Store(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert event")
}

func TestClickHouseEventStorageInit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS forecast_events")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewClickHouseEventStorage(db, "forecast_events")
	require.NoError(t, s.Init(context.Background()))
	assert.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
