package repository

import (
	"context"
	"database/sql"
	"fmt"

	"RevenueCast/internal/domain/models"
	domrepo "RevenueCast/internal/domain/repository"

	"github.com/goccy/go-json"
)

const eventColumns = "id, recorded_at, ledger_date, ternak_besar, ternak_kecil, current_revenue, target_harian, avg_prediction, avg_deficit, status, predictions"

// ClickHouseEventStorage archives forecast events in a MergeTree table.
type ClickHouseEventStorage struct {
	db    *sql.DB
	table string
}

var _ domrepo.EventStorage = (*ClickHouseEventStorage)(nil)

// NewClickHouseEventStorage creates ClickHouse event storage.
func NewClickHouseEventStorage(db *sql.DB, table string) *ClickHouseEventStorage {
	return &ClickHouseEventStorage{db: db, table: table}
}

// Schema returns the idempotent DDL for the events table.
func (s *ClickHouseEventStorage) Schema() []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id String,
    recorded_at DateTime64(3, 'UTC'),
    ledger_date Date,
    ternak_besar Float64,
    ternak_kecil Float64,
    current_revenue Float64,
    target_harian Float64,
    avg_prediction Float64,
    avg_deficit Float64,
    status LowCardinality(String),
    predictions String
) ENGINE = MergeTree
ORDER BY (ledger_date, recorded_at)`, s.table)}
}

func (s *ClickHouseEventStorage) Init(ctx context.Context) error {
	for _, stmt := range s.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init events table: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseEventStorage) Store(ctx context.Context, ev *models.ForecastEvent) error {
	entries, err := json.Marshal(ev.Entries)
	if err != nil {
		return fmt.Errorf("marshal predictions: %w", err)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, eventColumns)
	_, err = s.db.ExecContext(ctx, q,
		ev.ID,
		ev.RecordedAt,
		ev.LedgerDate,
		ev.LargeCount,
		ev.SmallCount,
		ev.CurrentRevenue,
		ev.Target,
		ev.AvgPrediction,
		ev.AvgDeficit,
		string(ev.Status),
		string(entries),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *ClickHouseEventStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseEventStorage) Close() error {
	return nil // pool owned by pkg/clickhouse.Client
}
