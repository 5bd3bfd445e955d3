package repository

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"RevenueCast/internal/domain/models"
	domrepo "RevenueCast/internal/domain/repository"
	applogger "RevenueCast/pkg/logger"
	xutil "RevenueCast/pkg/util"

	"github.com/xuri/excelize/v2"
)

// Ledger column headers. Existing workbooks are matched by these names.
const (
	ColDate    = "Tanggal"
	ColLarge   = "Ternak Besar Masuk"
	ColSmall   = "Ternak Kecil Masuk"
	ColRevenue = "Total Pendapatan"

	DefaultSheet = "Sheet1"
)

var ledgerHeader = []interface{}{ColDate, ColLarge, ColSmall, ColRevenue}

// XLSXOption configures XLSXHistoryStore.
type XLSXOption func(*XLSXHistoryStore)

// WithSheet sets the worksheet holding the ledger.
func WithSheet(name string) XLSXOption {
	return func(s *XLSXHistoryStore) {
		if name != "" {
			s.sheet = name
		}
	}
}

// WithLocation sets the timezone ledger dates are interpreted in.
func WithLocation(loc *time.Location) XLSXOption {
	return func(s *XLSXHistoryStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithStoreLogger injects a structured logger.
func WithStoreLogger(l *applogger.Logger) XLSXOption {
	return func(s *XLSXHistoryStore) { s.l = l }
}

// WithStoreMetrics reports ledger size on load and append.
func WithStoreMetrics(m domrepo.Metrics) XLSXOption {
	return func(s *XLSXHistoryStore) { s.metrics = m }
}

// XLSXHistoryStore implements HistoryStore on a single-sheet workbook.
// Rows are held in memory; every append rewrites the workbook to a temp file
// and renames it over the ledger, so readers see either the old or new file.
type XLSXHistoryStore struct {
	mu      sync.RWMutex
	path    string
	sheet   string
	loc     *time.Location
	rows    []models.Observation
	l       *applogger.Logger
	metrics domrepo.Metrics
}

// NewXLSXHistoryStore opens the ledger at path, creating an empty one when missing.
// An unreadable ledger is moved aside and the store starts empty.
func NewXLSXHistoryStore(path string, opts ...XLSXOption) (*XLSXHistoryStore, error) {
	s := &XLSXHistoryStore{path: path, sheet: DefaultSheet, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.save(nil); err != nil {
			return nil, fmt.Errorf("create ledger: %w", err)
		}
		s.logInfo("created empty ledger", applogger.String("path", path))
		s.recordRows()
		return s, nil
	}

	rows, dropped, err := s.load()
	if err != nil {
		backup := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
		s.logWarn("ledger unreadable, starting empty",
			applogger.String("path", path),
			applogger.String("backup", backup),
			applogger.Error(err),
		)
		if rerr := os.Rename(path, backup); rerr != nil {
			return nil, fmt.Errorf("move unreadable ledger: %w", rerr)
		}
		if err := s.save(nil); err != nil {
			return nil, fmt.Errorf("create ledger: %w", err)
		}
		rows = nil
	}
	if dropped > 0 {
		s.logWarn("ledger rows with invalid dates ignored", applogger.Int("dropped", dropped))
	}
	s.rows = rows
	s.recordRows()
	return s, nil
}

// Path returns the ledger file path.
func (s *XLSXHistoryStore) Path() string { return s.path }

// Len returns the number of ledger rows.
func (s *XLSXHistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *XLSXHistoryStore) Tail(ctx context.Context, n int) ([]models.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 {
		return nil, nil
	}
	start := len(s.rows) - n
	if start < 0 {
		start = 0
	}
	out := make([]models.Observation, len(s.rows)-start)
	copy(out, s.rows[start:])
	return out, nil
}

func (s *XLSXHistoryStore) Since(ctx context.Context, from time.Time) ([]models.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := sort.Search(len(s.rows), func(i int) bool { return !s.rows[i].Date.Before(from) })
	out := make([]models.Observation, len(s.rows)-i)
	copy(out, s.rows[i:])
	return out, nil
}

func (s *XLSXHistoryStore) Append(ctx context.Context, obs models.Observation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	obs.Date = xutil.StartOfDay(obs.Date.In(s.loc))

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Observation, len(s.rows), len(s.rows)+1)
	copy(next, s.rows)
	next = append(next, obs)
	sort.SliceStable(next, func(i, j int) bool { return next[i].Date.Before(next[j].Date) })

	if err := s.save(next); err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	s.rows = next
	s.recordRows()
	return nil
}

// Clean re-reads the ledger from disk, drops rows with invalid dates, coerces
// numeric columns and rewrites the file. It returns the number of dropped rows.
func (s *XLSXHistoryStore) Clean(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, dropped, err := s.load()
	if err != nil {
		return 0, fmt.Errorf("clean ledger: %w", err)
	}
	if err := s.save(rows); err != nil {
		return 0, fmt.Errorf("clean ledger: %w", err)
	}
	s.rows = rows
	s.recordRows()
	s.logInfo("ledger cleaned", applogger.Int("rows", len(rows)), applogger.Int("dropped", dropped))
	return dropped, nil
}

// WriteTo streams the ledger file to w.
func (s *XLSXHistoryStore) WriteTo(w io.Writer) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, err := os.Open(s.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(w, f)
}

func (s *XLSXHistoryStore) load() ([]models.Observation, int, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	sheet := s.sheet
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, 0, fmt.Errorf("workbook has no sheets")
		}
		sheet = list[0]
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, fmt.Errorf("read rows: %w", err)
	}
	if len(raw) == 0 {
		return nil, 0, nil
	}

	cols, err := headerIndex(raw[0])
	if err != nil {
		return nil, 0, err
	}

	out := make([]models.Observation, 0, len(raw)-1)
	dropped := 0
	for _, r := range raw[1:] {
		if isBlank(r) {
			continue
		}
		date, ok := s.parseDate(cell(r, cols[0]))
		if !ok {
			dropped++
			continue
		}
		out = append(out, models.Observation{
			Date:       date,
			LargeCount: number(cell(r, cols[1])),
			SmallCount: number(cell(r, cols[2])),
			Revenue:    number(cell(r, cols[3])),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, dropped, nil
}

func (s *XLSXHistoryStore) save(rows []models.Observation) error {
	f := excelize.NewFile()
	defer f.Close()

	if s.sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, s.sheet); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(s.sheet, "A1", &ledgerHeader); err != nil {
		return err
	}
	dateFmt := "yyyy-mm-dd"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return err
	}
	if err := f.SetColStyle(s.sheet, "A", style); err != nil {
		return err
	}
	for i, r := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		d := r.Date
		values := []interface{}{
			time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
			r.LargeCount,
			r.SmallCount,
			r.Revenue,
		}
		if err := f.SetSheetRow(s.sheet, axis, &values); err != nil {
			return err
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.xlsx")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

// parseDate accepts Excel serial numbers and textual dates.
func (s *XLSXHistoryStore) parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && !strings.Contains(v, "-") {
		if serial <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc), true
	}
	t, ok := xutil.ParseDate(v, s.loc)
	if !ok {
		return time.Time{}, false
	}
	return xutil.StartOfDay(t), true
}

func (s *XLSXHistoryStore) recordRows() {
	if s.metrics != nil {
		s.metrics.RecordHistoryRows(len(s.rows))
	}
}

func (s *XLSXHistoryStore) logInfo(msg string, fields ...applogger.Field) {
	if s.l != nil {
		s.l.Info(msg, fields...)
	}
}

func (s *XLSXHistoryStore) logWarn(msg string, fields ...applogger.Field) {
	if s.l != nil {
		s.l.Warn(msg, fields...)
	}
}

func headerIndex(header []string) ([4]int, error) {
	idx := [4]int{-1, -1, -1, -1}
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case ColDate:
			idx[0] = i
		case ColLarge:
			idx[1] = i
		case ColSmall:
			idx[2] = i
		case ColRevenue:
			idx[3] = i
		}
	}
	if idx[0] < 0 {
		return idx, fmt.Errorf("ledger header missing %q column", ColDate)
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func number(v string) float64 {
	f := xutil.ParseFloatDefault(v, 0)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
