package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"RevenueCast/internal/domain/models"
)

type memStore struct {
	mu        sync.Mutex
	rows      []models.Observation
	tailErr   error
	appendErr error
	lastFrom  time.Time
	sinceHits int

	// when set, Since signals sinceRead after reading and waits on sinceGate
	sinceRead chan struct{}
	sinceGate chan struct{}
}

func (s *memStore) Tail(_ context.Context, n int) ([]models.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tailErr != nil {
		return nil, s.tailErr
	}
	if len(s.rows) <= n {
		return append([]models.Observation(nil), s.rows...), nil
	}
	return append([]models.Observation(nil), s.rows[len(s.rows)-n:]...), nil
}

func (s *memStore) Append(_ context.Context, obs models.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.rows = append(s.rows, obs)
	sort.SliceStable(s.rows, func(i, j int) bool { return s.rows[i].Date.Before(s.rows[j].Date) })
	return nil
}

func (s *memStore) Since(_ context.Context, from time.Time) ([]models.Observation, error) {
	s.mu.Lock()
	s.lastFrom = from
	s.sinceHits++
	var out []models.Observation
	for _, r := range s.rows {
		if !r.Date.Before(from) {
			out = append(out, r)
		}
	}
	read, gate := s.sinceRead, s.sinceGate
	s.sinceRead, s.sinceGate = nil, nil
	s.mu.Unlock()

	if gate != nil {
		close(read)
		<-gate
	}
	return out, nil
}

type countingMetrics struct {
	mu        sync.Mutex
	forecasts map[string]int
	errors    map[string]int
	sent      map[string]int
	lastAvg   float64
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{forecasts: map[string]int{}, errors: map[string]int{}, sent: map[string]int{}}
}

func (m *countingMetrics) RecordForecast(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecasts[status]++
}

func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *countingMetrics) RecordLatency(string, float64) {}

func (m *countingMetrics) RecordAvgPrediction(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAvg = v
}

func (m *countingMetrics) RecordHistoryRows(int) {}

func (m *countingMetrics) RecordEventSent(backend string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[backend]++
}

type capturePublisher struct {
	mu     sync.Mutex
	events []*models.ForecastEvent
	err    error
	closed bool
}

func (p *capturePublisher) Publish(_ context.Context, ev *models.ForecastEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) Close() error {
	p.closed = true
	return nil
}

type captureStorage struct {
	capturePublisher
}

func (s *captureStorage) Init(context.Context) error   { return nil }
func (s *captureStorage) Health(context.Context) error { return nil }
func (s *captureStorage) Store(ctx context.Context, ev *models.ForecastEvent) error {
	return s.Publish(ctx, ev)
}

var errCacheMiss = errors.New("miss")

// mapCache stores values as-is; Get copies history slices back into dest.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]models.HistoryPoint
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]models.HistoryPoint{}} }

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return errCacheMiss
	}
	*(dest.(*[]models.HistoryPoint)) = v
	return nil
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value.([]models.HistoryPoint)
	return nil
}

func (c *mapCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}
