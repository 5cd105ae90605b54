// Package telemetry buffers sensor readings reported against tokenized
// batches and folds them into per-metric aggregates on demand. The buffer is
// an explicit store handle owned by the caller, not process-global state, so
// independent consumers never share readings by accident.
package telemetry

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/agroledger/eudr-engine/pkg/errors"
)

// Reading is one sensor observation attached to a token.
type Reading struct {
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// MetricSummary is the aggregate of all buffered readings for one metric.
type MetricSummary struct {
	Metric string  `json:"metric"`
	Unit   string  `json:"unit,omitempty"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// Aggregate is the flush result for one token: every buffered metric
// summarized, with the observation window bounds.
type Aggregate struct {
	TokenID      string          `json:"token_id"`
	ReadingCount int             `json:"reading_count"`
	WindowStart  time.Time       `json:"window_start"`
	WindowEnd    time.Time       `json:"window_end"`
	Metrics      []MetricSummary `json:"metrics"`
	FlushedAt    time.Time       `json:"flushed_at"`
}

// Store is the in-memory reading buffer, keyed by token. Safe for concurrent
// use. Readings live only until the next flush; durable aggregates are the
// caller's concern.
type Store struct {
	mu      sync.Mutex
	buffers map[string][]Reading
	now     func() time.Time
}

// NewStore constructs an empty buffer store.
func NewStore() *Store {
	return &Store{
		buffers: make(map[string][]Reading),
		now:     time.Now,
	}
}

// Append validates and buffers readings for a token. The whole batch is
// rejected if any reading is invalid; partial appends would make the later
// aggregate unexplainable.
func (s *Store) Append(tokenID string, readings ...Reading) error {
	if tokenID == "" {
		return errors.InvalidParam("token id is required")
	}
	if len(readings) == 0 {
		return errors.New(errors.ErrCodeTelemetryBadReading, "no readings supplied")
	}

	stamped := make([]Reading, len(readings))
	now := s.now().UTC()
	for i, r := range readings {
		if err := checkReading(i, r); err != nil {
			return err
		}
		if r.RecordedAt.IsZero() {
			r.RecordedAt = now
		}
		stamped[i] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers[tokenID] = append(s.buffers[tokenID], stamped...)
	return nil
}

// Pending reports the number of buffered readings for a token.
func (s *Store) Pending(tokenID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffers[tokenID])
}

// Flush aggregates and clears the buffer for a token. An empty buffer fails
// with ErrCodeTelemetryEmptyBuffer; flushing is destructive, so a second
// flush without new readings fails the same way.
func (s *Store) Flush(tokenID string) (*Aggregate, error) {
	s.mu.Lock()
	readings := s.buffers[tokenID]
	delete(s.buffers, tokenID)
	s.mu.Unlock()

	if len(readings) == 0 {
		return nil, errors.Newf(errors.ErrCodeTelemetryEmptyBuffer,
			"no buffered readings for token %s", tokenID)
	}
	return summarize(tokenID, readings, s.now().UTC()), nil
}

func checkReading(i int, r Reading) error {
	if r.Metric == "" {
		return errors.Newf(errors.ErrCodeTelemetryBadReading, "reading %d: metric name is required", i)
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return errors.Newf(errors.ErrCodeTelemetryBadReading, "reading %d: value must be finite", i)
	}
	return nil
}

// summarize folds readings into per-metric summaries, sorted by metric name
// for a stable serialized form.
func summarize(tokenID string, readings []Reading, flushedAt time.Time) *Aggregate {
	byMetric := make(map[string]*MetricSummary)
	windowStart, windowEnd := readings[0].RecordedAt, readings[0].RecordedAt

	for _, r := range readings {
		if r.RecordedAt.Before(windowStart) {
			windowStart = r.RecordedAt
		}
		if r.RecordedAt.After(windowEnd) {
			windowEnd = r.RecordedAt
		}

		ms, ok := byMetric[r.Metric]
		if !ok {
			ms = &MetricSummary{Metric: r.Metric, Unit: r.Unit, Min: r.Value, Max: r.Value}
			byMetric[r.Metric] = ms
		}
		ms.Count++
		ms.Min = math.Min(ms.Min, r.Value)
		ms.Max = math.Max(ms.Max, r.Value)
		// Mean holds the running sum until the final division below.
		ms.Mean += r.Value
	}

	names := make([]string, 0, len(byMetric))
	for name := range byMetric {
		names = append(names, name)
	}
	sort.Strings(names)

	metrics := make([]MetricSummary, 0, len(names))
	for _, name := range names {
		ms := byMetric[name]
		ms.Mean /= float64(ms.Count)
		metrics = append(metrics, *ms)
	}

	return &Aggregate{
		TokenID:      tokenID,
		ReadingCount: len(readings),
		WindowStart:  windowStart,
		WindowEnd:    windowEnd,
		Metrics:      metrics,
		FlushedAt:    flushedAt,
	}
}
