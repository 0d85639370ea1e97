// Package metrics tracks service counters for the /metrics endpoint and the
// dashboard header. Counters are process-local; an optional Redis backend
// carries them across restarts.
package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Storage persists counters across restarts.
type Storage interface {
	Incr(ctx context.Context, field string, delta int64) error
	Load(ctx context.Context) (map[string]int64, error)
	Close() error
}

// Collector accumulates service counters. Safe for concurrent use.
type Collector struct {
	mu             sync.Mutex
	startedAt      time.Time
	queriesTotal   int64
	queriesByLabel map[string]int64
	errorsTotal    int64
	classifyMillis int64
	insertMillis   int64

	storage Storage
	logger  *zap.Logger
}

// NewCollector creates a collector. storage may be nil for in-memory-only
// counters; persisted counters are loaded once at construction.
func NewCollector(storage Storage, logger *zap.Logger) *Collector {
	c := &Collector{
		startedAt:      time.Now(),
		queriesByLabel: make(map[string]int64),
		storage:        storage,
		logger:         logger,
	}

	if storage != nil {
		counters, err := storage.Load(context.Background())
		if err != nil {
			logger.Warn("Failed to load persisted metrics", zap.Error(err))
			return c
		}
		c.queriesTotal = counters["queries_total"]
		c.errorsTotal = counters["errors_total"]
		for field, v := range counters {
			if label, ok := cutPrefix(field, "label:"); ok {
				c.queriesByLabel[label] = v
			}
		}
	}
	return c
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}

// RecordQuery counts one successful query and its stage latencies.
func (c *Collector) RecordQuery(label string, classify, insert time.Duration) {
	c.mu.Lock()
	c.queriesTotal++
	c.queriesByLabel[label]++
	c.classifyMillis += classify.Milliseconds()
	c.insertMillis += insert.Milliseconds()
	c.mu.Unlock()

	c.persist("queries_total", 1)
	c.persist("label:"+label, 1)
}

// RecordError counts one failed query.
func (c *Collector) RecordError() {
	c.mu.Lock()
	c.errorsTotal++
	c.mu.Unlock()

	c.persist("errors_total", 1)
}

func (c *Collector) persist(field string, delta int64) {
	if c.storage == nil {
		return
	}
	// Best effort: metrics persistence never fails a request.
	if err := c.storage.Incr(context.Background(), field, delta); err != nil {
		c.logger.Warn("Failed to persist metric", zap.String("field", field), zap.Error(err))
	}
}

// Snapshot is the JSON shape served by /metrics.
type Snapshot struct {
	UptimeSeconds     int64            `json:"uptime_seconds"`
	QueriesTotal      int64            `json:"queries_total"`
	QueriesByLabel    map[string]int64 `json:"queries_by_label"`
	ErrorsTotal       int64            `json:"errors_total"`
	AvgClassifyMillis float64          `json:"avg_classify_ms"`
	AvgInsertMillis   float64          `json:"avg_insert_ms"`
}

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	byLabel := make(map[string]int64, len(c.queriesByLabel))
	for k, v := range c.queriesByLabel {
		byLabel[k] = v
	}

	snap := Snapshot{
		UptimeSeconds:  int64(time.Since(c.startedAt).Seconds()),
		QueriesTotal:   c.queriesTotal,
		QueriesByLabel: byLabel,
		ErrorsTotal:    c.errorsTotal,
	}
	if c.queriesTotal > 0 {
		snap.AvgClassifyMillis = float64(c.classifyMillis) / float64(c.queriesTotal)
		snap.AvgInsertMillis = float64(c.insertMillis) / float64(c.queriesTotal)
	}
	return snap
}

// Handler serves the counters as JSON.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c.Snapshot())
	}
}
