// Package analytics computes filtered views and aggregates over the query
// log. Reads are advisory: a failing store degrades to an empty dataset
// instead of an error, unlike the serving path which fails fast.
package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/moodlog/internal/models"
	"github.com/xaenox/moodlog/internal/storage"
)

// DefaultLimit bounds how many recent rows a dashboard refresh loads.
const DefaultLimit = 5000

// TimeRange selects a trailing window over the loaded records.
type TimeRange string

const (
	RangeAllTime     TimeRange = "all"
	RangeLastHour    TimeRange = "1h"
	RangeLast24Hours TimeRange = "24h"
	RangeLast7Days   TimeRange = "7d"
)

// ParseTimeRange maps a selector value to a TimeRange, defaulting to all time.
func ParseTimeRange(s string) TimeRange {
	switch TimeRange(s) {
	case RangeLastHour, RangeLast24Hours, RangeLast7Days:
		return TimeRange(s)
	default:
		return RangeAllTime
	}
}

// Window returns the trailing window duration, or 0 for all time.
func (r TimeRange) Window() time.Duration {
	switch r {
	case RangeLastHour:
		return time.Hour
	case RangeLast24Hours:
		return 24 * time.Hour
	case RangeLast7Days:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Label returns the human-readable selector name.
func (r TimeRange) Label() string {
	switch r {
	case RangeLastHour:
		return "Last Hour"
	case RangeLast24Hours:
		return "Last 24 Hours"
	case RangeLast7Days:
		return "Last 7 Days"
	default:
		return "All Time"
	}
}

// Reader pulls a bounded recent window of query logs for presentation.
type Reader struct {
	store  storage.Storage
	logger *zap.Logger
}

func NewReader(store storage.Storage, logger *zap.Logger) *Reader {
	return &Reader{store: store, logger: logger}
}

// LoadRecent returns up to limit recent rows, most-recent-first. A store
// error is logged and reported as an empty dataset plus the error, so the
// presentation layer can render "no data" with an advisory instead of
// crashing.
func (r *Reader) LoadRecent(ctx context.Context, limit int) ([]models.QueryLog, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	logs, err := r.store.ListRecent(ctx, limit)
	if err != nil {
		r.logger.Error("Failed to load query logs", zap.Error(err))
		return nil, err
	}
	return logs, nil
}

// Filter retains records newer than now minus the selected window. It is a
// pure function of the loaded dataset; it never re-queries the store.
func Filter(logs []models.QueryLog, tr TimeRange, now time.Time) []models.QueryLog {
	window := tr.Window()
	if window == 0 {
		return logs
	}
	cutoff := now.Add(-window)
	out := make([]models.QueryLog, 0, len(logs))
	for _, log := range logs {
		if log.Timestamp.After(cutoff) {
			out = append(out, log)
		}
	}
	return out
}

// Summary holds the dashboard KPI aggregates.
type Summary struct {
	TotalQueries  int
	PositiveCount int
	NegativeCount int
	AvgScore      float64
}

// Summarize computes the KPI aggregates over a filtered set. AvgScore is 0
// for an empty set.
func Summarize(logs []models.QueryLog) Summary {
	s := Summary{TotalQueries: len(logs)}
	if len(logs) == 0 {
		return s
	}

	var sum float64
	for _, log := range logs {
		switch log.ModelLabel {
		case models.LabelPositive:
			s.PositiveCount++
		case models.LabelNegative:
			s.NegativeCount++
		}
		sum += log.ModelScore
	}
	s.AvgScore = sum / float64(len(logs))
	return s
}
