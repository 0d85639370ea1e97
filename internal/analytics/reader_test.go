package analytics

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/moodlog/internal/models"
	"github.com/xaenox/moodlog/internal/storage"
)

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		in   string
		want TimeRange
	}{
		{"all", RangeAllTime},
		{"1h", RangeLastHour},
		{"24h", RangeLast24Hours},
		{"7d", RangeLast7Days},
		{"", RangeAllTime},
		{"30d", RangeAllTime},
		{"garbage", RangeAllTime},
	}
	for _, tt := range tests {
		if got := ParseTimeRange(tt.in); got != tt.want {
			t.Errorf("ParseTimeRange(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilter_WindowsNest(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	logs := []models.QueryLog{
		{ID: 1, Timestamp: now.Add(-30 * time.Minute)},
		{ID: 2, Timestamp: now.Add(-2 * time.Hour)},
		{ID: 3, Timestamp: now.Add(-3 * 24 * time.Hour)},
		{ID: 4, Timestamp: now.Add(-30 * 24 * time.Hour)},
	}

	counts := map[TimeRange]int{
		RangeLastHour:    len(Filter(logs, RangeLastHour, now)),
		RangeLast24Hours: len(Filter(logs, RangeLast24Hours, now)),
		RangeLast7Days:   len(Filter(logs, RangeLast7Days, now)),
		RangeAllTime:     len(Filter(logs, RangeAllTime, now)),
	}

	if counts[RangeLastHour] != 1 || counts[RangeLast24Hours] != 2 ||
		counts[RangeLast7Days] != 3 || counts[RangeAllTime] != 4 {
		t.Errorf("window counts = %v, want 1h=1 24h=2 7d=3 all=4", counts)
	}

	// Narrower windows never contain more records than wider ones
	if counts[RangeLastHour] > counts[RangeLast24Hours] ||
		counts[RangeLast24Hours] > counts[RangeLast7Days] ||
		counts[RangeLast7Days] > counts[RangeAllTime] {
		t.Errorf("windows do not nest: %v", counts)
	}
}

func TestFilter_BoundaryExcluded(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	logs := []models.QueryLog{
		{ID: 1, Timestamp: now.Add(-time.Hour)},                   // exactly on the cutoff
		{ID: 2, Timestamp: now.Add(-time.Hour + time.Nanosecond)}, // just inside
	}

	got := Filter(logs, RangeLastHour, now)
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("Filter kept %v, want only the record strictly inside the window", got)
	}
}

func TestSummarize(t *testing.T) {
	logs := []models.QueryLog{
		{ModelLabel: models.LabelPositive, ModelScore: 0.9},
		{ModelLabel: models.LabelPositive, ModelScore: 0.8},
		{ModelLabel: models.LabelNegative, ModelScore: 0.7},
		{ModelLabel: "NEUTRAL", ModelScore: 0.6},
	}

	s := Summarize(logs)
	if s.TotalQueries != 4 {
		t.Errorf("TotalQueries = %d, want 4", s.TotalQueries)
	}
	if s.PositiveCount != 2 || s.NegativeCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", s.PositiveCount, s.NegativeCount)
	}
	if s.PositiveCount+s.NegativeCount > s.TotalQueries {
		t.Error("label counts exceed total")
	}
	if math.Abs(s.AvgScore-0.75) > 1e-9 {
		t.Errorf("AvgScore = %v, want 0.75", s.AvgScore)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalQueries != 0 || s.PositiveCount != 0 || s.NegativeCount != 0 {
		t.Errorf("empty summary has nonzero counts: %+v", s)
	}
	if s.AvgScore != 0 {
		t.Errorf("AvgScore on empty set = %v, want 0", s.AvgScore)
	}
}

func TestReader_LoadRecent(t *testing.T) {
	store := storage.NewMemoryStorage()
	defer store.Close()

	for i := 0; i < 3; i++ {
		if err := store.CreateQueryLog(context.Background(), &models.QueryLog{
			InputText: "text", ModelLabel: models.LabelPositive, ModelScore: 0.9,
		}); err != nil {
			t.Fatalf("CreateQueryLog() error = %v", err)
		}
	}

	reader := NewReader(store, zap.NewNop())
	logs, err := reader.LoadRecent(context.Background(), 0) // 0 means DefaultLimit
	if err != nil {
		t.Fatalf("LoadRecent() error = %v", err)
	}
	if len(logs) != 3 {
		t.Errorf("LoadRecent() returned %d rows, want 3", len(logs))
	}
}

func TestReader_LoadRecentStoreError(t *testing.T) {
	store := storage.NewMemoryStorage()
	defer store.Close()
	reader := NewReader(store, zap.NewNop())

	wantErr := errors.New("connection refused")
	store.FailNextList(wantErr)

	logs, err := reader.LoadRecent(context.Background(), 10)
	if !errors.Is(err, wantErr) {
		t.Fatalf("LoadRecent() error = %v, want %v", err, wantErr)
	}
	if len(logs) != 0 {
		t.Errorf("LoadRecent() returned data alongside an error: %v", logs)
	}
}
