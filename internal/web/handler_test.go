package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/moodlog/internal/analytics"
	"github.com/xaenox/moodlog/internal/bus"
	"github.com/xaenox/moodlog/internal/models"
	"github.com/xaenox/moodlog/internal/storage"
)

func newTestDashboard(t *testing.T, store *storage.MemoryStorage) (*Handler, *http.ServeMux) {
	t.Helper()
	logger := zap.NewNop()
	events := bus.NewMemoryBus()
	t.Cleanup(func() { events.Close() })

	h := NewHandler(analytics.NewReader(store, logger), events, logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h, mux
}

func seedLogs(t *testing.T, store *storage.MemoryStorage, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		label := models.LabelPositive
		if i%3 == 0 {
			label = models.LabelNegative
		}
		err := store.CreateQueryLog(context.Background(), &models.QueryLog{
			InputText:  "sample query text",
			ModelLabel: label,
			ModelScore: 0.9,
		})
		if err != nil {
			t.Fatalf("CreateQueryLog() error = %v", err)
		}
	}
}

func TestDashboardPage(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedLogs(t, store, 5)
	_, mux := newTestDashboard(t, store)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{"<!DOCTYPE html>", "Total Queries", "sample query text", "htmx"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestDashboardPage_EmptyAdvisory(t *testing.T) {
	_, mux := newTestDashboard(t, storage.NewMemoryStorage())

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No data available") {
		t.Error("empty dashboard should carry the no-data advisory")
	}
}

func TestDashboardPage_StoreErrorAdvisory(t *testing.T) {
	store := storage.NewMemoryStorage()
	store.FailNextList(errors.New("connection refused"))
	_, mux := newTestDashboard(t, store)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	// An unreachable store degrades to an empty page, never an error page
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unreachable") {
		t.Error("store failure should surface as an advisory")
	}
}

func TestDashboardRefresh_RangeFilter(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedLogs(t, store, 3)
	h, mux := newTestDashboard(t, store)

	// Pin "now" far ahead of the seeded rows so the 1h window is empty
	h.now = func() time.Time { return time.Now().UTC().Add(48 * time.Hour) }

	req := httptest.NewRequest(http.MethodGet, "/dashboard/refresh?range=1h", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "No data available") {
		t.Error("stale rows should fall outside the 1h window")
	}
	// The refresh endpoint renders a partial, not a full document
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("refresh should render only the dashboard section")
	}
}

func TestDashboardExportCSV(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedLogs(t, store, 4)
	_, mux := newTestDashboard(t, store)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/export.csv?range=all", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "sentiment_logs.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 5 {
		t.Errorf("CSV has %d lines, want header plus 4 rows", len(lines))
	}
	if lines[0] != "timestamp,input_text,model_label,model_score" {
		t.Errorf("header = %q", lines[0])
	}
}

func TestDashboardExportCSV_StoreError(t *testing.T) {
	store := storage.NewMemoryStorage()
	store.FailNextList(errors.New("connection refused"))
	_, mux := newTestDashboard(t, store)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestDashboardEvents_StreamsQueryLogged(t *testing.T) {
	store := storage.NewMemoryStorage()
	_, mux := newTestDashboard(t, store)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/dashboard/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /dashboard/events error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}
}
