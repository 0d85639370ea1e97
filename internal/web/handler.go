// Package web serves the analytics dashboard: server-rendered HTML with
// HTMX partial refresh and an SSE stream for live updates.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/moodlog/internal/analytics"
	"github.com/xaenox/moodlog/internal/bus"
)

// tableRows caps how many rows the recent-logs table shows; the CSV export
// still carries the whole filtered view.
const tableRows = 100

// Handler handles all dashboard requests.
type Handler struct {
	reader *analytics.Reader
	events bus.Bus
	logger *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewHandler(reader *analytics.Reader, events bus.Bus, logger *zap.Logger) *Handler {
	return &Handler{
		reader: reader,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRoutes registers all dashboard routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /dashboard", h.handlePage)
	mux.HandleFunc("GET /dashboard/refresh", h.handleRefresh)
	mux.HandleFunc("GET /dashboard/export.csv", h.handleExport)
	mux.HandleFunc("GET /dashboard/events", h.handleEvents)
}

func (h *Handler) load(r *http.Request) DashboardData {
	tr := analytics.ParseTimeRange(r.URL.Query().Get("range"))

	logs, err := h.reader.LoadRecent(r.Context(), analytics.DefaultLimit)
	data := DashboardData{Range: tr}
	if err != nil {
		data.Advisory = "Query log store is unreachable; showing no data."
		return data
	}

	filtered := analytics.Filter(logs, tr, h.now())
	if len(filtered) == 0 {
		data.Advisory = "No data available for the selected time range."
	}

	data.Summary = analytics.Summarize(filtered)
	data.Labels = analytics.LabelCounts(filtered)
	data.Bins = analytics.Histogram(filtered)
	data.Points = analytics.Scatter(filtered)
	if len(filtered) > tableRows {
		data.Logs = filtered[:tableRows]
	} else {
		data.Logs = filtered
	}
	return data
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	data := h.load(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(data).Render(r.Context(), w); err != nil {
		h.logger.Error("Failed to render dashboard page", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleRefresh renders just the refreshable section for HTMX.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	data := h.load(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Content(data).Render(r.Context(), w); err != nil {
		h.logger.Error("Failed to render dashboard content", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleExport streams the currently filtered view as CSV.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	tr := analytics.ParseTimeRange(r.URL.Query().Get("range"))

	logs, err := h.reader.LoadRecent(r.Context(), analytics.DefaultLimit)
	if err != nil {
		http.Error(w, "query log store is unreachable", http.StatusServiceUnavailable)
		return
	}
	filtered := analytics.Filter(logs, tr, h.now())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"sentiment_logs.csv\"")
	if err := analytics.WriteCSV(w, filtered); err != nil {
		h.logger.Error("Failed to write CSV export", zap.Error(err))
	}
}

// handleEvents streams query.logged notifications so open dashboards can
// refresh without polling.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		http.Error(w, "events not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	flusher.Flush()

	eventChan := make(chan bus.Event, 10)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	err := h.events.Subscribe(ctx, bus.TopicQueryLogged, func(ctx context.Context, event bus.Event) error {
		select {
		case eventChan <- event:
		default:
		}
		return nil
	})
	if err != nil {
		h.logger.Error("Failed to subscribe to query.logged events", zap.Error(err))
		http.Error(w, "subscribe failed", http.StatusInternalServerError)
		return
	}

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Keepalive comment
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case event := <-eventChan:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", bus.TopicQueryLogged, event.ID)
			flusher.Flush()
		}
	}
}
