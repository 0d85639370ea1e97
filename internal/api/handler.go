// Package api exposes the query service HTTP endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/moodlog/internal/bus"
	"github.com/xaenox/moodlog/internal/classifier"
	"github.com/xaenox/moodlog/internal/metrics"
	"github.com/xaenox/moodlog/internal/models"
	"github.com/xaenox/moodlog/internal/storage"
)

// Handler serves POST /query and the liveness routes.
type Handler struct {
	store     storage.Storage
	clf       classifier.Classifier // nil when the model failed to load
	events    bus.Bus
	collector *metrics.Collector
	logger    *zap.Logger
}

func NewHandler(store storage.Storage, clf classifier.Classifier, events bus.Bus, collector *metrics.Collector, logger *zap.Logger) *Handler {
	return &Handler{
		store:     store,
		clf:       clf,
		events:    events,
		collector: collector,
		logger:    logger,
	}
}

// RegisterRoutes registers the service routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("POST /query", h.handleQuery)
	mux.HandleFunc("GET /logs/recent", h.handleRecent)
}

// handleRoot stays up even when the classifier is degraded, so load
// balancers keep the process alive for diagnosis.
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "moodlog sentiment API is running. POST to /query",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.clf == nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       status,
		"model_loaded": h.clf != nil,
	})
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: expected JSON {\"text\": string}")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text field is required")
		return
	}

	// Fast-fail gate: no classifier, no database interaction.
	if h.clf == nil {
		writeError(w, http.StatusServiceUnavailable, "model is not available, check server logs")
		return
	}

	ctx := r.Context()

	classifyStart := time.Now()
	candidates, err := h.clf.Classify(ctx, req.Text)
	if err != nil {
		h.collector.RecordError()
		h.logger.Error("Inference call failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("an internal server error occurred: %v", err))
		return
	}
	classifyDur := time.Since(classifyStart)

	// The classifier may return several candidates; the contract is to
	// take the first one.
	top := candidates[0]

	record := models.QueryLog{
		InputText:  req.Text,
		ModelLabel: top.Label,
		ModelScore: top.Score,
	}

	insertStart := time.Now()
	if err := h.store.CreateQueryLog(ctx, &record); err != nil {
		h.collector.RecordError()
		h.logger.Error("Failed to persist query log", zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("an internal server error occurred: %v", err))
		return
	}
	insertDur := time.Since(insertStart)

	h.collector.RecordQuery(top.Label, classifyDur, insertDur)
	h.publishLogged(record)

	writeJSON(w, http.StatusOK, models.QueryResponse{
		InputText:      record.InputText,
		SentimentLabel: record.ModelLabel,
		SentimentScore: record.ModelScore,
	})
}

// handleRecent returns recent query logs as JSON, most-recent-first.
func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > 5000 {
		limit = 5000
	}

	logs, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list query logs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("an internal server error occurred: %v", err))
		return
	}
	if logs == nil {
		logs = []models.QueryLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// publishLogged notifies subscribers of the committed row. Fire and forget:
// a bus failure never fails the request that already committed.
func (h *Handler) publishLogged(record models.QueryLog) {
	if h.events == nil {
		return
	}
	event := bus.NewQueryLoggedEvent(record)
	if err := h.events.Publish(context.Background(), bus.TopicQueryLogged, event); err != nil {
		h.logger.Warn("Failed to publish query.logged event", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
