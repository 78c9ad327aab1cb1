package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gametrack/gametrack/internal/database"
	"github.com/gametrack/gametrack/internal/engine"
	"github.com/gametrack/gametrack/internal/reporter"
)

type Handler struct {
	repo     *database.Repository
	engine   *engine.Engine
	reporter *reporter.Reporter
}

func NewHandler(repo *database.Repository, eng *engine.Engine) *Handler {
	return &Handler{
		repo:     repo,
		engine:   eng,
		reporter: reporter.New(repo),
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/records", h.handleRecords)
	mux.HandleFunc("/api/report", h.handleReport)

	mux.HandleFunc("/health", h.handleHealth)
}

// handleStatus returns the playing entities, today's running total and the
// degraded flag. This is a read-only view; it never touches engine state.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.engine == nil {
		http.Error(w, "Monitor is not running in this process", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, h.engine.Status())
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	period, err := reporter.GetPeriod(periodType, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.repo.GetRecordsSince(period.Start)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch records: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, records)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := h.reporter.GenerateReport(periodType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, report)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
