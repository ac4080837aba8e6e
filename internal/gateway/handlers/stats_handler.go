package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"markbook/internal/calcclient"
	"markbook/internal/gateway/util"
)

// StatsHandler proxies derived-view reads to the calc collaborator service.
// The gateway never computes statistics itself.
type StatsHandler struct {
	Calc *calcclient.Client
}

// AssessmentStats handles GET /api/classes/{classID}/marksets/{markSetID}/stats/assessments
func (h *StatsHandler) AssessmentStats(w http.ResponseWriter, r *http.Request) {
	markSetID := chi.URLParam(r, "markSetID")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.Calc.AssessmentStats(ctx, markSetID)
	if err != nil {
		util.WriteJSONError(w, http.StatusBadGateway, "calc service unavailable: "+err.Error())
		return
	}

	util.WriteJSON(w, http.StatusOK, stats)
}

// MarkSetSummary handles GET /api/classes/{classID}/marksets/{markSetID}/stats/summary
func (h *StatsHandler) MarkSetSummary(w http.ResponseWriter, r *http.Request) {
	markSetID := chi.URLParam(r, "markSetID")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	summary, err := h.Calc.MarkSetSummary(ctx, markSetID)
	if err != nil {
		util.WriteJSONError(w, http.StatusBadGateway, "calc service unavailable: "+err.Error())
		return
	}

	util.WriteJSON(w, http.StatusOK, summary)
}
