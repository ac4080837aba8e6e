package calc

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"markbook/internal/gateway/util"
)

// NewRouter builds the HTTP surface of the calc service.
func NewRouter(service *Service) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/calc/marksets/{markSetID}/assessments", func(w http.ResponseWriter, req *http.Request) {
		markSetID := mux.Vars(req)["markSetID"]

		ctx, cancel := context.WithTimeout(req.Context(), 10*time.Second)
		defer cancel()

		stats, err := service.AssessmentStats(ctx, markSetID)
		if err != nil {
			util.HandleRPCError(w, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, stats)
	}).Methods(http.MethodGet)

	r.HandleFunc("/calc/marksets/{markSetID}/summary", func(w http.ResponseWriter, req *http.Request) {
		markSetID := mux.Vars(req)["markSetID"]

		ctx, cancel := context.WithTimeout(req.Context(), 10*time.Second)
		defer cancel()

		summary, err := service.MarkSetSummary(ctx, markSetID)
		if err != nil {
			util.HandleRPCError(w, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, summary)
	}).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		util.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "ok"})
	}).Methods(http.MethodGet)

	return r
}
