package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"markbook/internal/gateway/util"
	"markbook/internal/markset"
)

// AdminHandler exposes class/roster administration. The grid client never
// calls these; the seeder and setup tooling do.
type AdminHandler struct {
	Service *markset.Service
}

// CreateClass handles POST /api/classes
func (h *AdminHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	var req markset.CreateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	class, err := h.Service.CreateClass(ctx, req)
	if err != nil {
		util.HandleRPCError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, class)
}

// CreateMarkSet handles POST /api/classes/{classID}/marksets
func (h *AdminHandler) CreateMarkSet(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")

	var req markset.CreateMarkSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	markSet, err := h.Service.CreateMarkSet(ctx, classID, req)
	if err != nil {
		util.HandleRPCError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, markSet)
}

// AddStudent handles POST /api/classes/{classID}/students
func (h *AdminHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")

	var req markset.AddStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	student, err := h.Service.AddStudent(ctx, classID, req)
	if err != nil {
		util.HandleRPCError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, student)
}

// AddAssessment handles POST /api/classes/{classID}/marksets/{markSetID}/assessments
func (h *AdminHandler) AddAssessment(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	markSetID := chi.URLParam(r, "markSetID")

	var req markset.AddAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	assessment, err := h.Service.AddAssessment(ctx, classID, markSetID, req)
	if err != nil {
		util.HandleRPCError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, assessment)
}
