package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"markbook/internal/gateway/util"
	"markbook/internal/markset"
	"markbook/internal/shared"
)

// MarksetHandler exposes the mark-set store over HTTP JSON. These four
// routes are the typed request/response channel the grid client drives.
type MarksetHandler struct {
	Service *markset.Service
}

// Open handles POST /api/classes/{classID}/marksets/{markSetID}/open
// Returns the grid axes (roster + assessments) and dimensions.
func (h *MarksetHandler) Open(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	markSetID := chi.URLParam(r, "markSetID")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := h.Service.Open(ctx, classID, markSetID)
	if err != nil {
		util.HandleRPCError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}

// GetCells handles GET /api/classes/{classID}/marksets/{markSetID}/cells
// Query Params: rowStart, rowCount, colStart, colCount
func (h *MarksetHandler) GetCells(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	markSetID := chi.URLParam(r, "markSetID")

	rowStart, ok1 := queryInt(r, "rowStart")
	rowCount, ok2 := queryInt(r, "rowCount")
	colStart, ok3 := queryInt(r, "colStart")
	colCount, ok4 := queryInt(r, "colCount")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		util.WriteJSONError(w, http.StatusBadRequest, "rowStart, rowCount, colStart, and colCount are required integers")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cells, err := h.Service.GetRange(ctx, classID, markSetID, rowStart, rowCount, colStart, colCount)
	if err != nil {
		util.HandleRPCError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cells": cells,
	})
}

// UpdateCellRequest mirrors the JSON input for PUT .../cells/{row}/{col}
type UpdateCellRequest struct {
	Value    *float64 `json:"value"`
	EditKind string   `json:"edit_kind"`
}

// UpdateCell handles PUT /api/classes/{classID}/marksets/{markSetID}/cells/{row}/{col}
func (h *MarksetHandler) UpdateCell(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	markSetID := chi.URLParam(r, "markSetID")

	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "row must be an integer")
		return
	}
	col, err := strconv.Atoi(chi.URLParam(r, "col"))
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "col must be an integer")
		return
	}

	var req UpdateCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Service.UpdateCell(ctx, classID, markSetID, row, col, req.Value, req.EditKind); err != nil {
		util.HandleRPCError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "cell updated",
	})
}

// BulkUpdateRequest mirrors the JSON input for POST .../cells/bulk
type BulkUpdateRequest struct {
	Edits []shared.EditInstruction `json:"edits"`
}

// BulkUpdate handles POST /api/classes/{classID}/marksets/{markSetID}/cells/bulk
func (h *MarksetHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	markSetID := chi.URLParam(r, "markSetID")

	var req BulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if err := h.Service.BulkUpdate(ctx, classID, markSetID, req.Edits); err != nil {
		util.HandleRPCError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "batch applied",
		"applied": len(req.Edits),
	})
}

// queryInt parses a required integer query parameter
func queryInt(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}
