package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return body
}

func TestWriteJSON(t *testing.T) {
	t.Run("success payload is wrapped", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteJSON(rec, http.StatusOK, map[string]string{"id": "c1"})

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}

		body := decodeBody(t, rec)
		if body["success"] != true {
			t.Errorf("success = %v, want true", body["success"])
		}
		data, ok := body["data"].(map[string]interface{})
		if !ok || data["id"] != "c1" {
			t.Errorf("data = %v, want {id: c1}", body["data"])
		}
	})

	t.Run("pre-wrapped payload passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteJSON(rec, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Batch applied",
		})

		body := decodeBody(t, rec)
		if body["message"] != "Batch applied" {
			t.Errorf("message = %v, want pass-through", body["message"])
		}
		if _, hasData := body["data"]; hasData {
			t.Error("pass-through payload should not be re-wrapped under data")
		}
	})
}

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONError(rec, http.StatusBadRequest, "value must not be negative")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["message"] != "value must not be negative" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestHandleRPCError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid argument", status.Error(codes.InvalidArgument, "edit kind and value disagree"), http.StatusBadRequest},
		{"out of range", status.Error(codes.OutOfRange, "cell outside the grid"), http.StatusBadRequest},
		{"not found", status.Error(codes.NotFound, "mark set not found"), http.StatusNotFound},
		{"already exists", status.Error(codes.AlreadyExists, "duplicate"), http.StatusConflict},
		{"unavailable", status.Error(codes.Unavailable, "down"), http.StatusServiceUnavailable},
		{"deadline exceeded", status.Error(codes.DeadlineExceeded, "slow"), http.StatusGatewayTimeout},
		{"internal", status.Error(codes.Internal, "boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleRPCError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decodeBody(t, rec)
			if body["success"] != false {
				t.Errorf("success = %v, want false", body["success"])
			}
		})
	}

	t.Run("argument validation message reaches the client", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleRPCError(rec, status.Error(codes.InvalidArgument, "value must not be negative"))

		body := decodeBody(t, rec)
		if body["message"] != "value must not be negative" {
			t.Errorf("message = %v, want the service message", body["message"])
		}
	})

	t.Run("plain error maps to internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleRPCError(rec, errors.New("something else"))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}
