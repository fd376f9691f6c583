package jsonutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/apperr"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"slug": "guides"})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	env := decodeEnvelope(t, rec)
	if env["success"] != true {
		t.Error("success should be true")
	}
	if env["data"] == nil {
		t.Error("data should be present")
	}
	if _, has := env["message"]; has {
		t.Error("message should be omitted on success with data")
	}
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]string{"article_id": "AN-00100"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env["success"] != true {
		t.Error("success should be true")
	}
}

func TestBadRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequest(rec, "title is required")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env["success"] != false {
		t.Error("success should be false")
	}
	if env["message"] != "title is required" {
		t.Errorf("message = %v, want %q", env["message"], "title is required")
	}
	if _, has := env["data"]; has {
		t.Error("data should be omitted on failure")
	}
}

func TestErr_Mapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", apperr.Validationf("bad duration"), http.StatusBadRequest, "bad duration"},
		{"guard", apperr.Guardf("section has 3 articles"), http.StatusBadRequest, "section has 3 articles"},
		{"not found", apperr.NotFoundf("section not found"), http.StatusNotFound, "section not found"},
		{"infra hides details", apperr.Infra(errors.New("conn refused"), "query failed"), http.StatusInternalServerError, "internal server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Err(rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if env["message"] != tc.wantMsg {
				t.Errorf("message = %v, want %q", env["message"], tc.wantMsg)
			}
		})
	}
}
