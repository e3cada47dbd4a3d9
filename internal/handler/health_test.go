package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_Welcome(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	h.Welcome(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if body["message"] != "The Guild awaits your journey" {
		t.Errorf("unexpected message %v", body["message"])
	}
	if body["version"] != Version {
		t.Errorf("unexpected version %v", body["version"])
	}
	if body["missions"] != float64(13) {
		t.Errorf("expected 13 missions, got %v", body["missions"])
	}
}

func TestHealthHandler_Welcome_UnknownPath(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler()

	req := httptest.NewRequest(http.MethodGet, "/no-such-path", nil)
	rr := httptest.NewRecorder()

	h.Welcome(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestHealthHandler_Ping(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()

	h.Ping(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if body["status"] != "operational" {
		t.Errorf("expected operational status, got %v", body["status"])
	}
}
