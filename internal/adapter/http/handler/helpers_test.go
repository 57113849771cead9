package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/wallets?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/wallets?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", domain.NewValidationError("name must not be empty"), http.StatusBadRequest},
		{"invalid item type", domain.ErrInvalidItemType, http.StatusBadRequest},
		{"wallet not found", domain.ErrWalletNotFound, http.StatusNotFound},
		{"wrapped item not found", fmt.Errorf("load: %w", domain.ErrWalletItemNotFound), http.StatusNotFound},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"email taken", domain.ErrEmailTaken, http.StatusConflict},
		{"duplicate link", domain.ErrUserWalletExists, http.StatusConflict},
		{"consistency", &domain.ConsistencyError{Op: "create_wallet_item", Err: errors.New("commit")}, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteJSONWrapsData(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"status": "ok"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Data["status"] != "ok" {
		t.Fatalf("expected payload under data, got %s", rr.Body.String())
	}
}

func TestWriteDomainErrorValidationMessages(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/wallet-items", nil)

	writeDomainError(rr, req, domain.NewValidationError("value is required", "type is required"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	resp := decodeEnvelope(t, rr)
	if len(resp.Errors) != 2 || resp.Errors[0] != "value is required" {
		t.Fatalf("expected both validation messages, got %+v", resp.Errors)
	}
}

func TestWriteDomainErrorHidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/wallet-items", nil)

	writeDomainError(rr, req, &domain.ConsistencyError{Op: "create_wallet_item", Err: errors.New("pq: deadlock detected")})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	resp := decodeEnvelope(t, rr)
	if len(resp.Errors) != 1 || resp.Errors[0] != internalErrorMessage {
		t.Fatalf("expected generic message, got %+v", resp.Errors)
	}
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode envelope: %v: %s", err, rr.Body.String())
	}
	return resp
}
