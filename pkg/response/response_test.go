package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return body
}

func TestForbidden_CarriesRefusalMessage(t *testing.T) {
	c, rec := newContext()

	if err := Forbidden(c, "Donor must be at least 25 years old"); err != nil {
		t.Fatalf("Forbidden returned error: %v", err)
	}

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Success {
		t.Errorf("expected Success=false, got true")
	}
	if body.Error != "Donor must be at least 25 years old" {
		t.Errorf("expected refusal message verbatim, got %q", body.Error)
	}
}

func TestNotFound_UsesGivenMessage(t *testing.T) {
	c, rec := newContext()

	if err := NotFound(c, "Fundraiser not found or inactive"); err != nil {
		t.Fatalf("NotFound returned error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != "Fundraiser not found or inactive" {
		t.Errorf("expected message verbatim, got %q", body.Error)
	}
}

func TestBadRequest_WrapsError(t *testing.T) {
	c, rec := newContext()

	if err := BadRequest(c, errors.New("amount must be positive")); err != nil {
		t.Fatalf("BadRequest returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != "amount must be positive" {
		t.Errorf("expected error text, got %q", body.Error)
	}
}

func TestUnauthorized_FixedMessage(t *testing.T) {
	c, rec := newContext()

	if err := Unauthorized(c); err != nil {
		t.Fatalf("Unauthorized returned error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Error == "" {
		t.Errorf("expected a fixed error message, got empty string")
	}
}
