package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/pkg/response"
	validatorpkg "github.com/globalfaces/phoenix-backend/pkg/validator"
)

// TestFundraiserLogin_BadJSON verifies that invalid JSON returns 400 Bad Request.
func TestFundraiserLogin_BadJSON(t *testing.T) {
	e := echo.New()
	// Validator is not needed here because Bind will fail before Validate is called.
	handler := NewSessionHandler(nil, "")

	reqBody := `{"fundraiser_id": "f-100", "device_id":`
	req := httptest.NewRequest(http.MethodPost, "/fundraiser/login", strings.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.FundraiserLogin(c); err != nil {
		t.Fatalf("FundraiserLogin returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var resp response.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}

	if resp.Success {
		t.Fatalf("expected Success=false, got true")
	}
}

// TestFundraiserLogin_MissingFundraiserID verifies that validation failure
// returns 422 Unprocessable Entity via the validation error handler.
func TestFundraiserLogin_MissingFundraiserID(t *testing.T) {
	e := echo.New()
	e.Validator = validatorpkg.New()

	// service is nil on purpose; validation fails before service is called.
	handler := NewSessionHandler(nil, "")

	reqBody := `{"device_id": "tablet-7"}`
	req := httptest.NewRequest(http.MethodPost, "/fundraiser/login", strings.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.FundraiserLogin(c); err != nil {
		t.Fatalf("FundraiserLogin returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}

	var resp validatorpkg.ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}

	if _, ok := resp.Details["fundraiser_id"]; !ok {
		t.Fatalf("expected Details to contain 'fundraiser_id' key")
	}
}
