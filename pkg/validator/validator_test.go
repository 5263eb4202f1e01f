package validator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

// Mirrors the fundraiser login payload.
type loginFixture struct {
	FundraiserID string `json:"fundraiser_id" validate:"required"`
	DeviceID     string `json:"device_id"`
}

// Mirrors the customer upsert payload.
type customerFixture struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

func TestValidate_MissingRequiredFieldUsesJSONName(t *testing.T) {
	cv := New()

	err := cv.Validate(loginFixture{DeviceID: "tablet-7"})
	if err == nil {
		t.Fatalf("expected validation error, got nil")
	}

	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if _, exists := ve.Errors["fundraiser_id"]; !exists {
		t.Errorf("expected error keyed by json tag 'fundraiser_id', got %v", ve.Errors)
	}
	if _, exists := ve.Errors["FundraiserID"]; exists {
		t.Errorf("expected no Go field name key, got %v", ve.Errors)
	}
}

func TestValidate_InvalidEmail(t *testing.T) {
	cv := New()

	err := cv.Validate(customerFixture{Email: "not-an-email", Name: "Dana Roy"})
	if err == nil {
		t.Fatalf("expected validation error, got nil")
	}

	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	msg, exists := ve.Errors["email"]
	if !exists {
		t.Fatalf("expected 'email' in errors, got %v", ve.Errors)
	}
	if msg == "" {
		t.Errorf("expected a translated message, got empty string")
	}
}

func TestValidate_ValidPayloadPasses(t *testing.T) {
	cv := New()

	if err := cv.Validate(loginFixture{FundraiserID: "F001"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := cv.Validate(customerFixture{Email: "dana@example.com"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidationError_ErrorIsDeterministic(t *testing.T) {
	ve := &ValidationError{Errors: map[string]string{
		"email":         "email is invalid",
		"fundraiser_id": "fundraiser_id is required",
	}}

	got := ve.Error()
	want := "email: email is invalid; fundraiser_id: fundraiser_id is required"
	if got != want {
		t.Errorf("expected sorted field order:\n got: %q\nwant: %q", got, want)
	}
}

func TestHandleValidationError_Renders422WithDetails(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/fundraiser/login", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	cv := New()
	err := cv.Validate(loginFixture{})

	if handleErr := HandleValidationError(c, err); handleErr != nil {
		t.Fatalf("HandleValidationError returned error: %v", handleErr)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	var resp ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Success {
		t.Errorf("expected Success=false, got true")
	}
	if resp.Error != "Validation failed" {
		t.Errorf("expected Error=%q, got %q", "Validation failed", resp.Error)
	}
	if _, ok := resp.Details["fundraiser_id"]; !ok {
		t.Errorf("expected Details to contain 'fundraiser_id', got %v", resp.Details)
	}
}
