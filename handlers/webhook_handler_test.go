package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/internal/domain"
	"github.com/globalfaces/phoenix-backend/internal/service"
	"github.com/globalfaces/phoenix-backend/pkg/twilio"
)

// Minimal fakes for driving the inbound-reply path end to end through the
// handler. The service layer has its own coverage; these tests pin down the
// HTTP contract: signature rejection and the TwiML acknowledgement.
type stubVerificationRepo struct {
	open *domain.VerificationSms
}

func (r *stubVerificationRepo) InsertOutbound(ctx context.Context, v domain.VerificationSms) error {
	return nil
}

func (r *stubVerificationRepo) FindOpenByNumber(ctx context.Context, mobileE164 string) (*domain.VerificationSms, error) {
	return r.open, nil
}

func (r *stubVerificationRepo) MarkInbound(ctx context.Context, verifID, inboundBody string, result domain.VerificationResult, twilioMsgSID string) error {
	return nil
}

func (r *stubVerificationRepo) InsertInbound(ctx context.Context, verifID, sessionID, donorID, fromNumber, inboundBody string, result domain.VerificationResult, twilioMsgSID string) error {
	return nil
}

func (r *stubVerificationRepo) LatestForSessionDonor(ctx context.Context, sessionID, donorID string) (*domain.VerificationSms, error) {
	return nil, nil
}

type stubEventRepo struct{}

func (r *stubEventRepo) Insert(ctx context.Context, ev domain.Event) (string, error) {
	return "ev-1", nil
}

func (r *stubEventRepo) InsertIfAbsent(ctx context.Context, eventID string, ev domain.Event) (bool, error) {
	return true, nil
}

func postTwilioForm(t *testing.T, handler *WebhookHandler, form url.Values, signature string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if signature != "" {
		req.Header.Set("X-Twilio-Signature", signature)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.TwilioInbound(c); err != nil {
		t.Fatalf("TwilioInbound returned error: %v", err)
	}
	return rec
}

func newInboundHandler(open *domain.VerificationSms) *WebhookHandler {
	verifications := service.NewVerificationService(
		&stubVerificationRepo{open: open},
		nil, nil,
		&stubEventRepo{},
		nil, nil,
	)
	return NewWebhookHandler(nil, verifications, nil)
}

func TestTwilioInbound_InvalidSignatureReturns403(t *testing.T) {
	handler := NewWebhookHandler(nil, nil, twilio.NewValidator("auth-token"))

	form := url.Values{}
	form.Set("MessageSid", "SM123")
	form.Set("From", "+16135550101")
	form.Set("Body", "yes")

	rec := postTwilioForm(t, handler, form, "bogus-signature")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestTwilioInbound_ValidReplyAck(t *testing.T) {
	sessionID := "sess-1"
	donorID := "donor-1"
	handler := newInboundHandler(&domain.VerificationSms{
		VerifID:   "tw-SM100",
		SessionID: &sessionID,
		DonorID:   &donorID,
	})

	form := url.Values{}
	form.Set("MessageSid", "SM123")
	form.Set("From", "+16135550101")
	form.Set("Body", "Yes")

	rec := postTwilioForm(t, handler, form, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/xml" {
		t.Errorf("expected application/xml content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Thanks! Please proceed on the tablet.") {
		t.Errorf("expected proceed acknowledgement, got %q", rec.Body.String())
	}
}

func TestTwilioInbound_InvalidReplyAck(t *testing.T) {
	handler := newInboundHandler(nil)

	form := url.Values{}
	form.Set("MessageSid", "SM124")
	form.Set("From", "+16135550101")
	form.Set("Body", "maybe")

	rec := postTwilioForm(t, handler, form, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Sorry, please reply YES or NO.") {
		t.Errorf("expected re-prompt acknowledgement, got %q", rec.Body.String())
	}
}
