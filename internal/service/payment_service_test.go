package service

import (
	"context"
	"errors"
	"testing"
	"time"

	stripe "github.com/stripe/stripe-go/v74"

	"github.com/globalfaces/phoenix-backend/internal/domain"
)

func TestCreateSubscription_MirrorsPaymentRow(t *testing.T) {
	ctx := context.Background()

	stripeClient := &fakeStripeClient{
		subscription: &stripe.Subscription{
			ID:       "sub_123",
			Status:   stripe.SubscriptionStatusIncomplete,
			CancelAt: 1234567890,
			LatestInvoice: &stripe.Invoice{
				ID:            "in_1",
				PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"},
			},
		},
	}
	repo := &fakePaymentRepo{}
	events := &fakeEventRepo{}
	svc := NewPaymentService(stripeClient, repo, events)

	result, err := svc.CreateSubscription(ctx, SubscriptionCreateInput{
		CustomerID: "cus_1",
		PriceID:    "price_1",
		SessionID:  "sess-1",
		DonorID:    "donor-42",
	})
	if err != nil {
		t.Fatalf("CreateSubscription returned error: %v", err)
	}

	if result.ID != "sub_123" || result.LatestInvoice != "in_1" || result.PaymentIntent != "pi_1" {
		t.Errorf("unexpected result: %+v", result)
	}

	// Default horizon is 50 years out.
	wantCancel := time.Now().UTC().AddDate(50, 0, 0).Unix()
	got := stripeClient.subscriptionInput.CancelAt
	if got < wantCancel-60 || got > wantCancel+60 {
		t.Errorf("expected cancel_at ~50 years out, got %d (want ~%d)", got, wantCancel)
	}

	if len(repo.payments) != 1 {
		t.Fatalf("expected 1 payment row, got %d", len(repo.payments))
	}
	row := repo.payments[0]
	if row.PaymentID != "sub-sub_123" {
		t.Errorf("expected payment id keyed by subscription, got %q", row.PaymentID)
	}
	if row.Type != "MONTHLY" {
		t.Errorf("expected MONTHLY type, got %q", row.Type)
	}
	if row.Amount != nil || row.Currency != nil {
		t.Errorf("expected null amount/currency for subscriptions, got %+v", row)
	}
	if row.StripeSubscriptionID == nil || *row.StripeSubscriptionID != "sub_123" {
		t.Errorf("expected subscription id on row, got %v", row.StripeSubscriptionID)
	}

	found := false
	for _, et := range events.eventTypes() {
		if et == domain.EventSubscriptionCreated {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected SUBSCRIPTION_CREATED event, got %v", events.eventTypes())
	}
}

func TestAttachPaymentMethod_SavesRow(t *testing.T) {
	ctx := context.Background()

	stripeClient := &fakeStripeClient{
		customer: &stripe.Customer{
			ID: "cus_1",
			InvoiceSettings: &stripe.CustomerInvoiceSettings{
				DefaultPaymentMethod: &stripe.PaymentMethod{ID: "pm_1"},
			},
		},
	}
	repo := &fakePaymentRepo{}
	events := &fakeEventRepo{}
	svc := NewPaymentService(stripeClient, repo, events)

	result, err := svc.AttachPaymentMethod(ctx, AttachInput{
		CustomerID:      "cus_1",
		PaymentMethodID: "pm_1",
		DonorID:         "donor-42",
		SaveRow:         true,
	})
	if err != nil {
		t.Fatalf("AttachPaymentMethod returned error: %v", err)
	}
	if result.DefaultPaymentMethod != "pm_1" {
		t.Errorf("expected default payment method pm_1, got %q", result.DefaultPaymentMethod)
	}

	if len(repo.paymentMethods) != 1 {
		t.Fatalf("expected 1 payment method row, got %d", len(repo.paymentMethods))
	}
	row := repo.paymentMethods[0]
	if row.PMID != "pm-pm_1" || row.DonorID != "donor-42" {
		t.Errorf("unexpected payment method row: %+v", row)
	}

	last := events.lastEvent()
	if last == nil || last.EventType != domain.EventPaymentMethodAttached {
		t.Fatalf("expected PAYMENT_METHOD_ATTACHED event, got %+v", last)
	}
}

func TestAttachPaymentMethod_NoRowWithoutDonor(t *testing.T) {
	ctx := context.Background()

	stripeClient := &fakeStripeClient{customer: &stripe.Customer{ID: "cus_1"}}
	repo := &fakePaymentRepo{}
	svc := NewPaymentService(stripeClient, repo, &fakeEventRepo{})

	_, err := svc.AttachPaymentMethod(ctx, AttachInput{
		CustomerID:      "cus_1",
		PaymentMethodID: "pm_1",
		SaveRow:         true,
	})
	if err != nil {
		t.Fatalf("AttachPaymentMethod returned error: %v", err)
	}
	if len(repo.paymentMethods) != 0 {
		t.Fatalf("expected no row without a donor id, got %d", len(repo.paymentMethods))
	}
}

func TestCreatePaymentIntent_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewPaymentService(&fakeStripeClient{}, &fakePaymentRepo{}, &fakeEventRepo{})

	_, err := svc.CreatePaymentIntent(ctx, IntentInput{Amount: 0})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for zero amount, got %v", err)
	}
}

func TestGetPaymentMethodFromIntent_TerminalGeneratedCard(t *testing.T) {
	ctx := context.Background()
	svc := NewPaymentService(&fakeStripeClient{}, &fakePaymentRepo{}, &fakeEventRepo{})

	result, err := svc.GetPaymentMethodFromIntent(ctx, "pi_1")
	if err != nil {
		t.Fatalf("GetPaymentMethodFromIntent returned error: %v", err)
	}
	if result.PaymentMethodID != "pm_charge" {
		t.Errorf("expected charge payment method fallback, got %q", result.PaymentMethodID)
	}
	if result.GeneratedCardID != "pm_generated" {
		t.Errorf("expected generated card from card-present details, got %q", result.GeneratedCardID)
	}
}

func TestRegisterReader_FallsBackToConfiguredLocation(t *testing.T) {
	ctx := context.Background()

	stripeClient := &fakeStripeClient{location: "tml_default"}
	svc := NewPaymentService(stripeClient, &fakePaymentRepo{}, &fakeEventRepo{})

	result, err := svc.RegisterReader(ctx, RegisterReaderInput{RegistrationCode: "simulated-wpe", Label: "front-desk"})
	if err != nil {
		t.Fatalf("RegisterReader returned error: %v", err)
	}
	if result.ReaderID != "tmr_1" {
		t.Errorf("unexpected reader result: %+v", result)
	}

	// No code at all is rejected.
	if _, err := svc.RegisterReader(ctx, RegisterReaderInput{}); err == nil {
		t.Fatalf("expected validation error without registration code")
	}
}
