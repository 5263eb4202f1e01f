package service

import (
	"context"
	"time"

	stripe "github.com/stripe/stripe-go/v74"

	"github.com/globalfaces/phoenix-backend/internal/domain"
	"github.com/globalfaces/phoenix-backend/pkg/payments"
)

type stripeClient interface {
	CreatePaymentIntent(ctx context.Context, in payments.PaymentIntentInput) (*stripe.PaymentIntent, error)
	CreateTerminalPaymentIntent(ctx context.Context, in payments.TerminalPaymentIntentInput) (*stripe.PaymentIntent, error)
	CreateSetupIntent(ctx context.Context, customerID, usage, sessionID, donorID string) (*stripe.SetupIntent, error)
	CreateSubscription(ctx context.Context, in payments.SubscriptionInput) (*stripe.Subscription, error)
	FindOrCreateCustomer(ctx context.Context, email, name, phone string, metadata map[string]string) (*stripe.Customer, error)
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*stripe.Customer, error)
	PaymentIntentWithLatestCharge(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	ConnectionToken(ctx context.Context) (*stripe.TerminalConnectionToken, error)
	RegisterReader(ctx context.Context, registrationCode, locationID, label string) (*stripe.TerminalReader, error)
	TerminalLocationID() string
}

type paymentRepository interface {
	InsertPayment(ctx context.Context, p domain.Payment) error
	InsertPaymentMethod(ctx context.Context, pm domain.PaymentMethodRow) error
}

// PaymentService drives the Stripe side of a donation and mirrors the
// resulting objects into the warehouse.
type PaymentService struct {
	stripe   stripeClient
	payments paymentRepository
	events   eventRepository
}

func NewPaymentService(stripe stripeClient, payments paymentRepository, events eventRepository) *PaymentService {
	return &PaymentService{stripe: stripe, payments: payments, events: events}
}

// IntentInput is a one-time-gift payment intent request.
type IntentInput struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	SessionID string `json:"session_id"`
	DonorID   string `json:"donor_id"`
}

// IntentResult carries what the tablet needs to continue the payment flow.
type IntentResult struct {
	ClientSecret string `json:"client_secret"`
	ID           string `json:"id"`
	Status       string `json:"status"`
}

func (s *PaymentService) CreatePaymentIntent(ctx context.Context, in IntentInput) (*IntentResult, error) {
	if in.Amount <= 0 {
		return nil, NewValidationError("amount must be positive")
	}
	currency := in.Currency
	if currency == "" {
		currency = "cad"
	}

	pi, err := s.stripe.CreatePaymentIntent(ctx, payments.PaymentIntentInput{
		AmountCents: in.Amount,
		Currency:    currency,
		SessionID:   in.SessionID,
		DonorID:     in.DonorID,
	})
	if err != nil {
		return nil, NewProviderError("stripe", err)
	}
	return &IntentResult{ClientSecret: pi.ClientSecret, ID: pi.ID, Status: string(pi.Status)}, nil
}

func (s *PaymentService) CreateTerminalPaymentIntent(ctx context.Context, in IntentInput) (*IntentResult, error) {
	if in.Amount <= 0 {
		return nil, NewValidationError("amount must be positive")
	}
	currency := in.Currency
	if currency == "" {
		currency = "cad"
	}

	pi, err := s.stripe.CreateTerminalPaymentIntent(ctx, payments.TerminalPaymentIntentInput{
		AmountCents: in.Amount,
		Currency:    currency,
		SessionID:   in.SessionID,
		DonorID:     in.DonorID,
		LocationID:  s.stripe.TerminalLocationID(),
	})
	if err != nil {
		return nil, NewProviderError("stripe", err)
	}
	return &IntentResult{ClientSecret: pi.ClientSecret, ID: pi.ID, Status: string(pi.Status)}, nil
}

// SetupIntentInput saves a card for later monthly charges.
type SetupIntentInput struct {
	CustomerID string `json:"customer_id"`
	Usage      string `json:"usage"`
	SessionID  string `json:"session_id"`
	DonorID    string `json:"donor_id"`
}

func (s *PaymentService) CreateSetupIntent(ctx context.Context, in SetupIntentInput) (*IntentResult, error) {
	if in.CustomerID == "" {
		return nil, NewValidationError("customer_id is required")
	}
	usage := in.Usage
	if usage == "" {
		usage = "off_session"
	}

	si, err := s.stripe.CreateSetupIntent(ctx, in.CustomerID, usage, in.SessionID, in.DonorID)
	if err != nil {
		return nil, NewProviderError("stripe", err)
	}
	return &IntentResult{ClientSecret: si.ClientSecret, ID: si.ID, Status: string(si.Status)}, nil
}

// SubscriptionCreateInput starts a monthly gift. CancelAfterYears bounds the
// subscription far in the future instead of leaving it open-ended.
type SubscriptionCreateInput struct {
	CustomerID       string            `json:"customer_id"`
	PriceID          string            `json:"price_id"`
	CancelAfterYears int               `json:"cancel_after_years"`
	Metadata         map[string]string `json:"metadata"`
	SessionID        string            `json:"session_id"`
	DonorID          string            `json:"donor_id"`
}

type SubscriptionResult struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	CancelAt      int64  `json:"cancel_at"`
	LatestInvoice string `json:"latest_invoice,omitempty"`
	PaymentIntent string `json:"payment_intent,omitempty"`
}

func (s *PaymentService) CreateSubscription(ctx context.Context, in SubscriptionCreateInput) (*SubscriptionResult, error) {
	if in.CustomerID == "" || in.PriceID == "" {
		return nil, NewValidationError("customer_id and price_id are required")
	}
	years := in.CancelAfterYears
	if years <= 0 {
		years = 50
	}

	sub, err := s.stripe.CreateSubscription(ctx, payments.SubscriptionInput{
		CustomerID: in.CustomerID,
		PriceID:    in.PriceID,
		CancelAt:   time.Now().UTC().AddDate(years, 0, 0).Unix(),
		Metadata:   in.Metadata,
		SessionID:  in.SessionID,
		DonorID:    in.DonorID,
	})
	if err != nil {
		return nil, NewProviderError("stripe", err)
	}

	if _, err := s.events.Insert(ctx, domain.Event{
		EventType: domain.EventSubscriptionCreated,
		SessionID: in.SessionID,
		DonorID:   in.DonorID,
		Attributes: map[string]any{
			"subscription_id": sub.ID,
			"cancel_at":       sub.CancelAt,
			"price_id":        in.PriceID,
		},
	}); err != nil {
		return nil, err
	}

	payment := domain.Payment{
		PaymentID:            "sub-" + sub.ID,
		Type:                 "MONTHLY",
		StripeCustomerID:     &in.CustomerID,
		StripeSubscriptionID: &sub.ID,
		Status:               string(sub.Status),
	}
	if in.SessionID != "" {
		payment.SessionID = &in.SessionID
	}
	if in.DonorID != "" {
		payment.DonorID = &in.DonorID
	}
	if err := s.payments.InsertPayment(ctx, payment); err != nil {
		return nil, err
	}

	result := &SubscriptionResult{ID: sub.ID, Status: string(sub.Status), CancelAt: sub.CancelAt}
	if sub.LatestInvoice != nil {
		result.LatestInvoice = sub.LatestInvoice.ID
		if sub.LatestInvoice.PaymentIntent != nil {
			result.PaymentIntent = sub.LatestInvoice.PaymentIntent.ID
		}
	}
	return result, nil
}

// CustomerUpsertInput resolves a Stripe customer by email, creating one if
// needed.
type CustomerUpsertInput struct {
	Email    string            `json:"email"`
	Name     string            `json:"name"`
	Phone    string            `json:"phone"`
	Metadata map[string]string `json:"metadata"`
}

func (s *PaymentService) UpsertCustomer(ctx context.Context, in CustomerUpsertInput) (string, error) {
	if in.Email == "" {
		return "", NewValidationError("email is required")
	}

	customer, err := s.stripe.FindOrCreateCustomer(ctx, in.Email, in.Name, in.Phone, in.Metadata)
	if err != nil {
		return "", NewProviderError("stripe", err)
	}

	if _, err := s.events.Insert(ctx, domain.Event{
		EventType: domain.EventCustomerUpsert,
		DonorID:   in.Metadata["donor_id"],
		Attributes: map[string]any{
			"customer_id": customer.ID,
			"email":       in.Email,
		},
	}); err != nil {
		return "", err
	}

	return customer.ID, nil
}

// AttachInput attaches a saved payment method and makes it the customer's
// default. SaveRow controls whether a PAYMENT_METHOD row is mirrored to the
// warehouse.
type AttachInput struct {
	CustomerID      string `json:"customer_id"`
	PaymentMethodID string `json:"payment_method_id"`
	SessionID       string `json:"session_id"`
	DonorID         string `json:"donor_id"`
	SaveRow         bool   `json:"save_row"`
}

type AttachResult struct {
	CustomerID           string `json:"customer_id"`
	PaymentMethodID      string `json:"payment_method_id"`
	DefaultPaymentMethod string `json:"default_payment_method,omitempty"`
}

func (s *PaymentService) AttachPaymentMethod(ctx context.Context, in AttachInput) (*AttachResult, error) {
	if in.CustomerID == "" || in.PaymentMethodID == "" {
		return nil, NewValidationError("customer_id and payment_method_id are required")
	}

	customer, err := s.stripe.AttachPaymentMethod(ctx, in.CustomerID, in.PaymentMethodID)
	if err != nil {
		return nil, NewProviderError("stripe", err)
	}

	if in.SaveRow && in.DonorID != "" {
		if err := s.payments.InsertPaymentMethod(ctx, domain.PaymentMethodRow{
			PMID:                  "pm-" + in.PaymentMethodID,
			DonorID:               in.DonorID,
			StripeCustomerID:      in.CustomerID,
			StripePaymentMethodID: in.PaymentMethodID,
			Usage:                 "off_session",
		}); err != nil {
			return nil, err
		}
	}

	if _, err := s.events.Insert(ctx, domain.Event{
		EventType: domain.EventPaymentMethodAttached,
		SessionID: in.SessionID,
		DonorID:   in.DonorID,
		Attributes: map[string]any{
			"customer_id":       in.CustomerID,
			"payment_method_id": in.PaymentMethodID,
		},
	}); err != nil {
		return nil, err
	}

	result := &AttachResult{CustomerID: in.CustomerID, PaymentMethodID: in.PaymentMethodID}
	if customer.InvoiceSettings != nil && customer.InvoiceSettings.DefaultPaymentMethod != nil {
		result.DefaultPaymentMethod = customer.InvoiceSettings.DefaultPaymentMethod.ID
	}
	return result, nil
}

// PaymentMethodFromIntent recovers the reusable payment method behind a
// finished intent. Terminal payments expose it as a generated_card on the
// charge rather than on the intent itself.
type PaymentMethodFromIntent struct {
	PaymentMethodID string `json:"payment_method_id,omitempty"`
	GeneratedCardID string `json:"generated_card_id,omitempty"`
	Status          string `json:"status"`
}

func (s *PaymentService) GetPaymentMethodFromIntent(ctx context.Context, paymentIntentID string) (*PaymentMethodFromIntent, error) {
	if paymentIntentID == "" {
		return nil, NewValidationError("payment_intent_id is required")
	}

	pi, err := s.stripe.PaymentIntentWithLatestCharge(ctx, paymentIntentID)
	if err != nil {
		return nil, NewProviderError("stripe", err)
	}

	result := &PaymentMethodFromIntent{Status: string(pi.Status)}
	if pi.PaymentMethod != nil {
		result.PaymentMethodID = pi.PaymentMethod.ID
	}
	if pi.LatestCharge != nil {
		if result.PaymentMethodID == "" && pi.LatestCharge.PaymentMethod != "" {
			result.PaymentMethodID = pi.LatestCharge.PaymentMethod
		}
		if details := pi.LatestCharge.PaymentMethodDetails; details != nil && details.CardPresent != nil {
			result.GeneratedCardID = details.CardPresent.GeneratedCard
		}
	}
	return result, nil
}

// ConnectionToken mints a Stripe Terminal connection token for the tablet's
// reader SDK.
func (s *PaymentService) ConnectionToken(ctx context.Context) (string, error) {
	token, err := s.stripe.ConnectionToken(ctx)
	if err != nil {
		return "", NewProviderError("stripe", err)
	}
	return token.Secret, nil
}

// RegisterReaderInput pairs a physical reader with a Terminal location.
type RegisterReaderInput struct {
	RegistrationCode string `json:"registration_code"`
	LocationID       string `json:"location_id"`
	Label            string `json:"label"`
}

type RegisterReaderResult struct {
	ReaderID string `json:"reader_id"`
	Label    string `json:"label"`
	Status   string `json:"status"`
}

func (s *PaymentService) RegisterReader(ctx context.Context, in RegisterReaderInput) (*RegisterReaderResult, error) {
	if in.RegistrationCode == "" {
		return nil, NewValidationError("registration_code is required")
	}
	locationID := in.LocationID
	if locationID == "" {
		locationID = s.stripe.TerminalLocationID()
	}
	if locationID == "" {
		return nil, NewValidationError("location_id is required")
	}

	reader, err := s.stripe.RegisterReader(ctx, in.RegistrationCode, locationID, in.Label)
	if err != nil {
		return nil, NewProviderError("stripe", err)
	}
	return &RegisterReaderResult{
		ReaderID: reader.ID,
		Label:    reader.Label,
		Status:   string(reader.Status),
	}, nil
}

// TerminalLocation exposes the configured Terminal location ID to the tablet.
func (s *PaymentService) TerminalLocation() string {
	return s.stripe.TerminalLocationID()
}
