package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/globalfaces/phoenix-backend/environments"
	"github.com/globalfaces/phoenix-backend/pkg/logger"
)

// Client wraps the Stripe API for the donation flows. Every object created
// here carries session_id/donor_id metadata: callbacks only deliver one
// object at a time, and that metadata is the sole channel for correlating a
// callback back to business context.
type Client struct {
	api              *client.API
	webhookSecret    string
	terminalLocation string
}

func NewClient(cfg environments.StripeConfig) *Client {
	api := client.New(cfg.SecretKey, nil)
	return &Client{
		api:              api,
		webhookSecret:    cfg.WebhookSecret,
		terminalLocation: cfg.TerminalLocationID,
	}
}

func (c *Client) TerminalLocationID() string {
	return c.terminalLocation
}

// VerifyWebhook authenticates and parses a callback payload. With no webhook
// secret configured the payload is accepted unsigned; that permissive path is
// meant for local development only and is logged as such.
func (c *Client) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	if c.webhookSecret != "" {
		event, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
		if err != nil {
			return stripe.Event{}, fmt.Errorf("webhook signature error: %w", err)
		}
		return event, nil
	}

	logger.Warnf("STRIPE_WEBHOOK_SECRET not set, accepting unsigned webhook payload (development mode)")

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, fmt.Errorf("webhook payload error: %w", err)
	}
	return event, nil
}

func metadataParams(ctx context.Context, sessionID, donorID string) stripe.Params {
	p := stripe.Params{Context: ctx}
	p.AddMetadata("session_id", sessionID)
	p.AddMetadata("donor_id", donorID)
	return p
}

type PaymentIntentInput struct {
	AmountCents int64
	Currency    string
	SessionID   string
	DonorID     string
}

// CreatePaymentIntent creates a one-time-gift intent. The idempotency key is
// derived from the session so a resubmitted request reuses the same intent.
func (c *Client) CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:        metadataParams(ctx, in.SessionID, in.DonorID),
		Amount:        stripe.Int64(in.AmountCents),
		Currency:      stripe.String(in.Currency),
		CaptureMethod: stripe.String("automatic"),
	}
	if in.SessionID != "" {
		params.IdempotencyKey = stripe.String(in.SessionID + "-pi-1")
	} else {
		params.IdempotencyKey = stripe.String(uuid.NewString())
	}
	return c.api.PaymentIntents.New(params)
}

type TerminalPaymentIntentInput struct {
	AmountCents int64
	Currency    string
	SessionID   string
	DonorID     string
	LocationID  string
}

// CreateTerminalPaymentIntent creates a card-present intent for the tablet
// reader. CAD payments additionally allow interac_present.
func (c *Client) CreateTerminalPaymentIntent(ctx context.Context, in TerminalPaymentIntentInput) (*stripe.PaymentIntent, error) {
	pmTypes := []*string{stripe.String("card_present")}
	if strings.EqualFold(in.Currency, "cad") {
		pmTypes = append(pmTypes, stripe.String("interac_present"))
	}

	params := &stripe.PaymentIntentParams{
		Params:             metadataParams(ctx, in.SessionID, in.DonorID),
		Amount:             stripe.Int64(in.AmountCents),
		Currency:           stripe.String(in.Currency),
		CaptureMethod:      stripe.String("automatic"),
		PaymentMethodTypes: pmTypes,
		SetupFutureUsage:   stripe.String("off_session"),
	}
	if in.LocationID != "" {
		params.PaymentMethodOptions = &stripe.PaymentIntentPaymentMethodOptionsParams{
			CardPresent: &stripe.PaymentIntentPaymentMethodOptionsCardPresentParams{
				RequestExtendedAuthorization: stripe.Bool(true),
			},
		}
	}
	if in.SessionID != "" {
		params.IdempotencyKey = stripe.String(in.SessionID + "-terminal-pi-1")
	} else {
		params.IdempotencyKey = stripe.String(uuid.NewString())
	}
	return c.api.PaymentIntents.New(params)
}

func (c *Client) CreateSetupIntent(ctx context.Context, customerID, usage, sessionID, donorID string) (*stripe.SetupIntent, error) {
	params := &stripe.SetupIntentParams{
		Params:   metadataParams(ctx, sessionID, donorID),
		Customer: stripe.String(customerID),
		Usage:    stripe.String(usage),
	}
	return c.api.SetupIntents.New(params)
}

type SubscriptionInput struct {
	CustomerID string
	PriceID    string
	CancelAt   int64
	Metadata   map[string]string
	SessionID  string
	DonorID    string
}

func (c *Client) CreateSubscription(ctx context.Context, in SubscriptionInput) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{
		Params:   metadataParams(ctx, in.SessionID, in.DonorID),
		Customer: stripe.String(in.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(in.PriceID)},
		},
		CancelAt:         stripe.Int64(in.CancelAt),
		CollectionMethod: stripe.String("charge_automatically"),
		PaymentBehavior:  stripe.String("default_incomplete"),
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.AddExpand("latest_invoice.payment_intent")
	return c.api.Subscriptions.New(params)
}

// FindOrCreateCustomer searches by email first; Stripe customers are keyed
// the same way donors are.
func (c *Client) FindOrCreateCustomer(ctx context.Context, email, name, phone string, metadata map[string]string) (*stripe.Customer, error) {
	searchParams := &stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{
			Context: ctx,
			Query:   fmt.Sprintf("email:'%s'", email),
		},
	}
	iter := c.api.Customers.Search(searchParams)
	if iter.Next() {
		return iter.Customer(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
		Name:   stripe.String(name),
	}
	if phone != "" {
		params.Phone = stripe.String(phone)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return c.api.Customers.New(params)
}

// AttachPaymentMethod attaches the payment method, makes it the customer's
// default, and returns the refreshed customer.
func (c *Client) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*stripe.Customer, error) {
	if _, err := c.api.PaymentMethods.Attach(paymentMethodID, &stripe.PaymentMethodAttachParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
	}); err != nil {
		return nil, err
	}

	if _, err := c.api.Customers.Update(customerID, &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}); err != nil {
		return nil, err
	}

	return c.api.Customers.Get(customerID, &stripe.CustomerParams{Params: stripe.Params{Context: ctx}})
}

// PaymentIntent fetches an intent by ID (used by the correlation resolver).
func (c *Client) PaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	return c.api.PaymentIntents.Get(id, &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}})
}

// PaymentIntentWithLatestCharge expands latest_charge, needed to recover the
// generated_card from a Terminal payment.
func (c *Client) PaymentIntentWithLatestCharge(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}}
	params.AddExpand("latest_charge")
	return c.api.PaymentIntents.Get(id, params)
}

func (c *Client) Invoice(ctx context.Context, id string) (*stripe.Invoice, error) {
	return c.api.Invoices.Get(id, &stripe.InvoiceParams{Params: stripe.Params{Context: ctx}})
}

func (c *Client) Subscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	return c.api.Subscriptions.Get(id, &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}})
}

func (c *Client) ConnectionToken(ctx context.Context) (*stripe.TerminalConnectionToken, error) {
	params := &stripe.TerminalConnectionTokenParams{Params: stripe.Params{Context: ctx}}
	if c.terminalLocation != "" {
		params.Location = stripe.String(c.terminalLocation)
	}
	return c.api.TerminalConnectionTokens.New(params)
}

func (c *Client) RegisterReader(ctx context.Context, registrationCode, locationID, label string) (*stripe.TerminalReader, error) {
	params := &stripe.TerminalReaderParams{
		Params:           stripe.Params{Context: ctx},
		RegistrationCode: stripe.String(registrationCode),
		Location:         stripe.String(locationID),
	}
	if label != "" {
		params.Label = stripe.String(label)
	}
	return c.api.TerminalReaders.New(params)
}
