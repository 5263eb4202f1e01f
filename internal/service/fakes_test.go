package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v74"

	"github.com/globalfaces/phoenix-backend/internal/domain"
	"github.com/globalfaces/phoenix-backend/pkg/payments"
	"github.com/globalfaces/phoenix-backend/pkg/redis"
	"github.com/globalfaces/phoenix-backend/pkg/twilio"
)

//
// Test fakes shared by the service tests.
//

type insertedEvent struct {
	eventID string
	event   domain.Event
}

type fakeEventRepo struct {
	inserted []insertedEvent
	existing map[string]bool
	nextID   int
}

func (r *fakeEventRepo) Insert(ctx context.Context, ev domain.Event) (string, error) {
	r.nextID++
	id := fmt.Sprintf("evt-%d", r.nextID)
	r.inserted = append(r.inserted, insertedEvent{eventID: id, event: ev})
	return id, nil
}

func (r *fakeEventRepo) InsertIfAbsent(ctx context.Context, eventID string, ev domain.Event) (bool, error) {
	if r.existing == nil {
		r.existing = map[string]bool{}
	}
	if r.existing[eventID] {
		return false, nil
	}
	r.existing[eventID] = true
	r.inserted = append(r.inserted, insertedEvent{eventID: eventID, event: ev})
	return true, nil
}

func (r *fakeEventRepo) lastEvent() *domain.Event {
	if len(r.inserted) == 0 {
		return nil
	}
	return &r.inserted[len(r.inserted)-1].event
}

func (r *fakeEventRepo) eventTypes() []string {
	types := make([]string, 0, len(r.inserted))
	for _, e := range r.inserted {
		types = append(types, e.event.EventType)
	}
	return types
}

type fakeDonorRepo struct {
	idsByEmail map[string]string
	donors     map[string]*domain.Donor

	inserted       []domain.Donor
	insertedDOB    time.Time
	updated        []domain.Donor
	updatedDOB     time.Time
	consentUpdates map[string]domain.Consent
}

func (r *fakeDonorRepo) GetIDByEmail(ctx context.Context, email string) (string, error) {
	return r.idsByEmail[email], nil
}

func (r *fakeDonorRepo) Insert(ctx context.Context, d domain.Donor, dob time.Time) error {
	r.inserted = append(r.inserted, d)
	r.insertedDOB = dob
	return nil
}

func (r *fakeDonorRepo) Update(ctx context.Context, d domain.Donor, dob time.Time) error {
	r.updated = append(r.updated, d)
	r.updatedDOB = dob
	return nil
}

func (r *fakeDonorRepo) GetByID(ctx context.Context, donorID string) (*domain.Donor, error) {
	return r.donors[donorID], nil
}

func (r *fakeDonorRepo) UpdateConsent(ctx context.Context, donorID string, consent domain.Consent) error {
	if r.consentUpdates == nil {
		r.consentUpdates = map[string]domain.Consent{}
	}
	r.consentUpdates[donorID] = consent
	return nil
}

type fakeSessionRepo struct {
	snapshotCharity  *string
	snapshotCampaign *string
	displayName      string

	sessions      []domain.Session
	donorSessions []domain.DonorSession
}

func (r *fakeSessionRepo) Insert(ctx context.Context, s domain.Session) error {
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *fakeSessionRepo) Snapshot(ctx context.Context, sessionID string) (*string, *string, error) {
	return r.snapshotCharity, r.snapshotCampaign, nil
}

func (r *fakeSessionRepo) FundraiserDisplayName(ctx context.Context, sessionID string) (string, error) {
	return r.displayName, nil
}

func (r *fakeSessionRepo) InsertDonorSession(ctx context.Context, ds domain.DonorSession) error {
	r.donorSessions = append(r.donorSessions, ds)
	return nil
}

type fakeFundraiserRepo struct {
	fundraiser *domain.Fundraiser
	charity    *domain.Charity
	campaign   *domain.Campaign
}

func (r *fakeFundraiserRepo) GetActive(ctx context.Context, fundraiserID string) (*domain.Fundraiser, error) {
	if r.fundraiser != nil && r.fundraiser.FundraiserID == fundraiserID {
		return r.fundraiser, nil
	}
	return nil, nil
}

func (r *fakeFundraiserRepo) GetCharity(ctx context.Context, charityID string) (*domain.Charity, error) {
	return r.charity, nil
}

func (r *fakeFundraiserRepo) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	return r.campaign, nil
}

type fakeProductRepo struct {
	products []domain.Product
}

func (r *fakeProductRepo) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Product, error) {
	matched := []domain.Product{}
	for _, p := range r.products {
		if p.CampaignID != nil && *p.CampaignID == campaignID {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (r *fakeProductRepo) Lookup(ctx context.Context, campaignID string, amountCents int64, currency, productType string) (*domain.Product, error) {
	for i := range r.products {
		p := &r.products[i]
		if p.CampaignID != nil && *p.CampaignID == campaignID &&
			p.AmountCents == amountCents &&
			strings.EqualFold(p.Currency, currency) &&
			strings.EqualFold(p.ProductType, productType) {
			return p, nil
		}
	}
	return nil, nil
}

type markInboundCall struct {
	verifID     string
	inboundBody string
	result      domain.VerificationResult
	msgSID      string
}

type insertInboundCall struct {
	verifID     string
	sessionID   string
	donorID     string
	fromNumber  string
	inboundBody string
	result      domain.VerificationResult
	msgSID      string
}

type fakeVerificationRepo struct {
	openRow *domain.VerificationSms
	latest  *domain.VerificationSms

	outbound       []domain.VerificationSms
	markedInbound  []markInboundCall
	standaloneRows []insertInboundCall
}

func (r *fakeVerificationRepo) InsertOutbound(ctx context.Context, v domain.VerificationSms) error {
	r.outbound = append(r.outbound, v)
	return nil
}

func (r *fakeVerificationRepo) FindOpenByNumber(ctx context.Context, mobileE164 string) (*domain.VerificationSms, error) {
	if r.openRow != nil && r.openRow.MobileE164 != nil && *r.openRow.MobileE164 == mobileE164 {
		return r.openRow, nil
	}
	return nil, nil
}

func (r *fakeVerificationRepo) MarkInbound(ctx context.Context, verifID, inboundBody string, result domain.VerificationResult, twilioMsgSID string) error {
	r.markedInbound = append(r.markedInbound, markInboundCall{
		verifID:     verifID,
		inboundBody: inboundBody,
		result:      result,
		msgSID:      twilioMsgSID,
	})
	return nil
}

func (r *fakeVerificationRepo) InsertInbound(ctx context.Context, verifID, sessionID, donorID, fromNumber, inboundBody string, result domain.VerificationResult, twilioMsgSID string) error {
	r.standaloneRows = append(r.standaloneRows, insertInboundCall{
		verifID:     verifID,
		sessionID:   sessionID,
		donorID:     donorID,
		fromNumber:  fromNumber,
		inboundBody: inboundBody,
		result:      result,
		msgSID:      twilioMsgSID,
	})
	return nil
}

func (r *fakeVerificationRepo) LatestForSessionDonor(ctx context.Context, sessionID, donorID string) (*domain.VerificationSms, error) {
	return r.latest, nil
}

type fakeSmsSender struct {
	configured bool
	sid        string
	from       string
	sendErr    error

	lastTo   string
	lastBody string
}

func (c *fakeSmsSender) Configured() bool {
	return c.configured
}

func (c *fakeSmsSender) Send(ctx context.Context, to, body string) (*twilio.SendResult, error) {
	c.lastTo = to
	c.lastBody = body
	if c.sendErr != nil {
		return nil, c.sendErr
	}
	return &twilio.SendResult{SID: c.sid, From: c.from}, nil
}

type fakeCache struct {
	statuses  map[string]redis.VerificationStatus
	processed map[string]bool
}

func (c *fakeCache) statusKey(sessionID, donorID string) string {
	return sessionID + ":" + donorID
}

func (c *fakeCache) CacheVerificationStatus(ctx context.Context, sessionID, donorID string, status redis.VerificationStatus) error {
	if c.statuses == nil {
		c.statuses = map[string]redis.VerificationStatus{}
	}
	c.statuses[c.statusKey(sessionID, donorID)] = status
	return nil
}

func (c *fakeCache) GetVerificationStatus(ctx context.Context, sessionID, donorID string) (*redis.VerificationStatus, error) {
	if status, ok := c.statuses[c.statusKey(sessionID, donorID)]; ok {
		return &status, nil
	}
	return nil, nil
}

func (c *fakeCache) WasEventProcessed(ctx context.Context, eventID string) (bool, error) {
	return c.processed[eventID], nil
}

func (c *fakeCache) MarkEventProcessed(ctx context.Context, eventID string) error {
	if c.processed == nil {
		c.processed = map[string]bool{}
	}
	c.processed[eventID] = true
	return nil
}

type fakeSignatureRepo struct {
	inserted []domain.Signature
}

func (r *fakeSignatureRepo) Insert(ctx context.Context, s domain.Signature) error {
	r.inserted = append(r.inserted, s)
	return nil
}

type stagePut struct {
	uri  string
	data []byte
}

type fakeStage struct {
	puts       []stagePut
	presignURL string
	presignErr error
}

func (s *fakeStage) Put(ctx context.Context, stageURI string, data []byte) error {
	s.puts = append(s.puts, stagePut{uri: stageURI, data: data})
	return nil
}

func (s *fakeStage) Presign(ctx context.Context, stageURI string, expires time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return s.presignURL, nil
}

// fakeStripeFetcher serves the correlation resolver.
type fakeStripeFetcher struct {
	paymentIntents map[string]*stripe.PaymentIntent
	invoices       map[string]*stripe.Invoice
	subscriptions  map[string]*stripe.Subscription

	piFetches  []string
	invFetches []string
	subFetches []string
}

func (f *fakeStripeFetcher) PaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	f.piFetches = append(f.piFetches, id)
	if pi, ok := f.paymentIntents[id]; ok {
		return pi, nil
	}
	return nil, fmt.Errorf("no such payment intent: %s", id)
}

func (f *fakeStripeFetcher) Invoice(ctx context.Context, id string) (*stripe.Invoice, error) {
	f.invFetches = append(f.invFetches, id)
	if inv, ok := f.invoices[id]; ok {
		return inv, nil
	}
	return nil, fmt.Errorf("no such invoice: %s", id)
}

func (f *fakeStripeFetcher) Subscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	f.subFetches = append(f.subFetches, id)
	if sub, ok := f.subscriptions[id]; ok {
		return sub, nil
	}
	return nil, fmt.Errorf("no such subscription: %s", id)
}

// fakeVerifier parses the payload without checking any signature.
type fakeVerifier struct {
	verifyErr error
}

func (v *fakeVerifier) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	if v.verifyErr != nil {
		return stripe.Event{}, v.verifyErr
	}
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, err
	}
	return event, nil
}

type fakeStripeClient struct {
	subscription *stripe.Subscription
	customer     *stripe.Customer
	location     string

	subscriptionInput payments.SubscriptionInput
	attachedCustomer  string
	attachedPM        string
}

func (c *fakeStripeClient) CreatePaymentIntent(ctx context.Context, in payments.PaymentIntentInput) (*stripe.PaymentIntent, error) {
	return &stripe.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret", Status: stripe.PaymentIntentStatusRequiresPaymentMethod}, nil
}

func (c *fakeStripeClient) CreateTerminalPaymentIntent(ctx context.Context, in payments.TerminalPaymentIntentInput) (*stripe.PaymentIntent, error) {
	return &stripe.PaymentIntent{ID: "pi_term", ClientSecret: "pi_term_secret", Status: stripe.PaymentIntentStatusRequiresPaymentMethod}, nil
}

func (c *fakeStripeClient) CreateSetupIntent(ctx context.Context, customerID, usage, sessionID, donorID string) (*stripe.SetupIntent, error) {
	return &stripe.SetupIntent{ID: "seti_1", ClientSecret: "seti_1_secret", Status: stripe.SetupIntentStatusRequiresPaymentMethod}, nil
}

func (c *fakeStripeClient) CreateSubscription(ctx context.Context, in payments.SubscriptionInput) (*stripe.Subscription, error) {
	c.subscriptionInput = in
	return c.subscription, nil
}

func (c *fakeStripeClient) FindOrCreateCustomer(ctx context.Context, email, name, phone string, metadata map[string]string) (*stripe.Customer, error) {
	return c.customer, nil
}

func (c *fakeStripeClient) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*stripe.Customer, error) {
	c.attachedCustomer = customerID
	c.attachedPM = paymentMethodID
	return c.customer, nil
}

func (c *fakeStripeClient) PaymentIntentWithLatestCharge(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	return &stripe.PaymentIntent{
		ID:     id,
		Status: stripe.PaymentIntentStatusSucceeded,
		LatestCharge: &stripe.Charge{
			PaymentMethod: "pm_charge",
			PaymentMethodDetails: &stripe.ChargePaymentMethodDetails{
				CardPresent: &stripe.ChargePaymentMethodDetailsCardPresent{
					GeneratedCard: "pm_generated",
				},
			},
		},
	}, nil
}

func (c *fakeStripeClient) ConnectionToken(ctx context.Context) (*stripe.TerminalConnectionToken, error) {
	return &stripe.TerminalConnectionToken{Secret: "ct_secret"}, nil
}

func (c *fakeStripeClient) RegisterReader(ctx context.Context, registrationCode, locationID, label string) (*stripe.TerminalReader, error) {
	return &stripe.TerminalReader{ID: "tmr_1", Label: label, Status: "online"}, nil
}

func (c *fakeStripeClient) TerminalLocationID() string {
	return c.location
}

type fakePaymentRepo struct {
	payments       []domain.Payment
	paymentMethods []domain.PaymentMethodRow
}

func (r *fakePaymentRepo) InsertPayment(ctx context.Context, p domain.Payment) error {
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakePaymentRepo) InsertPaymentMethod(ctx context.Context, pm domain.PaymentMethodRow) error {
	r.paymentMethods = append(r.paymentMethods, pm)
	return nil
}

func strptr(s string) *string {
	return &s
}
