package domain

// Event is one append-only audit-log entry. EVENT_ID is either supplied by
// the caller (externally keyed events such as webhook deliveries, so repeat
// deliveries collapse onto one row) or generated. Attributes is free-form
// and preserves full provider payloads.
type Event struct {
	EventType    string         `json:"event_type"`
	SessionID    string         `json:"session_id,omitempty"`
	DonorID      string         `json:"donor_id,omitempty"`
	FundraiserID string         `json:"fundraiser_id,omitempty"`
	Attributes   map[string]any `json:"attributes"`
}

// Audit event types written by the services.
const (
	EventSessionStarted        = "SESSION_STARTED"
	EventDonorInsert           = "DONOR_INSERT"
	EventDonorUpdate           = "DONOR_UPDATE"
	EventDonorConsentUpdate    = "DONOR_CONSENT_UPDATE"
	EventSmsSent               = "SMS_SENT"
	EventSignatureCaptured     = "SIGNATURE_CAPTURED"
	EventSubscriptionCreated   = "SUBSCRIPTION_CREATED"
	EventCustomerUpsert        = "CUSTOMER_UPSERT"
	EventPaymentMethodAttached = "PAYMENT_METHOD_ATTACHED"
)
