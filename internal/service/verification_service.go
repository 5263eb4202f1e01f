package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/globalfaces/phoenix-backend/internal/domain"
	"github.com/globalfaces/phoenix-backend/pkg/logger"
	"github.com/globalfaces/phoenix-backend/pkg/redis"
	"github.com/globalfaces/phoenix-backend/pkg/twilio"
)

type verificationRepository interface {
	InsertOutbound(ctx context.Context, v domain.VerificationSms) error
	FindOpenByNumber(ctx context.Context, mobileE164 string) (*domain.VerificationSms, error)
	MarkInbound(ctx context.Context, verifID, inboundBody string, result domain.VerificationResult, twilioMsgSID string) error
	InsertInbound(ctx context.Context, verifID, sessionID, donorID, fromNumber, inboundBody string, result domain.VerificationResult, twilioMsgSID string) error
	LatestForSessionDonor(ctx context.Context, sessionID, donorID string) (*domain.VerificationSms, error)
}

type smsSender interface {
	Configured() bool
	Send(ctx context.Context, to, body string) (*twilio.SendResult, error)
}

type statusCache interface {
	CacheVerificationStatus(ctx context.Context, sessionID, donorID string, status redis.VerificationStatus) error
	GetVerificationStatus(ctx context.Context, sessionID, donorID string) (*redis.VerificationStatus, error)
}

// VerificationService runs the SMS confirmation round-trip: compose and send
// the recap message, match the donor's reply back to the open row, and answer
// the tablet's status polls.
type VerificationService struct {
	verifications verificationRepository
	donors        donorRepository
	sessions      sessionRepository
	events        eventRepository
	sms           smsSender
	cache         statusCache
}

func NewVerificationService(
	verifications verificationRepository,
	donors donorRepository,
	sessions sessionRepository,
	events eventRepository,
	sms smsSender,
	cache statusCache,
) *VerificationService {
	return &VerificationService{
		verifications: verifications,
		donors:        donors,
		sessions:      sessions,
		events:        events,
		sms:           sms,
		cache:         cache,
	}
}

// SendInput describes one confirmation message to compose and send.
type SendInput struct {
	ToE164         string `json:"to_e164"`
	SessionID      string `json:"session_id"`
	DonorID        string `json:"donor_id"`
	CharityName    string `json:"charity_name"`
	GiftType       string `json:"gift_type"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
	PreviewMessage string `json:"preview_message,omitempty"`
}

// SendResult reports the provider message SID for an accepted send.
type SendResult struct {
	SID string `json:"sid"`
}

// Send composes the recap message from the donor's stored record (never from
// client-supplied fields), sends it, and opens a tracking row keyed by the
// provider message SID. The wording of the message body is contractual; do
// not reflow it.
func (s *VerificationService) Send(ctx context.Context, in SendInput) (*SendResult, error) {
	if !s.sms.Configured() {
		return nil, NewProviderError("twilio", fmt.Errorf("client not configured"))
	}
	if in.ToE164 == "" || in.SessionID == "" || in.DonorID == "" {
		return nil, NewValidationError("to_e164, session_id and donor_id are required")
	}

	donor, err := s.donors.GetByID(ctx, in.DonorID)
	if err != nil {
		return nil, err
	}
	if donor == nil {
		return nil, ErrDonorNotFound
	}

	fundraiserFirst := "your fundraiser"
	if display, err := s.sessions.FundraiserDisplayName(ctx, in.SessionID); err != nil {
		return nil, err
	} else if trimmed := strings.TrimSpace(display); trimmed != "" {
		fundraiserFirst = strings.SplitN(trimmed, " ", 2)[0]
	}

	donorName := donorFullName(donor)
	body := in.PreviewMessage
	if body == "" {
		body = composeRecapMessage(donor, donorName, fundraiserFirst, in)
	}

	sent, err := s.sms.Send(ctx, in.ToE164, body)
	if err != nil {
		return nil, NewProviderError("twilio", err)
	}

	row := domain.VerificationSms{
		VerifID:     "tw-" + sent.SID,
		SessionID:   &in.SessionID,
		DonorID:     &in.DonorID,
		MessageBody: &body,
		MobileE164:  &in.ToE164,
	}
	if sent.SID != "" {
		row.TwilioMsgSID = &sent.SID
	}
	if sent.From != "" {
		row.ToNumber = &sent.From
	}
	if err := s.verifications.InsertOutbound(ctx, row); err != nil {
		return nil, err
	}

	if _, err := s.events.Insert(ctx, domain.Event{
		EventType: domain.EventSmsSent,
		SessionID: in.SessionID,
		DonorID:   in.DonorID,
		Attributes: map[string]any{
			"to":               in.ToE164,
			"sid":              sent.SID,
			"body":             body,
			"fundraiser_first": fundraiserFirst,
			"donor_full_name":  donorName,
		},
	}); err != nil {
		return nil, err
	}

	// A new round-trip supersedes whatever result the last one cached; the
	// polling loop must read PENDING until the fresh reply lands.
	if s.cache != nil {
		if err := s.cache.CacheVerificationStatus(ctx, in.SessionID, in.DonorID, redis.VerificationStatus{
			Result: string(domain.VerificationPending),
		}); err != nil {
			logger.Warnf("Failed to reset verification status cache: %v", err)
		}
	}

	return &SendResult{SID: sent.SID}, nil
}

// donorFullName joins the donor's name parts, skipping blanks.
func donorFullName(donor *domain.Donor) string {
	return strings.Join(nonBlank(deref(donor.Title), donor.FirstName, deref(donor.MiddleName), donor.LastName), " ")
}

// composeRecapMessage builds the confirmation body. The double space after the
// fundraiser introduction is part of the approved copy.
func composeRecapMessage(donor *domain.Donor, fullName, fundraiserFirst string, in SendInput) string {
	addrParts := []string{donor.Address1}
	if a2 := deref(donor.Address2); a2 != "" {
		addrParts = append(addrParts, a2)
	}
	addrParts = append(addrParts, donor.City, donor.Region, donor.PostalCode, donor.Country)
	addressLine := strings.Join(nonBlank(addrParts...), ", ")

	dobISO := ""
	if donor.DOBDate != nil {
		dobISO = donor.DOBDate.Format("2006-01-02")
	}

	amount := fmt.Sprintf("$%.2f %s", float64(in.AmountCents)/100, strings.ToUpper(in.Currency))
	freq := "(one-time)"
	if strings.EqualFold(in.GiftType, "MONTHLY") {
		freq = "(monthly)"
	}

	return fmt.Sprintf(
		"Hi %s! It's %s.  Thank you for committing to donate %s %s to %s.\n\n"+
			"Your information is as follows:\n"+
			"Email address: %s\n"+
			"Address: %s\n"+
			"Date of Birth: %s\n\n"+
			"Please confirm (yes/no) that everything above is correct.",
		fullName, fundraiserFirst, amount, freq, in.CharityName,
		donor.Email, addressLine, dobISO,
	)
}

// InboundInput carries the fields of a provider reply callback.
type InboundInput struct {
	MessageSID string
	From       string
	Body       string
	SessionID  string
	DonorID    string
}

// InboundResult tells the handler which acknowledgement to render.
type InboundResult struct {
	Result domain.VerificationResult
}

// HandleInbound normalizes a reply and closes the most recent open tracking
// row for the sender's number. A reply with no open row is recorded
// standalone so it still shows up in the audit trail.
func (s *VerificationService) HandleInbound(ctx context.Context, in InboundInput) (*InboundResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(in.Body))
	result := NormalizeReply(normalized)

	sessionID := in.SessionID
	donorID := in.DonorID

	open, err := s.verifications.FindOpenByNumber(ctx, in.From)
	if err != nil {
		return nil, err
	}

	if open != nil {
		if err := s.verifications.MarkInbound(ctx, open.VerifID, normalized, result, in.MessageSID); err != nil {
			return nil, err
		}
		if sessionID == "" && open.SessionID != nil {
			sessionID = *open.SessionID
		}
		if donorID == "" && open.DonorID != nil {
			donorID = *open.DonorID
		}
	} else {
		verifID := "tw-" + in.MessageSID
		if in.MessageSID == "" {
			verifID = fmt.Sprintf("tw-%d", time.Now().UTC().UnixNano())
		}
		if err := s.verifications.InsertInbound(ctx, verifID, sessionID, donorID, in.From, normalized, result, in.MessageSID); err != nil {
			return nil, err
		}
	}

	if _, err := s.events.Insert(ctx, domain.Event{
		EventType: "SMS_REPLY_" + string(result),
		SessionID: sessionID,
		DonorID:   donorID,
		Attributes: map[string]any{
			"from":        in.From,
			"body":        in.Body,
			"message_sid": in.MessageSID,
		},
	}); err != nil {
		return nil, err
	}

	if s.cache != nil && sessionID != "" && donorID != "" {
		status := redis.VerificationStatus{Result: string(result)}
		if normalized != "" {
			status.InboundBody = &normalized
		}
		if err := s.cache.CacheVerificationStatus(ctx, sessionID, donorID, status); err != nil {
			logger.Warnf("Failed to cache verification status: %v", err)
		}
	}

	return &InboundResult{Result: result}, nil
}

// NormalizeReply maps free-text replies onto the three-valued outcome.
// English and French affirmatives/negatives are accepted; anything else is
// INVALID and the donor is re-prompted.
func NormalizeReply(normalized string) domain.VerificationResult {
	switch normalized {
	case "y", "yes", "oui":
		return domain.VerificationYes
	case "n", "no", "non":
		return domain.VerificationNo
	default:
		return domain.VerificationInvalid
	}
}

// Status describes the latest round-trip for a session/donor pair. A pair
// with no send yet, or a send with no reply, reads PENDING.
type Status struct {
	Result      string  `json:"result"`
	InboundBody *string `json:"inbound_body"`
	SentTS      *string `json:"sent_ts,omitempty"`
}

// GetStatus answers the tablet's polling loop, consulting the cache before
// the warehouse.
func (s *VerificationService) GetStatus(ctx context.Context, sessionID, donorID string) (*Status, error) {
	if sessionID == "" || donorID == "" {
		return nil, NewValidationError("session_id and donor_id are required")
	}

	if s.cache != nil {
		cached, err := s.cache.GetVerificationStatus(ctx, sessionID, donorID)
		if err != nil {
			logger.Warnf("Verification status cache read failed: %v", err)
		} else if cached != nil {
			return &Status{Result: cached.Result, InboundBody: cached.InboundBody}, nil
		}
	}

	latest, err := s.verifications.LatestForSessionDonor(ctx, sessionID, donorID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return &Status{Result: string(domain.VerificationPending)}, nil
	}

	status := &Status{Result: string(domain.VerificationPending), InboundBody: latest.InboundBody}
	if latest.Result != nil && *latest.Result != "" {
		status.Result = *latest.Result
	}
	if latest.SentTS != nil {
		ts := latest.SentTS.UTC().Format(time.RFC3339)
		status.SentTS = &ts
	}
	return status, nil
}

func nonBlank(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
