package service

import (
	"context"
	"strings"
	"time"

	"github.com/globalfaces/phoenix-backend/internal/domain"
	"github.com/globalfaces/phoenix-backend/pkg/ids"
	"github.com/globalfaces/phoenix-backend/pkg/logger"
)

// minimumDonorAge is the regulatory floor for face-to-face sign-ups.
const minimumDonorAge = 25

type donorRepository interface {
	GetIDByEmail(ctx context.Context, email string) (string, error)
	Insert(ctx context.Context, d domain.Donor, dob time.Time) error
	Update(ctx context.Context, d domain.Donor, dob time.Time) error
	GetByID(ctx context.Context, donorID string) (*domain.Donor, error)
	UpdateConsent(ctx context.Context, donorID string, consent domain.Consent) error
}

type DonorService struct {
	donors   donorRepository
	sessions sessionRepository
	events   eventRepository
}

func NewDonorService(donors donorRepository, sessions sessionRepository, events eventRepository) *DonorService {
	return &DonorService{donors: donors, sessions: sessions, events: events}
}

// DonorInput is the identity form captured on the tablet.
type DonorInput struct {
	SessionID    string `json:"session_id"`
	FundraiserID string `json:"fundraiser_id"`
	Title        string `json:"title"`
	FirstName    string `json:"first_name"`
	MiddleName   string `json:"middle_name"`
	LastName     string `json:"last_name"`
	DOB          string `json:"dob"`
	MobileE164   string `json:"mobile_e164"`
	Email        string `json:"email"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	City         string `json:"city"`
	Region       string `json:"region"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

// UpsertResult reports the resolved donor and whether a new row was created.
type UpsertResult struct {
	DonorID string `json:"donor_id"`
	Created bool   `json:"created"`
}

// Upsert validates the identity form, enforces the age floor, and writes the
// donor keyed by email: the same email always resolves to the same DONOR_ID,
// with fields overwritten to the latest submission. When a session is given,
// the donor is linked to it with the session's charity/campaign snapshot.
func (s *DonorService) Upsert(ctx context.Context, in DonorInput) (*UpsertResult, error) {
	if missing := missingFields(in); len(missing) > 0 {
		return nil, NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}

	dob, err := time.Parse("2006-01-02", strings.TrimSpace(in.DOB))
	if err != nil {
		return nil, NewValidationError("dob must be formatted YYYY-MM-DD")
	}
	if ageYears(dob, time.Now().UTC()) < minimumDonorAge {
		return nil, ErrUnderage
	}

	email := strings.TrimSpace(in.Email)
	donor := domain.Donor{
		Title:      optional(in.Title),
		FirstName:  strings.TrimSpace(in.FirstName),
		MiddleName: optional(in.MiddleName),
		LastName:   strings.TrimSpace(in.LastName),
		MobileE164: strings.TrimSpace(in.MobileE164),
		Email:      email,
		Address1:   strings.TrimSpace(in.Address1),
		Address2:   optional(in.Address2),
		City:       strings.TrimSpace(in.City),
		Region:     strings.TrimSpace(in.Region),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
	}

	existingID, err := s.donors.GetIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	created := existingID == ""
	eventType := domain.EventDonorUpdate
	if created {
		donor.DonorID = ids.New("donor")
		eventType = domain.EventDonorInsert
		if err := s.donors.Insert(ctx, donor, dob); err != nil {
			return nil, err
		}
	} else {
		donor.DonorID = existingID
		if err := s.donors.Update(ctx, donor, dob); err != nil {
			return nil, err
		}
	}

	if in.SessionID != "" {
		if err := s.linkToSession(ctx, in.SessionID, donor.DonorID, in.FundraiserID); err != nil {
			return nil, err
		}
	}

	if _, err := s.events.Insert(ctx, domain.Event{
		EventType:    eventType,
		SessionID:    in.SessionID,
		DonorID:      donor.DonorID,
		FundraiserID: in.FundraiserID,
		Attributes:   map[string]any{"email": email, "mobile": donor.MobileE164},
	}); err != nil {
		return nil, err
	}

	return &UpsertResult{DonorID: donor.DonorID, Created: created}, nil
}

// linkToSession writes the DONOR_SESSION association with the charity and
// campaign copied from the session row, so attribution survives later
// campaign reconfiguration.
func (s *DonorService) linkToSession(ctx context.Context, sessionID, donorID, fundraiserID string) error {
	charityID, campaignID, err := s.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.sessions.InsertDonorSession(ctx, domain.DonorSession{
		SessionID:    sessionID,
		DonorID:      donorID,
		FundraiserID: fundraiserID,
		CharityID:    charityID,
		CampaignID:   campaignID,
	})
}

// UpdateConsent records the communication opt-ins chosen on the consent
// screen.
func (s *DonorService) UpdateConsent(ctx context.Context, sessionID, donorID string, consent domain.Consent) error {
	if donorID == "" {
		return NewValidationError("donor_id is required")
	}
	if err := s.donors.UpdateConsent(ctx, donorID, consent); err != nil {
		return err
	}

	if _, err := s.events.Insert(ctx, domain.Event{
		EventType: domain.EventDonorConsentUpdate,
		SessionID: sessionID,
		DonorID:   donorID,
		Attributes: map[string]any{
			"consent_sms":   consent.SMS,
			"consent_email": consent.Email,
			"consent_mail":  consent.Mail,
		},
	}); err != nil {
		return err
	}

	logger.Debugf("Consent updated for donor %s", donorID)
	return nil
}

// GetContact returns the reduced donor view used to prefill provider calls.
func (s *DonorService) GetContact(ctx context.Context, donorID string) (*domain.DonorContact, error) {
	donor, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	if donor == nil {
		return nil, ErrDonorNotFound
	}
	nameParts := []string{}
	for _, p := range []string{deref(donor.Title), donor.FirstName, deref(donor.MiddleName), donor.LastName} {
		if strings.TrimSpace(p) != "" {
			nameParts = append(nameParts, p)
		}
	}
	return &domain.DonorContact{
		Email: donor.Email,
		Name:  strings.Join(nameParts, " "),
		Phone: donor.MobileE164,
	}, nil
}

// ageYears computes whole years as elapsed days divided by 365. Crude around
// leap days, but it matches the enrollment rule the charities signed off on.
func ageYears(dob, now time.Time) int {
	days := int(now.Sub(dob).Hours() / 24)
	return days / 365
}

func missingFields(in DonorInput) []string {
	required := []struct {
		name  string
		value string
	}{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"dob", in.DOB},
		{"mobile_e164", in.MobileE164},
		{"email", in.Email},
		{"address1", in.Address1},
		{"city", in.City},
		{"region", in.Region},
		{"postal_code", in.PostalCode},
		{"country", in.Country},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
