package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/globalfaces/phoenix-backend/internal/domain"
)

func validDonorInput() DonorInput {
	return DonorInput{
		SessionID:    "sess-1",
		FundraiserID: "F001",
		FirstName:    "Jordan",
		LastName:     "Tremblay",
		DOB:          "1980-06-15",
		MobileE164:   "+15145550123",
		Email:        "jordan@example.com",
		Address1:     "12 Rue Principale",
		City:         "Montreal",
		Region:       "QC",
		PostalCode:   "H2X 1Y4",
		Country:      "CA",
	}
}

func TestUpsert_CreatesNewDonor(t *testing.T) {
	ctx := context.Background()

	donors := &fakeDonorRepo{idsByEmail: map[string]string{}}
	sessions := &fakeSessionRepo{
		snapshotCharity:  strptr("C1"),
		snapshotCampaign: strptr("CMP1"),
	}
	events := &fakeEventRepo{}

	svc := NewDonorService(donors, sessions, events)

	result, err := svc.Upsert(ctx, validDonorInput())
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if !result.Created {
		t.Fatalf("expected Created=true for a new email")
	}
	if !strings.HasPrefix(result.DonorID, "donor-") {
		t.Errorf("expected generated donor id, got %q", result.DonorID)
	}

	if len(donors.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(donors.inserted))
	}
	if len(donors.updated) != 0 {
		t.Fatalf("expected no updates, got %d", len(donors.updated))
	}

	if len(sessions.donorSessions) != 1 {
		t.Fatalf("expected a donor-session link, got %d", len(sessions.donorSessions))
	}
	link := sessions.donorSessions[0]
	if link.SessionID != "sess-1" || link.DonorID != result.DonorID {
		t.Errorf("unexpected donor-session link: %+v", link)
	}
	if link.CharityID == nil || *link.CharityID != "C1" {
		t.Errorf("expected charity snapshot C1, got %v", link.CharityID)
	}
	if link.CampaignID == nil || *link.CampaignID != "CMP1" {
		t.Errorf("expected campaign snapshot CMP1, got %v", link.CampaignID)
	}

	last := events.lastEvent()
	if last == nil || last.EventType != domain.EventDonorInsert {
		t.Fatalf("expected DONOR_INSERT event, got %+v", last)
	}
	if last.Attributes["email"] != "jordan@example.com" || last.Attributes["mobile"] != "+15145550123" {
		t.Errorf("expected email and mobile in event attributes, got %v", last.Attributes)
	}
}

func TestUpsert_ExistingEmailResolvesSameDonor(t *testing.T) {
	ctx := context.Background()

	donors := &fakeDonorRepo{
		idsByEmail: map[string]string{"jordan@example.com": "donor-42"},
	}
	sessions := &fakeSessionRepo{}
	events := &fakeEventRepo{}

	svc := NewDonorService(donors, sessions, events)

	result, err := svc.Upsert(ctx, validDonorInput())
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if result.Created {
		t.Fatalf("expected Created=false for a known email")
	}
	if result.DonorID != "donor-42" {
		t.Errorf("expected donor-42, got %q", result.DonorID)
	}

	if len(donors.inserted) != 0 {
		t.Fatalf("expected no inserts, got %d", len(donors.inserted))
	}
	if len(donors.updated) != 1 {
		t.Fatalf("expected 1 update, got %d", len(donors.updated))
	}
	if donors.updated[0].DonorID != "donor-42" {
		t.Errorf("update used wrong id: %q", donors.updated[0].DonorID)
	}

	last := events.lastEvent()
	if last == nil || last.EventType != domain.EventDonorUpdate {
		t.Fatalf("expected DONOR_UPDATE event, got %+v", last)
	}
}

func TestUpsert_MissingFieldsRejected(t *testing.T) {
	ctx := context.Background()
	svc := NewDonorService(&fakeDonorRepo{}, &fakeSessionRepo{}, &fakeEventRepo{})

	in := validDonorInput()
	in.Email = "   "
	in.City = ""

	_, err := svc.Upsert(ctx, in)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Message, "email") || !strings.Contains(verr.Message, "city") {
		t.Errorf("expected missing fields named in %q", verr.Message)
	}
}

func TestUpsert_AgeBoundary(t *testing.T) {
	ctx := context.Background()

	now := time.Now().UTC()

	cases := []struct {
		name     string
		dob      string
		underage bool
	}{
		{"exactly at the floor", now.AddDate(0, 0, -25*365).Format("2006-01-02"), false},
		{"one day short", now.AddDate(0, 0, -(25*365 - 1)).Format("2006-01-02"), true},
		{"well under", now.AddDate(-18, 0, 0).Format("2006-01-02"), true},
		{"well over", now.AddDate(-40, 0, 0).Format("2006-01-02"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewDonorService(&fakeDonorRepo{}, &fakeSessionRepo{}, &fakeEventRepo{})

			in := validDonorInput()
			in.DOB = tc.dob

			_, err := svc.Upsert(ctx, in)
			if tc.underage {
				if !errors.Is(err, ErrUnderage) {
					t.Fatalf("expected ErrUnderage for dob %s, got %v", tc.dob, err)
				}
			} else if err != nil {
				t.Fatalf("expected acceptance for dob %s, got %v", tc.dob, err)
			}
		})
	}
}

func TestUpsert_BadDOBFormat(t *testing.T) {
	ctx := context.Background()
	svc := NewDonorService(&fakeDonorRepo{}, &fakeSessionRepo{}, &fakeEventRepo{})

	in := validDonorInput()
	in.DOB = "15/06/1980"

	_, err := svc.Upsert(ctx, in)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for bad dob format, got %v", err)
	}
}

func TestUpdateConsent_RecordsFlagsAndEvent(t *testing.T) {
	ctx := context.Background()

	donors := &fakeDonorRepo{}
	events := &fakeEventRepo{}
	svc := NewDonorService(donors, &fakeSessionRepo{}, events)

	consent := domain.Consent{SMS: true, Email: false, Mail: true}
	if err := svc.UpdateConsent(ctx, "sess-1", "donor-42", consent); err != nil {
		t.Fatalf("UpdateConsent returned error: %v", err)
	}

	got, ok := donors.consentUpdates["donor-42"]
	if !ok {
		t.Fatalf("expected consent update for donor-42")
	}
	if got != consent {
		t.Errorf("expected %+v, got %+v", consent, got)
	}

	last := events.lastEvent()
	if last == nil || last.EventType != domain.EventDonorConsentUpdate {
		t.Fatalf("expected DONOR_CONSENT_UPDATE event, got %+v", last)
	}
}

func TestGetContact(t *testing.T) {
	ctx := context.Background()

	donors := &fakeDonorRepo{
		donors: map[string]*domain.Donor{
			"donor-42": {
				DonorID:    "donor-42",
				FirstName:  "Jordan",
				LastName:   "Tremblay",
				Email:      "jordan@example.com",
				MobileE164: "+15145550123",
			},
		},
	}
	svc := NewDonorService(donors, &fakeSessionRepo{}, &fakeEventRepo{})

	contact, err := svc.GetContact(ctx, "donor-42")
	if err != nil {
		t.Fatalf("GetContact returned error: %v", err)
	}
	if contact.Name != "Jordan Tremblay" {
		t.Errorf("expected full name, got %q", contact.Name)
	}
	if contact.Email != "jordan@example.com" || contact.Phone != "+15145550123" {
		t.Errorf("unexpected contact: %+v", contact)
	}

	if _, err := svc.GetContact(ctx, "donor-unknown"); !errors.Is(err, ErrDonorNotFound) {
		t.Fatalf("expected ErrDonorNotFound, got %v", err)
	}
}
