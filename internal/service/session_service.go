package service

import (
	"context"
	"strings"
	"time"

	"github.com/globalfaces/phoenix-backend/internal/domain"
	"github.com/globalfaces/phoenix-backend/pkg/ids"
	"github.com/globalfaces/phoenix-backend/pkg/logger"
	"github.com/globalfaces/phoenix-backend/pkg/storage"
)

// Small internal interfaces so the services can be tested without a warehouse
// connection or live providers.
type fundraiserRepository interface {
	GetActive(ctx context.Context, fundraiserID string) (*domain.Fundraiser, error)
	GetCharity(ctx context.Context, charityID string) (*domain.Charity, error)
	GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error)
}

type sessionRepository interface {
	Insert(ctx context.Context, s domain.Session) error
	Snapshot(ctx context.Context, sessionID string) (charityID, campaignID *string, err error)
	FundraiserDisplayName(ctx context.Context, sessionID string) (string, error)
	InsertDonorSession(ctx context.Context, ds domain.DonorSession) error
}

type productRepository interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.Product, error)
	Lookup(ctx context.Context, campaignID string, amountCents int64, currency, productType string) (*domain.Product, error)
}

type eventRepository interface {
	Insert(ctx context.Context, ev domain.Event) (string, error)
	InsertIfAbsent(ctx context.Context, eventID string, ev domain.Event) (bool, error)
}

type stagePresigner interface {
	Presign(ctx context.Context, stageURI string, expires time.Duration) (string, error)
}

type SessionService struct {
	fundraisers   fundraiserRepository
	sessions      sessionRepository
	products      productRepository
	events        eventRepository
	stage         stagePresigner
	presignExpiry time.Duration
}

func NewSessionService(
	fundraisers fundraiserRepository,
	sessions sessionRepository,
	products productRepository,
	events eventRepository,
	stage stagePresigner,
	presignExpiry time.Duration,
) *SessionService {
	return &SessionService{
		fundraisers:   fundraisers,
		sessions:      sessions,
		products:      products,
		events:        events,
		stage:         stage,
		presignExpiry: presignExpiry,
	}
}

// LoginResult is the tablet bootstrap payload: the new session plus the
// branding and campaign configuration for the fundraiser's assignment.
type LoginResult struct {
	SessionID  string           `json:"session_id"`
	Fundraiser domain.Fundraiser `json:"fundraiser"`
	Charity    *domain.Charity  `json:"charity,omitempty"`
	Campaign   *domain.Campaign `json:"campaign,omitempty"`
}

// FundraiserLogin opens a session for a fundraiser's shift. The charity and
// campaign are snapshotted from the fundraiser's current assignment; stage
// logo URIs are swapped for presigned HTTPS URLs so the tablet can render
// them directly.
func (s *SessionService) FundraiserLogin(ctx context.Context, fundraiserID, deviceID string) (*LoginResult, error) {
	if strings.TrimSpace(fundraiserID) == "" {
		return nil, NewValidationError("fundraiser_id is required")
	}

	fundraiser, err := s.fundraisers.GetActive(ctx, fundraiserID)
	if err != nil {
		return nil, err
	}
	if fundraiser == nil {
		return nil, ErrFundraiserNotFound
	}

	session := domain.Session{
		SessionID:    ids.New("sess"),
		FundraiserID: fundraiser.FundraiserID,
		CharityID:    fundraiser.CharityID,
		CampaignID:   fundraiser.CampaignID,
		State:        domain.SessionStateStarted,
	}
	if deviceID != "" {
		session.DeviceID = &deviceID
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, err
	}

	result := &LoginResult{
		SessionID:  session.SessionID,
		Fundraiser: *fundraiser,
	}

	if fundraiser.CharityID != nil {
		charity, err := s.fundraisers.GetCharity(ctx, *fundraiser.CharityID)
		if err != nil {
			return nil, err
		}
		if charity != nil {
			s.presignLogo(ctx, charity)
			result.Charity = charity
		}
	}

	if fundraiser.CampaignID != nil {
		campaign, err := s.fundraisers.GetCampaign(ctx, *fundraiser.CampaignID)
		if err != nil {
			return nil, err
		}
		result.Campaign = campaign
	}

	// The audit row snapshots the fully resolved assignment, not just the IDs.
	if _, err := s.events.Insert(ctx, domain.Event{
		EventType:    domain.EventSessionStarted,
		SessionID:    session.SessionID,
		FundraiserID: fundraiser.FundraiserID,
		Attributes: map[string]any{
			"fundraiser": fundraiser,
			"charity":    result.Charity,
			"campaign":   result.Campaign,
			"device_id":  deviceID,
		},
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// presignLogo replaces a stage-URI logo with a time-limited URL. Presign
// failures leave the stored locator in place; a broken logo must not block
// login.
func (s *SessionService) presignLogo(ctx context.Context, charity *domain.Charity) {
	if charity.LogoURL == nil || !storage.IsStageURI(*charity.LogoURL) {
		return
	}
	url, err := s.stage.Presign(ctx, *charity.LogoURL, s.presignExpiry)
	if err != nil {
		logger.Warnf("Failed to presign charity logo %s: %v", *charity.LogoURL, err)
		return
	}
	charity.LogoURL = &url
}

// CampaignProducts returns a campaign's active catalog for the amount screen.
func (s *SessionService) CampaignProducts(ctx context.Context, campaignID string) ([]domain.Product, error) {
	if strings.TrimSpace(campaignID) == "" {
		return nil, NewValidationError("campaign_id is required")
	}
	return s.products.ListByCampaign(ctx, campaignID)
}

// LookupProduct resolves a chosen amount to the Stripe price backing it.
func (s *SessionService) LookupProduct(ctx context.Context, campaignID string, amountCents int64, currency, productType string) (*domain.Product, error) {
	if strings.TrimSpace(campaignID) == "" {
		return nil, NewValidationError("campaign_id is required")
	}
	if productType == "" {
		productType = "MONTHLY"
	}
	product, err := s.products.Lookup(ctx, campaignID, amountCents, currency, productType)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}
