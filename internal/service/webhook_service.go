package service

import (
	"context"
	"encoding/json"
	"strings"

	stripe "github.com/stripe/stripe-go/v74"

	"github.com/globalfaces/phoenix-backend/internal/domain"
	"github.com/globalfaces/phoenix-backend/pkg/logger"
)

type webhookVerifier interface {
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

type dedupCache interface {
	WasEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID string) error
}

// WebhookService ingests Stripe callbacks: authenticate, correlate back to a
// session/donor, and append exactly one audit row per provider event ID no
// matter how many times Stripe delivers it.
type WebhookService struct {
	verifier webhookVerifier
	fetcher  stripeFetcher
	events   eventRepository
	cache    dedupCache
}

func NewWebhookService(verifier webhookVerifier, fetcher stripeFetcher, events eventRepository, cache dedupCache) *WebhookService {
	return &WebhookService{
		verifier: verifier,
		fetcher:  fetcher,
		events:   events,
		cache:    cache,
	}
}

// HandleStripeEvent processes one delivery. The warehouse insert-if-absent is
// the authoritative dedup gate; the cache only short-circuits repeats that
// were already fully processed. Returns whether this delivery recorded the
// event.
func (s *WebhookService) HandleStripeEvent(ctx context.Context, payload []byte, sigHeader string) (bool, error) {
	event, err := s.verifier.VerifyWebhook(payload, sigHeader)
	if err != nil {
		return false, NewProviderError("stripe", err)
	}

	if s.cache != nil {
		seen, err := s.cache.WasEventProcessed(ctx, event.ID)
		if err != nil {
			logger.Warnf("Webhook dedup cache read failed: %v", err)
		} else if seen {
			logger.Debugf("Skipping already-processed Stripe event %s", event.ID)
			return false, nil
		}
	}

	obj := event.Data.Object
	if obj == nil {
		obj = map[string]any{}
		if len(event.Data.Raw) > 0 {
			if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
				logger.Warnf("Failed to decode webhook object for %s: %v", event.ID, err)
			}
		}
	}

	corr := correlate(ctx, s.fetcher, obj)

	inserted, err := s.events.InsertIfAbsent(ctx, event.ID, domain.Event{
		EventType:  "STRIPE_" + strings.ToUpper(string(event.Type)),
		SessionID:  corr.SessionID,
		DonorID:    corr.DonorID,
		Attributes: obj,
	})
	if err != nil {
		return false, err
	}

	if s.cache != nil {
		if err := s.cache.MarkEventProcessed(ctx, event.ID); err != nil {
			logger.Warnf("Webhook dedup cache write failed: %v", err)
		}
	}

	if inserted {
		logger.Infof("Recorded Stripe event %s (%s)", event.ID, event.Type)
	}
	return inserted, nil
}
