package service

import (
	"context"

	stripe "github.com/stripe/stripe-go/v74"

	"github.com/globalfaces/phoenix-backend/pkg/logger"
)

// stripeFetcher retrieves related Stripe objects while correlating a webhook
// back to a session/donor pair.
type stripeFetcher interface {
	PaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	Invoice(ctx context.Context, id string) (*stripe.Invoice, error)
	Subscription(ctx context.Context, id string) (*stripe.Subscription, error)
}

// Correlation is the session/donor pair recovered from a webhook event.
// Either field may be empty when the chain yields nothing.
type Correlation struct {
	SessionID string
	DonorID   string
}

func (c Correlation) complete() bool {
	return c.SessionID != "" && c.DonorID != ""
}

func (c *Correlation) fill(md map[string]string) {
	if c.SessionID == "" {
		c.SessionID = md["session_id"]
	}
	if c.DonorID == "" {
		c.DonorID = md["donor_id"]
	}
}

// correlate recovers session/donor identifiers for a webhook payload. The
// object's own metadata wins; otherwise the resolver walks payment intent,
// then invoice (and its payment intent), then subscription. Every fetch is
// best-effort: a lookup failure moves on to the next link rather than failing
// the delivery.
func correlate(ctx context.Context, fetcher stripeFetcher, obj map[string]any) Correlation {
	var c Correlation
	c.fill(objMetadata(obj))
	if c.SessionID != "" || c.DonorID != "" {
		return c
	}

	if piID := relatedID(obj, "payment_intent"); piID != "" {
		if pi, err := fetcher.PaymentIntent(ctx, piID); err != nil {
			logger.Debugf("Correlation payment_intent fetch failed: %v", err)
		} else if pi != nil {
			c.fill(pi.Metadata)
			if c.SessionID != "" || c.DonorID != "" {
				return c
			}
		}
	}

	subIDFromInvoice := ""
	if invID := relatedID(obj, "invoice"); invID != "" {
		if inv, err := fetcher.Invoice(ctx, invID); err != nil {
			logger.Debugf("Correlation invoice fetch failed: %v", err)
		} else if inv != nil {
			c.fill(inv.Metadata)
			if inv.Subscription != nil {
				subIDFromInvoice = inv.Subscription.ID
			}
			if !c.complete() && inv.PaymentIntent != nil {
				if pi, err := fetcher.PaymentIntent(ctx, inv.PaymentIntent.ID); err != nil {
					logger.Debugf("Correlation invoice payment_intent fetch failed: %v", err)
				} else if pi != nil {
					c.fill(pi.Metadata)
				}
			}
			if c.SessionID != "" || c.DonorID != "" {
				return c
			}
		}
	}

	subID := relatedID(obj, "subscription")
	if subID == "" {
		subID = subIDFromInvoice
	}
	if subID != "" {
		if sub, err := fetcher.Subscription(ctx, subID); err != nil {
			logger.Debugf("Correlation subscription fetch failed: %v", err)
		} else if sub != nil {
			c.fill(sub.Metadata)
		}
	}

	return c
}

// objMetadata pulls the metadata map off a raw webhook object.
func objMetadata(obj map[string]any) map[string]string {
	md := map[string]string{}
	raw, ok := obj["metadata"].(map[string]any)
	if !ok {
		return md
	}
	for k, v := range raw {
		if s, ok := v.(string); ok {
			md[k] = s
		}
	}
	return md
}

// relatedID extracts the ID of a linked object of the given kind: the
// object's own ID when it is that kind, a string reference, or an expanded
// sub-object's ID.
func relatedID(obj map[string]any, kind string) string {
	if t, _ := obj["object"].(string); t == kind {
		id, _ := obj["id"].(string)
		return id
	}
	switch v := obj[kind].(type) {
	case string:
		return v
	case map[string]any:
		id, _ := v["id"].(string)
		return id
	}
	return ""
}
