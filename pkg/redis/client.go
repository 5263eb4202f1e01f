package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/globalfaces/phoenix-backend/environments"
	"github.com/globalfaces/phoenix-backend/pkg/logger"
)

// Client is an optional cache in front of the warehouse: a fast path for
// webhook dedup checks and for the tablet's verification-status polling.
// The warehouse stays authoritative; every caller is expected to tolerate a
// nil Client.
type Client struct {
	client valkey.Client
}

const (
	processedEventKeyPrefix = "stripe_event:"
	processedEventTTL       = 72 * time.Hour

	verifStatusKeyPrefix = "verif_status:"
	verifStatusTTL       = 24 * time.Hour
)

// VerificationStatus mirrors the status-endpoint payload for caching.
type VerificationStatus struct {
	Result      string  `json:"result"`
	InboundBody *string `json:"inboundBody"`
}

func NewRedisClient(cfg environments.RedisConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis (via Valkey client)")

	return &Client{client: client}, nil
}

// MarkEventProcessed remembers a provider event ID so repeat deliveries can
// short-circuit before touching the warehouse.
func (c *Client) MarkEventProcessed(ctx context.Context, eventID string) error {
	if c == nil {
		return nil
	}
	key := processedEventKeyPrefix + eventID
	err := c.client.Do(ctx, c.client.B().Set().Key(key).Value("1").Ex(processedEventTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

func (c *Client) WasEventProcessed(ctx context.Context, eventID string) (bool, error) {
	if c == nil {
		return false, nil
	}
	key := processedEventKeyPrefix + eventID
	n, err := c.client.Do(ctx, c.client.B().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to check event: %w", err)
	}
	return n > 0, nil
}

func (c *Client) CacheVerificationStatus(ctx context.Context, sessionID, donorID string, status VerificationStatus) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	key := fmt.Sprintf("%s%s:%s", verifStatusKeyPrefix, sessionID, donorID)
	err = c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(data)).Ex(verifStatusTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to cache verification status: %w", err)
	}

	logger.Debugf("Cached verification status %s for %s/%s", status.Result, sessionID, donorID)
	return nil
}

// GetVerificationStatus returns the cached status, or nil on a miss.
func (c *Client) GetVerificationStatus(ctx context.Context, sessionID, donorID string) (*VerificationStatus, error) {
	if c == nil {
		return nil, nil
	}
	key := fmt.Sprintf("%s%s:%s", verifStatusKeyPrefix, sessionID, donorID)

	result := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get verification status: %w", result.Error())
	}

	data, err := result.ToString()
	if err != nil {
		return nil, fmt.Errorf("failed to read verification status: %w", err)
	}

	var status VerificationStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verification status: %w", err)
	}

	return &status, nil
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("redis client not configured")
	}
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}
