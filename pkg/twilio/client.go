package twilio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/globalfaces/phoenix-backend/environments"
	"github.com/globalfaces/phoenix-backend/pkg/logger"
)

const apiBaseURL = "https://api.twilio.com/2010-04-01"

// Client sends SMS through the Twilio Messages API. Either a messaging
// service SID or a from-number must be configured; the messaging service
// wins when both are set.
type Client struct {
	httpClient          *resty.Client
	accountSID          string
	messagingServiceSID string
	fromNumber          string
}

// SendResult carries the provider identifiers for an accepted message.
type SendResult struct {
	SID  string `json:"sid"`
	From string `json:"from"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewClient(cfg environments.TwilioConfig) *Client {
	client := resty.New().
		SetBaseURL(apiBaseURL).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient:          client,
		accountSID:          cfg.AccountSID,
		messagingServiceSID: cfg.MessagingServiceSID,
		fromNumber:          cfg.FromNumber,
	}
}

// Configured reports whether account credentials are present. Send fails
// fast when they are not.
func (c *Client) Configured() bool {
	return c.accountSID != ""
}

func (c *Client) Send(ctx context.Context, to, body string) (*SendResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("twilio client not configured")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("Body", body)
	switch {
	case c.messagingServiceSID != "":
		form.Set("MessagingServiceSid", c.messagingServiceSID)
	case c.fromNumber != "":
		form.Set("From", c.fromNumber)
	default:
		return nil, fmt.Errorf("set TWILIO_MESSAGING_SERVICE_SID or TWILIO_FROM_NUMBER")
	}

	var result SendResult
	var apiErr apiError

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		SetResult(&result).
		SetError(&apiErr).
		Post(fmt.Sprintf("/Accounts/%s/Messages.json", c.accountSID))

	duration := time.Since(startTime)

	if err != nil {
		return nil, fmt.Errorf("failed to send sms: %w", err)
	}

	logger.Infof("Twilio send to %s completed in %v (status: %d)", to, duration, resp.StatusCode())

	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		if apiErr.Message != "" {
			return nil, fmt.Errorf("twilio error %d: %s", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("unexpected twilio status code: %d, body: %s", resp.StatusCode(), resp.String())
	}

	return &result, nil
}
