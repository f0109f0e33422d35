package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rebootmart/rebootmart-backend/pkg/config"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
)

var (
	errAppIDRequired  = errors.New("onesignal app id is required")
	errAPIKeyRequired = errors.New("onesignal api key is required")
)

// Client sends push notifications through the OneSignal REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	apiKey     string
	logg       *logger.Logger
}

// Button is an action button rendered on the notification.
type Button struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// Notification is the payload for a single push send.
type Notification struct {
	Heading  string
	Content  string
	ImageURL string
	// LaunchURL is opened when the notification is tapped.
	LaunchURL string
	Buttons   []Button
	// TagFilters restricts delivery to devices whose external user tags match
	// any of the given values. Empty means broadcast to all subscribers.
	TagFilters []string
	TagKey     string
}

// SendResult reports the gateway-assigned notification ID and recipient count.
type SendResult struct {
	ID         string `json:"id"`
	Recipients int    `json:"recipients"`
}

// APIError is a non-2xx response from OneSignal.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("onesignal: http %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// NewClient validates the configured credentials and returns a push client.
func NewClient(ctx context.Context, cfg config.OneSignalConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.AppID) == "" {
		return nil, errAppIDRequired
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errAPIKeyRequired
	}

	if logg != nil {
		logg.Info(ctx, "onesignal client initialized")
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		appID:      cfg.AppID,
		apiKey:     cfg.APIKey,
		logg:       logg,
	}, nil
}

// Send dispatches one notification, either broadcast or tag-filtered.
func (c *Client) Send(ctx context.Context, n Notification) (*SendResult, error) {
	if strings.TrimSpace(n.Heading) == "" {
		return nil, fmt.Errorf("notification heading is required")
	}
	if strings.TrimSpace(n.Content) == "" {
		return nil, fmt.Errorf("notification content is required")
	}

	payload := map[string]any{
		"app_id":   c.appID,
		"headings": map[string]string{"en": n.Heading},
		"contents": map[string]string{"en": n.Content},
	}
	if n.ImageURL != "" {
		payload["big_picture"] = n.ImageURL
	}
	if n.LaunchURL != "" {
		payload["url"] = n.LaunchURL
	}
	if len(n.Buttons) > 0 {
		payload["buttons"] = n.Buttons
	}

	if len(n.TagFilters) > 0 {
		key := n.TagKey
		if key == "" {
			key = "segment"
		}
		filters := make([]map[string]string, 0, len(n.TagFilters)*2)
		for i, value := range n.TagFilters {
			if i > 0 {
				filters = append(filters, map[string]string{"operator": "OR"})
			}
			filters = append(filters, map[string]string{
				"field":    "tag",
				"key":      key,
				"relation": "=",
				"value":    value,
			})
		}
		payload["filters"] = filters
	} else {
		payload["included_segments"] = []string{"Subscribed Users"}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notifications", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("building notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}

	var result SendResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding notification response: %w", err)
	}
	return &result, nil
}

func decodeAPIError(status int, raw []byte) error {
	var envelope struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Errors) > 0 {
		return &APIError{StatusCode: status, Messages: envelope.Errors}
	}
	return &APIError{StatusCode: status, Messages: []string{strings.TrimSpace(string(raw))}}
}
