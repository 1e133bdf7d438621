package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fightcal/internal/model"
)

// DeliveryError reports a failed delivery to one destination. A failure is
// isolated to its destination; the fanout continues past it.
type DeliveryError struct {
	Destination model.Destination
	StatusCode  int
	Err         error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("deliver to %s %s: status %d", e.Destination.Kind, e.Destination.Target, e.StatusCode)
	}
	return fmt.Sprintf("deliver to %s %s: %v", e.Destination.Kind, e.Destination.Target, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Sender delivers a rendered message to one destination target.
type Sender interface {
	Send(ctx context.Context, msg Message, target string) error
	Kind() model.DestinationKind
}

// WebhookSender POSTs message payloads directly to webhook URLs.
type WebhookSender struct {
	client *http.Client
}

// NewWebhookSender creates a webhook sender with a bounded client timeout.
func NewWebhookSender(timeout time.Duration) *WebhookSender {
	return &WebhookSender{client: &http.Client{Timeout: timeout}}
}

func (w *WebhookSender) Kind() model.DestinationKind { return model.DestinationWebhook }

func (w *WebhookSender) Send(ctx context.Context, msg Message, target string) error {
	dest := model.Destination{Kind: model.DestinationWebhook, Target: target}
	return postJSON(ctx, w.client, target, msg, dest, nil)
}

// ChannelSender posts message payloads to chat channels through the
// platform's REST messages endpoint, authorized by bot token.
type ChannelSender struct {
	client  *http.Client
	apiBase string
	token   string
}

// NewChannelSender creates a channel sender against the given REST base URL.
func NewChannelSender(apiBase, token string, timeout time.Duration) *ChannelSender {
	return &ChannelSender{
		client:  &http.Client{Timeout: timeout},
		apiBase: apiBase,
		token:   token,
	}
}

func (c *ChannelSender) Kind() model.DestinationKind { return model.DestinationChannel }

func (c *ChannelSender) Send(ctx context.Context, msg Message, target string) error {
	dest := model.Destination{Kind: model.DestinationChannel, Target: target}
	url := fmt.Sprintf("%s/channels/%s/messages", c.apiBase, target)
	headers := map[string]string{"Authorization": "Bot " + c.token}
	return postJSON(ctx, c.client, url, msg, dest, headers)
}

// Ready confirms the platform session is usable before scheduled jobs start
// delivering through it.
func (c *ChannelSender) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/users/@me", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("session check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("session check: status %d", resp.StatusCode)
	}
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, msg Message, dest model.Destination, headers map[string]string) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return &DeliveryError{Destination: dest, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Destination: dest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &DeliveryError{Destination: dest, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &DeliveryError{Destination: dest, StatusCode: resp.StatusCode}
	}
	return nil
}
