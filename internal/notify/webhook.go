package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultWebhookTimeout   = 5 * time.Second
	defaultWebhookRetryWait = 500 * time.Millisecond
)

// WebhookNotifier POSTs each event as JSON to a URL.
type WebhookNotifier struct {
	url    string
	client *resty.Client
}

// NewWebhookNotifier creates a notifier for url. A zero timeout uses the
// default; retries counts attempts after the first.
func NewWebhookNotifier(url string, timeout time.Duration, retries int) (*WebhookNotifier, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	if retries < 0 {
		retries = 0
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(defaultWebhookRetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	return &WebhookNotifier{url: url, client: client}, nil
}

func (n *WebhookNotifier) Notify(ctx context.Context, ev Event) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(ev).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("posting alert %s to webhook: %w", ev.ID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("posting alert %s to webhook: unexpected status %s", ev.ID, resp.Status())
	}
	return nil
}

func (n *WebhookNotifier) Close() error {
	return nil
}
