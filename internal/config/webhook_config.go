package config

import (
	"strconv"
	"time"
)

type WebhookConfig interface {
	GetWebhookTimeout() time.Duration
	GetWebhookQueueSize() int
	GetWebhookSigningSecret() string
}

type Webhook struct{}

var _ WebhookConfig = Webhook{}

// GetWebhookTimeout bounds a single delivery attempt.
func (Webhook) GetWebhookTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("WEBHOOK_TIMEOUT_SECONDS", "10"))
	if err != nil || seconds <= 0 {
		seconds = 10
	}
	return time.Duration(seconds) * time.Second
}

// GetWebhookQueueSize bounds the number of pending deliveries per session.
// Notifications beyond the bound are dropped rather than blocking the
// event-processing path.
func (Webhook) GetWebhookQueueSize() int {
	size, err := strconv.Atoi(GetEnv("WEBHOOK_QUEUE_SIZE", "16"))
	if err != nil || size <= 0 {
		size = 16
	}
	return size
}

// GetWebhookSigningSecret returns the optional HMAC secret used to sign
// webhook deliveries. Empty disables signing.
func (Webhook) GetWebhookSigningSecret() string {
	return GetEnv("WEBHOOK_SIGNING_SECRET", "")
}
