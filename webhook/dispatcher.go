// Package webhook delivers lifecycle and message notifications to
// tenant-configured callback endpoints. Delivery is fire-and-forget: each
// session gets a bounded queue drained by its own worker, overflow drops the
// notification, and failures are logged but never surfaced.
package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Notification event names, as seen by tenant endpoints.
const (
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
	EventMessage      = "message"
)

// Notification is the webhook payload body.
type Notification struct {
	SessionID string         `json:"sessionId"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
}

type delivery struct {
	url          string
	notification Notification
}

// Dispatcher fans notifications out to webhook endpoints.
type Dispatcher struct {
	client        *http.Client
	queueSize     int
	signingSecret string
	log           zerolog.Logger

	mu     sync.Mutex
	queues map[string]chan delivery
	wg     sync.WaitGroup
	closed bool
}

// Options configures a Dispatcher.
type Options struct {
	Timeout       time.Duration // per-delivery HTTP timeout
	QueueSize     int           // pending deliveries per session before drops
	SigningSecret string        // optional HMAC secret for X-Webhook-Token
}

func NewDispatcher(opts Options, log zerolog.Logger) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	return &Dispatcher{
		client:        &http.Client{Timeout: opts.Timeout},
		queueSize:     opts.QueueSize,
		signingSecret: opts.SigningSecret,
		log:           log.With().Str("component", "webhook").Logger(),
		queues:        make(map[string]chan delivery),
	}
}

// Notify enqueues a notification for the session's endpoint. A missing
// webhook URL makes this a no-op. Notify never blocks: when the session's
// queue is full the notification is dropped with a log line.
func (d *Dispatcher) Notify(webhookURL string, n Notification) {
	if webhookURL == "" {
		return
	}

	queue := d.queue(n.SessionID)
	if queue == nil {
		return
	}

	select {
	case queue <- delivery{url: webhookURL, notification: n}:
	default:
		d.log.Warn().
			Str("session_id", n.SessionID).
			Str("event", n.Event).
			Msg("webhook queue full, dropping notification")
	}
}

// Forget releases the session's queue and lets its worker drain and exit.
// Safe to call for sessions that never had a queue.
func (d *Dispatcher) Forget(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if queue, ok := d.queues[sessionID]; ok {
		close(queue)
		delete(d.queues, sessionID)
	}
}

// Close releases every queue and waits for in-flight deliveries to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	for id, queue := range d.queues {
		close(queue)
		delete(d.queues, id)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) queue(sessionID string) chan delivery {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	queue, ok := d.queues[sessionID]
	if !ok {
		queue = make(chan delivery, d.queueSize)
		d.queues[sessionID] = queue
		d.wg.Add(1)
		go d.worker(queue)
	}
	return queue
}

func (d *Dispatcher) worker(queue chan delivery) {
	defer d.wg.Done()
	for dl := range queue {
		d.deliver(dl)
	}
}

func (d *Dispatcher) deliver(dl delivery) {
	body, err := json.Marshal(dl.notification)
	if err != nil {
		d.log.Error().Err(err).Str("session_id", dl.notification.SessionID).Msg("marshal notification")
		return
	}

	req, err := http.NewRequest(http.MethodPost, dl.url, bytes.NewReader(body))
	if err != nil {
		d.log.Error().Err(err).Str("url", dl.url).Msg("build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-ID", uuid.NewString())

	if d.signingSecret != "" {
		token, err := d.signDelivery(dl.notification)
		if err != nil {
			d.log.Error().Err(err).Msg("sign webhook delivery")
		} else {
			req.Header.Set("X-Webhook-Token", token)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Warn().Err(err).
			Str("session_id", dl.notification.SessionID).
			Str("event", dl.notification.Event).
			Msg("webhook delivery failed")
		return
	}
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		d.log.Warn().
			Int("status", resp.StatusCode).
			Str("session_id", dl.notification.SessionID).
			Str("event", dl.notification.Event).
			Msg("webhook endpoint rejected delivery")
	}
}

// signDelivery issues a short HMAC-signed token tenants can verify to
// authenticate the callback origin.
func (d *Dispatcher) signDelivery(n Notification) (string, error) {
	claims := jwt.MapClaims{
		"sessionId": n.SessionID,
		"event":     n.Event,
		"iat":       time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(d.signingSecret))
}
