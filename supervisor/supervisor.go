// Package supervisor owns the per-session connection state machine: it
// reacts to link events, decides reconnection, drives credential
// persistence, keeps the registry consistent, and raises lifecycle
// notifications.
package supervisor

import (
	"context"
	"net/url"
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatbridge/go-wa-gateway/internal/errors"
	"github.com/chatbridge/go-wa-gateway/messaging"
	"github.com/chatbridge/go-wa-gateway/pairing"
	"github.com/chatbridge/go-wa-gateway/sessions"
	"github.com/chatbridge/go-wa-gateway/webhook"
)

// Session ids are caller-chosen and become file and URL path components, so
// the accepted alphabet is deliberately narrow. There is no default id: two
// tenants omitting it would silently share one session.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Notifier is the slice of the webhook dispatcher the supervisor needs.
type Notifier interface {
	Notify(webhookURL string, n webhook.Notification)
	Forget(sessionID string)
}

// Options configures a Supervisor.
type Options struct {
	PairingWait time.Duration // how long CreateSession blocks for a pairing code
	Backoff     BackoffConfig
}

// Supervisor coordinates every session's lifecycle. One per process.
type Supervisor struct {
	registry sessions.Registry
	store    messaging.CredentialStore
	dialer   messaging.Dialer
	notifier Notifier
	waiter   *pairing.Waiter
	opts     Options
	log      zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(
	registry sessions.Registry,
	store messaging.CredentialStore,
	dialer messaging.Dialer,
	notifier Notifier,
	waiter *pairing.Waiter,
	opts Options,
	log zerolog.Logger,
) *Supervisor {
	if opts.PairingWait <= 0 {
		opts.PairingWait = 30 * time.Second
	}
	return &Supervisor{
		registry: registry,
		store:    store,
		dialer:   dialer,
		notifier: notifier,
		waiter:   waiter,
		opts:     opts,
		log:      log.With().Str("component", "supervisor").Logger(),
		locks:    make(map[string]*sync.Mutex),
	}
}

// CreateSession establishes a new session for id, replacing any prior one.
// It blocks the caller until a pairing code arrives, stored credentials
// resume straight to Connected, or the pairing deadline elapses. On timeout
// the connection attempt keeps running in the background.
func (s *Supervisor) CreateSession(ctx context.Context, id, webhookURL string) (pairing.Result, error) {
	if !sessionIDPattern.MatchString(id) {
		return pairing.Result{}, errors.ErrInvalidSessionID
	}
	if err := validateWebhookURL(webhookURL); err != nil {
		return pairing.Result{}, err
	}

	if err := s.openSession(ctx, id, webhookURL); err != nil {
		return pairing.Result{}, err
	}

	s.log.Info().Str("session_id", id).Msg("session created, awaiting pairing")
	return s.waiter.Wait(ctx, id, s.opts.PairingWait)
}

// openSession runs the replace-load-dial-register sequence under the
// session's lock: concurrent creates and teardowns for one id serialize
// here, so at most one live link per id can exist. The lock is released
// before the caller blocks on the waiter.
func (s *Supervisor) openSession(ctx context.Context, id, webhookURL string) error {
	mu := s.sessionMu(id)
	mu.Lock()
	defer mu.Unlock()

	// A live record for this id must lose its link before a new one opens.
	if prior, ok := s.registry.Get(id); ok {
		s.discard(prior)
	}

	creds, err := s.store.Load(ctx, id)
	if err != nil {
		return errors.Wrapf(err, "supervisor.CreateSession load credentials %q", id)
	}

	sess := sessions.New(id, webhookURL)
	sess.SetCredentials(creds)
	s.waiter.Register(id)
	s.registry.Put(id, sess)

	link, err := s.dialer.Dial(ctx, creds)
	if err != nil {
		s.registry.Remove(id)
		s.waiter.Discard(id)
		return errors.Wrapf(err, "supervisor.CreateSession dial %q", id)
	}
	sess.SetLink(link)

	go s.runSession(sess)
	return nil
}

// SendText delivers a plain text message through a connected session. The
// recipient is normalized into the network's addressing form when it lacks
// the qualifier suffix; the link's outcome is mirrored verbatim.
func (s *Supervisor) SendText(ctx context.Context, id, to, text string) error {
	sess, ok := s.registry.Get(id)
	if !ok {
		return errors.ErrSessionNotFound
	}
	if sess.State() != sessions.StateConnected {
		return errors.ErrSessionNotConnected
	}
	link := sess.Link()
	if link == nil {
		return errors.ErrSessionNotConnected
	}
	return link.SendText(ctx, messaging.NormalizeAddress(to), text)
}

// Teardown logs the session out, removes it from the registry and deletes
// its persisted credentials. Tearing down an unknown or already-closed
// session is a no-op.
func (s *Supervisor) Teardown(ctx context.Context, id string) error {
	mu := s.sessionMu(id)
	mu.Lock()
	defer mu.Unlock()

	sess, ok := s.registry.Get(id)
	if !ok {
		return nil
	}
	if !sess.BeginClose() {
		return nil
	}

	if link := sess.Link(); link != nil {
		if err := link.Logout(ctx); err != nil {
			s.log.Warn().Err(err).Str("session_id", id).Msg("logout failed during teardown")
		}
		link.Close()
	}
	sess.MarkClosed()
	s.registry.Remove(id)
	s.waiter.Discard(id)
	s.notifier.Forget(id)

	if err := s.store.Delete(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("session_id", id).Msg("credential delete failed during teardown")
	}
	s.log.Info().Str("session_id", id).Msg("session torn down")
	return nil
}

// runSession is the session's single event-processing goroutine: events for
// one session are handled in arrival order while other sessions proceed in
// parallel.
func (s *Supervisor) runSession(sess *sessions.Session) {
	attempt := 0
	for {
		link := sess.Link()
		if link == nil {
			return
		}

		reason, opened := s.consumeEvents(sess, link)
		if opened {
			attempt = 0
		}
		if closing(sess.State()) {
			return
		}

		if reason.Terminal() {
			s.finishSession(sess, reason)
			return
		}

		// Retryable drop: release the dead link and fall back to Connecting
		// before the backoff window, so sends fail instead of landing on a
		// dead link. MarkReconnecting refuses once a teardown claimed the
		// close. Redial reuses the same credentials; no new pairing prompt
		// reaches the original caller.
		link.Close()
		if !sess.MarkReconnecting() {
			return
		}
		if !s.redial(sess, &attempt, reason) {
			return
		}
	}
}

// consumeEvents drains the link's event stream. It returns the close reason
// (ReasonUnknown when the stream ended without one) and whether the link
// reached Connected at some point.
func (s *Supervisor) consumeEvents(sess *sessions.Session, link messaging.Link) (messaging.ReasonCode, bool) {
	opened := false
	for ev := range link.Events() {
		switch ev.Kind {
		case messaging.KindPairingCode:
			sess.SetPairingCode(ev.PairingCode)
			sess.SetState(sessions.StateAwaitingPairing)
			s.waiter.Publish(sess.ID, pairing.Result{Code: ev.PairingCode})
			s.log.Debug().Str("session_id", sess.ID).Msg("pairing code issued")

		case messaging.KindOpened:
			opened = true
			sess.MarkConnected(ev.Identity)
			s.waiter.Publish(sess.ID, pairing.Result{Connected: true, Identity: ev.Identity})
			s.notifier.Notify(sess.WebhookURL, webhook.Notification{
				SessionID: sess.ID,
				Event:     webhook.EventConnected,
				Data:      map[string]any{"phoneNumber": ev.Identity.PhoneNumber()},
			})
			s.log.Info().Str("session_id", sess.ID).Str("address", ev.Identity.Address).Msg("session connected")

		case messaging.KindCredentials:
			if ev.Credentials == nil {
				continue
			}
			if err := s.store.Save(context.Background(), sess.ID, ev.Credentials); err != nil {
				s.log.Error().Err(err).Str("session_id", sess.ID).Msg("credential save failed")
			}

		case messaging.KindMessage:
			msg := ev.Message
			if msg == nil || msg.FromSelf {
				continue
			}
			if sess.State() != sessions.StateConnected {
				continue
			}
			s.notifier.Notify(sess.WebhookURL, webhook.Notification{
				SessionID: sess.ID,
				Event:     webhook.EventMessage,
				Data: map[string]any{
					"from":      msg.Remote,
					"message":   msg.Text,
					"timestamp": msg.Timestamp.Unix(),
				},
			})

		case messaging.KindClosed:
			return ev.Reason, opened
		}
	}
	return messaging.ReasonUnknown, opened
}

// redial attempts to re-open the session's link, backing off between
// attempts. Returns false when the session went away or the attempt cap was
// exhausted (which closes the session for good).
func (s *Supervisor) redial(sess *sessions.Session, attempt *int, reason messaging.ReasonCode) bool {
	for {
		*attempt++
		if s.opts.Backoff.MaxAttempts > 0 && *attempt > s.opts.Backoff.MaxAttempts {
			s.log.Warn().
				Str("session_id", sess.ID).
				Int("attempts", *attempt-1).
				Msg("reconnect attempts exhausted, closing session")
			s.finishSession(sess, reason)
			return false
		}

		time.Sleep(NextBackoffDelay(s.opts.Backoff, *attempt))
		if closing(sess.State()) {
			return false
		}

		link, err := s.dialer.Dial(context.Background(), sess.Credentials())
		if err != nil {
			s.log.Warn().Err(err).
				Str("session_id", sess.ID).
				Int("attempt", *attempt).
				Msg("reconnect dial failed")
			continue
		}

		// A teardown may have won while the dial was in flight; the fresh
		// link must not outlive the session.
		if !sess.Rearm(link) {
			link.Close()
			return false
		}
		s.log.Info().Str("session_id", sess.ID).Int("attempt", *attempt).Msg("reconnecting session")
		return true
	}
}

// finishSession runs the single terminal transition for an event-loop-driven
// close. Explicit teardown owns its own path; whoever claims the close first
// wins and the other becomes a no-op.
func (s *Supervisor) finishSession(sess *sessions.Session, reason messaging.ReasonCode) {
	mu := s.sessionMu(sess.ID)
	mu.Lock()
	defer mu.Unlock()

	if !sess.BeginClose() {
		return
	}
	if link := sess.Link(); link != nil {
		link.Close()
	}
	sess.MarkClosed()
	s.registry.Remove(sess.ID)
	s.waiter.Discard(sess.ID)

	s.notifier.Notify(sess.WebhookURL, webhook.Notification{
		SessionID: sess.ID,
		Event:     webhook.EventDisconnected,
		Data:      map[string]any{"reason": int(reason)},
	})
	s.notifier.Forget(sess.ID)
	s.log.Info().Str("session_id", sess.ID).Int("reason", int(reason)).Msg("session closed")
}

// discard silently drops a session that is being replaced by a new
// CreateSession call for the same id: close the link, no logout, no
// notification.
func (s *Supervisor) discard(sess *sessions.Session) {
	if !sess.BeginClose() {
		return
	}
	if link := sess.Link(); link != nil {
		link.Close()
	}
	sess.MarkClosed()
	s.registry.Remove(sess.ID)
	s.waiter.Discard(sess.ID)
	s.notifier.Forget(sess.ID)
	s.log.Info().Str("session_id", sess.ID).Msg("prior session discarded")
}

// sessionMu returns the mutex serializing create, teardown and terminal
// close for one session id.
func (s *Supervisor) sessionMu(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	return mu
}

func closing(state sessions.State) bool {
	return state == sessions.StateClosing || state == sessions.StateClosed
}

func validateWebhookURL(webhookURL string) error {
	if webhookURL == "" {
		return nil
	}
	u, err := url.Parse(webhookURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.ErrInvalidWebhookURL
	}
	return nil
}
