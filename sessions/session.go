package sessions

import (
	"sync"
	"time"

	"github.com/chatbridge/go-wa-gateway/messaging"
)

// State is a session's position in its connection lifecycle.
type State string

const (
	StateConnecting      State = "connecting"
	StateAwaitingPairing State = "awaiting_pairing"
	StateConnected       State = "connected"
	StateClosing         State = "closing"
	StateClosed          State = "closed"
)

// Session is one tenant's logical identity on the messaging network,
// independent of any single connection attempt. All mutation happens through
// the accessors below; the supervisor's per-session event loop and concurrent
// API calls share a Session.
type Session struct {
	ID         string
	WebhookURL string
	CreatedAt  time.Time

	mu              sync.RWMutex
	state           State
	link            messaging.Link
	lastPairingCode string
	identity        messaging.Identity
	credentials     messaging.Credentials
	closing         bool
}

// New returns a Session in the Connecting state.
func New(id, webhookURL string) *Session {
	return &Session{
		ID:         id,
		WebhookURL: webhookURL,
		CreatedAt:  time.Now(),
		state:      StateConnecting,
	}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Link returns the session's current connection handle, nil once closed.
func (s *Session) Link() messaging.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.link
}

func (s *Session) SetLink(link messaging.Link) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.link = link
}

func (s *Session) PairingCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPairingCode
}

func (s *Session) SetPairingCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPairingCode = code
}

func (s *Session) Identity() messaging.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *Session) SetIdentity(identity messaging.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
}

func (s *Session) Credentials() messaging.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credentials
}

func (s *Session) SetCredentials(creds messaging.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials = creds
}

// MarkConnected records the identity and moves to Connected, clearing the
// pairing code in the same step.
func (s *Session) MarkConnected(identity messaging.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateConnected
	s.identity = identity
	s.lastPairingCode = ""
}

// MarkReconnecting releases a dead link and falls back to Connecting ahead
// of a redial. Refuses once the terminal transition has been claimed.
func (s *Session) MarkReconnecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.state = StateConnecting
	s.link = nil
	return true
}

// Rearm installs a freshly dialed link after a reconnect. Refuses once the
// terminal transition has been claimed; a refused link stays with the caller
// to release.
func (s *Session) Rearm(link messaging.Link) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.state = StateConnecting
	s.link = link
	return true
}

// BeginClose claims the session's single terminal transition. The first
// caller gets true and owns the Closing->Closed path; later callers must
// treat the session as already gone.
func (s *Session) BeginClose() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.closing = true
	s.state = StateClosing
	return true
}

// MarkClosed finishes the terminal transition and drops the link reference.
func (s *Session) MarkClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
	s.link = nil
}
