package linkfakes

import (
	"context"
	"sync"

	"github.com/chatbridge/go-wa-gateway/messaging"
)

var _ messaging.CredentialStore = (*FakeCredentialStore)(nil)

// FakeCreds is the opaque credential value handed out by the fake store.
type FakeCreds struct {
	SessionID string
	Revision  int
}

// FakeCredentialStore keeps credentials in a map and records deletes.
type FakeCredentialStore struct {
	mu      sync.Mutex
	creds   map[string]messaging.Credentials
	deleted []string
	saves   int
	loadErr error
}

func NewFakeCredentialStore() *FakeCredentialStore {
	return &FakeCredentialStore{
		creds: make(map[string]messaging.Credentials),
	}
}

func (s *FakeCredentialStore) Load(_ context.Context, sessionID string) (messaging.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if creds, ok := s.creds[sessionID]; ok {
		return creds, nil
	}
	creds := &FakeCreds{SessionID: sessionID}
	s.creds[sessionID] = creds
	return creds, nil
}

func (s *FakeCredentialStore) Save(_ context.Context, sessionID string, creds messaging.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[sessionID] = creds
	s.saves++
	return nil
}

func (s *FakeCredentialStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, sessionID)
	s.deleted = append(s.deleted, sessionID)
	return nil
}

// SetLoadError makes subsequent Loads fail with err.
func (s *FakeCredentialStore) SetLoadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

func (s *FakeCredentialStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *FakeCredentialStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// Stored returns the credentials currently held for sessionID.
func (s *FakeCredentialStore) Stored(sessionID string) (messaging.Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, ok := s.creds[sessionID]
	return creds, ok
}
