package linkfakes

import (
	"context"
	"sync"

	"github.com/chatbridge/go-wa-gateway/messaging"
)

var _ messaging.Link = (*FakeLink)(nil)

// FakeLink is a scriptable messaging.Link: tests emit events into it and
// inspect the commands it received.
type FakeLink struct {
	events chan messaging.Event

	mu          sync.Mutex
	sent        []SentMessage
	sendErr     error
	logoutCalls int
	closed      bool
}

// SentMessage records one SendText call.
type SentMessage struct {
	Address string
	Text    string
}

func NewFakeLink() *FakeLink {
	return &FakeLink{
		events: make(chan messaging.Event, 32),
	}
}

func (l *FakeLink) Events() <-chan messaging.Event {
	return l.events
}

// Emit pushes an event into the link's stream.
func (l *FakeLink) Emit(ev messaging.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.events <- ev
}

func (l *FakeLink) SendText(_ context.Context, address, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sendErr != nil {
		return l.sendErr
	}
	l.sent = append(l.sent, SentMessage{Address: address, Text: text})
	return nil
}

func (l *FakeLink) Logout(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logoutCalls++
	return nil
}

func (l *FakeLink) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.events)
}

// SetSendError makes subsequent SendText calls fail with err.
func (l *FakeLink) SetSendError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sendErr = err
}

func (l *FakeLink) Sent() []SentMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]SentMessage(nil), l.sent...)
}

func (l *FakeLink) LogoutCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logoutCalls
}

func (l *FakeLink) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
