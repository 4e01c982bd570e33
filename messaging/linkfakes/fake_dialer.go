package linkfakes

import (
	"context"
	"sync"

	"github.com/chatbridge/go-wa-gateway/messaging"
)

var _ messaging.Dialer = (*FakeDialer)(nil)

// FakeDialer hands out FakeLinks. Tests can queue prepared links; when the
// queue is empty each Dial creates a fresh one. Every dialed link is
// recorded in order.
type FakeDialer struct {
	mu      sync.Mutex
	queued  []*FakeLink
	dialed  []*FakeLink
	dialErr error
}

func NewFakeDialer() *FakeDialer {
	return &FakeDialer{}
}

func (d *FakeDialer) Dial(context.Context, messaging.Credentials) (messaging.Link, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	var link *FakeLink
	if len(d.queued) > 0 {
		link = d.queued[0]
		d.queued = d.queued[1:]
	} else {
		link = NewFakeLink()
	}
	d.dialed = append(d.dialed, link)
	return link, nil
}

// Queue makes the next Dial return link.
func (d *FakeDialer) Queue(link *FakeLink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queued = append(d.queued, link)
}

// SetDialError makes subsequent Dials fail with err.
func (d *FakeDialer) SetDialError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialErr = err
}

func (d *FakeDialer) DialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dialed)
}

// Link returns the i-th dialed link, nil when fewer dials happened.
func (d *FakeDialer) Link(i int) *FakeLink {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.dialed) {
		return nil
	}
	return d.dialed[i]
}
