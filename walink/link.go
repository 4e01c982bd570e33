package walink

import (
	"context"
	"sync"

	"go.mau.fi/whatsmeow"
	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"github.com/chatbridge/go-wa-gateway/internal/errors"
	"github.com/chatbridge/go-wa-gateway/messaging"
)

// link adapts one whatsmeow client to messaging.Link, translating the
// client's event callbacks and QR channel into the event stream the
// supervisor consumes.
type link struct {
	client *whatsmeow.Client
	creds  *creds
	events chan messaging.Event

	mu     sync.Mutex
	closed bool
}

var _ messaging.Link = (*link)(nil)

func (l *link) Events() <-chan messaging.Event {
	return l.events
}

func (l *link) SendText(ctx context.Context, address, text string) error {
	jid, err := types.ParseJID(address)
	if err != nil {
		return errors.Wrapf(err, "walink.SendText parse %q", address)
	}
	_, err = l.client.SendMessage(ctx, jid, &waE2E.Message{Conversation: proto.String(text)})
	return err
}

func (l *link) Logout(context.Context) error {
	return l.client.Logout()
}

func (l *link) Close() {
	l.client.Disconnect()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.events)
}

// emit forwards an event to the supervisor, dropping it when the link is
// already closed or the consumer stopped draining.
func (l *link) emit(ev messaging.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.events <- ev:
	default:
	}
}

func (l *link) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		identity := messaging.Identity{PushName: l.client.Store.PushName}
		if id := l.client.Store.ID; id != nil {
			identity.Address = id.User + "@" + id.Server
		}
		l.emit(messaging.Event{Kind: messaging.KindOpened, Identity: identity})

	case *events.PairSuccess:
		l.emit(messaging.Event{Kind: messaging.KindCredentials, Credentials: l.creds})

	case *events.LoggedOut:
		l.emit(messaging.Event{Kind: messaging.KindClosed, Reason: messaging.ReasonLoggedOut})

	case *events.StreamReplaced:
		l.emit(messaging.Event{Kind: messaging.KindClosed, Reason: messaging.ReasonConnectionReplaced})

	case *events.ConnectFailure:
		l.emit(messaging.Event{Kind: messaging.KindClosed, Reason: messaging.ReasonCode(int(v.Reason))})

	case *events.Disconnected:
		l.emit(messaging.Event{Kind: messaging.KindClosed, Reason: messaging.ReasonConnectionLost})

	case *events.Message:
		text := v.Message.GetConversation()
		if text == "" {
			text = v.Message.GetExtendedTextMessage().GetText()
		}
		l.emit(messaging.Event{Kind: messaging.KindMessage, Message: &messaging.InboundMessage{
			FromSelf:  v.Info.IsFromMe,
			Remote:    v.Info.Sender.String(),
			Text:      text,
			Timestamp: v.Info.Timestamp,
		}})
	}
}

// pumpQR forwards freshly issued pairing codes from the QR channel.
func (l *link) pumpQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for item := range qrChan {
		if item.Event == whatsmeow.QRChannelEventCode {
			l.emit(messaging.Event{Kind: messaging.KindPairingCode, PairingCode: item.Code})
		}
	}
}
