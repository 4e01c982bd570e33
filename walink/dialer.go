package walink

import (
	"context"

	"go.mau.fi/whatsmeow"
	waLog "go.mau.fi/whatsmeow/util/log"

	"github.com/chatbridge/go-wa-gateway/internal/errors"
	"github.com/chatbridge/go-wa-gateway/messaging"
)

// Dialer opens whatsmeow-backed links.
type Dialer struct {
	log waLog.Logger
}

var _ messaging.Dialer = (*Dialer)(nil)

func NewDialer() *Dialer {
	return &Dialer{log: waLog.Noop}
}

func (d *Dialer) Dial(_ context.Context, mc messaging.Credentials) (messaging.Link, error) {
	c, ok := mc.(*creds)
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnsupported, "walink.Dial: foreign credentials")
	}

	client := whatsmeow.NewClient(c.device, d.log)
	// The supervisor owns reconnection policy.
	client.EnableAutoReconnect = false

	l := &link{
		client: client,
		creds:  c,
		events: make(chan messaging.Event, 64),
	}
	client.AddEventHandler(l.handleEvent)

	// A device with no stored registration needs the pairing flow; the QR
	// channel must be claimed before connecting. The background context is
	// deliberate: an aborted create request must not cancel the attempt.
	if c.device.ID == nil {
		qrChan, err := client.GetQRChannel(context.Background())
		if err != nil {
			return nil, errors.Wrapf(err, "walink.Dial qr channel %q", c.sessionID)
		}
		go l.pumpQR(qrChan)
	}

	if err := client.Connect(); err != nil {
		return nil, errors.Wrapf(err, "walink.Dial connect %q", c.sessionID)
	}
	return l, nil
}
