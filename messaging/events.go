package messaging

import (
	"strings"
	"time"
)

// EventKind discriminates the Event union.
type EventKind int

const (
	// KindPairingCode carries a freshly issued pairing code.
	KindPairingCode EventKind = iota + 1
	// KindOpened signals the connection is authenticated and usable.
	KindOpened
	// KindClosed signals the connection dropped, with a reason when known.
	KindClosed
	// KindCredentials carries updated authentication state to persist.
	KindCredentials
	// KindMessage carries an inbound message.
	KindMessage
)

// Identity describes the account a connected link is authenticated as.
type Identity struct {
	Address  string // network address, e.g. "15551234567@s.whatsapp.net"
	PushName string
}

// PhoneNumber returns the bare number portion of the identity address.
func (id Identity) PhoneNumber() string {
	if at := strings.IndexByte(id.Address, '@'); at >= 0 {
		return id.Address[:at]
	}
	return id.Address
}

// InboundMessage is one message received over a link.
type InboundMessage struct {
	FromSelf  bool
	Remote    string // sender address
	Text      string
	Timestamp time.Time
}

// Event is a single occurrence on a link's connection-state stream. Only the
// fields relevant to Kind are populated.
type Event struct {
	Kind        EventKind
	PairingCode string
	Identity    Identity
	Reason      ReasonCode
	Credentials Credentials
	Message     *InboundMessage
}
