// Package messaging defines the seams between the gateway core and the
// external messaging-network client: one live connection attempt (Link),
// the factory that opens them (Dialer), and durable per-session
// authentication state (CredentialStore). The core only observes a Link
// through its event stream and issues send/logout commands; framing,
// encryption and the handshake itself belong to the implementation.
package messaging

import "context"

// Credentials is the opaque per-session authentication state. The core hands
// it between the CredentialStore and the Dialer without inspecting it; it is
// only ever replaced wholesale from a credentials-updated event.
type Credentials interface{}

// Link is one logical connection attempt to the messaging network.
type Link interface {
	// Events returns the connection's event stream. The channel is closed
	// when the link is no longer usable; a Closed event with a reason code
	// precedes the close when the cause is known.
	Events() <-chan Event

	// SendText delivers a plain text message to a fully qualified address.
	SendText(ctx context.Context, address, text string) error

	// Logout invalidates the session's registration with the network.
	Logout(ctx context.Context) error

	// Close releases the connection without logging out.
	Close()
}

// Dialer opens new Links using previously loaded credentials.
type Dialer interface {
	Dial(ctx context.Context, creds Credentials) (Link, error)
}

// CredentialStore loads and persists opaque per-session authentication state.
type CredentialStore interface {
	// Load returns the stored credentials for the session, creating fresh
	// state when none exists yet.
	Load(ctx context.Context, sessionID string) (Credentials, error)

	// Save persists updated credentials. Called whenever a link reports a
	// credentials-updated event.
	Save(ctx context.Context, sessionID string, creds Credentials) error

	// Delete removes the persisted state for a torn-down session.
	Delete(ctx context.Context, sessionID string) error
}
