package sessions

// Registry is the authoritative mapping from session id to live session:
// a session is live exactly while it has an entry here. Implementations must
// be safe under concurrent use from API calls and per-session event loops.
type Registry interface {
	// Put registers a session, overwriting any prior entry for the same id.
	// Callers must tear down the prior entry's link first.
	Put(id string, session *Session)

	// Get returns the session for id, or false when none is live.
	Get(id string) (*Session, bool)

	// Remove drops the entry for id. Removing an unknown id is a no-op.
	Remove(id string)

	// Count returns the number of live sessions.
	Count() int
}
