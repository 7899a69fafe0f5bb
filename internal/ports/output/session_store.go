package output

import (
	"time"

	"directline-bridge/internal/domain"
)

// SessionStore interface - Output port
// Defines what the application needs for keeping DirectLine conversation sessions.
// One store is shared by every backend and refresher in the process, so
// implementations must be safe for concurrent use. Sessions are stored and
// returned by value; callers never hold a reference into the store.
type SessionStore interface {
	// Get returns a copy of the session stored for conversationID.
	// The boolean is false when no session is stored.
	Get(conversationID string) (domain.ConversationSession, bool)

	// Put inserts or wholesale replaces the session at session.ConversationID.
	// The last completed Put for a key is what later reads observe.
	Put(session domain.ConversationSession)

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(conversationID string)

	// Len returns the number of stored sessions.
	Len() int

	// Sweep removes sessions considered stale at now and returns how many were removed.
	Sweep(now time.Time) int
}
