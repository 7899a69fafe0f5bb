package output

import "directline-bridge/internal/domain"

// ChannelBindingStore interface - Output port
// Maps a LINE user to the conversation relaying their messages.
// Implementations must be thread-safe for concurrent access.
type ChannelBindingStore interface {
	// GetBinding returns the binding for a LINE user, or false if none exists.
	GetBinding(userID string) (domain.ChannelBinding, bool)

	// SaveBinding creates or replaces the binding for binding.UserID.
	SaveBinding(binding domain.ChannelBinding)

	// DeleteBinding removes a binding. Idempotent.
	DeleteBinding(userID string)
}
