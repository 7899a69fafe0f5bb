package output

import (
	"context"
	"encoding/json"

	"directline-bridge/internal/domain"
)

// ConversationClient interface - Output port
// One DirectLine-speaking backend. Calls that take a conversation id
// fail with domain.ErrConversationNotFound when no session is stored for it,
// except ReconnectConversation which may adopt an unknown id.
type ConversationClient interface {
	// Channel names the backend, e.g. "directline" or "webchat"
	Channel() string

	CreateConversation(ctx context.Context) (domain.ConversationSession, error)
	CreateToken(ctx context.Context) (domain.ConversationSession, error)
	RefreshToken(ctx context.Context, conversationID string) (domain.ConversationSession, error)
	ReconnectConversation(ctx context.Context, conversationID string) (domain.ConversationSession, error)

	// SendActivity relays payload untouched and returns the upstream body
	SendActivity(ctx context.Context, conversationID string, payload json.RawMessage) (json.RawMessage, error)

	// ReceiveActivity returns the upstream activity set; an empty watermark means from the start
	ReceiveActivity(ctx context.Context, conversationID, watermark string) (json.RawMessage, error)
}
