package input

import (
	"context"
	"encoding/json"

	"directline-bridge/internal/domain"
)

// RelayService interface - Input port (use case)
// Defines what callers can do with DirectLine conversations through the bridge
type RelayService interface {
	CreateConversation(ctx context.Context, channel string) (*domain.ConversationView, error)
	CreateToken(ctx context.Context, channel string) (*domain.ConversationView, error)
	RefreshToken(ctx context.Context, channel, conversationID string) (*domain.ConversationView, error)
	ReconnectConversation(ctx context.Context, channel, conversationID string) (*domain.ConversationView, error)
	SendActivity(ctx context.Context, request domain.SendActivityRequest) (json.RawMessage, error)
	ReceiveActivity(ctx context.Context, request domain.ReceiveActivityRequest) (json.RawMessage, error)
	TokenStatus() []domain.TokenStatus
}
