package directline

import (
	"context"
	"encoding/json"

	"directline-bridge/internal/domain"
	"directline-bridge/internal/ports/output"
)

// Compile-time check to ensure ConversationClient implements the output port
var _ output.ConversationClient = (*ConversationClient)(nil)

// ConversationClient struct - Output adapter binding the DirectLine calls to one backend
type ConversationClient struct {
	backend Backend
}

// NewConversationClient func
func NewConversationClient(backend Backend) *ConversationClient {
	return &ConversationClient{backend: backend}
}

// Channel func
func (c *ConversationClient) Channel() string {
	return c.backend.Name()
}

// CreateConversation func
func (c *ConversationClient) CreateConversation(ctx context.Context) (domain.ConversationSession, error) {
	return CreateConversation(ctx, c.backend)
}

// CreateToken func
func (c *ConversationClient) CreateToken(ctx context.Context) (domain.ConversationSession, error) {
	return CreateToken(ctx, c.backend)
}

// RefreshToken func
func (c *ConversationClient) RefreshToken(ctx context.Context, conversationID string) (domain.ConversationSession, error) {
	return RefreshToken(ctx, c.backend, conversationID)
}

// ReconnectConversation func
func (c *ConversationClient) ReconnectConversation(ctx context.Context, conversationID string) (domain.ConversationSession, error) {
	return ReconnectConversation(ctx, c.backend, conversationID)
}

// SendActivity func
func (c *ConversationClient) SendActivity(ctx context.Context, conversationID string, payload json.RawMessage) (json.RawMessage, error) {
	return SendActivity(ctx, c.backend, conversationID, payload)
}

// ReceiveActivity func
func (c *ConversationClient) ReceiveActivity(ctx context.Context, conversationID, watermark string) (json.RawMessage, error) {
	return ReceiveActivity(ctx, c.backend, conversationID, watermark)
}
