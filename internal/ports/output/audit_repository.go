package output

import (
	"context"

	"directline-bridge/internal/domain"
)

// AuditRepository interface - Output port
// Defines what the application needs for recording session lifecycle events
type AuditRepository interface {
	RecordSessionEvent(ctx context.Context, channel string, event domain.SessionEvent, session domain.ConversationSession) error
	ListSessionEvents(ctx context.Context, conversationID string) ([]domain.SessionAudit, error)
}
