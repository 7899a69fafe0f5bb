package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"directline-bridge/internal/domain"
	"directline-bridge/internal/ports/input"
	"directline-bridge/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure RelayService implements the input port
var _ input.RelayService = (*RelayService)(nil)

// StatusReporter reports the state of maintained tokens
type StatusReporter interface {
	Status() []domain.TokenStatus
}

// RelayService struct - Application service implementing conversation relay use cases
type RelayService struct {
	clients map[string]output.ConversationClient
	audit   output.AuditRepository
	status  StatusReporter
}

// NewRelayService func - Creates new relay service.
// audit and status may be nil.
func NewRelayService(clients []output.ConversationClient, audit output.AuditRepository, status StatusReporter) *RelayService {
	byChannel := make(map[string]output.ConversationClient, len(clients))
	for _, c := range clients {
		byChannel[c.Channel()] = c
	}
	return &RelayService{
		clients: byChannel,
		audit:   audit,
		status:  status,
	}
}

// Client returns the backend registered under channel
func (s *RelayService) Client(channel string) (output.ConversationClient, error) {
	c, ok := s.clients[channel]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownChannel, channel)
	}
	return c, nil
}

// CreateConversation func - Use case: start a conversation on a backend
func (s *RelayService) CreateConversation(ctx context.Context, channel string) (*domain.ConversationView, error) {
	c, err := s.Client(channel)
	if err != nil {
		return nil, err
	}
	session, err := c.CreateConversation(ctx)
	if err != nil {
		return nil, err
	}
	s.record(ctx, channel, domain.SessionEventCreated, session)
	view := session.View()
	return &view, nil
}

// CreateToken func - Use case: generate a conversation-scoped token
func (s *RelayService) CreateToken(ctx context.Context, channel string) (*domain.ConversationView, error) {
	c, err := s.Client(channel)
	if err != nil {
		return nil, err
	}
	session, err := c.CreateToken(ctx)
	if err != nil {
		return nil, err
	}
	s.record(ctx, channel, domain.SessionEventTokenCreated, session)
	view := session.View()
	return &view, nil
}

// RefreshToken func - Use case: renew the token of a known conversation
func (s *RelayService) RefreshToken(ctx context.Context, channel, conversationID string) (*domain.ConversationView, error) {
	c, err := s.Client(channel)
	if err != nil {
		return nil, err
	}
	session, err := c.RefreshToken(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, channel, domain.SessionEventRefreshed, session)
	view := session.View()
	return &view, nil
}

// ReconnectConversation func - Use case: obtain a fresh grant for a conversation
func (s *RelayService) ReconnectConversation(ctx context.Context, channel, conversationID string) (*domain.ConversationView, error) {
	c, err := s.Client(channel)
	if err != nil {
		return nil, err
	}
	session, err := c.ReconnectConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, channel, domain.SessionEventReconnected, session)
	view := session.View()
	return &view, nil
}

// SendActivity func - Use case: relay an activity into a conversation
func (s *RelayService) SendActivity(ctx context.Context, request domain.SendActivityRequest) (json.RawMessage, error) {
	c, err := s.Client(request.Channel)
	if err != nil {
		return nil, err
	}
	if !isJSONObject(request.Payload) {
		return nil, domain.ErrInvalidPayload
	}
	return c.SendActivity(ctx, request.ConversationID, request.Payload)
}

// ReceiveActivity func - Use case: poll the activities of a conversation
func (s *RelayService) ReceiveActivity(ctx context.Context, request domain.ReceiveActivityRequest) (json.RawMessage, error) {
	c, err := s.Client(request.Channel)
	if err != nil {
		return nil, err
	}
	return c.ReceiveActivity(ctx, request.ConversationID, request.Watermark)
}

// TokenStatus func - Use case: report maintained tokens without their values
func (s *RelayService) TokenStatus() []domain.TokenStatus {
	if s.status == nil {
		return []domain.TokenStatus{}
	}
	return s.status.Status()
}

// record stores a lifecycle audit; failures never fail the caller
func (s *RelayService) record(ctx context.Context, channel string, event domain.SessionEvent, session domain.ConversationSession) {
	if s.audit == nil {
		return
	}
	if err := s.audit.RecordSessionEvent(context.WithoutCancel(ctx), channel, event, session); err != nil {
		logrus.WithFields(logrus.Fields{
			"channel":         channel,
			"event":           event,
			"conversation_id": session.ConversationID,
		}).Warnf("Failed to record session audit: %v", err)
	}
}

func isJSONObject(payload json.RawMessage) bool {
	trimmed := bytes.TrimSpace(payload)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
