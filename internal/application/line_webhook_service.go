package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"directline-bridge/internal/domain"
	"directline-bridge/internal/ports/input"
	"directline-bridge/internal/ports/output"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure LineWebhookService implements the input port
var _ input.LineWebhookService = (*LineWebhookService)(nil)

// Reply polling
const (
	replyPollAttempts = 5
	replyPollInterval = 500 * time.Millisecond

	// LINE accepts at most five messages per reply
	maxReplyMessages = 5
)

const (
	welcomeText     = "Welcome! Send me a message and I will pass it on to the bot.\n\nType /help to see available commands."
	helpText        = "Available commands:\n/help - Show this message\n/reset - Start a new conversation with the bot"
	resetText       = "Conversation reset."
	unavailableText = "Sorry, the bot is not available right now. Please try again later."
)

// LineWebhookService struct - Application service relaying LINE users to a DirectLine backend
type LineWebhookService struct {
	lineClient    output.LineClient
	conversations output.ConversationClient
	bindings      output.ChannelBindingStore

	newID func() string
	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewLineWebhookService func - Creates new LINE webhook service
func NewLineWebhookService(lineClient output.LineClient, conversations output.ConversationClient, bindings output.ChannelBindingStore) *LineWebhookService {
	return &LineWebhookService{
		lineClient:    lineClient,
		conversations: conversations,
		bindings:      bindings,
		newID:         uuid.NewString,
		now:           time.Now,
		after:         time.After,
	}
}

// HandleWebhook func - Use case: Handle incoming webhook events from LINE
func (s *LineWebhookService) HandleWebhook(ctx context.Context, request domain.LineWebhookRequest) error {
	for _, event := range request.Events {
		logrus.Infof("Received LINE event: type=%s, source=%s, userID=%s",
			event.Type, event.Source.Type, event.Source.UserID)

		switch event.Type {
		case domain.LineEventTypeMessage:
			if err := s.handleMessageEvent(ctx, event); err != nil {
				logrus.Errorf("Failed to handle message event: %v", err)
				return err
			}

		case domain.LineEventTypeFollow:
			if err := s.handleFollowEvent(event); err != nil {
				logrus.Errorf("Failed to handle follow event: %v", err)
				return err
			}

		case domain.LineEventTypeUnfollow:
			s.handleUnfollowEvent(event)

		default:
			logrus.Infof("Unhandled event type: %s", event.Type)
		}
	}

	return nil
}

// handleMessageEvent relays a text message and replies with the bot's answers
func (s *LineWebhookService) handleMessageEvent(ctx context.Context, event domain.LineWebhookEvent) error {
	if event.Message == nil {
		return nil
	}

	if event.Message.Type != domain.LineMessageTypeText {
		logrus.Infof("Ignoring non-text message: type=%s", event.Message.Type)
		return nil
	}

	userID := event.Source.UserID
	if userID == "" {
		logrus.Infof("Ignoring message without user id: source=%s", event.Source.Type)
		return nil
	}

	text := strings.TrimSpace(event.Message.Text)
	if strings.HasPrefix(text, "/") {
		if replies := s.handleCommand(text, userID); replies != nil {
			return s.reply(event.ReplyToken, replies)
		}
	}

	replies, err := s.relay(ctx, userID, text)
	if err != nil {
		logrus.WithField("user_id", userID).Errorf("Relay failed: %v", err)
		return s.reply(event.ReplyToken, []string{unavailableText})
	}
	return s.reply(event.ReplyToken, replies)
}

// handleCommand answers bridge commands; unknown commands return nil and are relayed
func (s *LineWebhookService) handleCommand(text, userID string) []string {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return nil
	}

	switch strings.ToLower(parts[0]) {
	case "/help":
		return []string{helpText}
	case "/reset":
		s.bindings.DeleteBinding(userID)
		return []string{resetText}
	default:
		return nil
	}
}

// relay sends text into the user's conversation and collects the bot replies to it
func (s *LineWebhookService) relay(ctx context.Context, userID, text string) ([]string, error) {
	binding, err := s.binding(ctx, userID)
	if err != nil {
		return nil, err
	}

	clientActivityID := s.newID()
	sentID, binding, err := s.send(ctx, binding, text, clientActivityID)
	if err != nil {
		return nil, err
	}

	return s.collectReplies(ctx, binding.ConversationID, sentID)
}

// binding returns the user's conversation, creating one on first contact
func (s *LineWebhookService) binding(ctx context.Context, userID string) (domain.ChannelBinding, error) {
	if binding, ok := s.bindings.GetBinding(userID); ok && binding.Channel == s.conversations.Channel() {
		return binding, nil
	}
	return s.bind(ctx, userID)
}

func (s *LineWebhookService) bind(ctx context.Context, userID string) (domain.ChannelBinding, error) {
	session, err := s.conversations.CreateConversation(ctx)
	if err != nil {
		return domain.ChannelBinding{}, fmt.Errorf("failed to create conversation: %w", err)
	}

	binding := domain.ChannelBinding{
		UserID:         userID,
		Channel:        s.conversations.Channel(),
		ConversationID: session.ConversationID,
		DisplayName:    s.displayName(userID),
		CreatedAt:      s.now(),
	}
	s.bindings.SaveBinding(binding)
	logrus.WithFields(logrus.Fields{
		"user_id":         userID,
		"conversation_id": session.ConversationID,
	}).Info("Bound LINE user to conversation")
	return binding, nil
}

// displayName looks up the user's LINE name; the relay works without it
func (s *LineWebhookService) displayName(userID string) string {
	profile, err := s.lineClient.GetProfile(userID)
	if err != nil || profile == nil {
		logrus.WithField("user_id", userID).Warnf("Failed to get LINE profile: %v", err)
		return ""
	}
	return profile.DisplayName
}

// send posts the message. A conversation the bridge no longer holds is
// reconnected once; if that fails too the user gets a new conversation.
func (s *LineWebhookService) send(ctx context.Context, binding domain.ChannelBinding, text, clientActivityID string) (string, domain.ChannelBinding, error) {
	sentID, err := s.post(ctx, binding, text, clientActivityID)
	if !errors.Is(err, domain.ErrConversationNotFound) {
		return sentID, binding, err
	}

	if _, rerr := s.conversations.ReconnectConversation(ctx, binding.ConversationID); rerr != nil {
		logrus.WithField("conversation_id", binding.ConversationID).Warnf("Reconnect failed, starting a new conversation: %v", rerr)
		if binding, err = s.bind(ctx, binding.UserID); err != nil {
			return "", binding, err
		}
	}

	sentID, err = s.post(ctx, binding, text, clientActivityID)
	return sentID, binding, err
}

func (s *LineWebhookService) post(ctx context.Context, binding domain.ChannelBinding, text, clientActivityID string) (string, error) {
	session := domain.ConversationSession{ConversationID: binding.ConversationID}
	activity := domain.NewMessageActivity(session, domain.ChannelAccount{ID: binding.UserID, Name: binding.DisplayName, Role: "user"}, text, clientActivityID)

	payload, err := json.Marshal(activity)
	if err != nil {
		return "", fmt.Errorf("failed to encode activity: %w", err)
	}

	body, err := s.conversations.SendActivity(ctx, binding.ConversationID, payload)
	if err != nil {
		return "", err
	}

	var resource domain.ResourceResponse
	if err := json.Unmarshal(body, &resource); err != nil || resource.ID == "" {
		return "", fmt.Errorf("%w: send activity returned no id", domain.ErrMalformedResponse)
	}
	return resource.ID, nil
}

// collectReplies polls the conversation until the bot answered sentID or attempts run out
func (s *LineWebhookService) collectReplies(ctx context.Context, conversationID, sentID string) ([]string, error) {
	var (
		watermark string
		replies   []string
	)

	for attempt := 1; attempt <= replyPollAttempts; attempt++ {
		body, err := s.conversations.ReceiveActivity(ctx, conversationID, watermark)
		if err != nil {
			return nil, err
		}

		var set domain.ActivitySet
		if err := json.Unmarshal(body, &set); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}
		if set.Watermark != "" {
			watermark = set.Watermark
		}

		for _, activity := range set.Activities {
			if activity.Type == domain.ActivityTypeMessage && activity.ReplyToID == sentID && activity.Text != "" {
				replies = append(replies, activity.Text)
			}
		}
		if len(replies) > 0 {
			return replies, nil
		}

		if attempt < replyPollAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-s.after(replyPollInterval):
			}
		}
	}

	logrus.WithField("conversation_id", conversationID).Infof("No bot reply to %s yet", sentID)
	return nil, nil
}

func (s *LineWebhookService) reply(replyToken string, texts []string) error {
	if replyToken == "" || len(texts) == 0 {
		return nil
	}
	if len(texts) > maxReplyMessages {
		texts = texts[:maxReplyMessages]
	}

	messages := make([]domain.LineOutgoingMessage, 0, len(texts))
	for _, text := range texts {
		messages = append(messages, domain.LineOutgoingMessage{
			Type: domain.LineMessageTypeText,
			Text: text,
		})
	}

	if _, err := s.lineClient.ReplyMessage(domain.LineReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	}); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// handleFollowEvent - Business logic for follow events
func (s *LineWebhookService) handleFollowEvent(event domain.LineWebhookEvent) error {
	logrus.Infof("User followed: userID=%s", event.Source.UserID)

	welcomeMsg := domain.LinePushMessageRequest{
		To: event.Source.UserID,
		Messages: []domain.LineOutgoingMessage{
			{
				Type: domain.LineMessageTypeText,
				Text: welcomeText,
			},
		},
	}

	if _, err := s.lineClient.PushMessage(welcomeMsg); err != nil {
		return fmt.Errorf("failed to send welcome message: %w", err)
	}

	return nil
}

// handleUnfollowEvent drops the user's conversation binding
func (s *LineWebhookService) handleUnfollowEvent(event domain.LineWebhookEvent) {
	logrus.Infof("User unfollowed: userID=%s", event.Source.UserID)
	s.bindings.DeleteBinding(event.Source.UserID)
}
