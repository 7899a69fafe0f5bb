package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"directline-bridge/internal/adapters/output/memory"
	"directline-bridge/internal/domain"
)

// Mock implementations for testing

// MockLineClient implements output.LineClient for testing
type MockLineClient struct {
	ReplyMessageFunc func(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error)
	PushMessageFunc  func(request domain.LinePushMessageRequest) (*domain.LineMessageResponse, error)
	GetProfileFunc   func(userID string) (*domain.LineProfile, error)

	// Captured values for assertions
	LastReplyRequest *domain.LineReplyMessageRequest
	LastPushRequest  *domain.LinePushMessageRequest

	// Track all push requests for multi-message testing
	PushRequests []domain.LinePushMessageRequest
}

func (m *MockLineClient) ReplyMessage(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error) {
	m.LastReplyRequest = &request
	if m.ReplyMessageFunc != nil {
		return m.ReplyMessageFunc(request)
	}
	return &domain.LineMessageResponse{Status: "ok"}, nil
}

func (m *MockLineClient) PushMessage(request domain.LinePushMessageRequest) (*domain.LineMessageResponse, error) {
	m.LastPushRequest = &request
	m.PushRequests = append(m.PushRequests, request)
	if m.PushMessageFunc != nil {
		return m.PushMessageFunc(request)
	}
	return &domain.LineMessageResponse{Status: "ok"}, nil
}

func (m *MockLineClient) GetProfile(userID string) (*domain.LineProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(userID)
	}
	return &domain.LineProfile{UserID: userID, DisplayName: "Test User"}, nil
}

// Test helper to create a basic text message event
func createTextMessageEvent(text string) domain.LineWebhookEvent {
	return domain.LineWebhookEvent{
		Type:       domain.LineEventTypeMessage,
		ReplyToken: "test-reply-token",
		Source: domain.LineSource{
			Type:   domain.LineSourceTypeUser,
			UserID: "test-user-id",
		},
		Message: &domain.LineMessage{
			ID:   "test-message-id",
			Type: domain.LineMessageTypeText,
			Text: text,
		},
	}
}

// botReply builds an activity set answering sentID
func botReply(sentID string, texts ...string) json.RawMessage {
	set := domain.ActivitySet{Watermark: "2"}
	for _, text := range texts {
		set.Activities = append(set.Activities, domain.Activity{
			Type:      domain.ActivityTypeMessage,
			From:      domain.ChannelAccount{ID: "bot", Role: "bot"},
			Text:      text,
			ReplyToID: sentID,
		})
	}
	body, _ := json.Marshal(set)
	return body
}

func newTestLineService(lineClient *MockLineClient, conversations *MockConversationClient) (*LineWebhookService, *memory.MemoryBindingStore) {
	bindings := memory.NewMemoryBindingStore()
	service := NewLineWebhookService(lineClient, conversations, bindings)
	service.newID = func() string { return "client-activity-1" }
	service.after = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}
	return service, bindings
}

func webhookRequest(events ...domain.LineWebhookEvent) domain.LineWebhookRequest {
	return domain.LineWebhookRequest{Events: events}
}

// =============================================================================
// Message relay
// =============================================================================

// TestMessageRelay_FirstMessageCreatesConversationAndReplies tests the full relay path
func TestMessageRelay_FirstMessageCreatesConversationAndReplies(t *testing.T) {
	// Arrange
	mockLineClient := &MockLineClient{}
	conversations := &MockConversationClient{
		ReceiveActivityFunc: func(ctx context.Context, id, watermark string) (json.RawMessage, error) {
			return botReply("conv-1|0000001", "Hello from the bot"), nil
		},
	}
	service, bindings := newTestLineService(mockLineClient, conversations)

	// Act
	err := service.HandleWebhook(context.Background(), webhookRequest(createTextMessageEvent("Hello!")))

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	binding, ok := bindings.GetBinding("test-user-id")
	if !ok || binding.ConversationID != "conv-1" {
		t.Fatalf("Expected user bound to conv-1, got %+v", binding)
	}

	if len(conversations.SentPayloads) != 1 {
		t.Fatalf("Expected 1 activity sent, got %d", len(conversations.SentPayloads))
	}
	var sent domain.Activity
	if err := json.Unmarshal(conversations.SentPayloads[0], &sent); err != nil {
		t.Fatalf("Expected sent payload to be an activity: %v", err)
	}
	if sent.Type != domain.ActivityTypeMessage || sent.Text != "Hello!" || sent.From.ID != "test-user-id" {
		t.Errorf("Unexpected activity %+v", sent)
	}
	if sent.Conversation.ID != "conv-1" {
		t.Errorf("Expected conversation conv-1 in activity, got %s", sent.Conversation.ID)
	}
	if sent.From.Name != "Test User" {
		t.Errorf("Expected LINE display name on the sender, got %q", sent.From.Name)
	}
	if sent.ChannelData == nil || sent.ChannelData.ClientActivityID != "client-activity-1" {
		t.Errorf("Expected clientActivityID in channel data, got %+v", sent.ChannelData)
	}

	if mockLineClient.LastReplyRequest == nil {
		t.Fatal("Expected reply message to be sent")
	}
	if got := mockLineClient.LastReplyRequest.Messages[0].Text; got != "Hello from the bot" {
		t.Errorf("Expected bot reply, got %q", got)
	}
}

// TestMessageRelay_ReusesBinding tests that a second message goes to the same conversation
func TestMessageRelay_ReusesBinding(t *testing.T) {
	created := 0
	conversations := &MockConversationClient{
		CreateConversationFunc: func(ctx context.Context) (domain.ConversationSession, error) {
			created++
			return testSession("conv-1"), nil
		},
		ReceiveActivityFunc: func(ctx context.Context, id, watermark string) (json.RawMessage, error) {
			return botReply("conv-1|0000001", "ok"), nil
		},
	}
	service, _ := newTestLineService(&MockLineClient{}, conversations)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := service.HandleWebhook(ctx, webhookRequest(createTextMessageEvent("again"))); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}
	if created != 1 {
		t.Errorf("Expected one conversation for the user, got %d", created)
	}
}

// TestMessageRelay_IgnoresUnrelatedActivities tests reply filtering by replyToId
func TestMessageRelay_IgnoresUnrelatedActivities(t *testing.T) {
	mockLineClient := &MockLineClient{}
	conversations := &MockConversationClient{
		ReceiveActivityFunc: func(ctx context.Context, id, watermark string) (json.RawMessage, error) {
			set := domain.ActivitySet{Activities: []domain.Activity{
				{Type: domain.ActivityTypeMessage, Text: "Hello!", From: domain.ChannelAccount{ID: "test-user-id"}},
				{Type: domain.ActivityTypeTyping, ReplyToID: "conv-1|0000001"},
				{Type: domain.ActivityTypeMessage, Text: "old answer", ReplyToID: "conv-1|0000000"},
				{Type: domain.ActivityTypeMessage, Text: "right answer", ReplyToID: "conv-1|0000001"},
			}}
			body, _ := json.Marshal(set)
			return body, nil
		},
	}
	service, _ := newTestLineService(mockLineClient, conversations)

	if err := service.HandleWebhook(context.Background(), webhookRequest(createTextMessageEvent("Hello!"))); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	msgs := mockLineClient.LastReplyRequest.Messages
	if len(msgs) != 1 || msgs[0].Text != "right answer" {
		t.Errorf("Expected only the matching reply, got %+v", msgs)
	}
}

// TestMessageRelay_PollsUntilReply tests that the bot gets several chances to answer
func TestMessageRelay_PollsUntilReply(t *testing.T) {
	mockLineClient := &MockLineClient{}
	var watermarks []string
	conversations := &MockConversationClient{
		ReceiveActivityFunc: func(ctx context.Context, id, watermark string) (json.RawMessage, error) {
			watermarks = append(watermarks, watermark)
			if len(watermarks) < 3 {
				return json.RawMessage(`{"activities":[],"watermark":"1"}`), nil
			}
			return botReply("conv-1|0000001", "finally"), nil
		},
	}
	service, _ := newTestLineService(mockLineClient, conversations)

	if err := service.HandleWebhook(context.Background(), webhookRequest(createTextMessageEvent("Hello!"))); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(watermarks) != 3 || watermarks[0] != "" || watermarks[1] != "1" {
		t.Errorf("Unexpected polling watermarks %v", watermarks)
	}
	if mockLineClient.LastReplyRequest.Messages[0].Text != "finally" {
		t.Errorf("Expected the late reply to be relayed")
	}
}

// TestMessageRelay_NoReplyDoesNotAnswer tests a bot that stays silent
func TestMessageRelay_NoReplyDoesNotAnswer(t *testing.T) {
	mockLineClient := &MockLineClient{}
	service, _ := newTestLineService(mockLineClient, &MockConversationClient{})

	if err := service.HandleWebhook(context.Background(), webhookRequest(createTextMessageEvent("Hello!"))); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if mockLineClient.LastReplyRequest != nil {
		t.Errorf("Expected no reply, got %+v", mockLineClient.LastReplyRequest)
	}
}

// TestMessageRelay_ReconnectsLostConversation tests the single reconnect on not-found
func TestMessageRelay_ReconnectsLostConversation(t *testing.T) {
	sends := 0
	conversations := &MockConversationClient{
		SendActivityFunc: func(ctx context.Context, id string, payload json.RawMessage) (json.RawMessage, error) {
			sends++
			if sends == 1 {
				return nil, domain.ErrConversationNotFound
			}
			return json.RawMessage(`{"id":"conv-1|0000001"}`), nil
		},
		ReceiveActivityFunc: func(ctx context.Context, id, watermark string) (json.RawMessage, error) {
			return botReply("conv-1|0000001", "back again"), nil
		},
	}
	service, bindings := newTestLineService(&MockLineClient{}, conversations)
	bindings.SaveBinding(domain.ChannelBinding{UserID: "test-user-id", Channel: "directline", ConversationID: "conv-1"})

	if err := service.HandleWebhook(context.Background(), webhookRequest(createTextMessageEvent("Hello!"))); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(conversations.Reconnects) != 1 || conversations.Reconnects[0] != "conv-1" {
		t.Errorf("Expected one reconnect of conv-1, got %v", conversations.Reconnects)
	}
	if sends != 2 {
		t.Errorf("Expected send to be retried once, got %d sends", sends)
	}
}

// TestMessageRelay_RebindsWhenReconnectFails tests falling back to a new conversation
func TestMessageRelay_RebindsWhenReconnectFails(t *testing.T) {
	conversations := &MockConversationClient{
		CreateConversationFunc: func(ctx context.Context) (domain.ConversationSession, error) {
			return testSession("conv-2"), nil
		},
		ReconnectConversationFunc: func(ctx context.Context, id string) (domain.ConversationSession, error) {
			return domain.ConversationSession{}, &domain.UpstreamError{Operation: "reconnect_conversation", StatusCode: 403}
		},
		SendActivityFunc: func(ctx context.Context, id string, payload json.RawMessage) (json.RawMessage, error) {
			if id == "conv-old" {
				return nil, domain.ErrConversationNotFound
			}
			return json.RawMessage(`{"id":"conv-2|0000001"}`), nil
		},
	}
	service, bindings := newTestLineService(&MockLineClient{}, conversations)
	bindings.SaveBinding(domain.ChannelBinding{UserID: "test-user-id", Channel: "directline", ConversationID: "conv-old"})

	if err := service.HandleWebhook(context.Background(), webhookRequest(createTextMessageEvent("Hello!"))); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	binding, _ := bindings.GetBinding("test-user-id")
	if binding.ConversationID != "conv-2" {
		t.Errorf("Expected user rebound to conv-2, got %s", binding.ConversationID)
	}
	var sent domain.Activity
	_ = json.Unmarshal(conversations.SentPayloads[len(conversations.SentPayloads)-1], &sent)
	if sent.Conversation.ID != "conv-2" {
		t.Errorf("Expected retried activity to target conv-2, got %s", sent.Conversation.ID)
	}
}

// TestMessageRelay_ProfileFailureStillRelays tests that a missing profile does not block the relay
func TestMessageRelay_ProfileFailureStillRelays(t *testing.T) {
	mockLineClient := &MockLineClient{
		GetProfileFunc: func(userID string) (*domain.LineProfile, error) {
			return nil, errors.New("profile unavailable")
		},
	}
	conversations := &MockConversationClient{
		ReceiveActivityFunc: func(ctx context.Context, id, watermark string) (json.RawMessage, error) {
			return botReply("conv-1|0000001", "Hi"), nil
		},
	}
	service, _ := newTestLineService(mockLineClient, conversations)

	if err := service.HandleWebhook(context.Background(), webhookRequest(createTextMessageEvent("Hello!"))); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var sent domain.Activity
	_ = json.Unmarshal(conversations.SentPayloads[0], &sent)
	if sent.From.Name != "" {
		t.Errorf("Expected empty sender name, got %q", sent.From.Name)
	}
	if mockLineClient.LastReplyRequest == nil || mockLineClient.LastReplyRequest.Messages[0].Text != "Hi" {
		t.Errorf("Expected bot reply, got %+v", mockLineClient.LastReplyRequest)
	}
}

// TestMessageRelay_BackendFailureApologises tests the unavailable reply
func TestMessageRelay_BackendFailureApologises(t *testing.T) {
	mockLineClient := &MockLineClient{}
	conversations := &MockConversationClient{
		CreateConversationFunc: func(ctx context.Context) (domain.ConversationSession, error) {
			return domain.ConversationSession{}, domain.ErrNoToken
		},
	}
	service, _ := newTestLineService(mockLineClient, conversations)

	if err := service.HandleWebhook(context.Background(), webhookRequest(createTextMessageEvent("Hello!"))); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if mockLineClient.LastReplyRequest == nil || mockLineClient.LastReplyRequest.Messages[0].Text != unavailableText {
		t.Errorf("Expected apology reply, got %+v", mockLineClient.LastReplyRequest)
	}
}

// TestMessageRelay_ReplyFailureIsReturned tests that LINE errors surface
func TestMessageRelay_ReplyFailureIsReturned(t *testing.T) {
	mockLineClient := &MockLineClient{
		ReplyMessageFunc: func(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error) {
			return nil, errors.New("line down")
		},
	}
	service, _ := newTestLineService(mockLineClient, &MockConversationClient{})

	err := service.HandleWebhook(context.Background(), webhookRequest(createTextMessageEvent("/help")))
	if err == nil || !strings.Contains(err.Error(), "line down") {
		t.Errorf("Expected reply error, got %v", err)
	}
}

// TestMessageRelay_IgnoresNonText tests that stickers are not relayed
func TestMessageRelay_IgnoresNonText(t *testing.T) {
	conversations := &MockConversationClient{}
	service, _ := newTestLineService(&MockLineClient{}, conversations)

	event := createTextMessageEvent("")
	event.Message.Type = domain.LineMessageTypeSticker
	if err := service.HandleWebhook(context.Background(), webhookRequest(event)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(conversations.SentPayloads) != 0 {
		t.Errorf("Expected nothing relayed")
	}
}

// =============================================================================
// Commands
// =============================================================================

// TestHelpCommand tests that /help is answered locally
func TestHelpCommand(t *testing.T) {
	mockLineClient := &MockLineClient{}
	conversations := &MockConversationClient{}
	service, _ := newTestLineService(mockLineClient, conversations)

	if err := service.HandleWebhook(context.Background(), webhookRequest(createTextMessageEvent("/help"))); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(conversations.SentPayloads) != 0 {
		t.Error("Expected /help not to be relayed")
	}
	if !strings.Contains(mockLineClient.LastReplyRequest.Messages[0].Text, "/reset") {
		t.Errorf("Expected help text to mention /reset")
	}
}

// TestResetCommand tests that /reset drops the binding
func TestResetCommand(t *testing.T) {
	mockLineClient := &MockLineClient{}
	service, bindings := newTestLineService(mockLineClient, &MockConversationClient{})
	bindings.SaveBinding(domain.ChannelBinding{UserID: "test-user-id", Channel: "directline", ConversationID: "conv-1"})

	if err := service.HandleWebhook(context.Background(), webhookRequest(createTextMessageEvent("/reset"))); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, ok := bindings.GetBinding("test-user-id"); ok {
		t.Error("Expected binding to be removed")
	}
	if mockLineClient.LastReplyRequest.Messages[0].Text != resetText {
		t.Errorf("Expected reset confirmation")
	}
}

// TestUnknownCommandIsRelayed tests that other slash text reaches the bot
func TestUnknownCommandIsRelayed(t *testing.T) {
	conversations := &MockConversationClient{}
	service, _ := newTestLineService(&MockLineClient{}, conversations)

	if err := service.HandleWebhook(context.Background(), webhookRequest(createTextMessageEvent("/start"))); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(conversations.SentPayloads) != 1 {
		t.Errorf("Expected /start to be relayed, got %d sends", len(conversations.SentPayloads))
	}
}

// =============================================================================
// Follow / unfollow
// =============================================================================

// TestFollowEvent_SendsWelcome tests the welcome push
func TestFollowEvent_SendsWelcome(t *testing.T) {
	mockLineClient := &MockLineClient{}
	service, _ := newTestLineService(mockLineClient, &MockConversationClient{})

	event := domain.LineWebhookEvent{
		Type:   domain.LineEventTypeFollow,
		Source: domain.LineSource{Type: domain.LineSourceTypeUser, UserID: "test-user-id"},
	}
	if err := service.HandleWebhook(context.Background(), webhookRequest(event)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if mockLineClient.LastPushRequest == nil || mockLineClient.LastPushRequest.To != "test-user-id" {
		t.Fatalf("Expected welcome push, got %+v", mockLineClient.LastPushRequest)
	}
	if mockLineClient.LastPushRequest.Messages[0].Text != welcomeText {
		t.Errorf("Unexpected welcome text")
	}
}

// TestUnfollowEvent_DropsBinding tests binding removal on unfollow
func TestUnfollowEvent_DropsBinding(t *testing.T) {
	service, bindings := newTestLineService(&MockLineClient{}, &MockConversationClient{})
	bindings.SaveBinding(domain.ChannelBinding{UserID: "test-user-id", Channel: "directline", ConversationID: "conv-1"})

	event := domain.LineWebhookEvent{
		Type:   domain.LineEventTypeUnfollow,
		Source: domain.LineSource{Type: domain.LineSourceTypeUser, UserID: "test-user-id"},
	}
	if err := service.HandleWebhook(context.Background(), webhookRequest(event)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, ok := bindings.GetBinding("test-user-id"); ok {
		t.Error("Expected binding to be removed")
	}
}
