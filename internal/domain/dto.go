package domain

import "encoding/json"

// DTOs (Data Transfer Objects) - Domain layer request/response structures

type (
	// SendActivityRequest struct - Domain request DTO for relaying an activity
	SendActivityRequest struct {
		Channel        string
		ConversationID string
		Payload        json.RawMessage
	}

	// ReceiveActivityRequest struct - Domain request DTO for polling activities
	ReceiveActivityRequest struct {
		Channel        string
		ConversationID string
		Watermark      string
	}

	// LineWebhookRequest struct - Domain LINE webhook request DTO
	LineWebhookRequest struct {
		Events []LineWebhookEvent
	}

	// LineReplyMessageRequest struct - Domain LINE reply message request DTO
	LineReplyMessageRequest struct {
		ReplyToken string
		Messages   []LineOutgoingMessage
	}

	// LinePushMessageRequest struct - Domain LINE push message request DTO
	LinePushMessageRequest struct {
		To       string
		Messages []LineOutgoingMessage
	}

	// LineOutgoingMessage struct - Domain LINE outgoing message DTO
	LineOutgoingMessage struct {
		Type LineMessageType
		Text string
	}

	// LineMessageResponse struct - Domain LINE API response DTO
	LineMessageResponse struct {
		Status  string
		Message string
	}
)
