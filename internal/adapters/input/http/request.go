package http

type (
	// ChannelRequest struct - HTTP path parameters naming a backend
	ChannelRequest struct {
		Channel string `params:"channel" validate:"required,oneof=directline webchat"`
	}

	// ConversationRequest struct - HTTP path parameters naming a conversation
	ConversationRequest struct {
		Channel        string `params:"channel" validate:"required,oneof=directline webchat"`
		ConversationID string `params:"id" validate:"required,max=128,excludesall=/?#,ne=.,ne=.."`
	}

	// ReceiveActivityQuery struct - HTTP query DTO for polling activities
	ReceiveActivityQuery struct {
		Watermark string `query:"watermark" validate:"omitempty,max=64"`
	}
)
