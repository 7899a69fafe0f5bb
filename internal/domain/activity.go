package domain

// ActivityType represents the type of a DirectLine activity
type ActivityType string

const (
	// ActivityTypeMessage - Message activity
	ActivityTypeMessage ActivityType = "message"
	// ActivityTypeConversationUpdate - Conversation update activity
	ActivityTypeConversationUpdate ActivityType = "conversationUpdate"
	// ActivityTypeTyping - Typing indicator activity
	ActivityTypeTyping ActivityType = "typing"
)

// ChannelAccount identifies a participant in a conversation
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// ConversationAccount identifies the conversation an activity belongs to
type ConversationAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ChannelData carries the client-side correlation id of an activity
type ChannelData struct {
	ClientActivityID string `json:"clientActivityID"`
	ClientTimestamp  string `json:"clientTimestamp,omitempty"`
}

// Activity is the subset of the Bot Framework activity schema the bridge reads and writes.
// Anything the bridge does not understand is relayed as raw JSON instead.
type Activity struct {
	Type         ActivityType        `json:"type"`
	ID           string              `json:"id,omitempty"`
	Timestamp    string              `json:"timestamp,omitempty"`
	ChannelID    string              `json:"channelId,omitempty"`
	From         ChannelAccount      `json:"from"`
	Conversation ConversationAccount `json:"conversation"`
	Recipient    *ChannelAccount     `json:"recipient,omitempty"`
	Text         string              `json:"text,omitempty"`
	TextFormat   string              `json:"textFormat,omitempty"`
	Locale       string              `json:"locale,omitempty"`
	ReplyToID    string              `json:"replyToId,omitempty"`
	ChannelData  *ChannelData        `json:"channelData,omitempty"`
}

// ActivitySet is the body returned when receiving activities
type ActivitySet struct {
	Activities []Activity `json:"activities"`
	Watermark  string     `json:"watermark,omitempty"`
}

// ResourceResponse is the body returned after sending an activity
type ResourceResponse struct {
	ID string `json:"id"`
}

// NewMessageActivity builds a plain text message from a user into the session's conversation
func NewMessageActivity(session ConversationSession, from ChannelAccount, text, clientActivityID string) Activity {
	activity := Activity{
		Type:         ActivityTypeMessage,
		From:         from,
		Conversation: session.Conversation(),
		Text:         text,
		TextFormat:   "plain",
	}
	if clientActivityID != "" {
		activity.ChannelData = &ChannelData{ClientActivityID: clientActivityID}
	}
	return activity
}
