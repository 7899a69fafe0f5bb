package domain

import (
	"fmt"
	"time"
)

// ConversationSession is the DirectLine grant for one conversation.
// The conversation id is the only key; token and expiry always belong to the same grant.
type ConversationSession struct {
	ConversationID     string
	Token              string
	ExpiresAt          time.Time
	StreamURL          string
	ReferenceGrammarID string
}

// ConversationTokenResponse is the body returned by the conversation, token
// generate, token refresh and reconnect endpoints.
type ConversationTokenResponse struct {
	ConversationID     string `json:"conversationId"`
	Token              string `json:"token"`
	ExpiresIn          int64  `json:"expires_in"`
	StreamURL          string `json:"streamUrl,omitempty"`
	ReferenceGrammarID string `json:"referenceGrammarId,omitempty"`
}

// ToSession converts the wire response into a session, anchoring the
// relative expiry hint at now.
func (r ConversationTokenResponse) ToSession(now time.Time) (ConversationSession, error) {
	if r.ConversationID == "" {
		return ConversationSession{}, fmt.Errorf("%w: missing conversationId", ErrMalformedResponse)
	}
	if r.Token == "" {
		return ConversationSession{}, fmt.Errorf("%w: missing token", ErrMalformedResponse)
	}

	expiresIn := r.ExpiresIn
	if expiresIn < 0 {
		expiresIn = 0
	}

	return ConversationSession{
		ConversationID:     r.ConversationID,
		Token:              r.Token,
		ExpiresAt:          now.Add(time.Duration(expiresIn) * time.Second),
		StreamURL:          r.StreamURL,
		ReferenceGrammarID: r.ReferenceGrammarID,
	}, nil
}

// Expired checks if the session grant is past its expiry at now
func (s ConversationSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Conversation returns the account reference used in activity bodies
func (s ConversationSession) Conversation() ConversationAccount {
	return ConversationAccount{ID: s.ConversationID}
}

// View strips the secret token for callers outside the bridge
func (s ConversationSession) View() ConversationView {
	return ConversationView{
		ConversationID:     s.ConversationID,
		ExpiresAt:          s.ExpiresAt,
		StreamURL:          s.StreamURL,
		ReferenceGrammarID: s.ReferenceGrammarID,
	}
}

// ConversationView is a session without its token
type ConversationView struct {
	ConversationID     string    `json:"conversation_id"`
	ExpiresAt          time.Time `json:"expires_at"`
	StreamURL          string    `json:"stream_url,omitempty"`
	ReferenceGrammarID string    `json:"reference_grammar_id,omitempty"`
}
