package directline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"directline-bridge/internal/domain"
	"directline-bridge/pkg/metrics"

	"github.com/sirupsen/logrus"
)

// Operation names used in errors, logs and metrics
const (
	OpCreateConversation    = "create_conversation"
	OpCreateToken           = "create_token"
	OpRefreshToken          = "refresh_token"
	OpReconnectConversation = "reconnect_conversation"
	OpSendActivity          = "send_activity"
	OpReceiveActivity       = "receive_activity"
)

const (
	conversationsPath = "v3/directline/conversations"
	generatePath      = "v3/directline/tokens/generate"
	refreshPath       = "v3/directline/tokens/refresh"

	maxBodySize = 4 << 20
)

// now is swapped in tests
var now = time.Now

// CreateConversation starts a new conversation and stores its session
func CreateConversation(ctx context.Context, b Backend) (session domain.ConversationSession, err error) {
	defer observe(b, OpCreateConversation, &err)

	secret, err := b.Secret()
	if err != nil {
		return domain.ConversationSession{}, err
	}

	session, err = exchange(ctx, b, OpCreateConversation, http.MethodPost, b.BaseURL().JoinPath(conversationsPath), secret, "")
	if err != nil {
		return domain.ConversationSession{}, err
	}
	b.Store().Put(session)
	return session, nil
}

// CreateToken generates a conversation-scoped token and stores its session
func CreateToken(ctx context.Context, b Backend) (session domain.ConversationSession, err error) {
	defer observe(b, OpCreateToken, &err)

	secret, err := b.Secret()
	if err != nil {
		return domain.ConversationSession{}, err
	}

	session, err = exchange(ctx, b, OpCreateToken, http.MethodPost, b.BaseURL().JoinPath(generatePath), secret, "")
	if err != nil {
		return domain.ConversationSession{}, err
	}
	b.Store().Put(session)
	return session, nil
}

// RefreshToken renews the token of a stored conversation using that conversation's token
func RefreshToken(ctx context.Context, b Backend, conversationID string) (session domain.ConversationSession, err error) {
	defer observe(b, OpRefreshToken, &err)

	current, ok := b.Store().Get(conversationID)
	if !ok {
		return domain.ConversationSession{}, fmt.Errorf("%w: %s", domain.ErrConversationNotFound, conversationID)
	}

	session, err = exchange(ctx, b, OpRefreshToken, http.MethodPost, b.BaseURL().JoinPath(refreshPath), current.Token, conversationID)
	if err != nil {
		return domain.ConversationSession{}, err
	}
	b.Store().Put(session)
	return session, nil
}

// ReconnectConversation obtains a fresh grant for an existing conversation.
// The session is stored even if the bridge did not know the conversation before.
func ReconnectConversation(ctx context.Context, b Backend, conversationID string) (session domain.ConversationSession, err error) {
	defer observe(b, OpReconnectConversation, &err)

	secret, err := b.Secret()
	if err != nil {
		return domain.ConversationSession{}, err
	}

	endpoint, err := conversationURL(b, conversationID)
	if err != nil {
		return domain.ConversationSession{}, err
	}
	session, err = exchange(ctx, b, OpReconnectConversation, http.MethodGet, endpoint, secret, conversationID)
	if err != nil {
		return domain.ConversationSession{}, err
	}
	b.Store().Put(session)
	return session, nil
}

// SendActivity posts an activity into a stored conversation and returns the upstream body
func SendActivity(ctx context.Context, b Backend, conversationID string, payload json.RawMessage) (body json.RawMessage, err error) {
	defer observe(b, OpSendActivity, &err)

	session, ok := b.Store().Get(conversationID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrConversationNotFound, conversationID)
	}

	endpoint, err := conversationURL(b, conversationID, "activities")
	if err != nil {
		return nil, err
	}
	raw, err := do(ctx, b, OpSendActivity, http.MethodPost, endpoint, session.Token, payload)
	if err != nil {
		return nil, err
	}
	return decodeRaw(OpSendActivity, raw)
}

// ReceiveActivity polls the activities of a stored conversation.
// An empty watermark returns every activity the backend still holds.
func ReceiveActivity(ctx context.Context, b Backend, conversationID, watermark string) (body json.RawMessage, err error) {
	defer observe(b, OpReceiveActivity, &err)

	session, ok := b.Store().Get(conversationID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrConversationNotFound, conversationID)
	}

	endpoint, err := conversationURL(b, conversationID, "activities")
	if err != nil {
		return nil, err
	}
	if watermark != "" {
		endpoint.RawQuery = url.Values{"watermark": {watermark}}.Encode()
	}
	raw, err := do(ctx, b, OpReceiveActivity, http.MethodGet, endpoint, session.Token, nil)
	if err != nil {
		return nil, err
	}
	return decodeRaw(OpReceiveActivity, raw)
}

// exchange performs a call answered with a conversation token body.
// A non-empty conversationID pins the session to the conversation the call
// addressed, whatever id the response carries.
func exchange(ctx context.Context, b Backend, op, method string, endpoint *url.URL, bearer, conversationID string) (domain.ConversationSession, error) {
	raw, err := do(ctx, b, op, method, endpoint, bearer, nil)
	if err != nil {
		return domain.ConversationSession{}, err
	}

	var resp domain.ConversationTokenResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return domain.ConversationSession{}, fmt.Errorf("%s: %w: %v", op, domain.ErrMalformedResponse, err)
	}
	if conversationID != "" {
		if resp.ConversationID != "" && resp.ConversationID != conversationID {
			logrus.WithFields(logrus.Fields{
				"channel":         b.Name(),
				"operation":       op,
				"conversation_id": conversationID,
				"returned_id":     resp.ConversationID,
			}).Warn("Backend answered with another conversation id, keeping the requested one")
		}
		resp.ConversationID = conversationID
	}

	session, err := resp.ToSession(now())
	if err != nil {
		return domain.ConversationSession{}, fmt.Errorf("%s: %w", op, err)
	}

	logrus.WithFields(logrus.Fields{
		"channel":         b.Name(),
		"operation":       op,
		"conversation_id": session.ConversationID,
		"expires_at":      session.ExpiresAt.Format(time.RFC3339),
	}).Debug("DirectLine session granted")
	return session, nil
}

// conversationURL builds a per-conversation endpoint. Ids that would be
// cleaned out of the path are rejected.
func conversationURL(b Backend, conversationID string, elem ...string) (*url.URL, error) {
	switch conversationID {
	case "", ".", "..":
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidConversationID, conversationID)
	}
	return b.BaseURL().JoinPath(append([]string{conversationsPath, url.PathEscape(conversationID)}, elem...)...), nil
}

func do(ctx context.Context, b Backend, op, method string, endpoint *url.URL, bearer string, payload json.RawMessage) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.HTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.UpstreamError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return body, nil
}

// decodeRaw checks that an upstream body is JSON before relaying it untouched.
// Empty bodies become null.
func decodeRaw(op string, raw []byte) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%s: %w: body is not JSON", op, domain.ErrMalformedResponse)
	}
	return json.RawMessage(raw), nil
}

func observe(b Backend, op string, err *error) {
	metrics.RelayRequestsTotal.WithLabelValues(b.Name(), op, metrics.Result(*err)).Inc()
	if *err != nil {
		logrus.WithFields(logrus.Fields{
			"channel":   b.Name(),
			"operation": op,
		}).Warnf("DirectLine call failed: %v", *err)
	}
}
