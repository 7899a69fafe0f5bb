package webchat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"directline-bridge/configs"
	"directline-bridge/internal/domain"
	"directline-bridge/internal/ports/output"

	"github.com/golang-jwt/jwt/v5"
)

// Compile-time check to ensure Client implements TokenSource interface
var _ output.TokenSource = (*Client)(nil)

// Client struct - Output adapter for the WebChat token endpoint
type Client struct {
	tokenURL        string
	secret          string
	refreshInterval time.Duration
	httpClient      *http.Client
	now             func() time.Time
}

// NewClient func
func NewClient(config configs.WebChat, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		tokenURL:        config.TokenURL,
		secret:          config.Secret,
		refreshInterval: config.RefreshInterval,
		httpClient:      httpClient,
		now:             time.Now,
	}
}

// Name func
func (c *Client) Name() string {
	return "webchat"
}

// Prepare func - the token endpoint is configured directly
func (c *Client) Prepare(ctx context.Context) error {
	if c.tokenURL == "" || c.secret == "" {
		return fmt.Errorf("%w: webchat token_url and secret are required", domain.ErrConfiguration)
	}
	return nil
}

// Fetch requests a WebChat token. The endpoint answers with a bare JSON string.
func (c *Client) Fetch(ctx context.Context) (domain.AccessToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tokenURL, nil)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("failed to create webchat token request: %w", err)
	}
	req.Header.Set("Authorization", "BotConnector "+c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("webchat token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("failed to read webchat token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.AccessToken{}, &domain.UpstreamError{
			Operation:  "webchat_token",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var value string
	if err := json.Unmarshal(body, &value); err != nil {
		return domain.AccessToken{}, fmt.Errorf("%w: webchat token is not a JSON string", domain.ErrTokenResponse)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.AccessToken{}, fmt.Errorf("%w: empty webchat token", domain.ErrTokenResponse)
	}

	return domain.AccessToken{
		Value:     value,
		ExpiresAt: c.expiry(value),
	}, nil
}

// expiry reads exp from a JWT token without verifying it.
// Opaque tokens are assumed to live one refresh interval.
func (c *Client) expiry(value string) time.Time {
	fallback := c.now().Add(c.refreshInterval)

	token, _, err := jwt.NewParser().ParseUnverified(value, jwt.MapClaims{})
	if err != nil {
		return fallback
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	return exp.Time
}
