package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"directline-bridge/configs"
	"directline-bridge/internal/domain"
	"directline-bridge/internal/ports/output"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Compile-time check to ensure Client implements TokenSource interface
var _ output.TokenSource = (*Client)(nil)

const discoveryPath = "/.well-known/openid-configuration"

// Discovery is the part of the OpenID provider metadata the bridge needs
type Discovery struct {
	Issuer        string `json:"issuer"`
	TokenEndpoint string `json:"token_endpoint"`
}

// Client struct - Output adapter for an OAuth2 client-credentials identity provider
type Client struct {
	config     configs.Identity
	httpClient *http.Client
	discovery  *Discovery
}

// NewClient func
func NewClient(config configs.Identity, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// Name func
func (c *Client) Name() string {
	return "identity"
}

// Discovery returns the metadata found by Prepare, or nil before it succeeded
func (c *Client) Discovery() *Discovery {
	return c.discovery
}

// Prepare discovers the token endpoint. Any failure is a configuration error.
func (c *Client) Prepare(ctx context.Context) error {
	discoveryURL := strings.TrimSuffix(c.config.Issuer, "/") + discoveryPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return fmt.Errorf("%w: creating discovery request: %v", domain.ErrConfiguration, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetching discovery document: %v", domain.ErrConfiguration, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: discovery request failed: %d %s", domain.ErrConfiguration, resp.StatusCode, string(body))
	}

	var discovery Discovery
	if err := json.NewDecoder(resp.Body).Decode(&discovery); err != nil {
		return fmt.Errorf("%w: parsing discovery document: %v", domain.ErrConfiguration, err)
	}
	if discovery.Issuer == "" {
		return fmt.Errorf("%w: discovery document has no issuer", domain.ErrConfiguration)
	}
	if discovery.TokenEndpoint == "" {
		return fmt.Errorf("%w: discovery document has no token_endpoint", domain.ErrConfiguration)
	}

	c.discovery = &discovery
	logrus.WithFields(logrus.Fields{
		"issuer":         discovery.Issuer,
		"token_endpoint": discovery.TokenEndpoint,
	}).Info("Identity provider discovered")
	return nil
}

// Fetch exchanges the client credentials for an access token
func (c *Client) Fetch(ctx context.Context) (domain.AccessToken, error) {
	if c.discovery == nil {
		return domain.AccessToken{}, fmt.Errorf("%w: token endpoint not discovered", domain.ErrConfiguration)
	}

	cc := &clientcredentials.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		TokenURL:     c.discovery.TokenEndpoint,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if c.config.Scope != "" {
		cc.Scopes = []string{c.config.Scope}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := cc.Token(ctx)
	if err != nil {
		return domain.AccessToken{}, classify(err)
	}

	if token.AccessToken == "" {
		return domain.AccessToken{}, fmt.Errorf("%w: missing access_token", domain.ErrTokenResponse)
	}
	if token.Expiry.IsZero() {
		return domain.AccessToken{}, fmt.Errorf("%w: missing expires_in", domain.ErrTokenResponse)
	}

	return domain.AccessToken{
		Value:     token.AccessToken,
		ExpiresAt: token.Expiry,
	}, nil
}

// classify maps oauth2 errors onto bridge errors.
// A rejected exchange is an upstream error, a network failure stays a transport
// error and anything else means the endpoint answered with an unusable body.
func classify(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return &domain.UpstreamError{
			Operation:  "token_exchange",
			StatusCode: retrieveErr.Response.StatusCode,
			Body:       string(retrieveErr.Body),
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("token exchange failed: %w", err)
	}

	return fmt.Errorf("%w: %v", domain.ErrTokenResponse, err)
}
