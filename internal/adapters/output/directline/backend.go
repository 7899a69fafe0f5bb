package directline

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"directline-bridge/configs"
	"directline-bridge/internal/domain"
	"directline-bridge/internal/ports/output"
	"directline-bridge/pkg/tokencell"
)

// Backend is a conversation service speaking the DirectLine v3 protocol.
// The two variants differ only in where the bearer secret comes from.
type Backend interface {
	// Name is the channel label used in routes, logs and metrics
	Name() string
	// Secret returns the bearer used for create, token and reconnect calls
	Secret() (string, error)
	BaseURL() *url.URL
	HTTPClient() *http.Client
	Store() output.SessionStore
}

// Channel names
const (
	ChannelDirectLine = "directline"
	ChannelWebChat    = "webchat"
)

type base struct {
	baseURL *url.URL
	client  *http.Client
	store   output.SessionStore
}

func newBase(rawURL string, client *http.Client, store output.SessionStore) (base, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return base{}, fmt.Errorf("%w: invalid base url %q: %v", domain.ErrConfiguration, rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return base{}, fmt.Errorf("%w: base url %q must be absolute", domain.ErrConfiguration, rawURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return base{baseURL: u, client: client, store: store}, nil
}

func (b base) BaseURL() *url.URL          { return b.baseURL }
func (b base) HTTPClient() *http.Client   { return b.client }
func (b base) Store() output.SessionStore { return b.store }

// DirectLine struct - backend authenticated with a static DirectLine secret
type DirectLine struct {
	base
	secret string
}

// NewDirectLine func
func NewDirectLine(config configs.DirectLine, client *http.Client, store output.SessionStore) (*DirectLine, error) {
	b, err := newBase(config.BaseURL, client, store)
	if err != nil {
		return nil, err
	}
	if config.Secret == "" {
		return nil, fmt.Errorf("%w: directline secret is empty", domain.ErrConfiguration)
	}
	return &DirectLine{base: b, secret: config.Secret}, nil
}

// Name func
func (d *DirectLine) Name() string { return ChannelDirectLine }

// Secret func
func (d *DirectLine) Secret() (string, error) { return d.secret, nil }

// WebChat struct - backend authenticated with the latest maintained WebChat token
type WebChat struct {
	base
	cell *tokencell.Cell[domain.AccessToken]
}

// NewWebChat func
func NewWebChat(config configs.WebChat, client *http.Client, store output.SessionStore, cell *tokencell.Cell[domain.AccessToken]) (*WebChat, error) {
	b, err := newBase(config.BaseURL, client, store)
	if err != nil {
		return nil, err
	}
	if cell == nil {
		return nil, fmt.Errorf("%w: webchat token cell is nil", domain.ErrConfiguration)
	}
	return &WebChat{base: b, cell: cell}, nil
}

// Name func
func (w *WebChat) Name() string { return ChannelWebChat }

// Secret returns the latest WebChat token, or ErrNoToken before the first acquisition
func (w *WebChat) Secret() (string, error) {
	token, ok := w.cell.Load()
	if !ok || token.IsZero() {
		return "", domain.ErrNoToken
	}
	return token.Value, nil
}
