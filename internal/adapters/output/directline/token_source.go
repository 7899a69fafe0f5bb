package directline

import (
	"context"

	"directline-bridge/internal/domain"
)

// TokenSource maintains a DirectLine token by generating a new one on every fetch.
// Each generated token is bound to a fresh conversation which is stored like any other.
type TokenSource struct {
	backend Backend
}

// NewTokenSource func
func NewTokenSource(backend Backend) *TokenSource {
	return &TokenSource{backend: backend}
}

// Name func
func (s *TokenSource) Name() string {
	return s.backend.Name() + "_token"
}

// Prepare func - nothing to discover for DirectLine
func (s *TokenSource) Prepare(ctx context.Context) error {
	return nil
}

// Fetch generates a token and converts its session into an access token
func (s *TokenSource) Fetch(ctx context.Context) (domain.AccessToken, error) {
	session, err := CreateToken(ctx, s.backend)
	if err != nil {
		return domain.AccessToken{}, err
	}
	return domain.AccessToken{
		Value:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
