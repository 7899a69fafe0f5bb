package output

import (
	"context"

	"directline-bridge/internal/domain"
)

// TokenSource interface - Output port
// A credential endpoint that a refresher loop polls for fresh access tokens.
type TokenSource interface {
	// Name identifies the source in logs, metrics and status reports.
	Name() string

	// Prepare runs once before the first Fetch. An error here is fatal
	// configuration and is never retried.
	Prepare(ctx context.Context) error

	// Fetch exchanges the configured credentials for a new token.
	Fetch(ctx context.Context) (domain.AccessToken, error)
}
