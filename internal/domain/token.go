package domain

import (
	"fmt"
	"time"
)

// AccessToken is a bearer credential together with its absolute expiry.
// A token is replaced wholesale on every refresh and never mutated in place.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// NewAccessToken builds a token that expires expiresIn after now.
func NewAccessToken(value string, now time.Time, expiresIn time.Duration) AccessToken {
	return AccessToken{
		Value:     value,
		ExpiresAt: now.Add(expiresIn),
	}
}

// IsZero reports whether the token carries no value.
func (t AccessToken) IsZero() bool {
	return t.Value == ""
}

// Expired reports whether the token is past its expiry at now.
func (t AccessToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Remaining returns the lifetime left at now, floored at zero.
func (t AccessToken) Remaining(now time.Time) time.Duration {
	d := t.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// String redacts the bearer value so tokens can be passed to loggers safely.
func (t AccessToken) String() string {
	return fmt.Sprintf("AccessToken{expires_at=%s}", t.ExpiresAt.Format(time.RFC3339))
}

// TokenStatus is the publicly visible state of a maintained token.
type TokenStatus struct {
	Source    string     `json:"source"`
	Available bool       `json:"available"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}
