package domain

import (
	"errors"
	"fmt"
)

// Bridge error types

var (
	// ErrConversationNotFound indicates no session is stored for a conversation id
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrConfiguration indicates a fatal misconfiguration, such as a failed discovery
	ErrConfiguration = errors.New("configuration error")

	// ErrTokenResponse indicates a token endpoint answered without usable fields
	ErrTokenResponse = errors.New("invalid token response")

	// ErrMalformedResponse indicates a backend response body could not be decoded
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNoToken indicates a maintained token has not been acquired yet
	ErrNoToken = errors.New("no token available yet")

	// ErrRefresherExited indicates a refresher loop returned without being cancelled
	ErrRefresherExited = errors.New("refresher exited")

	// ErrInvalidPayload indicates an activity body that is not a JSON object
	ErrInvalidPayload = errors.New("invalid activity payload")

	// ErrInvalidConversationID indicates an id that cannot address a conversation endpoint
	ErrInvalidConversationID = errors.New("invalid conversation id")

	// ErrUnknownChannel indicates a request named a backend channel that is not configured
	ErrUnknownChannel = errors.New("unknown channel")
)

// UpstreamError is returned when a backend answers with a non-success status.
type UpstreamError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream returned status %d: %s", e.Operation, e.StatusCode, e.Body)
}
