package http

import (
	"net/http"
	"time"
)

var (
	// Success response
	Success = Status{Code: http.StatusOK, Message: []string{"Success"}}
	// Created response
	Created = Status{Code: http.StatusCreated, Message: []string{"Created"}}
	// BadRequest response
	BadRequest = Status{Code: http.StatusBadRequest, Message: []string{"Sorry, Not responding because of incorrect syntax"}}
	// NotFound response
	NotFound = Status{Code: http.StatusNotFound, Message: []string{"Sorry, Conversation not found"}}
	// InternalServerError response
	InternalServerError = Status{Code: http.StatusInternalServerError, Message: []string{"Internal Server Error"}}
	// BadGateway response
	BadGateway = Status{Code: http.StatusBadGateway, Message: []string{"Sorry, The conversation backend rejected the request"}}
	// ServiceUnavailable response
	ServiceUnavailable = Status{Code: http.StatusServiceUnavailable, Message: []string{"Sorry, The bridge is not ready yet. Please try again"}}
)

// ResponseBody struct - Generic HTTP response wrapper
type ResponseBody struct {
	Status Status      `json:"status,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Status struct
type Status struct {
	Code    int      `json:"code,omitempty"`
	Message []string `json:"message,omitempty"`
}

type (
	// ConversationResponse struct - HTTP response DTO for a conversation session, token omitted
	ConversationResponse struct {
		ConversationID     string    `json:"conversation_id"`
		ExpiresAt          time.Time `json:"expires_at"`
		StreamURL          string    `json:"stream_url,omitempty"`
		ReferenceGrammarID string    `json:"reference_grammar_id,omitempty"`
	}

	// TokenStatusResponse struct - HTTP response DTO for a maintained token
	TokenStatusResponse struct {
		Source    string     `json:"source"`
		Available bool       `json:"available"`
		ExpiresAt *time.Time `json:"expires_at,omitempty"`
		Expired   bool       `json:"expired"`
	}

	// UpstreamErrorResponse struct - HTTP response DTO for a backend rejection
	UpstreamErrorResponse struct {
		Operation      string `json:"operation"`
		UpstreamStatus int    `json:"upstream_status"`
		UpstreamBody   string `json:"upstream_body,omitempty"`
	}

	// HealthResponse struct
	HealthResponse struct {
		Database string                `json:"database"`
		Tokens   []TokenStatusResponse `json:"tokens"`
	}
)
