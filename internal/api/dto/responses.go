package dto

import (
	"encoding/json"
	"time"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// ChatResponse is the uniform reply envelope of POST /api/chat.
// FunctionCalled and FunctionResult are serialized as null when no
// travel function ran.
type ChatResponse struct {
	Success           bool            `json:"success"`
	Message           string          `json:"message"`
	SessionID         string          `json:"session_id"`
	FunctionCalled    *string         `json:"function_called"`
	FunctionResult    json.RawMessage `json:"function_result" swaggertype:"object"`
	FunctionArgs      json.RawMessage `json:"function_args,omitempty" swaggertype:"object"`
	SessionReset      bool            `json:"session_reset"`
	WarningsRemaining *int            `json:"warnings_remaining,omitempty"`
	Warnings          int             `json:"warnings,omitempty"`
	Violations        int             `json:"violations,omitempty"`
	Blocked           bool            `json:"blocked,omitempty"`
	OffTopic          bool            `json:"off_topic,omitempty"`
	Reason            string          `json:"reason,omitempty"`
	Category          string          `json:"category,omitempty"`
	TravelExamples    []string        `json:"travel_examples,omitempty"`
	Retry             bool            `json:"retry,omitempty"`
}

// LimitReachedResponse is returned with 429 once a session used up its messages.
type LimitReachedResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Action    string `json:"action"`
	SessionID string `json:"session_id"`
}

// ResetResponse is returned by POST /api/reset-chat.
type ResetResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SessionReset bool   `json:"session_reset"`
}

// DestinationResponse describes one city with data.
type DestinationResponse struct {
	City                 string `json:"city"`
	Country              string `json:"country"`
	HotelsAvailable      int    `json:"hotels_available"`
	AttractionsAvailable int    `json:"attractions_available"`
}

// DestinationsResponse is returned by GET /api/travel-destinations.
type DestinationsResponse struct {
	Success      bool                  `json:"success"`
	Destinations []DestinationResponse `json:"destinations"`
	TotalCities  int                   `json:"total_cities"`
}

// FunctionResponse describes one callable travel function.
type FunctionResponse struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// FunctionsResponse is returned by GET /api/functions.
type FunctionsResponse struct {
	Functions []FunctionResponse `json:"functions"`
	Scope     string             `json:"scope"`
}

// SessionStatusResponse is returned by GET /api/session-status.
// Counters are omitted when the session does not exist.
type SessionStatusResponse struct {
	Success            bool       `json:"success"`
	SessionActive      bool       `json:"session_active"`
	MessageCount       *int       `json:"message_count,omitempty"`
	OffTopicWarnings   *int       `json:"off_topic_warnings,omitempty"`
	SecurityViolations *int       `json:"security_violations,omitempty"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
}
