// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ChatRequest is the body of POST /api/chat.
// An empty SessionID starts a new session with a generated id.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ResetRequest is the body of POST /api/reset-chat.
type ResetRequest struct {
	SessionID string `json:"session_id"`
}

// SessionStatusQuery binds the query string of GET /api/session-status.
type SessionStatusQuery struct {
	SessionID string `form:"session_id"`
}
