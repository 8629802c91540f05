package models

import (
	"encoding/json"
	"time"
)

// TurnRole represents the author of a conversation turn.
type TurnRole string

const (
	// RoleUser represents a message from the user.
	RoleUser TurnRole = "user"
	// RoleAssistant represents a message from the assistant.
	RoleAssistant TurnRole = "assistant"
	// RoleTool represents the result of a travel function call.
	RoleTool TurnRole = "tool"
)

// ToolCall is a function request issued by the assistant.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Turn is one entry of a session history.
type Turn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
	// ToolCall is set on assistant turns that requested a function.
	ToolCall *ToolCall `json:"toolCall,omitempty"`
	// ToolCallID and Name are set on tool turns.
	ToolCallID string    `json:"toolCallId,omitempty"`
	Name       string    `json:"name,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewUserTurn creates a user turn.
func NewUserTurn(content string, now time.Time) Turn {
	return Turn{Role: RoleUser, Content: content, CreatedAt: now.UTC()}
}

// NewAssistantTurn creates a plain assistant reply turn.
func NewAssistantTurn(content string, now time.Time) Turn {
	return Turn{Role: RoleAssistant, Content: content, CreatedAt: now.UTC()}
}

// NewToolCallTurn creates an assistant turn carrying a function request.
func NewToolCallTurn(call ToolCall, now time.Time) Turn {
	return Turn{Role: RoleAssistant, ToolCall: &call, CreatedAt: now.UTC()}
}

// NewToolResultTurn creates the tool turn answering the call with callID.
func NewToolResultTurn(callID, name, content string, now time.Time) Turn {
	return Turn{Role: RoleTool, ToolCallID: callID, Name: name, Content: content, CreatedAt: now.UTC()}
}
