package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tripwise/travel-agent/internal/api/dto"
	"github.com/tripwise/travel-agent/internal/api/middleware"
	domainerrors "github.com/tripwise/travel-agent/internal/domain/errors"
	"github.com/tripwise/travel-agent/internal/domain/models"
	"github.com/tripwise/travel-agent/internal/services/dialogue"
)

// maxBodyBytes caps request bodies. Oversized messages that fit are still
// handed to the guard, which rejects them as off-topic.
const maxBodyBytes = 64 << 10

// ChatService is the dialogue surface the chat endpoints need.
type ChatService interface {
	Handle(ctx context.Context, req dialogue.Request) (*dialogue.Envelope, error)
	Reset(ctx context.Context, sessionID string) error
	Status(ctx context.Context, sessionID string) (*models.Session, error)
}

// ChatHandler serves the chat, reset and session status endpoints.
type ChatHandler struct {
	chat ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func bindJSON(c *gin.Context, v any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domainerrors.NewValidationError("request body too large", "")
		}
		return domainerrors.NewValidationError("invalid request body", err.Error())
	}
	return nil
}

// Chat handles one user message.
// @Summary Send a chat message
// @Description Runs the message through the content guard and, when allowed, the travel assistant
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Message and session id"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.LimitReachedResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := bindJSON(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	env, err := h.chat.Handle(c.Request.Context(), dialogue.Request{
		SessionID: req.SessionID,
		Message:   req.Message,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	if env.Outcome == dialogue.OutcomeLimitReached {
		c.JSON(http.StatusTooManyRequests, dto.LimitReachedResponse{
			Success:   false,
			Error:     env.Reply,
			Action:    "reset_required",
			SessionID: env.SessionID,
		})
		return
	}

	c.JSON(http.StatusOK, chatResponse(env))
}

func chatResponse(env *dialogue.Envelope) dto.ChatResponse {
	resp := dto.ChatResponse{
		Success:           true,
		Message:           env.Reply,
		SessionID:         env.SessionID,
		FunctionResult:    env.FunctionResult,
		FunctionArgs:      env.FunctionArgs,
		SessionReset:      env.SessionReset,
		WarningsRemaining: env.WarningsRemaining,
		Warnings:          env.Warnings,
		Violations:        env.Violations,
		Category:          env.Category,
	}
	if env.FunctionCalled != "" {
		name := env.FunctionCalled
		resp.FunctionCalled = &name
	}

	switch env.Outcome {
	case dialogue.OutcomeBlocked:
		resp.Blocked = true
		resp.Reason = "security"
	case dialogue.OutcomeReset:
		resp.Reason = "security"
	case dialogue.OutcomeOffTopic:
		resp.OffTopic = true
		resp.TravelExamples = dialogue.TravelExamples
	case dialogue.OutcomeUnavailable:
		resp.Retry = true
	}
	return resp
}

// ResetChat clears a session.
// @Summary Reset a chat session
// @Description Clears history and counters. Resetting an unknown session succeeds.
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body dto.ResetRequest true "Session id"
// @Success 200 {object} dto.ResetResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/reset-chat [post]
func (h *ChatHandler) ResetChat(c *gin.Context) {
	var req dto.ResetRequest
	if err := bindJSON(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}
	if req.SessionID == "" {
		middleware.HandleError(c, domainerrors.NewValidationError("session_id is required", ""))
		return
	}

	if err := h.chat.Reset(c.Request.Context(), req.SessionID); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ResetResponse{
		Success:      true,
		Message:      dialogue.ReplyChatReset,
		SessionReset: true,
	})
}

// SessionStatus reports the counters of a session.
// @Summary Session status
// @Tags Chat
// @Produce json
// @Param session_id query string true "Session id"
// @Success 200 {object} dto.SessionStatusResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/session-status [get]
func (h *ChatHandler) SessionStatus(c *gin.Context) {
	var q dto.SessionStatusQuery
	if err := c.ShouldBindQuery(&q); err != nil || q.SessionID == "" {
		middleware.HandleError(c, domainerrors.NewValidationError("session_id is required", ""))
		return
	}

	sess, err := h.chat.Status(c.Request.Context(), q.SessionID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if sess == nil {
		c.JSON(http.StatusOK, dto.SessionStatusResponse{Success: true})
		return
	}

	c.JSON(http.StatusOK, dto.SessionStatusResponse{
		Success:            true,
		SessionActive:      true,
		MessageCount:       &sess.MessageCount,
		OffTopicWarnings:   &sess.OffTopicWarnings,
		SecurityViolations: &sess.SecurityViolations,
		CreatedAt:          &sess.CreatedAt,
	})
}
