// Package models contains domain models for the travel planning agent.
package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,128}$`)

// Session holds the conversation state for one chat session.
type Session struct {
	ID                 string    `json:"id"`
	Epoch              string    `json:"epoch"`
	History            []Turn    `json:"history"`
	MessageCount       int       `json:"messageCount"`
	OffTopicWarnings   int       `json:"offTopicWarnings"`
	SecurityViolations int       `json:"securityViolations"`
	CreatedAt          time.Time `json:"createdAt"`
	LastActiveAt       time.Time `json:"lastActiveAt"`
}

// NewSession creates an empty session created at now.
func NewSession(id string, now time.Time) *Session {
	now = now.UTC()
	return &Session{
		ID:           id,
		Epoch:        uuid.NewString(),
		History:      []Turn{},
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// ValidSessionID reports whether id is usable as a session identifier.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// Touch updates the last activity timestamp.
func (s *Session) Touch(now time.Time) {
	s.LastActiveAt = now.UTC()
}

// IsStale reports whether the session has been idle longer than timeout.
func (s *Session) IsStale(now time.Time, timeout time.Duration) bool {
	return now.UTC().Sub(s.LastActiveAt) > timeout
}

// AppendTurns adds turns to the history, evicting the oldest turns once the
// history holds more than limit entries. A limit <= 0 disables eviction.
func (s *Session) AppendTurns(limit int, turns ...Turn) {
	s.History = append(s.History, turns...)
	if limit > 0 && len(s.History) > limit {
		s.History = append([]Turn(nil), s.History[len(s.History)-limit:]...)
	}
	s.History = trimOrphanToolTurns(s.History)
}

// RegisterWarning increments the off-topic warning counter and returns it.
func (s *Session) RegisterWarning() int {
	s.OffTopicWarnings++
	return s.OffTopicWarnings
}

// RegisterViolation increments the security violation counter. When the
// counter reaches threshold the session is cleared and true is returned.
func (s *Session) RegisterViolation(threshold int) bool {
	s.SecurityViolations++
	if threshold > 0 && s.SecurityViolations >= threshold {
		s.Clear()
		return true
	}
	return false
}

// Clear drops the history and zeroes every counter. The identifier and
// creation time are kept; the epoch changes so writes prepared against the
// previous conversation can be told apart.
func (s *Session) Clear() {
	s.Epoch = uuid.NewString()
	s.History = []Turn{}
	s.MessageCount = 0
	s.OffTopicWarnings = 0
	s.SecurityViolations = 0
}

// RecentUserTurns returns up to n of the most recent user turns in history,
// oldest first.
func RecentUserTurns(history []Turn, n int) []Turn {
	var out []Turn
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		if history[i].Role == RoleUser {
			out = append(out, history[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// trimOrphanToolTurns drops tool results at the head of the history whose
// originating assistant call was evicted.
func trimOrphanToolTurns(history []Turn) []Turn {
	i := 0
	for i < len(history) && history[i].Role == RoleTool {
		i++
	}
	if i == 0 {
		return history
	}
	return history[i:]
}
