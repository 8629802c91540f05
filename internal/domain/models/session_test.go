package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

func TestValidSessionID(t *testing.T) {
	for _, id := range []string{"abc", "550e8400-e29b-41d4-a716-446655440000", "user_1.tab:2"} {
		assert.True(t, ValidSessionID(id), id)
	}
	for _, id := range []string{"", "has space", "semi;colon", strings.Repeat("a", 129)} {
		assert.False(t, ValidSessionID(id), id)
	}
}

func TestSession_AppendTurnsEvictsOldest(t *testing.T) {
	s := NewSession("s", t0)
	for i := 0; i < 5; i++ {
		s.AppendTurns(3, NewUserTurn(string(rune('a'+i)), t0))
	}

	require.Len(t, s.History, 3)
	assert.Equal(t, "c", s.History[0].Content)
	assert.Equal(t, "e", s.History[2].Content)
}

func TestSession_AppendTurnsDropsOrphanToolResults(t *testing.T) {
	s := NewSession("s", t0)
	s.AppendTurns(0,
		NewUserTurn("hotels in Paris", t0),
		NewToolCallTurn(ToolCall{ID: "c1", Name: "search_hotels", Arguments: json.RawMessage(`{"city":"Paris"}`)}, t0),
		NewToolResultTurn("c1", "search_hotels", `{}`, t0),
		NewAssistantTurn("Here you go", t0),
	)

	s.AppendTurns(2)

	require.Len(t, s.History, 1)
	assert.Equal(t, RoleAssistant, s.History[0].Role)
}

func TestSession_RegisterViolationResetsAtThreshold(t *testing.T) {
	s := NewSession("s", t0)
	s.AppendTurns(0, NewUserTurn("hi", t0))
	s.MessageCount = 4
	s.OffTopicWarnings = 1
	epoch := s.Epoch
	require.NotEmpty(t, epoch)

	assert.False(t, s.RegisterViolation(2))
	assert.Equal(t, 1, s.SecurityViolations)
	assert.Equal(t, epoch, s.Epoch)

	assert.True(t, s.RegisterViolation(2))
	assert.Empty(t, s.History)
	assert.Zero(t, s.MessageCount)
	assert.Zero(t, s.OffTopicWarnings)
	assert.Zero(t, s.SecurityViolations)
	assert.Equal(t, "s", s.ID)
	assert.Equal(t, t0, s.CreatedAt)
	assert.NotEqual(t, epoch, s.Epoch)
}

func TestSession_IsStale(t *testing.T) {
	s := NewSession("s", t0)
	assert.False(t, s.IsStale(t0.Add(30*time.Minute), 30*time.Minute))
	assert.True(t, s.IsStale(t0.Add(31*time.Minute), 30*time.Minute))

	s.Touch(t0.Add(time.Hour))
	assert.False(t, s.IsStale(t0.Add(time.Hour+time.Minute), 30*time.Minute))
}

func TestRecentUserTurns(t *testing.T) {
	history := []Turn{
		NewUserTurn("one", t0),
		NewAssistantTurn("reply", t0),
		NewUserTurn("two", t0),
		NewUserTurn("three", t0),
	}

	got := RecentUserTurns(history, 2)

	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Content)
	assert.Equal(t, "three", got[1].Content)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short"))

	long := strings.Repeat("é", 200)
	got := Excerpt(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, maxExcerptRunes+3, len([]rune(got)))
}
