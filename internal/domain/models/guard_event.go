package models

import "time"

// GuardEvent records a message the content guard did not allow.
type GuardEvent struct {
	ID        string    `json:"id" bson:"_id"`
	SessionID string    `json:"sessionId" bson:"sessionId"`
	Verdict   string    `json:"verdict" bson:"verdict"`
	Category  string    `json:"category,omitempty" bson:"category,omitempty"`
	Severity  string    `json:"severity,omitempty" bson:"severity,omitempty"`
	Reason    string    `json:"reason" bson:"reason"`
	Score     float64   `json:"score" bson:"score"`
	Excerpt   string    `json:"excerpt" bson:"excerpt"`
	Reset     bool      `json:"reset" bson:"reset"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

const maxExcerptRunes = 120

// Excerpt truncates a message for audit storage.
func Excerpt(message string) string {
	r := []rune(message)
	if len(r) <= maxExcerptRunes {
		return message
	}
	return string(r[:maxExcerptRunes]) + "..."
}
