// Package guard classifies inbound chat messages as travel related, off-topic or unsafe.
package guard

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tripwise/travel-agent/internal/domain/models"
)

const (
	// DefaultThreshold is the minimum relevance score of an allowed message.
	DefaultThreshold = 0.3

	// DefaultContextTurns is how many previous user turns can carry a follow-up.
	DefaultContextTurns = 3

	// MaxMessageBytes bounds the length of a message the guard will score.
	MaxMessageBytes = 4000

	phraseBoost = 0.2
)

// Kind is the outcome of an evaluation.
type Kind string

const (
	Allowed  Kind = "allowed"
	OffTopic Kind = "off_topic"
	Unsafe   Kind = "unsafe"
)

// Severity grades unsafe content.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityModerate Severity = "moderate"
)

// Reasons attached to verdicts.
const (
	ReasonTravelQuery       = "valid_travel_query"
	ReasonContextFollowUp   = "context_follow_up"
	ReasonNonTravelTopic    = "non_travel_topic"
	ReasonSecurityViolation = "security_violation"
	ReasonInvalidInput      = "invalid_input"

	CategoryOther = "other_non_travel"
)

// Verdict is the classification of one message.
type Verdict struct {
	Kind     Kind     `json:"kind"`
	Score    float64  `json:"score"`
	Reason   string   `json:"reason"`
	Category string   `json:"category,omitempty"`
	Severity Severity `json:"severity,omitempty"`
	Matches  []string `json:"matches,omitempty"`
}

// Config configures a Guard.
type Config struct {
	Threshold    float64
	ContextTurns int
	Vocabulary   *Vocabulary
}

type category struct {
	name     string
	severity Severity
	pattern  *regexp.Regexp
}

// Guard evaluates messages. It holds only compiled, read-only patterns and is
// safe for concurrent use.
type Guard struct {
	threshold    float64
	contextTurns int
	travel       *regexp.Regexp
	threats      []category
	nonTravel    []category
	phrases      []*regexp.Regexp
}

// New compiles the vocabulary into a Guard.
func New(cfg Config) (*Guard, error) {
	vocab := cfg.Vocabulary
	if vocab == nil {
		vocab = DefaultVocabulary()
	}

	g := &Guard{
		threshold:    cfg.Threshold,
		contextTurns: cfg.ContextTurns,
	}
	if g.threshold <= 0 {
		g.threshold = DefaultThreshold
	}
	if g.contextTurns <= 0 {
		g.contextTurns = DefaultContextTurns
	}

	var travelTerms []string
	for _, c := range vocab.Travel {
		travelTerms = append(travelTerms, c.Terms...)
	}
	if len(travelTerms) == 0 {
		return nil, fmt.Errorf("vocabulary has no travel terms")
	}
	// Travel terms also match their plural form.
	g.travel = termPattern(travelTerms, true)

	for _, c := range vocab.Threats {
		if len(c.Terms) == 0 {
			continue
		}
		severity := c.Severity
		if severity == "" {
			severity = SeverityModerate
		}
		g.threats = append(g.threats, category{name: c.Name, severity: severity, pattern: termPattern(c.Terms, false)})
	}
	for _, c := range vocab.NonTravel {
		if len(c.Terms) == 0 {
			continue
		}
		g.nonTravel = append(g.nonTravel, category{name: c.Name, pattern: termPattern(c.Terms, false)})
	}
	for _, p := range vocab.Phrases {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid phrase pattern %q: %w", p, err)
		}
		g.phrases = append(g.phrases, re)
	}
	return g, nil
}

// MustNew is New for the built-in vocabulary; it panics on error.
func MustNew(cfg Config) *Guard {
	g, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return g
}

func termPattern(terms []string, plural bool) *regexp.Regexp {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(t))))
	}
	suffix := ""
	if plural {
		suffix = "s?"
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)` + suffix + `\b`)
}

// Threshold returns the relevance threshold.
func (g *Guard) Threshold() float64 {
	return g.threshold
}

// Evaluate classifies message given the session history that precedes it.
// Unsafe content wins over any relevance score. Evaluate never fails.
func (g *Guard) Evaluate(history []models.Turn, message string) Verdict {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" || !utf8.ValidString(message) || len(message) > MaxMessageBytes {
		return Verdict{Kind: OffTopic, Reason: ReasonInvalidInput, Category: CategoryOther}
	}

	for _, c := range g.threats {
		if matches := c.pattern.FindAllString(text, -1); len(matches) > 0 {
			return Verdict{
				Kind:     Unsafe,
				Reason:   ReasonSecurityViolation,
				Category: c.name,
				Severity: c.severity,
				Matches:  matches,
			}
		}
	}

	score := g.Score(text)
	if score >= g.threshold {
		return Verdict{Kind: Allowed, Score: score, Reason: ReasonTravelQuery}
	}

	topic := g.nonTravelCategory(text)
	if topic == CategoryOther {
		if ctx := g.contextScore(history); ctx >= g.threshold {
			return Verdict{Kind: Allowed, Score: ctx, Reason: ReasonContextFollowUp}
		}
	}
	return Verdict{Kind: OffTopic, Score: score, Reason: ReasonNonTravelTopic, Category: topic}
}

// Score computes the travel relevance of text in [0, 1].
func (g *Guard) Score(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	matches := len(g.travel.FindAllStringIndex(text, -1))
	score := float64(matches) / max(float64(len(words))*0.3, 1)
	score = min(score, 1)

	for _, p := range g.phrases {
		if p.MatchString(text) {
			score += phraseBoost
		}
	}
	return min(score, 1)
}

func (g *Guard) nonTravelCategory(text string) string {
	for _, c := range g.nonTravel {
		if c.pattern.MatchString(text) {
			return c.name
		}
	}
	return CategoryOther
}

// contextScore is the best relevance among the most recent user turns.
func (g *Guard) contextScore(history []models.Turn) float64 {
	best := 0.0
	for _, t := range models.RecentUserTurns(history, g.contextTurns) {
		best = max(best, g.Score(strings.ToLower(t.Content)))
	}
	return best
}
