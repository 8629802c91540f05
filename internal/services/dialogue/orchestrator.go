// Package dialogue runs the per message state machine: guard, session
// counters, intent classification and travel lookups.
package dialogue

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domainerrors "github.com/tripwise/travel-agent/internal/domain/errors"
	"github.com/tripwise/travel-agent/internal/domain/models"
	"github.com/tripwise/travel-agent/internal/metrics"
	"github.com/tripwise/travel-agent/internal/pkg/logging"
	"github.com/tripwise/travel-agent/internal/services/audit"
	"github.com/tripwise/travel-agent/internal/services/guard"
	"github.com/tripwise/travel-agent/internal/services/intent"
	"github.com/tripwise/travel-agent/internal/services/lookup"
	"github.com/tripwise/travel-agent/internal/services/session"
)

// Defaults for an Orchestrator.
const (
	DefaultMaxMessages       = 50
	DefaultOffTopicWarnLimit = 3
	DefaultClassifyTimeout   = 20 * time.Second
)

// Evaluator classifies a message in the context of its session history.
type Evaluator interface {
	Evaluate(history []models.Turn, message string) guard.Verdict
}

// Config wires an Orchestrator.
type Config struct {
	Store      session.Store
	Guard      Evaluator
	Classifier intent.Classifier
	Catalog    *intent.Catalog
	Lookup     *lookup.Service
	Recorder   audit.Recorder

	MaxMessages       int
	OffTopicWarnLimit int
	ClassifyTimeout   time.Duration
	Now               func() time.Time
}

// Orchestrator handles chat messages. It is safe for concurrent use; all
// session state lives in the store.
type Orchestrator struct {
	store       session.Store
	guard       Evaluator
	classifier  intent.Classifier
	catalog     *intent.Catalog
	lookup      *lookup.Service
	recorder    audit.Recorder
	maxMessages int
	warnLimit   int
	timeout     time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

// New creates an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	switch {
	case cfg.Store == nil:
		return nil, fmt.Errorf("session store is required")
	case cfg.Guard == nil:
		return nil, fmt.Errorf("guard is required")
	case cfg.Classifier == nil:
		return nil, fmt.Errorf("classifier is required")
	case cfg.Lookup == nil:
		return nil, fmt.Errorf("lookup service is required")
	}

	o := &Orchestrator{
		store:       cfg.Store,
		guard:       cfg.Guard,
		classifier:  cfg.Classifier,
		catalog:     cfg.Catalog,
		lookup:      cfg.Lookup,
		recorder:    cfg.Recorder,
		maxMessages: cfg.MaxMessages,
		warnLimit:   cfg.OffTopicWarnLimit,
		timeout:     cfg.ClassifyTimeout,
		now:         cfg.Now,
		logger:      logging.WithComponent("dialogue"),
	}
	if o.catalog == nil {
		o.catalog = intent.DefaultCatalog()
	}
	if o.recorder == nil {
		o.recorder = audit.Nop{}
	}
	if o.maxMessages <= 0 {
		o.maxMessages = DefaultMaxMessages
	}
	if o.warnLimit <= 0 {
		o.warnLimit = DefaultOffTopicWarnLimit
	}
	if o.timeout <= 0 {
		o.timeout = DefaultClassifyTimeout
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o, nil
}

// Handle processes one message. Guard rejections, classifier failures and
// lookup misses all produce an Envelope; errors are returned only for invalid
// requests and session storage failures.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (*Envelope, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, domainerrors.NewValidationError("message is required", "")
	}
	if !models.ValidSessionID(req.SessionID) {
		return nil, domainerrors.NewValidationError("invalid session_id", req.SessionID)
	}

	now := o.now()
	var v guard.Verdict
	adm, err := o.store.Admit(ctx, req.SessionID, models.NewUserTurn(msg, now), o.maxMessages,
		func(history []models.Turn) session.Action {
			v = o.guard.Evaluate(history, msg)
			switch v.Kind {
			case guard.Unsafe:
				return session.Violate
			case guard.OffTopic:
				return session.Warn
			}
			return session.Accept
		})
	if err != nil {
		return nil, domainerrors.NewInternalError("failed to update session", err)
	}

	env := &Envelope{SessionID: req.SessionID}
	log := o.logger.With().Str("session_id", req.SessionID).Logger()

	if adm.Limited {
		log.Info().Int("max_messages", o.maxMessages).Msg("session message limit reached")
		metrics.RateLimitedTotal.WithLabelValues("session_messages").Inc()
		env.Outcome = OutcomeLimitReached
		env.Reply = ReplyLimitReached
		return env, nil
	}

	metrics.GuardVerdictsTotal.WithLabelValues(string(v.Kind), cmp.Or(v.Category, "none")).Inc()

	switch v.Kind {
	case guard.Unsafe:
		log.Warn().
			Str("category", v.Category).
			Str("severity", string(v.Severity)).
			Int("violations", adm.Violations).
			Bool("reset", adm.Reset).
			Msg("unsafe message blocked")
		o.audit(req.SessionID, msg, v, adm.Reset, now)

		env.Category = v.Category
		env.Violations = adm.Violations
		if adm.Reset {
			env.Outcome = OutcomeReset
			env.Reply = ReplySecurityReset
			env.SessionReset = true
			return env, nil
		}
		env.Outcome = OutcomeBlocked
		env.Reply = ReplySafety
		return env, nil

	case guard.OffTopic:
		log.Info().
			Str("category", v.Category).
			Str("reason", v.Reason).
			Int("warnings", adm.Warnings).
			Msg("off-topic message redirected")
		o.audit(req.SessionID, msg, v, false, now)

		remaining := max(0, o.warnLimit-adm.Warnings)
		env.Outcome = OutcomeOffTopic
		env.Reply = offTopicReply(adm.Warnings, msg)
		env.Category = v.Category
		env.Warnings = adm.Warnings
		env.WarningsRemaining = &remaining
		return env, nil
	}

	return o.respond(ctx, env, adm.Epoch, adm.History), nil
}

// respond runs the classifier for an allowed message and records the answer
// into the conversation identified by epoch.
func (o *Orchestrator) respond(ctx context.Context, env *Envelope, epoch string, history []models.Turn) *Envelope {
	log := o.logger.With().Str("session_id", env.SessionID).Logger()

	decision, err := o.classify(ctx, history)
	if err != nil {
		var argErr *intent.ArgumentsError
		if errors.As(err, &argErr) || errors.Is(err, intent.ErrInvalidFunctionArguments) {
			fn := ""
			if argErr != nil {
				fn = argErr.Function
			}
			return o.clarify(ctx, env, epoch, fn, err)
		}
		log.Warn().Err(err).Msg("intent classifier unavailable, sending apology")
		env.Outcome = OutcomeUnavailable
		env.Reply = ReplyUnavailable
		return env
	}

	switch d := decision.(type) {
	case intent.FunctionCall:
		return o.runFunction(ctx, env, epoch, history, d)
	case intent.PlainReply:
		o.recordTurns(ctx, env.SessionID, epoch, models.NewAssistantTurn(d.Text, o.now()))
		env.Outcome = OutcomeReply
		env.Reply = d.Text
		return env
	}

	log.Warn().Type("decision", decision).Msg("unexpected classifier decision")
	env.Outcome = OutcomeUnavailable
	env.Reply = ReplyUnavailable
	return env
}

// runFunction executes a function request, then asks the classifier to phrase
// the result. A failed second pass falls back to a local summary.
func (o *Orchestrator) runFunction(ctx context.Context, env *Envelope, epoch string, history []models.Turn, call intent.FunctionCall) *Envelope {
	log := o.logger.With().Str("session_id", env.SessionID).Str("function", call.Name).Logger()

	if err := o.catalog.Validate(call.Name, call.Arguments); err != nil {
		return o.clarify(ctx, env, epoch, call.Name, err)
	}
	result, outcome, err := execute(o.lookup, call)
	if err != nil {
		return o.clarify(ctx, env, epoch, call.Name, err)
	}
	metrics.FunctionCallsTotal.WithLabelValues(call.Name, outcome).Inc()

	payload, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode function result")
		env.Outcome = OutcomeUnavailable
		env.Reply = ReplyUnavailable
		return env
	}
	log.Info().RawJSON("args", argsJSON(call.Arguments)).Str("outcome", outcome).Msg("travel function called")

	if call.ID == "" {
		call.ID = "call_" + uuid.NewString()
	}
	now := o.now()
	callTurn := models.NewToolCallTurn(models.ToolCall{ID: call.ID, Name: call.Name, Arguments: call.Arguments}, now)
	resultTurn := models.NewToolResultTurn(call.ID, call.Name, string(payload), now)

	reply := ""
	decision, err := o.classify(ctx, append(slices.Clone(history), callTurn, resultTurn))
	switch d := decision.(type) {
	case intent.PlainReply:
		reply = strings.TrimSpace(d.Text)
	default:
		if err != nil {
			log.Warn().Err(err).Msg("could not phrase function result, using summary")
		}
	}
	if reply == "" {
		reply = summarize(result)
	}

	o.recordTurns(ctx, env.SessionID, epoch, callTurn, resultTurn, models.NewAssistantTurn(reply, o.now()))

	env.Outcome = OutcomeFunction
	env.Reply = reply
	env.FunctionCalled = call.Name
	env.FunctionArgs = argsJSON(call.Arguments)
	env.FunctionResult = payload
	return env
}

// clarify answers a request the classifier could not turn into valid arguments.
func (o *Orchestrator) clarify(ctx context.Context, env *Envelope, epoch, function string, cause error) *Envelope {
	o.logger.Info().
		Err(cause).
		Str("session_id", env.SessionID).
		Str("function", function).
		Msg("invalid function arguments, asking for clarification")
	if function != "" {
		metrics.FunctionCallsTotal.WithLabelValues(function, outcomeRejected).Inc()
	}

	reply := clarifyingQuestion(function)
	o.recordTurns(ctx, env.SessionID, epoch, models.NewAssistantTurn(reply, o.now()))
	env.Outcome = OutcomeClarify
	env.Reply = reply
	return env
}

func (o *Orchestrator) classify(ctx context.Context, history []models.Turn) (intent.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	return o.classifier.Classify(ctx, history)
}

// recordTurns appends the assistant side of an exchange. The reply has already
// been decided, so the write outlives a cancelled request and its failure is
// only logged. A session reset since the message was admitted drops the turns.
func (o *Orchestrator) recordTurns(ctx context.Context, id, epoch string, turns ...models.Turn) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	err := o.store.RecordTurn(ctx, id, epoch, turns...)
	switch {
	case errors.Is(err, session.ErrSessionRestarted):
		o.logger.Debug().Str("session_id", id).Msg("session reset mid-flight, reply not recorded")
	case err != nil:
		o.logger.Warn().Err(err).Str("session_id", id).Msg("failed to record assistant turns")
	}
}

func (o *Orchestrator) audit(sessionID, msg string, v guard.Verdict, reset bool, now time.Time) {
	o.recorder.Record(models.GuardEvent{
		SessionID: sessionID,
		Verdict:   string(v.Kind),
		Category:  v.Category,
		Severity:  string(v.Severity),
		Reason:    v.Reason,
		Score:     v.Score,
		Excerpt:   models.Excerpt(msg),
		Reset:     reset,
		CreatedAt: now.UTC(),
	})
}

// Reset clears a session. Resetting an unknown session succeeds.
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) error {
	if err := o.store.Reset(ctx, sessionID); err != nil {
		if errors.Is(err, session.ErrInvalidSessionID) {
			return domainerrors.NewValidationError("invalid session_id", sessionID)
		}
		return domainerrors.NewInternalError("failed to reset session", err)
	}
	o.logger.Info().Str("session_id", sessionID).Msg("session reset on request")
	return nil
}

// Status returns the session, or nil when it does not exist.
func (o *Orchestrator) Status(ctx context.Context, sessionID string) (*models.Session, error) {
	sess, err := o.store.Peek(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrInvalidSessionID) {
			return nil, domainerrors.NewValidationError("invalid session_id", sessionID)
		}
		return nil, domainerrors.NewInternalError("failed to load session", err)
	}
	return sess, nil
}

func argsJSON(raw json.RawMessage) json.RawMessage {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return json.RawMessage("{}")
	}
	return raw
}
