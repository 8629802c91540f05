// Package session keeps per-session conversation state behind per-session locks.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-agent/internal/config"
	"github.com/tripwise/travel-agent/internal/core/cache"
	"github.com/tripwise/travel-agent/internal/domain/models"
	"github.com/tripwise/travel-agent/internal/metrics"
	"github.com/tripwise/travel-agent/internal/pkg/encryption"
	"github.com/tripwise/travel-agent/internal/pkg/logging"
)

const (
	// DefaultHistoryCap is the number of turns kept per session.
	DefaultHistoryCap = 20

	// DefaultInactivityTimeout is how long an idle session survives.
	DefaultInactivityTimeout = 30 * time.Minute

	keyPrefix = "session:"
)

var (
	// ErrInvalidSessionID is returned for identifiers that cannot name a session.
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrSessionRestarted is returned by RecordTurn when the session was reset
	// after the caller read its epoch.
	ErrSessionRestarted = errors.New("session restarted")
)

// Action is how an inbound message counts against its session.
type Action int

const (
	// Accept appends the message to the history.
	Accept Action = iota
	// Warn counts an off-topic message.
	Warn
	// Violate counts an unsafe message and resets the session at the threshold.
	Violate
)

// Admission reports what Admit did with one inbound message.
type Admission struct {
	Limited    bool
	Reset      bool
	Warnings   int
	Violations int
	// Epoch identifies the conversation the message was admitted into.
	Epoch string
	// History is a copy of the history, ending with the accepted message.
	History []models.Turn
}

// Store owns every session. All mutations of one session are serialized;
// operations on different sessions never wait on each other.
type Store interface {
	// Peek returns the session or nil if it does not exist.
	Peek(ctx context.Context, id string) (*models.Session, error)

	// Admit counts one inbound message, creating the session if absent. Past
	// maxMessages it only reports Limited. Otherwise judge sees the current
	// history and its Action decides whether turn is appended or a warning or
	// violation is recorded.
	Admit(ctx context.Context, id string, turn models.Turn, maxMessages int, judge func(history []models.Turn) Action) (Admission, error)

	// RecordTurn appends turns to the conversation identified by epoch,
	// evicting the oldest beyond the history cap. It returns
	// ErrSessionRestarted when the session has been reset since.
	RecordTurn(ctx context.Context, id, epoch string, turns ...models.Turn) error

	// Reset deletes the session. Resetting an unknown session succeeds.
	Reset(ctx context.Context, id string) error

	// ExpireStale removes sessions idle longer than the inactivity timeout and
	// returns how many were removed.
	ExpireStale(ctx context.Context, now time.Time) (int, error)
}

// Config holds the configuration for the session store.
type Config struct {
	Cache              cache.Client
	Encryptor          encryption.Encryptor
	HistoryCap         int
	ViolationThreshold int
	InactivityTimeout  time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

type store struct {
	cache      cache.Client
	encryptor  encryption.Encryptor
	locks      *lockArena
	historyCap int
	threshold  int
	timeout    time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// NewStore creates a session store over a cache backend.
func NewStore(cfg *Config) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache client is required")
	}

	s := &store{
		cache:      cfg.Cache,
		encryptor:  cfg.Encryptor,
		locks:      newLockArena(),
		historyCap: cfg.HistoryCap,
		threshold:  cfg.ViolationThreshold,
		timeout:    cfg.InactivityTimeout,
		now:        cfg.Now,
		logger:     logging.WithComponent("session"),
	}
	if s.encryptor == nil {
		s.encryptor = encryption.NewNoOpEncryptor()
	}
	if s.historyCap <= 0 {
		s.historyCap = DefaultHistoryCap
	}
	if s.threshold <= 0 {
		s.threshold = config.DefaultViolationThreshold
	}
	if s.timeout <= 0 {
		s.timeout = DefaultInactivityTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func buildKey(id string) string {
	return keyPrefix + id
}

func (s *store) Peek(ctx context.Context, id string) (*models.Session, error) {
	if !models.ValidSessionID(id) {
		return nil, ErrInvalidSessionID
	}
	release, err := s.locks.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.load(ctx, id)
}

// update loads or creates the session, applies fn and persists the result
// while holding the session's lock. Nothing is written when fn fails.
func (s *store) update(ctx context.Context, id string, fn func(*models.Session) error) (*models.Session, error) {
	if !models.ValidSessionID(id) {
		return nil, ErrInvalidSessionID
	}
	release, err := s.locks.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = models.NewSession(id, s.now())
	}

	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *store) Admit(ctx context.Context, id string, turn models.Turn, maxMessages int, judge func(history []models.Turn) Action) (Admission, error) {
	var adm Admission
	_, err := s.update(ctx, id, func(sess *models.Session) error {
		sess.MessageCount++
		sess.Touch(s.now())
		if maxMessages > 0 && sess.MessageCount > maxMessages {
			adm.Limited = true
			return nil
		}

		switch judge(sess.History) {
		case Violate:
			adm.Violations = sess.SecurityViolations + 1
			adm.Reset = sess.RegisterViolation(s.threshold)
		case Warn:
			adm.Warnings = sess.RegisterWarning()
		default:
			sess.AppendTurns(s.historyCap, turn)
			adm.History = slices.Clone(sess.History)
		}
		adm.Epoch = sess.Epoch
		return nil
	})
	if err != nil {
		return Admission{}, err
	}

	if adm.Reset {
		metrics.SessionResetsTotal.WithLabelValues("security").Inc()
		s.logger.Warn().Str("session_id", id).Int("violations", adm.Violations).Msg("session reset after security violations")
	}
	return adm, nil
}

func (s *store) RecordTurn(ctx context.Context, id, epoch string, turns ...models.Turn) error {
	_, err := s.update(ctx, id, func(sess *models.Session) error {
		if sess.Epoch != epoch {
			return ErrSessionRestarted
		}
		sess.AppendTurns(s.historyCap, turns...)
		sess.Touch(s.now())
		return nil
	})
	return err
}

func (s *store) Reset(ctx context.Context, id string) error {
	if !models.ValidSessionID(id) {
		return ErrInvalidSessionID
	}
	release, err := s.locks.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	deleted, err := s.cache.Delete(ctx, buildKey(id))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if deleted {
		metrics.SessionResetsTotal.WithLabelValues("manual").Inc()
	}
	return nil
}

func (s *store) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	keys, err := s.cache.Keys(ctx, keyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	removed := 0
	for _, key := range keys {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		ok, err := s.expireOne(ctx, strings.TrimPrefix(key, keyPrefix), now)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to expire session")
			continue
		}
		if ok {
			removed++
		}
	}

	metrics.ActiveSessions.Set(float64(len(keys) - removed))
	if removed > 0 {
		metrics.SessionResetsTotal.WithLabelValues("expired").Add(float64(removed))
	}
	return removed, nil
}

func (s *store) expireOne(ctx context.Context, id string, now time.Time) (bool, error) {
	release, err := s.locks.acquire(ctx, id)
	if err != nil {
		return false, err
	}
	defer release()

	sess, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	if sess != nil && !sess.IsStale(now, s.timeout) {
		return false, nil
	}
	// Unreadable entries are dropped along with stale ones.
	return s.cache.Delete(ctx, buildKey(id))
}

// load reads a session. Entries that cannot be opened or decoded (for
// example after a key rotation) are deleted and reported as absent.
func (s *store) load(ctx context.Context, id string) (*models.Session, error) {
	key := buildKey(id)
	sealed, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get session from cache: %w", err)
	}
	if sealed == nil {
		return nil, nil
	}

	data, err := s.encryptor.Open(sealed, []byte(key))
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", id).Msg("discarding unreadable session")
		_, _ = s.cache.Delete(ctx, key)
		return nil, nil
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Warn().Err(err).Str("session_id", id).Msg("discarding corrupted session")
		_, _ = s.cache.Delete(ctx, key)
		return nil, nil
	}
	return &sess, nil
}

func (s *store) save(ctx context.Context, sess *models.Session) error {
	key := buildKey(sess.ID)
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	sealed, err := s.encryptor.Seal(data, []byte(key))
	if err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}

	// The backend TTL is a backstop for sessions the sweeper never reaches.
	if err := s.cache.Set(ctx, key, sealed, 2*s.timeout); err != nil {
		return fmt.Errorf("failed to store session in cache: %w", err)
	}
	return nil
}
