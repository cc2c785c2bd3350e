package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"fivehundred/internal/bot"
	"fivehundred/internal/domain"
	"fivehundred/internal/rules"
	"fivehundred/internal/view"
)

// Options configures a Registry. Factory is required.
type Options struct {
	Factory  rules.Factory
	BotLevel bot.BotLevel
	Tuning   bot.Tuning
	BotNames []string
	// BotDelay paces bot moves. Zero plays them inline within the triggering request.
	BotDelay  time.Duration
	Scheduler Scheduler
	Codes     CodeSource
	// Seed seeds the per-session bot rngs. Zero uses the clock.
	Seed   int64
	Logger *zerolog.Logger
}

// Registry owns every live session, keyed by code.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	deps  *sessionDeps
	codes CodeSource
	seed  atomic.Int64
	log   zerolog.Logger
}

// NewRegistry validates opts and fills in defaults.
func NewRegistry(opts Options) (*Registry, error) {
	if opts.Factory == nil {
		return nil, errors.New("registry needs a rules factory")
	}
	if _, err := bot.NewBrain(opts.BotLevel, rand.New(rand.NewSource(1)), opts.Tuning); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if opts.Tuning.PassWeight == 0 {
		opts.Tuning = bot.DefaultTuning
	}
	if opts.Scheduler == nil {
		opts.Scheduler = wallClock{}
	}
	if opts.Codes == nil {
		opts.Codes = RandomCodes(DefaultCodeLength)
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	r := &Registry{
		sessions: make(map[string]*Session),
		deps: &sessionDeps{
			factory:   opts.Factory,
			level:     opts.BotLevel,
			tuning:    opts.Tuning,
			roster:    bot.NewRoster(opts.BotNames),
			delay:     opts.BotDelay,
			scheduler: opts.Scheduler,
		},
		codes: opts.Codes,
		log:   log,
	}
	r.seed.Store(opts.Seed)
	return r, nil
}

// lookup returns the session registered under code, closed or not.
func (r *Registry) lookup(code string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[code]
}

func (r *Registry) live(code string) (*Session, error) {
	s := r.lookup(code)
	if s == nil {
		return nil, ErrNoSuchSession
	}
	return s, nil
}

// SessionExists reports whether code names a live session.
func (r *Registry) SessionExists(code string) bool {
	s := r.lookup(code)
	return s != nil && !s.Closed()
}

// IsFull reports whether all four positions of code are human-held. Unknown codes are not full.
func (r *Registry) IsFull(code string) bool {
	s := r.lookup(code)
	return s != nil && s.IsFull()
}

// IsUsernameTaken reports whether a human in code already uses identity.
func (r *Registry) IsUsernameTaken(code, identity string) bool {
	s := r.lookup(code)
	return s != nil && s.IsUsernameTaken(identity)
}

// CreateSession opens a session with identity as host at North and sends it the first snapshot.
func (r *Registry) CreateSession(ctx context.Context, identity string, conn domain.Conn) (string, error) {
	if err := ValidateUsername(identity); err != nil {
		return "", err
	}
	r.mu.Lock()
	code, err := r.freeCodeLocked()
	if err != nil {
		r.mu.Unlock()
		return "", err
	}
	rng := rand.New(rand.NewSource(r.seed.Add(1)))
	s := newSession(code, identity, conn, r.deps, rng, r.log)
	r.sessions[code] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.log.Info().Str("code", code).Str("user", identity).Int("sessions", n).Msg("session created")
	s.announce(ctx)
	return code, nil
}

func (r *Registry) freeCodeLocked() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := r.codes()
		if err != nil {
			return "", fmt.Errorf("draw session code: %w", err)
		}
		if _, taken := r.sessions[code]; !taken && code != "" {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// JoinSession seats identity in code.
func (r *Registry) JoinSession(ctx context.Context, code, identity string, conn domain.Conn) error {
	if err := ValidateUsername(identity); err != nil {
		return err
	}
	s, err := r.live(code)
	if err != nil {
		return err
	}
	return s.AddSeat(ctx, identity, conn)
}

// HandleUpdate routes a client envelope to its session.
func (r *Registry) HandleUpdate(ctx context.Context, code, identity string, u view.Update) error {
	s, err := r.live(code)
	if err != nil {
		return err
	}
	return s.HandleUpdate(ctx, identity, u)
}

// OnDisconnect removes identity from code, dropping the session when the last human leaves.
func (r *Registry) OnDisconnect(ctx context.Context, code, identity string) error {
	s, err := r.live(code)
	if err != nil {
		return err
	}
	remaining, err := s.RemoveSeat(ctx, identity)
	if err != nil {
		return err
	}
	if remaining == 0 {
		r.remove(code, s)
	}
	return nil
}

// remove deletes code only while it still maps to s.
func (r *Registry) remove(code string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[code] == s {
		delete(r.sessions, code)
		r.log.Info().Str("code", code).Int("sessions", len(r.sessions)).Msg("session removed")
	}
}

// Session returns the live session for code.
func (r *Registry) Session(code string) (*Session, bool) {
	s := r.lookup(code)
	if s == nil || s.Closed() {
		return nil, false
	}
	return s, true
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close shuts every session down.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for code, s := range r.sessions {
		sessions = append(sessions, s)
		delete(r.sessions, code)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
