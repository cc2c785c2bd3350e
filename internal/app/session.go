package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"fivehundred/internal/bot"
	"fivehundred/internal/domain"
	"fivehundred/internal/rules"
	"fivehundred/internal/view"
)

// sessionDeps is what every session borrows from its registry.
type sessionDeps struct {
	factory   rules.Factory
	level     bot.BotLevel
	tuning    bot.Tuning
	roster    bot.Roster
	delay     time.Duration
	scheduler Scheduler
}

// Session is one game table. All mutations happen under mu, including the bot
// turns they trigger, so a request and its bot cascade are never seen half-applied.
type Session struct {
	mu sync.Mutex

	code   string
	table  domain.Table
	phase  domain.Phase
	engine rules.Engine
	agents map[domain.Position]*bot.Agent

	closed  bool
	ctx     context.Context
	cancel  context.CancelFunc
	pending Timer

	deps *sessionDeps
	rng  *rand.Rand
	log  zerolog.Logger
}

func newSession(code, identity string, conn domain.Conn, deps *sessionDeps, rng *rand.Rand, log zerolog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		code:   code,
		phase:  domain.PhaseSetup,
		agents: make(map[domain.Position]*bot.Agent),
		ctx:    ctx,
		cancel: cancel,
		deps:   deps,
		rng:    rng,
		log:    log.With().Str("code", code).Logger(),
	}
	host := domain.NewHumanSeat(identity, conn, domain.North)
	host.Host = true
	_ = s.table.Add(host)
	return s
}

// Code returns the session code.
func (s *Session) Code() string { return s.code }

// Phase returns the current phase.
func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Closed reports whether the last human has left.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// HumanCount returns the number of connected players.
func (s *Session) HumanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.HumanCount()
}

// IsFull reports whether every position is held by a human.
func (s *Session) IsFull() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.HumanCount() == domain.TableSize
}

// IsUsernameTaken reports whether a human already plays as identity.
func (s *Session) IsUsernameTaken(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Find(identity) != nil
}

// Seats returns a copy of the seats in position order.
func (s *Session) Seats() []domain.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Seat, 0, s.table.Len())
	for _, seat := range s.table.Seats() {
		out = append(out, *seat)
	}
	return out
}

// announce sends the first snapshot to the creator.
func (s *Session) announce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitLocked(ctx, stateEvent())
}

// AddSeat seats a new human. In setup it takes the lowest free position; once
// the game is running it takes over the lowest bot-held position.
func (s *Session) AddSeat(ctx context.Context, identity string, conn domain.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrNoSuchSession
	}
	if s.phase == domain.PhaseOver {
		return ErrGameOver
	}
	if s.table.Find(identity) != nil {
		return ErrUsernameTaken
	}

	switch s.phase {
	case domain.PhaseSetup:
		pos, ok := s.table.LowestVacant()
		if !ok {
			return ErrSessionFull
		}
		if err := s.table.Add(domain.NewHumanSeat(identity, conn, pos)); err != nil {
			return fmt.Errorf("seat %s: %w", identity, err)
		}
	case domain.PhasePlay:
		b := s.table.FirstBot()
		if b == nil {
			return ErrSessionFull
		}
		s.table.Replace(domain.NewHumanSeat(identity, conn, b.Position))
		delete(s.agents, b.Position)
		s.log.Info().Str("user", identity).Str("position", b.Position.String()).Msg("player replaced bot")
	}
	s.table.PromoteHost()

	s.log.Info().Str("user", identity).Int("humans", s.table.HumanCount()).Msg("player joined")
	joined := alertEvent(view.AlertPlayerJoined, identity)
	joined.Except = identity
	s.emitLocked(ctx, stateEvent(), joined)
	return nil
}

// RemoveSeat drops the human playing as identity and returns how many humans
// remain. At zero the session closes and nothing more is sent.
func (s *Session) RemoveSeat(ctx context.Context, identity string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrNoSuchSession
	}
	seat := s.table.Find(identity)
	if seat == nil {
		return 0, ErrUnknownPlayer
	}
	s.table.Remove(seat)

	remaining := s.table.HumanCount()
	s.log.Info().Str("user", identity).Int("humans", remaining).Msg("player left")
	if remaining == 0 {
		s.closeLocked()
		return 0, nil
	}

	events := []Event{alertEvent(view.AlertPlayerLeft, identity)}
	if seat.Host {
		if h := s.table.PromoteHost(); h != nil {
			s.log.Info().Str("user", h.Identity).Msg("host changed")
			events = append(events, alertEvent(view.AlertNewHost, h.Identity))
		}
	}
	if s.phase != domain.PhaseSetup {
		s.seatBotLocked(seat.Position)
	}
	events = append(events, stateEvent())
	s.emitLocked(ctx, events...)

	s.runBotsLocked(ctx)
	return remaining, nil
}

// HandleUpdate applies one client envelope for identity.
func (s *Session) HandleUpdate(ctx context.Context, identity string, u view.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrNoSuchSession
	}
	seat := s.table.Find(identity)
	if seat == nil {
		return ErrUnknownPlayer
	}
	if u.Phase != s.phase {
		s.log.Debug().Str("user", identity).Str("tag", string(u.Phase)).Str("phase", string(s.phase)).Msg("stale update")
		s.emitLocked(ctx, stateEvent())
		return nil
	}

	a := u.Action
	switch {
	case a.Type == view.ActionMovePosition:
		if s.phase == domain.PhaseSetup && a.Position != nil && s.table.At(*a.Position) == nil {
			if err := s.table.Move(seat, *a.Position); err == nil {
				s.log.Debug().Str("user", identity).Str("position", a.Position.String()).Msg("moved")
			}
		}
	case a.Type == view.ActionStartGame:
		if s.phase == domain.PhaseSetup && seat.Host {
			if err := s.startLocked(); err != nil {
				return err
			}
		}
	case a.IsGameAction():
		if s.phase != domain.PhasePlay {
			break
		}
		move, ok := a.ToRules(seat.Position.Index())
		if !ok {
			break
		}
		if err := s.engine.Apply(move); err != nil {
			return s.rejectLocked(ctx, seat, err)
		}
		s.checkOverLocked()
	default:
		s.log.Debug().Str("user", identity).Str("action", string(a.Type)).Msg("unknown action dropped")
	}

	s.emitLocked(ctx, stateEvent())
	s.runBotsLocked(ctx)
	return nil
}

// rejectLocked tells only the actor that the engine refused their move.
func (s *Session) rejectLocked(ctx context.Context, seat *domain.Seat, err error) error {
	if !errors.Is(err, ErrIllegalAction) {
		err = fmt.Errorf("%w: %v", ErrIllegalAction, err)
	}
	s.log.Warn().Err(err).Str("user", seat.Identity).Msg("action rejected")
	alert := alertEvent(view.AlertIllegalAction, seat.Identity)
	alert.Alert.Message = err.Error()
	alert.Recipients = []string{seat.Identity}
	s.emitLocked(ctx, alert)
	return fmt.Errorf("session %s: %w", s.code, err)
}

func (s *Session) startLocked() error {
	if s.table.HumanCount() < MinHumansToStart {
		return fmt.Errorf("session %s: no players seated", s.code)
	}
	engine, err := s.deps.factory(domain.TableSize)
	if err != nil {
		return fmt.Errorf("session %s: start rules engine: %w", s.code, err)
	}
	for _, pos := range s.table.Vacant() {
		s.seatBotLocked(pos)
	}
	s.engine = engine
	s.advanceLocked(domain.PhasePlay)
	s.checkOverLocked()
	return nil
}

// seatBotLocked fills a vacant position with a bot and its agent.
func (s *Session) seatBotLocked(pos domain.Position) {
	name := s.deps.roster.NameFor(pos)
	if err := s.table.Add(domain.NewBotSeat(name, pos)); err != nil {
		s.log.Error().Err(err).Str("position", pos.String()).Msg("seat bot")
		return
	}
	brain, err := bot.NewBrain(s.deps.level, s.rng, s.deps.tuning)
	if err != nil {
		s.log.Error().Err(err).Msg("bot brain")
		return
	}
	s.agents[pos] = &bot.Agent{Name: name, Position: pos, Strategy: brain}
}

func (s *Session) advanceLocked(next domain.Phase) {
	if !s.phase.CanAdvanceTo(next) {
		return
	}
	s.log.Info().Str("from", string(s.phase)).Str("to", string(next)).Msg("phase changed")
	s.phase = next
}

func (s *Session) checkOverLocked() {
	if s.engine != nil && s.engine.IsOver() {
		s.advanceLocked(domain.PhaseOver)
	}
}

// botToActLocked returns the agent whose turn it is, or nil when a human (or nobody) is to act.
func (s *Session) botToActLocked() *bot.Agent {
	if s.closed || s.phase != domain.PhasePlay || s.engine == nil {
		return nil
	}
	pos, ok := domain.PositionAt(s.engine.View().Turn)
	if !ok || !s.table.At(pos).IsBot() {
		return nil
	}
	return s.agents[pos]
}

// runBotsLocked plays bot turns inline, or schedules the next one when a delay is set.
func (s *Session) runBotsLocked(ctx context.Context) {
	if s.deps.delay > 0 {
		s.scheduleLocked()
		return
	}
	for s.botToActLocked() != nil {
		if !s.botStepLocked(ctx) {
			return
		}
	}
}

func (s *Session) scheduleLocked() {
	if s.pending != nil || s.botToActLocked() == nil {
		return
	}
	s.pending = s.deps.scheduler.AfterFunc(s.deps.delay, s.botTurn)
}

// botTurn is the scheduled callback for one paced bot move.
func (s *Session) botTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	if s.botToActLocked() == nil {
		return
	}
	if s.botStepLocked(s.ctx) {
		s.scheduleLocked()
	}
}

// botStepLocked makes one bot move and broadcasts it. It reports false when the loop must stop.
func (s *Session) botStepLocked(ctx context.Context) bool {
	agent := s.botToActLocked()
	if agent == nil {
		return false
	}
	move, err := agent.Play(s.engine)
	if err != nil {
		s.log.Error().Err(err).Str("bot", agent.Name).Msg("bot could not choose")
		return false
	}
	if err := s.engine.Apply(move); err != nil {
		s.log.Error().Err(err).Str("bot", agent.Name).Msg("engine rejected bot move")
		return false
	}
	s.checkOverLocked()
	s.emitLocked(ctx, stateEvent())
	return true
}

// Close stops pending bot turns and refuses further calls.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.log.Info().Msg("session closed")
}

func (s *Session) viewInputLocked() view.Input {
	in := view.Input{Code: s.code, Phase: s.phase, Seats: s.table.Seats()}
	if s.engine != nil {
		v := s.engine.View()
		in.Engine = &v
		in.Legal = s.engine.LegalActions()
	}
	return in
}

// emitLocked encodes every event for each recipient from one snapshot, then
// sends concurrently per recipient and waits. Messages to one recipient keep their order.
func (s *Session) emitLocked(ctx context.Context, events ...Event) {
	humans := s.table.Humans()
	if len(humans) == 0 {
		return
	}

	var in view.Input
	for _, ev := range events {
		if ev.Kind == EventState {
			in = s.viewInputLocked()
			break
		}
	}

	queues := make(map[*domain.Seat][][]byte, len(humans))
	for _, ev := range events {
		for _, seat := range humans {
			if !ev.reaches(seat) {
				continue
			}
			var msg view.Message
			switch ev.Kind {
			case EventState:
				msg = view.Build(in, seat.Identity)
			case EventAlert:
				msg = ev.Alert.For(seat.Identity)
			}
			data, err := view.Marshal(msg)
			if err != nil {
				s.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("encode message")
				continue
			}
			queues[seat] = append(queues[seat], data)
		}
	}

	var g errgroup.Group
	for _, seat := range humans {
		msgs := queues[seat]
		if len(msgs) == 0 {
			continue
		}
		conn, identity := seat.Conn, seat.Identity
		g.Go(func() error {
			for _, m := range msgs {
				if err := conn.Send(ctx, m); err != nil {
					return fmt.Errorf("send to %s: %w", identity, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Warn().Err(err).Msg("broadcast")
	}
}
