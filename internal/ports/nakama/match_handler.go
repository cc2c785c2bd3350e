package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"fivehundred/internal/app"
	"fivehundred/internal/domain"
	"fivehundred/internal/view"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the runtime state for one lobby match. The game itself lives
// in the shared registry under Code.
type MatchState struct {
	Code      string                      `json:"code"`    // Session code, empty until the first join
	Created   int64                       `json:"created"` // Tick the match was created at
	Presences map[string]runtime.Presence `json:"-"`       // Map UserId -> Presence
}

// presenceConn delivers session messages to one presence.
type presenceConn struct {
	dispatcher runtime.MatchDispatcher
	presence   runtime.Presence
}

var _ domain.Conn = (*presenceConn)(nil)

func (c *presenceConn) ID() string { return c.presence.GetSessionId() }

func (c *presenceConn) Send(_ context.Context, data []byte) error {
	return c.dispatcher.BroadcastMessage(OpServer, data, []runtime.Presence{c.presence}, nil, true)
}

func newMatchHandler(registry *app.Registry) *matchHandler {
	return &matchHandler{registry: registry}
}

type matchHandler struct {
	registry *app.Registry
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
	}
	label, err := matchLabel("", maxSeats)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	logger.Debug("MatchInit: Lobby match initialized.")
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if err := app.ValidateUsername(presence.GetUsername()); err != nil {
		return state, false, string(view.StatusInvalidUsername)
	}
	if matchState.Code == "" {
		// The first player creates the session in MatchJoin.
		return state, len(matchState.Presences) == 0, string(view.StatusOK)
	}

	session, ok := mh.registry.Session(matchState.Code)
	switch {
	case !ok:
		return state, false, string(view.StatusNoSuchGame)
	case session.Phase() == domain.PhaseOver:
		return state, false, string(view.StatusGameOver)
	case session.IsFull():
		return state, false, string(view.StatusGameFull)
	case session.IsUsernameTaken(presence.GetUsername()):
		return state, false, string(view.StatusUsernameTaken)
	}
	return state, true, string(view.StatusOK)
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return nil
	}

	for _, p := range presences {
		conn := &presenceConn{dispatcher: dispatcher, presence: p}
		if matchState.Code == "" {
			code, err := mh.registry.CreateSession(ctx, p.GetUsername(), conn)
			if err != nil {
				logger.Error("MatchJoin: Failed to create session for %s: %v", p.GetUsername(), err)
				if err := dispatcher.MatchKick([]runtime.Presence{p}); err != nil {
					logger.Warn("MatchJoin: Failed to kick %s: %v", p.GetUserId(), err)
				}
				continue
			}
			matchState.Code = code
			matchState.Presences[p.GetUserId()] = p
			logger.Info("MatchJoin: %s created session %s", p.GetUsername(), code)
			continue
		}

		if err := mh.registry.JoinSession(ctx, matchState.Code, p.GetUsername(), conn); err != nil {
			logger.Warn("MatchJoin: %s could not join %s: %v", p.GetUsername(), matchState.Code, err)
			if err := dispatcher.MatchKick([]runtime.Presence{p}); err != nil {
				logger.Warn("MatchJoin: Failed to kick %s: %v", p.GetUserId(), err)
			}
			continue
		}
		matchState.Presences[p.GetUserId()] = p
		logger.Debug("MatchJoin: %s joined session %s", p.GetUsername(), matchState.Code)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return nil
	}

	for _, p := range presences {
		if _, seated := matchState.Presences[p.GetUserId()]; !seated {
			continue
		}
		delete(matchState.Presences, p.GetUserId())
		if err := mh.registry.OnDisconnect(ctx, matchState.Code, p.GetUsername()); err != nil {
			logger.Warn("MatchLeave: Disconnect of %s from %s failed: %v", p.GetUsername(), matchState.Code, err)
		}
	}

	if !mh.registry.SessionExists(matchState.Code) {
		logger.Info("MatchLeave: Terminating match for closed session %s.", matchState.Code)
		return nil
	}
	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLoop: state not found")
		return nil
	}
	if matchState.Code == "" {
		if matchState.Created == 0 {
			matchState.Created = tick
		}
		if tick-matchState.Created >= emptyTimeoutTicks {
			logger.Info("MatchLoop: Terminating lobby nobody joined.")
			return nil
		}
		return matchState
	}

	for _, msg := range messages {
		if msg.GetOpCode() != OpUpdate {
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
			continue
		}
		p, seated := matchState.Presences[msg.GetUserId()]
		if !seated {
			continue
		}
		var u view.Update
		if err := json.Unmarshal(msg.GetData(), &u); err != nil {
			logger.Warn("MatchLoop: Bad update from %s: %v", p.GetUsername(), err)
			continue
		}
		err := mh.registry.HandleUpdate(ctx, matchState.Code, p.GetUsername(), u)
		switch {
		case err == nil:
		case errors.Is(err, app.ErrIllegalAction):
			logger.Debug("MatchLoop: %s: %v", p.GetUsername(), err)
		default:
			logger.Warn("MatchLoop: Update from %s failed: %v", p.GetUsername(), err)
		}
	}

	if !mh.registry.SessionExists(matchState.Code) {
		return nil
	}
	return matchState
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	open := maxSeats
	if session, ok := mh.registry.Session(state.Code); ok {
		open = maxSeats - session.HumanCount()
	}
	label, err := matchLabel(state.Code, open)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d seconds grace", graceSeconds)
	matchState, ok := state.(*MatchState)
	if !ok || matchState.Code == "" {
		return state
	}
	for id, p := range matchState.Presences {
		delete(matchState.Presences, id)
		if err := mh.registry.OnDisconnect(ctx, matchState.Code, p.GetUsername()); err != nil {
			logger.Debug("MatchTerminate: Disconnect of %s: %v", p.GetUsername(), err)
		}
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
