package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fivehundred/internal/domain"
	"fivehundred/internal/rules"
	"fivehundred/internal/view"
)

// turnEngine is a bidding-only engine: every seat may pass or bid 6S, turns go
// round the table, and the game ends after overAfter accepted moves.
type turnEngine struct {
	turn      int
	overAfter int
	moves     []rules.Action
}

func (e *turnEngine) IsOver() bool { return e.overAfter > 0 && len(e.moves) >= e.overAfter }

func (e *turnEngine) LegalActions() []rules.Action {
	if e.IsOver() {
		return nil
	}
	return []rules.Action{
		{Kind: rules.ActionPass, Seat: e.turn},
		{Kind: rules.ActionBid, Seat: e.turn, Bid: rules.Bid{Tricks: 6, Suit: rules.Spades}},
	}
}

func (e *turnEngine) Apply(a rules.Action) error {
	if e.IsOver() {
		return rules.Reject(a, "over")
	}
	if a.Seat != e.turn {
		return rules.Reject(a, "seat %d is to act", e.turn)
	}
	if a.Kind != rules.ActionPass && a.Kind != rules.ActionBid {
		return rules.Reject(a, "bidding only")
	}
	e.moves = append(e.moves, a)
	e.turn = (e.turn + 1) % domain.TableSize
	return nil
}

func (e *turnEngine) View() rules.View {
	turn := e.turn
	if e.IsOver() {
		turn = -1
	}
	v := rules.View{
		SubPhase: rules.SubPhaseBidding,
		Scores:   []int{0, 0},
		Turn:     turn,
		Lead:     -1,
		Hands:    make([][]rules.Card, domain.TableSize),
		Bids:     make([][]rules.BidRecord, domain.TableSize),
	}
	for s := range v.Hands {
		v.Hands[s] = []rules.Card{{Suit: rules.Hearts, Rank: 10 + s}}
	}
	return v
}

// engineFactory records the engines it builds.
type engineFactory struct {
	turn      int
	overAfter int
	seats     []int
	built     []*turnEngine
	err       error
}

func (f *engineFactory) New(seats int) (rules.Engine, error) {
	f.seats = append(f.seats, seats)
	if f.err != nil {
		return nil, f.err
	}
	e := &turnEngine{turn: f.turn, overAfter: f.overAfter}
	f.built = append(f.built, e)
	return e, nil
}

// recordingConn keeps every message sent to it.
type recordingConn struct {
	id string

	mu   sync.Mutex
	msgs [][]byte
	fail error
}

func newConn(id string) *recordingConn { return &recordingConn{id: id} }

func (c *recordingConn) ID() string { return c.id }

func (c *recordingConn) Send(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.msgs = append(c.msgs, append([]byte(nil), data...))
	return nil
}

func (c *recordingConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = nil
}

func (c *recordingConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func (c *recordingConn) types(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.msgs))
	for _, m := range c.msgs {
		var head struct {
			Type   string `json:"type"`
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(m, &head))
		if head.Status != "" {
			out = append(out, head.Type+":"+head.Status)
		} else {
			out = append(out, head.Type)
		}
	}
	return out
}

func (c *recordingConn) lastState(t *testing.T) view.State {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.msgs) - 1; i >= 0; i-- {
		var st view.State
		require.NoError(t, json.Unmarshal(c.msgs[i], &st))
		if st.Type == view.TypeState {
			return st
		}
	}
	t.Fatalf("%s received no state", c.id)
	return view.State{}
}

func (c *recordingConn) alerts(t *testing.T) []view.Alert {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []view.Alert
	for _, m := range c.msgs {
		var a view.Alert
		require.NoError(t, json.Unmarshal(m, &a))
		if a.Type == view.TypeAlert {
			out = append(out, a)
		}
	}
	return out
}

// manualScheduler queues callbacks until the test runs them.
type manualScheduler struct {
	mu     sync.Mutex
	queue  []*manualTimer
	delays []time.Duration
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{f: f}
	m.queue = append(m.queue, t)
	m.delays = append(m.delays, d)
	return t
}

func (m *manualScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.queue {
		if !t.stopped {
			n++
		}
	}
	return n
}

// runNext fires the oldest live timer and reports whether there was one.
func (m *manualScheduler) runNext() bool {
	m.mu.Lock()
	var next *manualTimer
	for len(m.queue) > 0 {
		t := m.queue[0]
		m.queue = m.queue[1:]
		if !t.stopped {
			next = t
			break
		}
	}
	m.mu.Unlock()
	if next == nil {
		return false
	}
	next.stopped = true
	next.f()
	return true
}

var errBoom = errors.New("boom")

func newTestRegistry(t *testing.T, f *engineFactory, mutate ...func(*Options)) *Registry {
	t.Helper()
	opts := Options{
		Factory: f.New,
		Codes:   FixedCodes("ABCD1234", "EFGH5678", "IJKL9012", "MNOP3456"),
		Seed:    1,
	}
	for _, m := range mutate {
		m(&opts)
	}
	r, err := NewRegistry(opts)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func update(phase domain.Phase, typ view.ActionType) view.Update {
	return view.Update{Phase: phase, Action: view.Action{Type: typ}}
}
