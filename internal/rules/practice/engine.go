// Package practice is a compact four-handed five-hundred engine that satisfies
// rules.Engine. It covers bidding, the kitty discard, trick play and scoring,
// and leaves out misère bids and bowers.
package practice

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"fivehundred/internal/rules"
)

const (
	// Seats is the only table size the engine supports.
	Seats       = 4
	handSize    = 10
	discardSize = 3
	targetScore = 500
)

// NewFactory returns a rules.Factory whose engines are seeded from seed, seed+1, ...
func NewFactory(seed int64) rules.Factory {
	var next atomic.Int64
	next.Store(seed)
	return func(seats int) (rules.Engine, error) {
		if seats != Seats {
			return nil, fmt.Errorf("practice engine needs %d seats, got %d", Seats, seats)
		}
		return New(rand.New(rand.NewSource(next.Add(1)))), nil
	}
}

// Engine holds authoritative state for one game.
type Engine struct {
	rng *rand.Rand

	dealer int
	hands  [Seats][]rules.Card
	kitty  []rules.Card
	sub    rules.SubPhase
	turn   int

	bids   [Seats][]rules.BidRecord
	passed [Seats]bool
	best   *rules.Bid
	bestBy int

	contract  *rules.Contract
	discarded int

	trick     []rules.Play
	lastTrick []rules.Play
	lead      int
	tricks    [Seats]int

	scores [2]int
	over   bool
}

// New deals the first round. The first dealer is seat 0.
func New(rng *rand.Rand) *Engine {
	e := &Engine{rng: rng}
	e.deal()
	return e
}

// NewDeck returns the 43-card deck: 5 through ace in every suit, the red fours and the joker.
func NewDeck() []rules.Card {
	deck := make([]rules.Card, 0, 43)
	for _, s := range []rules.Suit{rules.Spades, rules.Clubs, rules.Diamonds, rules.Hearts} {
		low := 5
		if s == rules.Diamonds || s == rules.Hearts {
			low = 4
		}
		for r := low; r <= rules.Ace; r++ {
			deck = append(deck, rules.Card{Suit: s, Rank: r})
		}
	}
	return append(deck, rules.JokerCard)
}

func (e *Engine) deal() {
	deck := NewDeck()
	e.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	for s := 0; s < Seats; s++ {
		e.hands[s] = append([]rules.Card(nil), deck[s*handSize:(s+1)*handSize]...)
		e.bids[s] = nil
		e.passed[s] = false
		e.tricks[s] = 0
	}
	e.kitty = append([]rules.Card(nil), deck[Seats*handSize:]...)
	e.sub = rules.SubPhaseBidding
	e.turn = (e.dealer + 1) % Seats
	e.best = nil
	e.bestBy = -1
	e.contract = nil
	e.discarded = 0
	e.trick = nil
	e.lastTrick = nil
	e.lead = -1
}

// IsOver reports whether a team has reached the target score.
func (e *Engine) IsOver() bool { return e.over }

// LegalActions lists the moves of the seat to act.
func (e *Engine) LegalActions() []rules.Action {
	if e.over {
		return nil
	}
	seat := e.turn
	switch e.sub {
	case rules.SubPhaseBidding:
		out := []rules.Action{{Kind: rules.ActionPass, Seat: seat}}
		for tricks := 6; tricks <= handSize; tricks++ {
			for _, s := range rules.BidSuits {
				b := rules.Bid{Tricks: tricks, Suit: s}
				if e.best == nil || b.Beats(*e.best) {
					out = append(out, rules.Action{Kind: rules.ActionBid, Seat: seat, Bid: b})
				}
			}
		}
		return out
	case rules.SubPhaseDiscard:
		out := make([]rules.Action, 0, len(e.hands[seat]))
		for _, c := range e.hands[seat] {
			out = append(out, rules.Action{Kind: rules.ActionDiscard, Seat: seat, Card: c})
		}
		return out
	case rules.SubPhasePlay:
		hand := e.hands[seat]
		playable := hand
		if len(e.trick) > 0 {
			led := rules.EffectiveSuit(e.trick[0].Card, e.trump())
			var follow []rules.Card
			for _, c := range hand {
				if rules.EffectiveSuit(c, e.trump()) == led {
					follow = append(follow, c)
				}
			}
			if len(follow) > 0 {
				playable = follow
			}
		}
		out := make([]rules.Action, 0, len(playable))
		for _, c := range playable {
			out = append(out, rules.Action{Kind: rules.ActionPlay, Seat: seat, Card: c})
		}
		return out
	}
	return nil
}

// Apply validates a against LegalActions and advances the game.
func (e *Engine) Apply(a rules.Action) error {
	if e.over {
		return rules.Reject(a, "game is over")
	}
	if a.Seat != e.turn {
		return rules.Reject(a, "seat %d is to act", e.turn)
	}
	if !e.isLegal(a) {
		return rules.Reject(a, "not allowed during %s", e.sub)
	}
	switch e.sub {
	case rules.SubPhaseBidding:
		e.applyBid(a)
	case rules.SubPhaseDiscard:
		e.applyDiscard(a)
	case rules.SubPhasePlay:
		e.applyPlay(a)
	}
	return nil
}

func (e *Engine) isLegal(a rules.Action) bool {
	for _, legal := range e.LegalActions() {
		if legal == a {
			return true
		}
	}
	return false
}

func (e *Engine) applyBid(a rules.Action) {
	seat := a.Seat
	if a.IsPass() {
		e.bids[seat] = append(e.bids[seat], rules.BidRecord{Pass: true})
		e.passed[seat] = true
	} else {
		b := a.Bid
		e.bids[seat] = append(e.bids[seat], rules.BidRecord{Bid: &b})
		e.best = &b
		e.bestBy = seat
	}

	passes := 0
	for _, p := range e.passed {
		if p {
			passes++
		}
	}
	switch {
	case e.best == nil && passes == Seats:
		// Nobody bid: throw the hand in and deal again.
		e.dealer = (e.dealer + 1) % Seats
		e.deal()
	case e.best != nil && passes == Seats-1:
		e.contract = &rules.Contract{Bid: *e.best, Declarer: e.bestBy}
		e.hands[e.bestBy] = append(e.hands[e.bestBy], e.kitty...)
		e.kitty = nil
		e.sub = rules.SubPhaseDiscard
		e.turn = e.bestBy
	default:
		e.turn = e.nextActive(seat)
	}
}

func (e *Engine) nextActive(from int) int {
	for i := 1; i <= Seats; i++ {
		n := (from + i) % Seats
		if !e.passed[n] {
			return n
		}
	}
	return from
}

func (e *Engine) applyDiscard(a rules.Action) {
	e.hands[a.Seat] = removeCard(e.hands[a.Seat], a.Card)
	e.discarded++
	if e.discarded == discardSize {
		e.sub = rules.SubPhasePlay
		e.lead = e.contract.Declarer
		e.turn = e.contract.Declarer
	}
}

func (e *Engine) applyPlay(a rules.Action) {
	e.hands[a.Seat] = removeCard(e.hands[a.Seat], a.Card)
	e.trick = append(e.trick, rules.Play{Seat: a.Seat, Card: a.Card})
	if len(e.trick) < Seats {
		e.turn = (a.Seat + 1) % Seats
		return
	}

	winner := e.trickWinner()
	e.tricks[winner]++
	e.lastTrick = e.trick
	e.trick = nil
	e.lead = winner
	e.turn = winner
	if len(e.hands[winner]) == 0 {
		e.scoreRound()
	}
}

func (e *Engine) trump() rules.Suit {
	if e.contract == nil {
		return ""
	}
	return e.contract.Bid.Suit
}

func (e *Engine) trickWinner() int {
	led := rules.EffectiveSuit(e.trick[0].Card, e.trump())
	best := e.trick[0]
	for _, p := range e.trick[1:] {
		if e.beats(p.Card, best.Card, led) {
			best = p
		}
	}
	return best.Seat
}

// beats reports whether c takes the trick from cur, the card currently winning.
func (e *Engine) beats(c, cur rules.Card, led rules.Suit) bool {
	if c.IsJoker() {
		return true
	}
	if cur.IsJoker() {
		return false
	}
	trump := e.trump()
	cs, us := rules.EffectiveSuit(c, trump), rules.EffectiveSuit(cur, trump)
	if trump != rules.NoTrumps {
		if cs == trump && us != trump {
			return true
		}
		if us == trump && cs != trump {
			return false
		}
	}
	if cs == us {
		return c.Rank > cur.Rank
	}
	return false
}

func (e *Engine) scoreRound() {
	decl := e.contract.Declarer
	team := decl % 2
	made := e.tricks[decl] + e.tricks[(decl+2)%Seats]
	value := e.contract.Bid.Value()
	if made >= e.contract.Bid.Tricks {
		e.scores[team] += value
	} else {
		e.scores[team] -= value
	}
	other := 1 - team
	e.scores[other] += 10 * (e.tricks[other] + e.tricks[other+2])

	for _, s := range e.scores {
		if s >= targetScore || s <= -targetScore {
			e.over = true
			e.sub = rules.SubPhaseFinished
			e.turn = -1
			return
		}
	}
	e.dealer = (e.dealer + 1) % Seats
	e.deal()
}

// View returns a deep copy of the full state.
func (e *Engine) View() rules.View {
	v := rules.View{
		SubPhase:  e.sub,
		Scores:    []int{e.scores[0], e.scores[1]},
		Turn:      e.turn,
		Trick:     append([]rules.Play(nil), e.trick...),
		LastTrick: append([]rules.Play(nil), e.lastTrick...),
		Trump:     e.trump(),
		Lead:      e.lead,
		Dealer:    e.dealer,
		Hands:     make([][]rules.Card, Seats),
		Bids:      make([][]rules.BidRecord, Seats),
	}
	for s := 0; s < Seats; s++ {
		v.Hands[s] = append([]rules.Card(nil), e.hands[s]...)
		v.Bids[s] = append([]rules.BidRecord(nil), e.bids[s]...)
	}
	if e.contract != nil {
		c := *e.contract
		v.Contract = &c
	}
	return v
}

func removeCard(hand []rules.Card, c rules.Card) []rules.Card {
	for i := range hand {
		if hand[i] == c {
			return append(hand[:i:i], hand[i+1:]...)
		}
	}
	return hand
}
